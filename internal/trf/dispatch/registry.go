package dispatch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/banshee-data/helixprop/internal/trf"
)

// Registry maps (origin, destination) surface kinds to a propagator.
// It is populated once and read-only afterwards; lookups are safe for
// concurrent use once registration is complete.
//
// Registry itself satisfies trf.Propagator by forwarding each call to the
// entry for the track's surface kind and the destination kind.
type Registry struct {
	bfield  float64
	entries map[trf.Pair]trf.Propagator
}

// NewRegistry returns an empty registry for field bfield.
func NewRegistry(bfield float64) *Registry {
	return &Registry{bfield: bfield, entries: make(map[trf.Pair]trf.Propagator)}
}

// Register adds prop for pair. A second registration for the same pair, or
// a propagator built for a different field, is a configuration error.
func (r *Registry) Register(pair trf.Pair, prop trf.Propagator) error {
	if _, ok := r.entries[pair]; ok {
		return fmt.Errorf("%w: %s already registered", trf.ErrConfiguration, pair)
	}
	if prop.BField() != r.bfield {
		return fmt.Errorf("%w: %s has B=%g T, registry has %g T", trf.ErrConfiguration, prop, prop.BField(), r.bfield)
	}
	r.entries[pair] = prop
	return nil
}

// Lookup returns the propagator for (from, to).
func (r *Registry) Lookup(from, to trf.Kind) (trf.Propagator, error) {
	pair := trf.Pair{From: from, To: to}
	prop, ok := r.entries[pair]
	if !ok {
		opsf("no propagator registered for %s", pair)
		return nil, fmt.Errorf("%w: no propagator registered for %s", trf.ErrConfiguration, pair)
	}
	return prop, nil
}

// MustLookup is Lookup for callers that treat a missing entry as a defect.
// It panics instead of returning an error.
func (r *Registry) MustLookup(from, to trf.Kind) trf.Propagator {
	prop, err := r.Lookup(from, to)
	if err != nil {
		panic(err)
	}
	return prop
}

// Pairs returns the registered pairs in (from, to) order.
func (r *Registry) Pairs() []trf.Pair {
	pairs := make([]trf.Pair, 0, len(r.entries))
	for p := range r.entries {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].From != pairs[j].From {
			return pairs[i].From < pairs[j].From
		}
		return pairs[i].To < pairs[j].To
	})
	return pairs
}

// Propagate forwards to the entry for the track and destination kinds.
func (r *Registry) Propagate(trk trf.VTrack, dst trf.Surface, dir trf.Direction, wantDeriv bool) (trf.Result, error) {
	prop, err := r.Lookup(trk.Surface().Kind(), dst.Kind())
	if err != nil {
		return trf.Result{}, err
	}
	tracef("%s -> %s via %s", trk.Surface(), dst, prop)
	return prop.Propagate(trk, dst, dir, wantDeriv)
}

// BField returns the field in Tesla.
func (r *Registry) BField() float64 { return r.bfield }

func (r *Registry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "dispatch registry, B=%g T, %d entries", r.bfield, len(r.entries))
	for _, p := range r.Pairs() {
		fmt.Fprintf(&b, "\n  %s: %s", p, r.entries[p])
	}
	return b.String()
}
