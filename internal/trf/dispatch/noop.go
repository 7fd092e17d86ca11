package dispatch

import (
	"fmt"

	"github.com/banshee-data/helixprop/internal/trf"
)

// Noop serves a same-kind pair that never needs transport. It succeeds with
// zero path length and an identity derivative when origin and destination
// are the same surface, and reports no crossing otherwise.
type Noop struct {
	kind   trf.Kind
	bfield float64
}

// NewNoop returns the no-op propagator for kind.
func NewNoop(kind trf.Kind, bfield float64) *Noop {
	return &Noop{kind: kind, bfield: bfield}
}

// BField returns the field in Tesla.
func (n *Noop) BField() float64 { return n.bfield }

func (n *Noop) String() string {
	return fmt.Sprintf("noop %s propagator, B=%g T", n.kind, n.bfield)
}

// Propagate returns trk rebound to dst.
func (n *Noop) Propagate(trk trf.VTrack, dst trf.Surface, dir trf.Direction, wantDeriv bool) (trf.Result, error) {
	src := trk.Surface()
	if src.Kind() != n.kind || dst.Kind() != n.kind {
		opsf("%s handed %s -> %s", n, src.Kind(), dst.Kind())
		return trf.Result{}, fmt.Errorf("%w: %s cannot propagate %s to %s", trf.ErrConfiguration, n, src, dst)
	}
	if !src.PureEqual(dst) {
		return trf.Result{}, fmt.Errorf("%w: %s does not transport %s to %s", trf.ErrNoCrossing, n, src, dst)
	}
	if _, move := dir.Reduce(); move {
		return trf.Result{}, fmt.Errorf("%w: %s cannot move along %s", trf.ErrNoCrossing, n, dst)
	}
	out := trk
	out.SetSurface(dst)
	res := trf.Result{Track: out}
	if wantDeriv {
		res.Derivative = trf.Identity()
	}
	return res, nil
}
