package trajectory

import (
	"errors"
	"fmt"

	"github.com/banshee-data/helixprop/internal/trf"
)

// Element is one detector surface in the order a particle meets it.
type Element struct {
	Surface    trf.Surface
	DetectorID string
}

// Builder walks a track through a list of elements, one propagation per
// element, keying each state by the cumulative path length.
type Builder struct {
	Prop      trf.Propagator
	Direction trf.Direction
	Window    Window
}

// NewBuilder returns a builder that walks forward in the default window.
func NewBuilder(p trf.Propagator) *Builder {
	return &Builder{Prop: p, Direction: trf.Forward, Window: DefaultWindow()}
}

// missed reports whether err only means the element was not reached.
func missed(err error) bool {
	return errors.Is(err, trf.ErrNoCrossing) ||
		errors.Is(err, trf.ErrOutOfRange) ||
		errors.Is(err, trf.ErrNoConvergence)
}

// BuildTruth records the generated path of a particle starting at start.
// The start is stored at s = 0 under startID. Elements the particle does
// not reach, or reaches outside their extent, are skipped; a configuration
// error aborts the walk.
func (b *Builder) BuildTruth(particleID, pdgID int, start trf.VTrack, startID string, elems []Element) (*TruthTrajectory, error) {
	tt := NewTruthTrajectory(particleID, pdgID, b.Window)
	if err := tt.AddState(TruthState{S: 0, Track: start, DetectorID: startID}); err != nil {
		return nil, err
	}
	cur, s := start, 0.0
	for _, el := range elems {
		res, err := b.Prop.Propagate(cur, el.Surface, b.Direction, false)
		if err != nil {
			if missed(err) {
				diagf("particle %d skips %s (%s): %v", particleID, el.DetectorID, el.Surface, err)
				continue
			}
			opsf("particle %d: %s: %v", particleID, el.DetectorID, err)
			return nil, fmt.Errorf("%s: %w", el.DetectorID, err)
		}
		if !el.Surface.Contains(res.Track.Vector()) {
			diagf("particle %d outside %s at %v", particleID, el.DetectorID, res.Track.Vector())
			continue
		}
		next := s + res.PathLength
		if err := tt.AddState(TruthState{S: next, Track: res.Track, DetectorID: el.DetectorID}); err != nil {
			diagf("particle %d drops %s: %v", particleID, el.DetectorID, err)
			continue
		}
		tracef("particle %d %s s=%g %v", particleID, el.DetectorID, next, res.Track.Vector())
		cur, s = res.Track, next
	}
	return tt, nil
}

// BuildFit predicts start through elems with covariance transport. Each
// reached element becomes a Partial state; one reached outside its extent
// becomes an Invalid state carrying a MissRef.
func (b *Builder) BuildFit(start trf.ETrack, elems []Element) (*FitTrajectory, error) {
	states := []FitState{{S: 0, Track: start, Status: Partial}}
	cur, s := start, 0.0
	for _, el := range elems {
		next, res, err := trf.PropagateETrack(b.Prop, cur, el.Surface, b.Direction)
		if err != nil {
			if missed(err) {
				diagf("fit skips %s: %v", el.DetectorID, err)
				continue
			}
			opsf("fit: %s: %v", el.DetectorID, err)
			return nil, fmt.Errorf("%s: %w", el.DetectorID, err)
		}
		st := FitState{S: s + res.PathLength, Track: next, Status: Partial}
		if !el.Surface.Contains(next.Vector()) {
			st.Status = Invalid
			st.Miss = &MissRef{Detector: el.DetectorID, Reason: "outside extent"}
			states = append(states, st)
			continue
		}
		states = append(states, st)
		cur, s = next, st.S
	}
	ft := NewFitTrajectory(b.Window, states...)
	return ft, ft.Validate()
}
