package trajectory

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/banshee-data/helixprop/internal/trf"
)

var (
	// ErrNoState reports a lookup or drop at a path length with no state.
	ErrNoState = errors.New("no state at path length")
	// ErrDuplicateState reports an add at a path length already present.
	ErrDuplicateState = errors.New("duplicate path length")
	// ErrInvalidTrajectory reports a violated container invariant.
	ErrInvalidTrajectory = errors.New("invalid trajectory")
)

// HitRef identifies a measurement in the caller's hit store.
type HitRef struct {
	Detector string
	Index    int
}

// MissRef marks a surface where a hit was expected but not found.
type MissRef struct {
	Detector string
	Reason   string
}

// FitState is one point of a trajectory under reconstruction.
type FitState struct {
	S         float64
	Track     trf.ETrack
	Status    FitStatus
	ChiSquare float64
	Hit       *HitRef
	Miss      *MissRef
}

// Valid reports whether the state is usable at all.
func (s FitState) Valid() bool { return s.Status != BadState }

// HasValidFit reports whether the state carries a meaningful fit.
func (s FitState) HasValidFit() bool {
	return s.Status != BadState && s.Status != Invalid
}

// FitTrajectory is an ordered set of fit states keyed by path length.
type FitTrajectory struct {
	id     uuid.UUID
	window Window
	states []FitState
}

// NewFitTrajectory returns a trajectory holding states. Later states
// replace earlier ones at the same key. Check Valid before use.
func NewFitTrajectory(window Window, states ...FitState) *FitTrajectory {
	t := &FitTrajectory{id: uuid.New(), window: window}
	t.Update(states)
	return t
}

// ID returns the trajectory's identifier.
func (t *FitTrajectory) ID() uuid.UUID { return t.id }

// Window returns the accepted path-length window.
func (t *FitTrajectory) Window() Window { return t.window }

// Len returns the number of states.
func (t *FitTrajectory) Len() int { return len(t.states) }

func (t *FitTrajectory) key(i int) float64 { return t.states[i].S }

// Insert adds st, replacing any state already at its key.
func (t *FitTrajectory) Insert(st FitState) {
	i, ok := search(len(t.states), t.key, st.S, t.window.KeyEpsilon)
	if ok {
		t.states[i] = st
		return
	}
	t.states = append(t.states, FitState{})
	copy(t.states[i+1:], t.states[i:])
	t.states[i] = st
}

// Update replaces the whole state set and reports whether the result is valid.
func (t *FitTrajectory) Update(states []FitState) bool {
	t.states = make([]FitState, 0, len(states))
	for _, st := range states {
		t.Insert(st)
	}
	if err := t.Validate(); err != nil {
		diagf("fit trajectory %s: %v", t.id, err)
		return false
	}
	return true
}

// States returns the states in ascending path length.
func (t *FitTrajectory) States() []FitState {
	return append([]FitState(nil), t.states...)
}

// State returns the state at path length s.
func (t *FitTrajectory) State(s float64) (FitState, bool) {
	i, ok := search(len(t.states), t.key, s, t.window.KeyEpsilon)
	if !ok {
		return FitState{}, false
	}
	return t.states[i], true
}

// StateAt returns the first state, in path-length order, whose surface is
// structurally equal to srf.
func (t *FitTrajectory) StateAt(srf trf.Surface) (FitState, bool) {
	for _, st := range t.states {
		if st.Track.Surface().PureEqual(srf) {
			return st, true
		}
	}
	return FitState{}, false
}

// StateIn is StateAt restricted to path lengths in [s1, s2).
func (t *FitTrajectory) StateIn(srf trf.Surface, s1, s2 float64) (FitState, bool) {
	i, _ := search(len(t.states), t.key, s1, 0)
	for ; i < len(t.states) && t.states[i].S < s2; i++ {
		if t.states[i].Track.Surface().PureEqual(srf) {
			return t.states[i], true
		}
	}
	return FitState{}, false
}

// DropFit discards the fit at path length s. The slot stays: its vector,
// covariance and chi-square are zeroed and its status becomes Invalid.
func (t *FitTrajectory) DropFit(s float64) error {
	i, ok := search(len(t.states), t.key, s, t.window.KeyEpsilon)
	if !ok {
		return fmt.Errorf("%w: %g", ErrNoState, s)
	}
	st := &t.states[i]
	st.Track = trf.NewETrack(st.Track.Surface(), trf.Vector{}, trf.ZeroCovariance())
	st.ChiSquare = 0
	st.Status = Invalid
	return nil
}

// NumberOfMeasurements counts states with an associated hit.
func (t *FitTrajectory) NumberOfMeasurements() int {
	n := 0
	for _, st := range t.states {
		if st.Hit != nil {
			n++
		}
	}
	return n
}

// Validate reports the first violated invariant: the trajectory must be
// non-empty, every path length must lie in the window and no state may be
// BadState.
func (t *FitTrajectory) Validate() error {
	if len(t.states) == 0 {
		return fmt.Errorf("%w: no states", ErrInvalidTrajectory)
	}
	for _, st := range t.states {
		if !t.window.Contains(st.S) {
			return fmt.Errorf("%w: s=%g outside [%g, %g]", ErrInvalidTrajectory, st.S, t.window.SMin, t.window.SMax)
		}
		if st.Status == BadState {
			return fmt.Errorf("%w: bad state at s=%g", ErrInvalidTrajectory, st.S)
		}
	}
	return nil
}

// Valid reports whether Validate passes.
func (t *FitTrajectory) Valid() bool { return t.Validate() == nil }
