package trajectory

import (
	"fmt"
	"strings"

	"github.com/banshee-data/helixprop/internal/trf"
)

// Lineage is a bit set of the heavy or resonant ancestors of a particle.
type Lineage uint32

const (
	LineageUDS Lineage = 1 << iota
	LineageCharm
	LineageAntiCharm
	LineageBottom
	LineageAntiBottom
	LineageTop
	LineageAntiTop
	LineageZ
	LineageWMinus
	LineageWPlus
	LineagePsi
	LineageUpsilon
	LineageTauMinus
	LineageTauPlus
)

var lineageNames = []struct {
	bit  Lineage
	name string
}{
	{LineageUDS, "uds"},
	{LineageCharm, "c"},
	{LineageAntiCharm, "cbar"},
	{LineageBottom, "b"},
	{LineageAntiBottom, "bbar"},
	{LineageTop, "t"},
	{LineageAntiTop, "tbar"},
	{LineageZ, "Z"},
	{LineageWMinus, "W-"},
	{LineageWPlus, "W+"},
	{LineagePsi, "J/psi"},
	{LineageUpsilon, "Upsilon"},
	{LineageTauMinus, "tau-"},
	{LineageTauPlus, "tau+"},
}

// LineageFor returns the bit for an ancestor with PDG code pdg, or zero if
// the code is not tracked.
func LineageFor(pdg int) Lineage {
	switch pdg {
	case 1, -1, 2, -2, 3, -3:
		return LineageUDS
	case 4:
		return LineageCharm
	case -4:
		return LineageAntiCharm
	case 5:
		return LineageBottom
	case -5:
		return LineageAntiBottom
	case 6:
		return LineageTop
	case -6:
		return LineageAntiTop
	case 23:
		return LineageZ
	case 24:
		return LineageWPlus
	case -24:
		return LineageWMinus
	case 443:
		return LineagePsi
	case 553:
		return LineageUpsilon
	case 15:
		return LineageTauMinus
	case -15:
		return LineageTauPlus
	}
	return 0
}

// With returns l with the bits for each ancestor PDG code added.
func (l Lineage) With(pdgs ...int) Lineage {
	for _, p := range pdgs {
		l |= LineageFor(p)
	}
	return l
}

// Has reports whether every bit of o is set in l.
func (l Lineage) Has(o Lineage) bool { return o != 0 && l&o == o }

// Parents returns the names of the set bits in bit order.
func (l Lineage) Parents() []string {
	var out []string
	for _, n := range lineageNames {
		if l&n.bit != 0 {
			out = append(out, n.name)
		}
	}
	return out
}

func (l Lineage) String() string {
	if l == 0 {
		return "none"
	}
	return strings.Join(l.Parents(), "|")
}

// TruthState is a generated track state on a detector surface.
type TruthState struct {
	S          float64
	Track      trf.VTrack
	DetectorID string
}

// Valid reports whether the track is usable.
func (s TruthState) Valid() bool { return s.Track.Valid() }

// TruthTrajectory is the generated path of one particle, ordered by path
// length.
type TruthTrajectory struct {
	ParticleID int
	PDGID      int
	Lineage    Lineage

	window Window
	states []TruthState
}

// NewTruthTrajectory returns an empty trajectory for a particle.
func NewTruthTrajectory(particleID, pdgID int, window Window) *TruthTrajectory {
	return &TruthTrajectory{ParticleID: particleID, PDGID: pdgID, window: window}
}

// Window returns the accepted path-length window.
func (t *TruthTrajectory) Window() Window { return t.window }

// Len returns the number of states.
func (t *TruthTrajectory) Len() int { return len(t.states) }

func (t *TruthTrajectory) key(i int) float64 { return t.states[i].S }

// AddState inserts st. A state already present at the same path length is
// kept and ErrDuplicateState returned; a path length outside the window is
// rejected with ErrInvalidTrajectory.
func (t *TruthTrajectory) AddState(st TruthState) error {
	if !t.window.Contains(st.S) {
		return fmt.Errorf("%w: s=%g outside [%g, %g]", ErrInvalidTrajectory, st.S, t.window.SMin, t.window.SMax)
	}
	i, ok := search(len(t.states), t.key, st.S, t.window.KeyEpsilon)
	if ok {
		return fmt.Errorf("%w: s=%g", ErrDuplicateState, st.S)
	}
	t.states = append(t.states, TruthState{})
	copy(t.states[i+1:], t.states[i:])
	t.states[i] = st
	return nil
}

// States returns the states in ascending path length.
func (t *TruthTrajectory) States() []TruthState {
	return append([]TruthState(nil), t.states...)
}

// State returns the state at path length s.
func (t *TruthTrajectory) State(s float64) (TruthState, bool) {
	i, ok := search(len(t.states), t.key, s, t.window.KeyEpsilon)
	if !ok {
		return TruthState{}, false
	}
	return t.states[i], true
}

// StateAt returns the first state whose surface is structurally equal to srf.
func (t *TruthTrajectory) StateAt(srf trf.Surface) (TruthState, bool) {
	for _, st := range t.states {
		if st.Track.Surface().PureEqual(srf) {
			return st, true
		}
	}
	return TruthState{}, false
}

// HasSurface reports whether any state lies on srf.
func (t *TruthTrajectory) HasSurface(srf trf.Surface) bool {
	_, ok := t.StateAt(srf)
	return ok
}

// StateIn is StateAt restricted to path lengths in [s1, s2).
func (t *TruthTrajectory) StateIn(srf trf.Surface, s1, s2 float64) (TruthState, bool) {
	i, _ := search(len(t.states), t.key, s1, 0)
	for ; i < len(t.states) && t.states[i].S < s2; i++ {
		if t.states[i].Track.Surface().PureEqual(srf) {
			return t.states[i], true
		}
	}
	return TruthState{}, false
}

// Validate requires at least one state and a valid track in every state.
func (t *TruthTrajectory) Validate() error {
	if len(t.states) == 0 {
		return fmt.Errorf("%w: particle %d has no states", ErrInvalidTrajectory, t.ParticleID)
	}
	for _, st := range t.states {
		if !st.Valid() {
			return fmt.Errorf("%w: particle %d invalid track at s=%g", ErrInvalidTrajectory, t.ParticleID, st.S)
		}
	}
	return nil
}

// Valid reports whether Validate passes.
func (t *TruthTrajectory) Valid() bool { return t.Validate() == nil }
