package trajectory

import (
	"fmt"
	"math"

	"go-hep.org/x/hep/fmom"

	"github.com/banshee-data/helixprop/internal/trf/helix"
)

// Masses in GeV/c² by absolute PDG code.
var pdgMass = map[int]float64{
	11:   0.000510999,
	13:   0.105658,
	15:   1.77686,
	22:   0,
	211:  0.139570,
	321:  0.493677,
	2212: 0.938272,
}

// Mass returns the rest mass for pdg. Unknown codes are treated as pions.
func Mass(pdg int) float64 {
	if pdg < 0 {
		pdg = -pdg
	}
	if m, ok := pdgMass[pdg]; ok {
		return m
	}
	return pdgMass[211]
}

// Momentum returns the four-momentum of the particle at path length s.
func (t *TruthTrajectory) Momentum(s float64) (fmom.PxPyPzE, error) {
	st, ok := t.State(s)
	if !ok {
		return fmom.PxPyPzE{}, fmt.Errorf("%w: %g", ErrNoState, s)
	}
	g, err := helix.ToGlobal(st.Track)
	if err != nil {
		return fmom.PxPyPzE{}, err
	}
	if g[helix.GQpt] == 0 {
		return fmom.PxPyPzE{}, fmt.Errorf("%w: particle %d has infinite momentum at s=%g", ErrInvalidTrajectory, t.ParticleID, s)
	}
	p := g.Momentum()
	m := Mass(t.PDGID)
	e := math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z + m*m)
	return fmom.NewPxPyPzE(p.X, p.Y, p.Z, e), nil
}
