package helix

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/helixprop/internal/trf"
	"github.com/banshee-data/helixprop/internal/trf/rootfind"
	"github.com/banshee-data/helixprop/internal/units"
)

// DCASolver locates the closest approach of a helix to a tilted line. Path
// lengths are 3D arc lengths; the window bounds the returned solution.
type DCASolver struct {
	BField               float64
	SMin, SMax           float64
	MaxBracketIterations int
	// Residual is the |f| at which a seed is accepted without bracketing.
	Residual float64
	Linear   rootfind.Linear
}

// Default closest-approach limits.
const (
	DefaultDCAWindow            = 1000.0
	DefaultMaxBracketIterations = 100
	DefaultDCAResidual          = 1e-12
	bracketGrowth               = 1.2
	bracketNudge                = 0.1
)

// NewDCASolver returns a solver with the default window and limits.
func NewDCASolver(bfield float64) DCASolver {
	return DCASolver{
		BField:               bfield,
		SMin:                 -DefaultDCAWindow,
		SMax:                 DefaultDCAWindow,
		MaxBracketIterations: DefaultMaxBracketIterations,
		Residual:             DefaultDCAResidual,
	}
}

// dcaFunc is the closest-approach condition along the helix through g as a
// function of transverse arc length: the transverse offset from the line at
// the same z projected on the direction of motion.
type dcaFunc struct {
	g     Global
	srf   trf.Surface
	bk    float64
	kappa float64
}

func newDCAFunc(g Global, srf trf.Surface, bfield float64) dcaFunc {
	bk := units.BFac * bfield
	return dcaFunc{g: g, srf: srf, bk: bk, kappa: bk * g[GQpt]}
}

func (f dcaFunc) value(sT float64) float64 {
	v, _ := constraint(f.srf, advance(f.g, sT, f.bk))
	return v
}

// slope returns df/dsT = 1 − tanλ·(b·t) + κ·(D·n).
func (f dcaFunc) slope(sT float64) float64 {
	g := advance(f.g, sT, f.bk)
	_, grad := constraint(f.srf, g)
	s, c := math.Sincos(g[GPsi])
	return grad.AtVec(GX)*c + grad.AtVec(GY)*s + grad.AtVec(GZ)*g[GTlm] + grad.AtVec(GPsi)*f.kappa
}

// Value evaluates the closest-approach condition at 3D arc length s from
// the track. It is zero at the closest approach.
func (d DCASolver) Value(trk trf.VTrack, srf trf.Surface, s float64) (float64, error) {
	g, err := ToGlobal(trk)
	if err != nil {
		return 0, err
	}
	return newDCAFunc(g, srf, d.BField).value(s / g.SecLambda()), nil
}

// PathLength returns the 3D arc length from trk to its closest approach to
// the DCA surface srf. The seed is the untilted solution for the line
// position at the track's z, chosen according to dir.
func (d DCASolver) PathLength(trk trf.VTrack, srf trf.Surface, dir trf.Direction) (float64, error) {
	if srf.Kind() != trf.KindDCA {
		return 0, fmt.Errorf("%w: closest approach needs a DCA surface, got %s", trf.ErrConfiguration, srf)
	}
	g, err := ToGlobal(trk)
	if err != nil {
		return 0, err
	}
	sT, err := d.solve(g, srf, dir)
	if err != nil {
		return 0, err
	}
	return sT * g.SecLambda(), nil
}

// solve returns the transverse arc length to the closest approach.
func (d DCASolver) solve(g Global, srf trf.Surface, dir trf.Direction) (float64, error) {
	f := newDCAFunc(g, srf, d.BField)
	x0, y0, bx, by := srf.Anchor()
	z := g[GZ]
	cands, err := dcaCandidates(g, x0+bx*z, y0+by*z, f.kappa)
	if err != nil {
		return 0, err
	}
	s0, err := choose(cands, dir)
	if err != nil {
		return 0, err
	}

	sec := g.SecLambda()
	lo, hi := d.SMin/sec, d.SMax/sec
	inWindow := func(s float64) (float64, error) {
		if s < lo || s > hi {
			return s, fmt.Errorf("%w: s=%g outside [%g, %g]", trf.ErrOutOfRange, s*sec, d.SMin, d.SMax)
		}
		return s, nil
	}

	residual := d.Residual
	if residual <= 0 {
		residual = DefaultDCAResidual
	}
	f0 := f.value(s0)
	if math.Abs(f0) <= residual {
		return inWindow(s0)
	}

	// One Newton step from the seed.
	s1, f1 := s0, f0
	if dfds := f.slope(s0); dfds != 0 {
		s1 = s0 - f0/dfds
		f1 = f.value(s1)
		if math.Abs(f1) <= residual {
			return inWindow(s1)
		}
	}

	maxit := d.MaxBracketIterations
	if maxit <= 0 {
		maxit = DefaultMaxBracketIterations
	}
	for i := 0; i < maxit && f0*f1 > 0; i++ {
		switch {
		case f0 == f1:
			s1 = bracketGrowth*s1 + math.Copysign(bracketNudge, s1)
			f1 = f.value(s1)
		case math.Abs(f0) > math.Abs(f1):
			s0 = (1+bracketGrowth)*s1 - bracketGrowth*s0
			f0 = f.value(s0)
		default:
			s1 = (1+bracketGrowth)*s0 - bracketGrowth*s1
			f1 = f.value(s1)
		}
	}
	if f0*f1 > 0 {
		diagf("dca bracket not found after %d iterations: s0=%g f0=%g s1=%g f1=%g", maxit, s0, f0, s1, f1)
		return s1, fmt.Errorf("%w: closest approach not bracketed after %d iterations", trf.ErrNoConvergence, maxit)
	}

	fn := func(s float64) (float64, error) { return f.value(s), nil }
	root, err := d.Linear.SolveInWindow(fn, s0, s1, lo, hi)
	if err != nil {
		return root, rootError(err)
	}
	return root, nil
}

// rootError maps a rootfind failure onto the propagation taxonomy.
func rootError(err error) error {
	switch {
	case errors.Is(err, rootfind.ErrOutOfRange):
		return fmt.Errorf("%w: %w", trf.ErrOutOfRange, err)
	case errors.Is(err, rootfind.ErrTooManyIterations):
		return fmt.Errorf("%w: %w", trf.ErrNoConvergence, err)
	}
	return fmt.Errorf("%w: %w", trf.ErrNoCrossing, err)
}

// DistanceToCylinder returns the 3D arc length from g to the cylinder of
// radius r, choosing the smallest solution in [smin, smax] after moving to
// the neighbouring turn where needed. A helix that never reaches the radius
// reports a wrapped rootfind.ErrInvalidFunction; a solution that exists
// only outside the window reports trf.ErrOutOfRange.
func DistanceToCylinder(g Global, r, bfield, smin, smax float64) (float64, error) {
	kappa := units.BFac * bfield * g[GQpt]
	sec := g.SecLambda()
	cands, err := cylinderCrossings(g, r, kappa, false)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", rootfind.ErrInvalidFunction, err)
	}
	lo, hi := smin/sec, smax/sec
	best, found := 0.0, false
	for _, s := range cands {
		if kappa != 0 {
			turn := units.TwoPi / math.Abs(kappa)
			if s < lo {
				s += turn
			}
			if s > hi {
				s -= turn
			}
		}
		if s < lo || s > hi {
			continue
		}
		if !found || math.Abs(s) < math.Abs(best) {
			best, found = s, true
		}
	}
	if !found {
		return cands[0] * sec, fmt.Errorf("%w: cylinder r=%g not reached within [%g, %g]", trf.ErrOutOfRange, r, smin, smax)
	}
	return best * sec, nil
}
