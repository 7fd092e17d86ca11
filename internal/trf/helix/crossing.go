package helix

import (
	"fmt"
	"math"

	"github.com/banshee-data/helixprop/internal/trf"
	"github.com/banshee-data/helixprop/internal/units"
)

// tauRoots solves a·τ² + b·τ + c = 0 for τ = tan(κ·sT/2)/κ and returns the
// corresponding transverse arc lengths, both within (−π/|κ|, π/|κ|].
func tauRoots(a, b, c, kappa float64) ([]float64, error) {
	var taus []float64
	switch {
	case a == 0 && b == 0:
		return nil, fmt.Errorf("%w: degenerate crossing equation", trf.ErrNoCrossing)
	case a == 0:
		taus = []float64{-c / b}
	default:
		disc := b*b - 4*a*c
		if disc < 0 {
			return nil, fmt.Errorf("%w: negative discriminant %g", trf.ErrNoCrossing, disc)
		}
		q := -0.5 * (b + math.Copysign(math.Sqrt(disc), b))
		if q == 0 {
			taus = []float64{0}
		} else {
			taus = []float64{q / a, c / q}
		}
	}
	out := make([]float64, 0, len(taus))
	for _, tau := range taus {
		var s float64
		if kappa == 0 {
			s = 2 * tau
		} else {
			s = 2 * math.Atan(kappa*tau) / kappa
		}
		if !math.IsNaN(s) && !math.IsInf(s, 0) {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no finite path length", trf.ErrNoCrossing)
	}
	return out, nil
}

// cylinderCrossings returns the transverse arc lengths at which g meets the
// cylinder of radius r. onSurface forces the zero-length root.
func cylinderCrossings(g Global, r, kappa float64, onSurface bool) ([]float64, error) {
	x, y := g[GX], g[GY]
	s, c := math.Sincos(g[GPsi])
	rho2 := x*x + y*y
	dr2 := rho2 - r*r
	if onSurface {
		dr2 = 0
	}
	pt := x*c + y*s  // P·t
	pn := -x*s + y*c // P·n
	a := dr2*kappa*kappa + 4*kappa*pn + 4
	return tauRoots(a, 4*pt, dr2, kappa)
}

// zPlaneCrossing returns the transverse arc length to the plane at z0.
func zPlaneCrossing(g Global, z0 float64, onSurface bool) ([]float64, error) {
	if g[GTlm] == 0 {
		return nil, fmt.Errorf("%w: no z motion", trf.ErrNoCrossing)
	}
	if onSurface {
		return []float64{0}, nil
	}
	return []float64{(z0 - g[GZ]) / g[GTlm]}, nil
}

// xyPlaneCrossings returns the transverse arc lengths to the plane with
// normal azimuth phin at distance u.
func xyPlaneCrossings(g Global, phin, u, kappa float64, onSurface bool) ([]float64, error) {
	sn, cs := math.Sincos(phin)
	du := u - (g[GX]*cs + g[GY]*sn)
	if onSurface {
		du = 0
	}
	sb, cb := math.Sincos(g[GPsi] - phin)
	a := du*kappa*kappa + 2*kappa*sb
	return tauRoots(a, -2*cb, du, kappa)
}

// dcaClosedForm returns the transverse arc length to the closest approach
// of g to the vertical line through (ax, ay). It uses the invariants of
// helical motion W = t − κ ẑ×P and L = (P×t)·ẑ − κ|P|²/2 and picks the
// minimum of the distance within half a turn.
func dcaClosedForm(g Global, ax, ay, kappa float64) (float64, error) {
	px, py := g[GX]-ax, g[GY]-ay
	s, c := math.Sincos(g[GPsi])
	wx, wy := c+kappa*py, s-kappa*px
	w := math.Hypot(wx, wy)
	if w == 0 {
		return 0, fmt.Errorf("%w: helix centred on the line", trf.ErrNoCrossing)
	}
	psi2 := math.Atan2(wy, wx)
	l := px*s - py*c - 0.5*kappa*(px*px+py*py)
	rs := 2 * l / (1 + w)
	s2, c2 := math.Sincos(psi2)
	qx, qy := rs*s2, -rs*c2

	a := units.NormAngle(psi2 - g[GPsi])
	sm, cm := math.Sincos(g[GPsi] + 0.5*a)
	return ((qx-px)*cm + (qy-py)*sm) / sinc(0.5*a), nil
}

// dcaCandidates returns the closed-form closest approach together with the
// same approach one turn later and one turn earlier.
func dcaCandidates(g Global, ax, ay, kappa float64) ([]float64, error) {
	s0, err := dcaClosedForm(g, ax, ay, kappa)
	if err != nil {
		return nil, err
	}
	if kappa == 0 {
		return []float64{s0}, nil
	}
	turn := units.TwoPi / math.Abs(kappa)
	return []float64{s0, s0 + turn, s0 - turn}, nil
}

// choose returns the candidate with the smallest |sT| accepted by dir.
func choose(cands []float64, dir trf.Direction) (float64, error) {
	best, found := 0.0, false
	for _, s := range cands {
		if !dir.Accepts(s) {
			continue
		}
		if !found || math.Abs(s) < math.Abs(best) {
			best, found = s, true
		}
	}
	if !found {
		return 0, fmt.Errorf("%w: no %s solution among %v", trf.ErrNoCrossing, dir, cands)
	}
	return best, nil
}
