package helix

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Global state indices.
const (
	GX = iota
	GY
	GZ
	GPsi // azimuth of the transverse direction
	GTlm // tanλ = dz/dsT
	GQpt // q/pT
	GDim
)

// Global is a helix state in the lab frame.
type Global [GDim]float64

// Position returns (x, y, z).
func (g Global) Position() r3.Vec {
	return r3.Vec{X: g[GX], Y: g[GY], Z: g[GZ]}
}

// Direction returns the unit 3D direction of motion.
func (g Global) Direction() r3.Vec {
	return r3.Unit(r3.Vec{X: math.Cos(g[GPsi]), Y: math.Sin(g[GPsi]), Z: g[GTlm]})
}

// Momentum returns the momentum in GeV/c for a unit-charge particle.
// A zero q/pT yields infinite components.
func (g Global) Momentum() r3.Vec {
	pt := 1 / math.Abs(g[GQpt])
	return r3.Vec{X: pt * math.Cos(g[GPsi]), Y: pt * math.Sin(g[GPsi]), Z: pt * g[GTlm]}
}

// Charge returns the sign of q/pT.
func (g Global) Charge() float64 {
	switch {
	case g[GQpt] > 0:
		return 1
	case g[GQpt] < 0:
		return -1
	}
	return 0
}

// Rxy returns the transverse distance from the z axis.
func (g Global) Rxy() float64 { return math.Hypot(g[GX], g[GY]) }

// SecLambda returns ds/dsT = √(1+tan²λ).
func (g Global) SecLambda() float64 { return math.Sqrt(1 + g[GTlm]*g[GTlm]) }

// seriesLimit is the |κ·sT| below which the arc factors use their Taylor series.
const seriesLimit = 1e-3

// arcFactors returns f1 = sin(a)/a, f2 = (1−cos a)/a and their derivatives.
func arcFactors(a float64) (f1, f2, d1, d2 float64) {
	if math.Abs(a) < seriesLimit {
		a2 := a * a
		f1 = 1 - a2/6 + a2*a2/120
		f2 = a * (0.5 - a2/24 + a2*a2/720)
		d1 = a * (-1.0/3 + a2/30)
		d2 = 0.5 - a2/8 + a2*a2/144
		return
	}
	s, c := math.Sincos(a)
	f1 = s / a
	f2 = (1 - c) / a
	d1 = (a*c - s) / (a * a)
	d2 = (a*s - (1 - c)) / (a * a)
	return
}

// sinc returns sin(x)/x.
func sinc(x float64) float64 {
	if math.Abs(x) < seriesLimit {
		return 1 - x*x/6
	}
	return math.Sin(x) / x
}

// advance moves g by transverse arc length sT. bk is BFac·B, so the
// curvature is κ = bk·q/pT and dψ/dsT = κ.
func advance(g Global, sT, bk float64) Global {
	out, _, _, _ := displacement(g, sT, bk)
	return out
}

func displacement(g Global, sT, bk float64) (out Global, dx, dy, a float64) {
	a = bk * g[GQpt] * sT
	f1, f2, _, _ := arcFactors(a)
	s, c := math.Sincos(g[GPsi])
	dx = sT * (c*f1 - s*f2)
	dy = sT * (s*f1 + c*f2)
	out = g
	out[GX] += dx
	out[GY] += dy
	out[GZ] += g[GTlm] * sT
	out[GPsi] += a
	return out, dx, dy, a
}

// step is a transported state with its partials.
type step struct {
	g  Global
	dg *mat.Dense    // ∂g'/∂g, 6×6
	ds *mat.VecDense // ∂g'/∂sT
}

// transport moves g by sT and returns the partial derivatives of the new
// state with respect to the old state and to sT.
func transport(g Global, sT, bk float64) step {
	out, dx, dy, a := displacement(g, sT, bk)
	_, _, d1, d2 := arcFactors(a)
	s, c := math.Sincos(g[GPsi])
	kappa := bk * g[GQpt]

	t := mat.NewDense(GDim, GDim, nil)
	for i := 0; i < GDim; i++ {
		t.Set(i, i, 1)
	}
	t.Set(GX, GPsi, -dy)
	t.Set(GY, GPsi, dx)
	t.Set(GX, GQpt, bk*sT*sT*(c*d1-s*d2))
	t.Set(GY, GQpt, bk*sT*sT*(s*d1+c*d2))
	t.Set(GZ, GTlm, sT)
	t.Set(GPsi, GQpt, bk*sT)

	ds := mat.NewVecDense(GDim, []float64{
		math.Cos(out[GPsi]), math.Sin(out[GPsi]), g[GTlm], kappa, 0, 0,
	})
	return step{g: out, dg: t, ds: ds}
}
