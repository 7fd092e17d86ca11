package helix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/helixprop/internal/trf"
	"github.com/banshee-data/helixprop/internal/units"
)

// ToGlobal returns the global helix state of a track.
func ToGlobal(trk trf.VTrack) (Global, error) {
	g, _, err := toGlobal(trk.Surface(), trk.Vector(), trk.Heading())
	return g, err
}

// FromGlobal expresses g on srf. The caller is responsible for g lying on
// the surface; only the DCA chart projects.
func FromGlobal(srf trf.Surface, g Global) (trf.VTrack, error) {
	vec, h, _, err := fromGlobal(srf, g)
	if err != nil {
		return trf.VTrack{}, err
	}
	trk := trf.NewVTrack(srf, vec)
	trk.SetHeading(h)
	return trk, nil
}

// headingSign returns +1 for a forward track and -1 for a backward one.
// Plane charts cannot be read without a heading.
func headingSign(srf trf.Surface, h trf.Heading) (float64, error) {
	switch h {
	case trf.HeadingForward:
		return 1, nil
	case trf.HeadingBackward:
		return -1, nil
	}
	return 0, fmt.Errorf("%w: track on %s has no heading", trf.ErrConfiguration, srf)
}

// toGlobal maps a track vector to the global state and returns ∂g/∂p (6×5).
func toGlobal(srf trf.Surface, v trf.Vector, h trf.Heading) (Global, *mat.Dense, error) {
	d := mat.NewDense(GDim, trf.Dim, nil)
	var g Global
	switch srf.Kind() {
	case trf.KindCylinder:
		r := srf.Radius()
		s, c := math.Sincos(v[trf.IPhi])
		g = Global{r * c, r * s, v[trf.IZ], v[trf.IPhi] + v[trf.IAlf], v[trf.ITlm], v[trf.IQpt]}
		d.Set(GX, trf.IPhi, -r*s)
		d.Set(GY, trf.IPhi, r*c)
		d.Set(GZ, trf.IZ, 1)
		d.Set(GPsi, trf.IPhi, 1)
		d.Set(GPsi, trf.IAlf, 1)
		d.Set(GTlm, trf.ITlm, 1)
		d.Set(GQpt, trf.IQpt, 1)

	case trf.KindZPlane:
		sig, err := headingSign(srf, h)
		if err != nil {
			return g, nil, err
		}
		a3, a4, a5 := v[trf.IDXDZ], v[trf.IDYDZ], v[trf.IQp]
		m2 := a3*a3 + a4*a4
		if m2 == 0 {
			return g, nil, fmt.Errorf("%w: track on %s is parallel to z", trf.ErrNoCrossing, srf)
		}
		m := math.Sqrt(m2)
		hm := math.Sqrt(1+m2) / m
		dh := -1 / (m2 * math.Sqrt(1+m2))
		g = Global{v[trf.IX], v[trf.IY], srf.Z(), math.Atan2(sig*a4, sig*a3), sig / m, a5 * hm}
		d.Set(GX, trf.IX, 1)
		d.Set(GY, trf.IY, 1)
		d.Set(GPsi, trf.IDXDZ, -a4/m2)
		d.Set(GPsi, trf.IDYDZ, a3/m2)
		d.Set(GTlm, trf.IDXDZ, -sig*a3/(m2*m))
		d.Set(GTlm, trf.IDYDZ, -sig*a4/(m2*m))
		d.Set(GQpt, trf.IDXDZ, a5*dh*a3/m)
		d.Set(GQpt, trf.IDYDZ, a5*dh*a4/m)
		d.Set(GQpt, trf.IQp, hm)

	case trf.KindXYPlane:
		sig, err := headingSign(srf, h)
		if err != nil {
			return g, nil, err
		}
		sn, cs := math.Sincos(srf.NormalPhi())
		u := srf.Distance()
		a3, a4, a5 := v[trf.IDVDU], v[trf.IDZDU], v[trf.IQp]
		h2 := 1 + a3*a3
		h1 := math.Sqrt(h2)
		w := math.Sqrt(1 + a4*a4/h2)
		g = Global{
			u*cs - v[trf.IV]*sn,
			u*sn + v[trf.IV]*cs,
			v[trf.IZC],
			srf.NormalPhi() + math.Atan2(sig*a3, sig),
			sig * a4 / h1,
			a5 * w,
		}
		d.Set(GX, trf.IV, -sn)
		d.Set(GY, trf.IV, cs)
		d.Set(GZ, trf.IZC, 1)
		d.Set(GPsi, trf.IDVDU, 1/h2)
		d.Set(GTlm, trf.IDVDU, -sig*a4*a3/(h2*h1))
		d.Set(GTlm, trf.IDZDU, sig/h1)
		d.Set(GQpt, trf.IDVDU, -a5*a3*a4*a4/(h2*h2*w))
		d.Set(GQpt, trf.IDZDU, a5*a4/(h2*w))
		d.Set(GQpt, trf.IQp, w)

	case trf.KindDCA:
		x0, y0, bx, by := srf.Anchor()
		rs, z, phid := v[trf.IRSig], v[trf.IZ], v[trf.IPhiD]
		s, c := math.Sincos(phid)
		g = Global{x0 + bx*z + rs*s, y0 + by*z - rs*c, z, phid, v[trf.ITlm], v[trf.IQpt]}
		d.Set(GX, trf.IRSig, s)
		d.Set(GX, trf.IZ, bx)
		d.Set(GX, trf.IPhiD, rs*c)
		d.Set(GY, trf.IRSig, -c)
		d.Set(GY, trf.IZ, by)
		d.Set(GY, trf.IPhiD, rs*s)
		d.Set(GZ, trf.IZ, 1)
		d.Set(GPsi, trf.IPhiD, 1)
		d.Set(GTlm, trf.ITlm, 1)
		d.Set(GQpt, trf.IQpt, 1)

	default:
		return g, nil, fmt.Errorf("%w: unsupported surface %s", trf.ErrConfiguration, srf)
	}
	return g, d, nil
}

// fromGlobal maps a global state on srf to its track vector and heading and
// returns ∂p/∂g (5×6).
func fromGlobal(srf trf.Surface, g Global) (trf.Vector, trf.Heading, *mat.Dense, error) {
	d := mat.NewDense(trf.Dim, GDim, nil)
	var v trf.Vector
	h := trf.HeadingForward
	psi, tlm, q := g[GPsi], g[GTlm], g[GQpt]

	switch srf.Kind() {
	case trf.KindCylinder:
		x, y := g[GX], g[GY]
		rho2 := x*x + y*y
		if rho2 == 0 {
			return v, h, nil, fmt.Errorf("%w: state on the z axis", trf.ErrNoCrossing)
		}
		phi := units.NormPhi(math.Atan2(y, x))
		alf := units.NormAngle(psi - phi)
		v = trf.Vector{phi, g[GZ], alf, tlm, q}
		if math.Cos(alf) < 0 {
			h = trf.HeadingBackward
		}
		d.Set(trf.IPhi, GX, -y/rho2)
		d.Set(trf.IPhi, GY, x/rho2)
		d.Set(trf.IZ, GZ, 1)
		d.Set(trf.IAlf, GX, y/rho2)
		d.Set(trf.IAlf, GY, -x/rho2)
		d.Set(trf.IAlf, GPsi, 1)
		d.Set(trf.ITlm, GTlm, 1)
		d.Set(trf.IQpt, GQpt, 1)

	case trf.KindZPlane:
		if tlm == 0 {
			return v, h, nil, fmt.Errorf("%w: state has no z motion", trf.ErrNoCrossing)
		}
		s, c := math.Sincos(psi)
		sec := math.Sqrt(1 + tlm*tlm)
		v = trf.Vector{g[GX], g[GY], c / tlm, s / tlm, q / sec}
		if tlm < 0 {
			h = trf.HeadingBackward
		}
		d.Set(trf.IX, GX, 1)
		d.Set(trf.IY, GY, 1)
		d.Set(trf.IDXDZ, GPsi, -s/tlm)
		d.Set(trf.IDXDZ, GTlm, -c/(tlm*tlm))
		d.Set(trf.IDYDZ, GPsi, c/tlm)
		d.Set(trf.IDYDZ, GTlm, -s/(tlm*tlm))
		d.Set(trf.IQp, GTlm, -q*tlm/(sec*sec*sec))
		d.Set(trf.IQp, GQpt, 1/sec)

	case trf.KindXYPlane:
		sn, cs := math.Sincos(srf.NormalPhi())
		sb, cb := math.Sincos(psi - srf.NormalPhi())
		if cb == 0 {
			return v, h, nil, fmt.Errorf("%w: state parallel to %s", trf.ErrNoCrossing, srf)
		}
		sec := math.Sqrt(1 + tlm*tlm)
		v = trf.Vector{-g[GX]*sn + g[GY]*cs, g[GZ], sb / cb, tlm / cb, q / sec}
		if cb < 0 {
			h = trf.HeadingBackward
		}
		d.Set(trf.IV, GX, -sn)
		d.Set(trf.IV, GY, cs)
		d.Set(trf.IZC, GZ, 1)
		d.Set(trf.IDVDU, GPsi, 1/(cb*cb))
		d.Set(trf.IDZDU, GPsi, tlm*sb/(cb*cb))
		d.Set(trf.IDZDU, GTlm, 1/cb)
		d.Set(trf.IQp, GTlm, -q*tlm/(sec*sec*sec))
		d.Set(trf.IQp, GQpt, 1/sec)

	case trf.KindDCA:
		x0, y0, bx, by := srf.Anchor()
		z := g[GZ]
		dx, dy := g[GX]-x0-bx*z, g[GY]-y0-by*z
		s, c := math.Sincos(psi)
		v = trf.Vector{dx*s - dy*c, z, units.NormPhi(psi), tlm, q}
		d.Set(trf.IRSig, GX, s)
		d.Set(trf.IRSig, GY, -c)
		d.Set(trf.IRSig, GZ, -(bx*s - by*c))
		d.Set(trf.IRSig, GPsi, dx*c+dy*s)
		d.Set(trf.IZ, GZ, 1)
		d.Set(trf.IPhiD, GPsi, 1)
		d.Set(trf.ITlm, GTlm, 1)
		d.Set(trf.IQpt, GQpt, 1)

	default:
		return v, h, nil, fmt.Errorf("%w: unsupported surface %s", trf.ErrConfiguration, srf)
	}
	return v, h, d, nil
}

// constraint returns F(g) and ∇F for the surface. F vanishes on the surface.
func constraint(srf trf.Surface, g Global) (float64, *mat.VecDense) {
	grad := mat.NewVecDense(GDim, nil)
	switch srf.Kind() {
	case trf.KindCylinder:
		r := srf.Radius()
		grad.SetVec(GX, g[GX])
		grad.SetVec(GY, g[GY])
		return 0.5 * (g[GX]*g[GX] + g[GY]*g[GY] - r*r), grad
	case trf.KindZPlane:
		grad.SetVec(GZ, 1)
		return g[GZ] - srf.Z(), grad
	case trf.KindXYPlane:
		sn, cs := math.Sincos(srf.NormalPhi())
		grad.SetVec(GX, cs)
		grad.SetVec(GY, sn)
		return g[GX]*cs + g[GY]*sn - srf.Distance(), grad
	case trf.KindDCA:
		x0, y0, bx, by := srf.Anchor()
		z := g[GZ]
		dx, dy := g[GX]-x0-bx*z, g[GY]-y0-by*z
		s, c := math.Sincos(g[GPsi])
		grad.SetVec(GX, c)
		grad.SetVec(GY, s)
		grad.SetVec(GZ, -(bx*c + by*s))
		grad.SetVec(GPsi, -dx*s+dy*c)
		return dx*c + dy*s, grad
	}
	return 0, grad
}
