package helix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/helixprop/internal/trf"
	"github.com/banshee-data/helixprop/internal/units"
)

// DirectPairs lists the pairs served by a closed-form Propagator. Planes
// reach the closest-approach surface through an intermediate cylinder.
var DirectPairs = []trf.Pair{
	{From: trf.KindCylinder, To: trf.KindCylinder},
	{From: trf.KindCylinder, To: trf.KindZPlane},
	{From: trf.KindZPlane, To: trf.KindCylinder},
	{From: trf.KindCylinder, To: trf.KindXYPlane},
	{From: trf.KindXYPlane, To: trf.KindCylinder},
	{From: trf.KindZPlane, To: trf.KindZPlane},
	{From: trf.KindZPlane, To: trf.KindXYPlane},
	{From: trf.KindXYPlane, To: trf.KindZPlane},
	{From: trf.KindXYPlane, To: trf.KindXYPlane},
	{From: trf.KindCylinder, To: trf.KindDCA},
	{From: trf.KindDCA, To: trf.KindCylinder},
}

// Supported reports whether p is one of DirectPairs.
func Supported(p trf.Pair) bool {
	for _, d := range DirectPairs {
		if d == p {
			return true
		}
	}
	return false
}

// Propagator is the closed-form helix propagator for one pair of surface
// kinds. It is immutable and safe for concurrent use.
type Propagator struct {
	pair trf.Pair
	bk   float64
	dca  DCASolver
}

// New returns the propagator for pair p. The DCA solver supplies the field
// and, for a closest-approach destination, the path-length window and
// bracketing limits.
func New(p trf.Pair, dca DCASolver) (*Propagator, error) {
	if !Supported(p) {
		return nil, fmt.Errorf("%w: no closed-form propagator for %s", trf.ErrConfiguration, p)
	}
	return &Propagator{pair: p, bk: units.BFac * dca.BField, dca: dca}, nil
}

// MustNew is New for static setup. It panics on an unsupported pair.
func MustNew(p trf.Pair, dca DCASolver) *Propagator {
	prop, err := New(p, dca)
	if err != nil {
		panic(err)
	}
	return prop
}

// Pair returns the surface kinds served.
func (p *Propagator) Pair() trf.Pair { return p.pair }

// BField returns the field in Tesla.
func (p *Propagator) BField() float64 { return p.dca.BField }

func (p *Propagator) String() string {
	return fmt.Sprintf("helix %s propagator, B=%g T", p.pair, p.dca.BField)
}

// Propagate transports trk onto dst.
func (p *Propagator) Propagate(trk trf.VTrack, dst trf.Surface, dir trf.Direction, wantDeriv bool) (trf.Result, error) {
	src := trk.Surface()
	if src.Kind() != p.pair.From || dst.Kind() != p.pair.To {
		opsf("%s handed %s -> %s", p, src.Kind(), dst.Kind())
		return trf.Result{}, fmt.Errorf("%w: %s cannot propagate %s to %s", trf.ErrConfiguration, p, src, dst)
	}
	_, move := dir.Reduce()
	same := src.PureEqual(dst)
	if same && !move {
		out := trk
		out.SetSurface(dst)
		res := trf.Result{Track: out}
		if wantDeriv {
			res.Derivative = trf.Identity()
		}
		return res, nil
	}

	g1, d1, err := toGlobal(src, trk.Vector(), trk.Heading())
	if err != nil {
		return trf.Result{}, err
	}
	sT, err := p.pathLength(g1, dst, dir, same)
	if err != nil {
		diagf("%s %s from %s to %s failed: %v", p, dir, src, dst, err)
		return trf.Result{}, err
	}
	st := transport(g1, sT, p.bk)
	vec, heading, d2, err := fromGlobal(dst, st.g)
	if err != nil {
		return trf.Result{}, err
	}
	out := trf.NewVTrack(dst, vec)
	out.SetHeading(heading)
	res := trf.Result{Track: out, PathLength: sT * g1.SecLambda()}
	tracef("%s %s: s=%g %v -> %v", p.pair, dir, res.PathLength, trk.Vector(), vec)

	if wantDeriv {
		_, grad := constraint(dst, st.g)
		der, err := chain(d2, st, grad, d1)
		if err != nil {
			return trf.Result{}, err
		}
		res.Derivative = der
	}
	return res, nil
}

// pathLength returns the transverse arc length to dst under dir.
func (p *Propagator) pathLength(g Global, dst trf.Surface, dir trf.Direction, onSurface bool) (float64, error) {
	kappa := p.bk * g[GQpt]
	var cands []float64
	var err error
	switch dst.Kind() {
	case trf.KindCylinder:
		cands, err = cylinderCrossings(g, dst.Radius(), kappa, onSurface)
	case trf.KindZPlane:
		cands, err = zPlaneCrossing(g, dst.Z(), onSurface)
	case trf.KindXYPlane:
		cands, err = xyPlaneCrossings(g, dst.NormalPhi(), dst.Distance(), kappa, onSurface)
	case trf.KindDCA:
		if dst.Tilted() {
			sT, err := p.dca.solve(g, dst, dir)
			if err != nil {
				return 0, err
			}
			if !dir.Accepts(sT) {
				return 0, fmt.Errorf("%w: closest approach at s=%g is not %s", trf.ErrNoCrossing, sT, dir)
			}
			return sT, nil
		}
		x0, y0, _, _ := dst.Anchor()
		cands, err = dcaCandidates(g, x0, y0, kappa)
	}
	if err != nil {
		return 0, err
	}
	return choose(cands, dir)
}

// chain assembles ∂p₂/∂p₁ = d2·(T + ds⊗ds/dg)·d1, where ds/dg follows from
// holding the destination constraint at zero.
func chain(d2 *mat.Dense, st step, grad *mat.VecDense, d1 *mat.Dense) (trf.Derivative, error) {
	den := mat.Dot(grad, st.ds)
	if den == 0 || math.IsNaN(den) {
		return trf.Derivative{}, fmt.Errorf("%w: helix tangent to destination", trf.ErrNoCrossing)
	}
	var gradT mat.VecDense
	gradT.MulVec(st.dg.T(), grad)

	var m mat.Dense
	m.RankOne(st.dg, -1/den, st.ds, &gradT)

	var tmp, j mat.Dense
	tmp.Mul(d2, &m)
	j.Mul(&tmp, d1)
	der := trf.DerivativeOf(&j)
	if !der.IsFinite() {
		return trf.Derivative{}, fmt.Errorf("%w: non-finite derivative", trf.ErrNoCrossing)
	}
	return der, nil
}
