package dispatch

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/helixprop/internal/trf"
	"github.com/banshee-data/helixprop/internal/trf/helix"
)

// JoinConfig sets the intermediate cylinder radius policy. The first
// attempt uses r = max(MinRadius, RadiusFactor·ρ) where ρ is the origin's
// transverse radius. Each retry multiplies r by RadiusFactor.
type JoinConfig struct {
	MinRadius     float64
	RadiusFactor  float64
	MaxIterations int
}

// DefaultJoinConfig returns the stock radius policy.
func DefaultJoinConfig() JoinConfig {
	return JoinConfig{MinRadius: 1.0, RadiusFactor: 1.1, MaxIterations: 32}
}

// Join propagates through an intermediate cylinder for a pair with no
// closed form. The first leg goes to the nearest crossing of the cylinder,
// the second leg honours the caller's direction. Vectors compose in order,
// derivatives as second·first and path lengths add.
type Join struct {
	pair   trf.Pair
	first  trf.Propagator
	second trf.Propagator
	cfg    JoinConfig
}

// NewJoin builds the composite for pair from first (origin → cylinder) and
// second (cylinder → destination).
func NewJoin(pair trf.Pair, first, second trf.Propagator, cfg JoinConfig) (*Join, error) {
	if first.BField() != second.BField() {
		return nil, fmt.Errorf("%w: join legs disagree on field (%g, %g)", trf.ErrConfiguration, first.BField(), second.BField())
	}
	if cfg.MinRadius <= 0 || cfg.RadiusFactor <= 1 || cfg.MaxIterations < 1 {
		return nil, fmt.Errorf("%w: join config %+v", trf.ErrConfiguration, cfg)
	}
	return &Join{pair: pair, first: first, second: second, cfg: cfg}, nil
}

// BField returns the field in Tesla.
func (j *Join) BField() float64 { return j.first.BField() }

func (j *Join) String() string {
	return fmt.Sprintf("join %s via cylinder (rmin=%g, rfac=%g), B=%g T", j.pair, j.cfg.MinRadius, j.cfg.RadiusFactor, j.BField())
}

// Radius returns the first intermediate radius for an origin at transverse radius rho.
func (j *Join) Radius(rho float64) float64 {
	return math.Max(j.cfg.MinRadius, j.cfg.RadiusFactor*rho)
}

// Propagate transports trk onto dst through the intermediate cylinder.
func (j *Join) Propagate(trk trf.VTrack, dst trf.Surface, dir trf.Direction, wantDeriv bool) (trf.Result, error) {
	src := trk.Surface()
	if src.Kind() != j.pair.From || dst.Kind() != j.pair.To {
		opsf("%s handed %s -> %s", j, src.Kind(), dst.Kind())
		return trf.Result{}, fmt.Errorf("%w: %s cannot propagate %s to %s", trf.ErrConfiguration, j, src, dst)
	}
	g, err := helix.ToGlobal(trk)
	if err != nil {
		return trf.Result{}, err
	}
	rho := g.Rxy()
	r := j.Radius(rho)

	for i := 0; i < j.cfg.MaxIterations; i++ {
		if r <= rho {
			r *= j.cfg.RadiusFactor
			continue
		}
		if _, err := helix.DistanceToCylinder(g, r, j.BField(), math.Inf(-1), math.Inf(1)); err != nil {
			diagf("%s: cylinder r=%g unreachable from %s: %v", j, r, src, err)
			return trf.Result{}, fmt.Errorf("%w: intermediate cylinder r=%g unreachable", trf.ErrNoCrossing, r)
		}
		res, err := j.twoLegs(trk, trf.NewCylinder(r), dst, dir, wantDeriv)
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, trf.ErrNoCrossing) {
			return trf.Result{}, err
		}
		diagf("%s: attempt %d at r=%g failed: %v", j, i+1, r, err)
		r *= j.cfg.RadiusFactor
	}
	return trf.Result{}, fmt.Errorf("%w: %s gave up after %d radii (last r=%g)", trf.ErrNoConvergence, j, j.cfg.MaxIterations, r)
}

func (j *Join) twoLegs(trk trf.VTrack, mid, dst trf.Surface, dir trf.Direction, wantDeriv bool) (trf.Result, error) {
	res1, err := j.first.Propagate(trk, mid, trf.Nearest, wantDeriv)
	if err != nil {
		return trf.Result{}, fmt.Errorf("first leg: %w", err)
	}
	res2, err := j.second.Propagate(res1.Track, dst, dir, wantDeriv)
	if err != nil {
		return trf.Result{}, fmt.Errorf("second leg: %w", err)
	}
	out := trf.Result{Track: res2.Track, PathLength: res1.PathLength + res2.PathLength}
	if wantDeriv {
		out.Derivative = res2.Derivative.Mul(res1.Derivative)
	}
	tracef("%s: r=%g s=%g+%g", j.pair, mid.Radius(), res1.PathLength, res2.PathLength)
	return out, nil
}
