package dispatch

import (
	"fmt"

	"github.com/banshee-data/helixprop/internal/config"
	"github.com/banshee-data/helixprop/internal/trf"
	"github.com/banshee-data/helixprop/internal/trf/helix"
	"github.com/banshee-data/helixprop/internal/trf/rootfind"
)

// JoinPairs lists the pairs served by a Join through a cylinder.
var JoinPairs = []trf.Pair{
	{From: trf.KindZPlane, To: trf.KindDCA},
	{From: trf.KindXYPlane, To: trf.KindDCA},
	{From: trf.KindDCA, To: trf.KindZPlane},
	{From: trf.KindDCA, To: trf.KindXYPlane},
}

// DCASolverFromConfig returns the closest-approach solver described by cfg.
func DCASolverFromConfig(cfg *config.TuningConfig) helix.DCASolver {
	return helix.DCASolver{
		BField:               cfg.GetBFieldTesla(),
		SMin:                 cfg.GetDCASMin(),
		SMax:                 cfg.GetDCASMax(),
		MaxBracketIterations: cfg.GetDCAMaxBracketIterations(),
		Residual:             cfg.GetDCAResidual(),
		Linear: rootfind.Linear{
			Tolerance:     cfg.GetRootFindTolerance(),
			MaxIterations: cfg.GetRootFindMaxIterations(),
		},
	}
}

// JoinConfigFromConfig returns the join radius policy described by cfg.
func JoinConfigFromConfig(cfg *config.TuningConfig) JoinConfig {
	return JoinConfig{
		MinRadius:     cfg.GetJoinMinRadius(),
		RadiusFactor:  cfg.GetJoinRadiusFactor(),
		MaxIterations: cfg.GetJoinMaxIterations(),
	}
}

// NewStandard returns a registry with an entry for every ordered pair of
// surface kinds: closed-form helix propagators for helix.DirectPairs, joins
// through a cylinder for JoinPairs and a no-op for DCA to DCA.
func NewStandard(cfg *config.TuningConfig) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", trf.ErrConfiguration, err)
	}
	dca := DCASolverFromConfig(cfg)
	reg := NewRegistry(dca.BField)

	for _, pair := range helix.DirectPairs {
		prop, err := helix.New(pair, dca)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(pair, prop); err != nil {
			return nil, err
		}
	}

	jc := JoinConfigFromConfig(cfg)
	for _, pair := range JoinPairs {
		first, err := reg.Lookup(pair.From, trf.KindCylinder)
		if err != nil {
			return nil, err
		}
		second, err := reg.Lookup(trf.KindCylinder, pair.To)
		if err != nil {
			return nil, err
		}
		join, err := NewJoin(pair, first, second, jc)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(pair, join); err != nil {
			return nil, err
		}
	}

	if err := reg.Register(trf.Pair{From: trf.KindDCA, To: trf.KindDCA}, NewNoop(trf.KindDCA, dca.BField)); err != nil {
		return nil, err
	}
	diagf("standard registry built: %d entries, B=%g T", len(reg.entries), dca.BField)
	return reg, nil
}
