package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/helixprop/internal/config"
	"github.com/banshee-data/helixprop/internal/monitoring"
	"github.com/banshee-data/helixprop/internal/timeutil"
	"github.com/banshee-data/helixprop/internal/trajectory"
	"github.com/banshee-data/helixprop/internal/trf"
	"github.com/banshee-data/helixprop/internal/trf/dispatch"
)

func TestToyDetectorElements(t *testing.T) {
	d := ToyDetector()
	require.Len(t, d.Barrel, len(barrelRadii)+1)

	fwd := d.Elements(0.4)
	assert.Equal(t, "barrel1", fwd[0].DetectorID)
	assert.Equal(t, "stave", fwd[4].DetectorID)
	assert.Equal(t, "disk+", fwd[len(fwd)-1].DetectorID)
	assert.Equal(t, "disk-", d.Elements(-0.4)[len(fwd)-1].DetectorID)
	assert.Len(t, d.Barrel, len(barrelRadii)+1, "Elements does not grow the barrel")
}

func TestGeneratorIsReproducible(t *testing.T) {
	a := NewGenerator(42, 1, 2, 0.5)
	b := NewGenerator(42, 1, 2, 0.5)
	for i := 0; i < 20; i++ {
		pa, pb := a.Next(), b.Next()
		assert.Equal(t, pa, pb)
		assert.Equal(t, i, pa.ID)

		v := pa.Start.Vector()
		assert.Contains(t, []int{211, -211}, pa.PDG)
		assert.LessOrEqual(t, v[trf.ITlm], 0.5)
		assert.GreaterOrEqual(t, v[trf.ITlm], -0.5)
		pt := 1 / v[trf.IQpt]
		if pt < 0 {
			pt = -pt
		}
		assert.GreaterOrEqual(t, pt, 1.0)
		assert.LessOrEqual(t, pt, 2.0)
		assert.NotZero(t, pa.Lineage)
	}
}

func newTestScanner(t *testing.T) *Scanner {
	t.Helper()
	cfg := config.DefaultTuningConfig()
	reg, err := dispatch.NewStandard(cfg)
	require.NoError(t, err)
	return &Scanner{
		Registry: reg,
		Detector: ToyDetector(),
		Window:   trajectory.WindowFromConfig(cfg),
		Units:    "mm",
		Clock:    timeutil.NewMockClock(time.Unix(0, 0)),
	}
}

func TestReturnDirection(t *testing.T) {
	assert.Equal(t, trf.Backward, returnDirection(12.5))
	assert.Equal(t, trf.Forward, returnDirection(-3))
}

func TestScannerRun(t *testing.T) {
	orig := monitoring.Logf
	monitoring.SetLogger(t.Logf)
	defer monitoring.SetLogger(orig)

	scan := newTestScanner(t)
	sum := scan.Run(NewGenerator(7, 0.5, 5, 1.5), 25)
	assert.Equal(t, 25, sum.Particles)
	assert.Zero(t, sum.Failed)
	assert.Greater(t, sum.States, 25)
	assert.Less(t, sum.MaxDeviation, 1e-6)
	assert.Zero(t, sum.Elapsed, "mock clock never advances")
}

func TestScannerRunLoopers(t *testing.T) {
	orig := monitoring.Logf
	monitoring.SetLogger(t.Logf)
	defer monitoring.SetLogger(orig)

	// Below 0.4 GeV the outer barrel is out of reach in 2 T and particles
	// curl several times before reaching a disk.
	scan := newTestScanner(t)
	sum := scan.Run(NewGenerator(3, 0.1, 0.4, 0.3), 60)
	assert.Equal(t, 60, sum.Particles)
	assert.Zero(t, sum.Failed)
	assert.Less(t, sum.MaxDeviation, 1e-6, "each state returns to the beam on the turn it lands on")
}

func TestRoundTripAfterSeveralTurns(t *testing.T) {
	scan := newTestScanner(t)
	start := trf.NewVTrack(scan.Detector.Beam, trf.Vector{0, 0, 0.4, 0.05, 1 / 0.2})
	start.SetForward()

	// pT 0.2 GeV in 2 T curls with radius 33 cm, so z = 70 is about six turns out.
	res, err := scan.Registry.Propagate(start, trf.NewZPlane(70), trf.Forward, false)
	require.NoError(t, err)
	require.Greater(t, res.PathLength, 1000.0)

	st := trajectory.TruthState{S: res.PathLength, Track: res.Track, DetectorID: "disk+"}
	// The disk point sits at ρ ≈ 56 cm, inside the 67 cm reach of the circle,
	// so the intermediate cylinder of the return join is reachable.
	dev, err := scan.roundTrip(start, st)
	require.NoError(t, err)
	assert.Less(t, dev, 1e-6)

	back, err := scan.Registry.Propagate(res.Track, scan.Detector.Beam, trf.Backward, false)
	require.NoError(t, err)
	assert.Less(t, back.PathLength, 0.0)
	assert.Greater(t, res.PathLength+back.PathLength, 1000.0, "lands on a later turn than the start")
}
