package trajectory

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/helixprop/internal/trf"
	"github.com/banshee-data/helixprop/internal/trf/helix"
)

func barrelBuilder() *Builder {
	cc := trf.Pair{From: trf.KindCylinder, To: trf.KindCylinder}
	return NewBuilder(helix.MustNew(cc, helix.NewDCASolver(2)))
}

func barrelElements() []Element {
	return []Element{
		{Surface: trf.NewCylinder(10), DetectorID: "b1"},
		{Surface: trf.NewCylinder(1000), DetectorID: "far"},
		{Surface: trf.NewCylinder(20), DetectorID: "b2"},
		{Surface: trf.NewBoundedCylinder(40, -1, 1), DetectorID: "short"},
		{Surface: trf.NewCylinder(60), DetectorID: "b3"},
	}
}

func TestBuildTruth(t *testing.T) {
	var diag bytes.Buffer
	SetLogWriters(nil, &diag, nil)
	defer SetLogWriters(nil, nil, nil)

	start := trf.NewVTrack(trf.NewCylinder(5), trf.Vector{0, 0, 0, 0.2, 1})
	tt, err := barrelBuilder().BuildTruth(3, 211, start, "beam", barrelElements())
	require.NoError(t, err)
	require.True(t, tt.Valid())

	states := tt.States()
	ids := make([]string, len(states))
	for i, st := range states {
		ids[i] = st.DetectorID
	}
	assert.Equal(t, []string{"beam", "b1", "b2", "b3"}, ids)
	for i := 1; i < len(states); i++ {
		assert.Greater(t, states[i].S, states[i-1].S)
	}
	assert.InDelta(t, 5*math.Sqrt(1.04), states[1].S, 1e-2)

	assert.False(t, tt.HasSurface(trf.NewCylinder(1000)))
	assert.False(t, tt.HasSurface(trf.NewCylinder(40)))
	assert.Contains(t, diag.String(), "far")
	assert.Contains(t, diag.String(), "short")
}

func TestBuildTruthConfigurationError(t *testing.T) {
	t.Parallel()

	start := trf.NewVTrack(trf.NewCylinder(5), trf.Vector{0, 0, 0, 0.2, 1})
	elems := []Element{{Surface: trf.NewZPlane(50), DetectorID: "endcap"}}
	_, err := barrelBuilder().BuildTruth(3, 211, start, "beam", elems)
	assert.ErrorIs(t, err, trf.ErrConfiguration)
}

func TestBuildFit(t *testing.T) {
	t.Parallel()

	cov := trf.DiagonalCovariance([trf.Dim]float64{1e-6, 1e-4, 1e-6, 1e-6, 1e-8})
	start := trf.NewETrack(trf.NewCylinder(5), trf.Vector{0, 0, 0, 0.2, 1}, cov)
	elems := []Element{
		{Surface: trf.NewCylinder(10), DetectorID: "b1"},
		{Surface: trf.NewCylinder(20), DetectorID: "b2"},
		{Surface: trf.NewBoundedCylinder(40, -1, 1), DetectorID: "short"},
	}
	ft, err := barrelBuilder().BuildFit(start, elems)
	require.NoError(t, err)
	require.Equal(t, 4, ft.Len())
	assert.Zero(t, ft.NumberOfMeasurements())

	states := ft.States()
	for _, st := range states[:3] {
		assert.Equal(t, Partial, st.Status)
		assert.Nil(t, st.Miss)
		assert.True(t, st.Track.Valid())
	}
	last := states[3]
	assert.Equal(t, Invalid, last.Status)
	require.NotNil(t, last.Miss)
	assert.Equal(t, "short", last.Miss.Detector)

	// The azimuth uncertainty grows as the track moves out.
	assert.Greater(t, states[2].Track.Covariance().At(trf.IPhi, trf.IPhi), 0.0)
	assert.Greater(t, states[2].Track.Covariance().At(trf.IZ, trf.IZ), cov.At(trf.IZ, trf.IZ))
}

func TestBuildFitRejectsUnsetCovariance(t *testing.T) {
	t.Parallel()

	start := trf.NewETrack(trf.NewCylinder(5), trf.Vector{0, 0, 0, 0.2, 1}, trf.Covariance{})
	elems := []Element{{Surface: trf.NewCylinder(10), DetectorID: "b1"}}
	_, err := barrelBuilder().BuildFit(start, elems)
	assert.ErrorIs(t, err, trf.ErrInvalidCovariance)
}
