package helix

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/helixprop/internal/trf"
)

func TestChartRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		trk  trf.VTrack
	}{
		{"cylinder", cylTrack()},
		{"zplane", zTrack()},
		{"xyplane", xyTrack()},
		{"dca", dcaTrack(dcaLine)},
		{"tilted dca", dcaTrack(dcaTilted)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g, err := ToGlobal(tt.trk)
			require.NoError(t, err)
			v, _ := constraint(tt.trk.Surface(), g)
			assert.InDelta(t, 0, v, 1e-12, "state lies on its surface")

			back, err := FromGlobal(tt.trk.Surface(), g)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.trk.Vector(), back.Vector(), approx); diff != "" {
				t.Errorf("chart mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, trf.HeadingForward, back.Heading())

			sp := tt.trk.SpacePoint()
			assert.InDelta(t, g[GX], sp.X, 1e-12)
			assert.InDelta(t, g[GY], sp.Y, 1e-12)
			assert.InDelta(t, g[GZ], sp.Z, 1e-12)
		})
	}
}

func TestChartHeading(t *testing.T) {
	t.Parallel()

	g := Global{3, 4, 1, math.Pi + 0.9, -0.5, 0.2}

	cyl, err := FromGlobal(trf.NewCylinder(5), g)
	require.NoError(t, err)
	assert.True(t, cyl.Backward(), "moving inward")

	zp, err := FromGlobal(trf.NewZPlane(1), g)
	require.NoError(t, err)
	assert.True(t, zp.Backward(), "moving to -z")

	back, err := ToGlobal(zp)
	require.NoError(t, err)
	assert.InDelta(t, g[GPsi]-2*math.Pi, back[GPsi], 1e-12)
	assert.InDelta(t, g[GTlm], back[GTlm], 1e-12)

	_, err = FromGlobal(trf.NewZPlane(1), Global{3, 4, 1, 0.2, 0, 0.2})
	assert.ErrorIs(t, err, trf.ErrNoCrossing)
}

func TestGlobalKinematics(t *testing.T) {
	t.Parallel()

	g := Global{3, 4, 0, 0, 0.75, -0.5}
	assert.Equal(t, 5.0, g.Rxy())
	assert.Equal(t, 1.25, g.SecLambda())
	assert.Equal(t, -1.0, g.Charge())
	p := g.Momentum()
	assert.InDelta(t, 2, p.X, 1e-15)
	assert.InDelta(t, 1.5, p.Z, 1e-15)
	d := g.Direction()
	assert.InDelta(t, 1, math.Sqrt(d.X*d.X+d.Y*d.Y+d.Z*d.Z), 1e-15)
}

func TestChoose(t *testing.T) {
	t.Parallel()

	cands := []float64{-3, 5, 0}
	tests := []struct {
		dir  trf.Direction
		want float64
		err  bool
	}{
		{trf.Nearest, 0, false},
		{trf.NearestMove, -3, false},
		{trf.Forward, 0, false},
		{trf.ForwardMove, 5, false},
		{trf.BackwardMove, -3, false},
	}
	for _, tt := range tests {
		got, err := choose(cands, tt.dir)
		require.NoError(t, err, tt.dir.String())
		assert.Equal(t, tt.want, got, tt.dir.String())
	}
	_, err := choose([]float64{-1, -2}, trf.ForwardMove)
	assert.ErrorIs(t, err, trf.ErrNoCrossing)
}
