package trf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestCovarianceTransport(t *testing.T) {
	t.Parallel()

	c := NewCovariance([]float64{
		4, 1, 0, 0, 0,
		0, 9, 0, 0, 0,
		0, 0, 1, 0.5, 0,
		0, 0, 0, 1, 0,
		0, 0, 0, 0, 0.01,
	})
	require.NoError(t, c.Check())
	assert.Equal(t, 1.0, c.At(1, 0), "lower triangle mirrors the upper")

	j := NewDerivative([]float64{
		1, 2, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 3,
		0, 0, 0, 1, 0,
		0, 0, 0, 0, 1,
	})
	got := c.Transport(j)

	var want, tmp mat.Dense
	tmp.Mul(j.Matrix(), c.Matrix())
	want.Mul(&tmp, j.Matrix().T())
	for r := 0; r < Dim; r++ {
		for k := 0; k < Dim; k++ {
			assert.InDelta(t, want.At(r, k), got.At(r, k), 1e-12, "(%d,%d)", r, k)
			assert.Equal(t, got.At(r, k), got.At(k, r))
		}
	}
	require.NoError(t, got.Check())

	id := c.Transport(Identity())
	for r := 0; r < Dim; r++ {
		for k := 0; k < Dim; k++ {
			assert.Equal(t, c.At(r, k), id.At(r, k))
		}
	}
}

func TestCovarianceCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		c    Covariance
		ok   bool
	}{
		{"diagonal", DiagonalCovariance([Dim]float64{1, 2, 3, 4, 5}), true},
		{"zero", ZeroCovariance(), true},
		{"unset", Covariance{}, false},
		{"negative variance", DiagonalCovariance([Dim]float64{1, -2, 3, 4, 5}), false},
		{"nan", DiagonalCovariance([Dim]float64{1, math.NaN(), 3, 4, 5}), false},
		{"correlation above one", NewCovariance([]float64{
			1, 2, 0, 0, 0,
			0, 1, 0, 0, 0,
			0, 0, 1, 0, 0,
			0, 0, 0, 1, 0,
			0, 0, 0, 0, 1,
		}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.c.Check()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidCovariance)
		})
	}
}

func TestDerivative(t *testing.T) {
	t.Parallel()

	var unset Derivative
	assert.False(t, unset.IsSet())
	assert.Zero(t, unset.At(0, 0))

	a := NewDerivative([]float64{
		2, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
		1, 0, 0, 0, 1,
	})
	b := a.Mul(Identity())
	assert.True(t, b.IsFinite())
	got := mat.Row(nil, 4, b.Matrix())
	assert.True(t, floats.EqualApprox(got, []float64{1, 0, 0, 0, 1}, 1e-15))

	sq := a.Mul(a)
	assert.Equal(t, 4.0, sq.At(0, 0))
	assert.Equal(t, 3.0, sq.At(4, 0))

	assert.Panics(t, func() { NewDerivative(make([]float64, 4)) })
	assert.False(t, DerivativeOf(mat.NewDense(Dim, Dim, []float64{math.Inf(1), 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0})).IsFinite())
}

func TestDirection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dir          Direction
		base         Direction
		move         bool
		neg, zero, p bool
	}{
		{Nearest, Nearest, false, true, true, true},
		{Forward, Forward, false, false, true, true},
		{Backward, Backward, false, true, true, false},
		{NearestMove, Nearest, true, true, false, true},
		{ForwardMove, Forward, true, false, false, true},
		{BackwardMove, Backward, true, true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			t.Parallel()
			base, move := tt.dir.Reduce()
			assert.Equal(t, tt.base, base)
			assert.Equal(t, tt.move, move)
			assert.Equal(t, tt.neg, tt.dir.Accepts(-1))
			assert.Equal(t, tt.zero, tt.dir.Accepts(0))
			assert.Equal(t, tt.p, tt.dir.Accepts(1))
			assert.Equal(t, tt.base.WithMove(), tt.dir.WithMove())
		})
	}
}

func TestTrackValidity(t *testing.T) {
	t.Parallel()

	trk := NewVTrack(NewCylinder(1), Vector{0, 0, 0, 0, 0.1})
	assert.True(t, trk.Valid())
	assert.Equal(t, HeadingUnknown, trk.Heading())
	trk.SetBackward()
	assert.True(t, trk.Backward())
	assert.False(t, trk.Forward())

	var bare VTrack
	assert.False(t, bare.Valid())

	et := NewETrack(NewCylinder(1), Vector{0, 0, 0, 0, 0.1}, DiagonalCovariance([Dim]float64{1, 1, 1, 1, 1}))
	assert.True(t, et.Valid())
	et.SetCovariance(DiagonalCovariance([Dim]float64{-1, 1, 1, 1, 1}))
	assert.False(t, et.Valid())
	et.SetVector(Vector{math.NaN()})
	assert.False(t, et.VTrack.Valid())
}

func TestTrackQOverP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		trk  VTrack
		want float64
	}{
		{"cylinder scales by cos lambda", NewVTrack(NewCylinder(10), Vector{0, 0, 0, 0.75, 0.5}), 0.4},
		{"dca scales by cos lambda", NewVTrack(NewDCA(0, 0, 0, 0), Vector{0, 0, 0, -0.75, -0.5}), -0.4},
		{"zplane reads q/p", NewVTrack(NewZPlane(5), Vector{1, 2, 0.3, 0.4, 0.25}), 0.25},
		{"xyplane reads q/p", NewVTrack(NewXYPlane(0, 5), Vector{1, 2, 0.3, 0.4, -0.25}), -0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, tt.trk.QOverP(), 1e-15)
		})
	}
}
