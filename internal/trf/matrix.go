package trf

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Dim is the dimension of a track vector.
const Dim = 5

// Vector is a track parameter vector. Its meaning is fixed by the surface
// it is bound to.
type Vector [Dim]float64

// Sub returns v−o componentwise.
func (v Vector) Sub(o Vector) Vector {
	var d Vector
	for i := range v {
		d[i] = v[i] - o[i]
	}
	return d
}

// IsFinite reports whether every component is finite.
func (v Vector) IsFinite() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Derivative is a 5×5 Jacobian of an output vector with respect to an
// input vector. The zero value means "not computed".
type Derivative struct {
	m *mat.Dense
}

// Identity returns the 5×5 identity.
func Identity() Derivative {
	m := mat.NewDense(Dim, Dim, nil)
	for i := 0; i < Dim; i++ {
		m.Set(i, i, 1)
	}
	return Derivative{m: m}
}

// NewDerivative builds a derivative from 25 row-major values. The slice is copied.
func NewDerivative(data []float64) Derivative {
	if len(data) != Dim*Dim {
		panic(fmt.Sprintf("trf: derivative needs %d values, got %d", Dim*Dim, len(data)))
	}
	return Derivative{m: mat.NewDense(Dim, Dim, append([]float64(nil), data...))}
}

// DerivativeOf copies a 5×5 matrix into a Derivative.
func DerivativeOf(m mat.Matrix) Derivative {
	r, c := m.Dims()
	if r != Dim || c != Dim {
		panic(fmt.Sprintf("trf: derivative must be %dx%d, got %dx%d", Dim, Dim, r, c))
	}
	return Derivative{m: mat.DenseCopyOf(m)}
}

// IsSet reports whether d holds a matrix.
func (d Derivative) IsSet() bool { return d.m != nil }

// At returns element (i, j).
func (d Derivative) At(i, j int) float64 {
	if d.m == nil {
		return 0
	}
	return d.m.At(i, j)
}

// Matrix exposes d as a read-only gonum matrix.
func (d Derivative) Matrix() mat.Matrix { return d.m }

// Mul returns d·first, the derivative of applying first and then d.
func (d Derivative) Mul(first Derivative) Derivative {
	var out mat.Dense
	out.Mul(d.m, first.m)
	return Derivative{m: &out}
}

// IsFinite reports whether every element is finite.
func (d Derivative) IsFinite() bool {
	if d.m == nil {
		return false
	}
	for i := 0; i < Dim; i++ {
		for j := 0; j < Dim; j++ {
			x := d.m.At(i, j)
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return false
			}
		}
	}
	return true
}

func (d Derivative) String() string {
	if d.m == nil {
		return "Derivative(unset)"
	}
	return fmt.Sprintf("%v", mat.Formatted(d.m, mat.Squeeze()))
}

// Covariance is a symmetric 5×5 track error matrix.
type Covariance struct {
	m *mat.SymDense
}

// NewCovariance builds a covariance from 25 row-major values. Only the upper
// triangle is read.
func NewCovariance(data []float64) Covariance {
	if len(data) != Dim*Dim {
		panic(fmt.Sprintf("trf: covariance needs %d values, got %d", Dim*Dim, len(data)))
	}
	return Covariance{m: mat.NewSymDense(Dim, append([]float64(nil), data...))}
}

// DiagonalCovariance returns a covariance with the given variances.
func DiagonalCovariance(variances [Dim]float64) Covariance {
	m := mat.NewSymDense(Dim, nil)
	for i, v := range variances {
		m.SetSym(i, i, v)
	}
	return Covariance{m: m}
}

// ZeroCovariance returns an all-zero covariance.
func ZeroCovariance() Covariance {
	return Covariance{m: mat.NewSymDense(Dim, nil)}
}

// IsSet reports whether c holds a matrix.
func (c Covariance) IsSet() bool { return c.m != nil }

// At returns element (i, j).
func (c Covariance) At(i, j int) float64 {
	if c.m == nil {
		return 0
	}
	return c.m.At(i, j)
}

// Matrix exposes c as a read-only gonum symmetric matrix.
func (c Covariance) Matrix() mat.Symmetric { return c.m }

// Transport returns J·C·Jᵀ.
func (c Covariance) Transport(j Derivative) Covariance {
	var jc, jcj mat.Dense
	jc.Mul(j.m, c.m)
	jcj.Mul(&jc, j.m.T())
	out := mat.NewSymDense(Dim, nil)
	for r := 0; r < Dim; r++ {
		for k := r; k < Dim; k++ {
			out.SetSym(r, k, 0.5*(jcj.At(r, k)+jcj.At(k, r)))
		}
	}
	return Covariance{m: out}
}

// Check reports a covariance with non-finite elements, a negative variance,
// or a correlation outside [-1, 1].
func (c Covariance) Check() error {
	if c.m == nil {
		return fmt.Errorf("%w: unset", ErrInvalidCovariance)
	}
	for i := 0; i < Dim; i++ {
		vi := c.m.At(i, i)
		if math.IsNaN(vi) || math.IsInf(vi, 0) || vi < 0 {
			return fmt.Errorf("%w: variance %d is %g", ErrInvalidCovariance, i, vi)
		}
		for j := i + 1; j < Dim; j++ {
			cij := c.m.At(i, j)
			if math.IsNaN(cij) || math.IsInf(cij, 0) {
				return fmt.Errorf("%w: element (%d,%d) is %g", ErrInvalidCovariance, i, j, cij)
			}
			bound := math.Sqrt(vi * c.m.At(j, j))
			if math.Abs(cij) > bound*(1+1e-6)+1e-300 {
				return fmt.Errorf("%w: correlation (%d,%d) exceeds unity", ErrInvalidCovariance, i, j)
			}
		}
	}
	return nil
}

func (c Covariance) String() string {
	if c.m == nil {
		return "Covariance(unset)"
	}
	return fmt.Sprintf("%v", mat.Formatted(c.m, mat.Squeeze()))
}
