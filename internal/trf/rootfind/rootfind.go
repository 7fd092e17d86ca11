// Package rootfind solves f(x) = 0 for a scalar function on a bracketing
// interval using the Illinois variant of regula falsi.
package rootfind

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidFunction reports an evaluation error or a non-finite value.
	ErrInvalidFunction = errors.New("invalid function call")
	// ErrOutOfRange reports that the interval does not bracket a root.
	ErrOutOfRange = errors.New("root not in range")
	// ErrTooManyIterations reports an exhausted iteration budget.
	ErrTooManyIterations = errors.New("too many iterations")
)

// Func is a scalar function. A non-nil error aborts the solve.
type Func func(x float64) (float64, error)

// Default solver limits.
const (
	DefaultTolerance     = 1e-12
	DefaultMaxIterations = 200
)

// Linear is a bracketed secant solver. Zero fields take the defaults.
type Linear struct {
	// Tolerance is the relative width at which the bracket counts as
	// converged: |b−a| <= Tolerance·(1+|b|).
	Tolerance float64
	// MaxIterations bounds the number of function evaluations after the
	// two endpoint evaluations.
	MaxIterations int
}

func (l Linear) limits() (float64, int) {
	tol, maxit := l.Tolerance, l.MaxIterations
	if tol <= 0 {
		tol = DefaultTolerance
	}
	if maxit <= 0 {
		maxit = DefaultMaxIterations
	}
	return tol, maxit
}

// Solve returns a root of f in [x1, x2]. The endpoints may be given in
// either order. The interval must bracket a sign change; otherwise Solve
// returns ErrOutOfRange.
func (l Linear) Solve(f Func, x1, x2 float64) (float64, error) {
	tol, maxit := l.limits()
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	fa, err := eval(f, x1)
	if err != nil {
		return x1, err
	}
	if fa == 0 {
		return x1, nil
	}
	fb, err := eval(f, x2)
	if err != nil {
		return x2, err
	}
	if fb == 0 {
		return x2, nil
	}
	if fa*fb > 0 {
		return x1, fmt.Errorf("%w: f(%g)=%g, f(%g)=%g", ErrOutOfRange, x1, fa, x2, fb)
	}

	a, b := x1, x2
	for i := 0; i < maxit; i++ {
		c := b - fb*(b-a)/(fb-fa)
		lo, hi := math.Min(a, b), math.Max(a, b)
		if !(c > lo && c < hi) {
			c = 0.5 * (a + b)
		}
		fc, err := eval(f, c)
		if err != nil {
			return c, err
		}
		if fc == 0 {
			return c, nil
		}
		if fc*fb < 0 {
			a, fa = b, fb
		} else {
			fa /= 2
		}
		b, fb = c, fc
		if math.Abs(b-a) <= tol*(1+math.Abs(b)) {
			return b, nil
		}
	}
	return b, fmt.Errorf("%w: %d iterations", ErrTooManyIterations, maxit)
}

// SolveInWindow clips the bracket [x1, x2] to [lo, hi] before solving. A
// clipped interval that no longer brackets a root reports ErrOutOfRange.
func (l Linear) SolveInWindow(f Func, x1, x2, lo, hi float64) (float64, error) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	a, b := math.Max(lo, x1), math.Min(hi, x2)
	if a > b {
		return x1, fmt.Errorf("%w: bracket [%g, %g] outside window [%g, %g]", ErrOutOfRange, x1, x2, lo, hi)
	}
	return l.Solve(f, a, b)
}

func eval(f Func, x float64) (float64, error) {
	y, err := f(x)
	if err != nil {
		return y, fmt.Errorf("%w: %w", ErrInvalidFunction, err)
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return y, fmt.Errorf("%w: f(%g) = %g", ErrInvalidFunction, x, y)
	}
	return y, nil
}
