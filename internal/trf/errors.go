package trf

import "errors"

// Propagation failure taxonomy. Every propagator wraps one of these so that
// callers can branch with errors.Is.
var (
	// ErrConfiguration reports a wrong surface kind handed to a propagator
	// or a missing registry entry. It indicates a setup defect.
	ErrConfiguration = errors.New("propagator configuration error")

	// ErrNoCrossing reports that the requested transport has no solution.
	ErrNoCrossing = errors.New("no crossing")

	// ErrNoConvergence reports an exhausted iteration budget.
	ErrNoConvergence = errors.New("numerical non-convergence")

	// ErrOutOfRange reports a solution outside the path-length window.
	ErrOutOfRange = errors.New("path length out of range")

	// ErrInvalidCovariance reports a transported covariance that failed Check.
	ErrInvalidCovariance = errors.New("invalid covariance")

	// ErrUnknownParameter reports a parameter index not defined for a surface kind.
	ErrUnknownParameter = errors.New("unknown surface parameter")
)
