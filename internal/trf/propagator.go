package trf

import "fmt"

// Result is the outcome of a successful propagation.
type Result struct {
	// Track is the state on the destination surface.
	Track VTrack
	// PathLength is the signed 3D arc length travelled.
	PathLength float64
	// Derivative is ∂(new vector)/∂(old vector), set only when requested.
	Derivative Derivative
}

// Propagator transports a track state onto a destination surface.
//
// Implementations return a wrapped ErrConfiguration when handed a surface
// kind they do not serve, and ErrNoCrossing, ErrNoConvergence or
// ErrOutOfRange when the transport itself fails. The input track is never
// modified. Implementations are safe for concurrent use.
type Propagator interface {
	Propagate(trk VTrack, dst Surface, dir Direction, wantDeriv bool) (Result, error)
	BField() float64
	String() string
}

// PropagateETrack propagates trk and transports its covariance with the
// derivative of the same call.
func PropagateETrack(p Propagator, trk ETrack, dst Surface, dir Direction) (ETrack, Result, error) {
	if err := trk.cov.Check(); err != nil {
		return trk, Result{}, err
	}
	res, err := p.Propagate(trk.VTrack, dst, dir, true)
	if err != nil {
		return trk, res, err
	}
	cov := trk.cov.Transport(res.Derivative)
	if err := cov.Check(); err != nil {
		return trk, res, fmt.Errorf("%s to %s: %w", p, dst, err)
	}
	return ETrack{VTrack: res.Track, cov: cov}, res, nil
}

// Pair is an ordered (origin, destination) pair of surface kinds.
type Pair struct {
	From, To Kind
}

func (p Pair) String() string { return p.From.String() + "->" + p.To.String() }
