package trf

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Heading records whether a track crosses its surface in the surface's
// forward or backward sense. Cylinders and DCA surfaces derive it from the
// vector, planes need it explicitly.
type Heading int8

const (
	HeadingUnknown Heading = iota
	HeadingForward
	HeadingBackward
)

func (h Heading) String() string {
	switch h {
	case HeadingForward:
		return "forward"
	case HeadingBackward:
		return "backward"
	}
	return "unknown"
}

// VTrack is a bare track state: a surface, a vector on it and a heading.
// The surface is stored without extent.
type VTrack struct {
	surface Surface
	vec     Vector
	heading Heading
}

// NewVTrack binds vec to srf.
func NewVTrack(srf Surface, vec Vector) VTrack {
	return VTrack{surface: srf.Pure(), vec: vec}
}

// Surface returns the bound surface.
func (t VTrack) Surface() Surface { return t.surface }

// Vector returns the track vector.
func (t VTrack) Vector() Vector { return t.vec }

// SetSurface binds the track to srf without touching the vector.
func (t *VTrack) SetSurface(srf Surface) { t.surface = srf.Pure() }

// SetVector replaces the track vector.
func (t *VTrack) SetVector(v Vector) { t.vec = v }

// Heading returns the crossing sense.
func (t VTrack) Heading() Heading { return t.heading }

// SetHeading sets the crossing sense.
func (t *VTrack) SetHeading(h Heading) { t.heading = h }

// SetForward marks the track as crossing its surface forward.
func (t *VTrack) SetForward() { t.heading = HeadingForward }

// SetBackward marks the track as crossing its surface backward.
func (t *VTrack) SetBackward() { t.heading = HeadingBackward }

// Forward reports a forward crossing.
func (t VTrack) Forward() bool { return t.heading == HeadingForward }

// Backward reports a backward crossing.
func (t VTrack) Backward() bool { return t.heading == HeadingBackward }

// Valid reports whether the track has a surface and a finite vector.
func (t VTrack) Valid() bool {
	return t.surface.IsValid() && t.vec.IsFinite()
}

// QOverP returns q/p. Cylinder and DCA vectors carry q/pT and are scaled
// by cos λ.
func (t VTrack) QOverP() float64 {
	switch t.surface.Kind() {
	case KindCylinder, KindDCA:
		return t.vec[IQpt] / math.Sqrt(1+t.vec[ITlm]*t.vec[ITlm])
	}
	return t.vec[IQp]
}

// SpacePoint returns the track position.
func (t VTrack) SpacePoint() r3.Vec { return t.surface.SpacePoint(t.vec) }

func (t VTrack) String() string {
	return fmt.Sprintf("%s %v %s", t.surface, t.vec, t.heading)
}

// ETrack is a VTrack with a covariance.
type ETrack struct {
	VTrack
	cov Covariance
}

// NewETrack binds vec and cov to srf.
func NewETrack(srf Surface, vec Vector, cov Covariance) ETrack {
	return ETrack{VTrack: NewVTrack(srf, vec), cov: cov}
}

// Covariance returns the error matrix.
func (t ETrack) Covariance() Covariance { return t.cov }

// SetCovariance replaces the error matrix.
func (t *ETrack) SetCovariance(c Covariance) { t.cov = c }

// Valid additionally requires a covariance that passes Check.
func (t ETrack) Valid() bool {
	return t.VTrack.Valid() && t.cov.Check() == nil
}
