// Package dispatch selects a propagator by the kinds of the origin and
// destination surfaces.
//
// Responsibilities: the (origin, destination) registry, the composite
// propagator that joins two legs through an intermediate cylinder, the
// no-op propagator for closest-approach surfaces, and the standard
// registry built from the tuning configuration.
// Key types: Registry, Join, Noop.
//
// Dependency rule: dispatch may depend on trf, trf/helix and
// internal/config. Concrete solvers never depend on dispatch.
package dispatch
