// Package trf holds the value types shared by every track propagator.
//
// Responsibilities: surfaces and their per-kind parameters, the 5-element
// track vector, 5×5 derivative and covariance matrices, bare (VTrack) and
// uncertain (ETrack) track states, the direction policy, the failure
// taxonomy and the Propagator contract.
// Key types: Surface, VTrack, ETrack, Derivative, Covariance, Propagator.
//
// Dependency rule: trf depends only on internal/units and gonum. Solvers
// live in trf/helix, registries in trf/dispatch.
package trf
