// Package trajectory holds the ordered, path-length keyed containers that
// accumulate track states along a reconstructed (fit) or simulated (truth)
// trajectory.
//
// Responsibilities: fit status grading, fit states and fit trajectories,
// truth states and truth trajectories with particle identity and lineage,
// truth 4-momentum, and a builder that folds successive propagations into
// a trajectory.
// Key types: FitTrajectory, TruthTrajectory, Builder.
//
// Containers carry no locking. Concurrent mutation of one container needs
// external synchronisation; one trajectory per worker needs none.
package trajectory
