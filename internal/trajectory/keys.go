package trajectory

import (
	"math"
	"sort"

	"github.com/banshee-data/helixprop/internal/config"
)

// Window bounds the path lengths a trajectory accepts and sets the key
// separation: two path lengths closer than KeyEpsilon are the same key.
type Window struct {
	SMin, SMax float64
	KeyEpsilon float64
}

// DefaultWindow returns the ±1e30 window with a 1e-9 key separation.
func DefaultWindow() Window {
	return Window{SMin: -1e30, SMax: 1e30, KeyEpsilon: 1e-9}
}

// WindowFromConfig returns the window described by cfg.
func WindowFromConfig(cfg *config.TuningConfig) Window {
	return Window{
		SMin:       cfg.GetTrajectorySMin(),
		SMax:       cfg.GetTrajectorySMax(),
		KeyEpsilon: cfg.GetTrajectoryKeyEpsilon(),
	}
}

// Contains reports whether s lies in [SMin, SMax].
func (w Window) Contains(s float64) bool {
	return s >= w.SMin && s <= w.SMax
}

// search returns the index of the first key not below s−eps and whether it
// matches s within eps. keys must be ascending.
func search(n int, key func(int) float64, s, eps float64) (int, bool) {
	i := sort.Search(n, func(i int) bool { return key(i) >= s-eps })
	return i, i < n && math.Abs(key(i)-s) <= eps
}
