package config

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"

	"github.com/banshee-data/helixprop/internal/fsutil"
	"github.com/banshee-data/helixprop/internal/units"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for propagation tuning.
// Every field is optional; the Get* methods supply defaults for omitted ones.
type TuningConfig struct {
	// Field
	BFieldTesla *float64 `json:"bfield_tesla,omitempty"`

	// Composite (join) propagator params
	JoinMinRadius     *float64 `json:"join_min_radius,omitempty"`
	JoinRadiusFactor  *float64 `json:"join_radius_factor,omitempty"`
	JoinMaxIterations *int     `json:"join_max_iterations,omitempty"`

	// Closest-approach solver params
	DCASMin                 *float64 `json:"dca_smin,omitempty"`
	DCASMax                 *float64 `json:"dca_smax,omitempty"`
	DCAMaxBracketIterations *int     `json:"dca_max_bracket_iterations,omitempty"`
	DCAResidual             *float64 `json:"dca_residual,omitempty"`

	// Root finder params
	RootFindTolerance     *float64 `json:"rootfind_tolerance,omitempty"`
	RootFindMaxIterations *int     `json:"rootfind_max_iterations,omitempty"`

	// Trajectory container params
	TrajectorySMin       *float64 `json:"trajectory_smin,omitempty"`
	TrajectorySMax       *float64 `json:"trajectory_smax,omitempty"`
	TrajectoryKeyEpsilon *float64 `json:"trajectory_key_epsilon,omitempty"`

	// Output
	LengthUnits *string `json:"length_units,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrString(v string) *string    { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field set to its
// built-in default.
func DefaultTuningConfig() *TuningConfig {
	return &TuningConfig{
		BFieldTesla:             ptrFloat64(defaultBFieldTesla),
		JoinMinRadius:           ptrFloat64(defaultJoinMinRadius),
		JoinRadiusFactor:        ptrFloat64(defaultJoinRadiusFactor),
		JoinMaxIterations:       ptrInt(defaultJoinMaxIterations),
		DCASMin:                 ptrFloat64(defaultDCASMin),
		DCASMax:                 ptrFloat64(defaultDCASMax),
		DCAMaxBracketIterations: ptrInt(defaultDCAMaxBracketIterations),
		DCAResidual:             ptrFloat64(defaultDCAResidual),
		RootFindTolerance:       ptrFloat64(defaultRootFindTolerance),
		RootFindMaxIterations:   ptrInt(defaultRootFindMaxIterations),
		TrajectorySMin:          ptrFloat64(defaultTrajectorySMin),
		TrajectorySMax:          ptrFloat64(defaultTrajectorySMax),
		TrajectoryKeyEpsilon:    ptrFloat64(defaultTrajectoryKeyEpsilon),
		LengthUnits:             ptrString(units.CM),
	}
}

const (
	defaultBFieldTesla             = 2.0
	defaultJoinMinRadius           = 1.0
	defaultJoinRadiusFactor        = 1.1
	defaultJoinMaxIterations       = 32
	defaultDCASMin                 = -1000.0
	defaultDCASMax                 = 1000.0
	defaultDCAMaxBracketIterations = 100
	defaultDCAResidual             = 1e-12
	defaultRootFindTolerance       = 1e-12
	defaultRootFindMaxIterations   = 200
	defaultTrajectorySMin          = -1e30
	defaultTrajectorySMax          = 1e30
	defaultTrajectoryKeyEpsilon    = 1e-9
)

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	return LoadTuningConfigFS(fsutil.OSFileSystem{}, path)
}

// LoadTuningConfigFS is LoadTuningConfig reading through fsys.
func LoadTuningConfigFS(fsys fsutil.FileSystem, path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,          // from cmd/ or internal/
		"../../" + DefaultConfigPath,       // from cmd/trfscan/ or internal/config/
		"../../../" + DefaultConfigPath,    // from internal/trf/dispatch/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.BFieldTesla != nil && (math.IsNaN(*c.BFieldTesla) || math.IsInf(*c.BFieldTesla, 0)) {
		return fmt.Errorf("bfield_tesla must be finite, got %f", *c.BFieldTesla)
	}
	if c.JoinMinRadius != nil && *c.JoinMinRadius <= 0 {
		return fmt.Errorf("join_min_radius must be positive, got %f", *c.JoinMinRadius)
	}
	if c.JoinRadiusFactor != nil && *c.JoinRadiusFactor <= 1 {
		return fmt.Errorf("join_radius_factor must exceed 1, got %f", *c.JoinRadiusFactor)
	}
	if c.JoinMaxIterations != nil && *c.JoinMaxIterations < 1 {
		return fmt.Errorf("join_max_iterations must be at least 1, got %d", *c.JoinMaxIterations)
	}
	if c.GetDCASMin() >= c.GetDCASMax() {
		return fmt.Errorf("dca_smin (%g) must be below dca_smax (%g)", c.GetDCASMin(), c.GetDCASMax())
	}
	if c.DCAMaxBracketIterations != nil && *c.DCAMaxBracketIterations < 1 {
		return fmt.Errorf("dca_max_bracket_iterations must be at least 1, got %d", *c.DCAMaxBracketIterations)
	}
	if c.DCAResidual != nil && *c.DCAResidual <= 0 {
		return fmt.Errorf("dca_residual must be positive, got %g", *c.DCAResidual)
	}
	if c.RootFindTolerance != nil && *c.RootFindTolerance <= 0 {
		return fmt.Errorf("rootfind_tolerance must be positive, got %g", *c.RootFindTolerance)
	}
	if c.RootFindMaxIterations != nil && *c.RootFindMaxIterations < 1 {
		return fmt.Errorf("rootfind_max_iterations must be at least 1, got %d", *c.RootFindMaxIterations)
	}
	if c.GetTrajectorySMin() >= c.GetTrajectorySMax() {
		return fmt.Errorf("trajectory_smin (%g) must be below trajectory_smax (%g)", c.GetTrajectorySMin(), c.GetTrajectorySMax())
	}
	if c.TrajectoryKeyEpsilon != nil && *c.TrajectoryKeyEpsilon < 0 {
		return fmt.Errorf("trajectory_key_epsilon must be non-negative, got %g", *c.TrajectoryKeyEpsilon)
	}
	if c.LengthUnits != nil && !units.IsValid(*c.LengthUnits) {
		return fmt.Errorf("length_units must be one of %s, got %q", units.GetValidUnitsString(), *c.LengthUnits)
	}
	return nil
}

// GetBFieldTesla returns the bfield_tesla value or the default.
func (c *TuningConfig) GetBFieldTesla() float64 {
	if c.BFieldTesla == nil {
		return defaultBFieldTesla
	}
	return *c.BFieldTesla
}

// GetJoinMinRadius returns the join_min_radius value or the default.
func (c *TuningConfig) GetJoinMinRadius() float64 {
	if c.JoinMinRadius == nil {
		return defaultJoinMinRadius
	}
	return *c.JoinMinRadius
}

// GetJoinRadiusFactor returns the join_radius_factor value or the default.
func (c *TuningConfig) GetJoinRadiusFactor() float64 {
	if c.JoinRadiusFactor == nil {
		return defaultJoinRadiusFactor
	}
	return *c.JoinRadiusFactor
}

// GetJoinMaxIterations returns the join_max_iterations value or the default.
func (c *TuningConfig) GetJoinMaxIterations() int {
	if c.JoinMaxIterations == nil {
		return defaultJoinMaxIterations
	}
	return *c.JoinMaxIterations
}

// GetDCASMin returns the dca_smin value or the default.
func (c *TuningConfig) GetDCASMin() float64 {
	if c.DCASMin == nil {
		return defaultDCASMin
	}
	return *c.DCASMin
}

// GetDCASMax returns the dca_smax value or the default.
func (c *TuningConfig) GetDCASMax() float64 {
	if c.DCASMax == nil {
		return defaultDCASMax
	}
	return *c.DCASMax
}

// GetDCAMaxBracketIterations returns the dca_max_bracket_iterations value or the default.
func (c *TuningConfig) GetDCAMaxBracketIterations() int {
	if c.DCAMaxBracketIterations == nil {
		return defaultDCAMaxBracketIterations
	}
	return *c.DCAMaxBracketIterations
}

// GetDCAResidual returns the dca_residual value or the default.
func (c *TuningConfig) GetDCAResidual() float64 {
	if c.DCAResidual == nil {
		return defaultDCAResidual
	}
	return *c.DCAResidual
}

// GetRootFindTolerance returns the rootfind_tolerance value or the default.
func (c *TuningConfig) GetRootFindTolerance() float64 {
	if c.RootFindTolerance == nil {
		return defaultRootFindTolerance
	}
	return *c.RootFindTolerance
}

// GetRootFindMaxIterations returns the rootfind_max_iterations value or the default.
func (c *TuningConfig) GetRootFindMaxIterations() int {
	if c.RootFindMaxIterations == nil {
		return defaultRootFindMaxIterations
	}
	return *c.RootFindMaxIterations
}

// GetTrajectorySMin returns the trajectory_smin value or the default.
func (c *TuningConfig) GetTrajectorySMin() float64 {
	if c.TrajectorySMin == nil {
		return defaultTrajectorySMin
	}
	return *c.TrajectorySMin
}

// GetTrajectorySMax returns the trajectory_smax value or the default.
func (c *TuningConfig) GetTrajectorySMax() float64 {
	if c.TrajectorySMax == nil {
		return defaultTrajectorySMax
	}
	return *c.TrajectorySMax
}

// GetTrajectoryKeyEpsilon returns the trajectory_key_epsilon value or the default.
func (c *TuningConfig) GetTrajectoryKeyEpsilon() float64 {
	if c.TrajectoryKeyEpsilon == nil {
		return defaultTrajectoryKeyEpsilon
	}
	return *c.TrajectoryKeyEpsilon
}

// GetLengthUnits returns the length_units value or the default.
func (c *TuningConfig) GetLengthUnits() string {
	if c.LengthUnits == nil {
		return units.CM
	}
	return *c.LengthUnits
}
