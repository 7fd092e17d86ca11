package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/helixprop/internal/fsutil"
)

func TestDefaultTuningConfig(t *testing.T) {
	cfg := DefaultTuningConfig()

	// Test that defaults are set via pointers
	if cfg.BFieldTesla == nil || *cfg.BFieldTesla != 2.0 {
		t.Errorf("Expected BFieldTesla 2.0, got %v", cfg.BFieldTesla)
	}
	if cfg.JoinRadiusFactor == nil || *cfg.JoinRadiusFactor != 1.1 {
		t.Errorf("Expected JoinRadiusFactor 1.1, got %v", cfg.JoinRadiusFactor)
	}
	if cfg.LengthUnits == nil || *cfg.LengthUnits != "cm" {
		t.Errorf("Expected LengthUnits 'cm', got %v", cfg.LengthUnits)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if cfg.GetJoinMinRadius() != 1.0 {
		t.Errorf("GetJoinMinRadius() = %f, want 1.0", cfg.GetJoinMinRadius())
	}
	if cfg.GetDCAMaxBracketIterations() != 100 {
		t.Errorf("GetDCAMaxBracketIterations() = %d, want 100", cfg.GetDCAMaxBracketIterations())
	}
}

func TestLoadTuningConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	testJSON := `{
  "bfield_tesla": 3.5,
  "join_min_radius": 2.0,
  "join_max_iterations": 8,
  "dca_smin": -50,
  "dca_smax": 75,
  "length_units": "mm"
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GetBFieldTesla() != 3.5 {
		t.Errorf("Expected BFieldTesla 3.5, got %f", cfg.GetBFieldTesla())
	}
	if cfg.GetJoinMinRadius() != 2.0 {
		t.Errorf("Expected JoinMinRadius 2.0, got %f", cfg.GetJoinMinRadius())
	}
	if cfg.GetJoinMaxIterations() != 8 {
		t.Errorf("Expected JoinMaxIterations 8, got %d", cfg.GetJoinMaxIterations())
	}
	if cfg.GetDCASMin() != -50 || cfg.GetDCASMax() != 75 {
		t.Errorf("Expected DCA window [-50, 75], got [%f, %f]", cfg.GetDCASMin(), cfg.GetDCASMax())
	}
	if cfg.GetLengthUnits() != "mm" {
		t.Errorf("Expected LengthUnits mm, got %s", cfg.GetLengthUnits())
	}
}

func TestLoadTuningConfigMissing(t *testing.T) {
	_, err := LoadTuningConfig("/nonexistent/path/to/config.json")
	if err == nil {
		t.Error("Expected error when loading missing file, got nil")
	}
}

func TestLoadTuningConfigInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid_config.json")

	invalidJSON := `{
  "bfield_tesla": "strong"
`
	if err := os.WriteFile(configPath, []byte(invalidJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadTuningConfig(configPath)
	if err == nil {
		t.Error("Expected error when loading invalid JSON, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *TuningConfig
		wantErr bool
	}{
		{
			name:    "valid config",
			cfg:     DefaultTuningConfig(),
			wantErr: false,
		},
		{
			name:    "empty config is valid",
			cfg:     EmptyTuningConfig(),
			wantErr: false,
		},
		{
			name:    "zero field is valid",
			cfg:     &TuningConfig{BFieldTesla: ptrFloat64(0)},
			wantErr: false,
		},
		{
			name:    "non-positive join radius",
			cfg:     &TuningConfig{JoinMinRadius: ptrFloat64(0)},
			wantErr: true,
		},
		{
			name:    "join factor must grow the radius",
			cfg:     &TuningConfig{JoinRadiusFactor: ptrFloat64(1.0)},
			wantErr: true,
		},
		{
			name:    "join iterations",
			cfg:     &TuningConfig{JoinMaxIterations: ptrInt(0)},
			wantErr: true,
		},
		{
			name:    "inverted dca window",
			cfg:     &TuningConfig{DCASMin: ptrFloat64(10), DCASMax: ptrFloat64(-10)},
			wantErr: true,
		},
		{
			name:    "dca window inverted against default max",
			cfg:     &TuningConfig{DCASMin: ptrFloat64(2000)},
			wantErr: true,
		},
		{
			name:    "bracket iterations",
			cfg:     &TuningConfig{DCAMaxBracketIterations: ptrInt(0)},
			wantErr: true,
		},
		{
			name:    "root tolerance",
			cfg:     &TuningConfig{RootFindTolerance: ptrFloat64(-1)},
			wantErr: true,
		},
		{
			name:    "negative key epsilon",
			cfg:     &TuningConfig{TrajectoryKeyEpsilon: ptrFloat64(-1e-9)},
			wantErr: true,
		},
		{
			name:    "unknown units",
			cfg:     &TuningConfig{LengthUnits: ptrString("furlong")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadDefaultConfigFile(t *testing.T) {
	cfg, err := LoadTuningConfig("../../config/tuning.defaults.json")
	if err != nil {
		t.Fatalf("Failed to load defaults: %v", err)
	}
	def := DefaultTuningConfig()
	if cfg.GetBFieldTesla() != def.GetBFieldTesla() {
		t.Errorf("Expected %f, got %f", def.GetBFieldTesla(), cfg.GetBFieldTesla())
	}
	if cfg.GetJoinMaxIterations() != def.GetJoinMaxIterations() {
		t.Errorf("Expected %d, got %d", def.GetJoinMaxIterations(), cfg.GetJoinMaxIterations())
	}
	if cfg.GetTrajectorySMax() != def.GetTrajectorySMax() {
		t.Errorf("Expected %g, got %g", def.GetTrajectorySMax(), cfg.GetTrajectorySMax())
	}
}

func TestLoadExampleConfigFile(t *testing.T) {
	cfg, err := LoadTuningConfig("../../config/tuning.example.json")
	if err != nil {
		t.Fatalf("Failed to load example: %v", err)
	}
	if cfg.GetBFieldTesla() != 4.0 {
		t.Errorf("Expected 4.0, got %f", cfg.GetBFieldTesla())
	}
	if cfg.GetJoinMaxIterations() != 16 {
		t.Errorf("Expected 16, got %d", cfg.GetJoinMaxIterations())
	}
}

func TestLoadTuningConfigPartial(t *testing.T) {
	// Partial config: only override the field; everything else should keep defaults.
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "partial.json")

	partialJSON := `{
  "bfield_tesla": 0.5
}`
	if err := os.WriteFile(configPath, []byte(partialJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load partial config: %v", err)
	}

	if cfg.GetBFieldTesla() != 0.5 {
		t.Errorf("Expected overridden BFieldTesla 0.5, got %f", cfg.GetBFieldTesla())
	}
	if cfg.GetJoinRadiusFactor() != 1.1 {
		t.Errorf("Expected default JoinRadiusFactor 1.1, got %f", cfg.GetJoinRadiusFactor())
	}
	if cfg.GetRootFindMaxIterations() != 200 {
		t.Errorf("Expected default RootFindMaxIterations 200, got %d", cfg.GetRootFindMaxIterations())
	}
	if cfg.GetTrajectoryKeyEpsilon() != 1e-9 {
		t.Errorf("Expected default TrajectoryKeyEpsilon 1e-9, got %g", cfg.GetTrajectoryKeyEpsilon())
	}
}

func TestLoadTuningConfigRejectsNonJSON(t *testing.T) {
	_, err := LoadTuningConfig("/some/path/config.yaml")
	if err == nil {
		t.Error("Expected error for non-.json extension, got nil")
	}
}

func TestLoadTuningConfigRejectsLargeFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "large.json")

	largeData := make([]byte, 2*1024*1024) // 2MB
	if err := os.WriteFile(configPath, largeData, 0644); err != nil {
		t.Fatalf("Failed to write large file: %v", err)
	}

	_, err := LoadTuningConfig(configPath)
	if err == nil {
		t.Error("Expected error for file size > 1MB, got nil")
	}
}

func TestLoadTuningConfigFS(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	fsys.Add("cfg/tuning.json", []byte(`{"bfield_tesla": 3.8, "join_max_iterations": 8}`))
	fsys.Add("cfg/bad.json", []byte(`{"join_min_radius": -1}`))

	cfg, err := LoadTuningConfigFS(fsys, "cfg/tuning.json")
	if err != nil {
		t.Fatalf("LoadTuningConfigFS failed: %v", err)
	}
	if cfg.GetBFieldTesla() != 3.8 {
		t.Errorf("Expected B 3.8, got %f", cfg.GetBFieldTesla())
	}
	if cfg.GetJoinMaxIterations() != 8 {
		t.Errorf("Expected 8 join iterations, got %d", cfg.GetJoinMaxIterations())
	}

	if _, err := LoadTuningConfigFS(fsys, "cfg/bad.json"); err == nil {
		t.Error("Expected validation error for negative field")
	}
	if _, err := LoadTuningConfigFS(fsys, "cfg/missing.json"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	if cfg.GetDCASMax() != 1000 {
		t.Errorf("Expected DCA smax 1000, got %f", cfg.GetDCASMax())
	}
}

func TestGetterDefaults(t *testing.T) {
	cfg := EmptyTuningConfig()
	if cfg.GetBFieldTesla() != 2.0 {
		t.Errorf("GetBFieldTesla() = %f, want 2.0", cfg.GetBFieldTesla())
	}
	if cfg.GetJoinMinRadius() != 1.0 {
		t.Errorf("GetJoinMinRadius() = %f, want 1.0", cfg.GetJoinMinRadius())
	}
	if cfg.GetJoinRadiusFactor() != 1.1 {
		t.Errorf("GetJoinRadiusFactor() = %f, want 1.1", cfg.GetJoinRadiusFactor())
	}
	if cfg.GetJoinMaxIterations() != 32 {
		t.Errorf("GetJoinMaxIterations() = %d, want 32", cfg.GetJoinMaxIterations())
	}
	if cfg.GetDCASMin() != -1000 {
		t.Errorf("GetDCASMin() = %f, want -1000", cfg.GetDCASMin())
	}
	if cfg.GetDCAResidual() != 1e-12 {
		t.Errorf("GetDCAResidual() = %g, want 1e-12", cfg.GetDCAResidual())
	}
	if cfg.GetRootFindTolerance() != 1e-12 {
		t.Errorf("GetRootFindTolerance() = %g, want 1e-12", cfg.GetRootFindTolerance())
	}
	if cfg.GetTrajectorySMin() != -1e30 {
		t.Errorf("GetTrajectorySMin() = %g, want -1e30", cfg.GetTrajectorySMin())
	}
	if cfg.GetLengthUnits() != "cm" {
		t.Errorf("GetLengthUnits() = %s, want cm", cfg.GetLengthUnits())
	}
}
