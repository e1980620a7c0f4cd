package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestLoadDefaultsFile verifies that the canonical defaults file loads
// correctly and agrees with the accessor fallbacks.
func TestLoadDefaultsFile(t *testing.T) {
	cfg := MustLoadDefaultConfig()

	if cfg.CircularBufferCapacity == nil {
		t.Fatal("CircularBufferCapacity must be set")
	}
	if cfg.DistWeight == nil {
		t.Fatal("DistWeight must be set")
	}
	if cfg.MeasurementSigmaMeters == nil {
		t.Fatal("MeasurementSigmaMeters must be set")
	}

	if *cfg.CircularBufferCapacity <= 0 {
		t.Errorf("CircularBufferCapacity must be positive, got %d", *cfg.CircularBufferCapacity)
	}
	if *cfg.DistWeight < 0 || *cfg.DistWeight > 1 {
		t.Errorf("DistWeight must be in [0, 1], got %f", *cfg.DistWeight)
	}

	// The file carries the same values the zero-value accessors fall back to.
	empty := EmptyTuningConfig()
	if cfg.GetCircularBufferCapacity() != empty.GetCircularBufferCapacity() {
		t.Errorf("defaults file disagrees with accessor fallback for circular_buffer_capacity: %d vs %d",
			cfg.GetCircularBufferCapacity(), empty.GetCircularBufferCapacity())
	}
	if cfg.GetMaxMahalanobisDistance() != empty.GetMaxMahalanobisDistance() {
		t.Errorf("defaults file disagrees with accessor fallback for max_mahalanobis_distance: %f vs %f",
			cfg.GetMaxMahalanobisDistance(), empty.GetMaxMahalanobisDistance())
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must pass Validate(): %v", err)
	}
}

// TestEmptyTuningConfig verifies the zero-value accessors reproduce the
// documented defaults.
func TestEmptyTuningConfig(t *testing.T) {
	cfg := EmptyTuningConfig()

	if cfg.CircularBufferCapacity != nil {
		t.Error("expected CircularBufferCapacity to be nil")
	}
	if got := cfg.GetCircularBufferCapacity(); got != 6000 {
		t.Errorf("GetCircularBufferCapacity() = %d, want 6000", got)
	}
	if got := cfg.GetDistWeight(); got != 0.75 {
		t.Errorf("GetDistWeight() = %f, want 0.75", got)
	}
	if got := cfg.GetIntensityWeight(); got != 0.25 {
		t.Errorf("GetIntensityWeight() = %f, want 0.25", got)
	}
	if got := cfg.GetMergeCloseHypothesesDistance(); got != 0.1 {
		t.Errorf("GetMergeCloseHypothesesDistance() = %f, want 0.1", got)
	}
	if got := cfg.GetMeasurementSigmaMeters(); got != 0.03 {
		t.Errorf("GetMeasurementSigmaMeters() = %f, want 0.03", got)
	}
	if got := cfg.GetWorldFrame(); got != "world" {
		t.Errorf("GetWorldFrame() = %q, want \"world\"", got)
	}
	if !cfg.GetInputIsVelodyne() {
		t.Error("GetInputIsVelodyne() must default to true")
	}
	if cfg.GetPublishDebugCloud() {
		t.Error("GetPublishDebugCloud() must default to false")
	}
}

// TestPartialConfigKeepsDefaults verifies a document that mentions one knob
// leaves every other accessor at its fallback.
func TestPartialConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.json")
	if err := os.WriteFile(path, []byte(`{"dist_weight": 0.5}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadTuningConfig(path)
	if err != nil {
		t.Fatalf("LoadTuningConfig: %v", err)
	}
	if got := cfg.GetDistWeight(); got != 0.5 {
		t.Errorf("GetDistWeight() = %f, want 0.5", got)
	}
	if got := cfg.GetIntensityWeight(); got != 0.25 {
		t.Errorf("GetIntensityWeight() = %f, want the 0.25 fallback", got)
	}
}

func TestLoadTuningConfigRejectsNonJSONExtension(t *testing.T) {
	_, err := LoadTuningConfig("tuning.yaml")
	if err == nil || !strings.Contains(err.Error(), ".json") {
		t.Errorf("expected a .json extension error, got %v", err)
	}
}

func TestValidateRejectsNonsense(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"circular_buffer_capacity": -1}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTuningConfig(path); err == nil {
		t.Error("expected a validation error for a negative capacity")
	}
}
