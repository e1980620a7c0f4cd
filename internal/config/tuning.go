// Package config holds the JSON-backed tuning surface shared by the
// segmenter and the tracker: every field is an optional pointer so a
// partial JSON document only overrides the knobs it mentions, and a
// Get<Field> accessor on the zero-value struct reproduces the defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the canonical tuning defaults file, the single
// source of truth for startup configuration.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig is the root configuration document. Its JSON shape matches
// whatever control-plane endpoint an embedding process exposes for runtime
// parameter updates, so the same document can seed startup config and
// describe a later UpdateParam call.
type TuningConfig struct {
	// Segmenter params.
	InputIsVelodyne            *bool    `json:"input_is_velodyne,omitempty"`
	PublishDebugCloud          *bool    `json:"publish_debug_cloud,omitempty"`
	CircularBufferCapacity     *int     `json:"circular_buffer_capacity,omitempty"`
	AngleBetweenScanpoints     *float64 `json:"angle_between_scanpoints,omitempty"`
	MaxKernelSize              *int     `json:"max_kernel_size,omitempty"`
	ObjectSizeInM              *float64 `json:"object_size_in_m,omitempty"`
	KernelSizeDiffFactor       *float64 `json:"kernel_size_diff_factor,omitempty"`
	DistanceToComparisonPoints *float64 `json:"distance_to_comparison_points,omitempty"`
	CertaintyThreshold         *float64 `json:"certainty_threshold,omitempty"`
	DistWeight                  *float64 `json:"dist_weight,omitempty"`
	IntensityWeight             *float64 `json:"intensity_weight,omitempty"`
	WeightForSmallIntensities   *float64 `json:"weight_for_small_intensities,omitempty"`
	MedianMinDist               *float64 `json:"median_min_dist,omitempty"`
	MedianThresh1Dist           *float64 `json:"median_thresh1_dist,omitempty"`
	MedianThresh2Dist           *float64 `json:"median_thresh2_dist,omitempty"`
	MedianMaxDist               *float64 `json:"median_max_dist,omitempty"`
	MaxDistForMedianComputation *float64 `json:"max_dist_for_median_computation,omitempty"`
	WorldFrame                  *string  `json:"world_frame,omitempty"`

	// Tracker params.
	MergeCloseHypothesesDistance *float64 `json:"merge_close_hypotheses_distance,omitempty"`
	MaxMahalanobisDistance       *float64 `json:"max_mahalanobis_distance,omitempty"`
	HypothesisTTLSeconds         *float64 `json:"hypothesis_ttl_seconds,omitempty"`
	ProcessNoisePerSecond        *float64 `json:"process_noise_per_second,omitempty"`
	MeasurementSigmaMeters       *float64 `json:"measurement_sigma_meters,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with every field nil, so every
// Get<Field> accessor falls back to its default.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. Fields omitted
// from the file retain their defaults, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
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

// MustLoadDefaultConfig loads the canonical tuning defaults from
// DefaultConfigPath, searching from the current directory up through common
// parent directories. Intended for test setup and demo binaries that have
// already validated the file exists; it panics rather than returning an
// error.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run from repository root")
}

// Validate checks that any set fields hold physically sane values, so a
// config file with an outright nonsensical value (non-positive capacity or
// sigma, negative Mahalanobis gate) fails fast on load. Runtime parameter
// updates (segment.Params and track.Params UpdateParam) neither clamp nor
// check: they store the Config they are given as is.
func (c *TuningConfig) Validate() error {
	if c.CircularBufferCapacity != nil && *c.CircularBufferCapacity <= 0 {
		return fmt.Errorf("circular_buffer_capacity must be positive, got %d", *c.CircularBufferCapacity)
	}
	if c.MaxMahalanobisDistance != nil && *c.MaxMahalanobisDistance < 0 {
		return fmt.Errorf("max_mahalanobis_distance must be non-negative, got %f", *c.MaxMahalanobisDistance)
	}
	if c.MeasurementSigmaMeters != nil && *c.MeasurementSigmaMeters <= 0 {
		return fmt.Errorf("measurement_sigma_meters must be positive, got %f", *c.MeasurementSigmaMeters)
	}
	return nil
}

func (c *TuningConfig) GetInputIsVelodyne() bool {
	if c.InputIsVelodyne == nil {
		return true
	}
	return *c.InputIsVelodyne
}

func (c *TuningConfig) GetPublishDebugCloud() bool {
	if c.PublishDebugCloud == nil {
		return false
	}
	return *c.PublishDebugCloud
}

func (c *TuningConfig) GetCircularBufferCapacity() int {
	if c.CircularBufferCapacity == nil {
		return 6000
	}
	return *c.CircularBufferCapacity
}

func (c *TuningConfig) GetAngleBetweenScanpoints() float64 {
	if c.AngleBetweenScanpoints == nil {
		return 0.2
	}
	return *c.AngleBetweenScanpoints
}

func (c *TuningConfig) GetMaxKernelSize() int {
	if c.MaxKernelSize == nil {
		return 100
	}
	return *c.MaxKernelSize
}

func (c *TuningConfig) GetObjectSizeInM() float64 {
	if c.ObjectSizeInM == nil {
		return 1.2
	}
	return *c.ObjectSizeInM
}

func (c *TuningConfig) GetKernelSizeDiffFactor() float64 {
	if c.KernelSizeDiffFactor == nil {
		return 5.0
	}
	return *c.KernelSizeDiffFactor
}

func (c *TuningConfig) GetDistanceToComparisonPoints() float64 {
	if c.DistanceToComparisonPoints == nil {
		return 2.0
	}
	return *c.DistanceToComparisonPoints
}

func (c *TuningConfig) GetCertaintyThreshold() float64 {
	if c.CertaintyThreshold == nil {
		return 0.0
	}
	return *c.CertaintyThreshold
}

func (c *TuningConfig) GetDistWeight() float64 {
	if c.DistWeight == nil {
		return 0.75
	}
	return *c.DistWeight
}

func (c *TuningConfig) GetIntensityWeight() float64 {
	if c.IntensityWeight == nil {
		return 0.25
	}
	return *c.IntensityWeight
}

func (c *TuningConfig) GetWeightForSmallIntensities() float64 {
	if c.WeightForSmallIntensities == nil {
		return 10.0
	}
	return *c.WeightForSmallIntensities
}

func (c *TuningConfig) GetMedianMinDist() float64 {
	if c.MedianMinDist == nil {
		return 2.5
	}
	return *c.MedianMinDist
}

func (c *TuningConfig) GetMedianThresh1Dist() float64 {
	if c.MedianThresh1Dist == nil {
		return 5.0
	}
	return *c.MedianThresh1Dist
}

func (c *TuningConfig) GetMedianThresh2Dist() float64 {
	if c.MedianThresh2Dist == nil {
		return 200.0
	}
	return *c.MedianThresh2Dist
}

func (c *TuningConfig) GetMedianMaxDist() float64 {
	if c.MedianMaxDist == nil {
		return 200.0
	}
	return *c.MedianMaxDist
}

func (c *TuningConfig) GetMaxDistForMedianComputation() float64 {
	if c.MaxDistForMedianComputation == nil {
		return 0.0
	}
	return *c.MaxDistForMedianComputation
}

func (c *TuningConfig) GetWorldFrame() string {
	if c.WorldFrame == nil {
		return "world"
	}
	return *c.WorldFrame
}

func (c *TuningConfig) GetMergeCloseHypothesesDistance() float64 {
	if c.MergeCloseHypothesesDistance == nil {
		return 0.1
	}
	return *c.MergeCloseHypothesesDistance
}

func (c *TuningConfig) GetMaxMahalanobisDistance() float64 {
	if c.MaxMahalanobisDistance == nil {
		return 3.75
	}
	return *c.MaxMahalanobisDistance
}

// GetHypothesisTTLSeconds returns the age (since last_seen_at) beyond
// which the tracker deactivates a hypothesis.
func (c *TuningConfig) GetHypothesisTTLSeconds() float64 {
	if c.HypothesisTTLSeconds == nil {
		return 2.0
	}
	return *c.HypothesisTTLSeconds
}

// GetProcessNoisePerSecond returns the additive process noise rate (applied
// to the covariance diagonal, scaled by elapsed time) used by the
// constant-position motion model's predict step.
func (c *TuningConfig) GetProcessNoisePerSecond() float64 {
	if c.ProcessNoisePerSecond == nil {
		return 0.05
	}
	return *c.ProcessNoisePerSecond
}

// GetMeasurementSigmaMeters returns the per-axis measurement noise standard
// deviation used by MeasurementFrontEnd.
func (c *TuningConfig) GetMeasurementSigmaMeters() float64 {
	if c.MeasurementSigmaMeters == nil {
		return 0.03
	}
	return *c.MeasurementSigmaMeters
}
