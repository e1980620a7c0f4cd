package track

import (
	"sync"

	tuning "github.com/trailwire/obstacles/internal/config"
)

// TrackerConfig holds the knobs that shape HypothesisTracker's prediction,
// association, and merge behavior.
type TrackerConfig struct {
	MergeDistance          float64
	MaxMahalanobisDistance float64

	// HypothesisTTLSeconds is the age (since last_seen_at) beyond which
	// Predict deactivates a hypothesis.
	HypothesisTTLSeconds float64

	// ProcessNoisePerSecond scales the additive process-noise term applied
	// to each hypothesis's covariance diagonal, proportional to elapsed
	// time since its last update.
	ProcessNoisePerSecond float64
}

// DefaultTrackerConfig returns the tracker configuration used before any
// runtime update arrives.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		MergeDistance:          0.1,
		MaxMahalanobisDistance: 3.75,
		HypothesisTTLSeconds:   2.0,
		ProcessNoisePerSecond:  0.05,
	}
}

// TrackerConfigFromTuning builds a TrackerConfig from a loaded TuningConfig,
// mirroring segment.FromTuning.
func TrackerConfigFromTuning(cfg *tuning.TuningConfig) TrackerConfig {
	if cfg == nil {
		cfg = tuning.EmptyTuningConfig()
	}
	return TrackerConfig{
		MergeDistance:          cfg.GetMergeCloseHypothesesDistance(),
		MaxMahalanobisDistance: cfg.GetMaxMahalanobisDistance(),
		HypothesisTTLSeconds:   cfg.GetHypothesisTTLSeconds(),
		ProcessNoisePerSecond:  cfg.GetProcessNoisePerSecond(),
	}
}

// Params guards a TrackerConfig snapshot behind a RWMutex, the same
// writer-lock/reader-copy pattern as segment.Params: a parameter-control
// thread mutates under an exclusive lock, the processing thread copies the
// snapshot at the start of each batch.
type Params struct {
	mu  sync.RWMutex
	cfg TrackerConfig
}

// NewParams wraps cfg for concurrent access.
func NewParams(cfg TrackerConfig) *Params {
	return &Params{cfg: cfg}
}

// Snapshot returns a copy of the current configuration.
func (p *Params) Snapshot() TrackerConfig {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}

// UpdateParam replaces the configuration wholesale.
func (p *Params) UpdateParam(cfg TrackerConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg = cfg
}
