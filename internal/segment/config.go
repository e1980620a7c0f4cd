package segment

import (
	"sync"

	tuning "github.com/trailwire/obstacles/internal/config"
)

// Config holds every dynamically reconfigurable segmenter knob. Updates
// flow through Params below: writers take a short exclusive lock to mutate,
// readers take a cheap shared lock once per scan rather than once per
// point.
type Config struct {
	InputIsVelodyne   bool
	PublishDebugCloud bool

	CircularBufferCapacity int

	AngleBetweenScanpoints float64 // degrees, used to size the adaptive kernel
	MaxKernelSize          int
	ObjectSizeInM          float64
	KernelSizeDiffFactor   float64

	DistanceToComparisonPoints float64 // meters, offset of the L/R comparison kernels

	CertaintyThreshold float64 // score >= threshold => obstacle

	DistWeight                float64
	IntensityWeight           float64
	WeightForSmallIntensities float64

	MedianMinDist     float64
	MedianThresh1Dist float64
	MedianThresh2Dist float64
	MedianMaxDist     float64

	MaxDistForMedianComputation float64 // dmax gate fed into median.Window; 0 disables gating

	MergeCloseHypothesesDistance float64
	MaxMahalanobisDistance       float64

	WorldFrame string

	// Internal constants of the scoring function: the intensity
	// normalization range and the distance curve's probability cap. Config
	// fields rather than package constants, but not part of the runtime
	// reconfiguration surface.
	MaxIntensityRange float64
	MaxProbByDistance float64
}

// DefaultConfig returns the configuration the segmenter starts with before
// any runtime update arrives.
func DefaultConfig() Config {
	return Config{
		InputIsVelodyne:              true,
		PublishDebugCloud:            false,
		CircularBufferCapacity:       6000,
		AngleBetweenScanpoints:       0.2,
		MaxKernelSize:                100,
		ObjectSizeInM:                1.2,
		KernelSizeDiffFactor:         5.0,
		DistanceToComparisonPoints:   2.0,
		CertaintyThreshold:           0.0,
		DistWeight:                   0.75,
		IntensityWeight:              0.25,
		WeightForSmallIntensities:    10.0,
		MedianMinDist:                2.5,
		MedianThresh1Dist:            5.0,
		MedianThresh2Dist:            200.0,
		MedianMaxDist:                200.0,
		MaxDistForMedianComputation:  0.0,
		MergeCloseHypothesesDistance: 0.1,
		MaxMahalanobisDistance:       3.75,
		WorldFrame:                   "world",
		MaxIntensityRange:            100.0,
		MaxProbByDistance:            1.0,
	}
}

// FromTuning builds a segmenter Config from a loaded TuningConfig: every
// knob falls back to its default via the TuningConfig accessor when the
// document doesn't mention it.
func FromTuning(cfg *tuning.TuningConfig) Config {
	if cfg == nil {
		cfg = tuning.EmptyTuningConfig()
	}
	return Config{
		InputIsVelodyne:              cfg.GetInputIsVelodyne(),
		PublishDebugCloud:            cfg.GetPublishDebugCloud(),
		CircularBufferCapacity:       cfg.GetCircularBufferCapacity(),
		AngleBetweenScanpoints:       cfg.GetAngleBetweenScanpoints(),
		MaxKernelSize:                cfg.GetMaxKernelSize(),
		ObjectSizeInM:                cfg.GetObjectSizeInM(),
		KernelSizeDiffFactor:         cfg.GetKernelSizeDiffFactor(),
		DistanceToComparisonPoints:   cfg.GetDistanceToComparisonPoints(),
		CertaintyThreshold:           cfg.GetCertaintyThreshold(),
		DistWeight:                   cfg.GetDistWeight(),
		IntensityWeight:              cfg.GetIntensityWeight(),
		WeightForSmallIntensities:    cfg.GetWeightForSmallIntensities(),
		MedianMinDist:                cfg.GetMedianMinDist(),
		MedianThresh1Dist:            cfg.GetMedianThresh1Dist(),
		MedianThresh2Dist:            cfg.GetMedianThresh2Dist(),
		MedianMaxDist:                cfg.GetMedianMaxDist(),
		MaxDistForMedianComputation:  cfg.GetMaxDistForMedianComputation(),
		MergeCloseHypothesesDistance: cfg.GetMergeCloseHypothesesDistance(),
		MaxMahalanobisDistance:       cfg.GetMaxMahalanobisDistance(),
		WorldFrame:                   cfg.GetWorldFrame(),
		MaxIntensityRange:            100.0,
		MaxProbByDistance:            1.0,
	}
}

// Params guards a Config snapshot behind a RWMutex: UpdateParam replaces
// the whole struct under an exclusive lock, Snapshot copies it out under a
// shared lock. Params is itself safe for concurrent use.
type Params struct {
	mu  sync.RWMutex
	cfg Config
}

// NewParams wraps cfg for concurrent access.
func NewParams(cfg Config) *Params {
	return &Params{cfg: cfg}
}

// Snapshot returns a copy of the current configuration. Cheap: Config holds
// no pointers, so the copy is independent of future UpdateParam calls.
func (p *Params) Snapshot() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}

// UpdateParam replaces the configuration wholesale, as a dynamic
// reconfigure callback would.
func (p *Params) UpdateParam(cfg Config) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg = cfg
}

// kernelSizes computes the noise and object kernel half-widths fed to
// median.Window, from sensor geometry at the sample's own range:
//
//	α = atan((object_size/2) / distance) · 180/π
//	object_points = floor(2α / angle_between_scanpoints)
//	noise_kernel = clamp(2·object_points, 1, max_kernel_size)
//	object_kernel = max(2, ceil(noise_kernel · kernel_size_diff_factor))
//
// Both kernel sizes are halved before use: the filter stage gates on
// object_kernel/2 samples available ahead/behind the cursor, so the
// half-width actually passed to median.Window is object_kernel/2 (and, by
// the same ratio, noise_kernel/2).
func kernelSizes(cfg Config, distance float64) (hN, hO int64) {
	if distance <= 0 || cfg.AngleBetweenScanpoints <= 0 {
		return 0, 0
	}
	alphaDeg := angleForChordAtRange(cfg.ObjectSizeInM/2, distance) * radToDegFactor
	objectPoints := floorInt(2 * alphaDeg / cfg.AngleBetweenScanpoints)

	noiseKernel := clampInt(2*objectPoints, 1, int64(cfg.MaxKernelSize))
	objectKernel := maxInt(2, ceilInt(float64(noiseKernel)*cfg.KernelSizeDiffFactor))

	hN = noiseKernel / 2
	hO = objectKernel / 2
	// noise_kernel is only guaranteed >= 1 by the clamp above, so hN can
	// legitimately be 0 (a single-sample noise window) once the adaptive
	// kernel degenerates; only hO >= hN is enforced.
	if hO < hN {
		hO = hN
	}
	return hN, hO
}
