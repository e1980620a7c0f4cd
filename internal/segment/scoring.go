package segment

import "math"

// score maps a distance delta d (already negated by the caller) and an
// intensity delta i to a certainty in [0, 1].
//
// The outer gate treats [MedianMinDist, MedianMaxDist] as a closed
// interval, but the distance term still evaluates to 0 at d == MedianMaxDist
// since the falling branch's (max - d) factor vanishes there. Downstream
// tuning depends on that edge behavior; don't reorder the cascade.
func score(cfg Config, d, i float64) float64 {
	// NaN deltas come from samples whose medians were never computed; they
	// score 0 like any other out-of-range delta.
	if math.IsNaN(d) || math.IsNaN(i) {
		return 0
	}
	if d < cfg.MedianMinDist || d > cfg.MedianMaxDist {
		return 0
	}

	wSmallI := cfg.WeightForSmallIntensities
	var intensityTerm float64
	if wSmallI > 0 && cfg.MaxIntensityRange > 0 {
		ic := clampRange(i, 0, cfg.MaxIntensityRange/wSmallI) * wSmallI
		intensityTerm = ic * cfg.IntensityWeight / cfg.MaxIntensityRange
	}

	p := cfg.MaxProbByDistance
	var distanceTerm float64
	switch {
	case d < cfg.MedianThresh1Dist:
		if cfg.MedianThresh1Dist > 0 {
			distanceTerm = d * cfg.DistWeight * p / cfg.MedianThresh1Dist
		}
	case d < cfg.MedianThresh2Dist:
		distanceTerm = cfg.DistWeight * p
	default: // [thresh2, max)
		span := cfg.MedianMaxDist - cfg.MedianThresh2Dist
		if span > 0 {
			distanceTerm = p / span * (cfg.MedianMaxDist - d) * cfg.DistWeight
		}
	}

	return clamp01(distanceTerm + intensityTerm)
}

func clamp01(v float64) float64 { return clampRange(v, 0, 1) }

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ScoreCurve samples the scoring function's distance and intensity
// contributions across an evenly spaced distance-delta axis, for any
// caller (a debug dashboard, a plot exporter) to render without reaching
// into scoring internals directly: the renderer lives elsewhere, this
// package only produces the (xAxis, distance_proportion,
// intensity_proportion) triples.
func ScoreCurve(cfg Config, samples int) (xAxis, distanceProportion, intensityProportion []float64) {
	if samples < 2 {
		samples = 2
	}
	xAxis = make([]float64, samples)
	distanceProportion = make([]float64, samples)
	intensityProportion = make([]float64, samples)

	span := cfg.MedianMaxDist - cfg.MedianMinDist
	if span < 0 {
		span = 0
	}
	step := span / float64(samples-1)

	for idx := 0; idx < samples; idx++ {
		d := cfg.MedianMinDist + step*float64(idx)
		xAxis[idx] = d
		distanceProportion[idx] = score(withZeroIntensityWeight(cfg), d, 0)
		intensityProportion[idx] = score(withZeroDistWeight(cfg), d, cfg.MaxIntensityRange/2)
	}
	return xAxis, distanceProportion, intensityProportion
}

func withZeroIntensityWeight(cfg Config) Config {
	cfg.IntensityWeight = 0
	return cfg
}

func withZeroDistWeight(cfg Config) Config {
	cfg.DistWeight = 0
	return cfg
}
