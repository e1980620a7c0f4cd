package segment

import "math"

// segmentResult is one fully-scored point produced by the segment stage.
type segmentResult struct {
	point                     InputPoint
	segment                   uint8
	score                     float64
	distNoise, distObject     float32
	intensNoise, intensObject float32

	// deltaD, deltaI are the comparison-window deltas (computed against the
	// L/R neighbors, not the sample's own noise/object pair) that fed the
	// score() call; debug_obstacle_cloud publishes these verbatim as
	// segmentation_distance/segmentation_intensity.
	deltaD, deltaI float64
}

// comparisonHalfWidth computes the comparison kernel half-width k, using
// the sample's own noise-scale distance median (not its raw range) as the
// divisor:
//
//	γ = atan(distance_to_comparison_points / m.dist_noise) · 180/π
//	k = round(γ / angle_between_scanpoints), clamped to [0, max_kernel_size/2]
func comparisonHalfWidth(cfg Config, distNoise float64) int64 {
	// A sample the filter stage skipped (NaN medians, e.g. the first
	// samples of a fresh ring) degenerates to a zero-width window: it is
	// scored against itself, which yields certainty 0 below.
	if math.IsNaN(distNoise) || distNoise <= 0 || cfg.AngleBetweenScanpoints <= 0 {
		return 0
	}
	gammaDeg := math.Atan(cfg.DistanceToComparisonPoints/distNoise) * radToDegFactor
	k := int64(math.Round(gammaDeg / cfg.AngleBetweenScanpoints))
	return clampInt(k, 0, int64(cfg.MaxKernelSize)/2)
}

// runSegmentStage advances rs.segmentCursor toward the filter cursor,
// labeling each sample it passes by comparing its noise-scale median
// against the object-scale medians of its L/R comparison neighbors. It
// never overtakes the filter cursor: the right neighbor must sit strictly
// behind it, so segmentation only ever reads finished medians.
func runSegmentStage(cfg Config, rs *ringState) []segmentResult {
	buf := rs.buf
	var out []segmentResult

	if !rs.hasFilterCursor {
		return out
	}

	if !rs.hasSegmentCursor {
		rs.segmentCursor = buf.CursorAtBegin()
		rs.hasSegmentCursor = true
	}
	if rs.segmentCursor.Less(buf.CursorAtBegin()) {
		rs.segmentCursor = buf.CursorAtBegin()
	}

	for {
		m, ok := buf.Get(rs.segmentCursor)
		if !ok {
			return out
		}

		k := comparisonHalfWidth(cfg, float64(m.DistNoise))

		// Stop once the right comparison neighbor would reach into samples
		// the filter stage has not yet filled (everything strictly before
		// filterCursor is filled or permanently skipped).
		if buf.Distance(rs.segmentCursor, rs.filterCursor) <= k {
			return out
		}

		begin := buf.CursorAtBegin()
		lCur := buf.Advance(rs.segmentCursor, -k)
		if lCur.Less(begin) {
			lCur = begin
		}
		rCur := buf.Advance(rs.segmentCursor, k)

		left, leftOK := buf.Get(lCur)
		right, rightOK := buf.Get(rCur)
		if !leftOK || !rightOK {
			return out
		}

		var deltaD, deltaI float64
		if cfg.DistWeight != 0 {
			ds := float64(m.DistNoise - left.DistObject)
			de := float64(m.DistNoise - right.DistObject)
			deltaD = math.Max(ds+de, math.Max(ds, de))
		}
		if cfg.IntensityWeight != 0 {
			is := float64(m.IntensNoise - left.IntensObject)
			ie := float64(m.IntensNoise - right.IntensObject)
			deltaI = math.Min(is+ie, math.Min(is, ie))
		}

		certainty := score(cfg, -deltaD, deltaI)

		seg := uint8(0)
		if certainty >= cfg.CertaintyThreshold {
			seg = 1
		}

		out = append(out, segmentResult{
			point:        m.Point,
			segment:      seg,
			score:        certainty,
			distNoise:    m.DistNoise,
			distObject:   m.DistObject,
			intensNoise:  m.IntensNoise,
			intensObject: m.IntensObject,
			deltaD:       deltaD,
			deltaI:       deltaI,
		})

		rs.segmentCursor = buf.Advance(rs.segmentCursor, 1)
	}
}
