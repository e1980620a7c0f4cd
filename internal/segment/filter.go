package segment

import (
	"github.com/trailwire/obstacles/internal/median"
)

// runFilterStage advances rs.filterCursor as far as the buffer allows,
// computing the median fields for each sample it passes. Each sample's
// kernel half-widths are derived from its own range (adaptive sizing), so
// two samples a few positions apart can use different window widths.
//
// A sample without hO neighbors behind it (the first samples of a fresh
// ring) is skipped, not waited for: those neighbors will never exist, so
// the cursor moves on and the sample keeps its NaN medians. A sample
// without hO neighbors ahead stops the pass; the cursor stays put until the
// next scan delivers more samples.
func runFilterStage(cfg Config, rs *ringState) {
	buf := rs.buf

	if !rs.hasFilterCursor {
		rs.filterCursor = buf.CursorAtBegin()
		rs.hasFilterCursor = true
	}
	if rs.filterCursor.Less(buf.CursorAtBegin()) {
		// The cursor's target was overwritten while this ring sat idle;
		// resume at the oldest live sample.
		rs.filterCursor = buf.CursorAtBegin()
	}

	for {
		center, ok := buf.Get(rs.filterCursor)
		if !ok {
			return
		}
		hN, hO := kernelSizes(cfg, float64(center.Point.Distance))

		behind := buf.Distance(buf.CursorAtBegin(), rs.filterCursor)
		ahead := buf.Distance(rs.filterCursor, buf.CursorAtEnd())

		if behind >= hO && ahead > hO {
			if cfg.DistWeight != 0 {
				dmax := float32(cfg.MaxDistForMedianComputation)
				distNoise, distObject, distOK := median.Window(buf, rs.filterCursor, hN, hO,
					func(s MedianSample) float32 { return s.Point.Distance }, dmax)
				if distOK {
					center.DistNoise = distNoise
					center.DistObject = distObject
				}
			}

			if cfg.IntensityWeight != 0 {
				intensNoise, intensObject, intensOK := median.Window(buf, rs.filterCursor, hN, hO,
					func(s MedianSample) float32 { return s.Point.Intensity }, 0)
				if intensOK {
					center.IntensNoise = intensNoise
					center.IntensObject = intensObject
				}
			}

			buf.Set(rs.filterCursor, center)
		}

		if ahead <= hO {
			return
		}
		rs.filterCursor = buf.Advance(rs.filterCursor, 1)
	}
}
