// Package median computes the double sliding-window median (noise-scale
// and object-scale) used by the segmenter's filter stage.
//
// It is generic over the sample type stored in the ring buffer so it has
// no dependency on the segmenter's concrete MedianSample/InputPoint types:
// callers supply a projection function that extracts the scalar of
// interest (distance or intensity) from a sample.
package median

import (
	"math"

	"github.com/trailwire/obstacles/internal/ringbuf"
)

// Window computes the noise-scale and object-scale medians around cursor c.
//
//   - hN, hO are the noise and object kernel half-sizes (hO >= hN).
//   - proj extracts the scalar value of interest from a sample.
//   - dmax is the gating distance: 0 disables gating (every sample in the
//     window is accepted); otherwise a sample is accepted only when its
//     projected value is within dmax of the center sample's value.
//
// ok is false when the buffer does not hold enough samples around c to
// satisfy the precondition (buffer.len() > 2*hO); callers are expected to
// enforce that precondition themselves by holding back the filter cursor,
// but Window re-checks.
func Window[S any](buf *ringbuf.RingBuffer[S], c ringbuf.Cursor, hN, hO int64, proj func(S) float32, dmax float32) (noiseMedian, objectMedian float32, ok bool) {
	if hO < 0 || hN < 0 || hN > hO {
		return float32(math.NaN()), float32(math.NaN()), false
	}

	center, centerOK := buf.Get(c)
	if !centerOK {
		return float32(math.NaN()), float32(math.NaN()), false
	}
	centerVal := proj(center)

	// Bail out rather than compute a median over a truncated, asymmetric
	// window: the full hO samples must exist behind the cursor and ahead of
	// it (Distance(c, end) counts the center itself, hence the <=).
	if buf.Distance(buf.CursorAtBegin(), c) < hO || buf.Distance(c, buf.CursorAtEnd()) <= hO {
		return float32(math.NaN()), float32(math.NaN()), false
	}
	lo := buf.Advance(c, -hO)

	vals := make([]float32, 0, 2*hO+1)
	nsOff, neOff := -1, -1

	cur := lo
	for i := int64(0); i <= 2*hO; i++ {
		s, sok := buf.Get(cur)
		if !sok {
			cur = buf.Advance(cur, 1)
			continue
		}
		v := proj(s)
		accepted := dmax == 0 || float32(math.Abs(float64(v-centerVal))) < dmax
		if accepted {
			idx := len(vals)
			vals = append(vals, v)

			offsetFromC := buf.Distance(c, cur)
			if offsetFromC >= -hN && offsetFromC <= hN {
				if nsOff == -1 {
					nsOff = idx
				}
				neOff = idx
			}
		}
		cur = buf.Advance(cur, 1)
	}

	if len(vals) == 0 || nsOff == -1 {
		return float32(math.NaN()), float32(math.NaN()), false
	}

	noiseIdx := (nsOff + neOff) / 2
	noiseMedian = selectNth(vals[nsOff:neOff+1], noiseIdx-nsOff)

	objectIdx := len(vals) / 2
	objectMedian = selectNth(vals, objectIdx)

	return noiseMedian, objectMedian, true
}

// selectNth returns the k-th smallest value (0-indexed) of vals using an
// in-place quickselect (nth_element), bit-exact equivalent to sorting the
// slice and indexing [k] but without the full O(n log n) sort.
func selectNth(vals []float32, k int) float32 {
	// Operate on a private copy so repeated calls sharing a backing slice
	// (the object-median call reuses the same vals the noise-median call
	// partitioned) never observe each other's partial reordering.
	work := make([]float32, len(vals))
	copy(work, vals)

	lo, hi := 0, len(work)-1
	for lo < hi {
		p := partition(work, lo, hi)
		switch {
		case p == k:
			return work[p]
		case p < k:
			lo = p + 1
		default:
			hi = p - 1
		}
	}
	return work[lo]
}

// partition is a Hoare/Lomuto hybrid: median-of-three pivot selection to
// avoid worst-case quadratic blowup on already-sorted runs (common for the
// flat/uniform-range scans exercised by the segmenter's tests), then a
// standard Lomuto partition around that pivot.
func partition(a []float32, lo, hi int) int {
	mid := lo + (hi-lo)/2
	if a[mid] < a[lo] {
		a[mid], a[lo] = a[lo], a[mid]
	}
	if a[hi] < a[lo] {
		a[hi], a[lo] = a[lo], a[hi]
	}
	if a[hi] < a[mid] {
		a[hi], a[mid] = a[mid], a[hi]
	}
	a[mid], a[hi] = a[hi], a[mid]
	pivot := a[hi]

	i := lo
	for j := lo; j < hi; j++ {
		if a[j] < pivot {
			a[i], a[j] = a[j], a[i]
			i++
		}
	}
	a[i], a[hi] = a[hi], a[i]
	return i
}
