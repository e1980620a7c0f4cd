package segment

import "github.com/trailwire/obstacles/internal/ringbuf"

// ringState is the per-ring state: a circular buffer of MedianSample plus
// the two cursors that independently track how far the filter stage and the
// segment stage have each advanced through it.
//
// filterCursor/segmentCursor are modeled with a validity flag rather than a
// sentinel Cursor value: before the first sample for a ring has arrived
// there is no meaningful position to hold, and treating "no cursor yet" as
// a distinct state avoids relying on zero-value Cursor{} coinciding with a
// real position.
type ringState struct {
	buf *ringbuf.RingBuffer[MedianSample]

	hasFilterCursor bool
	filterCursor    ringbuf.Cursor

	hasSegmentCursor bool
	segmentCursor    ringbuf.Cursor
}

func newRingState(capacity int) *ringState {
	return &ringState{buf: ringbuf.New[MedianSample](capacity)}
}

func (rs *ringState) reset() {
	rs.buf.Reset()
	rs.hasFilterCursor = false
	rs.hasSegmentCursor = false
}
