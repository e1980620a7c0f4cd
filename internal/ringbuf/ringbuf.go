// Package ringbuf implements a fixed-capacity FIFO with stable read cursors
// that survive wrap-around: a cursor is a monotonically increasing 64-bit
// sequence number rather than a linked-list-style iterator, so cursors
// remain comparable and arithmetic across overwrite without ever dangling.
package ringbuf

// Cursor is an opaque position into a RingBuffer. It is safe to hold across
// Push calls: once the element it names falls off the tail, dereferencing
// it (Get) reports end-of-stream instead of returning stale or undefined
// data.
type Cursor struct {
	seq int64
}

// Seq exposes the underlying sequence number, primarily for logging and
// tests; callers should otherwise treat Cursor as opaque.
func (c Cursor) Seq() int64 { return c.seq }

// Less reports whether c sits strictly before o in sequence order.
func (c Cursor) Less(o Cursor) bool { return c.seq < o.seq }

// LessEqual reports whether c sits at or before o in sequence order.
func (c Cursor) LessEqual(o Cursor) bool { return c.seq <= o.seq }

// Equal reports whether c and o name the same sequence position.
func (c Cursor) Equal(o Cursor) bool { return c.seq == o.seq }

// RingBuffer is a fixed-capacity circular buffer of T, addressed by
// monotonic sequence number modulo capacity. It never blocks and never
// grows past the configured capacity: Push always succeeds, dropping the
// oldest live element once full.
type RingBuffer[T any] struct {
	data     []T
	capacity int64
	// nextSeq is the sequence number that will be assigned to the next
	// pushed element. It only ever increases.
	nextSeq int64
}

// New allocates a RingBuffer with the given fixed capacity. Capacity must
// be positive; callers (Segmenter) are expected to validate configuration
// before construction.
func New[T any](capacity int) *RingBuffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer[T]{
		data:     make([]T, capacity),
		capacity: int64(capacity),
	}
}

// beginSeq is the sequence number of the oldest live element, or nextSeq
// when the buffer is empty.
func (r *RingBuffer[T]) beginSeq() int64 {
	if r.nextSeq <= r.capacity {
		return 0
	}
	return r.nextSeq - r.capacity
}

// Len returns the number of live elements currently held.
func (r *RingBuffer[T]) Len() int {
	return int(r.nextSeq - r.beginSeq())
}

// Cap returns the configured fixed capacity.
func (r *RingBuffer[T]) Cap() int { return int(r.capacity) }

// Empty reports whether the buffer currently holds no elements.
func (r *RingBuffer[T]) Empty() bool { return r.nextSeq == r.beginSeq() }

// Push appends v at the head, silently dropping the oldest element once
// the buffer is at capacity. Any cursor whose target is dropped by this
// call becomes end-of-stream on its next Get rather than dangling or
// returning the overwritten value.
func (r *RingBuffer[T]) Push(v T) Cursor {
	c := Cursor{seq: r.nextSeq}
	r.data[r.nextSeq%r.capacity] = v
	r.nextSeq++
	return c
}

// CursorAtBegin returns a cursor positioned at the oldest live element, or
// at the (empty) end-of-stream position if the buffer holds nothing yet.
func (r *RingBuffer[T]) CursorAtBegin() Cursor {
	return Cursor{seq: r.beginSeq()}
}

// CursorAtEnd returns a cursor one past the newest live element: the
// position a filter/segment cursor reaches once it has consumed every
// sample pushed so far.
func (r *RingBuffer[T]) CursorAtEnd() Cursor {
	return Cursor{seq: r.nextSeq}
}

// clampSeq saturates seq into the buffer's addressable range
// [beginSeq, nextSeq]: arithmetic past begin/end pins at the respective
// endpoint instead of producing an unaddressable position.
func (r *RingBuffer[T]) clampSeq(seq int64) int64 {
	lo, hi := r.beginSeq(), r.nextSeq
	if seq < lo {
		return lo
	}
	if seq > hi {
		return hi
	}
	return seq
}

// Advance returns a cursor moved n positions forward (n may be negative),
// saturating at the buffer's current begin/end rather than overflowing or
// producing an invalid position.
func (r *RingBuffer[T]) Advance(c Cursor, n int64) Cursor {
	return Cursor{seq: r.clampSeq(c.seq + n)}
}

// Distance returns b-a in sequence units: positive when b is ahead of a.
// O(1) and correct across wrap because sequence numbers are monotonic and
// never wrap themselves (only their modular storage index does).
func (r *RingBuffer[T]) Distance(a, b Cursor) int64 {
	return b.seq - a.seq
}

// Get dereferences a cursor. ok is false when the cursor's target has
// either not been produced yet (c at or past CursorAtEnd) or has already
// fallen off the tail (overwritten), matching the "become end-of-stream"
// requirement rather than panicking or returning zero silently.
func (r *RingBuffer[T]) Get(c Cursor) (v T, ok bool) {
	if c.seq < r.beginSeq() || c.seq >= r.nextSeq {
		return v, false
	}
	return r.data[c.seq%r.capacity], true
}

// Set overwrites the element at c in place. Used by the filter stage to
// fill in a sample's computed median fields without a separate Push.
// Returns false (no-op) if c no longer names a live element.
func (r *RingBuffer[T]) Set(c Cursor, v T) bool {
	if c.seq < r.beginSeq() || c.seq >= r.nextSeq {
		return false
	}
	r.data[c.seq%r.capacity] = v
	return true
}

// Reset drops every element and rewinds sequence numbering to zero. Used
// by Segmenter.reset() when a scan arrives with no downstream subscribers.
func (r *RingBuffer[T]) Reset() {
	var zero T
	for i := range r.data {
		r.data[i] = zero
	}
	r.nextSeq = 0
}
