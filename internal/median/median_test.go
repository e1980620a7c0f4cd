package median

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailwire/obstacles/internal/ringbuf"
)

func identity(v float32) float32 { return v }

// naiveMedian is a full-sort reference implementation used to cross-check
// selectNth/Window against an obviously-correct baseline.
func naiveMedian(vals []float32, idx int) float32 {
	cp := append([]float32(nil), vals...)
	sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })
	return cp[idx]
}

func TestWindow_FlatRingProducesEqualMedians(t *testing.T) {
	t.Parallel()
	r := ringbuf.New[float32](64)
	var c ringbuf.Cursor
	for i := 0; i < 41; i++ {
		c = r.Push(3.5)
	}
	noise, object, ok := Window(r, r.Advance(c, -20), 3, 20, identity, 0)
	require.True(t, ok)
	assert.Equal(t, float32(3.5), noise)
	assert.Equal(t, float32(3.5), object)
}

func TestWindow_InsufficientSamplesReportsNotOK(t *testing.T) {
	t.Parallel()
	r := ringbuf.New[float32](64)
	c := r.Push(1)
	r.Push(2)
	_, _, ok := Window(r, c, 1, 5, identity, 0)
	assert.False(t, ok, "window extends past both ends of the available samples")
}

func TestWindow_GatingExcludesOutliers(t *testing.T) {
	t.Parallel()
	// 9 samples, all 5.0 except index 0 and 8 which are wild outliers;
	// center (index 4) has half-window 4.
	r2 := ringbuf.New[float32](64)
	vals := []float32{100, 5, 5, 5, 5, 5, 5, 5, -100}
	var c2 ringbuf.Cursor
	for i, v := range vals {
		cur := r2.Push(v)
		if i == 4 {
			c2 = cur
		}
	}
	noiseGated, objectGated, ok := Window(r2, c2, 1, 4, identity, 1.0)
	require.True(t, ok)
	assert.Equal(t, float32(5), noiseGated)
	assert.Equal(t, float32(5), objectGated, "outliers beyond dmax must be excluded from the object median too")

	noiseUngated, objectUngated, ok := Window(r2, c2, 1, 4, identity, 0)
	require.True(t, ok)
	assert.Equal(t, float32(5), noiseUngated)
	assert.Equal(t, float32(5), objectUngated, "9 values sorted puts median at index 4 regardless of the two outliers")
}

func TestWindow_NoiseAndObjectSplitUseDifferentHalfWidths(t *testing.T) {
	t.Parallel()
	r := ringbuf.New[float32](128)
	vals := make([]float32, 61)
	for i := range vals {
		vals[i] = float32(i)
	}
	var c ringbuf.Cursor
	for i, v := range vals {
		cur := r.Push(v)
		if i == 30 {
			c = cur
		}
	}
	noise, object, ok := Window(r, c, 2, 30, identity, 0)
	require.True(t, ok)
	// Noise window is [28..32] -> median 30. Object window is [0..60] -> median 30.
	assert.Equal(t, float32(30), noise)
	assert.Equal(t, float32(30), object)
}

func TestSelectNth_MatchesFullSortAcrossRandomInputs(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(50)
		vals := make([]float32, n)
		for i := range vals {
			vals[i] = float32(rng.Intn(1000)) / 10
		}
		k := rng.Intn(n)
		got := selectNth(vals, k)
		want := naiveMedian(vals, k)
		assert.Equal(t, want, got, "trial %d: n=%d k=%d", trial, n, k)
	}
}

func TestWindow_InvalidKernelOrderingFails(t *testing.T) {
	t.Parallel()
	r := ringbuf.New[float32](64)
	c := r.Push(1)
	_, _, ok := Window(r, c, 5, 2, identity, 0)
	assert.False(t, ok, "noise half-width must not exceed object half-width")
}

func TestWindow_NaNResultWhenNotOK(t *testing.T) {
	t.Parallel()
	r := ringbuf.New[float32](4)
	noise, object, ok := Window(r, ringbuf.Cursor{}, 1, 1, identity, 0)
	assert.False(t, ok)
	assert.True(t, math.IsNaN(float64(noise)))
	assert.True(t, math.IsNaN(float64(object)))
}
