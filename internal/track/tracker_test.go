package track

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batchAt(t float64, positions ...Vec3) MeasurementBatch {
	sigma2 := 0.03 * 0.03
	meas := make([]Measurement, len(positions))
	for i, p := range positions {
		meas[i] = Measurement{Pos: p, Cov: Diag3(sigma2, sigma2, sigma2), Time: t}
	}
	return MeasurementBatch{ID: "test", Measurements: meas, Time: t}
}

// One batch of N widely separated measurements into an empty tracker
// yields exactly N hypotheses.
func TestTracker_EmptyTrackerSeedsOneHypothesisPerMeasurement(t *testing.T) {
	t.Parallel()
	tr := NewHypothesisTracker(DefaultTrackerConfig())
	tr.OnMeasurementBatch(batchAt(0, Vec3{X: 0}, Vec3{X: 100}, Vec3{X: 200}))

	hs := tr.Hypotheses()
	require.Len(t, hs, 3)
	assert.Equal(t, uint64(1), hs[0].ID)
	assert.Equal(t, uint64(2), hs[1].ID)
	assert.Equal(t, uint64(3), hs[2].ID)
	for _, h := range hs {
		assert.Equal(t, uint32(1), h.TimesSeen)
		assert.True(t, h.IsActive)
	}
}

// Two measurements at (0,0,0) and (0,0,10) at t=0 -> two hypotheses; same
// two points at t=0.1 -> same ids, times_seen=2; then a single close
// measurement at t=0.2 updates only the nearby hypothesis.
func TestTracker_ReassociationAndPartialMatch(t *testing.T) {
	t.Parallel()
	tr := NewHypothesisTracker(DefaultTrackerConfig())

	tr.OnMeasurementBatch(batchAt(0, Vec3{X: 0, Y: 0, Z: 0}, Vec3{X: 0, Y: 0, Z: 10}))
	first := tr.Hypotheses()
	require.Len(t, first, 2)
	id1, id2 := first[0].ID, first[1].ID

	tr.OnMeasurementBatch(batchAt(0.1, Vec3{X: 0, Y: 0, Z: 0}, Vec3{X: 0, Y: 0, Z: 10}))
	second := tr.Hypotheses()
	require.Len(t, second, 2)
	assert.Equal(t, id1, second[0].ID)
	assert.Equal(t, id2, second[1].ID)
	assert.Equal(t, uint32(2), second[0].TimesSeen)
	assert.Equal(t, uint32(2), second[1].TimesSeen)

	tr.OnMeasurementBatch(batchAt(0.2, Vec3{X: 0.05, Y: 0, Z: 0}))
	third := tr.Hypotheses()
	require.Len(t, third, 2)

	byID := map[uint64]Hypothesis{}
	for _, h := range third {
		byID[h.ID] = h
	}
	assert.Equal(t, uint32(3), byID[id1].TimesSeen, "hypothesis 1 updated")
	assert.Equal(t, uint32(2), byID[id2].TimesSeen, "hypothesis 2 left un-updated")
	assert.True(t, byID[id2].IsActive, "hypothesis 2 still alive")
}

// Once two active hypotheses' centers fall within merge_distance of each
// other, the next batch's merge pass fuses them into one, carrying the
// smaller id. Directly sets the means (rather than relying on exact
// Kalman-gain arithmetic to land two independent update chains within
// merge_distance) so the test isolates the merge pass itself.
func TestTracker_MergesCloseHypotheses(t *testing.T) {
	t.Parallel()
	cfg := DefaultTrackerConfig()
	cfg.MergeDistance = 0.5
	tr := NewHypothesisTracker(cfg)

	tr.OnMeasurementBatch(batchAt(0, Vec3{X: 0}, Vec3{X: 5}))
	seeded := tr.Hypotheses()
	require.Len(t, seeded, 2)
	smaller, larger := seeded[0].ID, seeded[1].ID

	tr.mu.Lock()
	tr.byID[larger].h.Mean = Vec3{X: 0.1}
	tr.mu.Unlock()

	// An empty measurement batch still predicts and runs the merge pass.
	tr.OnMeasurementBatch(MeasurementBatch{ID: "merge-trigger", Time: 0.1})

	merged := tr.Hypotheses()
	require.Len(t, merged, 1)
	assert.Equal(t, smaller, merged[0].ID)
}

func TestTracker_PredictWithoutMeasurement_DeactivatesExpiredHypothesis(t *testing.T) {
	t.Parallel()
	cfg := DefaultTrackerConfig()
	cfg.HypothesisTTLSeconds = 1.0
	tr := NewHypothesisTracker(cfg)

	tr.OnMeasurementBatch(batchAt(0, Vec3{X: 0}))
	tr.PredictWithoutMeasurement(5.0)

	hs := tr.Hypotheses()
	require.Len(t, hs, 1)
	assert.False(t, hs[0].IsActive)
}

func TestTracker_DeactivatedHypothesisDoesNotAbsorbNewMeasurement(t *testing.T) {
	t.Parallel()
	cfg := DefaultTrackerConfig()
	cfg.HypothesisTTLSeconds = 1.0
	tr := NewHypothesisTracker(cfg)

	tr.OnMeasurementBatch(batchAt(0, Vec3{X: 0}))
	tr.PredictWithoutMeasurement(5.0)
	tr.OnMeasurementBatch(batchAt(5.0, Vec3{X: 0}))

	hs := tr.Hypotheses()
	// The expired hypothesis stays inactive; the measurement seeds a new one.
	require.Len(t, hs, 2)
	assert.False(t, hs[0].IsActive)
	assert.True(t, hs[1].IsActive)
}

// A freshly seeded hypothesis (no prior Kalman update applied) carries the
// measurement's own position and covariance exactly, so the whole struct
// can be compared in one shot rather than field by field.
func TestTracker_FreshlySeededHypothesisMatchesMeasurementExactly(t *testing.T) {
	t.Parallel()
	tr := NewHypothesisTracker(DefaultTrackerConfig())
	sigma2 := 0.03 * 0.03
	tr.OnMeasurementBatch(MeasurementBatch{
		ID:           "seed",
		Measurements: []Measurement{{Pos: Vec3{X: 1, Y: 2, Z: 3}, Cov: Diag3(sigma2, sigma2, sigma2), Time: 0}},
		Time:         0,
	})

	want := Hypothesis{
		ID:         1,
		Mean:       Vec3{X: 1, Y: 2, Z: 3},
		Cov:        Diag3(sigma2, sigma2, sigma2),
		BornAt:     0,
		LastSeenAt: 0,
		TimesSeen:  1,
		IsActive:   true,
	}

	got := tr.Hypotheses()
	require.Len(t, got, 1)
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Errorf("seeded hypothesis mismatch (-want +got):\n%s", diff)
	}
}

func TestTracker_Delete(t *testing.T) {
	t.Parallel()
	tr := NewHypothesisTracker(DefaultTrackerConfig())
	tr.OnMeasurementBatch(batchAt(0, Vec3{X: 0}))
	id := tr.Hypotheses()[0].ID
	tr.Delete(id)
	assert.Empty(t, tr.Hypotheses())
}
