package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailwire/obstacles/internal/track"
)

func openTestStore(t *testing.T) *HistoryStore {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesSchema(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	_, err := s.Exec("SELECT 1 FROM hypothesis_snapshot LIMIT 1")
	assert.NoError(t, err)
}

func TestHistoryStore_RecordAndReadBack(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	hyps := []track.Hypothesis{
		{ID: 1, Mean: track.Vec3{X: 1, Y: 2, Z: 3}, TimesSeen: 1, IsActive: true},
		{ID: 2, Mean: track.Vec3{X: 4, Y: 5, Z: 6}, TimesSeen: 2, IsActive: false},
	}
	require.NoError(t, s.RecordBatch("batch-1", 0.1, hyps))

	rows, err := s.RecentByHypothesis(1, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "batch-1", rows[0].BatchID)
	assert.Equal(t, uint64(1), rows[0].HypothesisID)
	assert.True(t, rows[0].IsActive)
}

func TestHistoryStore_RecordBatch_EmptyIsNoop(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	assert.NoError(t, s.RecordBatch("empty", 0, nil))

	rows, err := s.RecentByHypothesis(999, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
