package debugdash

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailwire/obstacles/internal/track"
)

type fakeHypothesisSource struct {
	hyps []track.Hypothesis
}

func (f fakeHypothesisSource) Hypotheses() []track.Hypothesis { return f.hyps }

func TestScoreDashboardHandler_RendersOKWithNoHypotheses(t *testing.T) {
	t.Parallel()
	h := NewScoreDashboardHandler(fakeHypothesisSource{})

	req := httptest.NewRequest(http.MethodGet, "/debug/hypotheses", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Greater(t, rec.Body.Len(), 0)
}

func TestScoreDashboardHandler_RendersPointsForEachHypothesis(t *testing.T) {
	t.Parallel()
	h := NewScoreDashboardHandler(fakeHypothesisSource{hyps: []track.Hypothesis{
		{ID: 1, Mean: track.Vec3{X: 1, Y: 2}, TimesSeen: 3, IsActive: true},
		{ID: 2, Mean: track.Vec3{X: -4, Y: 5}, TimesSeen: 1, IsActive: true},
	}})

	req := httptest.NewRequest(http.MethodGet, "/debug/hypotheses", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "count=2")
}
