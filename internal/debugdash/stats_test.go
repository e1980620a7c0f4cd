package debugdash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeCertainties_Empty(t *testing.T) {
	t.Parallel()
	got := SummarizeCertainties(nil)
	assert.Equal(t, CertaintySummary{}, got)
}

func TestSummarizeCertainties_ComputesMeanAndPercentiles(t *testing.T) {
	t.Parallel()
	got := SummarizeCertainties([]float64{0.1, 0.2, 0.3, 0.4, 0.5})
	assert.Equal(t, 5, got.Count)
	assert.InDelta(t, 0.3, got.Mean, 1e-9)
	assert.InDelta(t, 0.3, got.P50, 1e-9)
	// Empirical quantiles pick a sample value: with 5 samples both the 85th
	// and the 98th percentile land on the largest one.
	assert.InDelta(t, 0.5, got.P85, 1e-9)
	assert.InDelta(t, 0.5, got.P98, 1e-9)
}
