// Package debugdash turns the pure render data the core pipeline exposes
// (segment.ScoreCurve, tracker hypothesis snapshots) into on-disk plots and
// an optional interactive HTTP dashboard. Nothing in this package is on the
// hot path: the core never imports it.
package debugdash

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// CertaintySummary is the set of summary statistics for a batch of
// certainty scores. ScoreDashboardHandler does not render it.
type CertaintySummary struct {
	Count  int
	Mean   float64
	StdDev float64
	P50    float64
	P85    float64
	P98    float64
}

// SummarizeCertainties computes mean/stddev/percentiles over a batch of
// certainty scores: sort once, then stat.Quantile at fixed percentiles.
func SummarizeCertainties(scores []float64) CertaintySummary {
	if len(scores) == 0 {
		return CertaintySummary{}
	}

	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Float64s(sorted)

	mean, stddev := stat.MeanStdDev(sorted, nil)

	return CertaintySummary{
		Count:  len(sorted),
		Mean:   mean,
		StdDev: stddev,
		P50:    stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P85:    stat.Quantile(0.85, stat.Empirical, sorted, nil),
		P98:    stat.Quantile(0.98, stat.Empirical, sorted, nil),
	}
}
