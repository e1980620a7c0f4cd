package debugdash

import (
	"bytes"
	"fmt"
	"math"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/trailwire/obstacles/internal/track"
)

// HypothesisSource supplies the current set of hypotheses to render. A
// *track.HypothesisTracker satisfies this directly via Hypotheses().
type HypothesisSource interface {
	Hypotheses() []track.Hypothesis
}

// ScoreDashboardHandler serves an interactive scatter of the tracker's
// current hypotheses, colored by times_seen via the visual map's third
// value dimension.
type ScoreDashboardHandler struct {
	Source HypothesisSource
}

// NewScoreDashboardHandler wires a tracker (or test double) into an
// http.Handler suitable for mounting under a debug-only mux.
func NewScoreDashboardHandler(source HypothesisSource) *ScoreDashboardHandler {
	return &ScoreDashboardHandler{Source: source}
}

func (h *ScoreDashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	hyps := h.Source.Hypotheses()

	points := make([]opts.ScatterData, 0, len(hyps))
	maxAbs := 0.0
	maxSeen := 0
	for _, hy := range hyps {
		if math.Abs(hy.Mean.X) > maxAbs {
			maxAbs = math.Abs(hy.Mean.X)
		}
		if math.Abs(hy.Mean.Y) > maxAbs {
			maxAbs = math.Abs(hy.Mean.Y)
		}
		if int(hy.TimesSeen) > maxSeen {
			maxSeen = int(hy.TimesSeen)
		}
		points = append(points, opts.ScatterData{Value: []interface{}{hy.Mean.X, hy.Mean.Y, hy.TimesSeen}})
	}

	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}
	if maxSeen == 0 {
		maxSeen = 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Tracked Hypotheses", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Tracked Hypotheses", Subtitle: fmt.Sprintf("count=%d", len(points))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxSeen),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}},
		}),
	)
	scatter.AddSeries("hypotheses", points, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		http.Error(w, fmt.Sprintf("render error: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
