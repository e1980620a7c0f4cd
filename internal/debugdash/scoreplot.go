package debugdash

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/trailwire/obstacles/internal/segment"
)

// SaveScoreCurve samples the scoring function via segment.ScoreCurve and
// writes the distance/intensity contribution curves to a single PNG: one
// plot.New(), one line per series, fixed 14x6 inch canvas.
func SaveScoreCurve(cfg segment.Config, samples int, path string) error {
	xAxis, distanceProportion, intensityProportion := segment.ScoreCurve(cfg, samples)

	p := plot.New()
	p.Title.Text = "Segmentation score curve"
	p.X.Label.Text = "distance delta"
	p.Y.Label.Text = "score contribution"

	distPts := make(plotter.XYs, len(xAxis))
	intensPts := make(plotter.XYs, len(xAxis))
	for i, x := range xAxis {
		distPts[i] = plotter.XY{X: x, Y: distanceProportion[i]}
		intensPts[i] = plotter.XY{X: x, Y: intensityProportion[i]}
	}

	distLine, err := plotter.NewLine(distPts)
	if err != nil {
		return fmt.Errorf("build distance line: %w", err)
	}
	distLine.Width = vg.Points(1.5)
	p.Add(distLine)
	p.Legend.Add("distance proportion", distLine)

	intensLine, err := plotter.NewLine(intensPts)
	if err != nil {
		return fmt.Errorf("build intensity line: %w", err)
	}
	intensLine.Width = vg.Points(1.5)
	p.Add(intensLine)
	p.Legend.Add("intensity proportion", intensLine)

	p.Legend.Top = true
	p.Legend.Left = false

	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save score curve plot: %w", err)
	}
	return nil
}
