package evaluate

import (
	"image/color"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	referenceColor = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	vehicleColor   = color.RGBA{R: 200, G: 30, B: 30, A: 255}
)

// Plot draws the vehicle's track over the reference path, in world coordinates.
func (tr *Trace) Plot(title string) (*plot.Plot, error) {
	if len(tr.Samples) == 0 {
		return nil, errors.New("cannot plot an empty trace")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"
	p.Add(plotter.NewGrid())

	if tr.Reference != nil {
		refPts := make(plotter.XYs, 0, tr.Reference.Len())
		for _, s := range tr.Reference.Samples() {
			refPts = append(refPts, plotter.XY{X: s.X, Y: s.Y})
		}
		refLine, err := plotter.NewLine(refPts)
		if err != nil {
			return nil, errors.Wrap(err, "reference path")
		}
		refLine.Color = referenceColor
		refLine.Width = vg.Points(1)
		refLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(refLine)
		p.Legend.Add("reference", refLine)
	}

	trackPts := make(plotter.XYs, 0, len(tr.Samples))
	for _, s := range tr.Samples {
		trackPts = append(trackPts, plotter.XY{X: s.Pose.X, Y: s.Pose.Y})
	}
	trackLine, err := plotter.NewLine(trackPts)
	if err != nil {
		return nil, errors.Wrap(err, "vehicle track")
	}
	trackLine.Color = vehicleColor
	trackLine.Width = vg.Points(1.5)
	p.Add(trackLine)
	p.Legend.Add("vehicle", trackLine)
	p.Legend.Top = true

	return p, nil
}

// SavePlot writes the trace's plot to filename. The format follows the extension, for example
// ".png" or ".svg".
func (tr *Trace) SavePlot(title, filename string) error {
	p, err := tr.Plot(title)
	if err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 6*vg.Inch, filename)
}
