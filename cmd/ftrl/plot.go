package main

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/ftrl/pkg/errors"
)

func vector(v []float64) *mat.VecDense {
	return mat.NewVecDense(len(v), v)
}

// plotImportance saves a bar chart of per-column importance. The image
// format follows the file extension.
func plotImportance(path string, names []string, importance []float64) error {
	if len(importance) == 0 {
		return errors.NewValueError("plotImportance", "model has no feature importance")
	}
	p := plot.New()
	p.Title.Text = "Feature importance"
	p.Y.Label.Text = "sum of |w|"

	bars, err := plotter.NewBarChart(plotter.Values(importance), vg.Points(16))
	if err != nil {
		return errors.Wrap(err, "build bar chart")
	}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(names...)

	width := vg.Length(len(names))*vg.Points(24) + 2*vg.Inch
	return errors.Wrapf(p.Save(width, 4*vg.Inch, path), "save %s", path)
}
