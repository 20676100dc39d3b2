package chart

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Plotter renders two index-aligned numeric sequences as a bar chart.
type Plotter interface {
	Bar(title string, x, y []float64) error
}

// PNGPlotter writes charts to {Dir}/{title}_CHART.png.
type PNGPlotter struct {
	Dir    string
	Width  float64 // inches
	Height float64 // inches
}

var _ Plotter = (*PNGPlotter)(nil)

func NewPNGPlotter(dir string, width, height float64) *PNGPlotter {
	if width <= 0 {
		width = 10
	}
	if height <= 0 {
		height = 6
	}
	return &PNGPlotter{Dir: dir, Width: width, Height: height}
}

// Path returns the file a chart titled title is written to.
func (p *PNGPlotter) Path(title string) string {
	return filepath.Join(p.Dir, title+"_CHART.png")
}

// Bar plots y as bars labelled by the matching x value.
func (p *PNGPlotter) Bar(title string, x, y []float64) error {
	if len(x) == 0 || len(y) == 0 {
		return fmt.Errorf("chart %s: empty dataset", title)
	}
	if len(x) != len(y) {
		return fmt.Errorf("chart %s: x has %d values, y has %d", title, len(x), len(y))
	}

	pl := plot.New()
	pl.Title.Text = title
	pl.X.Label.Text = "time"
	pl.Y.Label.Text = "price"

	bars, err := plotter.NewBarChart(plotter.Values(y), barWidth(len(y), p.Width))
	if err != nil {
		return fmt.Errorf("chart %s: %w", title, err)
	}
	pl.Add(bars)

	labels := make([]string, len(x))
	for i, v := range x {
		labels[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	pl.NominalX(labels...)

	if p.Dir != "" {
		if err := os.MkdirAll(p.Dir, 0o755); err != nil {
			return fmt.Errorf("chart %s: %w", title, err)
		}
	}
	if err := pl.Save(vg.Length(p.Width)*vg.Inch, vg.Length(p.Height)*vg.Inch, p.Path(title)); err != nil {
		return fmt.Errorf("chart %s: %w", title, err)
	}
	return nil
}

// barWidth spreads n bars over most of the canvas width.
func barWidth(n int, widthInches float64) vg.Length {
	w := vg.Length(widthInches) * vg.Inch * 0.8 / vg.Length(n)
	if w < vg.Points(1) {
		return vg.Points(1)
	}
	return w
}
