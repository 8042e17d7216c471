package plot

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/KaramelBytes/fitcorr/internal/analysis"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Options controls a scatter render. Zero sizes fall back to 800x600.
type Options struct {
	Title  string
	XName  string
	YName  string
	Width  int
	Height int
}

// ErrNoPoints is returned when there is nothing to draw.
var ErrNoPoints = errors.New("scatter: no points to plot")

// dotStyle draws points only, no connecting line.
func dotStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    3,
		DotColor:    col,
	}
}

// Scatter renders points as a PNG to w.
func Scatter(w io.Writer, points []analysis.Point, opt Options) error {
	if len(points) == 0 {
		return ErrNoPoints
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	if opt.Width <= 0 {
		opt.Width = 800
	}
	if opt.Height <= 0 {
		opt.Height = 600
	}
	ch := chart.Chart{
		Title:      opt.Title,
		Width:      opt.Width,
		Height:     opt.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: opt.XName, Range: paddedRange(xs)},
		YAxis:      chart.YAxis{Name: opt.YName, Range: paddedRange(ys)},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: "observations", XValues: xs, YValues: ys, Style: dotStyle(chart.ColorBlue)},
		},
	}
	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render scatter: %w", err)
	}
	return nil
}

// paddedRange spans vals with a 5% margin; a constant series gets a unit margin
// so the axis never collapses.
func paddedRange(vals []float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
