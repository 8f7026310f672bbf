// Package charts renders the dashboard's bar charts as SVG or PNG.
package charts

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/raysh454/policysim/internal/model"
)

const (
	RegionDeltaTitle = "Change in MDR by Region"
	RiskLevelsTitle  = "Risk Levels Among Patients"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("no chart data")

// Format is an output image format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat accepts "svg" or "png" in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	}
	return "", fmt.Errorf("unsupported chart format %q", s)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

func (f Format) renderer() chart.RendererProvider {
	if f == FormatPNG {
		return chart.PNG
	}
	return chart.SVG
}

// Options sizes the chart canvas in pixels.
type Options struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// DefaultOptions matches the dashboard layout.
func DefaultOptions() Options {
	return Options{Width: 800, Height: 420}
}

func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.Height <= 0 {
		o.Height = def.Height
	}
	return o
}

var (
	colorGreen  = drawing.Color{R: 44, G: 160, B: 44, A: 255}
	colorOrange = drawing.Color{R: 255, G: 127, B: 14, A: 255}
	colorRed    = drawing.Color{R: 214, G: 39, B: 40, A: 255}
	colorBar    = drawing.Color{R: 31, G: 119, B: 180, A: 255}
)

var riskColors = map[model.RiskLevel]drawing.Color{
	model.RiskGreen:  colorGreen,
	model.RiskYellow: colorOrange,
	model.RiskRed:    colorRed,
}

func barStyle(c drawing.Color) chart.Style {
	return chart.Style{
		FillColor:   c,
		StrokeColor: c,
		StrokeWidth: 1,
	}
}

// valueRange always includes zero and is never empty. go-chart refuses to
// draw a zero-height range.
func valueRange(values []float64) *chart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if lo == hi {
		hi = lo + 1
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

func render(w io.Writer, bc chart.BarChart, format Format) error {
	if err := bc.Render(format.renderer(), w); err != nil {
		return fmt.Errorf("render %s: %w", bc.Title, err)
	}
	return nil
}

// RenderRegionDelta draws one bar per region, drawn from a zero baseline so
// reductions hang below the axis.
func RenderRegionDelta(w io.Writer, regions []model.RegionDelta, format Format, opts Options) error {
	if len(regions) == 0 {
		return ErrNoData
	}
	opts = opts.normalized()

	bars := make([]chart.Value, 0, len(regions))
	values := make([]float64, 0, len(regions))
	for _, r := range regions {
		bars = append(bars, chart.Value{Label: r.Region, Value: r.DeltaMDR, Style: barStyle(colorBar)})
		values = append(values, r.DeltaMDR)
	}

	bc := chart.BarChart{
		Title:  RegionDeltaTitle,
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 60},
		},
		XAxis:        chart.Style{TextRotationDegrees: 45.0},
		YAxis:        chart.YAxis{Name: "Change in MDR", Range: valueRange(values)},
		UseBaseValue: true,
		BaseValue:    0,
		Bars:         bars,
	}
	return render(w, bc, format)
}

// RenderRiskLevels draws the Green, Yellow and Red bucket counts.
func RenderRiskLevels(w io.Writer, counts []model.BucketCount, format Format, opts Options) error {
	if len(counts) == 0 {
		return ErrNoData
	}
	opts = opts.normalized()

	bars := make([]chart.Value, 0, len(counts))
	values := make([]float64, 0, len(counts))
	for _, c := range counts {
		col, ok := riskColors[c.Level]
		if !ok {
			col = colorBar
		}
		bars = append(bars, chart.Value{Label: string(c.Level), Value: float64(c.Count), Style: barStyle(col)})
		values = append(values, float64(c.Count))
	}

	bc := chart.BarChart{
		Title:  RiskLevelsTitle,
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 20},
		},
		YAxis: chart.YAxis{Name: "Patients", Range: valueRange(values)},
		Bars:  bars,
	}
	return render(w, bc, format)
}
