package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/banshee-data/response.report/internal/table"
	"github.com/banshee-data/response.report/internal/units"
)

var (
	// ErrNoData is returned when there is nothing to draw.
	ErrNoData = errors.New("no plottable data")
	// ErrShapeMismatch is returned when tables and parameters disagree on the file count.
	ErrShapeMismatch = errors.New("file count mismatch")
	// ErrUnknownTimeUnit is returned for a time column whose unit cannot be converted to minutes.
	ErrUnknownTimeUnit = errors.New("unknown time unit")
)

// Style holds presentation settings. Zero fields fall back to DefaultStyle.
type Style struct {
	Title         string
	Subtitle      string
	XAxisTitle    string
	YAxisTitle    string
	LegendTitle   string
	StimulusLabel string
	Width         int
	Height        int
	FontSize      int
	LabelFontSize int
	Background    color.RGBA
	BandColor     color.RGBA
	BandOpacity   float64
	LineWidth     float64
}

// DefaultStyle returns the house style: 1000x650, light grey background,
// grey exposure bands at 10% opacity and an NO₂ stimulus label.
func DefaultStyle() Style {
	return Style{
		XAxisTitle:    "Time, min",
		YAxisTitle:    "Response",
		LegendTitle:   "Measurement parameters",
		StimulusLabel: "NO₂",
		Width:         1000,
		Height:        650,
		FontSize:      15,
		LabelFontSize: 20,
		Background:    color.RGBA{R: 250, G: 250, B: 250, A: 255},
		BandColor:     color.RGBA{R: 128, G: 128, B: 128, A: 255},
		BandOpacity:   0.1,
		LineWidth:     2,
	}
}

// withDefaults fills zero fields of s from DefaultStyle.
func (s Style) withDefaults() Style {
	d := DefaultStyle()
	if s.XAxisTitle == "" {
		s.XAxisTitle = d.XAxisTitle
	}
	if s.YAxisTitle == "" {
		s.YAxisTitle = d.YAxisTitle
	}
	if s.LegendTitle == "" {
		s.LegendTitle = d.LegendTitle
	}
	if s.StimulusLabel == "" {
		s.StimulusLabel = d.StimulusLabel
	}
	if s.Width <= 0 {
		s.Width = d.Width
	}
	if s.Height <= 0 {
		s.Height = d.Height
	}
	if s.FontSize <= 0 {
		s.FontSize = d.FontSize
	}
	if s.LabelFontSize <= 0 {
		s.LabelFontSize = d.LabelFontSize
	}
	if s.Background == (color.RGBA{}) {
		s.Background = d.Background
	}
	if s.BandColor == (color.RGBA{}) {
		s.BandColor = d.BandColor
	}
	if s.BandOpacity <= 0 {
		s.BandOpacity = d.BandOpacity
	}
	if s.LineWidth <= 0 {
		s.LineWidth = d.LineWidth
	}
	return s
}

// Trace is one plotted line: minutes on X, normalized response on Y.
type Trace struct {
	Name  string
	Color color.RGBA
	X     []float64
	Y     []float64
}

// Points returns the finite (x, y) pairs of the trace.
func (t Trace) Points() [][2]float64 {
	n := min(len(t.X), len(t.Y))
	out := make([][2]float64, 0, n)
	for i := 0; i < n; i++ {
		if finite(t.X[i]) && finite(t.Y[i]) {
			out = append(out, [2]float64{t.X[i], t.Y[i]})
		}
	}
	return out
}

// Chart is the backend-neutral figure model.
type Chart struct {
	Style      Style
	Traces     []Trace
	Bands      []Band
	MaxMinutes float64
	Cycle      CycleConfig
}

// Build assembles a Chart from the normalized and time tables.
// Trace i pairs time column i (converted to minutes) with normalized
// column i, and is labelled and coloured by parameter i.
func Build(norm *table.NormalizedTable, times *table.TimeTable, params Parameters, cycle CycleConfig, style Style) (*Chart, error) {
	if norm == nil || times == nil {
		return nil, ErrNoData
	}
	if len(norm.Columns) != len(times.Columns) {
		return nil, fmt.Errorf("%w: %d normalized columns, %d time columns", ErrShapeMismatch, len(norm.Columns), len(times.Columns))
	}
	if params.Len() != len(norm.Columns) {
		return nil, fmt.Errorf("%w: %d files, %d parameter values", ErrShapeMismatch, len(norm.Columns), params.Len())
	}
	if len(norm.Columns) == 0 {
		return nil, ErrNoData
	}

	colors := ParameterColors(params.Values)
	c := &Chart{Style: style.withDefaults(), Cycle: cycle, MaxMinutes: math.NaN()}
	for i, col := range norm.Columns {
		tc := times.Columns[i]
		if !units.IsValid(tc.Unit) {
			return nil, fmt.Errorf("%w: time column %d has unit %q (valid: %s)", ErrUnknownTimeUnit, tc.Index, tc.Unit, units.GetValidUnitsString())
		}
		tr := Trace{
			Name:  params.Label(i),
			Color: colors[i],
			X:     units.SliceToMinutes(tc.Values, tc.Unit),
			Y:     col.Values,
		}
		// The band range follows the time axis alone; a blank response
		// cell does not shorten it.
		for _, x := range tr.X {
			if finite(x) && (math.IsNaN(c.MaxMinutes) || x > c.MaxMinutes) {
				c.MaxMinutes = x
			}
		}
		c.Traces = append(c.Traces, tr)
	}
	if math.IsNaN(c.MaxMinutes) {
		return nil, ErrNoData
	}

	bands, err := ExposureBands(cycle, c.MaxMinutes)
	if err != nil {
		return nil, err
	}
	c.Bands = bands
	return c, nil
}

// YRange returns the finite min and max response across all traces.
func (c *Chart) YRange() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, tr := range c.Traces {
		for _, p := range tr.Points() {
			lo = math.Min(lo, p[1])
			hi = math.Max(hi, p[1])
		}
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
