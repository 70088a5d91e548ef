package render

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/floats"
)

// colorStop is one anchor of a continuous colour scale.
type colorStop struct {
	pos float64
	c   color.RGBA
}

// portland is the five-stop Portland scale, blue through yellow to red.
var portland = []colorStop{
	{0, color.RGBA{R: 12, G: 51, B: 131, A: 255}},
	{0.25, color.RGBA{R: 10, G: 136, B: 186, A: 255}},
	{0.5, color.RGBA{R: 242, G: 211, B: 56, A: 255}},
	{0.75, color.RGBA{R: 242, G: 143, B: 56, A: 255}},
	{1, color.RGBA{R: 217, G: 30, B: 30, A: 255}},
}

// MinMaxScale maps values onto [0, 1] by (v - min) / (max - min).
// When every value is equal the result is all zeros.
func MinMaxScale(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	lo, hi := floats.Min(values), floats.Max(values)
	span := hi - lo
	if span == 0 || math.IsNaN(span) {
		return out
	}
	for i, v := range values {
		out[i] = (v - lo) / span
	}
	return out
}

// SamplePortland returns the colour at position p on the Portland scale.
// Positions outside [0, 1] are clamped.
func SamplePortland(p float64) color.RGBA {
	if math.IsNaN(p) || p <= 0 {
		return portland[0].c
	}
	if p >= 1 {
		return portland[len(portland)-1].c
	}
	for i := 1; i < len(portland); i++ {
		hi := portland[i]
		if p > hi.pos {
			continue
		}
		lo := portland[i-1]
		t := (p - lo.pos) / (hi.pos - lo.pos)
		return color.RGBA{
			R: lerp(lo.c.R, hi.c.R, t),
			G: lerp(lo.c.G, hi.c.G, t),
			B: lerp(lo.c.B, hi.c.B, t),
			A: 255,
		}
	}
	return portland[len(portland)-1].c
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

// ParameterColors assigns each parameter value a colour by its min-max
// scaled position, so larger values sit further along the scale.
func ParameterColors(values []float64) []color.RGBA {
	pos := MinMaxScale(values)
	out := make([]color.RGBA, len(pos))
	for i, p := range pos {
		out[i] = SamplePortland(p)
	}
	return out
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
