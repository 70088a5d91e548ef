package render

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// pixelsPerInch matches the raster DPI gonum/plot uses for png output.
const pixelsPerInch = 96

// ImageRenderer draws a static figure with gonum/plot. Format is "png" or "svg".
type ImageRenderer struct {
	Format string
}

// Render writes the encoded image for c.
func (r *ImageRenderer) Render(c *Chart, w io.Writer) error {
	p, err := r.plot(c)
	if err != nil {
		return err
	}
	width := vg.Length(c.Style.Width) * vg.Inch / pixelsPerInch
	height := vg.Length(c.Style.Height) * vg.Inch / pixelsPerInch
	wt, err := p.WriterTo(width, height, r.Format)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.Format, err)
	}
	_, err = wt.WriteTo(w)
	return err
}

func (r *ImageRenderer) plot(c *Chart) (*plot.Plot, error) {
	if c == nil || len(c.Traces) == 0 {
		return nil, ErrNoData
	}
	s := c.Style

	p := plot.New()
	p.Title.Text = s.Title
	p.Title.TextStyle.Font.Size = vg.Points(float64(s.FontSize))
	p.BackgroundColor = s.Background
	p.X.Label.Text = s.XAxisTitle
	p.Y.Label.Text = s.YAxisTitle
	p.X.Min = 0
	p.Legend.Top = true
	p.Legend.Left = false

	if s.LegendTitle != "" {
		p.Legend.Add(s.LegendTitle)
	}

	lo, hi := c.YRange()
	if err := addBands(p, c, lo, hi); err != nil {
		return nil, err
	}

	for _, tr := range c.Traces {
		pts := tr.Points()
		if len(pts) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(pts))
		for i, pt := range pts {
			xys[i] = plotter.XY{X: pt[0], Y: pt[1]}
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("trace %s: %w", tr.Name, err)
		}
		l.Color = tr.Color
		l.Width = vg.Points(s.LineWidth)
		p.Add(l)
		p.Legend.Add(tr.Name, l)
	}
	p.Add(frame{})
	return p, nil
}

// addBands shades each exposure band and labels it with the stimulus name,
// rotated to run along the band.
func addBands(p *plot.Plot, c *Chart, lo, hi float64) error {
	if len(c.Bands) == 0 {
		return nil
	}
	s := c.Style
	fill := color.NRGBA{R: s.BandColor.R, G: s.BandColor.G, B: s.BandColor.B, A: uint8(math.Round(s.BandOpacity * 255))}

	labels := plotter.XYLabels{}
	for _, b := range c.Bands {
		poly, err := plotter.NewPolygon(plotter.XYs{
			{X: b.Start, Y: lo}, {X: b.End, Y: lo},
			{X: b.End, Y: hi}, {X: b.Start, Y: hi},
		})
		if err != nil {
			return fmt.Errorf("band at %g: %w", b.Start, err)
		}
		poly.Color = fill
		poly.LineStyle.Width = 0
		p.Add(poly)

		labels.XYs = append(labels.XYs, plotter.XY{X: (b.Start + b.End) / 2, Y: hi})
		labels.Labels = append(labels.Labels, s.StimulusLabel)
	}

	lbl, err := plotter.NewLabels(labels)
	if err != nil {
		return fmt.Errorf("band labels: %w", err)
	}
	for i := range lbl.TextStyle {
		lbl.TextStyle[i].Font.Size = vg.Points(float64(s.LabelFontSize))
		lbl.TextStyle[i].Rotation = BandLabelRotation * math.Pi / 180
		lbl.TextStyle[i].XAlign = text.XLeft
		lbl.TextStyle[i].YAlign = text.YCenter
	}
	p.Add(lbl)
	return nil
}

// frame strokes a black border around the data area.
type frame struct{}

func (frame) Plot(c draw.Canvas, _ *plot.Plot) {
	r := c.Rectangle
	c.StrokeLines(draw.LineStyle{Color: color.Black, Width: vg.Points(1)}, []vg.Point{
		{X: r.Min.X, Y: r.Min.Y},
		{X: r.Max.X, Y: r.Min.Y},
		{X: r.Max.X, Y: r.Max.Y},
		{X: r.Min.X, Y: r.Max.Y},
		{X: r.Min.X, Y: r.Min.Y},
	})
}
