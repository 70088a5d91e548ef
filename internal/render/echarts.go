package render

import (
	"fmt"
	"image/color"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// DefaultAssetsHost serves the echarts javascript for standalone HTML pages.
const DefaultAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// htmlChartID names the echarts instance so page scripts can reach it.
const htmlChartID = "response"

// BandLabelRotation is the rotation of the stimulus label on each band, in
// degrees counter-clockwise, so the text runs down the band.
const BandLabelRotation = 270

// rotateBandLabels is run after the chart is initialised. The markArea
// label's rotate option has no field in the go-echarts option structs.
const rotateBandLabels = `(function () {
  var chart = goecharts_%s;
  var series = chart.getOption().series.map(function (s) {
    if (!s.markArea || !s.markArea.label) { return {}; }
    return {markArea: {label: {rotate: %d, position: "insideTopRight", align: "left", verticalAlign: "middle"}}};
  });
  chart.setOption({series: series});
})();`

// HTMLRenderer draws an interactive echarts line chart.
type HTMLRenderer struct {
	AssetsHost string
}

// Render writes a self-contained HTML page for c.
func (r *HTMLRenderer) Render(c *Chart, w io.Writer) error {
	line, err := r.lineChart(c)
	if err != nil {
		return err
	}
	return line.Render(w)
}

func (r *HTMLRenderer) lineChart(c *Chart) (*charts.Line, error) {
	if c == nil || len(c.Traces) == 0 {
		return nil, ErrNoData
	}
	s := c.Style
	border := &opts.AxisLine{Show: opts.Bool(true), OnZero: opts.Bool(false), LineStyle: &opts.LineStyle{Color: "black", Width: 1}}
	hidden := &opts.AxisLabel{Show: opts.Bool(false)}
	noTick := &opts.AxisTick{Show: opts.Bool(false)}
	font := &opts.TextStyle{FontSize: s.FontSize, Color: "black"}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       pageTitle(s),
			ChartID:         htmlChartID,
			Width:           fmt.Sprintf("%dpx", s.Width),
			Height:          fmt.Sprintf("%dpx", s.Height),
			BackgroundColor: rgba(s.Background, 1),
			AssetsHost:      r.AssetsHost,
		}),
		charts.WithTitleOpts(opts.Title{Title: s.Title, Subtitle: s.Subtitle, Left: "center", TitleStyle: font}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{
			Show:      opts.Bool(true),
			Orient:    "vertical",
			Right:     "10",
			Top:       "middle",
			TextStyle: font,
			Data:      legendData(c),
		}),
		charts.WithGridOpts(opts.Grid{Left: "90", Right: "160", Top: "80", Bottom: "70"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:         "value",
			Name:         s.XAxisTitle,
			NameLocation: "middle",
			NameGap:      30,
			Min:          0,
			AxisLine:     border,
			SplitLine:    &opts.SplitLine{Show: opts.Bool(false)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:         "value",
			Name:         s.YAxisTitle,
			NameLocation: "middle",
			NameGap:      60,
			AxisLine:     border,
			SplitLine:    &opts.SplitLine{Show: opts.Bool(false)},
		}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside", XAxisIndex: []int{0}}),
	)
	// Mirror axes close the frame on the top and right.
	line.ExtendXAxis(opts.XAxis{Type: "value", Position: "top", AxisLine: border, AxisLabel: hidden, AxisTick: noTick})
	line.ExtendYAxis(opts.YAxis{Type: "value", Position: "right", AxisLine: border, AxisLabel: hidden})

	// An empty series carries the legend heading.
	if s.LegendTitle != "" {
		line.AddSeries(s.LegendTitle, nil)
	}
	for i, tr := range c.Traces {
		seriesOpts := []charts.SeriesOpts{
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false), ConnectNulls: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: Hex(tr.Color), Width: float32(s.LineWidth)}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: Hex(tr.Color)}),
		}
		// Bands ride on the first series so they are drawn once.
		if i == 0 && len(c.Bands) > 0 {
			seriesOpts = append(seriesOpts, bandMarkAreas(c)...)
		}
		line.AddSeries(tr.Name, lineData(tr), seriesOpts...)
	}
	if len(c.Bands) > 0 {
		line.AddJSFuncs(fmt.Sprintf(rotateBandLabels, htmlChartID, BandLabelRotation))
	}
	return line, nil
}

// legendData lists the heading (without an icon) followed by each trace.
func legendData(c *Chart) []interface{} {
	var data []interface{}
	if c.Style.LegendTitle != "" {
		data = append(data, map[string]interface{}{"name": c.Style.LegendTitle, "icon": "none"})
	}
	for _, tr := range c.Traces {
		data = append(data, tr.Name)
	}
	return data
}

// lineData converts a trace to [x, y] pairs, marking gaps with "-".
func lineData(tr Trace) []opts.LineData {
	n := min(len(tr.X), len(tr.Y))
	data := make([]opts.LineData, 0, n)
	for i := 0; i < n; i++ {
		x, y := tr.X[i], tr.Y[i]
		if !finite(x) {
			continue
		}
		var yv interface{} = y
		if !finite(y) {
			yv = "-"
		}
		data = append(data, opts.LineData{Value: []interface{}{x, yv}})
	}
	return data
}

func bandMarkAreas(c *Chart) []charts.SeriesOpts {
	s := c.Style
	fill := &opts.ItemStyle{Color: rgba(s.BandColor, s.BandOpacity)}
	items := make([]opts.MarkAreaNameCoordItem, 0, len(c.Bands))
	for _, b := range c.Bands {
		items = append(items, opts.MarkAreaNameCoordItem{
			Name:        s.StimulusLabel,
			Coordinate0: []interface{}{b.Start, "min"},
			Coordinate1: []interface{}{b.End, "max"},
			ItemStyle:   fill,
		})
	}
	return []charts.SeriesOpts{
		charts.WithMarkAreaNameCoordItemOpts(items...),
		charts.WithMarkAreaStyleOpts(opts.MarkAreaStyle{
			Label: &opts.Label{
				Show:      opts.Bool(true),
				Position:  "insideTop",
				FontSize:  float32(s.LabelFontSize),
				FontStyle: "italic",
				Color:     "black",
			},
			ItemStyle: fill,
		}),
	}
}

func pageTitle(s Style) string {
	if s.Title != "" {
		return s.Title
	}
	return s.YAxisTitle
}

func rgba(c color.RGBA, alpha float64) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%g)", c.R, c.G, c.B, alpha)
}
