// Package pipeline runs an experiment end to end. Raw files pass through an
// adapter and the normalizer, and the normalized traces are drawn against
// time with the exposure bands laid over them.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/banshee-data/response.report/internal/adapter"
	"github.com/banshee-data/response.report/internal/monitoring"
	"github.com/banshee-data/response.report/internal/normalize"
	"github.com/banshee-data/response.report/internal/render"
	"github.com/banshee-data/response.report/internal/table"
)

// ErrShapeMismatch is returned when the parameter count differs from the file count.
var ErrShapeMismatch = render.ErrShapeMismatch

// Request is one experiment: the files in order, one parameter value per
// file, and the exposure schedule.
type Request struct {
	Files  []string
	Params render.Parameters
	Cycle  render.CycleConfig
	Style  render.Style
}

// Validate checks the request before any file is opened.
func (r Request) Validate() error {
	if len(r.Files) == 0 {
		return adapter.ErrNoFiles
	}
	if r.Params.Len() != len(r.Files) {
		return fmt.Errorf("%w: %d files but %d parameter values (%s)",
			ErrShapeMismatch, len(r.Files), r.Params.Len(), strings.Join(r.Params.Strings(), ","))
	}
	return r.Cycle.Validate()
}

// Result carries every intermediate table along with the chart model.
type Result struct {
	RunID      string
	Uniform    *table.UniformTable
	Normalized *table.NormalizedTable
	Time       *table.TimeTable
	Chart      *render.Chart
}

// Pipeline turns one experiment's raw files into a rendered chart.
type Pipeline struct {
	Profile  Profile
	Adapter  adapter.Adapter
	Renderer render.Renderer
}

// New returns a pipeline for profile p.
func New(p Profile, a adapter.Adapter, r render.Renderer) *Pipeline {
	return &Pipeline{Profile: p, Adapter: a, Renderer: r}
}

// Prepare reads and normalizes the files and builds the chart model
// without rendering it.
func (p *Pipeline) Prepare(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	res := &Result{RunID: uuid.NewString()}
	monitoring.Logf("run %s: %s signal, %d files, format %s", res.RunID, p.Profile.Name, len(req.Files), p.Adapter.Format())

	uniform, err := p.Adapter.Read(req.Files)
	if err != nil {
		return nil, fmt.Errorf("read %s files: %w", p.Adapter.Format(), err)
	}
	res.Uniform = uniform
	monitoring.Debugf("run %s: read %d rows across %d files", res.RunID, uniform.Rows(), uniform.Files())
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	norm, err := normalize.Normalize(uniform)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	res.Normalized = norm
	res.Time = normalize.Time(uniform)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	chart, err := render.Build(res.Normalized, res.Time, req.Params, req.Cycle, p.style(req))
	if err != nil {
		return nil, fmt.Errorf("build chart: %w", err)
	}
	res.Chart = chart
	monitoring.Debugf("run %s: %.2f min, %d exposure bands", res.RunID, chart.MaxMinutes, len(chart.Bands))
	return res, nil
}

// Run prepares the chart and renders it to w.
func (p *Pipeline) Run(ctx context.Context, req Request, w io.Writer) (*Result, error) {
	res, err := p.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	if p.Renderer == nil {
		return res, nil
	}
	if err := p.Renderer.Render(res.Chart, w); err != nil {
		return res, fmt.Errorf("render: %w", err)
	}
	monitoring.Logf("run %s: rendered %d traces", res.RunID, len(res.Chart.Traces))
	return res, nil
}

// style fills profile defaults into the requested style.
func (p *Pipeline) style(req Request) render.Style {
	s := req.Style
	if s.Title == "" {
		s.Title = p.Profile.DefaultTitle
	}
	if s.YAxisTitle == "" {
		s.YAxisTitle = p.Profile.YAxisTitle
	}
	if s.Subtitle == "" {
		s.Subtitle = CycleSummary(req.Cycle)
	}
	return s
}

// CycleSummary describes the exposure schedule for the chart subtitle.
func CycleSummary(c render.CycleConfig) string {
	parts := make([]string, 0, 3)
	if c.TimeCycle > 0 {
		parts = append(parts, "cycle "+minutes(c.TimeCycle))
	}
	parts = append(parts, "exposure "+minutes(c.ResTime), "recovery "+minutes(c.RecTime))
	return strings.Join(parts, ", ")
}

func minutes(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + " min"
}
