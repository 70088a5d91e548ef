package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/response.report/internal/adapter"
	"github.com/banshee-data/response.report/internal/monitoring"
	"github.com/banshee-data/response.report/internal/normalize"
	"github.com/banshee-data/response.report/internal/render"
	"github.com/banshee-data/response.report/internal/testutil"
)

func quietLogs(t *testing.T) {
	t.Helper()
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.SetLogger(nil) })
}

// writeRun writes n PM100D files of 20 samples, one minute apart, whose power
// rises by 1% per sample times the file number.
func writeRun(t *testing.T, n int) []string {
	t.Helper()
	dir := t.TempDir()
	var files []string
	for f := 1; f <= n; f++ {
		elapsed := testutil.Ramp(20, 300, 60)
		power := testutil.Ramp(20, 1e-3, float64(f)*1e-5)
		files = append(files, testutil.WritePM100D(t, dir, fmt.Sprintf("run_%d.xlsx", f), elapsed, power))
	}
	return files
}

func newOptical(t *testing.T, b render.Backend) *Pipeline {
	t.Helper()
	a, err := adapter.Lookup(Optical.DefaultFormat, adapter.Options{})
	require.NoError(t, err)
	r, err := render.New(b)
	require.NoError(t, err)
	return New(Optical, a, r)
}

func TestRunEndToEnd(t *testing.T) {
	quietLogs(t)
	files := writeRun(t, 3)
	params, err := render.ParseParameters([]string{"ppm", "10", "20", "30"})
	require.NoError(t, err)

	p := newOptical(t, render.BackendHTML)
	var out bytes.Buffer
	res, err := p.Run(context.Background(), Request{
		Files:  files,
		Params: params,
		Cycle:  render.CycleConfig{TimeCycle: 15, ResTime: 5, RecTime: 10},
	}, &out)
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 3, res.Uniform.Files())
	require.Len(t, res.Normalized.Columns, 3)
	for i, col := range res.Normalized.Columns {
		assert.Equal(t, 0.0, col.Values[0], "file %d starts at zero", i+1)
		assert.InDelta(t, float64(i+1)*19e-5/1e-3, col.Values[19], 1e-9)
	}
	assert.Equal(t, 0.0, res.Time.Columns[0].Values[0], "elapsed time is rebased")

	var names []string
	for _, tr := range res.Chart.Traces {
		names = append(names, tr.Name)
	}
	assert.Equal(t, []string{"10 ppm", "20 ppm", "30 ppm"}, names)
	assert.InDelta(t, 19, res.Chart.MaxMinutes, 1e-9)
	require.Len(t, res.Chart.Bands, 1)
	assert.InDelta(t, 10.15, res.Chart.Bands[0].Start, 1e-9)

	assert.Equal(t, Optical.YAxisTitle, res.Chart.Style.YAxisTitle)
	assert.Equal(t, "cycle 15 min, exposure 5 min, recovery 10 min", res.Chart.Style.Subtitle)
	assert.Contains(t, out.String(), "30 ppm")
}

func TestRunShapeMismatch(t *testing.T) {
	quietLogs(t)
	files := writeRun(t, 3)
	p := newOptical(t, render.BackendHTML)

	_, err := p.Run(context.Background(), Request{
		Files:  files,
		Params: render.NewParameters("ppm", 10, 20),
		Cycle:  render.CycleConfig{ResTime: 5, RecTime: 10},
	}, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestRunStopsOnZeroBaseline(t *testing.T) {
	quietLogs(t)
	dir := t.TempDir()
	good := testutil.WritePM100D(t, dir, "a.xlsx", testutil.Ramp(5, 0, 1), testutil.Ramp(5, 1, 1))
	bad := testutil.WritePM100D(t, dir, "b.xlsx", testutil.Ramp(5, 0, 1), testutil.Ramp(5, 0, 1))

	var out bytes.Buffer
	_, err := newOptical(t, render.BackendHTML).Run(context.Background(), Request{
		Files:  []string{good, bad},
		Params: render.NewParameters("ppm", 1, 2),
		Cycle:  render.CycleConfig{ResTime: 5, RecTime: 10},
	}, &out)
	assert.ErrorIs(t, err, normalize.ErrZeroBaseline)
	assert.Zero(t, out.Len(), "nothing is rendered after a failed stage")
}

func TestRunInsufficientData(t *testing.T) {
	quietLogs(t)
	dir := t.TempDir()
	short := testutil.WriteWorkbook(t, dir, "short.xlsx", [][]interface{}{{"only"}, {"metadata"}})

	_, err := newOptical(t, render.BackendPNG).Run(context.Background(), Request{
		Files:  []string{short},
		Params: render.NewParameters("ppm", 1),
		Cycle:  render.CycleConfig{ResTime: 5, RecTime: 10},
	}, &bytes.Buffer{})
	var ide *adapter.InsufficientDataError
	require.True(t, errors.As(err, &ide))
	assert.Equal(t, 16, ide.Required)
}

func TestRunCancelled(t *testing.T) {
	quietLogs(t)
	files := writeRun(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newOptical(t, render.BackendHTML).Run(ctx, Request{
		Files:  files,
		Params: render.NewParameters("ppm", 1),
		Cycle:  render.CycleConfig{ResTime: 5, RecTime: 10},
	}, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrepareResistance(t *testing.T) {
	quietLogs(t)
	dir := t.TempDir()
	path := testutil.WriteResistance(t, dir, "r.xlsx", testutil.Ramp(10, 0, 30), testutil.Ramp(10, 200, -2))

	a, err := adapter.Lookup(Resistance.DefaultFormat, adapter.Options{})
	require.NoError(t, err)
	p := New(Resistance, a, nil)
	res, err := p.Prepare(context.Background(), Request{
		Files:  []string{path},
		Params: render.NewParameters("sccm", 100),
		Cycle:  render.CycleConfig{ResTime: 1, RecTime: 1},
		Style:  render.Style{Title: "film B"},
	})
	require.NoError(t, err)
	assert.Equal(t, "film B", res.Chart.Style.Title)
	assert.Equal(t, "Resistance, ΔR / R₀", res.Chart.Style.YAxisTitle)
	assert.InDelta(t, -0.09, res.Normalized.Columns[0].Values[9], 1e-9)
	assert.InDelta(t, 4.5, res.Chart.MaxMinutes, 1e-9)
}

func TestRequestValidate(t *testing.T) {
	assert.ErrorIs(t, Request{}.Validate(), adapter.ErrNoFiles)
	assert.ErrorIs(t, Request{
		Files:  []string{"a"},
		Params: render.NewParameters("ppm", 1),
	}.Validate(), render.ErrInvalidCycle)
}

func TestLookupProfile(t *testing.T) {
	p, err := LookupProfile("Optical")
	require.NoError(t, err)
	assert.Equal(t, adapter.FormatPM100D, p.DefaultFormat)

	p, err = LookupProfile("resistance")
	require.NoError(t, err)
	assert.Equal(t, adapter.FormatResistance, p.DefaultFormat)

	_, err = LookupProfile("acoustic")
	assert.Error(t, err)
}

func TestCycleSummary(t *testing.T) {
	assert.Equal(t, "exposure 2.5 min, recovery 10 min", CycleSummary(render.CycleConfig{ResTime: 2.5, RecTime: 10}))
}
