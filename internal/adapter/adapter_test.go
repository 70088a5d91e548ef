package adapter

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/response.report/internal/fsutil"
	"github.com/banshee-data/response.report/internal/testutil"
	"github.com/banshee-data/response.report/internal/units"
)

func TestPM100D_RebasesElapsedSeconds(t *testing.T) {
	dir := t.TempDir()
	elapsed := testutil.Ramp(20, 12.5, 1)
	power := testutil.Ramp(20, 1e-3, 1e-5)
	path := testutil.WritePM100D(t, dir, "run1.xlsx", elapsed, power)

	tbl, err := NewPM100D(Options{}).Read([]string{path})
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Files())
	assert.Equal(t, FormatPM100D, tbl.Format)

	s := tbl.Series[0]
	assert.Equal(t, 1, s.Index)
	assert.Equal(t, path, s.Source)
	assert.Equal(t, units.Seconds, s.TimeUnit)
	require.Len(t, s.Time, 20)
	require.Len(t, s.Signal, 20)
	assert.Equal(t, 0.0, s.Time[0])
	assert.InDelta(t, 19.0, s.Time[19], 1e-9)
	if diff := cmp.Diff(power, s.Signal); diff != "" {
		t.Errorf("signal mismatch (-want +got):\n%s", diff)
	}
}

func TestPM100D_FallsBackToTimestampColumn(t *testing.T) {
	dir := t.TempDir()
	elapsed := []float64{3600, 3601.5, 3603}
	power := []float64{1, 2, 3}
	path := testutil.WritePM100D(t, dir, "clock.xlsx", elapsed, power, testutil.PM100DOptions{OmitElapsed: true})

	tbl, err := NewPM100D(Options{}).Read([]string{path})
	require.NoError(t, err)

	got := tbl.Series[0].Time
	require.Len(t, got, 3)
	assert.InDelta(t, 0, got[0], 1e-9)
	assert.InDelta(t, 1.5, got[1], 1e-6)
	assert.InDelta(t, 3, got[2], 1e-6)
}

func TestPM100D_RebasesOnFirstFiniteElapsed(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WritePM100D(t, dir, "late.xlsx", []float64{0, 360, 420}, []float64{1, 2, 3},
		testutil.PM100DOptions{BlankElapsed: []int{0}})

	tbl, err := NewPM100D(Options{}).Read([]string{path})
	require.NoError(t, err)

	got := tbl.Series[0].Time
	require.Len(t, got, 3)
	assert.True(t, math.IsNaN(got[0]), "blank leading cell stays NaN")
	assert.Equal(t, 0.0, got[1])
	assert.InDelta(t, 60, got[2], 1e-9)
}

func TestRebase(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name  string
		in    []float64
		first int
		want  []float64
	}{
		{"empty", nil, -1, nil},
		{"from first row", []float64{5, 6, 8}, 0, []float64{0, 1, 3}},
		{"leading blank", []float64{nan, 10, 12}, 1, []float64{nan, 0, 2}},
		{"all blank", []float64{nan, nan}, -1, []float64{nan, nan}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vals := append([]float64(nil), tt.in...)
			assert.Equal(t, tt.first, rebase(vals))
			if diff := cmp.Diff(tt.want, vals, cmpopts.EquateNaNs()); diff != "" {
				t.Errorf("rebase mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadKeepsFileOrderAndColumnCount(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		testutil.WritePM100D(t, dir, "a.xlsx", testutil.Ramp(5, 0, 1), testutil.Ramp(5, 1, 1)),
		testutil.WritePM100D(t, dir, "b.xlsx", testutil.Ramp(8, 0, 1), testutil.Ramp(8, 2, 1)),
		testutil.WritePM100D(t, dir, "c.xlsx", testutil.Ramp(3, 0, 1), testutil.Ramp(3, 3, 1)),
	}

	tbl, err := NewPM100D(Options{}).Read(paths)
	require.NoError(t, err)

	names := tbl.ColumnNames()
	assert.Len(t, names, 6)
	assert.Equal(t, []string{
		"file_1_Time_s", "file_1_Power_W",
		"file_2_Time_s", "file_2_Power_W",
		"file_3_Time_s", "file_3_Power_W",
	}, names)
	for i, s := range tbl.Series {
		assert.Equal(t, i+1, s.Index)
		assert.Equal(t, paths[i], s.Source)
		assert.Equal(t, float64(i+1), s.Signal[0])
	}
	assert.Equal(t, 8, tbl.Rows())
}

func TestLegacyPM100D_TakesValuesAsIs(t *testing.T) {
	dir := t.TempDir()
	timeMs := []float64{500, 1500, 2500, 3500}
	power := []float64{2e-3, 2.1e-3, 2.2e-3, 2.05e-3}
	path := testutil.WriteLegacyPM100D(t, dir, "old.xlsx", timeMs, power)

	tbl, err := NewLegacyPM100D(Options{}).Read([]string{path})
	require.NoError(t, err)

	s := tbl.Series[0]
	assert.Equal(t, units.Milliseconds, s.TimeUnit)
	assert.Equal(t, timeMs, s.Time)
	assert.Equal(t, power, s.Signal)
}

func TestResistance_ReadsColumnsZeroAndThree(t *testing.T) {
	dir := t.TempDir()
	secs := []float64{0, 10, 20}
	ohms := []float64{1200, 1180, 1150}
	path := testutil.WriteResistance(t, dir, "r.xlsx", secs, ohms)

	tbl, err := NewResistance(Options{}).Read([]string{path})
	require.NoError(t, err)

	s := tbl.Series[0]
	assert.Equal(t, "Resistance_Ohms", s.SignalName)
	assert.Equal(t, secs, s.Time)
	assert.Equal(t, ohms, s.Signal)
}

func TestPM320_SynthesisesRowIndexTime(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	power := []float64{5e-4, 5.1e-4, 4.9e-4}
	data := append([]byte("\n"), testutil.PM320Text(power)...)
	require.NoError(t, mfs.WriteFile("/data/pm320.txt", data, 0o644))

	tbl, err := NewPM320(Options{FS: mfs}).Read([]string{"/data/pm320.txt"})
	require.NoError(t, err)

	s := tbl.Series[0]
	assert.Equal(t, units.Samples, s.TimeUnit)
	assert.Equal(t, "Power_dshape", s.SignalName)
	assert.Equal(t, []float64{0, 1, 2}, s.Time)
	assert.Equal(t, power, s.Signal)
}

func TestPM320_NonNumericSignalIsAnError(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("bad.txt", []byte("a b c d e f power h i\n"), 0o644))

	_, err := NewPM320(Options{FS: mfs}).Read([]string{"bad.txt"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.txt: line 1 column 6")
}

func TestShortFiles(t *testing.T) {
	dir := t.TempDir()
	short := testutil.WriteWorkbook(t, dir, "short.xlsx", [][]interface{}{{"only"}, {"metadata"}})

	t.Run("strict returns InsufficientDataError", func(t *testing.T) {
		_, err := NewPM100D(Options{}).Read([]string{short})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInsufficientData))

		var ide *InsufficientDataError
		require.True(t, errors.As(err, &ide))
		assert.Equal(t, short, ide.Path)
		assert.Equal(t, 2, ide.Rows)
		assert.Equal(t, 16, ide.Required)
	})

	t.Run("lenient keeps an empty series", func(t *testing.T) {
		full := testutil.WritePM100D(t, dir, "full.xlsx", testutil.Ramp(4, 0, 1), testutil.Ramp(4, 1, 1))
		tbl, err := NewPM100D(Options{Lenient: true}).Read([]string{full, short})
		require.NoError(t, err)
		require.Equal(t, 2, tbl.Files())
		assert.Len(t, tbl.Series[0].Signal, 4)
		assert.Empty(t, tbl.Series[1].Signal)
		assert.Len(t, tbl.ColumnNames(), 4)
	})

	t.Run("empty text file", func(t *testing.T) {
		mfs := fsutil.NewMemoryFileSystem()
		require.NoError(t, mfs.WriteFile("empty.txt", nil, 0o644))
		_, err := NewPM320(Options{FS: mfs}).Read([]string{"empty.txt"})
		assert.ErrorIs(t, err, ErrInsufficientData)

		tbl, err := NewPM320(Options{FS: mfs, Lenient: true}).Read([]string{"empty.txt"})
		require.NoError(t, err)
		assert.Empty(t, tbl.Series[0].Signal)
	})
}

func TestRowsNeverExceedInput(t *testing.T) {
	dir := t.TempDir()
	for _, m := range []int{16, 20, 40} {
		rows := make([][]interface{}, m)
		for i := range rows {
			rows[i] = []interface{}{float64(i), 1.0, "0:00:01", 2.0, "W", float64(i)}
		}
		path := testutil.WriteWorkbook(t, dir, "m.xlsx", rows)
		tbl, err := NewPM100D(Options{}).Read([]string{path})
		require.NoError(t, err)
		assert.Len(t, tbl.ColumnNames(), 2)
		assert.LessOrEqual(t, tbl.Series[0].Len(), m)
		assert.Equal(t, m-15, tbl.Series[0].Len())
	}
}

func TestNonNumericCellReportsPosition(t *testing.T) {
	dir := t.TempDir()
	rows := make([][]interface{}, 0, 9)
	for i := 0; i < 7; i++ {
		rows = append(rows, []interface{}{"meta"})
	}
	rows = append(rows, []interface{}{0.0, nil, nil, 100.0})
	rows = append(rows, []interface{}{1.0, nil, nil, "overload"})
	path := testutil.WriteWorkbook(t, dir, "bad.xlsx", rows)

	_, err := NewResistance(Options{}).Read([]string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 8 column 3")
}

func TestBlankCellsBecomeNaN(t *testing.T) {
	dir := t.TempDir()
	rows := make([][]interface{}, 0, 10)
	for i := 0; i < 7; i++ {
		rows = append(rows, []interface{}{"meta"})
	}
	rows = append(rows, []interface{}{0.0, nil, nil, 100.0})
	rows = append(rows, []interface{}{1.0})
	rows = append(rows, []interface{}{2.0, nil, nil, 90.0})
	path := testutil.WriteWorkbook(t, dir, "gap.xlsx", rows)

	tbl, err := NewResistance(Options{}).Read([]string{path})
	require.NoError(t, err)
	sig := tbl.Series[0].Signal
	require.Len(t, sig, 3)
	assert.True(t, math.IsNaN(sig[1]))
	assert.Equal(t, 90.0, sig[2])
}

func TestMissingFile(t *testing.T) {
	_, err := NewPM100D(Options{FS: fsutil.NewMemoryFileSystem()}).Read([]string{"nope.xlsx"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open nope.xlsx")
}

func TestNoFiles(t *testing.T) {
	_, err := NewPM320(Options{}).Read(nil)
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestLookup(t *testing.T) {
	for _, tag := range []string{FormatPM100D, "PM320", " pm100d-legacy ", FormatResistance} {
		a, err := Lookup(tag, Options{})
		require.NoError(t, err, tag)
		assert.NotEmpty(t, a.Format())
	}

	_, err := Lookup("pm400", Options{})
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.Contains(t, err.Error(), "pm100d, pm100d-legacy, pm320, resistance")

	formats := Formats()
	require.Len(t, formats, 4)
	assert.Equal(t, FormatPM100D, formats[0].Tag)
}
