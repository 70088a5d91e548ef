// Package testutil provides shared test fixtures for the raw instrument layouts.
//
// Workbooks are written with excelize so adapter tests exercise the same
// reader path as real exports.
package testutil

import (
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// WriteWorkbook saves rows to dir/name as the first sheet of a new workbook.
// Nil cells are left blank.
func WriteWorkbook(t *testing.T, dir, name string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		AssertNoError(t, err)
		vals := row
		AssertNoError(t, f.SetSheetRow(sheet, cell, &vals))
	}

	path := filepath.Join(dir, name)
	AssertNoError(t, f.SaveAs(path))
	return path
}

// headerRows returns n metadata rows, each with a label in column 0.
func headerRows(n int, device string) [][]interface{} {
	rows := make([][]interface{}, n)
	for i := range rows {
		rows[i] = []interface{}{fmt.Sprintf("%s meta %d", device, i)}
	}
	return rows
}

// FormatClock renders seconds as H:MM:SS.mmm, the PM100D timestamp form.
func FormatClock(seconds float64) string {
	h := int(seconds) / 3600
	m := (int(seconds) % 3600) / 60
	s := math.Mod(seconds, 60)
	return fmt.Sprintf("%d:%02d:%06.3f", h, m, s)
}

// PM100DOptions controls optional columns in a PM100D fixture.
type PM100DOptions struct {
	// OmitElapsed leaves column 5 blank so the reader must fall back to the
	// timestamp column.
	OmitElapsed bool
	// BlankElapsed lists data rows (0-based) whose elapsed cell is left blank.
	BlankElapsed []int
}

// WritePM100D writes a PM100D workbook: 15 metadata rows, then one row per
// sample with the timestamp in column 2, power in column 3 and elapsed seconds
// in column 5.
func WritePM100D(t *testing.T, dir, name string, elapsed, power []float64, opts ...PM100DOptions) string {
	t.Helper()
	var o PM100DOptions
	if len(opts) > 0 {
		o = opts[0]
	}

	rows := headerRows(15, "PM100D")
	for i := range power {
		var el interface{}
		if !o.OmitElapsed && !slices.Contains(o.BlankElapsed, i) {
			el = elapsed[i]
		}
		rows = append(rows, []interface{}{i + 1, "2023-11-15", FormatClock(elapsed[i]), power[i], "W", el})
	}
	return WriteWorkbook(t, dir, name, rows)
}

// WriteLegacyPM100D writes a legacy PM100D workbook: 23 metadata rows, then
// time in milliseconds in column 0 and power in column 1.
func WriteLegacyPM100D(t *testing.T, dir, name string, timeMs, power []float64) string {
	t.Helper()
	rows := headerRows(23, "PM100D legacy")
	for i := range power {
		rows = append(rows, []interface{}{timeMs[i], power[i]})
	}
	return WriteWorkbook(t, dir, name, rows)
}

// WriteResistance writes a resistance rig workbook: 7 metadata rows, then
// time in seconds in column 0 and resistance in column 3.
func WriteResistance(t *testing.T, dir, name string, seconds, ohms []float64) string {
	t.Helper()
	rows := headerRows(7, "Keithley")
	for i := range ohms {
		rows = append(rows, []interface{}{seconds[i], 1.0, 0.001, ohms[i]})
	}
	return WriteWorkbook(t, dir, name, rows)
}

// PM320Text renders a PM320 whitespace table with power in column 6.
func PM320Text(power []float64) []byte {
	var b strings.Builder
	for i, p := range power {
		fields := []string{
			strconv.Itoa(i), "15.11.2023", "12:00:00", "1.0e-3", "0", "1",
			strconv.FormatFloat(p, 'g', -1, 64), "0", "0",
		}
		b.WriteString(strings.Join(fields, "   "))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// Ramp returns n values starting at start and increasing by step.
func Ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}
