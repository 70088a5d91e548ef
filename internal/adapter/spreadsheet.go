package adapter

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/banshee-data/response.report/internal/monitoring"
	"github.com/banshee-data/response.report/internal/table"
	"github.com/banshee-data/response.report/internal/units"
)

// SpreadsheetLayout describes a workbook export with a fixed metadata header.
// Column and row indices are 0-based; only the first sheet is read.
type SpreadsheetLayout struct {
	Format string
	// HeaderRows is the number of leading rows skipped before data begins.
	HeaderRows int
	TimeCol    int
	SignalCol  int
	// ClockCol, when >= 0, holds a duration string used as the time source
	// for files whose TimeCol is blank on every data row.
	ClockCol int
	// Rebase subtracts the first data row's time so the series starts at 0.
	Rebase     bool
	TimeUnit   string
	SignalName string
}

// Spreadsheet reads workbooks laid out according to a SpreadsheetLayout.
type Spreadsheet struct {
	layout SpreadsheetLayout
	opts   Options
}

// NewSpreadsheet returns an adapter for an arbitrary workbook layout.
func NewSpreadsheet(layout SpreadsheetLayout, opts Options) *Spreadsheet {
	return &Spreadsheet{layout: layout, opts: opts}
}

// NewPM100D handles current PM100D exports: 15 metadata rows, a duration
// timestamp in column 2, elapsed seconds in column 5 and power in column 3.
func NewPM100D(opts Options) *Spreadsheet {
	return NewSpreadsheet(SpreadsheetLayout{
		Format:     FormatPM100D,
		HeaderRows: 15,
		TimeCol:    5,
		SignalCol:  3,
		ClockCol:   2,
		Rebase:     true,
		TimeUnit:   units.Seconds,
		SignalName: "Power_W",
	}, opts)
}

// NewLegacyPM100D handles older PM100D exports with data from row 23,
// time in milliseconds in column 0 and power in column 1. Values are taken as-is.
func NewLegacyPM100D(opts Options) *Spreadsheet {
	return NewSpreadsheet(SpreadsheetLayout{
		Format:     FormatPM100DLegacy,
		HeaderRows: 23,
		TimeCol:    0,
		SignalCol:  1,
		ClockCol:   -1,
		TimeUnit:   units.Milliseconds,
		SignalName: "Power_W",
	}, opts)
}

// NewResistance handles resistance rig exports with data from row 7,
// time in seconds in column 0 and resistance in column 3.
func NewResistance(opts Options) *Spreadsheet {
	return NewSpreadsheet(SpreadsheetLayout{
		Format:     FormatResistance,
		HeaderRows: 7,
		TimeCol:    0,
		SignalCol:  3,
		ClockCol:   -1,
		TimeUnit:   units.Seconds,
		SignalName: "Resistance_Ohms",
	}, opts)
}

// Format returns the layout tag.
func (a *Spreadsheet) Format() string { return a.layout.Format }

// Read parses each workbook in order.
func (a *Spreadsheet) Read(paths []string) (*table.UniformTable, error) {
	return readEach(a.layout.Format, paths, a.readFile)
}

func (a *Spreadsheet) readFile(index int, path string) (table.Series, error) {
	l := a.layout
	s := table.Series{Index: index, Source: path, TimeUnit: l.TimeUnit, SignalName: l.SignalName}

	rows, err := a.sheetRows(path)
	if err != nil {
		return s, err
	}

	if len(rows) <= l.HeaderRows {
		if !a.opts.Lenient {
			return s, &InsufficientDataError{Path: path, Format: l.Format, Rows: len(rows), Required: l.HeaderRows + 1}
		}
		monitoring.Logf("adapter %s: %s has %d rows, header needs %d; keeping empty series", l.Format, path, len(rows), l.HeaderRows)
		s.Time, s.Signal = []float64{}, []float64{}
		return s, nil
	}

	data := rows[l.HeaderRows:]
	s.Time = make([]float64, len(data))
	s.Signal = make([]float64, len(data))
	for i, row := range data {
		fileRow := l.HeaderRows + i
		if s.Time[i], err = parseNumber(cellAt(row, l.TimeCol)); err != nil {
			return s, cellError(path, fileRow, l.TimeCol, err)
		}
		if s.Signal[i], err = parseNumber(cellAt(row, l.SignalCol)); err != nil {
			return s, cellError(path, fileRow, l.SignalCol, err)
		}
	}

	if l.ClockCol >= 0 && allNaN(s.Time) {
		if s.Time, err = parseClockColumn(path, data, l.HeaderRows, l.ClockCol); err != nil {
			return s, err
		}
		monitoring.Logf("adapter %s: %s has no elapsed-time column, using timestamp column %d", l.Format, path, l.ClockCol)
	}

	if l.Rebase {
		if first := rebase(s.Time); first > 0 {
			monitoring.Logf("adapter %s: %s time is blank before row %d; rebasing on that row", l.Format, path, l.HeaderRows+first)
		}
	}
	return s, nil
}

// sheetRows returns the raw (unformatted) cell values of the first sheet.
func (a *Spreadsheet) sheetRows(path string) ([][]string, error) {
	r, err := a.opts.fs().Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer r.Close()

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: workbook has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheets[0], path, err)
	}
	return rows, nil
}

func parseClockColumn(path string, data [][]string, offset, col int) ([]float64, error) {
	out := make([]float64, len(data))
	for i, row := range data {
		v, err := parseClock(cellAt(row, col))
		if err != nil {
			return nil, cellError(path, offset+i, col, err)
		}
		out[i] = v
	}
	return out, nil
}

// rebase shifts vals in place so that the first finite value becomes 0 and
// returns its index, or -1 when there is none. Blank rows before it stay NaN.
func rebase(vals []float64) int {
	first := -1
	for i, v := range vals {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			first = i
			break
		}
	}
	if first < 0 {
		return -1
	}
	base := vals[first]
	for i := range vals {
		vals[i] -= base
	}
	return first
}

func allNaN(vals []float64) bool {
	for _, v := range vals {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}
