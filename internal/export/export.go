// Package export writes the normalized and time tables to disk so a run
// can be re-plotted or analysed elsewhere.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/banshee-data/response.report/internal/fsutil"
	"github.com/banshee-data/response.report/internal/table"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat resolves an export format name. The empty string means no export.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatCSV, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv or xlsx)", s)
}

// Sheet is a named table destined for one CSV file or one workbook sheet.
type Sheet struct {
	Name    string
	Columns table.Columns
}

// WriteCSV writes cols with a header row. Missing values are left blank.
func WriteCSV(w io.Writer, cols table.Columns) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(cols.Names()); err != nil {
		return err
	}
	if m := cols.Dense(); m != nil {
		rows, n := m.Dims()
		record := make([]string, n)
		for r := 0; r < rows; r++ {
			for i := range record {
				record[i] = formatValue(m.At(r, i))
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes each sheet to one worksheet of a new workbook.
func WriteXLSX(w io.Writer, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("no sheets to write")
	}
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.Name); err != nil {
				return fmt.Errorf("sheet %s: %w", s.Name, err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("sheet %s: %w", s.Name, err)
		}
		if err := writeSheet(f, s); err != nil {
			return fmt.Errorf("sheet %s: %w", s.Name, err)
		}
	}
	_, err := f.WriteTo(w)
	return err
}

func writeSheet(f *excelize.File, s Sheet) error {
	header := make([]interface{}, len(s.Columns))
	for i, name := range s.Columns.Names() {
		header[i] = name
	}
	if err := f.SetSheetRow(s.Name, "A1", &header); err != nil {
		return err
	}
	m := s.Columns.Dense()
	if m == nil {
		return nil
	}
	rows, n := m.Dims()
	for r := 0; r < rows; r++ {
		row := make([]interface{}, n)
		for i := range row {
			if v := m.At(r, i); !math.IsNaN(v) && !math.IsInf(v, 0) {
				row[i] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.Name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// Tables writes the normalized and time tables next to base, which is a
// path without extension. CSV produces two files, XLSX one workbook with two
// sheets. It returns the paths written.
func Tables(fsys fsutil.FileSystem, format Format, base string, norm *table.NormalizedTable, times *table.TimeTable) ([]string, error) {
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	sheets := []Sheet{
		{Name: "normalized", Columns: norm.Columns},
		{Name: "time", Columns: times.Columns},
	}
	if dir := filepath.Dir(base); dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	switch format {
	case FormatCSV:
		var paths []string
		for _, s := range sheets {
			path := base + "_" + s.Name + ".csv"
			if err := writeFile(fsys, path, func(w io.Writer) error { return WriteCSV(w, s.Columns) }); err != nil {
				return paths, err
			}
			paths = append(paths, path)
		}
		return paths, nil
	case FormatXLSX:
		path := base + ".xlsx"
		if err := writeFile(fsys, path, func(w io.Writer) error { return WriteXLSX(w, sheets...) }); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}
	return nil, fmt.Errorf("unknown export format %q", format)
}

func writeFile(fsys fsutil.FileSystem, path string, write func(io.Writer) error) error {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
