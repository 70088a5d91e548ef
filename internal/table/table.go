// Package table holds the in-memory tables passed between pipeline stages.
//
// A UniformTable is an ordered list of per-file Series, each carrying its own
// time/signal pair. Files keep their own row counts; derived Columns give a
// rectangular NaN-padded view (Dense) for export.
package table

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Series is one input file's (time, signal) column pair.
type Series struct {
	// Index is the 1-based position of the source file in the input list.
	Index int
	// Source is the path the series was read from.
	Source string
	// Time holds raw time values in TimeUnit.
	Time []float64
	// Signal holds raw signal readings (power in W, resistance in Ohms, ...).
	Signal []float64
	// TimeUnit is one of the units package constants.
	TimeUnit string
	// SignalName is the role suffix used in column names, e.g. "Power_W".
	SignalName string
}

// Len returns the number of rows in the series.
func (s Series) Len() int {
	if len(s.Time) > len(s.Signal) {
		return len(s.Time)
	}
	return len(s.Signal)
}

// TimeColumn returns the deterministic column name of the time role.
func (s Series) TimeColumn() string {
	return fmt.Sprintf("file_%d_Time_%s", s.Index, s.TimeUnit)
}

// SignalColumn returns the deterministic column name of the signal role.
func (s Series) SignalColumn() string {
	return fmt.Sprintf("file_%d_%s", s.Index, s.SignalName)
}

// UniformTable is the adapter output: one Series per input file, in file order.
type UniformTable struct {
	// Format is the tag of the adapter that produced the table.
	Format string
	Series []Series
}

// Files returns the number of input files represented in the table.
func (t *UniformTable) Files() int {
	return len(t.Series)
}

// ColumnNames returns the 2*N column names, time before signal for each file.
func (t *UniformTable) ColumnNames() []string {
	names := make([]string, 0, 2*len(t.Series))
	for _, s := range t.Series {
		names = append(names, s.TimeColumn(), s.SignalColumn())
	}
	return names
}

// Rows returns the length of the longest series.
func (t *UniformTable) Rows() int {
	rows := 0
	for _, s := range t.Series {
		if n := s.Len(); n > rows {
			rows = n
		}
	}
	return rows
}

// Column is a single named column of a derived table.
type Column struct {
	// Index is the 1-based file position the column was derived from.
	Index  int
	Name   string
	Unit   string
	Values []float64
}

// Columns is an ordered set of derived columns.
type Columns []Column

// Names returns the column names in order.
func (c Columns) Names() []string {
	names := make([]string, len(c))
	for i, col := range c {
		names[i] = col.Name
	}
	return names
}

// Rows returns the length of the longest column.
func (c Columns) Rows() int {
	rows := 0
	for _, col := range c {
		if len(col.Values) > rows {
			rows = len(col.Values)
		}
	}
	return rows
}

// At returns the value at row r of column i, or NaN past the end of a short column.
func (c Columns) At(r, i int) float64 {
	vals := c[i].Values
	if r >= len(vals) {
		return math.NaN()
	}
	return vals[r]
}

// Dense returns a Rows x len(c) matrix with NaN padding, or nil when empty.
func (c Columns) Dense() *mat.Dense {
	rows := c.Rows()
	if rows == 0 || len(c) == 0 {
		return nil
	}
	m := mat.NewDense(rows, len(c), nil)
	for j := range c {
		for r := 0; r < rows; r++ {
			m.Set(r, j, c.At(r, j))
		}
	}
	return m
}

// NormalizedTable holds one baseline-relative column per input file.
type NormalizedTable struct {
	Columns
}

// TimeTable holds one raw time column per input file.
type TimeTable struct {
	Columns
}
