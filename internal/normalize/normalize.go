// Package normalize derives baseline-relative response signals from a UniformTable.
package normalize

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/response.report/internal/table"
)

// ErrZeroBaseline is returned when a series' first sample is zero or NaN, which
// leaves the fractional change undefined.
var ErrZeroBaseline = errors.New("baseline sample is zero")

// Relative returns (v[t] - v[0]) / v[0] for every t. It does not special-case
// later NaN samples, which propagate. Empty input yields an empty result.
func Relative(signal []float64) ([]float64, error) {
	out := make([]float64, len(signal))
	if len(signal) == 0 {
		return out, nil
	}
	base := signal[0]
	if base == 0 {
		return nil, ErrZeroBaseline
	}
	if math.IsNaN(base) {
		return nil, fmt.Errorf("%w: baseline is NaN", ErrZeroBaseline)
	}
	for i, v := range signal {
		out[i] = (v - base) / base
	}
	out[0] = 0
	return out, nil
}

// Normalize produces one normalized column per series, in file order.
// Row 0 of every non-empty column is exactly 0.
func Normalize(t *table.UniformTable) (*table.NormalizedTable, error) {
	out := &table.NormalizedTable{Columns: make(table.Columns, 0, len(t.Series))}
	for _, s := range t.Series {
		vals, err := Relative(s.Signal)
		if err != nil {
			return nil, fmt.Errorf("file %d (%s): %w", s.Index, s.Source, err)
		}
		out.Columns = append(out.Columns, table.Column{
			Index:  s.Index,
			Name:   fmt.Sprintf("file_%d_%s_Norm", s.Index, s.SignalName),
			Values: vals,
		})
	}
	return out, nil
}

// Time copies each series' time column unchanged into its own output column.
func Time(t *table.UniformTable) *table.TimeTable {
	out := &table.TimeTable{Columns: make(table.Columns, 0, len(t.Series))}
	for _, s := range t.Series {
		out.Columns = append(out.Columns, table.Column{
			Index:  s.Index,
			Name:   fmt.Sprintf("file_%d_Time", s.Index),
			Unit:   s.TimeUnit,
			Values: append([]float64(nil), s.Time...),
		})
	}
	return out
}
