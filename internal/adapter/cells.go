package adapter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const secondsPerDay = 86400

// cellAt returns row[col], or "" when the row is shorter than col.
func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// parseNumber converts a cell to float64. Blank cells are NaN.
func parseNumber(cell string) (float64, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", cell)
	}
	return v, nil
}

// parseClock converts a duration cell to seconds. Accepted forms are
// "[D days ]H:MM:SS[.fff]", "MM:SS[.fff]" and a bare number, which is read as
// a fraction of a day (the raw value of a time-formatted spreadsheet cell).
// Blank cells are NaN.
func parseClock(cell string) (float64, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return math.NaN(), nil
	}
	if !strings.Contains(s, ":") {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("not a duration: %q", cell)
		}
		return v * secondsPerDay, nil
	}

	var days float64
	if i := strings.Index(s, "day"); i >= 0 {
		d, err := strconv.ParseFloat(strings.TrimSpace(s[:i]), 64)
		if err != nil {
			return 0, fmt.Errorf("not a duration: %q", cell)
		}
		days = d
		s = strings.TrimSpace(strings.TrimLeft(s[i+len("day"):], "s"))
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("not a duration: %q", cell)
	}
	total := 0.0
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("not a duration: %q", cell)
		}
		total = total*60 + v
	}
	return days*secondsPerDay + total, nil
}

// cellError wraps a cell parse failure with its 0-based file position.
func cellError(path string, row, col int, err error) error {
	return fmt.Errorf("%s: row %d column %d: %w", path, row, col, err)
}
