// Package units provides shared constants and conversions for instrument time units
package units

import "strings"

// Unit constants
const (
	Seconds      = "s"
	Milliseconds = "ms"
	// Samples marks a time axis synthesised from row indices. It is plotted
	// as if each sample were one second apart.
	Samples = "sample"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{Seconds, Milliseconds, Samples}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return strings.Join(ValidUnits, ", ")
}

// ToMinutes converts a raw time value in the given unit to minutes.
// Milliseconds divide by 60000 rather than 60, so legacy PM100D exports plot
// on the same minute axis as the other layouts. Unknown units are treated as
// seconds; callers check IsValid first.
func ToMinutes(v float64, unit string) float64 {
	switch unit {
	case Milliseconds:
		return v / 60000
	case Seconds, Samples:
		return v / 60
	default:
		return v / 60
	}
}

// SliceToMinutes converts every element of raw into minutes, returning a new slice.
func SliceToMinutes(raw []float64, unit string) []float64 {
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = ToMinutes(v, unit)
	}
	return out
}
