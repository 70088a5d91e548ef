package units

import (
	"math"
	"testing"
)

func TestToMinutes(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		unit     string
		expected float64
	}{
		{"60 s is one minute", 60, Seconds, 1},
		{"90 s", 90, Seconds, 1.5},
		{"60000 ms is one minute", 60000, Milliseconds, 1},
		{"samples plotted as seconds", 120, Samples, 2},
		{"unknown unit defaults to seconds", 30, "furlong", 0.5},
		{"zero", 0, Seconds, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToMinutes(tt.value, tt.unit)
			if math.Abs(result-tt.expected) > 1e-12 {
				t.Errorf("ToMinutes(%f, %s) = %f, want %f", tt.value, tt.unit, result, tt.expected)
			}
		})
	}
}

func TestToMinutesPropagatesNaN(t *testing.T) {
	if !math.IsNaN(ToMinutes(math.NaN(), Seconds)) {
		t.Error("expected NaN to propagate")
	}
}

func TestSliceToMinutes(t *testing.T) {
	in := []float64{0, 60, 120}
	out := SliceToMinutes(in, Seconds)
	want := []float64{0, 1, 2}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %f, want %f", i, out[i], want[i])
		}
	}
	if in[1] != 60 {
		t.Error("input slice was modified")
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"seconds", Seconds, true},
		{"milliseconds", Milliseconds, true},
		{"samples", Samples, true},
		{"invalid unit", "min", false},
		{"empty string", "", false},
		{"case sensitive", "S", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.unit); got != tt.expected {
				t.Errorf("IsValid(%s) = %v, want %v", tt.unit, got, tt.expected)
			}
		})
	}
}

func TestGetValidUnitsString(t *testing.T) {
	if got := GetValidUnitsString(); got != "s, ms, sample" {
		t.Errorf("GetValidUnitsString() = %q", got)
	}
}
