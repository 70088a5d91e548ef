package adapter

import (
	"math"
	"testing"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    float64
		wantErr bool
	}{
		{"h:mm:ss", "0:00:01", 1, false},
		{"fractional seconds", "1:02:03.5", 3723.5, false},
		{"mm:ss", "02:30", 150, false},
		{"days prefix", "1 days 00:00:10", 86410, false},
		{"single day", "1 day 00:00:00", 86400, false},
		{"excel day fraction", "0.5", 43200, false},
		{"garbage", "soon", 0, true},
		{"too many parts", "1:2:3:4", 0, true},
		{"negative part", "0:-1:00", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseClock(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseClock(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseClock(%q) error: %v", tt.in, err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("parseClock(%q) = %f, want %f", tt.in, got, tt.want)
			}
		})
	}

	if v, err := parseClock("  "); err != nil || !math.IsNaN(v) {
		t.Errorf("blank clock should be NaN, got %v %v", v, err)
	}
}

func TestParseNumber(t *testing.T) {
	if v, err := parseNumber(" 1.5e-3 "); err != nil || v != 1.5e-3 {
		t.Errorf("parseNumber = %v, %v", v, err)
	}
	if v, err := parseNumber(""); err != nil || !math.IsNaN(v) {
		t.Errorf("blank should be NaN, got %v %v", v, err)
	}
	if _, err := parseNumber("W"); err == nil {
		t.Error("expected error for non-numeric cell")
	}
}

func TestCellAt(t *testing.T) {
	row := []string{"a", "b"}
	if cellAt(row, 1) != "b" || cellAt(row, 5) != "" || cellAt(row, -1) != "" {
		t.Error("cellAt bounds handling")
	}
}
