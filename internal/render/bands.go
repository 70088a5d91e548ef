package render

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCycle is returned when the exposure cycle cannot produce bands.
var ErrInvalidCycle = errors.New("invalid exposure cycle")

// BandOffset shifts every exposure band start past the recovery period.
const BandOffset = 0.15

// CycleConfig describes the alternating recovery/exposure schedule, in minutes.
type CycleConfig struct {
	// TimeCycle is the nominal period. It is reported but does not affect band placement.
	TimeCycle float64
	ResTime   float64
	RecTime   float64
}

// Validate checks that the cycle has a positive period.
func (c CycleConfig) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"time_cycle", c.TimeCycle},
		{"res_time", c.ResTime},
		{"rec_time", c.RecTime},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number, got %v", ErrInvalidCycle, f.name, f.v)
		}
	}
	if c.ResTime+c.RecTime <= 0 {
		return fmt.Errorf("%w: res_time + rec_time must be positive", ErrInvalidCycle)
	}
	return nil
}

// Band is a shaded exposure interval on the time axis, in minutes.
type Band struct {
	Start float64
	End   float64
}

// Width returns End - Start.
func (b Band) Width() float64 { return b.End - b.Start }

// ExposureBands lays out bands starting at RecTime+BandOffset and repeating
// every ResTime+RecTime while the start stays strictly below maxMinutes.
// Each band is ResTime wide.
func ExposureBands(c CycleConfig, maxMinutes float64) ([]Band, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(maxMinutes) {
		return nil, nil
	}

	step := c.ResTime + c.RecTime
	first := c.RecTime + BandOffset
	var bands []Band
	for i := 0; ; i++ {
		start := first + float64(i)*step
		if start >= maxMinutes {
			break
		}
		bands = append(bands, Band{Start: start, End: start + c.ResTime})
	}
	return bands, nil
}
