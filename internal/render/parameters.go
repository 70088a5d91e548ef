package render

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidParameters is returned for a malformed parameter list.
var ErrInvalidParameters = errors.New("invalid experiment parameters")

// Parameters are the per-file experiment values (one per input file) and
// their shared unit, e.g. gas concentrations in ppm.
type Parameters struct {
	Unit   string
	Values []float64

	// text keeps the values as they were written so legend labels
	// read "10 ppm" rather than a reformatted float.
	text []string
}

// NewParameters builds Parameters from numeric values.
func NewParameters(unit string, values ...float64) Parameters {
	return Parameters{Unit: unit, Values: append([]float64(nil), values...)}
}

// ParseParameters reads a list whose first element is the unit and the
// rest are numeric values, e.g. ["ppm", "10", "20", "30"].
func ParseParameters(items []string) (Parameters, error) {
	if len(items) == 0 {
		return Parameters{}, fmt.Errorf("%w: expected a unit followed by values", ErrInvalidParameters)
	}
	p := Parameters{Unit: strings.TrimSpace(items[0])}
	if p.Unit == "" {
		return Parameters{}, fmt.Errorf("%w: unit must not be empty", ErrInvalidParameters)
	}
	for i, raw := range items[1:] {
		s := strings.TrimSpace(raw)
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Parameters{}, fmt.Errorf("%w: value %d %q is not a number", ErrInvalidParameters, i+1, raw)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Parameters{}, fmt.Errorf("%w: value %d must be finite", ErrInvalidParameters, i+1)
		}
		p.Values = append(p.Values, v)
		p.text = append(p.text, s)
	}
	return p, nil
}

// ParseParameterList splits a comma separated "unit,v1,v2,..." string.
func ParseParameterList(s string) (Parameters, error) {
	if strings.TrimSpace(s) == "" {
		return Parameters{}, fmt.Errorf("%w: expected a unit followed by values", ErrInvalidParameters)
	}
	return ParseParameters(strings.Split(s, ","))
}

// Len returns the number of values, excluding the unit.
func (p Parameters) Len() int { return len(p.Values) }

// Label returns the legend label for value i, "<value> <unit>".
func (p Parameters) Label(i int) string {
	var v string
	if i < len(p.text) {
		v = p.text[i]
	} else {
		v = strconv.FormatFloat(p.Values[i], 'f', -1, 64)
	}
	return v + " " + p.Unit
}

// Labels returns every legend label in order.
func (p Parameters) Labels() []string {
	out := make([]string, len(p.Values))
	for i := range p.Values {
		out[i] = p.Label(i)
	}
	return out
}

// Strings returns the list form, unit first.
func (p Parameters) Strings() []string {
	out := []string{p.Unit}
	for i := range p.Values {
		out = append(out, strings.TrimSuffix(p.Label(i), " "+p.Unit))
	}
	return out
}
