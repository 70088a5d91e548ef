package pipeline

import (
	"fmt"
	"strings"

	"github.com/banshee-data/response.report/internal/adapter"
)

// Profile fixes the measured quantity: its default input layout and how
// the response axis is labelled.
type Profile struct {
	Name          string
	Quantity      string
	DefaultFormat string
	YAxisTitle    string
	DefaultTitle  string
}

var (
	// Optical measures transmitted power, normalized as ΔT / T₀.
	Optical = Profile{
		Name:          "optical",
		Quantity:      "transmittance",
		DefaultFormat: adapter.FormatPM100D,
		YAxisTitle:    "Transmittance, ΔT / T₀",
		DefaultTitle:  "Optical response",
	}
	// Resistance measures film resistance, normalized as ΔR / R₀.
	Resistance = Profile{
		Name:          "resistance",
		Quantity:      "resistance",
		DefaultFormat: adapter.FormatResistance,
		YAxisTitle:    "Resistance, ΔR / R₀",
		DefaultTitle:  "Resistive response",
	}
)

// Profiles lists the built-in profiles.
var Profiles = []Profile{Optical, Resistance}

// LookupProfile resolves a profile by name.
func LookupProfile(name string) (Profile, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, p := range Profiles {
		if p.Name == n {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("unknown signal %q (want optical or resistance)", name)
}
