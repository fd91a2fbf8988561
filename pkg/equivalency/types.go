// Package equivalency turns kg CO2e into relatable everyday equivalents
// (miles driven, smartphone charges, tree seedlings, home electricity days)
// using EPA conversion factors.
package equivalency

import "fmt"

// Type is a category of equivalency
type Type int

const (
	MilesDriven Type = iota
	SmartphonesCharged
	TreeSeedlings
	HomeDays
)

func (t Type) String() string {
	switch t {
	case MilesDriven:
		return "MilesDriven"
	case SmartphonesCharged:
		return "SmartphonesCharged"
	case TreeSeedlings:
		return "TreeSeedlings"
	case HomeDays:
		return "HomeDays"
	default:
		return fmt.Sprintf("Type(%d)", t)
	}
}

// MarshalText renders the type by name in JSON output
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses a name produced by MarshalText
func (t *Type) UnmarshalText(text []byte) error {
	for _, k := range []Type{MilesDriven, SmartphonesCharged, TreeSeedlings, HomeDays} {
		if k.String() == string(text) {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown equivalency type %q", text)
}

// Result is one calculated equivalency
type Result struct {
	Type           Type    `json:"type"`
	Value          float64 `json:"value"`
	FormattedValue string  `json:"formatted_value"`
	Label          string  `json:"label"`
}

// Output holds all equivalencies for one carbon value
type Output struct {
	InputKg     float64  `json:"input_kg"`
	Results     []Result `json:"results,omitempty"`
	DisplayText string   `json:"display_text,omitempty"`
	CompactText string   `json:"compact_text,omitempty"`
	IsEmpty     bool     `json:"is_empty"`
}

type constError string

func (e constError) Error() string { return string(e) }

var (
	// ErrNegativeValue indicates a negative carbon value
	ErrNegativeValue = constError("negative carbon value")

	// ErrCalculationOverflow indicates a value too large to convert
	ErrCalculationOverflow = constError("calculation overflow")
)
