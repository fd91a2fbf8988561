package equivalency

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/menta2k/carbon-analyzer/pkg/types"
)

// EPA greenhouse gas equivalency factors, kg CO2e per unit of activity.
// equivalency = kg_CO2e / factor
const (
	MilesDrivenFactor       = 0.192
	SmartphoneChargeFactor  = 0.00822
	TreeSeedlingFactor      = 60.0 // absorbed per seedling grown for 10 years
	HomeDayFactor           = 18.3 // one day of average US home electricity
	MinEquivalencyKg        = 1.0
	largeNumberThreshold    = 1_000_000
	billionNumberThreshold  = 1_000_000_000
	fractionalDisplayCutoff = 10
)

var conversions = []struct {
	kind   Type
	factor float64
	label  string
}{
	{MilesDriven, MilesDrivenFactor, "miles driven"},
	{SmartphonesCharged, SmartphoneChargeFactor, "smartphones charged"},
	{TreeSeedlings, TreeSeedlingFactor, "tree seedlings grown for 10 years"},
	{HomeDays, HomeDayFactor, "days of home electricity"},
}

// Calculate converts kg CO2e into equivalencies. Values below
// MinEquivalencyKg return an empty output without error.
func Calculate(kg float64) (Output, error) {
	if math.IsNaN(kg) || math.IsInf(kg, 0) {
		return Output{IsEmpty: true}, ErrCalculationOverflow
	}
	if kg < 0 {
		return Output{IsEmpty: true}, ErrNegativeValue
	}
	if kg < MinEquivalencyKg {
		return Output{InputKg: kg, IsEmpty: true}, nil
	}

	results := make([]Result, 0, len(conversions))
	for _, c := range conversions {
		v := kg / c.factor
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return Output{IsEmpty: true}, ErrCalculationOverflow
		}
		results = append(results, Result{
			Type:           c.kind,
			Value:          v,
			FormattedValue: formatValue(v),
			Label:          c.label,
		})
	}

	miles, phones := results[0].FormattedValue, results[1].FormattedValue
	return Output{
		InputKg:     kg,
		Results:     results,
		DisplayText: fmt.Sprintf("Equivalent to driving ~%s miles or charging ~%s smartphones", miles, phones),
		CompactText: fmt.Sprintf("(≈ %s mi, %s phones)", miles, phones),
	}, nil
}

// FromEstimate computes equivalencies for the total of an estimate.
// Failures are logged and yield an empty output.
func FromEstimate(estimate types.CarbonEstimate) Output {
	output, err := Calculate(estimate.TotalCO2Kg)
	if err != nil {
		log.Warn().Err(err).Float64("total_co2_kg", estimate.TotalCO2Kg).Msg("equivalency calculation failed")
		return Output{IsEmpty: true}
	}
	return output
}

// Get returns the result of the given type, if present
func (o Output) Get(kind Type) (Result, bool) {
	for _, r := range o.Results {
		if r.Type == kind {
			return r, true
		}
	}
	return Result{}, false
}

func formatValue(v float64) string {
	switch {
	case v >= largeNumberThreshold:
		return FormatLarge(v)
	case v < fractionalDisplayCutoff:
		return FormatFloat(v, 1)
	default:
		return FormatNumber(int64(math.Round(v)))
	}
}
