// Package alternatives suggests lower-carbon substitutes for a scanned product
package alternatives

import (
	"math"

	"github.com/menta2k/carbon-analyzer/pkg/types"
)

// Alternative is a lower-carbon option with its projected footprint
type Alternative struct {
	Name string `json:"name"`
	// CO2Kg is the projected total after the reduction
	CO2Kg float64 `json:"co2_kg"`
	// Reduction is the fraction of the current total saved, in (0,1)
	Reduction float64 `json:"co2_reduction"`
	Reason    string  `json:"reason"`
	SavingsKg float64 `json:"savings_kg"`
}

type suggestion struct {
	name      string
	reduction float64
	reason    string
}

const defaultCategory = "general"

var suggestions = map[string][]suggestion{
	"beverages": {
		{"Local Brand Alternative", 0.3, "Shorter transport distance"},
		{"Glass Bottle Version", 0.2, "Recyclable packaging"},
	},
	"electronics": {
		{"Refurbished Option", 0.7, "No new manufacturing"},
		{"Energy Efficient Model", 0.2, "Lower lifetime energy use"},
	},
	"food": {
		{"Seasonal Local Produce", 0.4, "Reduced transport and storage"},
		{"Bulk Package", 0.15, "Less packaging per unit"},
	},
	"clothing": {
		{"Second-Hand Item", 0.8, "No new production"},
		{"Recycled Fiber Version", 0.35, "Lower material intensity"},
	},
	defaultCategory: {
		{"Local Alternative", 0.25, "Reduced shipping"},
	},
}

// Suggest returns alternatives for the product's category relative to the
// given total. Unknown categories get the general suggestions.
func Suggest(category string, currentCO2Kg float64) []Alternative {
	base, ok := suggestions[category]
	if !ok {
		base = suggestions[defaultCategory]
	}
	if currentCO2Kg < 0 || math.IsNaN(currentCO2Kg) || math.IsInf(currentCO2Kg, 0) {
		currentCO2Kg = 0
	}

	alternatives := make([]Alternative, 0, len(base))
	for _, s := range base {
		projected := currentCO2Kg * (1 - s.reduction)
		alternatives = append(alternatives, Alternative{
			Name:      s.name,
			CO2Kg:     round2(projected),
			Reduction: s.reduction,
			Reason:    s.reason,
			SavingsKg: round2(currentCO2Kg - projected),
		})
	}
	return alternatives
}

// ForEstimate suggests alternatives for a product and its estimate
func ForEstimate(product types.ProductInfo, estimate types.CarbonEstimate) []Alternative {
	return Suggest(product.Normalized().Category, estimate.TotalCO2Kg)
}

// HasSuggestions reports whether a category has dedicated suggestions
func HasSuggestions(category string) bool {
	_, ok := suggestions[category]
	return ok
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
