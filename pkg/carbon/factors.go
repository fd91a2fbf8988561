package carbon

import (
	"slices"
	"time"
)

const (
	// defaultMaterialIntensity applies to tags missing from the intensity table
	defaultMaterialIntensity = 5.0

	// defaultCategoryBaseline applies to categories missing from the baseline table
	defaultCategoryBaseline = 3.0

	// defaultTransportMultiplier applies to unrecognized countries of origin
	defaultTransportMultiplier = 1.5

	// defaultPackagingIntensity applies to packaging materials without an intensity
	defaultPackagingIntensity = 3.0
)

// packagingMaterials are the tags that contribute to the packaging phase
var packagingMaterials = []string{"cardboard", "plastic", "aluminum", "glass"}

// localKeywords mark a purchase location as local sourcing
var localKeywords = []string{"local", "same", "nearby"}

// Factors holds the read-only lookup tables used by the engine.
// The tables are built once and never exposed for mutation.
type Factors struct {
	materialIntensity map[string]float64 // kg CO2e per kg of material
	categoryBaseline  map[string]float64 // kg CO2e per product
	transport         map[string]float64 // multiplier by country of origin
	seasonal          map[time.Month]float64
	purchaseContext   map[string]float64
}

var defaultFactors = &Factors{
	materialIntensity: map[string]float64{
		"aluminum":           11.5,
		"plastic":            3.4,
		"plastic_pet":        3.4,
		"plastic_hdpe":       2.1,
		"glass":              0.9,
		"steel":              2.3,
		"cardboard":          1.1,
		"paper":              1.3,
		"cotton":             5.9,
		"polyester":          9.5,
		"recycled_polyester": 4.2,
		"rare_earth_metals":  25.0,
		"lithium":            15.0,
		"organic_matter":     0.3,
		"unknown":            5.0,
	},
	categoryBaseline: map[string]float64{
		"beverages":   0.8,
		"food":        2.0,
		"electronics": 15.0,
		"clothing":    8.0,
		"household":   3.5,
		"general":     3.0,
	},
	transport: map[string]float64{
		"USA":         1.0,
		"Canada":      1.1,
		"Mexico":      1.2,
		"China":       1.8,
		"South Korea": 1.7,
		"Japan":       1.6,
		"Germany":     1.3,
		"France":      1.3,
		"UK":          1.2,
		"Vietnam":     1.9,
		"Bangladesh":  2.0,
		"India":       1.8,
		"Ecuador":     1.5,
		"Brazil":      1.6,
		"Unknown":     1.5,
	},
	// Winter heating, holiday shipping and summer cooling peaks
	seasonal: map[time.Month]float64{
		time.January:   1.2,
		time.February:  1.15,
		time.March:     1.05,
		time.April:     1.0,
		time.May:       1.0,
		time.June:      1.1,
		time.July:      1.15,
		time.August:    1.15,
		time.September: 1.1,
		time.October:   1.05,
		time.November:  1.1,
		time.December:  1.2,
	},
	purchaseContext: map[string]float64{
		"express_shipping":   1.5,
		"overnight_shipping": 2.0,
		"same_day_delivery":  3.0,
		"retail_store":       0.9,
		"online":             1.1,
		"bulk_purchase":      0.8,
		"subscription":       0.85,
	},
}

// DefaultFactors returns the process-wide factor tables
func DefaultFactors() *Factors {
	return defaultFactors
}

// MaterialIntensity returns the kg CO2e per kg for a material tag and whether
// the tag is known. Unknown tags get the intensity of the unknown sentinel.
func (f *Factors) MaterialIntensity(tag string) (float64, bool) {
	v, ok := f.materialIntensity[tag]
	if !ok {
		return defaultMaterialIntensity, false
	}
	return v, true
}

// CategoryBaseline returns the per-product baseline for a category
func (f *Factors) CategoryBaseline(category string) float64 {
	if v, ok := f.categoryBaseline[category]; ok {
		return v
	}
	return defaultCategoryBaseline
}

// TransportMultiplier returns the distance multiplier for a country of origin
func (f *Factors) TransportMultiplier(origin string) float64 {
	if v, ok := f.transport[origin]; ok {
		return v
	}
	return defaultTransportMultiplier
}

// SeasonalMultiplier returns the multiplier for a calendar month
func (f *Factors) SeasonalMultiplier(month time.Month) float64 {
	if v, ok := f.seasonal[month]; ok {
		return v
	}
	return 1.0
}

// ContextMultiplier returns the multiplier for a purchase context.
// Absent or unrecognized contexts yield 1.0.
func (f *Factors) ContextMultiplier(purchaseContext string) float64 {
	if v, ok := f.purchaseContext[purchaseContext]; ok {
		return v
	}
	return 1.0
}

// PackagingIntensity returns the intensity used for the packaging phase and
// whether the tag counts as packaging at all.
func (f *Factors) PackagingIntensity(tag string) (float64, bool) {
	if !slices.Contains(packagingMaterials, tag) {
		return 0, false
	}
	if v, ok := f.materialIntensity[tag]; ok {
		return v, true
	}
	return defaultPackagingIntensity, true
}

// Categories returns the known category names in sorted order
func (f *Factors) Categories() []string {
	names := make([]string, 0, len(f.categoryBaseline))
	for name := range f.categoryBaseline {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// PurchaseContexts returns the known purchase contexts in sorted order
func (f *Factors) PurchaseContexts() []string {
	names := make([]string, 0, len(f.purchaseContext))
	for name := range f.purchaseContext {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
