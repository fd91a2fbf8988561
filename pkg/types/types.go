package types

import "strings"

// UnknownMaterial is the sentinel used when a product's materials are not known.
// A materials list is never empty; absence is represented by this tag.
const UnknownMaterial = "unknown"

// DefaultCategory is used when a product carries no category.
const DefaultCategory = "general"

// UnknownOrigin is used when a product carries no country of origin.
const UnknownOrigin = "Unknown"

// DefaultWeightKg is the weight assumed by product sources when none is known (100 g).
const DefaultWeightKg = 0.1

// SourceGenerated marks products synthesised from barcode patterns.
const SourceGenerated = "generated"

// ProductInfo describes a product as seen by the carbon engine
type ProductInfo struct {
	Name          string             `json:"name,omitempty"`
	Brand         string             `json:"brand,omitempty"`
	Barcode       string             `json:"barcode,omitempty"`
	Category      string             `json:"category"`
	Materials     []string           `json:"materials"`
	WeightKg      float64            `json:"weight_kg"`
	CountryOrigin string             `json:"country_origin"`
	Verified      bool               `json:"verified"`
	CustomFactors map[string]float64 `json:"custom_factors,omitempty"`
	Source        string             `json:"source,omitempty"`
}

// Normalized returns a copy with category, materials and origin defaulted.
// The returned Materials slice is never empty.
func (p ProductInfo) Normalized() ProductInfo {
	out := p
	if strings.TrimSpace(out.Category) == "" {
		out.Category = DefaultCategory
	}
	if len(out.Materials) == 0 {
		out.Materials = []string{UnknownMaterial}
	} else {
		out.Materials = append([]string(nil), out.Materials...)
	}
	if strings.TrimSpace(out.CountryOrigin) == "" {
		out.CountryOrigin = UnknownOrigin
	}
	return out
}

// HasOnlyUnknownMaterials reports whether the materials list carries no real information
func (p ProductInfo) HasOnlyUnknownMaterials() bool {
	for _, m := range p.Materials {
		if m != UnknownMaterial {
			return false
		}
	}
	return true
}

// GramsToKg converts a catalog weight in grams, defaulting non-positive values.
func GramsToKg(grams float64) float64 {
	if grams <= 0 {
		return DefaultWeightKg
	}
	return grams / 1000
}

// BoundingBox is a pixel rectangle (x, y, width, height)
type BoundingBox struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// MaterialDetection is one ranked material guess for an image
type MaterialDetection struct {
	MaterialType string         `json:"material_type"`
	Confidence   float64        `json:"confidence"`
	BoundingBox  BoundingBox    `json:"bounding_box"`
	Properties   map[string]any `json:"properties"`
	// Fallback marks the fixed guess returned when classification failed
	Fallback bool `json:"fallback,omitempty"`
}

// ImpactLevel is a coarse classification of total CO2e
type ImpactLevel string

const (
	ImpactLow      ImpactLevel = "Low"
	ImpactMedium   ImpactLevel = "Medium"
	ImpactHigh     ImpactLevel = "High"
	ImpactVeryHigh ImpactLevel = "Very High"
)

// CarbonEstimate is the output of the carbon engine. TotalCO2Kg is not
// guaranteed to equal the sum of the phases: production and transport are
// reported with a single multiplier each while the total carries both.
type CarbonEstimate struct {
	TotalCO2Kg      float64        `json:"total_co2_kg"`
	ProductionCO2Kg float64        `json:"production_co2_kg"`
	TransportCO2Kg  float64        `json:"transport_co2_kg"`
	PackagingCO2Kg  float64        `json:"packaging_co2_kg"`
	UsageCO2Kg      float64        `json:"usage_co2_kg"`
	ConfidenceScore float64        `json:"confidence_score"`
	ImpactLevel     ImpactLevel    `json:"impact_level"`
	Methodology     string         `json:"methodology"`
	FactorsApplied  map[string]any `json:"factors_applied"`
}

// MaterialScore is one material confidence reported by a vision model
type MaterialScore struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// MaterialScores contains the parsed material classification returned by a vision model
type MaterialScores struct {
	Materials   []MaterialScore `json:"materials"`
	Description string          `json:"description,omitempty"`
	// Fallback is set when the model response could not be used
	Fallback bool `json:"-"`
}
