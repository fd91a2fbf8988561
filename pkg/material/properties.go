package material

import "maps"

// Vocabulary is the closed set of material tags a classifier may report
var Vocabulary = []string{
	"plastic", "plastic_pet", "plastic_hdpe", "plastic_pvc", "plastic_ldpe",
	"plastic_pp", "plastic_ps", "aluminum", "steel", "glass",
	"cardboard", "paper", "wood", "fabric", "ceramic",
}

// carbon_intensity is kg CO2e per kg of material, density is g/cm3,
// melting_point is degrees Celsius.
var properties = map[string]map[string]any{
	"plastic": {
		"recyclable":       true,
		"carbon_intensity": 3.4,
		"density":          1.2,
	},
	"plastic_pet": {
		"recyclable":       true,
		"carbon_intensity": 3.4,
		"density":          1.38,
		"melting_point":    260,
	},
	"plastic_hdpe": {
		"recyclable":       true,
		"carbon_intensity": 2.1,
		"density":          0.95,
		"melting_point":    130,
	},
	"plastic_pvc": {
		"recyclable":       false,
		"carbon_intensity": 2.4,
		"density":          1.4,
		"melting_point":    160,
	},
	"plastic_ldpe": {
		"recyclable":       true,
		"carbon_intensity": 2.1,
		"density":          0.92,
		"melting_point":    110,
	},
	"plastic_pp": {
		"recyclable":       true,
		"carbon_intensity": 1.9,
		"density":          0.9,
		"melting_point":    160,
	},
	"plastic_ps": {
		"recyclable":       false,
		"carbon_intensity": 3.3,
		"density":          1.05,
		"melting_point":    240,
	},
	"aluminum": {
		"recyclable":       true,
		"carbon_intensity": 11.5,
		"density":          2.70,
		"melting_point":    660,
	},
	"steel": {
		"recyclable":       true,
		"carbon_intensity": 2.3,
		"density":          7.85,
		"melting_point":    1370,
	},
	"glass": {
		"recyclable":       true,
		"carbon_intensity": 0.9,
		"density":          2.5,
		"melting_point":    1400,
	},
	"cardboard": {
		"recyclable":       true,
		"carbon_intensity": 1.1,
		"density":          0.7,
		"biodegradable":    true,
	},
	"paper": {
		"recyclable":       true,
		"carbon_intensity": 1.3,
		"density":          0.8,
		"biodegradable":    true,
	},
	"wood": {
		"recyclable":       true,
		"carbon_intensity": 0.5,
		"density":          0.6,
		"biodegradable":    true,
	},
	"fabric": {
		"recyclable":       false,
		"carbon_intensity": 5.9,
		"density":          1.5,
		"biodegradable":    true,
	},
	"ceramic": {
		"recyclable":       false,
		"carbon_intensity": 1.2,
		"density":          2.4,
		"melting_point":    1600,
	},
}

// Properties returns a copy of the static physical properties of a material.
// Unknown tags get an empty map.
func Properties(materialType string) map[string]any {
	props, ok := properties[materialType]
	if !ok {
		return map[string]any{}
	}
	return maps.Clone(props)
}

// IsPlastic reports whether a tag belongs to the plastics boosted during fusion
func IsPlastic(materialType string) bool {
	switch materialType {
	case "plastic", "plastic_pet", "plastic_hdpe":
		return true
	}
	return false
}

// IsMetal reports whether a tag belongs to the metals boosted during fusion
func IsMetal(materialType string) bool {
	return materialType == "aluminum" || materialType == "steel"
}
