package carbon

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/carbon-analyzer/pkg/types"
)

func engineAt(month time.Month) *Engine {
	return NewWithConfig(Config{
		Now:    func() time.Time { return time.Date(2025, month, 15, 12, 0, 0, 0, time.UTC) },
		Logger: zerolog.Nop(),
	})
}

func phone() types.ProductInfo {
	return types.ProductInfo{
		Category:      "electronics",
		Materials:     []string{"aluminum", "glass"},
		WeightKg:      types.GramsToKg(200),
		CountryOrigin: "China",
		Verified:      true,
	}
}

func cardboardBox() types.ProductInfo {
	return types.ProductInfo{
		Name:          "Product 12345",
		Category:      "general",
		Materials:     []string{"cardboard"},
		WeightKg:      0.5,
		CountryOrigin: "USA",
	}
}

func TestEstimateElectronics(t *testing.T) {
	est := engineAt(time.April).Estimate(phone(), "", "retail_store")

	assert.Equal(t, MethodologyMultiFactor, est.Methodology)
	assert.InDelta(t, 0.4, est.UsageCO2Kg, 1e-9)
	assert.Greater(t, est.ConfidenceScore, 0.5)
	assert.InDelta(t, MaxConfidence, est.ConfidenceScore, 1e-9)

	// production max(15.0, 1.24) * 0.9 context
	assert.InDelta(t, 13.5, est.ProductionCO2Kg, 1e-9)
	// 15.0 * 0.25 * 1.8 China, April seasonal 1.0
	assert.InDelta(t, 6.75, est.TransportCO2Kg, 1e-9)
	// 10% of 0.2 kg split over two materials: 11.5*0.01 + 0.9*0.01
	assert.InDelta(t, 0.124, est.PackagingCO2Kg, 1e-9)
	// (15 + 6.75 + 0.124 + 0.4) * 0.9
	assert.InDelta(t, 20.047, est.TotalCO2Kg, 1e-9)
	assert.Equal(t, types.ImpactVeryHigh, est.ImpactLevel)

	assert.Equal(t, 0.9, est.FactorsApplied["context_multiplier"])
	assert.Equal(t, 1.0, est.FactorsApplied["seasonal_multiplier"])
	assert.Equal(t, 1.8, est.FactorsApplied["transport_multiplier"])
	assert.Equal(t, false, est.FactorsApplied["local_sourcing"])
	assert.Equal(t, true, est.FactorsApplied["verified_data"])
}

func TestEstimateContextRatio(t *testing.T) {
	e := engineAt(time.July)

	store := e.Estimate(phone(), "", "retail_store")
	sameDay := e.Estimate(phone(), "", "same_day_delivery")

	require.NotEqual(t, store.TotalCO2Kg, sameDay.TotalCO2Kg)
	assert.InDelta(t, 3.0/0.9, sameDay.TotalCO2Kg/store.TotalCO2Kg, 1e-3)
	assert.InDelta(t, 3.0/0.9, sameDay.ProductionCO2Kg/store.ProductionCO2Kg, 1e-9)

	// Transport is reported with the seasonal multiplier only
	assert.Equal(t, store.TransportCO2Kg, sameDay.TransportCO2Kg)
}

func TestEstimateAbsentContext(t *testing.T) {
	e := engineAt(time.April)

	absent := e.Estimate(phone(), "", "")
	unknown := e.Estimate(phone(), "", "carrier_pigeon")

	assert.Equal(t, absent, unknown)
	assert.Equal(t, 1.0, absent.FactorsApplied["context_multiplier"])
}

func TestEstimateFaultFallsBack(t *testing.T) {
	p := types.ProductInfo{
		Category:  "general",
		Materials: []string{"unobtainium"},
		WeightKg:  0,
	}

	est := engineAt(time.April).Estimate(p, "", "")

	assert.Equal(t, MethodologyFallback, est.Methodology)
	assert.Equal(t, FallbackConfidence, est.ConfidenceScore)
	assert.InDelta(t, 3.0, est.TotalCO2Kg, 1e-9)
	assert.InDelta(t, 1.8, est.ProductionCO2Kg, 1e-9)
	assert.InDelta(t, 0.9, est.TransportCO2Kg, 1e-9)
	assert.InDelta(t, 0.3, est.PackagingCO2Kg, 1e-9)
	assert.Zero(t, est.UsageCO2Kg)
	assert.Equal(t, types.ImpactMedium, est.ImpactLevel)
	assert.Equal(t, map[string]any{"fallback": true}, est.FactorsApplied)
}

func TestEstimateInvalidInputsFallBack(t *testing.T) {
	tests := []struct {
		name    string
		product types.ProductInfo
	}{
		{"negative weight", types.ProductInfo{Category: "food", WeightKg: -1}},
		{"NaN weight", types.ProductInfo{Category: "food", WeightKg: math.NaN()}},
		{"infinite weight", types.ProductInfo{Category: "food", WeightKg: math.Inf(1)}},
		{"NaN custom factor", types.ProductInfo{Category: "food", WeightKg: 1, CustomFactors: map[string]float64{"production": math.NaN()}}},
		{"negative custom factor", types.ProductInfo{Category: "food", WeightKg: 1, CustomFactors: map[string]float64{"production": -2}}},
		{"overflowing weight", types.ProductInfo{Category: "food", Materials: []string{"aluminum"}, WeightKg: math.MaxFloat64}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := engineAt(time.April).Estimate(tt.product, "", "")
			assert.Equal(t, MethodologyFallback, est.Methodology)
			assert.Equal(t, FallbackConfidence, est.ConfidenceScore)
			assert.InDelta(t, 2.0, est.TotalCO2Kg, 1e-9)
		})
	}
}

func TestEstimateSeasonal(t *testing.T) {
	april := engineAt(time.April).Estimate(cardboardBox(), "", "")
	january := engineAt(time.January).Estimate(cardboardBox(), "", "")

	// production 3.0, transport 0.75, packaging 0.055
	assert.InDelta(t, 3.805, april.TotalCO2Kg, 1e-9)
	assert.InDelta(t, 4.566, january.TotalCO2Kg, 1e-9)
	assert.InDelta(t, 0.75, april.TransportCO2Kg, 1e-9)
	assert.InDelta(t, 0.9, january.TransportCO2Kg, 1e-9)
	assert.Equal(t, april.ProductionCO2Kg, january.ProductionCO2Kg)
	assert.InDelta(t, 0.055, april.PackagingCO2Kg, 1e-9)
	assert.Equal(t, types.ImpactMedium, april.ImpactLevel)

	// Placeholder name, unverified, single material
	assert.InDelta(t, 0.5, april.ConfidenceScore, 1e-9)
}

func TestEstimateLocalSourcing(t *testing.T) {
	e := engineAt(time.April)

	for _, location := range []string{"Local farmers market", "same city", "NEARBY store"} {
		est := e.Estimate(cardboardBox(), location, "")
		assert.InDelta(t, 0.225, est.TransportCO2Kg, 1e-9, location)
		assert.InDelta(t, 3.28, est.TotalCO2Kg, 1e-9, location)
		assert.Equal(t, true, est.FactorsApplied["local_sourcing"], location)
	}

	far := e.Estimate(cardboardBox(), "Berlin", "")
	assert.InDelta(t, 0.75, far.TransportCO2Kg, 1e-9)
}

func TestEstimateCustomProductionFactor(t *testing.T) {
	p := cardboardBox()
	p.CustomFactors = map[string]float64{"production": 6.0}

	est := engineAt(time.April).Estimate(p, "", "")

	production := (3.0 + 0.55 + 6.0) / 3
	assert.InDelta(t, round3(production), est.ProductionCO2Kg, 1e-9)
	assert.InDelta(t, round3(production*0.25), est.TransportCO2Kg, 1e-9)
	assert.InDelta(t, 0.6, est.ConfidenceScore, 1e-9)
	assert.Equal(t, true, est.FactorsApplied["custom_factors"])
}

func TestEstimateUnknownMaterialUsesDefaultIntensity(t *testing.T) {
	p := types.ProductInfo{
		Name:      "Mystery gadget",
		Category:  "general",
		Materials: []string{"mystery"},
		WeightKg:  1,
	}

	est := engineAt(time.April).Estimate(p, "", "")

	assert.Equal(t, MethodologyMultiFactor, est.Methodology)
	// production 5.0, transport 5.0*0.25*1.5, packaging floor
	assert.InDelta(t, 5.0, est.ProductionCO2Kg, 1e-9)
	assert.InDelta(t, 1.875, est.TransportCO2Kg, 1e-9)
	assert.InDelta(t, 0.05, est.PackagingCO2Kg, 1e-9)
	assert.InDelta(t, 6.925, est.TotalCO2Kg, 1e-9)
	assert.Equal(t, types.ImpactHigh, est.ImpactLevel)
}

func TestEstimateUnknownSentinelDefaults(t *testing.T) {
	p := types.ProductInfo{WeightKg: 0.1}

	est := engineAt(time.April).Estimate(p, "", "")

	assert.Equal(t, MethodologyMultiFactor, est.Methodology)
	assert.InDelta(t, 3.0, est.ProductionCO2Kg, 1e-9)
	assert.Equal(t, 1.5, est.FactorsApplied["transport_multiplier"])
	assert.GreaterOrEqual(t, est.TotalCO2Kg, 1.0)
	assert.NotEqual(t, types.ImpactLow, est.ImpactLevel)
}

func TestEstimateIsIdempotent(t *testing.T) {
	e := engineAt(time.November)
	p := phone()

	first := e.Estimate(p, "nearby", "online")
	second := e.Estimate(p, "nearby", "online")

	assert.Equal(t, first, second)
}

func TestEstimateDoesNotMutateProduct(t *testing.T) {
	p := types.ProductInfo{WeightKg: 1, CustomFactors: map[string]float64{"production": 1}}

	engineAt(time.April).Estimate(p, "", "")

	assert.Nil(t, p.Materials)
	assert.Empty(t, p.Category)
}

func TestEstimateBounds(t *testing.T) {
	e := engineAt(time.December)
	products := []types.ProductInfo{
		phone(),
		cardboardBox(),
		{Category: "beverages", Materials: []string{"aluminum"}, WeightKg: 0.35, CountryOrigin: "USA", Verified: true},
		{Category: "clothing", Materials: []string{"polyester", "cotton", "polyester"}, WeightKg: 0.8, CountryOrigin: "Vietnam"},
		{Category: "food", Materials: []string{"organic_matter"}, WeightKg: 1.2, CountryOrigin: "Ecuador"},
	}

	for _, p := range products {
		est := e.Estimate(p, "", "express_shipping")
		assert.GreaterOrEqual(t, est.TotalCO2Kg, 0.0)
		assert.GreaterOrEqual(t, est.ProductionCO2Kg, 0.0)
		assert.GreaterOrEqual(t, est.TransportCO2Kg, 0.0)
		assert.GreaterOrEqual(t, est.PackagingCO2Kg, minPackagingCO2)
		assert.GreaterOrEqual(t, est.UsageCO2Kg, 0.0)
		assert.LessOrEqual(t, est.ConfidenceScore, MaxConfidence)
		assert.GreaterOrEqual(t, est.ConfidenceScore, 0.0)
	}
}

func TestConfidence(t *testing.T) {
	e := New()

	tests := []struct {
		name    string
		product types.ProductInfo
		want    float64
	}{
		{"base generated", types.ProductInfo{Source: types.SourceGenerated, Materials: []string{"unknown"}}, 0.5},
		{"placeholder name", types.ProductInfo{Name: "Product 4012", Materials: []string{"plastic"}}, 0.5},
		{"named", types.ProductInfo{Name: "Cola", Materials: []string{"plastic"}}, 0.7},
		{"named multi material", types.ProductInfo{Name: "Cola", Materials: []string{"plastic", "aluminum"}}, 0.8},
		{"duplicate materials count once", types.ProductInfo{Name: "Cola", Materials: []string{"plastic", "plastic"}}, 0.7},
		{"unknown tags do not count", types.ProductInfo{Name: "Cola", Materials: []string{"plastic", "mystery", "unknown"}}, 0.7},
		{"verified", types.ProductInfo{Name: "Cola", Verified: true, Materials: []string{"plastic"}}, MaxConfidence},
		{"verified placeholder multi material", types.ProductInfo{Name: "Product 4012", Verified: true, Materials: []string{"plastic", "glass"}}, 0.9},
		{"capped", types.ProductInfo{Name: "Cola", Verified: true, Materials: []string{"plastic", "glass"}, CustomFactors: map[string]float64{"production": 1}}, MaxConfidence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, e.Confidence(tt.product), 1e-9)
		})
	}
}

func TestClassifyImpact(t *testing.T) {
	tests := []struct {
		total float64
		want  types.ImpactLevel
	}{
		{0, types.ImpactLow},
		{0.999, types.ImpactLow},
		{1.0, types.ImpactMedium},
		{4.999, types.ImpactMedium},
		{5.0, types.ImpactHigh},
		{14.999, types.ImpactHigh},
		{15.0, types.ImpactVeryHigh},
		{1000, types.ImpactVeryHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyImpact(tt.total), "total %v", tt.total)
	}
}

func TestFallbackByCategory(t *testing.T) {
	e := New()

	est := e.Fallback(types.ProductInfo{Category: "electronics"})
	assert.InDelta(t, 15.0, est.TotalCO2Kg, 1e-9)
	assert.Equal(t, types.ImpactVeryHigh, est.ImpactLevel)

	est = e.Fallback(types.ProductInfo{Category: "beverages"})
	assert.InDelta(t, 0.8, est.TotalCO2Kg, 1e-9)
	assert.InDelta(t, 0.48, est.ProductionCO2Kg, 1e-9)
	assert.Equal(t, types.ImpactLow, est.ImpactLevel)
}
