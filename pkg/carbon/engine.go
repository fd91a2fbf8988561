// Package carbon estimates per-product carbon footprints from category,
// material, origin, seasonal and purchase-context factors.
//
// Estimate never fails. Any fault inside the phase calculations (invalid
// weight, bad custom factors, non-finite values, panics) is logged and
// replaced by a low-confidence category-based estimate.
//
// The seasonal multiplier is the only time-dependent input: results are
// deterministic for a fixed product and calendar month. Tests pin the month
// through Config.Now.
package carbon

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/menta2k/carbon-analyzer/pkg/types"
)

const (
	// MethodologyMultiFactor tags estimates from the full calculation
	MethodologyMultiFactor = "Enhanced Multi-Factor Analysis"

	// MethodologyFallback tags estimates from the category fallback
	MethodologyFallback = "Fallback Category-Based"

	// MaxConfidence caps every confidence score
	MaxConfidence = 0.95

	// FallbackConfidence is the fixed confidence of fallback estimates
	FallbackConfidence = 0.3
)

const (
	transportShare      = 0.25 // transport baseline as a share of production
	localReduction      = 0.3  // transport kept for locally sourced purchases
	packagingShare      = 0.1  // packaging weight as a share of product weight
	minPackagingCO2     = 0.05
	electronicsUsageKg  = 2.0 // kg CO2e per kg of device over its lifetime
	productionFactorKey = "production"
	placeholderPrefix   = "Product "
)

// Config holds engine settings
type Config struct {
	// Now supplies the evaluation instant for the seasonal multiplier
	Now     func() time.Time
	Factors *Factors
	Logger  zerolog.Logger
}

// DefaultConfig returns the engine defaults: wall clock, built-in tables, no logging
func DefaultConfig() Config {
	return Config{
		Now:     time.Now,
		Factors: DefaultFactors(),
		Logger:  zerolog.Nop(),
	}
}

// Engine computes carbon estimates. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	now     func() time.Time
	factors *Factors
	logger  zerolog.Logger
}

// New creates an engine with default configuration
func New() *Engine {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates an engine with custom configuration
func NewWithConfig(config Config) *Engine {
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Factors == nil {
		config.Factors = DefaultFactors()
	}
	return &Engine{
		now:     config.Now,
		factors: config.Factors,
		logger:  config.Logger,
	}
}

// Factors returns the tables the engine reads from
func (e *Engine) Factors() *Factors {
	return e.factors
}

// Estimate computes the footprint of a product. location and purchaseContext
// are optional; pass "" when absent.
func (e *Engine) Estimate(product types.ProductInfo, location, purchaseContext string) types.CarbonEstimate {
	p := product.Normalized()

	estimate, err := e.estimate(p, location, purchaseContext, e.now())
	if err != nil {
		e.logger.Warn().
			Err(err).
			Str("category", p.Category).
			Strs("materials", p.Materials).
			Float64("weight_kg", p.WeightKg).
			Msg("carbon calculation failed, using category fallback")
		return e.Fallback(p)
	}
	return estimate
}

func (e *Engine) estimate(p types.ProductInfo, location, purchaseContext string, at time.Time) (estimate types.CarbonEstimate, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("carbon calculation panic: %v", r)
		}
	}()

	if err := validate(p); err != nil {
		return types.CarbonEstimate{}, err
	}

	production := e.production(p)
	transport, local := e.transport(p, location)
	packaging := e.packaging(p)
	usage := e.usage(p)

	contextMultiplier := e.factors.ContextMultiplier(purchaseContext)
	seasonalMultiplier := e.factors.SeasonalMultiplier(at.Month())

	total := (production + transport + packaging + usage) * contextMultiplier * seasonalMultiplier

	phases := map[string]float64{
		"production": production,
		"transport":  transport,
		"packaging":  packaging,
		"usage":      usage,
		"total":      total,
	}
	for name, v := range phases {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return types.CarbonEstimate{}, fmt.Errorf("%s: %w", name, ErrNonFinite)
		}
	}

	// Production and transport carry one multiplier each; only the total carries both
	return types.CarbonEstimate{
		TotalCO2Kg:      round3(total),
		ProductionCO2Kg: round3(production * contextMultiplier),
		TransportCO2Kg:  round3(transport * seasonalMultiplier),
		PackagingCO2Kg:  round3(packaging),
		UsageCO2Kg:      round3(usage),
		ConfidenceScore: e.Confidence(p),
		ImpactLevel:     ClassifyImpact(total),
		Methodology:     MethodologyMultiFactor,
		FactorsApplied: map[string]any{
			"context_multiplier":   contextMultiplier,
			"seasonal_multiplier":  seasonalMultiplier,
			"transport_multiplier": e.factors.TransportMultiplier(p.CountryOrigin),
			"local_sourcing":       local,
			"custom_factors":       len(p.CustomFactors) > 0,
			"verified_data":        p.Verified,
		},
	}, nil
}

func validate(p types.ProductInfo) error {
	if p.WeightKg <= 0 || math.IsNaN(p.WeightKg) || math.IsInf(p.WeightKg, 0) {
		return fmt.Errorf("%w: %v kg", ErrInvalidWeight, p.WeightKg)
	}
	for phase, v := range p.CustomFactors {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s=%v", ErrInvalidFactor, phase, v)
		}
	}
	return nil
}

// production takes the larger of the category baseline and the
// material-weighted value, or the mean of both and the custom production
// factor when one is supplied.
func (e *Engine) production(p types.ProductInfo) float64 {
	categoryCO2 := e.factors.CategoryBaseline(p.Category)

	share := p.WeightKg / float64(len(p.Materials))
	materialCO2 := 0.0
	for _, tag := range p.Materials {
		intensity, _ := e.factors.MaterialIntensity(tag)
		materialCO2 += intensity * share
	}

	if custom, ok := p.CustomFactors[productionFactorKey]; ok {
		return (categoryCO2 + materialCO2 + custom) / 3
	}
	return math.Max(categoryCO2, materialCO2)
}

func (e *Engine) transport(p types.ProductInfo, location string) (float64, bool) {
	transport := e.production(p) * transportShare * e.factors.TransportMultiplier(p.CountryOrigin)

	local := isLocal(location)
	if local {
		transport *= localReduction
	}
	return transport, local
}

func (e *Engine) packaging(p types.ProductInfo) float64 {
	share := p.WeightKg * packagingShare / float64(len(p.Materials))

	packaging := 0.0
	for _, tag := range p.Materials {
		if intensity, ok := e.factors.PackagingIntensity(tag); ok {
			packaging += intensity * share
		}
	}
	return math.Max(packaging, minPackagingCO2)
}

func (e *Engine) usage(p types.ProductInfo) float64 {
	if p.Category == "electronics" {
		return p.WeightKg * electronicsUsageKg
	}
	return 0
}

// Confidence scores how much the estimate can be trusted, capped at MaxConfidence
func (e *Engine) Confidence(p types.ProductInfo) float64 {
	confidence := 0.5

	if p.Verified {
		confidence += 0.3
	}
	if !IsPlaceholder(p) {
		confidence += 0.2
	}
	if e.knownMaterialCount(p.Materials) > 1 {
		confidence += 0.1
	}
	if len(p.CustomFactors) > 0 {
		confidence += 0.1
	}

	return math.Min(confidence, MaxConfidence)
}

// knownMaterialCount counts distinct tags with a listed intensity, excluding the sentinel
func (e *Engine) knownMaterialCount(materials []string) int {
	seen := make(map[string]bool, len(materials))
	for _, tag := range materials {
		if tag == types.UnknownMaterial || seen[tag] {
			continue
		}
		if _, known := e.factors.MaterialIntensity(tag); known {
			seen[tag] = true
		}
	}
	return len(seen)
}

// IsPlaceholder reports whether a product name was generated rather than looked up
func IsPlaceholder(p types.ProductInfo) bool {
	return p.Source == types.SourceGenerated || strings.HasPrefix(p.Name, placeholderPrefix)
}

// Fallback returns the category-based estimate used when the full
// calculation fails: the category baseline split 60/30/10/0.
func (e *Engine) Fallback(product types.ProductInfo) types.CarbonEstimate {
	p := product.Normalized()
	base := e.factors.CategoryBaseline(p.Category)

	return types.CarbonEstimate{
		TotalCO2Kg:      round3(base),
		ProductionCO2Kg: round3(base * 0.6),
		TransportCO2Kg:  round3(base * 0.3),
		PackagingCO2Kg:  round3(base * 0.1),
		UsageCO2Kg:      0,
		ConfidenceScore: FallbackConfidence,
		ImpactLevel:     ClassifyImpact(base),
		Methodology:     MethodologyFallback,
		FactorsApplied:  map[string]any{"fallback": true},
	}
}

// ClassifyImpact buckets a total in kg CO2e
func ClassifyImpact(totalCO2Kg float64) types.ImpactLevel {
	switch {
	case totalCO2Kg < 1.0:
		return types.ImpactLow
	case totalCO2Kg < 5.0:
		return types.ImpactMedium
	case totalCO2Kg < 15.0:
		return types.ImpactHigh
	default:
		return types.ImpactVeryHigh
	}
}

func isLocal(location string) bool {
	location = strings.ToLower(location)
	for _, keyword := range localKeywords {
		if strings.Contains(location, keyword) {
			return true
		}
	}
	return false
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
