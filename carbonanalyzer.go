// Package carbonanalyzer estimates the carbon footprint of a product from a
// barcode and/or a photo of its packaging.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//
//		carbonanalyzer "github.com/menta2k/carbon-analyzer"
//	)
//
//	func main() {
//		analyzer := carbonanalyzer.New()
//
//		result, err := analyzer.Analyze(context.Background(), carbonanalyzer.ScanRequest{
//			Barcode:         "7890123456789",
//			ImageBase64:     payload,
//			PurchaseContext: "retail_store",
//		})
//		if err != nil {
//			log.Fatal(err) // only undecodable images fail
//		}
//
//		fmt.Printf("%s: %.2f kg CO2e (%s)\n",
//			result.Product.Name, result.Estimate.TotalCO2Kg, result.Estimate.ImpactLevel)
//	}
//
// The package ties together four components:
//
// 1. Product resolution (pkg/product): local catalog, OpenFoodFacts, barcode patterns
// 2. Material classification (pkg/material): texture, color and edge fusion, or a vision model
// 3. Carbon estimation (pkg/carbon): multi-factor engine with a category fallback
// 4. Presentation (pkg/alternatives, pkg/equivalency): greener options and relatable equivalents
//
// Product lookup and image classification run concurrently. Classification
// and estimation never fail; only an undecodable image payload is reported
// as an error, before any work starts.
package carbonanalyzer

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/menta2k/carbon-analyzer/pkg/alternatives"
	"github.com/menta2k/carbon-analyzer/pkg/carbon"
	"github.com/menta2k/carbon-analyzer/pkg/equivalency"
	"github.com/menta2k/carbon-analyzer/pkg/material"
	"github.com/menta2k/carbon-analyzer/pkg/processing"
	"github.com/menta2k/carbon-analyzer/pkg/product"
	"github.com/menta2k/carbon-analyzer/pkg/types"
)

// Version of the carbon analyzer library
const Version = "1.0.0"

// Config wires the analyzer components. Nil components get defaults.
type Config struct {
	Classifier material.Classifier
	Resolver   *product.Resolver
	Engine     *carbon.Engine
	// EnrichMaterials replaces an unknown materials list with detected materials
	EnrichMaterials bool
	Now             func() time.Time
	Logger          zerolog.Logger
}

// DefaultConfig returns the default wiring: heuristic classifier, catalog
// plus OpenFoodFacts lookup, built-in factor tables.
func DefaultConfig() Config {
	return Config{
		Classifier:      material.NewHeuristic(),
		Resolver:        product.NewResolver(product.DefaultCatalog(), product.NewOpenFoodFacts("", 0)),
		Engine:          carbon.New(),
		EnrichMaterials: true,
		Now:             time.Now,
		Logger:          zerolog.Nop(),
	}
}

// Analyzer runs the scan pipeline
type Analyzer struct {
	classifier material.Classifier
	resolver   *product.Resolver
	engine     *carbon.Engine
	processor  *processing.Processor
	enrich     bool
	now        func() time.Time
	logger     zerolog.Logger
}

// ScanRequest is the input of one scan. All fields are optional.
// Image takes precedence over ImageBase64.
type ScanRequest struct {
	Barcode         string      `json:"barcode,omitempty"`
	ImageBase64     string      `json:"image_base64,omitempty"`
	Image           image.Image `json:"-"`
	Location        string      `json:"location,omitempty"`
	PurchaseContext string      `json:"purchase_context,omitempty"`
}

// ScanResult combines product, materials and footprint of one scan
type ScanResult struct {
	ScanID       string                     `json:"scan_id"`
	Product      types.ProductInfo          `json:"product"`
	Materials    []types.MaterialDetection  `json:"materials"`
	Estimate     types.CarbonEstimate       `json:"estimate"`
	Alternatives []alternatives.Alternative `json:"alternatives"`
	Equivalency  equivalency.Output         `json:"equivalency"`
	Timestamp    time.Time                  `json:"timestamp"`
}

// New creates a new Analyzer with default configuration
func New() *Analyzer {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a new Analyzer with custom configuration
func NewWithConfig(config Config) *Analyzer {
	if config.Classifier == nil {
		config.Classifier = material.NewHeuristic()
	}
	if config.Resolver == nil {
		config.Resolver = product.NewResolver(product.DefaultCatalog())
	}
	if config.Engine == nil {
		config.Engine = carbon.New()
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Analyzer{
		classifier: config.Classifier,
		resolver:   config.Resolver,
		engine:     config.Engine,
		processor:  processing.NewProcessor(),
		enrich:     config.EnrichMaterials,
		now:        config.Now,
		logger:     config.Logger,
	}
}

// Analyze resolves the product and classifies the image concurrently, then
// estimates the footprint. It fails only for undecodable image payloads
// (processing.ErrInvalidImage) or a cancelled context.
func (a *Analyzer) Analyze(ctx context.Context, req ScanRequest) (*ScanResult, error) {
	img := req.Image
	if img == nil && req.ImageBase64 != "" {
		decoded, err := a.processor.DecodeBase64Image(req.ImageBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image: %w", err)
		}
		img = decoded
	}

	var (
		info       types.ProductInfo
		detections []types.MaterialDetection
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		info = a.resolver.Resolve(gctx, req.Barcode)
		return nil
	})
	if img != nil {
		g.Go(func() error {
			detections = a.classifier.Classify(gctx, img)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan cancelled: %w", err)
	}

	if a.enrich {
		info = EnrichMaterials(info, detections)
	}

	estimate := a.engine.Estimate(info, req.Location, req.PurchaseContext)

	result := &ScanResult{
		ScanID:       uuid.NewString(),
		Product:      info,
		Materials:    detections,
		Estimate:     estimate,
		Alternatives: alternatives.ForEstimate(info, estimate),
		Equivalency:  equivalency.FromEstimate(estimate),
		Timestamp:    a.now().UTC(),
	}
	if result.Materials == nil {
		result.Materials = []types.MaterialDetection{}
	}

	a.logger.Info().
		Str("scan_id", result.ScanID).
		Str("barcode", req.Barcode).
		Str("product", info.Name).
		Int("materials", len(detections)).
		Float64("total_co2_kg", estimate.TotalCO2Kg).
		Str("methodology", estimate.Methodology).
		Msg("scan completed")

	return result, nil
}

// ClassifyImage detects packaging materials in a decoded image
func (a *Analyzer) ClassifyImage(ctx context.Context, img image.Image) []types.MaterialDetection {
	return a.classifier.Classify(ctx, img)
}

// ClassifyBase64 decodes a base64 or data URL payload and classifies it.
// Undecodable payloads return processing.ErrInvalidImage.
func (a *Analyzer) ClassifyBase64(ctx context.Context, payload string) ([]types.MaterialDetection, error) {
	img, err := a.processor.DecodeBase64Image(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return a.classifier.Classify(ctx, img), nil
}

// Estimate computes the footprint of a known product
func (a *Analyzer) Estimate(info types.ProductInfo, location, purchaseContext string) types.CarbonEstimate {
	return a.engine.Estimate(info, location, purchaseContext)
}

// EnrichMaterials replaces a materials list that carries only the unknown
// sentinel with the detected material tags, in detection order. Fallback
// guesses are not evidence and are skipped.
func EnrichMaterials(info types.ProductInfo, detections []types.MaterialDetection) types.ProductInfo {
	if len(detections) == 0 || !info.HasOnlyUnknownMaterials() {
		return info
	}

	seen := make(map[string]bool, len(detections))
	materials := make([]string, 0, len(detections))
	for _, d := range detections {
		if d.Fallback || d.MaterialType == "" || seen[d.MaterialType] {
			continue
		}
		seen[d.MaterialType] = true
		materials = append(materials, d.MaterialType)
	}
	if len(materials) == 0 {
		return info
	}

	info.Materials = materials
	return info
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
