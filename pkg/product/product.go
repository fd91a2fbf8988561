// Package product resolves barcodes into product records for the carbon
// engine. Sources are consulted in order: the local catalog, the
// OpenFoodFacts API, and finally a generator that guesses a product from
// the barcode pattern, so resolution always yields a record.
package product

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/menta2k/carbon-analyzer/pkg/types"
)

type constError string

func (e constError) Error() string { return string(e) }

// ErrNotFound is returned by a source that has no record for a barcode
const ErrNotFound = constError("product not found")

// Source looks up a product by barcode
type Source interface {
	Name() string
	Lookup(ctx context.Context, barcode string) (types.ProductInfo, error)
}

// Resolver chains sources and falls back to a generated product
type Resolver struct {
	sources   []Source
	generator *Generator
	logger    zerolog.Logger
}

// NewResolver creates a resolver over the given sources
func NewResolver(sources ...Source) *Resolver {
	return &Resolver{
		sources:   sources,
		generator: NewGenerator(),
		logger:    zerolog.Nop(),
	}
}

// SetLogger sets the logger used to report failing sources
func (r *Resolver) SetLogger(logger zerolog.Logger) {
	r.logger = logger
}

// Resolve returns the first record found for barcode. Source errors other
// than ErrNotFound are logged and skipped. An empty barcode yields an
// unknown general product.
func (r *Resolver) Resolve(ctx context.Context, barcode string) types.ProductInfo {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return UnknownProduct()
	}

	for _, source := range r.sources {
		if ctx.Err() != nil {
			break
		}
		info, err := source.Lookup(ctx, barcode)
		if err == nil {
			return finalize(info, barcode)
		}
		if !errors.Is(err, ErrNotFound) {
			r.logger.Warn().Err(err).Str("source", source.Name()).Str("barcode", barcode).Msg("product lookup failed")
		}
	}

	info, _ := r.generator.Lookup(ctx, barcode)
	return finalize(info, barcode)
}

// UnknownProduct is the record used when no barcode is available
func UnknownProduct() types.ProductInfo {
	return types.ProductInfo{
		Name:          "Unknown Product",
		Category:      types.DefaultCategory,
		Materials:     []string{types.UnknownMaterial},
		WeightKg:      types.DefaultWeightKg,
		CountryOrigin: types.UnknownOrigin,
	}
}

func finalize(info types.ProductInfo, barcode string) types.ProductInfo {
	info = info.Normalized()
	if info.Barcode == "" {
		info.Barcode = barcode
	}
	if info.WeightKg <= 0 {
		info.WeightKg = types.DefaultWeightKg
	}
	return info
}

// shortCode is the barcode prefix used in placeholder names
func shortCode(barcode string) string {
	if len(barcode) > 8 {
		return barcode[:8] + "..."
	}
	return barcode
}
