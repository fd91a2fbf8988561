package product

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/carbon-analyzer/pkg/types"
)

const offProductJSON = `{
  "status": 1,
  "product": {
    "product_name": "Sparkling Water",
    "brands": "Fizz",
    "categories": "Beverages, Waters",
    "packaging": "Plastic bottle, cardboard box",
    "quantity": "500 ml",
    "countries": "France"
  }
}`

func newOFFServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v0/product/3017620422003.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(offProductJSON))
		case "/api/v0/product/3000000000000.json":
			_, _ = w.Write([]byte(`{"status": 0, "status_verbose": "product not found"}`))
		case "/api/v0/product/3999999999999.json":
			http.Error(w, "boom", http.StatusInternalServerError)
		case "/api/v0/product/3888888888888.json":
			_, _ = w.Write([]byte(`{"status": 1, "product": {"serving_quantity": 33, "packaging": "metal tin"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestOpenFoodFactsLookup(t *testing.T) {
	off := NewOpenFoodFacts(newOFFServer(t).URL, time.Second)

	info, err := off.Lookup(context.Background(), "3017620422003")
	require.NoError(t, err)

	assert.Equal(t, "Sparkling Water", info.Name)
	assert.Equal(t, "Fizz", info.Brand)
	assert.Equal(t, "beverages", info.Category)
	assert.Equal(t, []string{"plastic", "cardboard"}, info.Materials)
	assert.InDelta(t, 0.5, info.WeightKg, 1e-9)
	assert.Equal(t, "France", info.CountryOrigin)
	assert.False(t, info.Verified)
	assert.Equal(t, "OpenFoodFacts", info.Source)
}

func TestOpenFoodFactsDefaults(t *testing.T) {
	off := NewOpenFoodFacts(newOFFServer(t).URL, time.Second)

	info, err := off.Lookup(context.Background(), "3888888888888")
	require.NoError(t, err)

	assert.Equal(t, "Product 38888888...", info.Name)
	assert.Equal(t, "Unknown Brand", info.Brand)
	assert.Equal(t, "food", info.Category)
	assert.Equal(t, []string{types.UnknownMaterial}, info.Materials)
	assert.InDelta(t, 0.033, info.WeightKg, 1e-9)
	assert.Equal(t, types.UnknownOrigin, info.CountryOrigin)
}

func TestOpenFoodFactsErrors(t *testing.T) {
	off := NewOpenFoodFacts(newOFFServer(t).URL, time.Second)

	_, err := off.Lookup(context.Background(), "3000000000000")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = off.Lookup(context.Background(), "4000000000000")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = off.Lookup(context.Background(), "3999999999999")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestGuessMaterials(t *testing.T) {
	assert.Equal(t, []string{"aluminum"}, guessMaterials("Aluminium can"))
	assert.Equal(t, []string{"plastic", "aluminum", "glass", "cardboard"}, guessMaterials("plastic, can, glass jar, box"))
	assert.Equal(t, []string{types.UnknownMaterial}, guessMaterials(""))
}

func TestCatalogLookupReturnsCopies(t *testing.T) {
	catalog := DefaultCatalog()
	require.Equal(t, 6, catalog.Len())

	info, err := catalog.Lookup(context.Background(), "7890123456789")
	require.NoError(t, err)
	assert.Equal(t, "iPhone 15 Pro 128GB", info.Name)
	assert.InDelta(t, 0.187, info.WeightKg, 1e-9)
	assert.True(t, info.Verified)
	assert.Equal(t, 18.0, info.CustomFactors["production"])

	info.Materials[0] = "tampered"
	info.CustomFactors["production"] = 0

	again, _ := catalog.Lookup(context.Background(), "7890123456789")
	assert.Equal(t, "aluminum", again.Materials[0])
	assert.Equal(t, 18.0, again.CustomFactors["production"])

	_, err = catalog.Lookup(context.Background(), "0000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGenerator(t *testing.T) {
	g := NewGenerator()

	tests := []struct {
		barcode   string
		category  string
		name      string
		weightKg  float64
		materials []string
	}{
		{"3123456789012", "electronics", "Electronic Device 31234567...", 0.2, []string{"plastic", "metal", "rare_earth_metals"}},
		{"4000000000001", "clothing", "Clothing Item 40000000...", 0.3, []string{"cotton", "polyester"}},
		{"8000000000001", "household", "Food Product 80000000...", 0.25, []string{"cardboard", "plastic"}},
		{"X123", "general", "Food Product X123", 0.25, []string{"cardboard", "plastic"}},
	}

	for _, tt := range tests {
		t.Run(tt.barcode, func(t *testing.T) {
			info, err := g.Lookup(context.Background(), tt.barcode)
			require.NoError(t, err)
			assert.Equal(t, tt.category, info.Category)
			assert.Equal(t, tt.name, info.Name)
			assert.InDelta(t, tt.weightKg, info.WeightKg, 1e-9)
			assert.Equal(t, tt.materials, info.Materials)
			assert.Equal(t, types.SourceGenerated, info.Source)
			assert.False(t, info.Verified)
		})
	}
}

type stubSource struct {
	info  types.ProductInfo
	err   error
	calls int
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Lookup(context.Context, string) (types.ProductInfo, error) {
	s.calls++
	return s.info, s.err
}

func TestResolverOrder(t *testing.T) {
	failing := &stubSource{err: errors.New("network down")}
	missing := &stubSource{err: ErrNotFound}
	found := &stubSource{info: types.ProductInfo{Name: "Jam", Category: "food", WeightKg: 0.4}}
	unused := &stubSource{info: types.ProductInfo{Name: "Never"}}

	r := NewResolver(failing, missing, found, unused)
	info := r.Resolve(context.Background(), " 5000000000001 ")

	assert.Equal(t, "Jam", info.Name)
	assert.Equal(t, "5000000000001", info.Barcode)
	assert.Equal(t, []string{types.UnknownMaterial}, info.Materials)
	assert.Equal(t, types.UnknownOrigin, info.CountryOrigin)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, missing.calls)
	assert.Equal(t, 0, unused.calls)
}

func TestResolverFallsBackToGenerator(t *testing.T) {
	r := NewResolver(DefaultCatalog(), &stubSource{err: ErrNotFound})

	info := r.Resolve(context.Background(), "1000000000001")

	assert.Equal(t, types.SourceGenerated, info.Source)
	assert.Equal(t, "beverages", info.Category)
}

func TestResolverCatalogAndOpenFoodFacts(t *testing.T) {
	r := NewResolver(DefaultCatalog(), NewOpenFoodFacts(newOFFServer(t).URL, time.Second))

	assert.Equal(t, "catalog", r.Resolve(context.Background(), "1234567890123").Source)
	assert.Equal(t, "OpenFoodFacts", r.Resolve(context.Background(), "3017620422003").Source)
	assert.Equal(t, types.SourceGenerated, r.Resolve(context.Background(), "3999999999999").Source)
}

func TestResolverEmptyBarcode(t *testing.T) {
	stub := &stubSource{}
	info := NewResolver(stub).Resolve(context.Background(), "  ")

	assert.Equal(t, "Unknown Product", info.Name)
	assert.Equal(t, types.DefaultCategory, info.Category)
	assert.Equal(t, types.DefaultWeightKg, info.WeightKg)
	assert.Equal(t, 0, stub.calls)
}

func TestResolverCancelledContext(t *testing.T) {
	stub := &stubSource{info: types.ProductInfo{Name: "Jam"}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	info := NewResolver(stub).Resolve(ctx, "2000000000001")

	assert.Equal(t, types.SourceGenerated, info.Source)
	assert.Equal(t, 0, stub.calls)
}
