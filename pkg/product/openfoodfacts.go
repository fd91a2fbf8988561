package product

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/menta2k/carbon-analyzer/pkg/types"
)

// DefaultOpenFoodFactsURL is the public OpenFoodFacts endpoint
const DefaultOpenFoodFactsURL = "https://world.openfoodfacts.org"

const openFoodFactsSource = "OpenFoodFacts"

var reDigits = regexp.MustCompile(`\d+`)

// OpenFoodFacts looks products up through the OpenFoodFacts v0 API
type OpenFoodFacts struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// NewOpenFoodFacts creates a client against baseURL with the given timeout.
// An empty baseURL uses DefaultOpenFoodFactsURL, a zero timeout 3 seconds.
func NewOpenFoodFacts(baseURL string, timeout time.Duration) *OpenFoodFacts {
	if baseURL == "" {
		baseURL = DefaultOpenFoodFactsURL
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &OpenFoodFacts{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "Carbon-Analyzer/1.0 (+https://github.com/menta2k/carbon-analyzer)",
	}
}

// Name returns the source tag stamped on Open Food Facts results
func (o *OpenFoodFacts) Name() string { return openFoodFactsSource }

type offResponse struct {
	Status  int            `json:"status"`
	Product map[string]any `json:"product"`
}

// Lookup fetches /api/v0/product/{barcode}.json. Unknown barcodes return ErrNotFound.
func (o *OpenFoodFacts) Lookup(ctx context.Context, barcode string) (types.ProductInfo, error) {
	endpoint := fmt.Sprintf("%s/api/v0/product/%s.json", o.baseURL, url.PathEscape(barcode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return types.ProductInfo{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", o.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return types.ProductInfo{}, fmt.Errorf("openfoodfacts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return types.ProductInfo{}, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return types.ProductInfo{}, fmt.Errorf("openfoodfacts returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return types.ProductInfo{}, fmt.Errorf("failed to read response: %w", err)
	}

	var parsed offResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return types.ProductInfo{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.Status != 1 || parsed.Product == nil {
		return types.ProductInfo{}, ErrNotFound
	}

	p := parsed.Product
	return types.ProductInfo{
		Name:          stringField(p, "product_name", "Product "+shortCode(barcode)),
		Brand:         stringField(p, "brands", "Unknown Brand"),
		Barcode:       barcode,
		Category:      mapCategory(stringField(p, "categories", "")),
		Materials:     guessMaterials(stringField(p, "packaging", "")),
		WeightKg:      types.GramsToKg(extractGrams(p)),
		CountryOrigin: stringField(p, "countries", types.UnknownOrigin),
		Source:        openFoodFactsSource,
	}, nil
}

func stringField(p map[string]any, key, fallback string) string {
	if v, ok := p[key].(string); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

// mapCategory maps OpenFoodFacts category text onto engine categories.
// Everything OpenFoodFacts lists is some kind of food.
func mapCategory(categories string) string {
	categories = strings.ToLower(categories)
	for _, word := range []string{"beverage", "drink", "soda", "water"} {
		if strings.Contains(categories, word) {
			return "beverages"
		}
	}
	return "food"
}

// extractGrams reads the first number of quantity, net_weight or
// serving_quantity. Returns 0 when none is present.
func extractGrams(p map[string]any) float64 {
	for _, key := range []string{"quantity", "net_weight", "serving_quantity"} {
		var text string
		switch v := p[key].(type) {
		case string:
			text = v
		case float64:
			text = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			continue
		}
		if m := reDigits.FindString(text); m != "" {
			if grams, err := strconv.ParseFloat(m, 64); err == nil {
				return grams
			}
		}
	}
	return 0
}

// guessMaterials derives material tags from packaging text
func guessMaterials(packaging string) []string {
	packaging = strings.ToLower(packaging)

	rules := []struct {
		tag      string
		keywords []string
	}{
		{"plastic", []string{"plastic", "bottle"}},
		{"aluminum", []string{"aluminum", "aluminium", "can"}},
		{"glass", []string{"glass"}},
		{"cardboard", []string{"cardboard", "box"}},
	}

	var materials []string
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(packaging, kw) {
				materials = append(materials, rule.tag)
				break
			}
		}
	}
	if len(materials) == 0 {
		return []string{types.UnknownMaterial}
	}
	return materials
}
