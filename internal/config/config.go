package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Classifier backends
const (
	BackendHeuristic = "heuristic"
	BackendOllama    = "ollama"
	BackendLlamaCpp  = "llamacpp"
)

// envPrefix prefixes every environment override
const envPrefix = "CARBON_ANALYZER_"

// Config holds the application configuration
type Config struct {
	Classifier ClassifierConfig `json:"classifier" yaml:"classifier"`
	Vision     VisionConfig     `json:"vision" yaml:"vision"`
	Product    ProductConfig    `json:"product" yaml:"product"`
	Scan       ScanConfig       `json:"scan" yaml:"scan"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging"`
	Output     OutputConfig     `json:"output" yaml:"output"`
}

// ClassifierConfig selects and tunes the material classifier
type ClassifierConfig struct {
	Backend     string `json:"backend" yaml:"backend"`
	Model       string `json:"model" yaml:"model"`
	ServerURL   string `json:"server_url" yaml:"server_url"`
	SendSize    int    `json:"send_size" yaml:"send_size"`
	SendQuality int    `json:"send_quality" yaml:"send_quality"`
}

// VisionConfig holds fusion weights for the heuristic classifier
type VisionConfig struct {
	TextureWeight float64 `json:"texture_weight" yaml:"texture_weight"`
	ColorWeight   float64 `json:"color_weight" yaml:"color_weight"`
	EdgeWeight    float64 `json:"edge_weight" yaml:"edge_weight"`
	MaxDimension  int     `json:"max_dimension" yaml:"max_dimension"`
}

// ProductConfig controls barcode resolution
type ProductConfig struct {
	OpenFoodFactsURL     string `json:"openfoodfacts_url" yaml:"openfoodfacts_url"`
	LookupTimeoutSeconds int    `json:"lookup_timeout_seconds" yaml:"lookup_timeout_seconds"`
	Offline              bool   `json:"offline" yaml:"offline"`
}

// ScanConfig holds defaults applied to scans
type ScanConfig struct {
	EnrichMaterials bool   `json:"enrich_materials" yaml:"enrich_materials"`
	Location        string `json:"location" yaml:"location"`
	PurchaseContext string `json:"purchase_context" yaml:"purchase_context"`
}

// LoggingConfig configures zerolog output
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // console or json
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	Format   string `json:"format" yaml:"format"` // text or json
	DebugDir string `json:"debug_dir" yaml:"debug_dir"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Classifier: ClassifierConfig{
			Backend:     BackendHeuristic,
			Model:       "openbmb/minicpm-v4.5",
			ServerURL:   "http://localhost:11434",
			SendSize:    1024,
			SendQuality: 85,
		},
		Vision: VisionConfig{
			TextureWeight: 0.4,
			ColorWeight:   0.4,
			EdgeWeight:    0.2,
			MaxDimension:  640,
		},
		Product: ProductConfig{
			OpenFoodFactsURL:     "https://world.openfoodfacts.org",
			LookupTimeoutSeconds: 3,
		},
		Scan: ScanConfig{
			EnrichMaterials: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}

// LoadFromFile loads configuration from a JSON or YAML file (by extension)
// on top of the defaults.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if isYAML(filename) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration as JSON or YAML (by extension)
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if isYAML(filename) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides fields from CARBON_ANALYZER_* environment variables.
// Unparseable values are reported and leave the field unchanged.
func (c *Config) ApplyEnv(lookupEnv func(string) (string, bool)) error {
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}

	strs := map[string]*string{
		"BACKEND":           &c.Classifier.Backend,
		"MODEL":             &c.Classifier.Model,
		"SERVER_URL":        &c.Classifier.ServerURL,
		"OPENFOODFACTS_URL": &c.Product.OpenFoodFactsURL,
		"LOCATION":          &c.Scan.Location,
		"PURCHASE_CONTEXT":  &c.Scan.PurchaseContext,
		"LOG_LEVEL":         &c.Logging.Level,
		"LOG_FORMAT":        &c.Logging.Format,
		"OUTPUT_FORMAT":     &c.Output.Format,
	}
	for key, field := range strs {
		if v, ok := lookupEnv(envPrefix + key); ok {
			*field = strings.TrimSpace(v)
		}
	}

	if v, ok := lookupEnv(envPrefix + "OFFLINE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sOFFLINE: %w", envPrefix, err)
		}
		c.Product.Offline = b
	}

	if v, ok := lookupEnv(envPrefix + "LOOKUP_TIMEOUT_SECONDS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sLOOKUP_TIMEOUT_SECONDS: %w", envPrefix, err)
		}
		c.Product.LookupTimeoutSeconds = n
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Classifier.Backend {
	case BackendHeuristic, BackendOllama, BackendLlamaCpp:
	default:
		return fmt.Errorf("classifier.backend must be one of %s, %s, %s", BackendHeuristic, BackendOllama, BackendLlamaCpp)
	}

	if c.Classifier.Backend != BackendHeuristic {
		if c.Classifier.ServerURL == "" {
			return fmt.Errorf("classifier.server_url is required for backend %s", c.Classifier.Backend)
		}
		if c.Classifier.Model == "" {
			return fmt.Errorf("classifier.model is required for backend %s", c.Classifier.Backend)
		}
	}

	if c.Classifier.SendQuality < 1 || c.Classifier.SendQuality > 100 {
		return fmt.Errorf("classifier.send_quality must be between 1 and 100")
	}

	for name, w := range map[string]float64{
		"texture_weight": c.Vision.TextureWeight,
		"color_weight":   c.Vision.ColorWeight,
		"edge_weight":    c.Vision.EdgeWeight,
	} {
		if w < 0 || w > 1 {
			return fmt.Errorf("vision.%s must be between 0 and 1", name)
		}
	}

	if c.Vision.MaxDimension < 0 {
		return fmt.Errorf("vision.max_dimension cannot be negative")
	}

	if c.Product.LookupTimeoutSeconds < 0 {
		return fmt.Errorf("product.lookup_timeout_seconds cannot be negative")
	}

	switch c.Output.Format {
	case "text", "json":
	default:
		return fmt.Errorf("output.format must be text or json")
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.yaml"
	}
	return filepath.Join(home, ".config", "carbon-analyzer", "config.yaml")
}

func isYAML(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
