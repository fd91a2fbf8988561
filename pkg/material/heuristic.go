package material

import (
	"context"
	"fmt"
	"image"

	"github.com/rs/zerolog"

	"github.com/menta2k/carbon-analyzer/pkg/types"
	"github.com/menta2k/carbon-analyzer/pkg/vision"
)

// HeuristicConfig holds fusion weights and boosts for the rule-based classifier
type HeuristicConfig struct {
	TextureWeight float64
	ColorWeight   float64
	EdgeWeight    float64
	PlasticBoost  float64
	MetalBoost    float64
	MinConfidence float64
	// MaxDimension downscales larger images before extraction; 0 disables it
	MaxDimension int
}

// DefaultHeuristicConfig returns the tuned fusion settings
func DefaultHeuristicConfig() HeuristicConfig {
	return HeuristicConfig{
		TextureWeight: 0.4,
		ColorWeight:   0.4,
		EdgeWeight:    0.2,
		PlasticBoost:  1.1,
		MetalBoost:    1.05,
		MinConfidence: HeuristicThreshold,
		MaxDimension:  640,
	}
}

// Heuristic classifies materials by fusing texture, color and edge scores
type Heuristic struct {
	config     HeuristicConfig
	extractors []vision.Extractor
	logger     zerolog.Logger
}

// NewHeuristic creates a Heuristic classifier with default configuration
func NewHeuristic() *Heuristic {
	return NewHeuristicWithConfig(DefaultHeuristicConfig())
}

// NewHeuristicWithConfig creates a Heuristic classifier with custom configuration
func NewHeuristicWithConfig(config HeuristicConfig) *Heuristic {
	return &Heuristic{
		config:     config,
		extractors: vision.DefaultExtractors(),
		logger:     zerolog.Nop(),
	}
}

// SetLogger sets the logger used to report fallbacks
func (h *Heuristic) SetLogger(logger zerolog.Logger) {
	h.logger = logger
}

// SetExtractors replaces the feature extractors
func (h *Heuristic) SetExtractors(extractors ...vision.Extractor) {
	h.extractors = extractors
}

// Classify returns up to three materials sorted by confidence. Extraction
// failures of any kind yield FallbackGuess.
func (h *Heuristic) Classify(_ context.Context, img image.Image) []types.MaterialDetection {
	var detections []types.MaterialDetection
	err := safely(func() error {
		scores, err := h.Scores(img)
		if err != nil {
			return err
		}
		detections = rank(scores, h.config.MinConfidence, fullImageBox(img))
		return nil
	})
	if err != nil {
		h.logger.Warn().Err(err).Msg("heuristic material detection failed, using fallback guess")
		return FallbackGuess(img)
	}
	return detections
}

// Scores runs every extractor and fuses their outputs into boosted, capped
// per-material scores. No threshold is applied.
func (h *Heuristic) Scores(img image.Image) (map[string]float64, error) {
	frame, err := vision.NewFrame(img, h.config.MaxDimension)
	if err != nil {
		return nil, err
	}

	outputs := make(map[string]vision.Scores, len(h.extractors))
	for _, ex := range h.extractors {
		scores, err := ex.Extract(frame)
		if err != nil {
			return nil, fmt.Errorf("%s extraction failed: %w", ex.Name(), err)
		}
		outputs[ex.Name()] = scores
	}

	return h.Fuse(outputs), nil
}

// Fuse combines extractor outputs keyed by extractor name. Missing scores count as 0.
func (h *Heuristic) Fuse(outputs map[string]vision.Scores) map[string]float64 {
	// Fixed order keeps the floating point sum reproducible
	weights := []struct {
		name   string
		weight float64
	}{
		{vision.TextureName, h.config.TextureWeight},
		{vision.ColorName, h.config.ColorWeight},
		{vision.EdgeName, h.config.EdgeWeight},
	}

	fused := make(map[string]float64)
	for _, scores := range outputs {
		for materialType := range scores {
			fused[materialType] = 0
		}
	}

	for materialType := range fused {
		var score float64
		for _, w := range weights {
			score += w.weight * outputs[w.name][materialType]
		}

		switch {
		case IsPlastic(materialType):
			score *= h.config.PlasticBoost
		case IsMetal(materialType):
			score *= h.config.MetalBoost
		}

		if score > MaxConfidence {
			score = MaxConfidence
		}
		fused[materialType] = score
	}

	return fused
}
