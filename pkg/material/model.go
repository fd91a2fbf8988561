package material

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/rs/zerolog"

	"github.com/menta2k/carbon-analyzer/pkg/client"
	"github.com/menta2k/carbon-analyzer/pkg/processing"
	"github.com/menta2k/carbon-analyzer/pkg/types"
)

// DefaultPrompt asks a vision model for material confidences over the closed vocabulary
const DefaultPrompt = `You are a packaging material classifier.

Look at the product in the image and estimate which materials its packaging is made of.

Return JSON only:
{
  "materials": [
    {"type": "string", "confidence": 0.0}
  ],
  "description": "short neutral sentence (≤ 20 words)"
}

HARD RULES
- "type" must be one of: plastic, plastic_pet, plastic_hdpe, plastic_pvc, plastic_ldpe, plastic_pp, plastic_ps, aluminum, steel, glass, cardboard, paper, wood, fabric, ceramic.
- "confidence" is a probability in [0,1].
- List at most 5 materials, most likely first. Omit materials you cannot see.
- If no product is visible, return {"materials": [], "description": "no product visible"}.
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

// DescribePrompt asks a vision model for a free-text packaging description
const DescribePrompt = `Describe the packaging of the product in the image in one or two short sentences.
Name the container type, what it appears to be made of, and any recycling marks you can read.
Plain text only.`

// ModelConfig holds settings for the model-backed classifier
type ModelConfig struct {
	Model         string
	Prompt        string
	MinConfidence float64
	// SendFormat, SendSize and SendQuality control the payload sent to the model
	SendFormat  string
	SendSize    int
	SendQuality int
}

// DefaultModelConfig returns defaults for the model-backed classifier
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Model:         "openbmb/minicpm-v4.5",
		Prompt:        DefaultPrompt,
		MinConfidence: ModelThreshold,
		SendFormat:    "jpg",
		SendSize:      1024,
		SendQuality:   85,
	}
}

var errFallbackResponse = errors.New("model returned an unusable response")

// Model classifies materials with a vision language model
type Model struct {
	client    client.VisionClient
	processor *processing.Processor
	config    ModelConfig
	logger    zerolog.Logger
}

// NewModel creates a model-backed classifier with default configuration
func NewModel(visionClient client.VisionClient) *Model {
	return NewModelWithConfig(visionClient, DefaultModelConfig())
}

// NewModelWithConfig creates a model-backed classifier with custom configuration
func NewModelWithConfig(visionClient client.VisionClient, config ModelConfig) *Model {
	if config.Prompt == "" {
		config.Prompt = DefaultPrompt
	}
	return &Model{
		client:    visionClient,
		processor: processing.NewProcessor(),
		config:    config,
		logger:    zerolog.Nop(),
	}
}

// SetLogger sets the logger used to report fallbacks
func (m *Model) SetLogger(logger zerolog.Logger) {
	m.logger = logger
}

// Classify sends the image to the vision model. Transport errors, unusable
// responses and empty images yield FallbackGuess.
func (m *Model) Classify(ctx context.Context, img image.Image) []types.MaterialDetection {
	var detections []types.MaterialDetection
	err := safely(func() error {
		scores, err := m.Scores(ctx, img)
		if err != nil {
			return err
		}
		detections = rank(scores, m.config.MinConfidence, fullImageBox(img))
		return nil
	})
	if err != nil {
		m.logger.Warn().Err(err).Str("model", m.config.Model).Msg("model material detection failed, using fallback guess")
		return FallbackGuess(img)
	}
	return detections
}

// Scores returns the model's confidences restricted to the known vocabulary.
// Repeated tags keep their highest confidence.
func (m *Model) Scores(ctx context.Context, img image.Image) (map[string]float64, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, processing.ErrInvalidImage
	}

	imgB64, err := m.processor.PrepareImageForModel(img, m.config.SendFormat, m.config.SendSize, m.config.SendQuality)
	if err != nil {
		return nil, err
	}

	result, err := m.client.AnalyzeMaterials(ctx, m.config.Model, m.config.Prompt, imgB64)
	if err != nil {
		return nil, err
	}
	if result == nil || result.Fallback {
		return nil, errFallbackResponse
	}

	known := make(map[string]bool, len(Vocabulary))
	for _, v := range Vocabulary {
		known[v] = true
	}

	scores := make(map[string]float64)
	for _, s := range result.Materials {
		tag := strings.ToLower(strings.TrimSpace(s.Type))
		if !known[tag] || s.Confidence < 0 {
			continue
		}
		if s.Confidence > scores[tag] {
			scores[tag] = s.Confidence
		}
	}
	return scores, nil
}

// Describe asks the model for a free-text description of the packaging.
// Unlike Classify it reports failures to the caller.
func (m *Model) Describe(ctx context.Context, img image.Image) (string, error) {
	if img == nil || img.Bounds().Empty() {
		return "", processing.ErrInvalidImage
	}

	imgB64, err := m.processor.PrepareImageForModel(img, m.config.SendFormat, m.config.SendSize, m.config.SendQuality)
	if err != nil {
		return "", err
	}

	text, err := m.client.SimpleQuery(ctx, m.config.Model, DescribePrompt, imgB64)
	if err != nil {
		return "", fmt.Errorf("describe failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}
