// Package material classifies packaging materials from product images.
//
// Two interchangeable classifiers share one contract: Heuristic fuses the
// texture, color and edge extractors from pkg/vision, Model asks a vision
// language model. Both return at most MaxResults detections sorted by
// confidence and never fail: internal errors degrade to a fixed guess.
package material

import (
	"context"
	"fmt"
	"image"
	"sort"

	"github.com/menta2k/carbon-analyzer/pkg/types"
)

const (
	// MaxResults is the number of detections a classifier returns at most
	MaxResults = 3

	// MaxConfidence caps every reported confidence
	MaxConfidence = 0.95

	// HeuristicThreshold is the minimum confidence kept by the rule-based path
	HeuristicThreshold = 0.3

	// ModelThreshold is the minimum confidence kept by the model path
	ModelThreshold = 0.5
)

// Classifier detects materials in an image
type Classifier interface {
	Classify(ctx context.Context, img image.Image) []types.MaterialDetection
}

// FallbackGuess returns the fixed guess used when classification fails,
// sized to the image (a nil image gets an empty box). Every entry carries
// Fallback so callers can tell it from a real detection.
func FallbackGuess(img image.Image) []types.MaterialDetection {
	box := fullImageBox(img)
	return []types.MaterialDetection{
		{
			MaterialType: "plastic",
			Confidence:   0.4,
			BoundingBox:  box,
			Properties:   Properties("plastic"),
			Fallback:     true,
		},
		{
			MaterialType: "cardboard",
			Confidence:   0.3,
			BoundingBox:  box,
			Properties:   Properties("cardboard"),
			Fallback:     true,
		},
	}
}

func fullImageBox(img image.Image) types.BoundingBox {
	if img == nil {
		return types.BoundingBox{}
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return types.BoundingBox{X: 0, Y: 0, W: w, H: h}
}

// rank filters scores strictly above threshold, caps them, attaches
// properties and returns the top results sorted by confidence.
func rank(scores map[string]float64, threshold float64, box types.BoundingBox) []types.MaterialDetection {
	detections := make([]types.MaterialDetection, 0, len(scores))
	for materialType, confidence := range scores {
		if confidence > MaxConfidence {
			confidence = MaxConfidence
		}
		if confidence <= threshold {
			continue
		}
		detections = append(detections, types.MaterialDetection{
			MaterialType: materialType,
			Confidence:   confidence,
			BoundingBox:  box,
			Properties:   Properties(materialType),
		})
	}

	// Ties are ordered by tag so results do not depend on map iteration
	sort.Slice(detections, func(i, j int) bool {
		if detections[i].Confidence != detections[j].Confidence {
			return detections[i].Confidence > detections[j].Confidence
		}
		return detections[i].MaterialType < detections[j].MaterialType
	})

	if len(detections) > MaxResults {
		detections = detections[:MaxResults]
	}
	return detections
}

// safely runs fn and converts a panic into an error
func safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("classification panic: %v", r)
		}
	}()
	return fn()
}
