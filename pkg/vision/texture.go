package vision

import "math"

var (
	laplacianKernel = [3][3]float64{
		{0, 1, 0},
		{1, -4, 1},
		{0, 1, 0},
	}
	patternKernel = [3][3]float64{
		{1, 1, 1},
		{1, -8, 1},
		{1, 1, 1},
	}
)

// TextureConfig holds the texture thresholds
type TextureConfig struct {
	HighVariance   float64
	MediumVariance float64
	PatternSpread  float64
}

// TextureStats are the raw texture measurements of a frame
type TextureStats struct {
	LaplacianVariance float64
	PatternStd        float64
}

// TextureExtractor scores materials from surface texture
type TextureExtractor struct {
	config TextureConfig
}

// NewTextureExtractor creates a texture extractor with default thresholds
func NewTextureExtractor() *TextureExtractor {
	return &TextureExtractor{
		config: TextureConfig{
			HighVariance:   1000,
			MediumVariance: 100,
			PatternSpread:  50,
		},
	}
}

// NewTextureExtractorWithConfig creates a texture extractor with custom thresholds
func NewTextureExtractorWithConfig(config TextureConfig) *TextureExtractor {
	return &TextureExtractor{config: config}
}

// Name identifies the extractor in score breakdowns
func (e *TextureExtractor) Name() string { return TextureName }

// Measure computes the Laplacian variance and local pattern spread of a frame
func (e *TextureExtractor) Measure(f *Frame) TextureStats {
	return TextureStats{
		LaplacianVariance: variance(f.convolve3x3(laplacianKernel)),
		PatternStd:        math.Sqrt(variance(f.convolve3x3(patternKernel))),
	}
}

// Extract scores corrugated/woven, detailed, medium and smooth surfaces
func (e *TextureExtractor) Extract(f *Frame) (Scores, error) {
	if f == nil || len(f.Gray) == 0 {
		return nil, ErrEmptyImage
	}
	return e.Score(e.Measure(f)), nil
}

// Score maps texture measurements to material scores
func (e *TextureExtractor) Score(s TextureStats) Scores {
	scores := Scores{}

	switch {
	case s.LaplacianVariance > e.config.HighVariance:
		if s.PatternStd > e.config.PatternSpread {
			scores["cardboard"] = 0.7 // corrugated
			scores["fabric"] = 0.5    // woven
		} else {
			scores["plastic"] = 0.6
		}
	case s.LaplacianVariance > e.config.MediumVariance:
		scores["paper"] = 0.6
		scores["wood"] = 0.4
	default:
		scores["glass"] = 0.7
		scores["aluminum"] = 0.6
		scores["plastic"] = 0.5
	}

	return scores
}
