package vision

// Scores maps a material tag to a heuristic score in roughly [0, 0.9]
type Scores map[string]float64

// Extractor turns a frame into per-material heuristic scores.
// Implementations are pure and safe for concurrent use.
type Extractor interface {
	Name() string
	Extract(f *Frame) (Scores, error)
}

// Extractor names, used as fusion weight keys
const (
	TextureName = "texture"
	ColorName   = "color"
	EdgeName    = "edge"
)

// DefaultExtractors returns the texture, color and edge extractors with default settings
func DefaultExtractors() []Extractor {
	return []Extractor{
		NewTextureExtractor(),
		NewColorExtractor(),
		NewEdgeExtractor(),
	}
}
