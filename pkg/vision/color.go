package vision

// ColorStats are the mean HSV values of a frame
type ColorStats struct {
	Hue        float64
	Saturation float64
	Value      float64
}

// ColorExtractor scores materials from average hue, saturation and brightness
type ColorExtractor struct{}

// NewColorExtractor creates a color extractor
func NewColorExtractor() *ColorExtractor {
	return &ColorExtractor{}
}

// Name identifies the extractor in score breakdowns
func (e *ColorExtractor) Name() string { return ColorName }

// Measure computes mean hue, saturation and value
func (e *ColorExtractor) Measure(f *Frame) ColorStats {
	return ColorStats{
		Hue:        mean(f.Hue),
		Saturation: mean(f.Sat),
		Value:      mean(f.Val),
	}
}

// Extract scores materials from the frame's color profile
func (e *ColorExtractor) Extract(f *Frame) (Scores, error) {
	if f == nil || len(f.Val) == 0 {
		return nil, ErrEmptyImage
	}
	return e.Score(e.Measure(f)), nil
}

// Score maps color statistics to material scores. Rules are independent and
// may all contribute.
func (e *ColorExtractor) Score(s ColorStats) Scores {
	scores := Scores{}

	// Metallic: low saturation, medium-high value
	if s.Saturation < 50 && s.Value > 100 {
		if s.Value > 200 {
			scores["aluminum"] = 0.8
		} else {
			scores["steel"] = 0.6
		}
	}

	if s.Value > 150 && s.Saturation < 80 {
		scores["glass"] = 0.7
	}

	if s.Saturation > 30 && s.Saturation < 200 {
		scores["plastic_pet"] = 0.6
		scores["plastic_hdpe"] = 0.5
	}

	// Brown, yellow and red hues
	if (s.Hue >= 10 && s.Hue <= 30) || s.Hue >= 150 {
		scores["cardboard"] = 0.7
		scores["paper"] = 0.6
	}

	return scores
}
