package vision

import "math"

// EdgeConfig holds Canny, Hough and scoring thresholds
type EdgeConfig struct {
	LowThreshold   float64
	HighThreshold  float64
	HoughVotes     int
	MinLineLength  float64
	MaxLineGap     int
	HighDensity    float64
	MediumDensity  float64
	StructureLines int
}

// EdgeStats are the raw edge measurements of a frame
type EdgeStats struct {
	Density float64
	Lines   int
}

// EdgeExtractor scores materials from edge density and straight-line structure
type EdgeExtractor struct {
	config EdgeConfig
}

// NewEdgeExtractor creates an edge extractor with default thresholds
func NewEdgeExtractor() *EdgeExtractor {
	return &EdgeExtractor{
		config: EdgeConfig{
			LowThreshold:   50,
			HighThreshold:  150,
			HoughVotes:     50,
			MinLineLength:  30,
			MaxLineGap:     10,
			HighDensity:    0.1,
			MediumDensity:  0.05,
			StructureLines: 10,
		},
	}
}

// NewEdgeExtractorWithConfig creates an edge extractor with custom thresholds
func NewEdgeExtractorWithConfig(config EdgeConfig) *EdgeExtractor {
	return &EdgeExtractor{config: config}
}

// Name identifies the extractor in score breakdowns
func (e *EdgeExtractor) Name() string { return EdgeName }

// Measure runs edge detection and line detection on a frame
func (e *EdgeExtractor) Measure(f *Frame) EdgeStats {
	edges := e.Canny(f)

	count := 0
	for _, on := range edges {
		if on {
			count++
		}
	}

	return EdgeStats{
		Density: float64(count) / float64(f.Width*f.Height),
		Lines:   e.countLines(edges, f.Width, f.Height),
	}
}

// Extract scores materials from edge density and straight line count
func (e *EdgeExtractor) Extract(f *Frame) (Scores, error) {
	if f == nil || len(f.Gray) == 0 {
		return nil, ErrEmptyImage
	}
	return e.Score(e.Measure(f)), nil
}

// Score maps edge measurements to material scores
func (e *EdgeExtractor) Score(s EdgeStats) Scores {
	scores := Scores{}

	switch {
	case s.Density > e.config.HighDensity:
		if s.Lines > e.config.StructureLines {
			scores["cardboard"] = 0.8 // structured packaging
		} else {
			scores["fabric"] = 0.6 // irregular edges
		}
	case s.Density > e.config.MediumDensity:
		scores["plastic"] = 0.7
		scores["paper"] = 0.5
	default:
		scores["glass"] = 0.8
		scores["aluminum"] = 0.7
	}

	return scores
}

// Canny returns the edge map of a frame: Sobel gradients with L1 magnitude,
// non-maximum suppression and hysteresis thresholding. Border pixels are never edges.
func (e *EdgeExtractor) Canny(f *Frame) []bool {
	w, h := f.Width, f.Height
	mag := make([]float64, w*h)
	dir := make([]uint8, w*h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := (f.at(x+1, y-1) + 2*f.at(x+1, y) + f.at(x+1, y+1)) -
				(f.at(x-1, y-1) + 2*f.at(x-1, y) + f.at(x-1, y+1))
			gy := (f.at(x-1, y+1) + 2*f.at(x, y+1) + f.at(x+1, y+1)) -
				(f.at(x-1, y-1) + 2*f.at(x, y-1) + f.at(x+1, y-1))

			i := y*w + x
			mag[i] = math.Abs(gx) + math.Abs(gy)
			dir[i] = quantizeDirection(gx, gy)
		}
	}

	// 0 none, 1 weak, 2 strong
	state := make([]uint8, w*h)
	var stack []int

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			m := mag[i]
			if m <= e.config.LowThreshold {
				continue
			}

			var before, after float64
			switch dir[i] {
			case 0: // horizontal gradient
				before, after = mag[i-1], mag[i+1]
			case 1: // 45 degrees
				before, after = mag[i-w+1], mag[i+w-1]
			case 2: // vertical gradient
				before, after = mag[i-w], mag[i+w]
			default: // 135 degrees
				before, after = mag[i-w-1], mag[i+w+1]
			}
			if !(m >= before && m > after) {
				continue
			}

			if m > e.config.HighThreshold {
				state[i] = 2
				stack = append(stack, i)
			} else {
				state[i] = 1
			}
		}
	}

	// Hysteresis: promote weak pixels 8-connected to a strong one
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if state[j] == 1 {
					state[j] = 2
					stack = append(stack, j)
				}
			}
		}
	}

	edges := make([]bool, w*h)
	for i, s := range state {
		edges[i] = s == 2
	}
	return edges
}

// quantizeDirection buckets a gradient direction into 0, 45, 90 or 135 degrees
func quantizeDirection(gx, gy float64) uint8 {
	angle := math.Atan2(gy, gx) * 180 / math.Pi
	if angle < 0 {
		angle += 180
	}
	switch {
	case angle < 22.5 || angle >= 157.5:
		return 0
	case angle < 67.5:
		return 1
	case angle < 112.5:
		return 2
	default:
		return 3
	}
}

// countLines finds straight segments with a deterministic Hough transform.
// Accumulator peaks with enough votes are traced back over the edge map and
// every run of edge pixels at least MinLineLength long (bridging gaps up to
// MaxLineGap) counts as one line.
func (e *EdgeExtractor) countLines(edges []bool, w, h int) int {
	const thetaSteps = 180

	diag := int(math.Ceil(math.Hypot(float64(w), float64(h))))
	rhoSize := 2*diag + 1

	sins := make([]float64, thetaSteps)
	coss := make([]float64, thetaSteps)
	for t := 0; t < thetaSteps; t++ {
		rad := float64(t) * math.Pi / thetaSteps
		sins[t] = math.Sin(rad)
		coss[t] = math.Cos(rad)
	}

	acc := make([]int, thetaSteps*rhoSize)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !edges[y*w+x] {
				continue
			}
			for t := 0; t < thetaSteps; t++ {
				rho := int(math.Round(float64(x)*coss[t]+float64(y)*sins[t])) + diag
				acc[t*rhoSize+rho]++
			}
		}
	}

	lines := 0
	for t := 0; t < thetaSteps; t++ {
		for r := 0; r < rhoSize; r++ {
			votes := acc[t*rhoSize+r]
			if votes < e.config.HoughVotes || !isPeak(acc, t, r, thetaSteps, rhoSize) {
				continue
			}
			lines += e.traceSegments(edges, w, h, coss[t], sins[t], float64(r-diag))
		}
	}
	return lines
}

// isPeak reports whether a cell is a local maximum; ties go to the earlier cell.
func isPeak(acc []int, t, r, thetaSteps, rhoSize int) bool {
	v := acc[t*rhoSize+r]
	for dt := -1; dt <= 1; dt++ {
		for dr := -1; dr <= 1; dr++ {
			if dt == 0 && dr == 0 {
				continue
			}
			nt, nr := t+dt, r+dr
			if nt < 0 || nt >= thetaSteps || nr < 0 || nr >= rhoSize {
				continue
			}
			n := acc[nt*rhoSize+nr]
			if n > v || (n == v && (dt < 0 || (dt == 0 && dr < 0))) {
				return false
			}
		}
	}
	return true
}

// traceSegments walks the line x*cos + y*sin = rho across the image and
// counts edge runs long enough to be a line.
func (e *EdgeExtractor) traceSegments(edges []bool, w, h int, cos, sin, rho float64) int {
	// Step along the axis the line is most aligned with
	steep := math.Abs(sin) < math.Abs(cos)
	n := w
	if steep {
		n = h
	}

	segments := 0
	start, last := -1, -1
	var sx, sy, lx, ly int

	flush := func() {
		if start >= 0 && math.Hypot(float64(lx-sx), float64(ly-sy))+1 >= e.config.MinLineLength {
			segments++
		}
		start, last = -1, -1
	}

	for s := 0; s < n; s++ {
		var x, y int
		if steep {
			y = s
			x = int(math.Round((rho - float64(y)*sin) / cos))
		} else {
			x = s
			y = int(math.Round((rho - float64(x)*cos) / sin))
		}
		if x < 0 || y < 0 || x >= w || y >= h || !edges[y*w+x] {
			continue
		}
		if start >= 0 && s-last > e.config.MaxLineGap+1 {
			flush()
		}
		if start < 0 {
			start, sx, sy = s, x, y
		}
		last, lx, ly = s, x, y
	}
	flush()

	return segments
}
