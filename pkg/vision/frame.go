package vision

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

var (
	// ErrEmptyImage indicates a nil or zero-size image.
	ErrEmptyImage = constError("empty image")

	// ErrNoSignal indicates an image without any luminance (every pixel black).
	ErrNoSignal = constError("image carries no signal")
)

// Frame holds the derived 8-bit representations the extractors work on.
// Gray is in [0,255]; Hue is in [0,180), Sat and Val in [0,255].
type Frame struct {
	Width  int
	Height int
	Gray   []float64
	Hue    []float64
	Sat    []float64
	Val    []float64
}

// NewFrame derives grayscale and HSV planes from img. Images whose long side
// exceeds maxDim are downscaled first; maxDim <= 0 disables downscaling.
func NewFrame(img image.Image, maxDim int) (*Frame, error) {
	if img == nil {
		return nil, ErrEmptyImage
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, ErrEmptyImage
	}

	if maxDim > 0 && (bounds.Dx() > maxDim || bounds.Dy() > maxDim) {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
		bounds = img.Bounds()
	}

	width, height := bounds.Dx(), bounds.Dy()
	n := width * height
	f := &Frame{
		Width:  width,
		Height: height,
		Gray:   make([]float64, n),
		Hue:    make([]float64, n),
		Sat:    make([]float64, n),
		Val:    make([]float64, n),
	}

	var maxVal float64
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			rf := float64(r >> 8)
			gf := float64(g >> 8)
			bf := float64(b >> 8)

			i := y*width + x
			f.Gray[i] = math.Round(0.299*rf + 0.587*gf + 0.114*bf)
			f.Hue[i], f.Sat[i], f.Val[i] = rgbToHSV(rf, gf, bf)
			if f.Val[i] > maxVal {
				maxVal = f.Val[i]
			}
		}
	}

	if maxVal == 0 {
		return nil, ErrNoSignal
	}

	return f, nil
}

// rgbToHSV converts 8-bit RGB to 8-bit HSV with hue halved into [0,180).
func rgbToHSV(r, g, b float64) (h, s, v float64) {
	v = math.Max(r, math.Max(g, b))
	lo := math.Min(r, math.Min(g, b))
	diff := v - lo

	if v > 0 {
		s = 255 * diff / v
	}

	if diff > 0 {
		switch v {
		case r:
			h = 60 * (g - b) / diff
		case g:
			h = 120 + 60*(b-r)/diff
		default:
			h = 240 + 60*(r-g)/diff
		}
		if h < 0 {
			h += 360
		}
	}

	h = math.Round(h / 2)
	if h >= 180 {
		h -= 180
	}
	return h, math.Round(s), v
}

// at returns the gray value at (x, y) with reflect-101 borders
func (f *Frame) at(x, y int) float64 {
	return f.Gray[reflect101(y, f.Height)*f.Width+reflect101(x, f.Width)]
}

func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

// convolve3x3 applies a 3x3 kernel over the gray plane
func (f *Frame) convolve3x3(k [3][3]float64) []float64 {
	out := make([]float64, len(f.Gray))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			var sum float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					w := k[ky+1][kx+1]
					if w != 0 {
						sum += w * f.at(x+kx, y+ky)
					}
				}
			}
			out[y*f.Width+x] = sum
		}
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// variance is the population variance
func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(values))
}
