package filter

import (
	"github.com/gogpu/g2d/internal/image"
)

// BlurFilter applies a separable Gaussian blur.
// The vertical pass runs first, then the horizontal pass; each costs
// O(ceil(radius)) taps per pixel. Reads past the frame edge clamp.
type BlurFilter struct {
	// Radius is the blur radius in pixels.
	Radius float32
}

// NewBlurFilter creates a new blur filter.
func NewBlurFilter(radius float32) *BlurFilter {
	return &BlurFilter{Radius: radius}
}

// Apply implements Effect.
func (f *BlurFilter) Apply(src, dst *image.Frame, _ Env) error {
	return Blur(src, dst, f.Radius)
}

// Blur blurs src into dst. A radius whose ceiling is at most 1 copies src.
func Blur(src, dst *image.Frame, radius float32) error {
	if !src.SameSize(dst) {
		return image.ErrSizeMismatch
	}
	weights := CachedGaussianWeights(radius)
	if len(weights) == 1 {
		return dst.CopyFrom(src)
	}

	temp, err := framePool.Get(src.Width(), src.Height())
	if err != nil {
		return err
	}
	defer framePool.Put(temp)

	blurVertical(src, temp, weights, nil)
	blurHorizontal(temp, dst, weights)
	return nil
}

// gateFunc scales a source texel before it enters the kernel.
type gateFunc func(image.RGBA) image.RGBA

// blurVertical convolves every column of src into dst.
func blurVertical(src, dst *image.Frame, weights []float32, gate gateFunc) {
	w, h := src.Width(), src.Height()
	norm := 1 / WeightSum(weights)
	at := func(x, y int) image.RGBA {
		c := src.AtClamped(x, y)
		if gate != nil {
			c = gate(c)
		}
		return c
	}
	for y := range h {
		row := dst.Row(y)
		for x := range w {
			sum := at(x, y)
			for i := 1; i < len(weights); i++ {
				k := weights[i]
				sum = sum.Add(at(x, y+i).Scale(k)).Add(at(x, y-i).Scale(k))
			}
			row[x] = sum.Scale(norm)
		}
	}
}

// blurHorizontal convolves every row of src into dst.
func blurHorizontal(src, dst *image.Frame, weights []float32) {
	w, h := src.Width(), src.Height()
	norm := 1 / WeightSum(weights)
	for y := range h {
		row := dst.Row(y)
		for x := range w {
			sum := src.AtClamped(x, y)
			for i := 1; i < len(weights); i++ {
				k := weights[i]
				sum = sum.Add(src.AtClamped(x+i, y).Scale(k)).Add(src.AtClamped(x-i, y).Scale(k))
			}
			row[x] = sum.Scale(norm)
		}
	}
}

// framePool recycles scratch frames between passes.
var framePool = image.NewPool(4)
