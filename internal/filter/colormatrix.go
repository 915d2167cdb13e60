package filter

import (
	"github.com/gogpu/g2d/internal/color"
	"github.com/gogpu/g2d/internal/image"
)

// ColorMatrixFilter applies a 4x4 colour matrix in linear light.
//
// Each pixel is un-premultiplied, converted from sRGB to linear, multiplied
// by the matrix, converted back to sRGB and premultiplied again. Fully
// transparent pixels stay transparent.
type ColorMatrixFilter struct {
	// Matrix is row-major: [0-3] produce R, [4-7] G, [8-11] B, [12-15] A.
	Matrix color.Matrix
}

// NewColorMatrixFilter creates a color matrix filter with the given matrix.
func NewColorMatrixFilter(matrix [16]float32) *ColorMatrixFilter {
	return &ColorMatrixFilter{Matrix: matrix}
}

// NewIdentityColorMatrix creates a color matrix filter that passes through unchanged.
func NewIdentityColorMatrix() *ColorMatrixFilter {
	return &ColorMatrixFilter{Matrix: color.Identity()}
}

// NewGreyscaleFilter desaturates by amount in [0, 1].
func NewGreyscaleFilter(amount float32) *ColorMatrixFilter {
	return &ColorMatrixFilter{Matrix: color.Greyscale(amount)}
}

// NewSepiaFilter applies a sepia tone by amount in [0, 1].
func NewSepiaFilter(amount float32) *ColorMatrixFilter {
	return &ColorMatrixFilter{Matrix: color.Sepia(amount)}
}

// Apply implements Effect.
func (f *ColorMatrixFilter) Apply(src, dst *image.Frame, _ Env) error {
	if !src.SameSize(dst) {
		return image.ErrSizeMismatch
	}
	if f.Matrix == color.Identity() {
		return dst.CopyFrom(src)
	}
	s, d := src.Pix(), dst.Pix()
	for i, c := range s {
		if c.A <= 0 {
			d[i] = image.Transparent
			continue
		}
		lin := color.ToLinear(c.Straight().Array())
		out := color.ToSRGB(f.Matrix.Apply(lin))
		d[i] = image.FromArray(out).Clamp().Premultiply()
	}
	return nil
}
