package filter

import (
	"math"

	"github.com/gogpu/g2d/internal/blend"
	"github.com/gogpu/g2d/internal/image"
)

// DropShadowFilter creates a drop shadow effect beneath an image.
// The algorithm:
//  1. Extract the alpha channel from the source
//  2. Blur it with the Gaussian kernel
//  3. Offset it and scale it by Opacity
//  4. Composite the source over the black shadow
type DropShadowFilter struct {
	// Radius is the shadow blur radius in pixels.
	Radius float32

	// OffsetX and OffsetY move the shadow, in pixels.
	OffsetX, OffsetY float32

	// Opacity scales the shadow alpha.
	Opacity float32
}

// NewDropShadowFilter creates a new drop shadow filter.
func NewDropShadowFilter(offsetX, offsetY, radius, opacity float32) *DropShadowFilter {
	return &DropShadowFilter{
		OffsetX: offsetX,
		OffsetY: offsetY,
		Radius:  radius,
		Opacity: opacity,
	}
}

// Apply implements Effect.
func (f *DropShadowFilter) Apply(src, dst *image.Frame, _ Env) error {
	if !src.SameSize(dst) {
		return image.ErrSizeMismatch
	}
	w, h := src.Width(), src.Height()

	alpha, err := framePool.Get(w, h)
	if err != nil {
		return err
	}
	defer framePool.Put(alpha)
	extractAlpha(src, alpha)

	blurred, err := framePool.Get(w, h)
	if err != nil {
		return err
	}
	defer framePool.Put(blurred)
	if err := Blur(alpha, blurred, f.Radius); err != nil {
		return err
	}

	ox := int(math.Round(float64(f.OffsetX)))
	oy := int(math.Round(float64(f.OffsetY)))
	for y := range h {
		row := dst.Row(y)
		srow := src.Row(y)
		for x := range w {
			var a float32
			if sx, sy := x-ox, y-oy; blurred.In(sx, sy) {
				a = blurred.At(sx, sy).A * f.Opacity
			}
			row[x] = blend.Under(srow[x], image.RGBA{A: a})
		}
	}
	return nil
}

// extractAlpha copies only the alpha channel of src into dst.
func extractAlpha(src, dst *image.Frame) {
	s, d := src.Pix(), dst.Pix()
	for i := range s {
		d[i] = image.RGBA{A: s[i].A}
	}
}
