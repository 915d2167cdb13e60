package filter

import (
	"github.com/gogpu/g2d/internal/blend"
	"github.com/gogpu/g2d/internal/image"
)

// OutlineFilter draws a one pixel ring of Color around opaque content.
// The ring is the source alpha dilated by one pixel; the source is
// composited atop it.
type OutlineFilter struct {
	Color image.RGBA // straight alpha
}

// Apply implements Effect.
func (f *OutlineFilter) Apply(src, dst *image.Frame, _ Env) error {
	if !src.SameSize(dst) {
		return image.ErrSizeMismatch
	}
	w, h := src.Width(), src.Height()
	for y := range h {
		row := dst.Row(y)
		for x := range w {
			var ring float32
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if src.In(x+dx, y+dy) {
						ring = max(ring, src.At(x+dx, y+dy).A)
					}
				}
			}
			under := f.Color
			under.A *= ring
			top := src.At(x, y).Straight()
			row[x] = blend.Atop(top, under).Premultiply()
		}
	}
	return nil
}
