package filter

import (
	"math"

	"github.com/gogpu/g2d/internal/image"
)

// PunchFilter distorts the frame radially about its centre. A texel at
// normalized distance r (1 at the nearest frame edge) is fetched from
// distance r^Factor, so factors below 1 pull the image inwards and factors
// above 1 push it outwards.
type PunchFilter struct {
	Factor float32
}

// Apply implements Effect.
func (f *PunchFilter) Apply(src, dst *image.Frame, _ Env) error {
	if !src.SameSize(dst) {
		return image.ErrSizeMismatch
	}
	w, h := src.Width(), src.Height()
	cx, cy := float64(w)/2, float64(h)/2
	scale := math.Min(cx, cy)
	factor := float64(f.Factor)
	for y := range h {
		row := dst.Row(y)
		for x := range w {
			dx := (float64(x) + 0.5 - cx) / scale
			dy := (float64(y) + 0.5 - cy) / scale
			r := math.Hypot(dx, dy)
			k := 1.0
			if r > 0 {
				k = math.Pow(r, factor) / r
			}
			sx := float32(cx + dx*k*scale)
			sy := float32(cy + dy*k*scale)
			if sx < 0 || sy < 0 || sx >= float32(w) || sy >= float32(h) {
				row[x] = image.Transparent
				continue
			}
			row[x] = src.SamplePixel(sx, sy, image.InterpBilinear)
		}
	}
	return nil
}
