package filter

import (
	"math"

	"github.com/gogpu/g2d/internal/color"
	"github.com/gogpu/g2d/internal/image"
)

// BloomFilter adds a selective glow: bright pixels are blurred and added
// back over the source.
//
// The gate scales each texel by lum^Gamma, lum = dot(rgb, (0.3, 0.6, 0.1)),
// so higher gammas restrict the glow to the brightest areas.
type BloomFilter struct {
	Radius    float32
	Gamma     float32
	Intensity float32
}

// Apply implements Effect.
func (f *BloomFilter) Apply(src, dst *image.Frame, _ Env) error {
	if !src.SameSize(dst) {
		return image.ErrSizeMismatch
	}
	if err := dst.CopyFrom(src); err != nil {
		return err
	}
	weights := CachedGaussianWeights(f.Radius)

	a, err := framePool.Get(src.Width(), src.Height())
	if err != nil {
		return err
	}
	defer framePool.Put(a)
	b, err := framePool.Get(src.Width(), src.Height())
	if err != nil {
		return err
	}
	defer framePool.Put(b)

	gamma := float64(f.Gamma)
	blurVertical(src, a, weights, func(c image.RGBA) image.RGBA {
		s := c.Straight()
		lum := max(color.Luminance(s.R, s.G, s.B), 0)
		return c.Scale(float32(math.Pow(float64(lum), gamma)))
	})
	blurHorizontal(a, b, weights)

	d, g := dst.Pix(), b.Pix()
	for i := range d {
		d[i] = d[i].Add(g[i].Scale(f.Intensity)).Clamp()
	}
	return nil
}
