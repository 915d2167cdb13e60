package filter

import (
	"math"

	"github.com/gogpu/g2d/internal/image"
	"github.com/gogpu/g2d/internal/shade"
)

// PosterizeFilter quantizes colours in a gamma-adjusted space:
// c' = pow(round(pow(c, Gamma) * Levels) / Levels, 1/Gamma).
// Quantization runs on straight colour; alpha is kept. Pixels with alpha
// below 1/512 are dropped.
type PosterizeFilter struct {
	Levels float32
	Gamma  float32
}

// Apply implements Effect.
func (f *PosterizeFilter) Apply(src, dst *image.Frame, _ Env) error {
	if !src.SameSize(dst) {
		return image.ErrSizeMismatch
	}
	levels := float64(f.Levels)
	gamma := float64(f.Gamma)
	q := func(v float32) float32 {
		p := math.Pow(math.Max(float64(v), 0), gamma)
		p = math.Round(p*levels) / levels
		return float32(math.Pow(p, 1/gamma))
	}
	s, d := src.Pix(), dst.Pix()
	for i, c := range s {
		if c.A < shade.MinAlpha {
			d[i] = image.Transparent
			continue
		}
		st := c.Straight()
		d[i] = image.RGBA{R: q(st.R), G: q(st.G), B: q(st.B), A: c.A}.Clamp().Premultiply()
	}
	return nil
}
