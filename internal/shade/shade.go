// Package shade implements the fragment programs.
//
// A program receives the interpolated texture coordinate and premultiplied
// colour of one fragment and returns the colour to blend, or false to
// discard the fragment. The GPU backend runs WGSL versions of the same
// programs; these are what the software rasterizer calls.
package shade

import (
	"github.com/gogpu/g2d/internal/geom"
	"github.com/gogpu/g2d/internal/image"
)

// MinAlpha is the alpha below which quantizing programs discard.
const MinAlpha = 1.0 / 512

// Fragment is the interpolated input of one fragment.
type Fragment struct {
	UV    geom.Vec2
	Color image.RGBA // premultiplied
}

// Program shades one fragment. ok is false when the fragment is discarded
// and nothing may be written.
type Program interface {
	Shade(f Fragment) (c image.RGBA, ok bool)
}

// ProgramFunc adapts a function to Program.
type ProgramFunc func(f Fragment) (image.RGBA, bool)

// Shade calls fn.
func (fn ProgramFunc) Shade(f Fragment) (image.RGBA, bool) { return fn(f) }

// Solid outputs the vertex colour. Used for fills and lines.
type Solid struct{}

// Shade implements Program.
func (Solid) Shade(f Fragment) (image.RGBA, bool) { return f.Color, true }

// Textured samples the atlas page at the fragment's UV and multiplies by
// the vertex colour. A nil Texture behaves as opaque white.
type Textured struct {
	Texture *image.Frame
	Filter  image.InterpolationMode
}

// Shade implements Program.
func (p Textured) Shade(f Fragment) (image.RGBA, bool) {
	if p.Texture == nil {
		return f.Color, true
	}
	return p.Texture.Sample(f.UV.X, f.UV.Y, p.Filter).Mul(f.Color), true
}

// Glyph uses only the texture's alpha channel as coverage.
type Glyph struct {
	Texture *image.Frame
	Filter  image.InterpolationMode
}

// Shade implements Program.
func (p Glyph) Shade(f Fragment) (image.RGBA, bool) {
	if p.Texture == nil {
		return f.Color, true
	}
	cov := p.Texture.Sample(f.UV.X, f.UV.Y, p.Filter).A
	return f.Color.Scale(cov), true
}
