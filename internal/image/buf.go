// Package image provides the framebuffer type shared by the rasterizer,
// the post-processing filters and the GPU readback path.
//
// A Frame stores premultiplied RGBA as float32 quadruples in row-major
// order. Float storage keeps multi-pass effect chains free of the banding
// that repeated 8-bit round trips introduce.
package image

import (
	"errors"
	"math"
)

// Common errors for frame operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("image: invalid dimensions")

	// ErrSizeMismatch is returned when two frames must share dimensions and do not.
	ErrSizeMismatch = errors.New("image: frame size mismatch")
)

// RGBA is a premultiplied colour with float32 components in [0, 1].
type RGBA struct {
	R, G, B, A float32
}

// Transparent is the zero colour.
var Transparent = RGBA{}

// Straight returns the colour with alpha divided out.
// Colours with zero alpha return Transparent.
func (c RGBA) Straight() RGBA {
	if c.A <= 0 {
		return Transparent
	}
	inv := 1 / c.A
	return RGBA{R: c.R * inv, G: c.G * inv, B: c.B * inv, A: c.A}
}

// Premultiply treats c as a straight colour and scales RGB by alpha.
func (c RGBA) Premultiply() RGBA {
	return RGBA{R: c.R * c.A, G: c.G * c.A, B: c.B * c.A, A: c.A}
}

// Scale multiplies every channel by k.
func (c RGBA) Scale(k float32) RGBA {
	return RGBA{R: c.R * k, G: c.G * k, B: c.B * k, A: c.A * k}
}

// Mul multiplies channel-wise.
func (c RGBA) Mul(o RGBA) RGBA {
	return RGBA{R: c.R * o.R, G: c.G * o.G, B: c.B * o.B, A: c.A * o.A}
}

// Add adds channel-wise.
func (c RGBA) Add(o RGBA) RGBA {
	return RGBA{R: c.R + o.R, G: c.G + o.G, B: c.B + o.B, A: c.A + o.A}
}

// Over composites c over dst (both premultiplied).
func (c RGBA) Over(dst RGBA) RGBA {
	k := 1 - c.A
	return RGBA{R: c.R + dst.R*k, G: c.G + dst.G*k, B: c.B + dst.B*k, A: c.A + dst.A*k}
}

// Clamp limits every channel to [0, 1].
func (c RGBA) Clamp() RGBA {
	return RGBA{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B), A: clamp01(c.A)}
}

// Finite reports whether no channel is NaN or infinite.
func (c RGBA) Finite() bool {
	for _, v := range [4]float32{c.R, c.G, c.B, c.A} {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// Array returns the channels as [r g b a].
func (c RGBA) Array() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

// FromArray builds an RGBA from [r g b a].
func FromArray(v [4]float32) RGBA {
	return RGBA{R: v[0], G: v[1], B: v[2], A: v[3]}
}

// Frame is a premultiplied float32 RGBA framebuffer.
//
// Frames are not safe for concurrent mutation.
type Frame struct {
	pix    []RGBA
	width  int
	height int
}

// NewFrame creates a transparent frame.
func NewFrame(width, height int) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	return &Frame{
		pix:    make([]RGBA, width*height),
		width:  width,
		height: height,
	}, nil
}

// MustFrame is NewFrame for sizes known to be valid.
func MustFrame(width, height int) *Frame {
	f, err := NewFrame(width, height)
	if err != nil {
		panic(err)
	}
	return f
}

// Width returns the frame width in pixels.
func (f *Frame) Width() int { return f.width }

// Height returns the frame height in pixels.
func (f *Frame) Height() int { return f.height }

// Bounds returns width and height.
func (f *Frame) Bounds() (int, int) { return f.width, f.height }

// Pix returns the backing pixel slice, row-major.
func (f *Frame) Pix() []RGBA { return f.pix }

// Row returns the pixels of row y.
func (f *Frame) Row(y int) []RGBA {
	return f.pix[y*f.width : (y+1)*f.width]
}

// In reports whether (x, y) lies inside the frame.
func (f *Frame) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < f.width && y < f.height
}

// At returns the pixel at (x, y), or Transparent when out of bounds.
func (f *Frame) At(x, y int) RGBA {
	if !f.In(x, y) {
		return Transparent
	}
	return f.pix[y*f.width+x]
}

// AtClamped returns the pixel at (x, y) with coordinates clamped to the edge.
func (f *Frame) AtClamped(x, y int) RGBA {
	x = clamp(x, 0, f.width-1)
	y = clamp(y, 0, f.height-1)
	return f.pix[y*f.width+x]
}

// Set writes the pixel at (x, y). Out-of-bounds writes are ignored.
func (f *Frame) Set(x, y int, c RGBA) {
	if !f.In(x, y) {
		return
	}
	f.pix[y*f.width+x] = c
}

// Clear sets every pixel to transparent.
func (f *Frame) Clear() {
	clear(f.pix)
}

// Fill sets every pixel to c.
func (f *Frame) Fill(c RGBA) {
	for i := range f.pix {
		f.pix[i] = c
	}
}

// Clone returns a deep copy.
func (f *Frame) Clone() *Frame {
	out := &Frame{pix: make([]RGBA, len(f.pix)), width: f.width, height: f.height}
	copy(out.pix, f.pix)
	return out
}

// CopyFrom copies src into f. Both frames must have the same size.
func (f *Frame) CopyFrom(src *Frame) error {
	if src.width != f.width || src.height != f.height {
		return ErrSizeMismatch
	}
	copy(f.pix, src.pix)
	return nil
}

// SameSize reports whether both frames have identical dimensions.
func (f *Frame) SameSize(o *Frame) bool {
	return f.width == o.width && f.height == o.height
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
