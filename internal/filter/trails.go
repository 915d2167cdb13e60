package filter

import (
	"math"

	"github.com/gogpu/g2d/internal/blend"
	"github.com/gogpu/g2d/internal/image"
)

// TrailsFilter keeps a persistent buffer of previous frames that fades
// by Fade per second. The output is the current frame over the buffer
// scaled by Alpha.
//
// A TrailsFilter holds state and must not be shared between chains.
type TrailsFilter struct {
	Fade  float32
	Alpha float32

	buf *image.Frame
}

// Apply implements Effect.
func (f *TrailsFilter) Apply(src, dst *image.Frame, env Env) error {
	if !src.SameSize(dst) {
		return image.ErrSizeMismatch
	}
	if f.buf == nil || !f.buf.SameSize(src) {
		f.buf = image.MustFrame(src.Width(), src.Height())
	}
	fade := float32(math.Pow(float64(f.Fade), float64(max(env.DT, 0))))

	s, d, b := src.Pix(), dst.Pix(), f.buf.Pix()
	for i := range s {
		d[i] = s[i].Over(b[i].Scale(f.Alpha))
		b[i] = s[i].Over(b[i]).Scale(fade)
	}
	return nil
}

// Reset drops the accumulated trail.
func (f *TrailsFilter) Reset() { f.buf = nil }

// AdditiveFilter passes the frame through unchanged and asks its consumer
// to composite it additively.
type AdditiveFilter struct{}

// Apply implements Effect.
func (AdditiveFilter) Apply(src, dst *image.Frame, _ Env) error {
	return dst.CopyFrom(src)
}

// Mode implements Compositor.
func (AdditiveFilter) Mode() blend.Mode { return blend.ModeAdditive }
