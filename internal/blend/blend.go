// Package blend provides the compositing operators used when a fragment or
// a whole layer is written over a destination.
//
// All operators work on premultiplied float colours.
package blend

import "github.com/gogpu/g2d/internal/image"

// Mode represents a blending mode.
type Mode uint8

const (
	// ModeSourceOver is the default alpha blending mode.
	ModeSourceOver Mode = iota
	// ModeSource replaces the destination with the source.
	ModeSource
	// ModeDestinationOver draws the destination over the source.
	ModeDestinationOver
	// ModeDestinationIn keeps the destination where the source is opaque.
	ModeDestinationIn
	// ModeAtop mixes the source into the destination by source alpha.
	ModeAtop
	// ModeAdditive sums source and destination.
	ModeAdditive
	// ModeClear writes transparent black.
	ModeClear
)

var modeNames = [...]string{
	ModeSourceOver:      "source-over",
	ModeSource:          "source",
	ModeDestinationOver: "destination-over",
	ModeDestinationIn:   "destination-in",
	ModeAtop:            "atop",
	ModeAdditive:        "additive",
	ModeClear:           "clear",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// Blend blends src into dst using the given mode.
func Blend(src, dst image.RGBA, mode Mode) image.RGBA {
	switch mode {
	case ModeSource:
		return src
	case ModeDestinationOver:
		return SourceOver(dst, src)
	case ModeDestinationIn:
		return DestinationIn(src, dst)
	case ModeAtop:
		return Atop(src, dst)
	case ModeAdditive:
		return Additive(src, dst)
	case ModeClear:
		return image.Transparent
	default:
		return SourceOver(src, dst)
	}
}

// BlendFrame blends every pixel of src into dst. Frames must match in size.
func BlendFrame(dst, src *image.Frame, mode Mode) error {
	if !dst.SameSize(src) {
		return image.ErrSizeMismatch
	}
	d, s := dst.Pix(), src.Pix()
	for i := range d {
		d[i] = Blend(s[i], d[i], mode)
	}
	return nil
}
