package blend

import "github.com/gogpu/g2d/internal/image"

// SourceOver composites src over dst.
// Formula: S + D * (1 - Sa)
func SourceOver(src, dst image.RGBA) image.RGBA {
	return src.Over(dst)
}

// DestinationIn keeps dst scaled by the source alpha. Used by masks, where
// only the mask's alpha matters.
// Formula: D * Sa
func DestinationIn(src, dst image.RGBA) image.RGBA {
	return dst.Scale(src.A)
}

// Atop mixes top into bottom by the top alpha.
// Formula: rgb = mix(Bottom.rgb, Top.rgb, Ta); a = Ta + (1 - Ta) * Ba
//
// Outline and drop-shadow composition use this rule on straight colours.
func Atop(top, bottom image.RGBA) image.RGBA {
	t := top.A
	return image.RGBA{
		R: bottom.R + (top.R-bottom.R)*t,
		G: bottom.G + (top.G-bottom.G)*t,
		B: bottom.B + (top.B-bottom.B)*t,
		A: t + (1-t)*bottom.A,
	}
}

// Additive sums the colours, clamped to 1.
// Formula: min(S + D, 1)
func Additive(src, dst image.RGBA) image.RGBA {
	return src.Add(dst).Clamp()
}

// Mask multiplies the paint colour by the mask alpha. The mask's colour
// channels are ignored.
func Mask(paint, mask image.RGBA) image.RGBA {
	return paint.Scale(mask.A)
}

// Under composites shadow beneath src. RGB is un-premultiplied, mixed and
// premultiplied again so the layer's own colour keeps full weight where it
// is opaque.
// Formula: a = Sa + (1 - Sa) * Ha
func Under(src, shadow image.RGBA) image.RGBA {
	a := src.A + (1-src.A)*shadow.A
	if a <= 0 {
		return image.Transparent
	}
	s := src.Straight()
	h := shadow.Straight()
	w := src.A / a
	return image.RGBA{
		R: (s.R*w + h.R*(1-w)) * a,
		G: (s.G*w + h.G*(1-w)) * a,
		B: (s.B*w + h.B*(1-w)) * a,
		A: a,
	}
}
