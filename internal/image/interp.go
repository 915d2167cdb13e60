package image

import "math"

// InterpolationMode defines how texture sampling is performed.
type InterpolationMode uint8

const (
	// InterpNearest selects the closest pixel (no interpolation).
	InterpNearest InterpolationMode = iota

	// InterpBilinear performs linear interpolation between 4 neighboring pixels.
	InterpBilinear
)

// String returns a string representation of the interpolation mode.
func (m InterpolationMode) String() string {
	switch m {
	case InterpNearest:
		return "Nearest"
	case InterpBilinear:
		return "Bilinear"
	default:
		return "Unknown"
	}
}

// Sample samples the frame at normalized coordinates (u, v).
// (0,0) is the top-left corner of the top-left texel and (1,1) the
// bottom-right corner of the bottom-right texel. Out-of-range coordinates
// clamp to the edge.
func (f *Frame) Sample(u, v float32, mode InterpolationMode) RGBA {
	if mode == InterpBilinear {
		return f.SampleBilinear(u, v)
	}
	return f.SampleNearest(u, v)
}

// SampleNearest returns the texel containing (u, v).
func (f *Frame) SampleNearest(u, v float32) RGBA {
	x := int(math.Floor(float64(u) * float64(f.width)))
	y := int(math.Floor(float64(v) * float64(f.height)))
	return f.AtClamped(x, y)
}

// SampleBilinear interpolates the four texels around (u, v).
func (f *Frame) SampleBilinear(u, v float32) RGBA {
	fx := float64(u)*float64(f.width) - 0.5
	fy := float64(v)*float64(f.height) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := float32(fx - float64(x0))
	ty := float32(fy - float64(y0))

	c00 := f.AtClamped(x0, y0)
	c10 := f.AtClamped(x0+1, y0)
	c01 := f.AtClamped(x0, y0+1)
	c11 := f.AtClamped(x0+1, y0+1)

	top := lerpRGBA(c00, c10, tx)
	bottom := lerpRGBA(c01, c11, tx)
	return lerpRGBA(top, bottom, ty)
}

// SamplePixel samples at pixel-space coordinates, where integer+0.5 is a
// texel centre.
func (f *Frame) SamplePixel(x, y float32, mode InterpolationMode) RGBA {
	return f.Sample(x/float32(f.width), y/float32(f.height), mode)
}

func lerpRGBA(a, b RGBA, t float32) RGBA {
	return RGBA{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: a.A + (b.A-a.A)*t,
	}
}

// Lerp linearly interpolates between two colours.
func Lerp(a, b RGBA, t float32) RGBA {
	return lerpRGBA(a, b, t)
}
