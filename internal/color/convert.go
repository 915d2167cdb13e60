package color

import "math"

// decode is the sRGB transfer curve from encoded to linear light.
func decode(s float32) float32 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return float32(math.Pow(float64((s+0.055)/1.055), 2.4))
}

// encode is the inverse of decode.
func encode(l float32) float32 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*float32(math.Pow(float64(l), 1.0/2.4)) - 0.055
}

// ToLinear converts the RGB channels of a straight colour to linear space.
// Alpha is always linear and passes through.
func ToLinear(c [4]float32) [4]float32 {
	return [4]float32{decode(c[0]), decode(c[1]), decode(c[2]), c[3]}
}

// ToSRGB converts the RGB channels of a straight colour back to sRGB.
// Negative inputs clamp to zero before encoding.
func ToSRGB(c [4]float32) [4]float32 {
	return [4]float32{
		encode(max(c[0], 0)),
		encode(max(c[1], 0)),
		encode(max(c[2], 0)),
		c[3],
	}
}

// Luminance is the perceptual weight used by the bloom gate.
func Luminance(r, g, b float32) float32 {
	return 0.3*r + 0.6*g + 0.1*b
}
