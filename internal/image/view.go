package image

import (
	"image"
	"image/color"
)

// View adapts a Frame to draw.Image so the golang.org/x/image scalers can
// read and write it. Colours pass through 16-bit premultiplied RGBA.
type View struct {
	F *Frame
}

// ColorModel implements image.Image.
func (v View) ColorModel() color.Model { return color.RGBA64Model }

// Bounds implements image.Image.
func (v View) Bounds() image.Rectangle { return image.Rect(0, 0, v.F.width, v.F.height) }

// At implements image.Image.
func (v View) At(x, y int) color.Color {
	c := v.F.At(x, y).Clamp()
	return color.RGBA64{R: to16(c.R), G: to16(c.G), B: to16(c.B), A: to16(c.A)}
}

// Set implements draw.Image.
func (v View) Set(x, y int, c color.Color) {
	r, g, b, a := c.RGBA()
	v.F.Set(x, y, RGBA{
		R: float32(r) / 0xffff,
		G: float32(g) / 0xffff,
		B: float32(b) / 0xffff,
		A: float32(a) / 0xffff,
	})
}

func to16(v float32) uint16 {
	return uint16(v*0xffff + 0.5)
}
