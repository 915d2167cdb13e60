package image

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// ErrEmptyImage is returned when a decoded image has no pixels.
var ErrEmptyImage = errors.New("image: empty image")

// Decode decodes an image from r, auto-detecting the format among PNG,
// JPEG, GIF, BMP, TIFF and WebP.
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("image: decode: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	return img, nil
}

// LoadFile decodes the image stored at path.
func LoadFile(path string) (image.Image, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("image: open file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Decode(bufio.NewReader(f))
}

// ToRGBA converts any image to *image.RGBA (premultiplied 8-bit).
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// FromImage converts a decoded image into a Frame.
func FromImage(img image.Image) (*Frame, error) {
	src := ToRGBA(img)
	b := src.Bounds()
	f, err := NewFrame(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	for y := 0; y < f.height; y++ {
		row := src.Pix[y*src.Stride:]
		dst := f.Row(y)
		for x := range dst {
			o := x * 4
			dst[x] = RGBA{
				R: float32(row[o]) / 255,
				G: float32(row[o+1]) / 255,
				B: float32(row[o+2]) / 255,
				A: float32(row[o+3]) / 255,
			}
		}
	}
	return f, nil
}

// ToImage converts the frame to a premultiplied 8-bit image.
func (f *Frame) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	for y := 0; y < f.height; y++ {
		row := img.Pix[y*img.Stride:]
		for x, c := range f.Row(y) {
			c = c.Clamp()
			o := x * 4
			row[o] = toByte(c.R)
			row[o+1] = toByte(c.G)
			row[o+2] = toByte(c.B)
			row[o+3] = toByte(c.A)
		}
	}
	return img
}

// EncodePNG writes the frame as PNG.
func (f *Frame) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, f.ToImage()); err != nil {
		return fmt.Errorf("image: encode png: %w", err)
	}
	return nil
}

// SavePNG writes the frame to a PNG file.
func (f *Frame) SavePNG(path string) error {
	out, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("image: create file: %w", err)
	}
	if err := f.EncodePNG(out); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func toByte(v float32) uint8 {
	return uint8(v*255 + 0.5)
}
