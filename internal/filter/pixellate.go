package filter

import (
	stdimage "image"
	"math"

	"golang.org/x/image/draw"

	"github.com/gogpu/g2d/internal/image"
	"github.com/gogpu/g2d/internal/shade"
)

// PixellateFilter reduces the frame to Size x Size blocks.
//
// Each block takes the average of a box of
// round((Size-1)*Antialias)+1 texels at its centre, so Antialias 0 is a
// plain point downsample. The reduced frame is scaled back up with
// nearest-neighbour sampling. Blocks with near-zero alpha are dropped.
type PixellateFilter struct {
	Size      int
	Antialias float32
}

// Apply implements Effect.
func (f *PixellateFilter) Apply(src, dst *image.Frame, _ Env) error {
	if !src.SameSize(dst) {
		return image.ErrSizeMismatch
	}
	px := max(f.Size, 1)
	if px == 1 {
		return dst.CopyFrom(src)
	}
	box := int(math.Round(float64(px-1)*float64(f.Antialias))) + 1
	box = min(max(box, 1), px)

	w, h := src.Width(), src.Height()
	sw, sh := (w+px-1)/px, (h+px-1)/px
	small, err := image.NewFrame(sw, sh)
	if err != nil {
		return err
	}

	inv := 1 / float32(box*box)
	off := (px - box) / 2
	for by := range sh {
		for bx := range sw {
			x0, y0 := bx*px+off, by*px+off
			var sum image.RGBA
			for y := y0; y < y0+box; y++ {
				for x := x0; x < x0+box; x++ {
					sum = sum.Add(src.AtClamped(x, y))
				}
			}
			sum = sum.Scale(inv)
			if sum.A < shade.MinAlpha {
				sum = image.Transparent
			}
			small.Set(bx, by, sum)
		}
	}

	dst.Clear()
	draw.NearestNeighbor.Scale(
		image.View{F: dst}, stdimage.Rect(0, 0, sw*px, sh*px),
		image.View{F: small}, stdimage.Rect(0, 0, sw, sh),
		draw.Src, nil,
	)
	return nil
}
