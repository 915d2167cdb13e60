package text

import (
	stdimage "image"
	"image/draw"

	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/vector"

	"github.com/gogpu/g2d/internal/geom"
	"github.com/gogpu/g2d/internal/image"
)

// glyphBitmap is a rasterised glyph. Offset is the top-left corner of the
// bitmap relative to the pen position on the baseline.
type glyphBitmap struct {
	frame  *image.Frame
	offset geom.Vec2
}

// rasterize renders one glyph at ppem pixels per em. Glyphs without
// outlines, such as spaces, return a nil frame.
func (f *Font) rasterize(gid sfnt.GlyphIndex, ppem float32) (glyphBitmap, error) {
	segs, err := f.loadGlyph(gid, ppem)
	if err != nil {
		return glyphBitmap{}, err
	}
	b := segs.Bounds()
	x0, y0 := b.Min.X.Floor(), b.Min.Y.Floor()
	x1, y1 := b.Max.X.Ceil(), b.Max.Y.Ceil()
	w, h := x1-x0, y1-y0
	if len(segs) == 0 || w <= 0 || h <= 0 {
		return glyphBitmap{}, nil
	}

	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Src
	ox, oy := float32(x0), float32(y0)
	pt := func(i int, s sfnt.Segment) (float32, float32) {
		return fromFixed(s.Args[i].X) - ox, fromFixed(s.Args[i].Y) - oy
	}
	open := false
	for _, s := range segs {
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				z.ClosePath()
			}
			z.MoveTo(pt(0, s))
			open = true
		case sfnt.SegmentOpLineTo:
			z.LineTo(pt(0, s))
		case sfnt.SegmentOpQuadTo:
			bx, by := pt(0, s)
			cx, cy := pt(1, s)
			z.QuadTo(bx, by, cx, cy)
		case sfnt.SegmentOpCubeTo:
			bx, by := pt(0, s)
			cx, cy := pt(1, s)
			dx, dy := pt(2, s)
			z.CubeTo(bx, by, cx, cy, dx, dy)
		}
	}
	if open {
		z.ClosePath()
	}

	mask := stdimage.NewAlpha(stdimage.Rect(0, 0, w, h))
	z.Draw(mask, mask.Bounds(), stdimage.Opaque, stdimage.Point{})

	frame, err := image.NewFrame(w, h)
	if err != nil {
		return glyphBitmap{}, err
	}
	for y := range h {
		row := frame.Row(y)
		for x := range w {
			a := float32(mask.AlphaAt(x, y).A) / 255
			row[x] = image.RGBA{R: a, G: a, B: a, A: a}
		}
	}
	return glyphBitmap{frame: frame, offset: geom.Vec2{X: ox, Y: oy}}, nil
}
