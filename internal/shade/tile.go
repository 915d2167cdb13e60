package shade

import (
	"math"

	"github.com/gogpu/g2d/internal/geom"
	"github.com/gogpu/g2d/internal/image"
)

// TexelInset is how far, in atlas pixels, tile lookups stay inside the
// tile's rectangle. Half a texel keeps bilinear taps off neighbouring
// atlas entries.
const TexelInset = 0.5

// TileIndex holds the cell indices of one block in row-major order.
// Index 0 means no tile.
type TileIndex [geom.BlockSize * geom.BlockSize]uint8

// At returns the index of cell (x, y).
func (t *TileIndex) At(x, y int) uint8 { return t[y*geom.BlockSize+x] }

// Set stores the index of cell (x, y).
func (t *TileIndex) Set(x, y int, v uint8) { t[y*geom.BlockSize+x] = v }

// Empty reports whether no cell holds a tile.
func (t *TileIndex) Empty() bool {
	for _, v := range t {
		if v != 0 {
			return false
		}
	}
	return true
}

// Tile resolves the cell under a fragment to an atlas rectangle and samples
// it. The fragment UV carries local cell coordinates in [0, BlockSize].
type Tile struct {
	Index  *TileIndex
	LUT    []geom.UVMap // entry 0 is never read
	Pages  []*image.Frame
	Filter image.InterpolationMode
}

// Shade implements Program.
func (p Tile) Shade(f Fragment) (image.RGBA, bool) {
	if p.Index == nil {
		return image.Transparent, false
	}
	cx := math.Floor(float64(f.UV.X))
	cy := math.Floor(float64(f.UV.Y))
	if math.IsNaN(cx) || math.IsNaN(cy) {
		return image.Transparent, false
	}
	x := geom.Clamp(int(cx), 0, geom.BlockSize-1)
	y := geom.Clamp(int(cy), 0, geom.BlockSize-1)

	idx := int(p.Index.At(x, y))
	if idx == 0 || idx >= len(p.LUT) {
		return image.Transparent, false
	}
	rect := p.LUT[idx]
	if rect.Page < 0 || rect.Page >= len(p.Pages) || p.Pages[rect.Page] == nil {
		return image.Transparent, false
	}

	fx := geom.Clamp(f.UV.X-float32(x), 0, 1)
	fy := geom.Clamp(f.UV.Y-float32(y), 0, 1)
	at := InsetClamp(rect, rect.At(fx, fy))
	texel := p.Pages[rect.Page].SamplePixel(at.X, at.Y, p.Filter)
	return texel.Mul(f.Color), true
}

// InsetClamp clamps pt, in page pixels, to the rectangle spanned by m
// shrunk by TexelInset on every side. A rectangle narrower than two insets
// collapses to its centre line.
func InsetClamp(m geom.UVMap, pt geom.Vec2) geom.Vec2 {
	c0 := m.Origin
	c1 := m.At(1, 0)
	c2 := m.At(0, 1)
	c3 := m.At(1, 1)
	minX := min(c0.X, c1.X, c2.X, c3.X)
	maxX := max(c0.X, c1.X, c2.X, c3.X)
	minY := min(c0.Y, c1.Y, c2.Y, c3.Y)
	maxY := max(c0.Y, c1.Y, c2.Y, c3.Y)
	return geom.Vec2{
		X: insetAxis(pt.X, minX, maxX),
		Y: insetAxis(pt.Y, minY, maxY),
	}
}

func insetAxis(v, lo, hi float32) float32 {
	lo += TexelInset
	hi -= TexelInset
	if lo > hi {
		return (lo + hi) / 2
	}
	return geom.Clamp(v, lo, hi)
}
