package shade

import (
	"github.com/gogpu/g2d/internal/geom"
	"github.com/gogpu/g2d/internal/image"
)

// Kind names a fragment program so backends that compile programs ahead
// of time can pick a pipeline.
type Kind uint8

// Program kinds.
const (
	KindSolid Kind = iota
	KindTextured
	KindGlyph
	KindTile
)

var kindNames = [...]string{"solid", "textured", "glyph", "tile"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Call is one draw: a triangle list and the resources its program reads.
//
// Textured and glyph calls sample Page. Tile calls read Index and LUT and
// sample Pages by each LUT entry's page.
type Call struct {
	Kind     Kind
	Vertices []geom.Vertex
	Page     *image.Frame
	Pages    []*image.Frame
	Index    *TileIndex
	LUT      []geom.UVMap
	Filter   image.InterpolationMode
}

// Program returns the software program for the call.
func (c *Call) Program() Program {
	switch c.Kind {
	case KindTextured:
		return Textured{Texture: c.Page, Filter: c.Filter}
	case KindGlyph:
		return Glyph{Texture: c.Page, Filter: c.Filter}
	case KindTile:
		return Tile{Index: c.Index, LUT: c.LUT, Pages: c.Pages, Filter: c.Filter}
	}
	return Solid{}
}

// TilePage returns the page a tile call samples. Every tile of a map
// shares one page; the first populated LUT entry decides.
func (c *Call) TilePage() *image.Frame {
	for _, m := range c.LUT[min(1, len(c.LUT)):] {
		if m.Page >= 0 && m.Page < len(c.Pages) {
			return c.Pages[m.Page]
		}
	}
	return nil
}
