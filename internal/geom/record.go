package geom

import "math"

// Kind tags a batch with the primitive kind its records belong to.
type Kind uint8

// Primitive kinds. A batch holds records of exactly one kind.
const (
	KindSprite Kind = iota
	KindNinePatch
	KindParticle
	KindLine
	KindFill
	KindGlyph
	KindTileBlock
)

var kindNames = [...]string{
	KindSprite:    "sprite",
	KindNinePatch: "ninepatch",
	KindParticle:  "particle",
	KindLine:      "line",
	KindFill:      "fill",
	KindGlyph:     "glyph",
	KindTileBlock: "tileblock",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// UVMap locates a sub-image inside an atlas page, in page pixels.
//
// The four corners are Origin (top-left), Origin+Across (top-right),
// Origin+Down (bottom-left) and Origin+Across+Down (bottom-right).
type UVMap struct {
	Origin Vec2
	Across Vec2
	Down   Vec2
	Page   int
}

// Width returns the sub-image width in pixels.
func (m UVMap) Width() float32 { return m.Across.Len() }

// Height returns the sub-image height in pixels.
func (m UVMap) Height() float32 { return m.Down.Len() }

// At maps fractional coordinates (u, v) in [0, 1]^2 to page pixels.
func (m UVMap) At(u, v float32) Vec2 {
	return m.Origin.Add(m.Across.Mul(u)).Add(m.Down.Mul(v))
}

// Normalized maps fractional coordinates to normalized page coordinates.
func (m UVMap) Normalized(u, v float32, page Vec2) Vec2 {
	p := m.At(u, v)
	return Vec2{p.X / page.X, p.Y / page.Y}
}

// SpriteRecord is the instance record of a textured quad.
type SpriteRecord struct {
	Xform Affine
	Dims  Vec2
	Color [4]float32 // straight alpha
	UV    UVMap
}

// NinePatchRecord is a sprite whose edges keep native pixel size.
// Cuts are the left, right, top and bottom edge widths in source pixels.
type NinePatchRecord struct {
	Xform Affine
	Dims  Vec2
	Color [4]float32
	UV    UVMap
	Cuts  [4]uint16
}

// ParticleRecord is one live particle.
type ParticleRecord struct {
	Pos   Vec2
	Color [4]float32
	Age   float32
	Size  float32
	Angle float32
}

// LineRecord is a polyline stroked with mitred joins.
type LineRecord struct {
	Xform  Affine
	Points []Vec2
	Color  [4]float32
	Width  float32
	Closed bool
}

// FillRecord is a filled polygon. Indices triangulate Points.
type FillRecord struct {
	Xform   Affine
	Points  []Vec2
	Indices []uint32
	Color   [4]float32
}

// GlyphQuad is one positioned glyph inside a label, in label space.
type GlyphQuad struct {
	Min  Vec2 // top-left corner
	Size Vec2
	UV   UVMap
}

// GlyphRecord is a laid-out text label.
type GlyphRecord struct {
	Xform Affine
	Color [4]float32
	Quads []GlyphQuad
}

// BlockSize is the edge length, in cells, of a tile-map block.
const BlockSize = 64

// TileBlockRecord places one 64x64 block of a tile map.
type TileBlockRecord struct {
	Block    [2]int32 // block coordinates
	Origin   Vec2     // world position of cell (0, 0)
	TileSize Vec2
	Color    [4]float32
}

// CellOrigin returns the world position of the block's top-left cell.
func (r TileBlockRecord) CellOrigin() Vec2 {
	return Vec2{
		r.Origin.X + float32(r.Block[0])*BlockSize*r.TileSize.X,
		r.Origin.Y + float32(r.Block[1])*BlockSize*r.TileSize.Y,
	}
}

// Finite reports whether the record's geometry is usable.
func (r SpriteRecord) Finite() bool {
	return r.Xform.Finite() && r.Dims.Finite() && finiteColor(r.Color)
}

// Finite reports whether the record's geometry is usable.
func (r NinePatchRecord) Finite() bool {
	return r.Xform.Finite() && r.Dims.Finite() && finiteColor(r.Color)
}

// Finite reports whether the record's geometry is usable.
func (r ParticleRecord) Finite() bool {
	return r.Pos.Finite() && finite(r.Age, r.Size, r.Angle) && finiteColor(r.Color)
}

// maxAgeFrac keeps ramp lookups inside the last texel.
const maxAgeFrac = 511.0 / 512.0

// infinite reports whether v is +Inf.
func infinite(v float32) bool { return math.IsInf(float64(v), 1) }
