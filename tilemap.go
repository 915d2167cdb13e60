package g2d

import (
	"github.com/gogpu/g2d/internal/geom"
	"github.com/gogpu/g2d/tilemap"
)

// TileMap is a sparse grid of atlas tiles. Cell (0, 0) has its top-left
// corner at the map position; every cell is one tile image in size.
type TileMap struct {
	*tilemap.Map
	rec      record[tileEntry]
	lut      []geom.UVMap
	pos      Vec2
	tileSize Vec2
	color    RGBA
}

// AddTileMap adds an empty tile map whose cells may hold the named tiles.
// Every tile is loaded now and must share one size and atlas page.
func (l *Layer) AddTileMap(tiles []string, x, y float32) (*TileMap, error) {
	m, err := tilemap.New(tiles)
	if err != nil {
		return nil, err
	}
	lut, err := m.LookupTable(l.scene.atlas)
	if err != nil {
		return nil, err
	}
	tm := &TileMap{Map: m, lut: lut, pos: V(x, y), color: White}
	if len(lut) > 1 {
		tm.tileSize = V(lut[1].Width(), lut[1].Height())
	}
	tm.rec = newRecord(l.tileBatch())
	tm.sync()
	return tm, nil
}

func (tm *TileMap) sync() {
	tm.rec.write(tileEntry{
		m:        tm.Map,
		lut:      tm.lut,
		origin:   tm.pos,
		tileSize: tm.tileSize,
		color:    tm.color.Array(),
	})
}

// Pos returns the world position of cell (0, 0).
func (tm *TileMap) Pos() Vec2 { return tm.pos }

// SetPos moves the map.
func (tm *TileMap) SetPos(x, y float32) {
	tm.pos = V(x, y)
	tm.sync()
}

// TileSize returns the world size of one cell.
func (tm *TileMap) TileSize() Vec2 { return tm.tileSize }

// CellAt returns the cell containing the world point p.
func (tm *TileMap) CellAt(p Vec2) (x, y int) {
	if tm.tileSize.X <= 0 || tm.tileSize.Y <= 0 {
		return 0, 0
	}
	local := p.Sub(tm.pos)
	return floorInt(local.X / tm.tileSize.X), floorInt(local.Y / tm.tileSize.Y)
}

// SetColor sets the tint of every tile.
func (tm *TileMap) SetColor(c RGBA) {
	tm.color = c
	tm.sync()
}

// Color returns the tint.
func (tm *TileMap) Color() RGBA { return tm.color }

// Delete removes the map from its layer. Single cells are cleared with
// Map.Delete.
func (tm *TileMap) Delete() error {
	return tm.rec.free()
}

func floorInt(v float32) int {
	i := int(v)
	if float32(i) > v {
		i--
	}
	return i
}
