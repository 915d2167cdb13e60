// Package tilemap implements sparse tile maps.
//
// A map stores one byte per cell in 64x64 blocks that are allocated on
// first write. Cell value 0 means "no tile"; values 1..255 index the map's
// tile names, so a map holds at most 255 distinct tiles. Every bulk
// operation (FillRect, Line, FloodFill) is built on the single-cell Set.
package tilemap

import (
	"cmp"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/gogpu/g2d/atlas"
	"github.com/gogpu/g2d/internal/geom"
	"github.com/gogpu/g2d/internal/shade"
)

// Tile map errors.
var (
	// ErrTooManyTiles is returned for maps with no tiles or more than MaxTiles.
	ErrTooManyTiles = errors.New("tilemap: a map holds 1 to 255 tiles")

	// ErrUnknownTile is returned for tile names not given to New.
	ErrUnknownTile = errors.New("tilemap: unknown tile")

	// ErrTileSize is returned when tile images differ in size.
	ErrTileSize = errors.New("tilemap: tile sizes differ")

	// ErrTilePage is returned when tile images sit on different atlas pages.
	ErrTilePage = errors.New("tilemap: tiles span several atlas pages")
)

// MaxTiles is the number of distinct tiles one map can reference.
const MaxTiles = 255

// BlockSize is the edge length of a block in cells.
const BlockSize = geom.BlockSize

// BlockKey addresses a block by block coordinates.
type BlockKey [2]int32

type block struct {
	cells shade.TileIndex
	count int
}

// Map is a sparse grid of tiles. It is safe for concurrent use.
type Map struct {
	mu      sync.Mutex
	names   []string
	index   map[string]uint8
	blocks  map[BlockKey]*block
	version uint64
	rnd     *rand.Rand
}

// New creates a map over the given tile names. Name i is stored as cell
// value i+1.
func New(names []string) (*Map, error) {
	if len(names) == 0 || len(names) > MaxTiles {
		return nil, fmt.Errorf("%w: got %d", ErrTooManyTiles, len(names))
	}
	m := &Map{
		names:  slices.Clone(names),
		index:  make(map[string]uint8, len(names)),
		blocks: make(map[BlockKey]*block),
		rnd:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for i, n := range names {
		if _, dup := m.index[n]; !dup {
			m.index[n] = uint8(i + 1)
		}
	}
	return m, nil
}

// SetRand replaces the source used by FillRect's random choice.
func (m *Map) SetRand(r *rand.Rand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rnd = r
}

// Names returns the tile names in index order.
func (m *Map) Names() []string { return slices.Clone(m.names) }

// Index returns the cell value of a tile name.
func (m *Map) Index(name string) (uint8, error) {
	v, ok := m.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTile, name)
	}
	return v, nil
}

func split(x, y int) (BlockKey, int, int) {
	bx, cx := floorDiv(x, BlockSize)
	by, cy := floorDiv(y, BlockSize)
	return BlockKey{int32(bx), int32(by)}, cx, cy
}

func floorDiv(v, d int) (int, int) {
	q, r := v/d, v%d
	if r < 0 {
		q--
		r += d
	}
	return q, r
}

// Set places the named tile at cell (x, y).
func (m *Map) Set(x, y int, name string) error {
	v, err := m.Index(name)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(x, y, v)
	return nil
}

// set writes a raw cell value. Blocks are allocated on the first non-zero
// write and released when their last tile is removed.
func (m *Map) set(x, y int, v uint8) {
	key, cx, cy := split(x, y)
	b := m.blocks[key]
	if b == nil {
		if v == 0 {
			return
		}
		b = &block{}
		m.blocks[key] = b
	}
	old := b.cells.At(cx, cy)
	if old == v {
		return
	}
	switch {
	case old == 0:
		b.count++
	case v == 0:
		b.count--
	}
	b.cells.Set(cx, cy, v)
	if b.count == 0 {
		delete(m.blocks, key)
	}
	m.version++
}

// Get returns the tile at (x, y) and whether the cell holds one.
func (m *Map) Get(x, y int) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.get(x, y)
	if v == 0 {
		return "", false
	}
	return m.names[v-1], true
}

func (m *Map) get(x, y int) uint8 {
	key, cx, cy := split(x, y)
	b := m.blocks[key]
	if b == nil {
		return 0
	}
	return b.cells.At(cx, cy)
}

// Delete clears cell (x, y).
func (m *Map) Delete(x, y int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(x, y, 0)
}

// Clear removes every tile.
func (m *Map) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.blocks)
	m.version++
}

// Version increases on every change.
func (m *Map) Version() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}

// Block describes one allocated block.
type Block struct {
	Key   BlockKey
	Cells shade.TileIndex
}

// Blocks returns a copy of every allocated block, ordered by row then column.
func (m *Map) Blocks() []Block {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Block, 0, len(m.blocks))
	for k, b := range m.blocks {
		out = append(out, Block{Key: k, Cells: b.cells})
	}
	slices.SortFunc(out, func(a, b Block) int {
		if c := cmp.Compare(a.Key[1], b.Key[1]); c != 0 {
			return c
		}
		return cmp.Compare(a.Key[0], b.Key[0])
	})
	return out
}

// Bounds returns the cell rectangle [minX, maxX) x [minY, maxY) covered by
// allocated blocks. ok is false for an empty map.
func (m *Map) Bounds() (minX, minY, maxX, maxY int, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bounds()
}

func (m *Map) bounds() (minX, minY, maxX, maxY int, ok bool) {
	first := true
	for k := range m.blocks {
		x0, y0 := int(k[0])*BlockSize, int(k[1])*BlockSize
		x1, y1 := x0+BlockSize, y0+BlockSize
		if first {
			minX, minY, maxX, maxY = x0, y0, x1, y1
			first = false
			continue
		}
		minX, minY = min(minX, x0), min(minY, y0)
		maxX, maxY = max(maxX, x1), max(maxY, y1)
	}
	return minX, minY, maxX, maxY, !first
}

// LookupTable resolves every tile name through a and returns the UV
// mapping table indexed by cell value; entry 0 is unused. All tiles must
// share one size and one atlas page.
func (m *Map) LookupTable(a *atlas.Atlas) ([]geom.UVMap, error) {
	lut := make([]geom.UVMap, len(m.names)+1)
	var first atlas.Entry
	for i, name := range m.names {
		e, err := a.Get(name)
		if err != nil {
			return nil, fmt.Errorf("tilemap: tile %q: %w", name, err)
		}
		if i == 0 {
			first = e
		} else {
			if e.Width != first.Width || e.Height != first.Height {
				return nil, fmt.Errorf("%w: %q is %dx%d, %q is %dx%d",
					ErrTileSize, name, e.Width, e.Height, first.Name, first.Width, first.Height)
			}
			if e.UV.Page != first.UV.Page {
				return nil, fmt.Errorf("%w: %q", ErrTilePage, name)
			}
		}
		lut[i+1] = e.UV
	}
	return lut, nil
}
