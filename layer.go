package g2d

import (
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/g2d/atlas"
	"github.com/gogpu/g2d/internal/batch"
	"github.com/gogpu/g2d/internal/blend"
	"github.com/gogpu/g2d/internal/filter"
	"github.com/gogpu/g2d/internal/geom"
	"github.com/gogpu/g2d/internal/image"
	"github.com/gogpu/g2d/internal/shade"
	"github.com/gogpu/g2d/particles"
	"github.com/gogpu/g2d/tilemap"
)

// Params holds named effect parameters; scalars are one-element slices.
type Params = filter.Params

// Layer holds primitives drawn together. Layers render in ascending id,
// so higher layers appear on top.
//
// Primitives of one kind share a batch. Batches draw in the order their
// kind was first used on the layer; inside a batch primitives draw in the
// order they were added.
type Layer struct {
	scene *Scene
	id    int

	mu      sync.Mutex
	visible bool
	effect  filter.Effect
	fxName  string
	order   []geom.Kind

	sprites   *batch.Buffer[geom.SpriteRecord]
	patches   *batch.Buffer[geom.NinePatchRecord]
	lines     *batch.Buffer[geom.LineRecord]
	fills     *batch.Buffer[geom.FillRecord]
	labels    *batch.Buffer[geom.GlyphRecord]
	particles *batch.Buffer[particleEntry]
	tiles     *batch.Buffer[tileEntry]

	cache map[geom.Kind]cachedCalls
}

// particleEntry is the record of one particle group.
type particleEntry struct {
	group    *particles.Group
	uv       geom.UVMap
	textured bool
}

// tileEntry is the record of one tile map.
type tileEntry struct {
	m        *tilemap.Map
	lut      []geom.UVMap
	origin   Vec2
	tileSize Vec2
	color    [4]float32
}

// cachedCalls keeps the expanded calls of a batch until the batch or the
// projection changes.
type cachedCalls struct {
	version uint64
	proj    geom.Mat4
	calls   []shade.Call
}

func newLayer(s *Scene, id int) *Layer {
	return &Layer{scene: s, id: id, visible: true, cache: make(map[geom.Kind]cachedCalls)}
}

// ID returns the layer id.
func (l *Layer) ID() int { return l.id }

// Visible reports whether the layer is drawn.
func (l *Layer) Visible() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.visible
}

// SetVisible shows or hides the layer.
func (l *Layer) SetVisible(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.visible = v
}

// SetEffect applies a post-processing effect to the layer's output before
// it is composited. Unknown names and bad parameters are reported here,
// not when rendering.
func (l *Layer) SetEffect(name string, params Params) error {
	fx, err := filter.New(name, params)
	if err != nil {
		return fmt.Errorf("g2d: layer %d: %w", l.id, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.effect, l.fxName = fx, name
	return nil
}

// ClearEffect removes the layer's effect.
func (l *Layer) ClearEffect() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.effect, l.fxName = nil, ""
}

// Effect returns the name of the layer's effect, or "".
func (l *Layer) Effect() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fxName
}

// Len returns the number of live primitives on the layer.
func (l *Layer) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, k := range l.order {
		switch k {
		case geom.KindSprite:
			n += l.sprites.Len()
		case geom.KindNinePatch:
			n += l.patches.Len()
		case geom.KindLine:
			n += l.lines.Len()
		case geom.KindFill:
			n += l.fills.Len()
		case geom.KindGlyph:
			n += l.labels.Len()
		case geom.KindParticle:
			n += l.particles.Len()
		case geom.KindTileBlock:
			n += l.tiles.Len()
		}
	}
	return n
}

// use records the first use of a kind and returns with the batches
// allocated.
func (l *Layer) use(k geom.Kind) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if slices.Contains(l.order, k) {
		return
	}
	switch k {
	case geom.KindSprite:
		l.sprites = batch.New[geom.SpriteRecord](0)
	case geom.KindNinePatch:
		l.patches = batch.New[geom.NinePatchRecord](0)
	case geom.KindLine:
		l.lines = batch.New[geom.LineRecord](0)
	case geom.KindFill:
		l.fills = batch.New[geom.FillRecord](0)
	case geom.KindGlyph:
		l.labels = batch.New[geom.GlyphRecord](0)
	case geom.KindParticle:
		l.particles = batch.New[particleEntry](0)
	case geom.KindTileBlock:
		l.tiles = batch.New[tileEntry](0)
	}
	l.order = append(l.order, k)
}

func (l *Layer) spriteBatch() *batch.Buffer[geom.SpriteRecord] {
	l.use(geom.KindSprite)
	return l.sprites
}

func (l *Layer) patchBatch() *batch.Buffer[geom.NinePatchRecord] {
	l.use(geom.KindNinePatch)
	return l.patches
}

func (l *Layer) lineBatch() *batch.Buffer[geom.LineRecord] {
	l.use(geom.KindLine)
	return l.lines
}

func (l *Layer) fillBatch() *batch.Buffer[geom.FillRecord] {
	l.use(geom.KindFill)
	return l.fills
}

func (l *Layer) labelBatch() *batch.Buffer[geom.GlyphRecord] {
	l.use(geom.KindGlyph)
	return l.labels
}

func (l *Layer) particleBatch() *batch.Buffer[particleEntry] {
	l.use(geom.KindParticle)
	return l.particles
}

func (l *Layer) tileBatch() *batch.Buffer[tileEntry] {
	l.use(geom.KindTileBlock)
	return l.tiles
}

// update advances the layer's particle groups.
func (l *Layer) update(dt float32) {
	l.mu.Lock()
	buf := l.particles
	l.mu.Unlock()
	if buf == nil {
		return
	}
	for _, e := range buf.Snapshot(nil) {
		e.group.Update(dt)
	}
}

// state returns what a frame needs from the layer in one consistent read.
func (l *Layer) state() (visible bool, fx filter.Effect, order []geom.Kind) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.visible, l.effect, slices.Clone(l.order)
}

// calls expands every batch of the layer into draw calls.
func (l *Layer) calls(proj geom.Mat4, a *atlas.Atlas) []shade.Call {
	_, _, order := l.state()
	var out []shade.Call
	for _, k := range order {
		out = append(out, l.kindCalls(k, proj, a)...)
	}
	return out
}

func (l *Layer) kindCalls(k geom.Kind, proj geom.Mat4, a *atlas.Atlas) []shade.Call {
	b := callBuilder{atlas: a}
	switch k {
	case geom.KindSprite:
		return l.cached(k, l.sprites.Version(), proj, func() []shade.Call {
			for _, r := range geom.Instances(l.sprites.Snapshot(nil)) {
				b.strip(shade.KindTextured, r.UV.Page, geom.ExpandSprite(r, proj, a.PageSize(r.UV.Page)))
			}
			return b.done(l.id, k)
		})
	case geom.KindNinePatch:
		return l.cached(k, l.patches.Version(), proj, func() []shade.Call {
			for _, r := range geom.Instances(l.patches.Snapshot(nil)) {
				b.strips(shade.KindTextured, r.UV.Page, geom.ExpandNinePatch(r, proj, a.PageSize(r.UV.Page)))
			}
			return b.done(l.id, k)
		})
	case geom.KindLine:
		return l.cached(k, l.lines.Version(), proj, func() []shade.Call {
			for _, r := range geom.Instances(l.lines.Snapshot(nil)) {
				b.strips(shade.KindSolid, 0, geom.ExpandLine(r, proj))
			}
			return b.done(l.id, k)
		})
	case geom.KindFill:
		return l.cached(k, l.fills.Version(), proj, func() []shade.Call {
			for _, r := range geom.Instances(l.fills.Snapshot(nil)) {
				b.list(shade.KindSolid, 0, geom.ExpandFill(r, proj))
			}
			return b.done(l.id, k)
		})
	case geom.KindGlyph:
		return l.cached(k, l.labels.Version(), proj, func() []shade.Call {
			for _, r := range geom.Instances(l.labels.Snapshot(nil)) {
				for i, q := range r.Quads {
					one := geom.GlyphRecord{Xform: r.Xform, Color: r.Color, Quads: r.Quads[i : i+1]}
					b.strips(shade.KindGlyph, q.UV.Page, geom.ExpandGlyphs(one, proj, a.PageSize(q.UV.Page)))
				}
			}
			return b.done(l.id, k)
		})
	case geom.KindParticle:
		for _, e := range geom.Instances(l.particles.Snapshot(nil)) {
			params := e.group.ExpandParams(e.uv, e.textured)
			kind := shade.KindSolid
			if e.textured {
				kind = shade.KindTextured
			}
			page := a.PageSize(e.uv.Page)
			for _, r := range e.group.Records(nil) {
				b.strip(kind, e.uv.Page, geom.ExpandParticle(r, params, proj, page))
			}
		}
		return b.done(l.id, k)
	case geom.KindTileBlock:
		pages := make([]*image.Frame, a.Pages())
		for i := range pages {
			pages[i] = a.Page(i)
		}
		culled := 0
		for _, e := range geom.Instances(l.tiles.Snapshot(nil)) {
			for _, blk := range e.m.Blocks() {
				rec := geom.TileBlockRecord{
					Block:    [2]int32(blk.Key),
					Origin:   e.origin,
					TileSize: e.tileSize,
					Color:    e.color,
				}
				s := geom.ExpandTileBlock(rec, proj)
				if s == nil {
					culled++
					continue
				}
				b.calls = append(b.calls, shade.Call{
					Kind:     shade.KindTile,
					Vertices: geom.StripToList(nil, s),
					Pages:    pages,
					Index:    &blk.Cells,
					LUT:      e.lut,
					Filter:   image.InterpBilinear,
				})
			}
		}
		if culled > 0 {
			Logger().Debug("g2d: tile blocks culled", "layer", l.id, "blocks", culled)
		}
		return b.done(l.id, k)
	}
	return nil
}

// cached returns the calls built for the batch's current version and the
// given projection, building them on a miss.
func (l *Layer) cached(k geom.Kind, version uint64, proj geom.Mat4, build func() []shade.Call) []shade.Call {
	l.mu.Lock()
	c, ok := l.cache[k]
	l.mu.Unlock()
	if ok && c.version == version && c.proj == proj {
		return c.calls
	}
	calls := build()
	l.mu.Lock()
	l.cache[k] = cachedCalls{version: version, proj: proj, calls: calls}
	l.mu.Unlock()
	return calls
}

// callBuilder gathers consecutive geometry sharing a program and page
// into one call.
type callBuilder struct {
	atlas   *atlas.Atlas
	calls   []shade.Call
	skipped int // instances that expanded to no geometry
}

// done returns the gathered calls, logging any skipped instances.
func (b *callBuilder) done(layer int, k geom.Kind) []shade.Call {
	if b.skipped > 0 {
		Logger().Debug("g2d: instances skipped", "layer", layer, "kind", k.String(), "instances", b.skipped)
	}
	return b.calls
}

func (b *callBuilder) call(kind shade.Kind, page int) *shade.Call {
	var pf *image.Frame
	if kind != shade.KindSolid {
		pf = b.atlas.Page(page)
	}
	if n := len(b.calls); n > 0 {
		if last := &b.calls[n-1]; last.Kind == kind && last.Page == pf {
			return last
		}
	}
	b.calls = append(b.calls, shade.Call{Kind: kind, Page: pf, Filter: image.InterpBilinear})
	return &b.calls[len(b.calls)-1]
}

func (b *callBuilder) strip(kind shade.Kind, page int, s geom.Strip) {
	if s == nil {
		b.skipped++
		return
	}
	c := b.call(kind, page)
	c.Vertices = geom.StripToList(c.Vertices, s)
}

func (b *callBuilder) strips(kind shade.Kind, page int, ss []geom.Strip) {
	if len(ss) == 0 {
		b.skipped++
		return
	}
	c := b.call(kind, page)
	c.Vertices = geom.StripsToList(c.Vertices, ss)
}

func (b *callBuilder) list(kind shade.Kind, page int, v []geom.Vertex) {
	if len(v) == 0 {
		b.skipped++
		return
	}
	c := b.call(kind, page)
	c.Vertices = append(c.Vertices, v...)
}

// compositeMode returns how an effect's output joins the frame below it.
func compositeMode(fx filter.Effect) blend.Mode {
	if cm, ok := fx.(filter.Compositor); ok {
		return cm.Mode()
	}
	return blend.ModeSourceOver
}
