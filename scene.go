package g2d

import (
	"context"
	"fmt"
	stdimage "image"
	"io"
	"slices"
	"sync"

	"github.com/gogpu/g2d/atlas"
	"github.com/gogpu/g2d/chain"
	"github.com/gogpu/g2d/internal/blend"
	"github.com/gogpu/g2d/internal/filter"
	"github.com/gogpu/g2d/internal/image"
	"github.com/gogpu/g2d/internal/raster"
	"github.com/gogpu/g2d/internal/shade"
	"github.com/gogpu/g2d/text"
)

// scratch recycles the per-layer frames of DrawLayers.
var scratch = image.NewPool(4)

// Scene is a set of layers drawn through a camera and a post-processing
// chain into one frame.
//
// Primitives may be added and modified from any goroutine, including
// while Render runs; each change becomes visible as a whole at a later
// Render. A single handle, and a group together with its members, must be
// used by one goroutine at a time. Render and Update must not run
// concurrently with each other.
type Scene struct {
	width, height int
	atlas         *atlas.Atlas
	camera        *Camera
	font          *text.Font
	raster        rasterizer
	defaults      *chain.Chain

	mu         sync.Mutex
	background RGBA
	layers     map[int]*Layer
	chain      *chain.Chain
	shaper     *text.Shaper
	dt         float32
	frame      *image.Frame
}

// NewScene creates a width x height scene.
//
// Example:
//
//	s, err := g2d.NewScene(640, 480, g2d.WithLoader(atlas.DirLoader("images")))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//	ship, err := s.Layer(0).AddSprite("ship", 320, 240)
//	...
//	if err := s.Render(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	_ = s.SavePNG("frame.png")
func NewScene(width, height int, opts ...SceneOption) (*Scene, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadSize, width, height)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if !raster.ValidSampleCount(o.samples) {
		return nil, fmt.Errorf("g2d: %w", raster.ErrSampleCount)
	}

	defaults, err := defaultChain(o.samples)
	if err != nil {
		return nil, err
	}
	a := o.atlas
	if a == nil {
		cfg := atlas.DefaultConfig()
		cfg.Logger = Logger()
		a = atlas.New(o.loader, cfg)
	}
	font := o.font
	if font == nil {
		font = text.DefaultFont()
	}
	r, err := newRasterizer(&o, width, height)
	if err != nil {
		return nil, err
	}
	frame, err := image.NewFrame(width, height)
	if err != nil {
		r.close()
		return nil, err
	}
	Logger().Debug("g2d: scene created", "width", width, "height", height,
		"samples", o.samples, "rasterizer", r.name())
	return &Scene{
		width:      width,
		height:     height,
		atlas:      a,
		camera:     newCamera(width, height),
		font:       font,
		raster:     r,
		defaults:   defaults,
		background: o.background,
		layers:     make(map[int]*Layer),
		chain:      o.chain,
		frame:      frame,
	}, nil
}

// defaultChain draws every layer, multisampled when samples > 1.
func defaultChain(samples int) (*chain.Chain, error) {
	b := chain.NewBuilder()
	n := b.AllLayers()
	if samples > 1 {
		n = b.Multisample(samples, n)
	}
	return b.Build(n)
}

// Close releases the rasterizer. The scene must not be used afterwards.
func (s *Scene) Close() {
	s.raster.close()
}

// Size returns the viewport size in pixels.
func (s *Scene) Size() (width, height int) { return s.width, s.height }

// Atlas returns the atlas textured primitives are packed into.
func (s *Scene) Atlas() *atlas.Atlas { return s.atlas }

// Camera returns the scene camera.
func (s *Scene) Camera() *Camera { return s.camera }

// Rasterizer names the backend frames are drawn with.
func (s *Scene) Rasterizer() string { return s.raster.name() }

// Background returns the clear colour.
func (s *Scene) Background() RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.background
}

// SetBackground sets the clear colour.
func (s *Scene) SetBackground(c RGBA) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.background = c
}

// Layer returns the layer with the given id, creating it on first use.
func (s *Scene) Layer(id int) *Layer {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.layers[id]
	if !ok {
		l = newLayer(s, id)
		s.layers[id] = l
	}
	return l
}

// LayerIDs returns the ids of the existing layers in ascending order.
func (s *Scene) LayerIDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int, 0, len(s.layers))
	for id := range s.layers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// SetChain replaces the post-processing chain. A nil chain restores the
// default, which draws every layer.
func (s *Scene) SetChain(c *chain.Chain) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chain = c
}

// Chain returns the active chain.
func (s *Scene) Chain() *chain.Chain {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chain == nil {
		return s.defaults
	}
	return s.chain
}

func (s *Scene) textShaper() *text.Shaper {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shaper == nil {
		s.shaper = text.NewShaper(s.font, s.atlas, text.DefaultRasterSize)
	}
	return s.shaper
}

// Update advances time-dependent state by dt seconds: particle groups,
// camera shake, and the frame time seen by effects such as trails.
func (s *Scene) Update(dt float32) {
	if !(dt > 0) {
		return
	}
	s.mu.Lock()
	s.dt = dt
	layers := make([]*Layer, 0, len(s.layers))
	for _, l := range s.layers {
		layers = append(layers, l)
	}
	s.mu.Unlock()

	for _, l := range layers {
		l.update(dt)
	}
	s.camera.update(dt)
}

// Render draws one frame: the frame is cleared to the background and the
// chain's outputs are composited over it.
func (s *Scene) Render(ctx context.Context) error {
	c := s.Chain()
	s.mu.Lock()
	bg := s.background
	env := filter.Env{DT: s.dt}
	s.mu.Unlock()

	s.frame.Fill(image.FromArray(bg.Array()).Clamp().Premultiply())
	c.SetLogger(Logger())
	if err := c.Render(ctx, s, s.frame, env); err != nil {
		return fmt.Errorf("g2d: render: %w", err)
	}
	return nil
}

// DrawLayers renders the given layers, lowest id first, over dst. It is
// called by the chain; applications use Render.
//
// Layers without an effect are drawn into a shared target. A layer with
// an effect is drawn alone, passed through its effect and composited with
// the effect's blend mode.
func (s *Scene) DrawLayers(ctx context.Context, dst *image.Frame, ids []int, samples int) error {
	proj := s.camera.Projection()
	var pending []shade.Call

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		tmp, err := scratch.Get(dst.Width(), dst.Height())
		if err != nil {
			return err
		}
		defer scratch.Put(tmp)
		if err := s.raster.draw(ctx, pending, samples, tmp); err != nil {
			return err
		}
		pending = pending[:0]
		return blend.BlendFrame(dst, tmp, blend.ModeSourceOver)
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.mu.Lock()
		l := s.layers[id]
		env := filter.Env{DT: s.dt}
		s.mu.Unlock()
		if l == nil {
			continue
		}
		visible, fx, _ := l.state()
		if !visible {
			continue
		}
		calls := l.calls(proj, s.atlas)
		if fx == nil {
			pending = append(pending, calls...)
			continue
		}
		if err := flush(); err != nil {
			return err
		}
		if err := s.drawEffectLayer(ctx, dst, calls, samples, fx, env); err != nil {
			return fmt.Errorf("layer %d: %w", id, err)
		}
	}
	return flush()
}

func (s *Scene) drawEffectLayer(ctx context.Context, dst *image.Frame, calls []shade.Call, samples int, fx filter.Effect, env filter.Env) error {
	src, err := scratch.Get(dst.Width(), dst.Height())
	if err != nil {
		return err
	}
	defer scratch.Put(src)
	out, err := scratch.Get(dst.Width(), dst.Height())
	if err != nil {
		return err
	}
	defer scratch.Put(out)

	if err := s.raster.draw(ctx, calls, samples, src); err != nil {
		return err
	}
	if err := fx.Apply(src, out, env); err != nil {
		return err
	}
	return blend.BlendFrame(dst, out, compositeMode(fx))
}

// Image returns the last rendered frame as a premultiplied 8-bit image.
func (s *Scene) Image() *stdimage.RGBA {
	return s.frame.ToImage()
}

// EncodePNG writes the last rendered frame as PNG.
func (s *Scene) EncodePNG(w io.Writer) error {
	return s.frame.EncodePNG(w)
}

// SavePNG writes the last rendered frame to a PNG file.
func (s *Scene) SavePNG(path string) error {
	return s.frame.SavePNG(path)
}
