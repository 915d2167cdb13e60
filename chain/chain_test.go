package chain

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/gogpu/g2d/internal/blend"
	"github.com/gogpu/g2d/internal/filter"
	"github.com/gogpu/g2d/internal/image"
)

// fakeRenderer paints each layer as a solid rectangle. Layer k covers
// columns [k, width) so overlapping layers are distinguishable.
type fakeRenderer struct {
	colors  map[int]image.RGBA
	calls   [][]int
	samples []int
}

func (r *fakeRenderer) LayerIDs() []int {
	ids := make([]int, 0, len(r.colors))
	for id := range r.colors {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (r *fakeRenderer) DrawLayers(_ context.Context, dst *image.Frame, ids []int, samples int) error {
	r.calls = append(r.calls, slices.Clone(ids))
	r.samples = append(r.samples, samples)
	for _, id := range ids {
		c, ok := r.colors[id]
		if !ok {
			continue
		}
		for y := range dst.Height() {
			for x := id; x < dst.Width(); x++ {
				dst.Set(x, y, c.Over(dst.At(x, y)))
			}
		}
	}
	return nil
}

func newFake() *fakeRenderer {
	return &fakeRenderer{colors: map[int]image.RGBA{
		0: {R: 1, A: 1},
		1: {G: 0.5, A: 0.5},
		5: {B: 1, A: 1},
	}}
}

func render(t *testing.T, c *Chain, r Renderer, w, h int) *image.Frame {
	t.Helper()
	dst := image.MustFrame(w, h)
	if err := c.Render(context.Background(), r, dst, filter.Env{DT: 1.0 / 60}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return dst
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *Builder) []NodeID
		want  error
	}{
		{"no outputs", func(b *Builder) []NodeID { b.Layers(0); return nil }, ErrNoOutput},
		{"missing output", func(b *Builder) []NodeID { return []NodeID{3} }, ErrMissingNode},
		{"missing input", func(b *Builder) []NodeID {
			return []NodeID{b.Effect("blur", nil, 7)}
		}, ErrMissingNode},
		{"self cycle", func(b *Builder) []NodeID {
			return []NodeID{b.Effect("blur", nil, 0)}
		}, ErrCycle},
		{"two node cycle", func(b *Builder) []NodeID {
			a := b.Effect("blur", nil, 1)
			b.Effect("bloom", nil, a)
			return []NodeID{a}
		}, ErrCycle},
		{"unknown effect", func(b *Builder) []NodeID {
			return []NodeID{b.Effect("sparkle", nil, b.Layers(0))}
		}, ErrUnknownEffect},
		{"bad param", func(b *Builder) []NodeID {
			return []NodeID{b.Effect("blur", Params{"radius": {-3}}, b.Layers(0))}
		}, ErrBadParam},
		{"bad samples", func(b *Builder) []NodeID {
			return []NodeID{b.Multisample(3, b.Layers(0))}
		}, ErrBadParam},
		{"inverted range", func(b *Builder) []NodeID { return []NodeID{b.LayerRange(5, 2)} }, ErrBadParam},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			_, err := b.Build(tt.build(b)...)
			if !errors.Is(err, tt.want) {
				t.Errorf("Build = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBuild_OrderFollowsDependencies(t *testing.T) {
	b := NewBuilder()
	layers := b.Layers(0)
	blur := b.Effect("blur", Params{"radius": {2}}, layers)
	mask := b.Mask(blur, layers, MaskInside)
	c, err := b.Build(mask)
	if err != nil {
		t.Fatal(err)
	}
	got := c.Order()
	pos := func(id NodeID) int { return slices.Index(got, id) }
	if !(pos(layers) < pos(blur) && pos(blur) < pos(mask)) {
		t.Errorf("order = %v, inputs must precede consumers", got)
	}
	if len(got) != 3 {
		t.Errorf("order has %d nodes, want 3 (shared input evaluated once)", len(got))
	}
}

func TestBuild_UnreachableNodesIgnored(t *testing.T) {
	b := NewBuilder()
	out := b.Layers(0)
	b.Effect("sparkle", nil, out) // never consumed
	if _, err := b.Build(out); err != nil {
		t.Errorf("Build = %v, want nil", err)
	}
}

func TestRender_LayersComposite(t *testing.T) {
	b := NewBuilder()
	c, err := b.Build(b.AllLayers())
	if err != nil {
		t.Fatal(err)
	}
	r := newFake()
	dst := render(t, c, r, 8, 1)

	if got := dst.At(0, 0); got != (image.RGBA{R: 1, A: 1}) {
		t.Errorf("pixel 0 = %v, want red", got)
	}
	// Layer 1 draws over layer 0.
	want := image.RGBA{G: 0.5, A: 0.5}.Over(image.RGBA{R: 1, A: 1})
	if got := dst.At(2, 0); got != want {
		t.Errorf("pixel 2 = %v, want %v", got, want)
	}
	if got := dst.At(6, 0); got != (image.RGBA{B: 1, A: 1}) {
		t.Errorf("pixel 6 = %v, want blue", got)
	}
	if !slices.Equal(r.calls[0], []int{0, 1, 5}) {
		t.Errorf("layers drawn = %v, want [0 1 5]", r.calls[0])
	}
}

func TestRender_LayerRangeAndExplicitLayers(t *testing.T) {
	b := NewBuilder()
	rng := b.LayerRange(1, 5)
	explicit := b.Layers(5, 0, 5, 9)
	c, err := b.Build(rng, explicit)
	if err != nil {
		t.Fatal(err)
	}
	r := newFake()
	render(t, c, r, 8, 1)
	if !slices.Equal(r.calls[0], []int{1}) {
		t.Errorf("range drew %v, want [1]", r.calls[0])
	}
	if !slices.Equal(r.calls[1], []int{0, 5, 9}) {
		t.Errorf("explicit drew %v, want [0 5 9]", r.calls[1])
	}
}

func TestRender_MaskFormula(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	randColor := func() image.RGBA {
		a := rng.Float32()
		return image.RGBA{R: rng.Float32() * a, G: rng.Float32() * a, B: rng.Float32() * a, A: a}
	}
	for range 50 {
		paint, mask := randColor(), randColor()
		b := NewBuilder()
		p := b.Fill(paint.Straight().Array())
		m := b.Fill(mask.Straight().Array())
		c, err := b.Build(b.Mask(p, m, MaskInside))
		if err != nil {
			t.Fatal(err)
		}
		got := render(t, c, newFake(), 1, 1).At(0, 0)
		pp := image.FromArray(paint.Straight().Array()).Premultiply()
		ma := mask.Straight().A
		if d := got.A - pp.A*ma; d > 1e-5 || d < -1e-5 {
			t.Fatalf("alpha = %v, want %v", got.A, pp.A*ma)
		}
		if got.A > 1e-3 {
			s := got.Straight()
			ps := pp.Straight()
			if d := s.R - ps.R; d > 1e-3 || d < -1e-3 {
				t.Fatalf("straight R = %v, want %v", s.R, ps.R)
			}
		}
	}
}

func TestRender_MaskModes(t *testing.T) {
	tests := []struct {
		mode MaskMode
		want float32
	}{
		{MaskInside, 0.25},
		{MaskOutside, 0.75},
		{MaskLuminance, 0.25 * 0.6},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			b := NewBuilder()
			p := b.Fill([4]float32{1, 1, 1, 1})
			m := b.Fill([4]float32{0, 1, 0, 0.25})
			c, err := b.Build(b.Mask(p, m, tt.mode))
			if err != nil {
				t.Fatal(err)
			}
			got := render(t, c, newFake(), 1, 1).At(0, 0)
			if d := got.A - tt.want; d > 1e-6 || d < -1e-6 {
				t.Errorf("alpha = %v, want %v", got.A, tt.want)
			}
		})
	}
}

func TestRender_SiblingOrderIndependent(t *testing.T) {
	build := func(swap bool) *Chain {
		b := NewBuilder()
		var blur, glow NodeID
		layers := b.AllLayers()
		if swap {
			glow = b.Effect("bloom", Params{"radius": {2}}, layers)
			blur = b.Effect("blur", Params{"radius": {3}}, layers)
		} else {
			blur = b.Effect("blur", Params{"radius": {3}}, layers)
			glow = b.Effect("bloom", Params{"radius": {2}}, layers)
		}
		c, err := b.Build(b.Mask(glow, blur, MaskInside))
		if err != nil {
			t.Fatal(err)
		}
		return c
	}
	a := render(t, build(false), newFake(), 12, 6)
	b := render(t, build(true), newFake(), 12, 6)
	if !slices.Equal(a.Pix(), b.Pix()) {
		t.Error("sibling evaluation order changed the output")
	}
}

func TestRender_MultisamplePropagates(t *testing.T) {
	b := NewBuilder()
	layers := b.Layers(0)
	ms := b.Multisample(4, layers)
	plain := b.Layers(1)
	c, err := b.Build(ms, plain)
	if err != nil {
		t.Fatal(err)
	}
	r := newFake()
	render(t, c, r, 4, 1)
	if !slices.Equal(r.samples, []int{4, 1}) {
		t.Errorf("sample counts = %v, want [4 1]", r.samples)
	}
}

func TestRender_AdditiveOutput(t *testing.T) {
	b := NewBuilder()
	red := b.Fill([4]float32{0.5, 0, 0, 1})
	add := b.Effect("additive", nil, b.Fill([4]float32{0.25, 0, 0, 1}))
	c, err := b.Build(red, add)
	if err != nil {
		t.Fatal(err)
	}
	if c.Mode(add) != blend.ModeAdditive {
		t.Fatalf("mode = %v, want additive", c.Mode(add))
	}
	got := render(t, c, newFake(), 1, 1).At(0, 0)
	if got.R != 0.75 || got.A != 1 {
		t.Errorf("pixel = %v, want R 0.75 A 1", got)
	}
}

func TestRender_Cancelled(t *testing.T) {
	b := NewBuilder()
	c, err := b.Build(b.AllLayers())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = c.Render(ctx, newFake(), image.MustFrame(2, 2), filter.Env{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Render = %v, want context.Canceled", err)
	}
}

func TestRender_TrailsStatePerChain(t *testing.T) {
	b := NewBuilder()
	trail := b.Effect("trails", Params{"fade": {0.5}}, b.Layers(0))
	c, err := b.Build(trail)
	if err != nil {
		t.Fatal(err)
	}
	r := newFake()
	render(t, c, r, 2, 1)
	delete(r.colors, 0)
	dst := image.MustFrame(2, 1)
	if err := c.Render(context.Background(), r, dst, filter.Env{DT: 1}); err != nil {
		t.Fatal(err)
	}
	if got := dst.At(0, 0).A; got <= 0 || got >= 1 {
		t.Errorf("trail alpha = %v, want a fading remnant", got)
	}
}

func TestFromSpecs(t *testing.T) {
	specs := []NodeSpec{
		{ID: "masked", Kind: "mask", Inputs: []string{"glow", "world"}, Mode: "inside"},
		{ID: "glow", Kind: "effect", Effect: "bloom", Params: Params{"radius": {4}}, Inputs: []string{"world"}},
		{ID: "world", Kind: "range", Range: [2]int{0, 5}},
		{ID: "ui", Kind: "layers", Layers: []int{5}},
	}
	c, err := FromSpecs(specs, "masked", "ui")
	if err != nil {
		t.Fatalf("FromSpecs: %v", err)
	}
	if got := len(c.Order()); got != 4 {
		t.Errorf("order has %d nodes, want 4", got)
	}
	render(t, c, newFake(), 8, 2)
}

func TestFromSpecs_Errors(t *testing.T) {
	tests := []struct {
		name  string
		specs []NodeSpec
		out   []string
		want  error
	}{
		{"duplicate", []NodeSpec{{ID: "a", Kind: "fill"}, {ID: "a", Kind: "fill"}}, []string{"a"}, ErrDuplicateNode},
		{"missing input", []NodeSpec{{ID: "a", Kind: "effect", Effect: "blur", Inputs: []string{"nope"}}}, []string{"a"}, ErrMissingNode},
		{"missing output", []NodeSpec{{ID: "a", Kind: "fill"}}, []string{"b"}, ErrMissingNode},
		{"cycle", []NodeSpec{
			{ID: "a", Kind: "effect", Effect: "blur", Inputs: []string{"b"}},
			{ID: "b", Kind: "effect", Effect: "blur", Inputs: []string{"a"}},
		}, []string{"a"}, ErrCycle},
		{"bad kind", []NodeSpec{{ID: "a", Kind: "teapot"}}, []string{"a"}, ErrBadParam},
		{"mask arity", []NodeSpec{{ID: "f", Kind: "fill"}, {ID: "a", Kind: "mask", Inputs: []string{"f"}}}, []string{"a"}, ErrBadParam},
		{"mask mode", []NodeSpec{{ID: "f", Kind: "fill"}, {ID: "a", Kind: "mask", Inputs: []string{"f", "f"}, Mode: "sideways"}}, []string{"a"}, ErrBadParam},
		{"unknown effect", []NodeSpec{{ID: "f", Kind: "fill"}, {ID: "a", Kind: "effect", Effect: "warp", Inputs: []string{"f"}}}, []string{"a"}, ErrUnknownEffect},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromSpecs(tt.specs, tt.out...)
			if !errors.Is(err, tt.want) {
				t.Errorf("FromSpecs = %v, want %v", err, tt.want)
			}
		})
	}
}
