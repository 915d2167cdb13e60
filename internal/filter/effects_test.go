package filter

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/g2d/internal/blend"
	"github.com/gogpu/g2d/internal/image"
)

func TestPosterizeNearIdentity(t *testing.T) {
	src := randomFrame(t, 16, 16, 11)
	got := apply(t, &PosterizeFilter{Levels: 256, Gamma: 1}, src, Env{})
	for i, c := range got.Pix() {
		want := src.Pix()[i]
		if want.A < 1.0/512 {
			continue
		}
		if !colorApproxEqual(c, want, 1.0/512+1e-5) {
			t.Fatalf("pixel %d = %v, want %v within 1/512", i, c, want)
		}
	}
}

func TestPosterizeLevels(t *testing.T) {
	src := createTestFrame(t, 1, 1, image.RGBA{R: 0.3, G: 0.8, B: 0.45, A: 1})
	got := apply(t, &PosterizeFilter{Levels: 2, Gamma: 1}, src, Env{}).At(0, 0)
	want := image.RGBA{R: 0.5, G: 1, B: 0.5, A: 1}
	if !colorApproxEqual(got, want, 1e-6) {
		t.Errorf("posterize = %v, want %v", got, want)
	}
}

func TestPosterizeDiscardsNearZeroAlpha(t *testing.T) {
	src := createTestFrame(t, 2, 2, image.RGBA{R: 0.001, A: 0.001})
	got := apply(t, &PosterizeFilter{Levels: 4, Gamma: 0.7}, src, Env{})
	for _, c := range got.Pix() {
		if c != image.Transparent {
			t.Fatalf("near-transparent pixel became %v", c)
		}
	}
}

func TestPixellateSizeOneIdentity(t *testing.T) {
	src := randomFrame(t, 13, 9, 12)
	got := apply(t, &PixellateFilter{Size: 1, Antialias: 1}, src, Env{})
	framesApproxEqual(t, got, src, 0)
}

func TestPixellateBlocks(t *testing.T) {
	src := image.MustFrame(8, 8)
	for y := range 8 {
		for x := range 8 {
			src.Set(x, y, image.RGBA{R: float32(x) / 8, A: 1})
		}
	}
	got := apply(t, &PixellateFilter{Size: 4, Antialias: 1}, src, Env{})
	for y := range 8 {
		for x := range 8 {
			block := (x / 4) * 4
			ref := got.At(block, (y/4)*4)
			if !colorApproxEqual(got.At(x, y), ref, 1e-4) {
				t.Fatalf("pixel (%d,%d) = %v, differs from its block %v", x, y, got.At(x, y), ref)
			}
		}
	}
	// The first block averages columns 0..3.
	if want := float32(0+1+2+3) / 4 / 8; absf32(got.At(0, 0).R-want) > 1e-4 {
		t.Errorf("block average R = %v, want %v", got.At(0, 0).R, want)
	}
}

func TestPixellateNoAntialiasPointSamples(t *testing.T) {
	src := image.MustFrame(4, 1)
	for x := range 4 {
		src.Set(x, 0, image.RGBA{R: float32(x) / 4, A: 1})
	}
	got := apply(t, &PixellateFilter{Size: 4, Antialias: 0}, src, Env{})
	// Box of 1 texel at offset (4-1)/2 = 1.
	if want := float32(1) / 4; absf32(got.At(3, 0).R-want) > 1e-4 {
		t.Errorf("R = %v, want %v", got.At(3, 0).R, want)
	}
}

func TestBloomBrightensAroundHighlights(t *testing.T) {
	src := image.MustFrame(21, 21)
	src.Set(10, 10, image.RGBA{R: 1, G: 1, B: 1, A: 1})
	got := apply(t, &BloomFilter{Radius: 4, Gamma: 1, Intensity: 1}, src, Env{})
	if got.At(11, 10).A <= 0 {
		t.Error("no glow next to the highlight")
	}
	if got.At(10, 10) != (image.RGBA{R: 1, G: 1, B: 1, A: 1}) {
		t.Errorf("highlight = %v, want clamped white", got.At(10, 10))
	}
}

func TestBloomGammaGatesDarkPixels(t *testing.T) {
	src := createTestFrame(t, 9, 9, image.RGBA{R: 0.1, G: 0.1, B: 0.1, A: 1})
	low := apply(t, &BloomFilter{Radius: 3, Gamma: 1, Intensity: 1}, src, Env{}).At(4, 4)
	high := apply(t, &BloomFilter{Radius: 3, Gamma: 4, Intensity: 1}, src, Env{}).At(4, 4)
	if high.R >= low.R {
		t.Errorf("gamma 4 glow %v not below gamma 1 glow %v", high.R, low.R)
	}
}

func TestOutlineRing(t *testing.T) {
	src := image.MustFrame(5, 5)
	src.Set(2, 2, image.RGBA{R: 1, A: 1})
	got := apply(t, &OutlineFilter{Color: image.RGBA{B: 1, A: 1}}, src, Env{})
	if c := got.At(2, 2); !colorApproxEqual(c, image.RGBA{R: 1, A: 1}, 1e-6) {
		t.Errorf("centre = %v, want red", c)
	}
	if c := got.At(1, 1); !colorApproxEqual(c, image.RGBA{B: 1, A: 1}, 1e-6) {
		t.Errorf("ring = %v, want blue", c)
	}
	if c := got.At(0, 0); c.A != 0 {
		t.Errorf("outside = %v, want transparent", c)
	}
}

func TestPunchFactorOneIdentity(t *testing.T) {
	src := randomFrame(t, 8, 8, 13)
	got := apply(t, &PunchFilter{Factor: 1}, src, Env{})
	framesApproxEqual(t, got, src, 1e-4)
}

func TestTrailsFade(t *testing.T) {
	f := &TrailsFilter{Fade: 0.5, Alpha: 1}
	lit := createTestFrame(t, 1, 1, image.RGBA{R: 1, A: 1})
	dark := image.MustFrame(1, 1)

	apply(t, f, lit, Env{DT: 1})
	got := apply(t, f, dark, Env{DT: 1}).At(0, 0)
	if absf32(got.A-0.5) > 1e-6 {
		t.Errorf("trail alpha after 1s = %v, want 0.5", got.A)
	}
	got = apply(t, f, dark, Env{DT: 1}).At(0, 0)
	if absf32(got.A-0.25) > 1e-6 {
		t.Errorf("trail alpha after 2s = %v, want 0.25", got.A)
	}
}

func TestAdditiveComposites(t *testing.T) {
	var e Effect = AdditiveFilter{}
	c, ok := e.(Compositor)
	if !ok || c.Mode() != blend.ModeAdditive {
		t.Fatal("additive does not request additive composition")
	}
}

func TestRegistry_New(t *testing.T) {
	tests := []struct {
		name    string
		effect  string
		params  Params
		wantErr error
	}{
		{"defaults", "blur", nil, nil},
		{"override", "bloom", Params{"radius": {3}, "gamma": {2}}, nil},
		{"vector", "dropshadow", Params{"offset": {2, -3}}, nil},
		{"unknown effect", "sparkle", nil, ErrUnknownEffect},
		{"unknown param", "blur", Params{"sigma": {1}}, ErrBadParam},
		{"negative radius", "blur", Params{"radius": {-1}}, ErrBadParam},
		{"zero gamma", "posterize", Params{"gamma": {0}}, ErrBadParam},
		{"levels too low", "posterize", Params{"levels": {1}}, ErrBadParam},
		{"wrong arity", "dropshadow", Params{"offset": {1}}, ErrBadParam},
		{"opacity above one", "dropshadow", Params{"opacity": {1.5}}, ErrBadParam},
		{"matrix", "colormatrix", Params{"matrix": make([]float32, 16)}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(tt.effect, tt.params)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("New = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil || e == nil {
				t.Fatalf("New = %v, %v", e, err)
			}
		})
	}
}

func TestRegistry_Defaults(t *testing.T) {
	tests := []struct {
		effect string
		param  string
		want   []float32
	}{
		{"blur", "radius", []float32{10}},
		{"bloom", "intensity", []float32{0.5}},
		{"pixellate", "pxsize", []float32{10}},
		{"dropshadow", "offset", []float32{1, 1}},
		{"posterize", "gamma", []float32{0.7}},
		{"trails", "fade", []float32{0.9}},
		{"punch", "factor", []float32{0.9}},
		{"outline", "color", []float32{0, 0, 0, 1}},
	}
	for _, tt := range tests {
		d, ok := Lookup(tt.effect)
		if !ok {
			t.Fatalf("Lookup(%q) failed", tt.effect)
		}
		if got := d.Defaults()[tt.param]; !slices.Equal(got, tt.want) {
			t.Errorf("%s.%s default = %v, want %v", tt.effect, tt.param, got, tt.want)
		}
	}
}

func TestRegistry_Names(t *testing.T) {
	names := Names()
	for _, n := range []string{"blur", "bloom", "pixellate", "dropshadow", "posterize", "colormatrix", "greyscale", "sepia", "outline", "punch", "trails", "additive"} {
		if !slices.Contains(names, n) {
			t.Errorf("Names() missing %q", n)
		}
	}
	if !slices.IsSorted(names) {
		t.Error("Names() not sorted")
	}
}
