package shade

import (
	"math"
	"testing"

	"github.com/gogpu/g2d/internal/geom"
	"github.com/gogpu/g2d/internal/image"
)

func solidFrame(t *testing.T, w, h int, c image.RGBA) *image.Frame {
	t.Helper()
	f := image.MustFrame(w, h)
	f.Fill(c)
	return f
}

func TestSolid(t *testing.T) {
	c := image.RGBA{R: 0.5, A: 0.5}
	got, ok := Solid{}.Shade(Fragment{Color: c})
	if !ok || got != c {
		t.Errorf("Solid = %v, %v, want %v", got, ok, c)
	}
}

func TestTextured(t *testing.T) {
	tex := solidFrame(t, 4, 4, image.RGBA{R: 1, G: 1, B: 1, A: 1})
	tint := image.RGBA{R: 0.5, G: 0.25, A: 0.5}
	got, ok := Textured{Texture: tex}.Shade(Fragment{UV: geom.V(0.5, 0.5), Color: tint})
	if !ok || got != tint {
		t.Errorf("Textured white * tint = %v, want %v", got, tint)
	}

	got, _ = Textured{}.Shade(Fragment{Color: tint})
	if got != tint {
		t.Errorf("Textured nil texture = %v, want %v", got, tint)
	}
}

func TestGlyph_UsesAlphaOnly(t *testing.T) {
	tex := solidFrame(t, 2, 2, image.RGBA{R: 0, G: 0.5, B: 0, A: 0.5})
	col := image.RGBA{R: 1, G: 1, B: 1, A: 1}
	got, ok := Glyph{Texture: tex}.Shade(Fragment{UV: geom.V(0.5, 0.5), Color: col})
	want := image.RGBA{R: 0.5, G: 0.5, B: 0.5, A: 0.5}
	if !ok || got != want {
		t.Errorf("Glyph = %v, want %v", got, want)
	}
}

func tileProgram(t *testing.T) (Tile, *TileIndex) {
	t.Helper()
	page := image.MustFrame(32, 16)
	// Left 16x16 red, right 16x16 green.
	for y := range 16 {
		for x := range 32 {
			if x < 16 {
				page.Set(x, y, image.RGBA{R: 1, A: 1})
			} else {
				page.Set(x, y, image.RGBA{G: 1, A: 1})
			}
		}
	}
	idx := &TileIndex{}
	lut := []geom.UVMap{
		{},
		{Origin: geom.V(0, 0), Across: geom.V(16, 0), Down: geom.V(0, 16)},
		{Origin: geom.V(16, 0), Across: geom.V(16, 0), Down: geom.V(0, 16)},
	}
	return Tile{Index: idx, LUT: lut, Pages: []*image.Frame{page}, Filter: image.InterpBilinear}, idx
}

func TestTile_IndexZeroDiscards(t *testing.T) {
	prog, idx := tileProgram(t)
	idx.Set(1, 0, 1)

	white := image.RGBA{R: 1, G: 1, B: 1, A: 1}
	for i := range 16 {
		for j := range 16 {
			uv := geom.V(float32(i)/16, float32(j)/16)
			if _, ok := prog.Shade(Fragment{UV: uv, Color: white}); ok {
				t.Fatalf("fragment at %v in empty cell was not discarded", uv)
			}
		}
	}
}

func TestTile_LookupAndInset(t *testing.T) {
	prog, idx := tileProgram(t)
	idx.Set(3, 5, 1)
	idx.Set(4, 5, 2)
	white := image.RGBA{R: 1, G: 1, B: 1, A: 1}

	tests := []struct {
		name string
		uv   geom.Vec2
		want image.RGBA
	}{
		{"red tile centre", geom.V(3.5, 5.5), image.RGBA{R: 1, A: 1}},
		// The right edge of the red tile must not bleed into green.
		{"red tile right edge", geom.V(3.999, 5.5), image.RGBA{R: 1, A: 1}},
		{"green tile left edge", geom.V(4.001, 5.5), image.RGBA{G: 1, A: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := prog.Shade(Fragment{UV: tt.uv, Color: white})
			if !ok {
				t.Fatal("fragment discarded")
			}
			if math.Abs(float64(got.R-tt.want.R)) > 1e-5 || math.Abs(float64(got.G-tt.want.G)) > 1e-5 {
				t.Errorf("Shade(%v) = %v, want %v", tt.uv, got, tt.want)
			}
		})
	}
}

func TestTile_OutOfRangeIndexDiscards(t *testing.T) {
	prog, idx := tileProgram(t)
	idx.Set(0, 0, 200)
	if _, ok := prog.Shade(Fragment{UV: geom.V(0.5, 0.5)}); ok {
		t.Error("index past the lookup table was not discarded")
	}
}

func TestInsetClamp(t *testing.T) {
	m := geom.UVMap{Origin: geom.V(10, 20), Across: geom.V(8, 0), Down: geom.V(0, 4)}
	tests := []struct {
		in, want geom.Vec2
	}{
		{geom.V(10, 20), geom.V(10.5, 20.5)},
		{geom.V(18, 24), geom.V(17.5, 23.5)},
		{geom.V(14, 22), geom.V(14, 22)},
	}
	for _, tt := range tests {
		if got := InsetClamp(m, tt.in); got != tt.want {
			t.Errorf("InsetClamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}

	thin := geom.UVMap{Origin: geom.V(0, 0), Across: geom.V(0.5, 0), Down: geom.V(0, 4)}
	if got := InsetClamp(thin, geom.V(0, 2)); got.X != 0.25 {
		t.Errorf("thin rect X = %v, want centre 0.25", got.X)
	}
}
