package blend

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/gogpu/g2d/internal/image"
)

const eps = 1e-5

func near(a, b image.RGBA) bool {
	return math.Abs(float64(a.R-b.R)) < eps &&
		math.Abs(float64(a.G-b.G)) < eps &&
		math.Abs(float64(a.B-b.B)) < eps &&
		math.Abs(float64(a.A-b.A)) < eps
}

func TestBlend_Modes(t *testing.T) {
	red := image.RGBA{R: 1, A: 1}
	halfBlue := image.RGBA{B: 0.5, A: 0.5}

	tests := []struct {
		name     string
		src, dst image.RGBA
		mode     Mode
		want     image.RGBA
	}{
		{"over opaque", red, halfBlue, ModeSourceOver, red},
		{"over translucent", halfBlue, red, ModeSourceOver, image.RGBA{R: 0.5, B: 0.5, A: 1}},
		{"source", halfBlue, red, ModeSource, halfBlue},
		{"destination over", red, halfBlue, ModeDestinationOver, image.RGBA{R: 0.5, B: 0.5, A: 1}},
		{"destination in", halfBlue, red, ModeDestinationIn, image.RGBA{R: 0.5, A: 0.5}},
		{"additive clamps", red, red, ModeAdditive, red},
		{"clear", red, red, ModeClear, image.Transparent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Blend(tt.src, tt.dst, tt.mode)
			if !near(got, tt.want) {
				t.Errorf("Blend(%v) = %v, want %v", tt.mode, got, tt.want)
			}
		})
	}
}

func TestAtop(t *testing.T) {
	tests := []struct {
		name        string
		top, bottom image.RGBA
		want        image.RGBA
	}{
		{"transparent top keeps bottom rgb", image.RGBA{R: 1}, image.RGBA{G: 1, A: 0.5}, image.RGBA{G: 1, A: 0.5}},
		{"opaque top wins", image.RGBA{R: 1, A: 1}, image.RGBA{G: 1, A: 1}, image.RGBA{R: 1, A: 1}},
		{"half mix", image.RGBA{R: 1, A: 0.5}, image.RGBA{G: 1, A: 0.5}, image.RGBA{R: 0.5, G: 0.5, A: 0.75}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Atop(tt.top, tt.bottom); !near(got, tt.want) {
				t.Errorf("Atop = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMask_Formula(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for range 200 {
		paint := image.RGBA{R: rng.Float32(), G: rng.Float32(), B: rng.Float32(), A: rng.Float32()}
		mask := image.RGBA{R: rng.Float32(), G: rng.Float32(), B: rng.Float32(), A: rng.Float32()}
		got := Mask(paint, mask)
		if math.Abs(float64(got.A-paint.A*mask.A)) > eps {
			t.Fatalf("Mask alpha = %v, want %v", got.A, paint.A*mask.A)
		}
		// Un-premultiplied colour is the paint colour.
		if paint.A > 0.01 && mask.A > 0.01 {
			g, p := got.Straight(), paint.Straight()
			if math.Abs(float64(g.R-p.R)) > 1e-3 || math.Abs(float64(g.G-p.G)) > 1e-3 || math.Abs(float64(g.B-p.B)) > 1e-3 {
				t.Fatalf("Mask rgb = %v, want %v", g, p)
			}
		}
	}
}

func TestUnder(t *testing.T) {
	shadow := image.RGBA{A: 1}
	if got := Under(image.RGBA{R: 1, A: 1}, shadow); !near(got, image.RGBA{R: 1, A: 1}) {
		t.Errorf("opaque source over shadow = %v", got)
	}
	if got := Under(image.Transparent, shadow); !near(got, shadow) {
		t.Errorf("transparent source = %v, want shadow", got)
	}
	if got := Under(image.Transparent, image.Transparent); got != image.Transparent {
		t.Errorf("empty = %v", got)
	}
	got := Under(image.RGBA{R: 0.5, A: 0.5}, image.RGBA{A: 0.5})
	if math.Abs(float64(got.A-0.75)) > eps {
		t.Errorf("alpha = %v, want 0.75", got.A)
	}
}

func TestBlendFrame_SizeMismatch(t *testing.T) {
	a := image.MustFrame(2, 2)
	b := image.MustFrame(3, 2)
	if err := BlendFrame(a, b, ModeSourceOver); err == nil {
		t.Error("BlendFrame with mismatched sizes succeeded")
	}
}
