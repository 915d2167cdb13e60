package filter

import (
	"math/rand/v2"
	"testing"

	"github.com/gogpu/g2d/internal/image"
)

// Test helper functions shared across filter tests.

// createTestFrame creates a frame filled with the given color.
func createTestFrame(t testing.TB, w, h int, c image.RGBA) *image.Frame {
	t.Helper()
	f := image.MustFrame(w, h)
	f.Fill(c)
	return f
}

// randomFrame fills a frame with random premultiplied colours.
func randomFrame(t testing.TB, w, h int, seed uint64) *image.Frame {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	f := image.MustFrame(w, h)
	for y := range h {
		for x := range w {
			c := image.RGBA{R: rng.Float32(), G: rng.Float32(), B: rng.Float32(), A: rng.Float32()}
			f.Set(x, y, c.Premultiply())
		}
	}
	return f
}

// colorApproxEqual compares two colors with tolerance.
func colorApproxEqual(a, b image.RGBA, tolerance float32) bool {
	return absf32(a.R-b.R) <= tolerance &&
		absf32(a.G-b.G) <= tolerance &&
		absf32(a.B-b.B) <= tolerance &&
		absf32(a.A-b.A) <= tolerance
}

// framesApproxEqual reports the first differing pixel, if any.
func framesApproxEqual(t testing.TB, got, want *image.Frame, tolerance float32) {
	t.Helper()
	for y := range want.Height() {
		for x := range want.Width() {
			if g, w := got.At(x, y), want.At(x, y); !colorApproxEqual(g, w, tolerance) {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, g, w)
			}
		}
	}
}

// absf32 returns the absolute value of a float32.
func absf32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func apply(t testing.TB, e Effect, src *image.Frame, env Env) *image.Frame {
	t.Helper()
	dst := image.MustFrame(src.Width(), src.Height())
	if err := e.Apply(src, dst, env); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	return dst
}
