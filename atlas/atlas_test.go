package atlas

import (
	"errors"
	stdimage "image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gogpu/g2d/internal/image"
)

func solid(w, h int, c color.NRGBA) *stdimage.NRGBA {
	img := stdimage.NewNRGBA(stdimage.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestShelfPacker(t *testing.T) {
	p := newShelfPacker(100, 100)
	tests := []struct {
		w, h int
		want region
	}{
		{40, 20, region{0, 0, 40, 20}},
		{40, 10, region{40, 0, 40, 10}},
		{30, 30, region{0, 20, 30, 30}},
		{80, 10, region{0, 50, 80, 10}},
		{200, 10, region{}},
		{10, 60, region{}},
	}
	for _, tt := range tests {
		if got := p.place(tt.w, tt.h); got != tt.want {
			t.Errorf("place(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestShelfPacker_TallerItemOpensShelf(t *testing.T) {
	p := newShelfPacker(100, 100)
	p.place(100, 10)
	p.place(10, 5)
	if got, want := p.place(10, 20), (region{0, 15, 10, 20}); got != want {
		t.Errorf("place = %v, want %v", got, want)
	}
}

func TestAtlas_AddAndSample(t *testing.T) {
	a := New(nil, Config{PageSize: 64, Padding: 2})
	e, err := a.Add("red", solid(8, 4, color.NRGBA{R: 255, A: 255}))
	if err != nil {
		t.Fatal(err)
	}
	if e.Width != 8 || e.Height != 4 || e.Rotated {
		t.Fatalf("entry = %+v", e)
	}
	if e.UV.Origin.X != 2 || e.UV.Origin.Y != 2 {
		t.Errorf("origin = %v, want padding offset (2, 2)", e.UV.Origin)
	}
	page := a.Page(e.UV.Page)
	centre := e.UV.At(0.5, 0.5)
	if got := page.At(int(centre.X), int(centre.Y)); got != (image.RGBA{R: 1, A: 1}) {
		t.Errorf("page at centre = %v, want red", got)
	}
	if got := page.At(1, 1); got.A != 0 {
		t.Errorf("padding = %v, want transparent", got)
	}
}

func TestAtlas_StableMappings(t *testing.T) {
	a := New(nil, Config{PageSize: 32, Padding: 1})
	first, err := a.Add("a", solid(20, 20, color.NRGBA{G: 255, A: 255}))
	if err != nil {
		t.Fatal(err)
	}
	before := a.Page(first.UV.Page).Clone()

	for i, name := range []string{"b", "c", "d", "e"} {
		if _, err := a.Add(name, solid(12+i, 14, color.NRGBA{B: 255, A: 255})); err != nil {
			t.Fatal(err)
		}
	}
	if a.Pages() < 2 {
		t.Fatalf("pages = %d, want growth past the first page", a.Pages())
	}
	again, _ := a.Lookup("a")
	if again != first {
		t.Errorf("mapping changed: %+v -> %+v", first, again)
	}
	after := a.Page(first.UV.Page)
	for y := range 20 {
		for x := range 20 {
			px, py := x+int(first.UV.Origin.X), y+int(first.UV.Origin.Y)
			if after.At(px, py) != before.At(px, py) {
				t.Fatalf("pixel (%d,%d) of the first image changed", px, py)
			}
		}
	}
}

func TestAtlas_PageHandedOutIsNotWritten(t *testing.T) {
	a := New(nil, Config{PageSize: 64, Padding: 1})
	first, err := a.Add("a", solid(8, 8, color.NRGBA{R: 255, A: 255}))
	if err != nil {
		t.Fatal(err)
	}
	held := a.Page(first.UV.Page)
	before := held.Clone()

	second, err := a.Add("b", solid(8, 8, color.NRGBA{G: 255, A: 255}))
	if err != nil {
		t.Fatal(err)
	}
	if second.UV.Page != first.UV.Page {
		t.Fatalf("second image on page %d, want %d", second.UV.Page, first.UV.Page)
	}
	for i, c := range held.Pix() {
		if c != before.Pix()[i] {
			t.Fatalf("held page changed at pixel %d", i)
		}
	}
	now := a.Page(first.UV.Page)
	if now == held {
		t.Fatal("Page returned the held frame after a write")
	}
	centre := second.UV.At(0.5, 0.5)
	if got := now.At(int(centre.X), int(centre.Y)); got != (image.RGBA{G: 1, A: 1}) {
		t.Errorf("new page at second image = %v, want green", got)
	}
}

func TestAtlas_ConcurrentAddAndRead(t *testing.T) {
	a := New(nil, Config{PageSize: 128, Padding: 1})
	if _, err := a.Add("seed", solid(4, 4, color.NRGBA{A: 255})); err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	for g := range 4 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := range 16 {
				name := string(rune('a'+g)) + string(rune('a'+i))
				if _, err := a.Add(name, solid(4, 4, color.NRGBA{B: 255, A: 255})); err != nil {
					t.Error(err)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for range 16 {
				p := a.Page(0)
				var sum float32
				for _, c := range p.Pix() {
					sum += c.A
				}
				if sum < 16 {
					t.Errorf("page alpha sum = %v, want the seed image at least", sum)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestAtlas_DedicatedPageForLargeImages(t *testing.T) {
	a := New(nil, Config{PageSize: 32, Padding: 2})
	e, err := a.Add("big", solid(50, 10, color.NRGBA{A: 255}))
	if err != nil {
		t.Fatal(err)
	}
	if got := a.PageSize(e.UV.Page); got.X != 54 || got.Y != 14 {
		t.Errorf("dedicated page = %v, want 54x14", got)
	}
	if u := a.Utilization(e.UV.Page); u != 0 {
		t.Errorf("dedicated page utilization = %v, want 0", u)
	}
}

func TestAtlas_Rotation(t *testing.T) {
	a := New(nil, Config{PageSize: 32, Padding: 0})
	if _, err := a.Add("wide", solid(32, 20, color.NRGBA{A: 255})); err != nil {
		t.Fatal(err)
	}
	// 12 rows remain: a 10x20 image only fits turned on its side.
	img := stdimage.NewNRGBA(stdimage.Rect(0, 0, 10, 20))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(9, 19, color.NRGBA{G: 255, A: 255})
	e, err := a.Add("tall", img)
	if err != nil {
		t.Fatal(err)
	}
	if !e.Rotated || e.UV.Page != 0 {
		t.Fatalf("entry = %+v, want rotated on page 0", e)
	}
	page := a.Page(0)
	probe := func(u, v float32) image.RGBA {
		p := e.UV.At(u, v)
		return page.SamplePixel(p.X, p.Y, image.InterpNearest)
	}
	if got := probe(0.5/10, 0.5/20); got != (image.RGBA{R: 1, A: 1}) {
		t.Errorf("top-left texel = %v, want red", got)
	}
	if got := probe(9.5/10, 19.5/20); got != (image.RGBA{G: 1, A: 1}) {
		t.Errorf("bottom-right texel = %v, want green", got)
	}
	if e.UV.Width() != 10 || e.UV.Height() != 20 {
		t.Errorf("uv size = %vx%v, want 10x20", e.UV.Width(), e.UV.Height())
	}
}

func TestAtlas_Errors(t *testing.T) {
	a := New(nil, Config{PageSize: 16, MaxPages: 1, MaxImageSize: 40})
	if _, err := a.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get = %v, want ErrNotFound", err)
	}
	if _, err := a.Add("huge", solid(41, 1, color.NRGBA{})); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Add huge = %v, want ErrTooLarge", err)
	}
	if _, err := a.Add("one", solid(10, 10, color.NRGBA{})); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Add("two", solid(10, 10, color.NRGBA{})); !errors.Is(err, ErrAtlasFull) {
		t.Errorf("Add = %v, want ErrAtlasFull", err)
	}
}

func TestAtlas_DuplicateNameKeepsFirst(t *testing.T) {
	a := New(nil, DefaultConfig())
	e1, _ := a.Add("x", solid(4, 4, color.NRGBA{A: 255}))
	v := a.Version()
	e2, _ := a.Add("x", solid(9, 9, color.NRGBA{A: 255}))
	if e1 != e2 || a.Version() != v {
		t.Errorf("second Add changed the atlas: %+v -> %+v", e1, e2)
	}
}

func TestDirLoader(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "ship.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, solid(3, 2, color.NRGBA{B: 255, A: 255})); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	a := New(DirLoader(dir), DefaultConfig())
	e, err := a.Get("ship")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if e.Width != 3 || e.Height != 2 {
		t.Errorf("size = %dx%d, want 3x2", e.Width, e.Height)
	}
	if _, err := a.Get("asteroid"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing = %v, want ErrNotFound", err)
	}
	if got := a.Names(); len(got) != 1 || got[0] != "ship" {
		t.Errorf("Names = %v", got)
	}
}

func TestMapLoader(t *testing.T) {
	a := New(MapLoader(map[string]stdimage.Image{"dot": solid(1, 1, color.NRGBA{A: 255})}), DefaultConfig())
	if _, err := a.Get("dot"); err != nil {
		t.Errorf("Get = %v", err)
	}
	if _, err := a.Get("dash"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get = %v, want ErrNotFound", err)
	}
}
