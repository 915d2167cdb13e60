// Package atlas packs named images into shared texture pages.
//
// Images are placed on fixed-size pages with a shelf packer and addressed
// by geom.UVMap values in page pixels. A mapping never changes once issued:
// adding images only fills free space or opens new pages. Images too large
// for a page get a page of their own.
//
// Pages handed out by Page are never written again. A later image packed
// onto such a page goes into a fresh copy, so a frame being drawn keeps a
// consistent view while other goroutines add images.
package atlas

import (
	"errors"
	"fmt"
	stdimage "image"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/image/draw"

	"github.com/gogpu/g2d/internal/geom"
	"github.com/gogpu/g2d/internal/image"
)

// Atlas errors.
var (
	// ErrNotFound is returned when the loader has no image for a name.
	ErrNotFound = errors.New("atlas: image not found")

	// ErrAtlasFull is returned when MaxPages pages are in use and the image
	// fits on none of them.
	ErrAtlasFull = errors.New("atlas: atlas is full")

	// ErrTooLarge is returned for images larger than MaxImageSize.
	ErrTooLarge = errors.New("atlas: image too large")
)

// Default settings.
const (
	// DefaultPageSize is the edge length of a shared page.
	DefaultPageSize = 512

	// DefaultPadding is the transparent border kept around every image.
	DefaultPadding = 2

	// DefaultMaxImageSize matches the smallest maximum texture size of the
	// GPU backends.
	DefaultMaxImageSize = 8192
)

// Config configures an Atlas.
type Config struct {
	// PageSize is the width and height of shared pages.
	PageSize int

	// Padding is the transparent border, in pixels, on every side of an image.
	Padding int

	// MaxPages limits the number of pages. Zero means unlimited.
	MaxPages int

	// MaxImageSize is the largest accepted image edge.
	MaxImageSize int

	// Logger receives page allocation events. Nil disables logging.
	Logger *slog.Logger
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		PageSize:     DefaultPageSize,
		Padding:      DefaultPadding,
		MaxImageSize: DefaultMaxImageSize,
	}
}

// Entry describes one packed image.
type Entry struct {
	Name string
	// UV maps the image's unit square to page pixels.
	UV geom.UVMap
	// Width and Height are the image's own size.
	Width, Height int
	// Rotated reports that the image is stored turned a quarter clockwise.
	Rotated bool
}

// Size returns the image size as a vector.
func (e Entry) Size() geom.Vec2 {
	return geom.Vec2{X: float32(e.Width), Y: float32(e.Height)}
}

type page struct {
	frame  *image.Frame
	packer *shelfPacker // nil for a dedicated page
	shared bool         // frame has been returned by Page
}

// writable returns the frame of page i, copying it first if readers may
// hold it.
func (a *Atlas) writable(i int) *image.Frame {
	p := a.pages[i]
	if p.shared {
		p.frame = p.frame.Clone()
		p.shared = false
		a.log.Debug("atlas: page copied on write", "page", i)
	}
	return p.frame
}

// Atlas packs images into pages. It is safe for concurrent use.
type Atlas struct {
	mu      sync.Mutex
	cfg     Config
	load    Loader
	pages   []*page
	entries map[string]Entry
	version uint64
	log     *slog.Logger
}

// New creates an atlas that loads missing names through load. A nil load
// makes Get report ErrNotFound for every name not added explicitly.
func New(load Loader, cfg Config) *Atlas {
	def := DefaultConfig()
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if cfg.Padding < 0 {
		cfg.Padding = 0
	}
	if cfg.MaxImageSize <= 0 {
		cfg.MaxImageSize = def.MaxImageSize
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Atlas{
		cfg:     cfg,
		load:    load,
		entries: make(map[string]Entry),
		log:     log,
	}
}

// Get returns the entry for name, loading and packing the image the first
// time it is requested.
func (a *Atlas) Get(name string) (Entry, error) {
	a.mu.Lock()
	if e, ok := a.entries[name]; ok {
		a.mu.Unlock()
		return e, nil
	}
	load := a.load
	a.mu.Unlock()

	if load == nil {
		return Entry{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	img, err := load(name)
	if err != nil {
		return Entry{}, err
	}
	return a.Add(name, img)
}

// Lookup returns the entry for name without loading it.
func (a *Atlas) Lookup(name string) (Entry, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.entries[name]
	return e, ok
}

// Add packs img under name. Adding a name twice returns the first entry.
func (a *Atlas) Add(name string, img stdimage.Image) (Entry, error) {
	f, err := image.FromImage(img)
	if err != nil {
		return Entry{}, fmt.Errorf("atlas: %q: %w", name, err)
	}
	return a.AddFrame(name, f)
}

// AddFrame packs a premultiplied frame under name.
func (a *Atlas) AddFrame(name string, f *image.Frame) (Entry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if e, ok := a.entries[name]; ok {
		return e, nil
	}
	w, h := f.Width(), f.Height()
	if w > a.cfg.MaxImageSize || h > a.cfg.MaxImageSize {
		return Entry{}, fmt.Errorf("%w: %q is %dx%d, limit %d", ErrTooLarge, name, w, h, a.cfg.MaxImageSize)
	}

	pad := a.cfg.Padding
	idx, r, rotated, err := a.place(w+2*pad, h+2*pad)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %q", err, name)
	}
	inner := region{X: r.X + pad, Y: r.Y + pad, Width: r.Width - 2*pad, Height: r.Height - 2*pad}
	a.blit(a.writable(idx), f, inner, rotated)

	e := Entry{Name: name, Width: w, Height: h, Rotated: rotated, UV: uvFor(inner, idx, rotated)}
	a.entries[name] = e
	a.version++
	a.log.Debug("atlas: packed image", "name", name, "page", idx, "region", inner.String(), "rotated", rotated)
	return e, nil
}

// place finds room for a padded w x h rectangle, opening a page if needed.
func (a *Atlas) place(w, h int) (int, region, bool, error) {
	size := a.cfg.PageSize
	if max(w, h) > size {
		// Dedicated page sized to the image.
		if err := a.canGrow(); err != nil {
			return 0, region{}, false, err
		}
		a.pages = append(a.pages, &page{frame: image.MustFrame(w, h)})
		a.log.Info("atlas: dedicated page", "page", len(a.pages)-1, "width", w, "height", h)
		return len(a.pages) - 1, region{Width: w, Height: h}, false, nil
	}

	for i, p := range a.pages {
		if r, rot, ok := fit(p, w, h); ok {
			return i, r, rot, nil
		}
	}
	if err := a.canGrow(); err != nil {
		return 0, region{}, false, err
	}
	p := &page{frame: image.MustFrame(size, size), packer: newShelfPacker(size, size)}
	a.pages = append(a.pages, p)
	a.log.Info("atlas: new page", "page", len(a.pages)-1, "size", size)
	r, rot, _ := fit(p, w, h)
	return len(a.pages) - 1, r, rot, nil
}

// fit tries w x h upright, then turned a quarter.
func fit(p *page, w, h int) (region, bool, bool) {
	if p.packer == nil {
		return region{}, false, false
	}
	if r := p.packer.place(w, h); r.valid() {
		return r, false, true
	}
	if w != h {
		if r := p.packer.place(h, w); r.valid() {
			return r, true, true
		}
	}
	return region{}, false, false
}

func (a *Atlas) canGrow() error {
	if a.cfg.MaxPages > 0 && len(a.pages) >= a.cfg.MaxPages {
		return ErrAtlasFull
	}
	return nil
}

// blit copies src into r on dst. A rotated placement turns src a quarter
// clockwise: source pixel (x, y) lands at (r.X + h-1-y, r.Y + x).
func (a *Atlas) blit(dst, src *image.Frame, r region, rotated bool) {
	if !rotated {
		draw.Copy(image.View{F: dst}, stdimage.Pt(r.X, r.Y), image.View{F: src},
			stdimage.Rect(0, 0, src.Width(), src.Height()), draw.Src, nil)
		return
	}
	h := src.Height()
	for y := range h {
		for x, c := range src.Row(y) {
			dst.Set(r.X+h-1-y, r.Y+x, c)
		}
	}
}

// uvFor maps an image's unit square onto its region.
func uvFor(r region, pageIdx int, rotated bool) geom.UVMap {
	x, y := float32(r.X), float32(r.Y)
	w, h := float32(r.Width), float32(r.Height)
	if rotated {
		// Image +x runs down the page, image +y runs leftwards.
		return geom.UVMap{
			Origin: geom.Vec2{X: x + w, Y: y},
			Across: geom.Vec2{Y: h},
			Down:   geom.Vec2{X: -w},
			Page:   pageIdx,
		}
	}
	return geom.UVMap{
		Origin: geom.Vec2{X: x, Y: y},
		Across: geom.Vec2{X: w},
		Down:   geom.Vec2{Y: h},
		Page:   pageIdx,
	}
}

// Pages returns the number of pages.
func (a *Atlas) Pages() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pages)
}

// Page returns the current contents of page i. The frame is immutable:
// callers must not modify it, and later packing never writes to it.
func (a *Atlas) Page(i int) *image.Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	if i < 0 || i >= len(a.pages) {
		return nil
	}
	a.pages[i].shared = true
	return a.pages[i].frame
}

// PageSize returns the size of page i in pixels, or (1, 1) for a page
// that does not exist.
func (a *Atlas) PageSize(i int) geom.Vec2 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if i < 0 || i >= len(a.pages) {
		return geom.Vec2{X: 1, Y: 1}
	}
	f := a.pages[i].frame
	return geom.Vec2{X: float32(f.Width()), Y: float32(f.Height())}
}

// Utilization returns the packed fraction of shared page i.
func (a *Atlas) Utilization(i int) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if i < 0 || i >= len(a.pages) || a.pages[i].packer == nil {
		return 0
	}
	return a.pages[i].packer.utilization()
}

// Version increases whenever page contents change, so GPU copies can be
// refreshed lazily.
func (a *Atlas) Version() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.version
}

// Names returns the packed names in sorted order.
func (a *Atlas) Names() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	names := make([]string, 0, len(a.entries))
	for n := range a.entries {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
