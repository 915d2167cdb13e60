// Package text lays out single-line labels and keeps their glyphs in a
// texture atlas.
//
// Text is normalised to NFKC, split into bidirectional runs, shaped with
// HarfBuzz and turned into one quad per visible glyph. Glyphs are
// rasterised once at a fixed raster size and scaled to the label's font
// size, so labels of any size share the same atlas entries.
//
//	s := text.NewShaper(text.DefaultFont(), atl, text.DefaultRasterSize)
//	l, err := s.Layout("Score: 100", text.DefaultOptions())
package text

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-text/typesetting/di"
	gotext "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/text/unicode/bidi"
	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/g2d/atlas"
	"github.com/gogpu/g2d/internal/geom"
)

// ErrBadSize is returned for non-positive font or raster sizes.
var ErrBadSize = errors.New("text: size must be positive")

// DefaultRasterSize is the pixel size glyphs are rasterised at.
const DefaultRasterSize = 48

// Align is the horizontal alignment of a label around its origin.
type Align int

// Alignments.
const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	}
	return fmt.Sprintf("Align(%d)", int(a))
}

// ParseAlign parses "left", "center" or "right".
func ParseAlign(s string) (Align, error) {
	switch strings.ToLower(s) {
	case "left", "":
		return AlignLeft, nil
	case "center", "centre":
		return AlignCenter, nil
	case "right":
		return AlignRight, nil
	}
	return AlignLeft, fmt.Errorf("text: unknown alignment %q", s)
}

// Options control label layout.
type Options struct {
	Size     float32 // font size in pixels
	Align    Align
	Language string // BCP 47 tag passed to the shaper
}

// DefaultOptions returns left-aligned 20 pixel text.
func DefaultOptions() Options {
	return Options{Size: 20, Language: "en"}
}

// Layout is a shaped label. Quads are in label space: the origin is on
// the baseline at the alignment anchor, y grows down.
type Layout struct {
	Text    string // normalised text
	Quads   []geom.GlyphQuad
	Advance float32 // total pen advance
	Ascent  float32
	Descent float32
}

// Bounds returns the left edge and width of the laid out text.
func (l Layout) Bounds() (left, width float32) {
	if len(l.Quads) == 0 {
		return 0, l.Advance
	}
	return l.Quads[0].Min.X, l.Advance
}

type glyphKey struct {
	gid gotext.GID
}

type glyphInfo struct {
	entry  atlas.Entry
	offset geom.Vec2
	size   geom.Vec2
	empty  bool
}

// Shaper shapes text in one font and caches rasterised glyphs in an atlas.
// It is safe for concurrent use.
type Shaper struct {
	font   *Font
	atlas  *atlas.Atlas
	raster float32

	mu     sync.Mutex
	hb     shaping.HarfbuzzShaper
	glyphs map[glyphKey]glyphInfo
}

// NewShaper creates a shaper drawing f into a at rasterSize pixels per em.
// A non-positive rasterSize uses DefaultRasterSize.
func NewShaper(f *Font, a *atlas.Atlas, rasterSize float32) *Shaper {
	if f == nil {
		f = DefaultFont()
	}
	if !(rasterSize > 0) {
		rasterSize = DefaultRasterSize
	}
	return &Shaper{
		font:   f,
		atlas:  a,
		raster: rasterSize,
		glyphs: make(map[glyphKey]glyphInfo),
	}
}

// Font returns the shaper's font.
func (s *Shaper) Font() *Font { return s.font }

// Layout shapes a single line of text.
func (s *Shaper) Layout(str string, opts Options) (Layout, error) {
	if !(opts.Size > 0) {
		return Layout{}, fmt.Errorf("%w: %v", ErrBadSize, opts.Size)
	}
	str = norm.NFKC.String(str)
	scale := opts.Size / s.raster
	m := s.font.Metrics(opts.Size)
	out := Layout{Text: str, Ascent: m.Ascent, Descent: m.Descent}
	if str == "" {
		return out, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lang := language.NewLanguage(opts.Language)
	var pen float32
	for _, r := range visualRuns(str) {
		shaped := s.shape(r, lang)
		for _, g := range shaped.Glyphs {
			info, err := s.glyph(g.GlyphID)
			if err != nil {
				return Layout{}, err
			}
			if !info.empty {
				off := geom.Vec2{
					X: pen + fromFixed(g.XOffset)*scale + info.offset.X*scale,
					Y: -fromFixed(g.YOffset)*scale + info.offset.Y*scale,
				}
				out.Quads = append(out.Quads, geom.GlyphQuad{
					Min:  off,
					Size: info.size.Mul(scale),
					UV:   info.entry.UV,
				})
			}
			pen += fromFixed(g.XAdvance) * scale
		}
	}
	out.Advance = pen

	var shift float32
	switch opts.Align {
	case AlignCenter:
		shift = -pen / 2
	case AlignRight:
		shift = -pen
	}
	if shift != 0 {
		for i := range out.Quads {
			out.Quads[i].Min.X += shift
		}
	}
	return out, nil
}

type run struct {
	text []rune
	dir  di.Direction
}

// visualRuns splits text into directional runs in display order. Runs of
// a right-to-left paragraph are displayed last to first.
func visualRuns(str string) []run {
	var p bidi.Paragraph
	if _, err := p.SetString(str); err != nil {
		return []run{{text: []rune(str), dir: di.DirectionLTR}}
	}
	o, err := p.Order()
	if err != nil || o.NumRuns() == 0 {
		return []run{{text: []rune(str), dir: di.DirectionLTR}}
	}
	runs := make([]run, 0, o.NumRuns())
	for i := range o.NumRuns() {
		r := o.Run(i)
		d := di.DirectionLTR
		if r.Direction() == bidi.RightToLeft {
			d = di.DirectionRTL
		}
		runs = append(runs, run{text: []rune(r.String()), dir: d})
	}
	if !p.IsLeftToRight() {
		for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
			runs[i], runs[j] = runs[j], runs[i]
		}
	}
	return runs
}

func (s *Shaper) shape(r run, lang language.Language) shaping.Output {
	return s.hb.Shape(shaping.Input{
		Text:      r.text,
		RunStart:  0,
		RunEnd:    len(r.text),
		Direction: r.dir,
		Face:      gotext.NewFace(s.font.shape),
		Size:      toFixed(s.raster),
		Script:    detectScript(r.text),
		Language:  lang,
	})
}

func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if s := language.LookupScript(r); s.Strong() {
			return s
		}
	}
	return language.Latin
}

// glyph returns the atlas entry of a glyph, rasterising it on first use.
func (s *Shaper) glyph(gid gotext.GID) (glyphInfo, error) {
	key := glyphKey{gid: gid}
	if info, ok := s.glyphs[key]; ok {
		return info, nil
	}
	bm, err := s.font.rasterize(sfnt.GlyphIndex(gid), s.raster)
	if err != nil {
		return glyphInfo{}, fmt.Errorf("text: rasterise glyph %d: %w", gid, err)
	}
	info := glyphInfo{empty: bm.frame == nil}
	if !info.empty {
		name := fmt.Sprintf("glyph:%d:%g:%d", s.font.id, s.raster, gid)
		e, err := s.atlas.AddFrame(name, bm.frame)
		if err != nil {
			return glyphInfo{}, fmt.Errorf("text: glyph %d: %w", gid, err)
		}
		info.entry = e
		info.offset = bm.offset
		info.size = geom.Vec2{X: float32(bm.frame.Width()), Y: float32(bm.frame.Height())}
	}
	s.glyphs[key] = info
	return info, nil
}
