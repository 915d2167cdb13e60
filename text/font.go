package text

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	gotext "github.com/go-text/typesetting/font"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// ErrInvalidFont is returned when font data cannot be parsed.
var ErrInvalidFont = errors.New("text: invalid font")

var fontSeq atomic.Uint64

// Font is a parsed TrueType or OpenType font. It is safe for concurrent use.
//
// Shaping uses go-text/typesetting; glyph outlines come from x/image's
// sfnt parser. Both read the same bytes, so glyph ids agree.
type Font struct {
	id     uint64
	name   string
	shape  *gotext.Font
	sfnt   *sfnt.Font
	bufMu  sync.Mutex
	buffer sfnt.Buffer
}

// ParseFont parses TrueType or OpenType font data.
func ParseFont(data []byte) (*Font, error) {
	face, err := gotext.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFont, err)
	}
	sf, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFont, err)
	}
	f := &Font{
		id:    fontSeq.Add(1),
		shape: face.Font,
		sfnt:  sf,
	}
	if name, err := sf.Name(&f.buffer, sfnt.NameIDFamily); err == nil {
		f.name = name
	}
	return f, nil
}

var defaultFont = sync.OnceValue(func() *Font {
	f, err := ParseFont(goregular.TTF)
	if err != nil {
		panic("text: embedded Go Regular font: " + err.Error())
	}
	return f
})

// DefaultFont returns the Go Regular font.
func DefaultFont() *Font { return defaultFont() }

// Name returns the font family name, or "" when the font has none.
func (f *Font) Name() string { return f.name }

// Metrics holds vertical font metrics in pixels for one size.
type Metrics struct {
	Ascent  float32
	Descent float32
	Height  float32
}

// Metrics returns the vertical metrics at size pixels per em.
func (f *Font) Metrics(size float32) Metrics {
	f.bufMu.Lock()
	defer f.bufMu.Unlock()
	m, err := f.sfnt.Metrics(&f.buffer, toFixed(size), font.HintingNone)
	if err != nil {
		return Metrics{}
	}
	return Metrics{
		Ascent:  fromFixed(m.Ascent),
		Descent: fromFixed(m.Descent),
		Height:  fromFixed(m.Height),
	}
}

func (f *Font) loadGlyph(gid sfnt.GlyphIndex, ppem float32) (sfnt.Segments, error) {
	f.bufMu.Lock()
	defer f.bufMu.Unlock()
	segs, err := f.sfnt.LoadGlyph(&f.buffer, gid, toFixed(ppem), nil)
	if err != nil {
		return nil, err
	}
	// The buffer is reused by the next call.
	return append(sfnt.Segments(nil), segs...), nil
}

func toFixed(v float32) fixed.Int26_6 { return fixed.Int26_6(v * 64) }

func fromFixed(v fixed.Int26_6) float32 { return float32(v) / 64 }
