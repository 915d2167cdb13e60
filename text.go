package g2d

import (
	"github.com/gogpu/g2d/internal/geom"
	"github.com/gogpu/g2d/text"
)

// Label is a single line of text. Its position is the alignment anchor
// on the baseline.
type Label struct {
	Transform
	layer  *Layer
	rec    record[geom.GlyphRecord]
	text   string
	opts   text.Options
	layout text.Layout
	color  RGBA
}

// AddLabel shapes str and adds it at (x, y).
func (l *Layer) AddLabel(str string, x, y float32, opts text.Options) (*Label, error) {
	layout, err := l.scene.textShaper().Layout(str, opts)
	if err != nil {
		return nil, err
	}
	lb := &Label{layer: l, text: str, opts: opts, layout: layout, color: White}
	lb.init(x, y, lb.sync)
	lb.rec = newRecord(l.labelBatch())
	lb.sync()
	return lb, nil
}

func (lb *Label) sync() {
	lb.rec.write(geom.GlyphRecord{
		Xform: lb.World(),
		Color: lb.color.Array(),
		Quads: lb.layout.Quads,
	})
}

// Text returns the label text as given.
func (lb *Label) Text() string { return lb.text }

// SetText reshapes the label.
func (lb *Label) SetText(str string) error {
	layout, err := lb.layer.scene.textShaper().Layout(str, lb.opts)
	if err != nil {
		return err
	}
	lb.text, lb.layout = str, layout
	lb.sync()
	return nil
}

// SetOptions changes size, alignment or language and reshapes.
func (lb *Label) SetOptions(opts text.Options) error {
	layout, err := lb.layer.scene.textShaper().Layout(lb.text, opts)
	if err != nil {
		return err
	}
	lb.opts, lb.layout = opts, layout
	lb.sync()
	return nil
}

// Layout returns the shaped glyphs.
func (lb *Label) Layout() text.Layout { return lb.layout }

// Color returns the text colour.
func (lb *Label) Color() RGBA { return lb.color }

// SetColor sets the text colour.
func (lb *Label) SetColor(c RGBA) {
	lb.color = c
	lb.sync()
}

// Delete removes the label.
func (lb *Label) Delete() error {
	detach(&lb.Transform)
	return lb.rec.free()
}
