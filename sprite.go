package g2d

import (
	"github.com/gogpu/g2d/atlas"
	"github.com/gogpu/g2d/internal/geom"
)

// Sprite is an atlas image drawn centred on its position.
type Sprite struct {
	Transform
	layer *Layer
	rec   record[geom.SpriteRecord]
	entry atlas.Entry
	color RGBA
}

// AddSprite adds the named atlas image centred at (x, y). The image is
// loaded now; a missing image is reported here, never at render time.
func (l *Layer) AddSprite(image string, x, y float32) (*Sprite, error) {
	e, err := l.scene.atlas.Get(image)
	if err != nil {
		return nil, err
	}
	s := &Sprite{layer: l, entry: e, color: White}
	s.init(x, y, s.sync)
	s.rec = newRecord(l.spriteBatch())
	s.sync()
	return s, nil
}

func (s *Sprite) sync() {
	s.rec.write(geom.SpriteRecord{
		Xform: s.World(),
		Dims:  s.entry.Size(),
		Color: s.color.Array(),
		UV:    s.entry.UV,
	})
}

// Image returns the atlas name of the sprite's image.
func (s *Sprite) Image() string { return s.entry.Name }

// SetImage swaps the sprite's image, keeping its transform.
func (s *Sprite) SetImage(name string) error {
	e, err := s.layer.scene.atlas.Get(name)
	if err != nil {
		return err
	}
	s.entry = e
	s.sync()
	return nil
}

// Size returns the unscaled image size.
func (s *Sprite) Size() Vec2 { return s.entry.Size() }

// Color returns the tint.
func (s *Sprite) Color() RGBA { return s.color }

// SetColor sets the tint multiplied into the image.
func (s *Sprite) SetColor(c RGBA) {
	s.color = c
	s.sync()
}

// Delete removes the sprite. Its geometry is gone from the next frame.
func (s *Sprite) Delete() error {
	detach(&s.Transform)
	return s.rec.free()
}

// Cuts are the left, right, top and bottom border widths of a nine-patch
// in source pixels.
type Cuts struct {
	Left, Right, Top, Bottom uint16
}

// UniformCuts uses the same border on every side.
func UniformCuts(c uint16) Cuts { return Cuts{c, c, c, c} }

// NinePatch is an atlas image stretched to any size with borders that
// keep their native pixel size.
type NinePatch struct {
	Transform
	layer *Layer
	rec   record[geom.NinePatchRecord]
	entry atlas.Entry
	size  Vec2
	cuts  Cuts
	color RGBA
}

// AddNinePatch adds a width x height nine-patch of the named image
// centred at (x, y).
func (l *Layer) AddNinePatch(image string, x, y, width, height float32, cuts Cuts) (*NinePatch, error) {
	e, err := l.scene.atlas.Get(image)
	if err != nil {
		return nil, err
	}
	n := &NinePatch{layer: l, entry: e, size: V(width, height), cuts: cuts, color: White}
	n.init(x, y, n.sync)
	n.rec = newRecord(l.patchBatch())
	n.sync()
	return n, nil
}

func (n *NinePatch) sync() {
	n.rec.write(geom.NinePatchRecord{
		Xform: n.World(),
		Dims:  n.size,
		Color: n.color.Array(),
		UV:    n.entry.UV,
		Cuts:  [4]uint16{n.cuts.Left, n.cuts.Right, n.cuts.Top, n.cuts.Bottom},
	})
}

// Size returns the drawn size before scaling.
func (n *NinePatch) Size() Vec2 { return n.size }

// SetSize resizes the patch; borders keep their pixel size.
func (n *NinePatch) SetSize(width, height float32) {
	n.size = V(width, height)
	n.sync()
}

// Cuts returns the border widths.
func (n *NinePatch) Cuts() Cuts { return n.cuts }

// SetCuts changes the border widths.
func (n *NinePatch) SetCuts(c Cuts) {
	n.cuts = c
	n.sync()
}

// Color returns the tint.
func (n *NinePatch) Color() RGBA { return n.color }

// SetColor sets the tint.
func (n *NinePatch) SetColor(c RGBA) {
	n.color = c
	n.sync()
}

// Delete removes the nine-patch.
func (n *NinePatch) Delete() error {
	detach(&n.Transform)
	return n.rec.free()
}
