package geom

// quadCorners lists the unit-square corners in strip order:
// top-left, bottom-left, top-right, bottom-right.
var quadCorners = [4]Vec2{{0, 0}, {0, 1}, {1, 0}, {1, 1}}

// ExpandSprite emits the 4-vertex strip of a textured quad. The corners
// sit at ±Dims/2 in the sprite's local space, pass through the instance
// transform and then the projection. page is the size of the atlas page the
// UV mapping refers to, in pixels.
//
// Records with non-finite values emit nothing.
func ExpandSprite(r SpriteRecord, proj Mat4, page Vec2) Strip {
	if !r.Finite() {
		return nil
	}
	page = safePage(page)
	col := premul(r.Color)
	s := make(Strip, 4)
	for i, c := range quadCorners {
		local := Vec2{(c.X - 0.5) * r.Dims.X, (c.Y - 0.5) * r.Dims.Y}
		s[i] = Vertex{
			Pos:   proj.Point(r.Xform.Point(local)),
			UV:    r.UV.Normalized(c.X, c.Y, page),
			Color: col,
		}
	}
	return s
}

// ExpandGlyphs emits one quad per glyph of a label.
func ExpandGlyphs(r GlyphRecord, proj Mat4, page Vec2) []Strip {
	if !r.Xform.Finite() || !finiteColor(r.Color) {
		return nil
	}
	page = safePage(page)
	col := premul(r.Color)
	out := make([]Strip, 0, len(r.Quads))
	for _, q := range r.Quads {
		s := make(Strip, 4)
		for i, c := range quadCorners {
			local := Vec2{q.Min.X + c.X*q.Size.X, q.Min.Y + c.Y*q.Size.Y}
			s[i] = Vertex{
				Pos:   proj.Point(r.Xform.Point(local)),
				UV:    q.UV.Normalized(c.X, c.Y, page),
				Color: col,
			}
		}
		out = append(out, s)
	}
	return out
}

func safePage(p Vec2) Vec2 {
	if p.X <= 0 {
		p.X = 1
	}
	if p.Y <= 0 {
		p.Y = 1
	}
	return p
}
