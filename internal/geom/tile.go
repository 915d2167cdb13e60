package geom

// TileBlockCulled reports whether a block whose world footprint starts at
// topLeft and spans extent lies entirely outside the clip-space viewport.
// The projected centre is tested against [-1, 1] grown by the block's own
// projected radius, so a block that only grazes the viewport is kept.
func TileBlockCulled(topLeft, extent Vec2, proj Mat4) bool {
	centre := proj.Point(topLeft.Add(extent.Mul(0.5)))
	radius := proj.Vector(extent).Len() / 2
	lim := 1 + radius
	return centre.X < -lim || centre.X > lim || centre.Y < -lim || centre.Y > lim
}

// ExpandTileBlock emits one screen-aligned quad covering a whole 64x64
// block. UV carries local cell coordinates so the fragment stage can find
// the cell under each pixel. Culled or invalid blocks emit nothing at all.
func ExpandTileBlock(r TileBlockRecord, proj Mat4) Strip {
	if !r.Origin.Finite() || !r.TileSize.Finite() || !finiteColor(r.Color) {
		return nil
	}
	topLeft := r.CellOrigin()
	extent := Vec2{BlockSize * r.TileSize.X, BlockSize * r.TileSize.Y}
	if TileBlockCulled(topLeft, extent, proj) {
		return nil
	}
	col := premul(r.Color)
	s := make(Strip, 4)
	for i, c := range quadCorners {
		s[i] = Vertex{
			Pos:   proj.Point(Vec2{topLeft.X + c.X*extent.X, topLeft.Y + c.Y*extent.Y}),
			UV:    Vec2{c.X * BlockSize, c.Y * BlockSize},
			Color: col,
		}
	}
	return s
}
