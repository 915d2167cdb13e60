package geom

// NinePatchBands returns the four band boundaries along one axis of a
// nine-patch of the given extent. The inner boundaries are clamped so they
// never cross the centre line: a cut wider than half the extent collapses
// the middle band to zero width instead of mirroring it.
func NinePatchBands(extent, cutLo, cutHi float32) [4]float32 {
	half := extent / 2
	return [4]float32{
		-half,
		min(-half+cutLo, 0),
		max(half-cutHi, 0),
		half,
	}
}

// NinePatchUVBands returns the fractional texture boundaries for one axis.
// size is the source image's own pixel size along that axis, so the edge
// bands map to exactly cut pixels of the source.
func NinePatchUVBands(size, cutLo, cutHi float32) [4]float32 {
	if size <= 0 {
		return [4]float32{0, 0, 1, 1}
	}
	lo := Clamp(cutLo/size, 0, 1)
	hi := Clamp(1-cutHi/size, lo, 1)
	return [4]float32{0, lo, hi, 1}
}

// ExpandNinePatch emits three strip rows of 8 vertices each over the 4x4
// grid of band boundaries. Corner and edge regions keep their native pixel
// size; the centre band stretches.
func ExpandNinePatch(r NinePatchRecord, proj Mat4, page Vec2) []Strip {
	if !r.Finite() {
		return nil
	}
	page = safePage(page)
	col := premul(r.Color)

	left, right := float32(r.Cuts[0]), float32(r.Cuts[1])
	top, bottom := float32(r.Cuts[2]), float32(r.Cuts[3])

	xs := NinePatchBands(r.Dims.X, left, right)
	ys := NinePatchBands(r.Dims.Y, top, bottom)
	us := NinePatchUVBands(r.UV.Width(), left, right)
	vs := NinePatchUVBands(r.UV.Height(), top, bottom)

	vert := func(i, j int) Vertex {
		return Vertex{
			Pos:   proj.Point(r.Xform.Point(Vec2{xs[i], ys[j]})),
			UV:    r.UV.Normalized(us[i], vs[j], page),
			Color: col,
		}
	}

	rows := make([]Strip, 0, 3)
	for j := 0; j < 3; j++ {
		s := make(Strip, 0, 8)
		for i := 0; i < 4; i++ {
			s = append(s, vert(i, j), vert(i, j+1))
		}
		rows = append(rows, s)
	}
	return rows
}
