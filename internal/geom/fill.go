package geom

// ExpandFill emits the triangles of a filled polygon as a triangle list.
func ExpandFill(r FillRecord, proj Mat4) []Vertex {
	if !r.Xform.Finite() || !finiteColor(r.Color) {
		return nil
	}
	col := premul(r.Color)
	pts := make([]Vec2, len(r.Points))
	for i, p := range r.Points {
		if !p.Finite() {
			return nil
		}
		pts[i] = proj.Point(r.Xform.Point(p))
	}
	out := make([]Vertex, 0, len(r.Indices))
	for _, idx := range r.Indices {
		if int(idx) >= len(pts) {
			return nil
		}
		out = append(out, Vertex{Pos: pts[idx], Color: col})
	}
	return out
}

// Triangulate ear-clips a simple polygon and returns triangle indices.
// Orientation may be either winding. Degenerate input returns nil.
func Triangulate(pts []Vec2) []uint32 {
	n := len(pts)
	if n < 3 {
		return nil
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if signedArea(pts) < 0 {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			idx[i], idx[j] = idx[j], idx[i]
		}
	}

	out := make([]uint32, 0, (n-2)*3)
	for guard := 0; len(idx) > 3 && guard < n*n; guard++ {
		clipped := false
		for i := range idx {
			prev := idx[(i+len(idx)-1)%len(idx)]
			cur := idx[i]
			next := idx[(i+1)%len(idx)]
			if cross(pts[prev], pts[cur], pts[next]) == 0 {
				// Collinear vertex: drop it without emitting a triangle.
				idx = append(idx[:i], idx[i+1:]...)
				clipped = true
				break
			}
			if !isEar(pts, idx, prev, cur, next) {
				continue
			}
			out = append(out, uint32(prev), uint32(cur), uint32(next))
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			break
		}
	}
	if len(idx) == 3 {
		out = append(out, uint32(idx[0]), uint32(idx[1]), uint32(idx[2]))
	}
	return out
}

func signedArea(pts []Vec2) float32 {
	var a float32
	for i := range pts {
		j := (i + 1) % len(pts)
		a += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return a / 2
}

func cross(o, a, b Vec2) float32 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

func isEar(pts []Vec2, idx []int, prev, cur, next int) bool {
	a, b, c := pts[prev], pts[cur], pts[next]
	if cross(a, b, c) <= 0 {
		return false
	}
	for _, k := range idx {
		if k == prev || k == cur || k == next {
			continue
		}
		p := pts[k]
		if cross(a, b, p) >= 0 && cross(b, c, p) >= 0 && cross(c, a, p) >= 0 {
			return false
		}
	}
	return true
}
