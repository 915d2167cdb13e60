package geom

// degenerate is the length below which a segment counts as zero-length.
const degenerate = 1e-6

// Mitre returns the offsets of the stroke edges at b, where the polyline
// runs a -> b -> c. The result is added to and subtracted from b.
//
// A zero-length neighbour segment takes the direction of the other one, so
// the join extends the current tangent. The offset is scaled by
// 1/dot(normal(bc), mitre normal) to keep the stroke width constant across
// the join. There is no mitre limit: very sharp angles produce long spikes.
func Mitre(a, b, c Vec2, halfWidth float32) (Vec2, bool) {
	ab := b.Sub(a)
	bc := c.Sub(b)
	abLen, bcLen := ab.Len(), bc.Len()
	switch {
	case abLen < degenerate && bcLen < degenerate:
		return Vec2{}, false
	case abLen < degenerate:
		bc = bc.Mul(1 / bcLen)
		ab = bc
	case bcLen < degenerate:
		ab = ab.Mul(1 / abLen)
		bc = ab
	default:
		ab = ab.Mul(1 / abLen)
		bc = bc.Mul(1 / bcLen)
	}

	along := ab.Add(bc)
	if along.Len() < degenerate {
		// Full reversal: fall back to the outgoing tangent.
		along = bc
	}
	along = along.Normalize()

	acrossMitre := along.Rot90()
	scale := bc.Rot90().Dot(acrossMitre)
	if scale < degenerate {
		scale = 1
	}
	return acrossMitre.Mul(halfWidth / scale), true
}

// ExpandLineSegment emits the 4-vertex strip for segment b -> c of a
// polyline, given its neighbours a and d. Points are in world space.
func ExpandLineSegment(a, b, c, d Vec2, width float32, color [4]float32, proj Mat4) Strip {
	if c.Sub(b).Len() < degenerate {
		return nil
	}
	half := width / 2
	m1, ok1 := Mitre(a, b, c, half)
	m2, ok2 := Mitre(b, c, d, half)
	if !ok1 || !ok2 {
		return nil
	}
	col := premul(color)
	return Strip{
		{Pos: proj.Point(b.Add(m1)), UV: Vec2{0, 0}, Color: col},
		{Pos: proj.Point(b.Sub(m1)), UV: Vec2{0, 1}, Color: col},
		{Pos: proj.Point(c.Add(m2)), UV: Vec2{1, 0}, Color: col},
		{Pos: proj.Point(c.Sub(m2)), UV: Vec2{1, 1}, Color: col},
	}
}

// LineWindows returns the adjacency windows (prev, start, end, next) of a
// polyline. Open polylines repeat their end points so the first and last
// joins are square; closed ones wrap around.
func LineWindows(pts []Vec2, closed bool) [][4]Vec2 {
	n := len(pts)
	if n < 2 {
		return nil
	}
	at := func(i int) Vec2 {
		if closed {
			return pts[((i%n)+n)%n]
		}
		return pts[Clamp(i, 0, n-1)]
	}
	segs := n - 1
	if closed {
		segs = n
	}
	out := make([][4]Vec2, 0, segs)
	for i := 0; i < segs; i++ {
		out = append(out, [4]Vec2{at(i - 1), at(i), at(i + 1), at(i + 2)})
	}
	return out
}

// ExpandLine strokes a whole polyline record.
func ExpandLine(r LineRecord, proj Mat4) []Strip {
	if !r.Xform.Finite() || !finite(r.Width) || !finiteColor(r.Color) {
		return nil
	}
	world := make([]Vec2, len(r.Points))
	for i, p := range r.Points {
		if !p.Finite() {
			return nil
		}
		world[i] = r.Xform.Point(p)
	}
	var out []Strip
	for _, w := range LineWindows(world, r.Closed) {
		if s := ExpandLineSegment(w[0], w[1], w[2], w[3], r.Width, r.Color, proj); s != nil {
			out = append(out, s)
		}
	}
	return out
}
