package g2d

import (
	"fmt"
	"math"
	"slices"

	"github.com/gogpu/g2d/internal/geom"
)

// Style says how a shape is drawn.
type Style struct {
	Color RGBA

	// Fill fills the interior; otherwise the outline is stroked.
	Fill bool

	// StrokeWidth is the outline width in world units.
	StrokeWidth float32
}

// Filled returns a fill style.
func Filled(c RGBA) Style { return Style{Color: c, Fill: true, StrokeWidth: 1} }

// Stroked returns an outline style.
func Stroked(c RGBA, width float32) Style { return Style{Color: c, StrokeWidth: width} }

// Shape is a polygon or polyline in local coordinates, filled or
// stroked with mitred joins.
type Shape struct {
	Transform
	layer  *Layer
	points []Vec2
	closed bool
	style  Style

	indices []uint32
	fill    record[geom.FillRecord]
	line    record[geom.LineRecord]
}

func (l *Layer) addShape(x, y float32, pts []Vec2, closed bool, st Style) (*Shape, error) {
	need := 2
	if st.Fill {
		need = 3
	}
	if len(pts) < need {
		return nil, fmt.Errorf("%w: %d points", ErrBadShape, len(pts))
	}
	s := &Shape{layer: l, points: pts, closed: closed, style: st}
	s.init(x, y, s.sync)
	if st.Fill {
		s.indices = geom.Triangulate(pts)
		s.fill = newRecord(l.fillBatch())
	} else {
		s.line = newRecord(l.lineBatch())
	}
	s.sync()
	return s, nil
}

func (s *Shape) sync() {
	if s.style.Fill {
		s.fill.write(geom.FillRecord{
			Xform:   s.World(),
			Points:  s.points,
			Indices: s.indices,
			Color:   s.style.Color.Array(),
		})
		return
	}
	s.line.write(geom.LineRecord{
		Xform:  s.World(),
		Points: s.points,
		Color:  s.style.Color.Array(),
		Width:  s.style.StrokeWidth,
		Closed: s.closed,
	})
}

// Points returns the outline in local coordinates.
func (s *Shape) Points() []Vec2 { return slices.Clone(s.points) }

// Color returns the shape colour.
func (s *Shape) Color() RGBA { return s.style.Color }

// SetColor sets the shape colour.
func (s *Shape) SetColor(c RGBA) {
	s.style.Color = c
	s.sync()
}

// StrokeWidth returns the outline width.
func (s *Shape) StrokeWidth() float32 { return s.style.StrokeWidth }

// SetStrokeWidth changes the outline width of a stroked shape.
func (s *Shape) SetStrokeWidth(w float32) {
	s.style.StrokeWidth = w
	s.sync()
}

// Delete removes the shape.
func (s *Shape) Delete() error {
	detach(&s.Transform)
	if s.style.Fill {
		return s.fill.free()
	}
	return s.line.free()
}

// CircleSegments returns the number of polygon sides used for a circle:
// one per π pixels of radius, at least four.
func CircleSegments(radius float32) int {
	return max(4, int(math.Round(math.Pi*float64(radius))))
}

func circlePoints(radius float32) []Vec2 {
	n := CircleSegments(radius)
	pts := make([]Vec2, n)
	for i := range pts {
		s, c := math.Sincos(2 * math.Pi * float64(i) / float64(n))
		pts[i] = V(radius*float32(c), radius*float32(s))
	}
	return pts
}

// starPoints alternates outer and inner vertices, starting at the top.
func starPoints(points int, inner, outer float32) []Vec2 {
	pts := make([]Vec2, 2*points)
	for i := range pts {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		s, c := math.Sincos(math.Pi * float64(i) / float64(points))
		pts[i] = V(r*float32(s), -r*float32(c))
	}
	return pts
}

// AddCircle adds a circle of the given radius centred at (x, y).
func (l *Layer) AddCircle(x, y, radius float32, st Style) (*Shape, error) {
	if !(radius > 0) {
		return nil, fmt.Errorf("%w: radius %v", ErrBadShape, radius)
	}
	return l.addShape(x, y, circlePoints(radius), true, st)
}

// AddStar adds a star with the given number of points, its tips at
// outer and its notches at inner radius, pointing up.
func (l *Layer) AddStar(x, y float32, points int, inner, outer float32, st Style) (*Shape, error) {
	if points < 2 {
		return nil, fmt.Errorf("%w: %d points", ErrBadShape, points)
	}
	return l.addShape(x, y, starPoints(points, inner, outer), true, st)
}

// AddRect adds a width x height rectangle centred at (x, y).
func (l *Layer) AddRect(x, y, width, height float32, st Style) (*Shape, error) {
	hw, hh := width/2, height/2
	pts := []Vec2{V(-hw, -hh), V(hw, -hh), V(hw, hh), V(-hw, hh)}
	return l.addShape(x, y, pts, true, st)
}

// AddPolygon adds a closed polygon. Points are in world coordinates; the
// shape's position starts at the origin.
func (l *Layer) AddPolygon(pts []Vec2, st Style) (*Shape, error) {
	return l.addShape(0, 0, slices.Clone(pts), true, st)
}

// AddLine adds an open polyline of the given width.
func (l *Layer) AddLine(pts []Vec2, width float32, c RGBA) (*Shape, error) {
	return l.addShape(0, 0, slices.Clone(pts), false, Stroked(c, width))
}
