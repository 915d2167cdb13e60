package geom

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Vec2 is a 2D vector or point.
type Vec2 struct {
	X, Y float32
}

// V is shorthand for Vec2{x, y}.
func V(x, y float32) Vec2 { return Vec2{X: x, Y: y} }

// Add returns a+b.
func (a Vec2) Add(b Vec2) Vec2 { return Vec2{a.X + b.X, a.Y + b.Y} }

// Sub returns a-b.
func (a Vec2) Sub(b Vec2) Vec2 { return Vec2{a.X - b.X, a.Y - b.Y} }

// Mul returns a scaled by k.
func (a Vec2) Mul(k float32) Vec2 { return Vec2{a.X * k, a.Y * k} }

// Dot returns the dot product.
func (a Vec2) Dot(b Vec2) float32 { return a.X*b.X + a.Y*b.Y }

// Len returns the Euclidean length.
func (a Vec2) Len() float32 { return float32(math.Hypot(float64(a.X), float64(a.Y))) }

// Rot90 rotates a by 90 degrees: (-y, x).
func (a Vec2) Rot90() Vec2 { return Vec2{-a.Y, a.X} }

// Normalize returns a unit vector, or the zero vector for zero input.
func (a Vec2) Normalize() Vec2 {
	l := a.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{a.X / l, a.Y / l}
}

// Finite reports whether both components are finite.
func (a Vec2) Finite() bool { return finite(a.X, a.Y) }

// Affine is a 2D affine transformation in row-major order:
//
//	| A  B  C |
//	| D  E  F |
//
// mapping (x, y) to (A*x + B*y + C, D*x + E*y + F).
type Affine struct {
	A, B, C float32
	D, E, F float32
}

// Identity returns the identity transform.
func Identity() Affine {
	return Affine{A: 1, E: 1}
}

// Translate creates a translation.
func Translate(x, y float32) Affine {
	return Affine{A: 1, C: x, E: 1, F: y}
}

// ScaleXY creates a scale.
func ScaleXY(x, y float32) Affine {
	return Affine{A: x, E: y}
}

// Rotate creates a rotation by angle radians. With y pointing down a
// positive angle turns clockwise on screen.
func Rotate(angle float32) Affine {
	s, c := math.Sincos(float64(angle))
	return Affine{A: float32(c), B: float32(-s), D: float32(s), E: float32(c)}
}

// Compose builds translate(pos) * rotate(angle) * scale(sx, sy).
func Compose(pos Vec2, angle, sx, sy float32) Affine {
	s, c := math.Sincos(float64(angle))
	cs, sn := float32(c), float32(s)
	return Affine{
		A: cs * sx, B: -sn * sy, C: pos.X,
		D: sn * sx, E: cs * sy, F: pos.Y,
	}
}

// Mul returns m * o: o is applied first.
func (m Affine) Mul(o Affine) Affine {
	return Affine{
		A: m.A*o.A + m.B*o.D,
		B: m.A*o.B + m.B*o.E,
		C: m.A*o.C + m.B*o.F + m.C,
		D: m.D*o.A + m.E*o.D,
		E: m.D*o.B + m.E*o.E,
		F: m.D*o.C + m.E*o.F + m.F,
	}
}

// Point transforms a point.
func (m Affine) Point(p Vec2) Vec2 {
	return Vec2{m.A*p.X + m.B*p.Y + m.C, m.D*p.X + m.E*p.Y + m.F}
}

// Vector transforms a direction (no translation).
func (m Affine) Vector(v Vec2) Vec2 {
	return Vec2{m.A*v.X + m.B*v.Y, m.D*v.X + m.E*v.Y}
}

// Invert returns the inverse transform and whether it exists.
func (m Affine) Invert() (Affine, bool) {
	det := m.A*m.E - m.B*m.D
	if det == 0 || !finite(det) {
		return Affine{}, false
	}
	inv := 1 / det
	return Affine{
		A: m.E * inv, B: -m.B * inv, C: (m.B*m.F - m.E*m.C) * inv,
		D: -m.D * inv, E: m.A * inv, F: (m.D*m.C - m.A*m.F) * inv,
	}, true
}

// Finite reports whether every coefficient is finite.
func (m Affine) Finite() bool {
	return finite(m.A, m.B, m.C, m.D, m.E, m.F)
}

// Mat4 is a column-major 4x4 matrix, the layout WGSL uniforms expect.
type Mat4 [16]float32

// Mat4Identity returns the identity matrix.
func Mat4Identity() Mat4 {
	return Mat4{0: 1, 5: 1, 10: 1, 15: 1}
}

// Ortho builds an orthographic projection mapping the box
// [left, right] x [bottom, top] to clip space [-1, 1]^2.
func Ortho(left, right, bottom, top float32) Mat4 {
	var m Mat4
	m[0] = 2 / (right - left)
	m[5] = 2 / (top - bottom)
	m[10] = -1
	m[12] = -(right + left) / (right - left)
	m[13] = -(top + bottom) / (top - bottom)
	m[15] = 1
	return m
}

// ScreenProjection maps world space with the origin at the top-left and y
// increasing downward onto a viewport of the given size.
func ScreenProjection(width, height float32) Mat4 {
	return Ortho(0, width, height, 0)
}

// Mul returns m * o.
func (m Mat4) Mul(o Mat4) Mat4 {
	var r Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[k*4+row] * o[col*4+k]
			}
			r[col*4+row] = sum
		}
	}
	return r
}

// FromAffine lifts a 2D affine transform into a 4x4 matrix.
func FromAffine(a Affine) Mat4 {
	return Mat4{
		0: a.A, 1: a.D,
		4: a.B, 5: a.E,
		10: 1,
		12: a.C, 13: a.F, 15: 1,
	}
}

// Point projects a point (z=0, w=1) and returns clip-space xy.
func (m Mat4) Point(p Vec2) Vec2 {
	return Vec2{
		m[0]*p.X + m[4]*p.Y + m[12],
		m[1]*p.X + m[5]*p.Y + m[13],
	}
}

// Vector projects a direction (z=0, w=0).
func (m Mat4) Vector(v Vec2) Vec2 {
	return Vec2{
		m[0]*v.X + m[4]*v.Y,
		m[1]*v.X + m[5]*v.Y,
	}
}

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func finite(vals ...float32) bool {
	for _, v := range vals {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
