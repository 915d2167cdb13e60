package g2d

import "github.com/gogpu/g2d/internal/geom"

// Transformable is implemented by every primitive that has a Transform,
// and by Group.
type Transformable interface {
	transform() *Transform
}

// Transform positions a primitive: a translation, a rotation in radians
// (clockwise on screen) and a per-axis scale, applied scale first. A
// primitive inside a Group is additionally transformed by the group.
//
// Every setter writes the primitive's record, so the change is visible
// from the next frame on.
type Transform struct {
	pos   Vec2
	angle float32
	scale Vec2
	group *Group
	sync  func()
}

func (t *Transform) init(x, y float32, sync func()) {
	t.pos = V(x, y)
	t.scale = V(1, 1)
	t.sync = sync
}

func (t *Transform) transform() *Transform { return t }

func (t *Transform) changed() {
	if t.sync != nil {
		t.sync()
	}
}

// Pos returns the position.
func (t *Transform) Pos() Vec2 { return t.pos }

// SetPos moves the primitive to (x, y).
func (t *Transform) SetPos(x, y float32) {
	t.pos = V(x, y)
	t.changed()
}

// Move translates the primitive by (dx, dy).
func (t *Transform) Move(dx, dy float32) {
	t.pos = t.pos.Add(V(dx, dy))
	t.changed()
}

// Angle returns the rotation in radians.
func (t *Transform) Angle() float32 { return t.angle }

// SetAngle sets the rotation in radians.
func (t *Transform) SetAngle(a float32) {
	t.angle = a
	t.changed()
}

// Scale returns the per-axis scale.
func (t *Transform) Scale() Vec2 { return t.scale }

// SetScale scales both axes by s.
func (t *Transform) SetScale(s float32) {
	t.scale = V(s, s)
	t.changed()
}

// SetScaleXY scales each axis independently.
func (t *Transform) SetScaleXY(x, y float32) {
	t.scale = V(x, y)
	t.changed()
}

// Local returns the transform relative to the enclosing group.
func (t *Transform) Local() geom.Affine {
	return geom.Compose(t.pos, t.angle, t.scale.X, t.scale.Y)
}

// World returns the transform from local to world space.
func (t *Transform) World() geom.Affine {
	if t.group != nil {
		return t.group.World().Mul(t.Local())
	}
	return t.Local()
}

// Group returns the enclosing group, or nil.
func (t *Transform) Group() *Group { return t.group }
