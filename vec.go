package g2d

import "github.com/gogpu/g2d/internal/geom"

// Vec2 is a 2D point or vector in world units. y grows downward.
type Vec2 = geom.Vec2

// V is shorthand for Vec2{X: x, Y: y}.
func V(x, y float32) Vec2 { return geom.V(x, y) }
