package g2d

import (
	"math"
	"math/rand/v2"
	"sync"

	"github.com/gogpu/g2d/internal/geom"
)

// Shake spring constants: an underdamped spring pulling the shake offset
// back to rest.
const (
	shakeStiffness = 300
	shakeDamping   = 12
	shakeStep      = 1.0 / 240
	shakeRest      = 0.01
)

// Camera maps world space onto the viewport. Pos is the world point at
// the centre of the screen; with the default position and zoom 1, world
// coordinates equal screen pixels.
type Camera struct {
	mu            sync.Mutex
	width, height float32
	pos           Vec2
	zoom          float32
	shake         Vec2
	shakeVel      Vec2
	rnd           *rand.Rand
}

func newCamera(width, height int) *Camera {
	w, h := float32(width), float32(height)
	return &Camera{
		width:  w,
		height: h,
		pos:    V(w/2, h/2),
		zoom:   1,
		rnd:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Pos returns the world point at the centre of the view.
func (c *Camera) Pos() Vec2 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos
}

// SetPos centres the view on (x, y).
func (c *Camera) SetPos(x, y float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pos = V(x, y)
}

// Move pans the view by (dx, dy) world units.
func (c *Camera) Move(dx, dy float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pos = c.pos.Add(V(dx, dy))
}

// Zoom returns the magnification.
func (c *Camera) Zoom() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

// SetZoom sets the magnification. Non-positive or non-finite values are
// ignored.
func (c *Camera) SetZoom(z float32) {
	if !(z > 0) || math.IsInf(float64(z), 1) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zoom = z
}

// Shake knocks the view dist world units in a random direction. The
// offset springs back over the following updates.
func (c *Camera) Shake(dist float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	theta := c.rnd.Float64() * 2 * math.Pi
	s, co := math.Sincos(theta)
	c.shake = c.shake.Add(V(float32(co)*dist, float32(s)*dist))
}

// ShakeOffset returns the current shake displacement.
func (c *Camera) ShakeOffset() Vec2 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shake
}

// update advances the shake spring by dt seconds.
func (c *Camera) update(dt float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shake == (Vec2{}) && c.shakeVel == (Vec2{}) {
		return
	}
	for remaining := dt; remaining > 0; remaining -= shakeStep {
		h := min(remaining, shakeStep)
		acc := c.shake.Mul(-shakeStiffness).Sub(c.shakeVel.Mul(shakeDamping))
		c.shakeVel = c.shakeVel.Add(acc.Mul(h))
		c.shake = c.shake.Add(c.shakeVel.Mul(h))
	}
	if c.shake.Len() < shakeRest && c.shakeVel.Len() < shakeRest {
		c.shake, c.shakeVel = Vec2{}, Vec2{}
	}
}

func (c *Camera) centre() Vec2 { return c.pos.Add(c.shake) }

// Projection returns the matrix mapping world space to clip space.
func (c *Camera) Projection() geom.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	ctr := c.centre()
	hw, hh := c.width/2/c.zoom, c.height/2/c.zoom
	return geom.Ortho(ctr.X-hw, ctr.X+hw, ctr.Y+hh, ctr.Y-hh)
}

// ScreenToWorld maps a viewport pixel position to world space.
func (c *Camera) ScreenToWorld(p Vec2) Vec2 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.centre().Add(p.Sub(V(c.width/2, c.height/2)).Mul(1 / c.zoom))
}

// WorldToScreen maps a world point to viewport pixels.
func (c *Camera) WorldToScreen(p Vec2) Vec2 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return p.Sub(c.centre()).Mul(c.zoom).Add(V(c.width/2, c.height/2))
}
