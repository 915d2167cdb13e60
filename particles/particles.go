// Package particles simulates groups of short-lived point particles.
//
// A Group owns the host-side state of its particles (velocity and spin)
// next to the per-particle records the renderer draws. Update integrates
// the group by one time step and drops particles older than the group's
// MaxAge. Colour stops build a 512 texel ramp that tints each particle by
// its normalized age.
package particles

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/gogpu/g2d/internal/geom"
)

// ErrBadParam is returned for invalid group parameters or emit options.
var ErrBadParam = errors.New("particles: bad parameter")

// Params configure a particle group.
type Params struct {
	// Grow multiplies particle size per second of age.
	Grow float32

	// MaxAge is the age in seconds at which particles are removed.
	// +Inf keeps particles forever.
	MaxAge float32

	// Gravity is added to every velocity per second.
	Gravity geom.Vec2

	// Drag scales velocity by Drag^dt each step; 1 means no drag.
	Drag float32
}

// DefaultParams returns parameters for particles that never grow, never
// age out and move in a straight line.
func DefaultParams() Params {
	return Params{
		Grow:   1,
		MaxAge: float32(math.Inf(1)),
		Drag:   1,
	}
}

func (p Params) validate() error {
	switch {
	case !(p.Grow > 0) || math.IsInf(float64(p.Grow), 0):
		return fmt.Errorf("%w: grow %v must be positive", ErrBadParam, p.Grow)
	case !(p.MaxAge > 0):
		return fmt.Errorf("%w: max age %v must be positive", ErrBadParam, p.MaxAge)
	case !(p.Drag >= 0) || math.IsInf(float64(p.Drag), 0):
		return fmt.Errorf("%w: drag %v must be non-negative", ErrBadParam, p.Drag)
	case !p.Gravity.Finite():
		return fmt.Errorf("%w: gravity %v", ErrBadParam, p.Gravity)
	}
	return nil
}

// EmitOptions describe a burst of new particles. Each spread is the
// standard deviation of a normal distribution around its mean value.
type EmitOptions struct {
	Pos        geom.Vec2
	PosSpread  float32
	Vel        geom.Vec2
	VelSpread  float32
	Color      [4]float32 // straight alpha
	Size       float32
	SizeSpread float32
	Spin       float32 // radians per second
	SpinSpread float32
}

// DefaultEmitOptions returns opaque white particles of size 1 at the origin.
func DefaultEmitOptions() EmitOptions {
	return EmitOptions{Color: [4]float32{1, 1, 1, 1}, Size: 1}
}

func (o EmitOptions) validate() error {
	for _, s := range []float32{o.PosSpread, o.VelSpread, o.SizeSpread, o.SpinSpread} {
		if !(s >= 0) || math.IsInf(float64(s), 0) {
			return fmt.Errorf("%w: spread %v must be a non-negative number", ErrBadParam, s)
		}
	}
	return nil
}

type stop struct {
	age   float32
	color [4]float32
}

// Group is a set of particles sharing parameters and a colour ramp.
// It is safe for concurrent use.
type Group struct {
	mu      sync.Mutex
	params  Params
	recs    []geom.ParticleRecord
	vels    []geom.Vec2
	spins   []float32
	stops   []stop
	ramp    geom.Ramp
	rnd     *rand.Rand
	version uint64
}

// New creates an empty group.
func New(p Params) (*Group, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	g := &Group{
		params: p,
		rnd:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for i := range g.ramp {
		g.ramp[i] = [4]float32{1, 1, 1, 1}
	}
	return g, nil
}

// SetRand replaces the random source used by Emit.
func (g *Group) SetRand(r *rand.Rand) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rnd = r
}

// Params returns the group parameters.
func (g *Group) Params() Params {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.params
}

// Len returns the number of live particles.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.recs)
}

// Version increases whenever particle records change.
func (g *Group) Version() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.version
}

func (g *Group) normal(mean, spread float32) float32 {
	if spread == 0 {
		return mean
	}
	return mean + spread*float32(g.rnd.NormFloat64())
}

// Emit adds n particles. Particles that reached MaxAge are removed first.
func (g *Group) Emit(n int, o EmitOptions) error {
	if err := o.validate(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.compact()
	if n <= 0 {
		return nil
	}
	g.recs = slices.Grow(g.recs, n)
	g.vels = slices.Grow(g.vels, n)
	g.spins = slices.Grow(g.spins, n)
	for range n {
		g.vels = append(g.vels, geom.Vec2{
			X: g.normal(o.Vel.X, o.VelSpread),
			Y: g.normal(o.Vel.Y, o.VelSpread),
		})
		pos := geom.Vec2{
			X: g.normal(o.Pos.X, o.PosSpread),
			Y: g.normal(o.Pos.Y, o.PosSpread),
		}
		size := g.normal(o.Size, o.SizeSpread)
		g.spins = append(g.spins, g.normal(o.Spin, o.SpinSpread))
		g.recs = append(g.recs, geom.ParticleRecord{
			Pos:   pos,
			Color: o.Color,
			Size:  size,
		})
	}
	g.version++
	return nil
}

// Update advances the group by dt seconds: ages particles, removes the
// expired ones, applies drag and gravity, then moves each particle by the
// average of its old and new velocity and turns it by its spin.
func (g *Group) Update(dt float32) {
	if !(dt > 0) {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	for i := range g.recs {
		g.recs[i].Age += dt
	}
	g.compact()

	drag := float32(math.Pow(float64(g.params.Drag), float64(dt)))
	pull := g.params.Gravity.Mul(dt)
	for i := range g.recs {
		old := g.vels[i]
		v := old.Mul(drag).Add(pull)
		g.vels[i] = v
		g.recs[i].Pos = g.recs[i].Pos.Add(v.Add(old).Mul(dt * 0.5))
		g.recs[i].Angle += g.spins[i] * dt
	}
	g.version++
}

// compact drops particles whose age reached MaxAge, keeping order.
func (g *Group) compact() {
	n := 0
	for i := range g.recs {
		if g.recs[i].Age >= g.params.MaxAge {
			continue
		}
		g.recs[n], g.vels[n], g.spins[n] = g.recs[i], g.vels[i], g.spins[i]
		n++
	}
	if n != len(g.recs) {
		g.version++
	}
	g.recs = g.recs[:n]
	g.vels = g.vels[:n]
	g.spins = g.spins[:n]
}

// Clear removes every particle.
func (g *Group) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.recs, g.vels, g.spins = g.recs[:0], g.vels[:0], g.spins[:0]
	g.version++
}

// Records appends the live particle records to dst.
func (g *Group) Records(dst []geom.ParticleRecord) []geom.ParticleRecord {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append(dst, g.recs...)
}

// Velocity returns the velocity of particle i.
func (g *Group) Velocity(i int) (geom.Vec2, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if i < 0 || i >= len(g.vels) {
		return geom.Vec2{}, false
	}
	return g.vels[i], true
}

// AddColorStop tints particles of the given age with a straight-alpha
// colour. Between stops the colour is interpolated linearly; before the
// first and after the last stop it is held constant.
func (g *Group) AddColorStop(age float32, color [4]float32) error {
	if !(age >= 0) || math.IsInf(float64(age), 0) {
		return fmt.Errorf("%w: stop age %v", ErrBadParam, age)
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	i, _ := slices.BinarySearchFunc(g.stops, age, func(s stop, a float32) int {
		switch {
		case s.age < a:
			return -1
		case s.age > a:
			return 1
		}
		return 0
	})
	g.stops = slices.Insert(g.stops, i, stop{age: age, color: color})
	g.rebuildRamp()
	g.version++
	return nil
}

// rebuildRamp samples the stops at RampSize evenly spaced ages from 0 to
// MaxAge inclusive. With an infinite MaxAge every texel holds the colour
// at age 0.
func (g *Group) rebuildRamp() {
	maxAge := g.params.MaxAge
	for i := range g.ramp {
		var age float32
		if !math.IsInf(float64(maxAge), 1) {
			age = maxAge * float32(i) / float32(geom.RampSize-1)
		}
		g.ramp[i] = g.colorAt(age)
	}
}

func (g *Group) colorAt(age float32) [4]float32 {
	s := g.stops
	if age <= s[0].age {
		return s[0].color
	}
	last := s[len(s)-1]
	if age >= last.age {
		return last.color
	}
	for i := 1; i < len(s); i++ {
		if age > s[i].age {
			continue
		}
		a, b := s[i-1], s[i]
		f := (age - a.age) / (b.age - a.age)
		var c [4]float32
		for k := range c {
			c[k] = a.color[k] + (b.color[k]-a.color[k])*f
		}
		return c
	}
	return last.color
}

// Ramp returns a copy of the colour ramp.
func (g *Group) Ramp() *geom.Ramp {
	g.mu.Lock()
	defer g.mu.Unlock()
	r := g.ramp
	return &r
}

// ExpandParams returns the per-group values the geometry stage needs. A
// zero uv with texture false draws solid squares.
func (g *Group) ExpandParams(uv geom.UVMap, texture bool) geom.ParticleParams {
	g.mu.Lock()
	defer g.mu.Unlock()
	ramp := g.ramp
	return geom.ParticleParams{
		Grow:    g.params.Grow,
		MaxAge:  g.params.MaxAge,
		Ramp:    &ramp,
		UV:      uv,
		Texture: texture,
	}
}
