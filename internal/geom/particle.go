package geom

import "math"

// RampSize is the number of texels in a particle colour ramp.
const RampSize = 512

// Ramp is a 1-D colour lookup indexed by normalized particle age.
type Ramp [RampSize][4]float32

// Sample interpolates the ramp at t in [0, 1] the way a linearly filtered
// 1-D texture would: texel centres sit at (i+0.5)/RampSize.
func (r *Ramp) Sample(t float32) [4]float32 {
	if r == nil {
		return [4]float32{1, 1, 1, 1}
	}
	x := t*RampSize - 0.5
	i0 := int(math.Floor(float64(x)))
	f := x - float32(i0)
	i0 = Clamp(i0, 0, RampSize-1)
	i1 := Clamp(i0+1, 0, RampSize-1)
	if x < 0 {
		f = 0
	}
	a, b := r[i0], r[i1]
	return [4]float32{
		a[0] + (b[0]-a[0])*f,
		a[1] + (b[1]-a[1])*f,
		a[2] + (b[2]-a[2])*f,
		a[3] + (b[3]-a[3])*f,
	}
}

// ParticleParams are the per-group values shared by every particle.
type ParticleParams struct {
	Grow    float32 // size multiplier per second of age
	MaxAge  float32 // +Inf keeps particles forever
	Ramp    *Ramp
	UV      UVMap
	Texture bool // when false particles are solid squares
}

// ParticleSize returns base * grow^age.
func ParticleSize(base, grow, age float32) float32 {
	return base * float32(math.Pow(float64(grow), float64(age)))
}

// AgeFraction normalizes an age against maxAge, clamped so ramp lookups
// never wrap past the last texel.
func AgeFraction(age, maxAge float32) float32 {
	if maxAge <= 0 || infinite(maxAge) {
		return 0
	}
	return Clamp(age/maxAge, 0, maxAgeFrac)
}

// ExpandParticle emits the rotated quad of one particle, tinted by the
// group's colour ramp at the particle's normalized age.
func ExpandParticle(r ParticleRecord, p ParticleParams, proj Mat4, page Vec2) Strip {
	if !r.Finite() {
		return nil
	}
	page = safePage(page)
	tint := p.Ramp.Sample(AgeFraction(r.Age, p.MaxAge))
	col := premul([4]float32{
		r.Color[0] * tint[0],
		r.Color[1] * tint[1],
		r.Color[2] * tint[2],
		r.Color[3] * tint[3],
	})

	sz := ParticleSize(r.Size, p.Grow, r.Age)
	sn, cs := math.Sincos(float64(r.Angle))
	c, s := float32(cs), float32(sn)

	st := make(Strip, 4)
	for i, q := range quadCorners {
		corner := Vec2{(q.X*2 - 1) * sz, (q.Y*2 - 1) * sz}
		rotated := Vec2{c*corner.X - s*corner.Y, s*corner.X + c*corner.Y}
		uv := q
		if p.Texture {
			uv = p.UV.Normalized(q.X, q.Y, page)
		}
		st[i] = Vertex{
			Pos:   proj.Point(r.Pos.Add(rotated)),
			UV:    uv,
			Color: col,
		}
	}
	return st
}
