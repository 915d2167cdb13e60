package particles

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/gogpu/g2d/internal/geom"
)

func near(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

func mustGroup(t *testing.T, p Params) *Group {
	t.Helper()
	g, err := New(p)
	if err != nil {
		t.Fatal(err)
	}
	g.SetRand(rand.New(rand.NewPCG(7, 11)))
	return g
}

func TestNew_Validation(t *testing.T) {
	nan := float32(math.NaN())
	tests := []struct {
		name string
		mod  func(*Params)
		ok   bool
	}{
		{"defaults", func(*Params) {}, true},
		{"zero grow", func(p *Params) { p.Grow = 0 }, false},
		{"nan max age", func(p *Params) { p.MaxAge = nan }, false},
		{"negative max age", func(p *Params) { p.MaxAge = -1 }, false},
		{"negative drag", func(p *Params) { p.Drag = -0.5 }, false},
		{"zero drag", func(p *Params) { p.Drag = 0 }, true},
		{"nan gravity", func(p *Params) { p.Gravity.Y = nan }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mod(&p)
			_, err := New(p)
			if (err == nil) != tt.ok {
				t.Errorf("New err = %v, want ok=%v", err, tt.ok)
			}
			if err != nil && !errors.Is(err, ErrBadParam) {
				t.Errorf("err = %v, want ErrBadParam", err)
			}
		})
	}
}

func TestEmit_NoSpreadIsExact(t *testing.T) {
	g := mustGroup(t, DefaultParams())
	o := DefaultEmitOptions()
	o.Pos = geom.Vec2{X: 10, Y: 20}
	o.Size = 3
	if err := g.Emit(5, o); err != nil {
		t.Fatal(err)
	}
	recs := g.Records(nil)
	if len(recs) != 5 {
		t.Fatalf("len = %d, want 5", len(recs))
	}
	for _, r := range recs {
		if r.Pos != o.Pos || r.Size != 3 || r.Age != 0 || r.Color != o.Color {
			t.Errorf("record = %+v", r)
		}
	}
}

func TestEmit_Spread(t *testing.T) {
	g := mustGroup(t, DefaultParams())
	o := DefaultEmitOptions()
	o.PosSpread = 5
	if err := g.Emit(2000, o); err != nil {
		t.Fatal(err)
	}
	var sum, sq float64
	for _, r := range g.Records(nil) {
		sum += float64(r.Pos.X)
		sq += float64(r.Pos.X) * float64(r.Pos.X)
	}
	mean := sum / 2000
	sd := math.Sqrt(sq/2000 - mean*mean)
	if math.Abs(mean) > 0.5 || math.Abs(sd-5) > 0.5 {
		t.Errorf("x mean = %v, sd = %v, want about 0 and 5", mean, sd)
	}
}

func TestEmit_BadSpread(t *testing.T) {
	g := mustGroup(t, DefaultParams())
	o := DefaultEmitOptions()
	o.VelSpread = -1
	if err := g.Emit(1, o); !errors.Is(err, ErrBadParam) {
		t.Errorf("Emit = %v, want ErrBadParam", err)
	}
	if g.Len() != 0 {
		t.Errorf("Len = %d after failed Emit", g.Len())
	}
}

func TestUpdate_Integration(t *testing.T) {
	p := DefaultParams()
	p.Gravity = geom.Vec2{Y: 10}
	g := mustGroup(t, p)
	o := DefaultEmitOptions()
	o.Vel = geom.Vec2{X: 4}
	o.Spin = 2
	if err := g.Emit(1, o); err != nil {
		t.Fatal(err)
	}
	g.Update(0.5)

	r := g.Records(nil)[0]
	// v' = (4, 5); pos += (v + v') * dt / 2 = (2, 1.25).
	if !near(r.Pos.X, 2, 1e-5) || !near(r.Pos.Y, 1.25, 1e-5) {
		t.Errorf("pos = %v, want (2, 1.25)", r.Pos)
	}
	if !near(r.Angle, 1, 1e-6) || !near(r.Age, 0.5, 1e-6) {
		t.Errorf("angle = %v age = %v, want 1 and 0.5", r.Angle, r.Age)
	}
	if v, _ := g.Velocity(0); !near(v.Y, 5, 1e-6) {
		t.Errorf("vel = %v, want y 5", v)
	}
}

func TestUpdate_Drag(t *testing.T) {
	p := DefaultParams()
	p.Drag = 0.25
	g := mustGroup(t, p)
	o := DefaultEmitOptions()
	o.Vel = geom.Vec2{X: 8}
	_ = g.Emit(1, o)
	g.Update(0.5)
	if v, _ := g.Velocity(0); !near(v.X, 4, 1e-5) {
		t.Errorf("vel = %v, want 8 * 0.25^0.5 = 4", v)
	}
}

func TestUpdate_AgesOut(t *testing.T) {
	p := DefaultParams()
	p.MaxAge = 1
	g := mustGroup(t, p)
	_ = g.Emit(3, DefaultEmitOptions())
	g.Update(0.6)
	_ = g.Emit(2, DefaultEmitOptions())
	if g.Len() != 5 {
		t.Fatalf("Len = %d, want 5", g.Len())
	}
	g.Update(0.6)
	if g.Len() != 2 {
		t.Errorf("Len = %d, want the 2 younger particles", g.Len())
	}
	for _, r := range g.Records(nil) {
		if !near(r.Age, 0.6, 1e-6) {
			t.Errorf("survivor age = %v, want 0.6", r.Age)
		}
	}
}

func TestAddColorStop_Ramp(t *testing.T) {
	p := DefaultParams()
	p.MaxAge = 2
	g := mustGroup(t, p)
	red := [4]float32{1, 0, 0, 1}
	blue := [4]float32{0, 0, 1, 0}
	if err := g.AddColorStop(2, blue); err != nil {
		t.Fatal(err)
	}
	if err := g.AddColorStop(0, red); err != nil {
		t.Fatal(err)
	}

	ramp := g.Ramp()
	if ramp[0] != red {
		t.Errorf("ramp[0] = %v, want red", ramp[0])
	}
	if ramp[geom.RampSize-1] != blue {
		t.Errorf("ramp[last] = %v, want the final stop", ramp[geom.RampSize-1])
	}
	mid := ramp.Sample(0.5)
	if !near(mid[0], 0.5, 0.01) || !near(mid[2], 0.5, 0.01) || !near(mid[3], 0.5, 0.01) {
		t.Errorf("ramp at half age = %v, want halfway", mid)
	}
}

func TestAddColorStop_HeldOutsideStops(t *testing.T) {
	p := DefaultParams()
	p.MaxAge = 4
	g := mustGroup(t, p)
	green := [4]float32{0, 1, 0, 1}
	_ = g.AddColorStop(1, green)
	ramp := g.Ramp()
	if ramp[0] != green || ramp[geom.RampSize-1] != green {
		t.Errorf("single stop ramp = %v .. %v, want green throughout", ramp[0], ramp[geom.RampSize-1])
	}
	if err := g.AddColorStop(float32(math.NaN()), green); !errors.Is(err, ErrBadParam) {
		t.Errorf("AddColorStop(NaN) = %v, want ErrBadParam", err)
	}
}

func TestExpandParams(t *testing.T) {
	p := DefaultParams()
	p.Grow = 2
	p.MaxAge = 3
	g := mustGroup(t, p)
	ep := g.ExpandParams(geom.UVMap{}, false)
	if ep.Grow != 2 || ep.MaxAge != 3 || ep.Ramp == nil || ep.Texture {
		t.Errorf("ExpandParams = %+v", ep)
	}

	_ = g.Emit(1, DefaultEmitOptions())
	g.Update(1)
	r := g.Records(nil)[0]
	st := geom.ExpandParticle(r, ep, geom.Mat4Identity(), geom.Vec2{X: 1, Y: 1})
	if len(st) != 4 {
		t.Fatalf("strip = %d vertices, want 4", len(st))
	}
	// size = 1 * 2^1 = 2: the quad spans 4 units.
	if w := st[2].Pos.X - st[0].Pos.X; !near(w, 4, 1e-4) {
		t.Errorf("quad width = %v, want 4", w)
	}
}
