package g2d

import (
	"errors"
	"math"
	"testing"

	"github.com/gogpu/g2d/internal/geom"
)

func vecNear(a, b Vec2) bool {
	return math.Abs(float64(a.X-b.X)) < 1e-4 && math.Abs(float64(a.Y-b.Y)) < 1e-4
}

// node is a bare Transformable for exercising groups without a scene.
type node struct {
	Transform
	syncs int
}

func newNode(x, y float32) *node {
	n := &node{}
	n.init(x, y, func() { n.syncs++ })
	return n
}

func TestTransform_Setters(t *testing.T) {
	n := newNode(1, 2)
	n.Move(2, 3)
	n.SetAngle(math.Pi / 2)
	n.SetScale(2)
	if got := n.Pos(); got != V(3, 5) {
		t.Errorf("Pos = %v, want (3, 5)", got)
	}
	if n.syncs != 3 {
		t.Errorf("syncs = %d, want 3", n.syncs)
	}
	// Scale, then rotate a quarter turn clockwise, then translate.
	if got := n.World().Point(V(1, 0)); !vecNear(got, V(3, 7)) {
		t.Errorf("World(1, 0) = %v, want (3, 7)", got)
	}
	n.SetScaleXY(1, 3)
	if got := n.Scale(); got != V(1, 3) {
		t.Errorf("Scale = %v, want (1, 3)", got)
	}
}

func TestGroup_Transform(t *testing.T) {
	a := newNode(10, 0)
	g, err := NewGroup(100, 100, a)
	if err != nil {
		t.Fatal(err)
	}
	if a.Group() != g || g.Len() != 1 {
		t.Fatalf("membership not recorded")
	}
	if got := a.World().Point(V(0, 0)); !vecNear(got, V(110, 100)) {
		t.Errorf("member origin = %v, want (110, 100)", got)
	}

	before := a.syncs
	g.SetAngle(math.Pi)
	if a.syncs != before+1 {
		t.Errorf("member syncs = %d, want %d", a.syncs, before+1)
	}
	if got := a.World().Point(V(0, 0)); !vecNear(got, V(90, 100)) {
		t.Errorf("rotated member origin = %v, want (90, 100)", got)
	}

	p := g.LocalToWorld(V(5, 0))
	back, ok := g.WorldToLocal(p)
	if !ok || !vecNear(back, V(5, 0)) {
		t.Errorf("WorldToLocal(LocalToWorld(5, 0)) = %v, %v", back, ok)
	}

	g.Remove(a)
	if a.Group() != nil || g.Len() != 0 {
		t.Error("Remove left the member attached")
	}
	if got := a.World().Point(V(0, 0)); !vecNear(got, V(10, 0)) {
		t.Errorf("removed member origin = %v, want (10, 0)", got)
	}
}

func TestGroup_Nested(t *testing.T) {
	leaf := newNode(1, 0)
	inner, err := NewGroup(10, 0, leaf)
	if err != nil {
		t.Fatal(err)
	}
	outer, err := NewGroup(100, 0, inner)
	if err != nil {
		t.Fatal(err)
	}
	if got := leaf.World().Point(V(0, 0)); !vecNear(got, V(111, 0)) {
		t.Errorf("leaf origin = %v, want (111, 0)", got)
	}

	if err := inner.Add(outer); !errors.Is(err, ErrGroupCycle) {
		t.Errorf("Add(ancestor) = %v, want ErrGroupCycle", err)
	}
	if err := outer.Add(outer); !errors.Is(err, ErrGroupCycle) {
		t.Errorf("Add(self) = %v, want ErrGroupCycle", err)
	}

	// Moving a member between groups detaches it from the first.
	if err := outer.Add(leaf); err != nil {
		t.Fatal(err)
	}
	if inner.Len() != 0 || outer.Len() != 2 {
		t.Errorf("Len inner=%d outer=%d, want 0 and 2", inner.Len(), outer.Len())
	}
}

func TestGroup_WorldToLocalDegenerate(t *testing.T) {
	g, err := NewGroup(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	g.SetScale(0)
	if _, ok := g.WorldToLocal(V(1, 1)); ok {
		t.Error("WorldToLocal succeeded on a zero-scale group")
	}
}

func TestCamera_DefaultIsScreen(t *testing.T) {
	c := newCamera(320, 200)
	if got, want := c.Projection(), geom.ScreenProjection(320, 200); got != want {
		t.Errorf("Projection = %v, want %v", got, want)
	}
	if got := c.WorldToScreen(V(12, 34)); !vecNear(got, V(12, 34)) {
		t.Errorf("WorldToScreen = %v, want (12, 34)", got)
	}
}

func TestCamera_RoundTrip(t *testing.T) {
	c := newCamera(100, 100)
	c.SetPos(500, -20)
	c.SetZoom(4)
	c.SetZoom(-1)
	c.SetZoom(float32(math.Inf(1)))
	if z := c.Zoom(); z != 4 {
		t.Errorf("Zoom = %v, want 4", z)
	}
	for _, p := range []Vec2{V(0, 0), V(50, 50), V(99, 3)} {
		if got := c.WorldToScreen(c.ScreenToWorld(p)); !vecNear(got, p) {
			t.Errorf("round trip %v = %v", p, got)
		}
	}
	if got := c.ScreenToWorld(V(50, 50)); !vecNear(got, V(500, -20)) {
		t.Errorf("centre maps to %v, want camera pos", got)
	}
	if got := c.ScreenToWorld(V(100, 50)); !vecNear(got, V(512.5, -20)) {
		t.Errorf("right edge maps to %v, want (512.5, -20)", got)
	}
}

func TestCamera_ShakeSettles(t *testing.T) {
	c := newCamera(100, 100)
	c.Shake(10)
	if d := c.ShakeOffset().Len(); math.Abs(float64(d-10)) > 1e-4 {
		t.Fatalf("shake offset = %v, want 10", d)
	}
	for range 300 {
		c.update(1.0 / 60)
	}
	if off := c.ShakeOffset(); off != (Vec2{}) {
		t.Errorf("shake offset after 5s = %v, want zero", off)
	}
	if got := c.Projection(); got != geom.ScreenProjection(100, 100) {
		t.Error("projection did not return to rest")
	}
}
