// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"math"

	"github.com/gogpu/g2d/internal/blend"
	"github.com/gogpu/g2d/internal/geom"
	"github.com/gogpu/g2d/internal/image"
	"github.com/gogpu/g2d/internal/shade"
)

// screen converts a clip-space position to pixel space. Clip y points up,
// pixel y points down.
func (t *Target) screen(p geom.Vec2) geom.Vec2 {
	return geom.Vec2{
		X: (p.X + 1) * 0.5 * float32(t.width),
		Y: (1 - p.Y) * 0.5 * float32(t.height),
	}
}

// DrawStrips rasterizes triangle strips.
func (t *Target) DrawStrips(strips []geom.Strip, prog shade.Program, mode blend.Mode) {
	for _, s := range strips {
		for i := 0; i+2 < len(s); i++ {
			t.DrawTriangle(s[i], s[i+1], s[i+2], prog, mode)
		}
	}
}

// DrawList rasterizes a triangle list.
func (t *Target) DrawList(verts []geom.Vertex, prog shade.Program, mode blend.Mode) {
	for i := 0; i+2 < len(verts); i += 3 {
		t.DrawTriangle(verts[i], verts[i+1], verts[i+2], prog, mode)
	}
}

// DrawCalls rasterizes each call's triangle list with its program.
func (t *Target) DrawCalls(calls []shade.Call, mode blend.Mode) {
	for i := range calls {
		t.DrawList(calls[i].Vertices, calls[i].Program(), mode)
	}
}

// edge is one triangle edge as an edge function w(p) = a*p.x + b*p.y + c,
// positive inside.
type edge struct {
	a, b, c float64
	topLeft bool
}

func makeEdge(p0, p1 geom.Vec2) edge {
	dx := float64(p1.X) - float64(p0.X)
	dy := float64(p1.Y) - float64(p0.Y)
	return edge{
		a:       -dy,
		b:       dx,
		c:       dy*float64(p0.X) - dx*float64(p0.Y),
		topLeft: dy < 0 || (dy == 0 && dx > 0),
	}
}

func (e edge) eval(x, y float64) float64 { return e.a*x + e.b*y + e.c }

// inside applies the top-left rule to samples lying exactly on the edge.
func (e edge) inside(w float64) bool {
	return w > 0 || (w == 0 && e.topLeft)
}

// DrawTriangle rasterizes one triangle. Both windings are drawn.
//
// Coverage is tested per sample; the fragment program runs once per pixel
// at the pixel centre and its result is blended into every covered sample.
// Discarded fragments write nothing.
func (t *Target) DrawTriangle(v0, v1, v2 geom.Vertex, prog shade.Program, mode blend.Mode) {
	p0, p1, p2 := t.screen(v0.Pos), t.screen(v1.Pos), t.screen(v2.Pos)
	if !p0.Finite() || !p1.Finite() || !p2.Finite() {
		return
	}

	area := (float64(p1.X)-float64(p0.X))*(float64(p2.Y)-float64(p0.Y)) -
		(float64(p1.Y)-float64(p0.Y))*(float64(p2.X)-float64(p0.X))
	if area == 0 {
		return
	}
	if area < 0 {
		v1, v2 = v2, v1
		p1, p2 = p2, p1
		area = -area
	}

	// Edge i is opposite vertex i.
	e0 := makeEdge(p1, p2)
	e1 := makeEdge(p2, p0)
	e2 := makeEdge(p0, p1)

	// Clamp in float space so huge finite coordinates cannot overflow int.
	w, h := float64(t.width), float64(t.height)
	minX := int(math.Floor(geom.Clamp(float64(min(p0.X, p1.X, p2.X)), 0, w)))
	maxX := int(math.Ceil(geom.Clamp(float64(max(p0.X, p1.X, p2.X)), 0, w)))
	minY := int(math.Floor(geom.Clamp(float64(min(p0.Y, p1.Y, p2.Y)), 0, h)))
	maxY := int(math.Ceil(geom.Clamp(float64(max(p0.Y, p1.Y, p2.Y)), 0, h)))
	maxX = min(maxX, t.width-1)
	maxY = min(maxY, t.height-1)

	c0, c1, c2 := image.FromArray(v0.Color), image.FromArray(v1.Color), image.FromArray(v2.Color)
	inv := 1 / area

	var covered [8]bool
	for y := minY; y <= maxY; y++ {
		cy := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			cx := float64(x) + 0.5

			hit := false
			for s, off := range t.offsets {
				sx, sy := cx+float64(off.X), cy+float64(off.Y)
				covered[s] = e0.inside(e0.eval(sx, sy)) &&
					e1.inside(e1.eval(sx, sy)) &&
					e2.inside(e2.eval(sx, sy))
				hit = hit || covered[s]
			}
			if !hit {
				continue
			}

			b0 := float32(e0.eval(cx, cy) * inv)
			b1 := float32(e1.eval(cx, cy) * inv)
			b2 := 1 - b0 - b1
			frag := shade.Fragment{
				UV: geom.Vec2{
					X: v0.UV.X*b0 + v1.UV.X*b1 + v2.UV.X*b2,
					Y: v0.UV.Y*b0 + v1.UV.Y*b1 + v2.UV.Y*b2,
				},
				Color: c0.Scale(b0).Add(c1.Scale(b1)).Add(c2.Scale(b2)),
			}
			col, ok := prog.Shade(frag)
			if !ok {
				continue
			}

			base := (y*t.width + x) * t.samples
			for s := range t.samples {
				if covered[s] {
					t.buf[base+s] = blend.Blend(col, t.buf[base+s], mode)
				}
			}
		}
	}
}
