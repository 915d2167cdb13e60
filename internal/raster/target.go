// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package raster is the software backend: a triangle rasterizer with
// multisampling that runs the fragment programs of package shade.
package raster

import (
	"errors"
	"fmt"

	"github.com/gogpu/g2d/internal/geom"
	"github.com/gogpu/g2d/internal/image"
)

// ErrSampleCount is returned for unsupported multisample counts.
var ErrSampleCount = errors.New("raster: sample count must be 1, 2, 4 or 8")

// samplePatterns holds the standard multisample positions in 1/16 pixel
// units relative to the pixel centre.
var samplePatterns = map[int][]geom.Vec2{
	1: {{X: 0, Y: 0}},
	2: {{X: 4, Y: 4}, {X: -4, Y: -4}},
	4: {{X: -2, Y: -6}, {X: 6, Y: -2}, {X: -6, Y: 2}, {X: 2, Y: 6}},
	8: {
		{X: 1, Y: -3}, {X: -1, Y: 3}, {X: 5, Y: 1}, {X: -3, Y: -5},
		{X: -5, Y: 5}, {X: -7, Y: -1}, {X: 3, Y: 7}, {X: 7, Y: -7},
	},
}

// ValidSampleCount reports whether n is a supported multisample count.
func ValidSampleCount(n int) bool {
	_, ok := samplePatterns[n]
	return ok
}

// Target is a multisampled colour target. Each pixel stores one colour per
// sample; Resolve averages them into a Frame.
type Target struct {
	width, height int
	samples       int
	offsets       []geom.Vec2 // sample offsets in pixels from the pixel centre
	buf           []image.RGBA
}

// NewTarget creates a cleared target.
func NewTarget(width, height, samples int) (*Target, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("raster: %dx%d: %w", width, height, image.ErrInvalidDimensions)
	}
	pat, ok := samplePatterns[samples]
	if !ok {
		return nil, fmt.Errorf("%w: got %d", ErrSampleCount, samples)
	}
	offsets := make([]geom.Vec2, len(pat))
	for i, p := range pat {
		offsets[i] = p.Mul(1.0 / 16)
	}
	return &Target{
		width:   width,
		height:  height,
		samples: samples,
		offsets: offsets,
		buf:     make([]image.RGBA, width*height*samples),
	}, nil
}

// Width returns the target width in pixels.
func (t *Target) Width() int { return t.width }

// Height returns the target height in pixels.
func (t *Target) Height() int { return t.height }

// Samples returns the number of samples per pixel.
func (t *Target) Samples() int { return t.samples }

// Clear sets every sample to c.
func (t *Target) Clear(c image.RGBA) {
	for i := range t.buf {
		t.buf[i] = c
	}
}

// Sample returns sample s of pixel (x, y).
func (t *Target) Sample(x, y, s int) image.RGBA {
	return t.buf[(y*t.width+x)*t.samples+s]
}

// Resolve averages the samples of every pixel into dst. Pixels whose
// resolved alpha is exactly zero are not written.
func (t *Target) Resolve(dst *image.Frame) error {
	if dst.Width() != t.width || dst.Height() != t.height {
		return image.ErrSizeMismatch
	}
	inv := 1 / float32(t.samples)
	for y := range t.height {
		row := dst.Row(y)
		for x := range t.width {
			base := (y*t.width + x) * t.samples
			var sum image.RGBA
			for _, c := range t.buf[base : base+t.samples] {
				sum = sum.Add(c)
			}
			sum = sum.Scale(inv)
			if sum.A == 0 {
				continue
			}
			row[x] = sum
		}
	}
	return nil
}

// ResolveFrame is Resolve into a new transparent frame.
func (t *Target) ResolveFrame() *image.Frame {
	f := image.MustFrame(t.width, t.height)
	_ = t.Resolve(f)
	return f
}
