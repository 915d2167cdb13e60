// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"honnef.co/go/safeish"

	"github.com/gogpu/g2d/internal/geom"
	"github.com/gogpu/g2d/internal/image"
	"github.com/gogpu/g2d/internal/shade"
)

// texture is a sampled texture and its default view.
type texture struct {
	tex  hal.Texture
	view hal.TextureView
}

func (t *texture) destroy(device hal.Device) {
	if t.view != nil {
		device.DestroyTextureView(t.view)
	}
	if t.tex != nil {
		device.DestroyTexture(t.tex)
	}
}

func createTexture(device hal.Device, label string, w, h, samples uint32, format gputypes.TextureFormat, usage gputypes.TextureUsage) (*texture, error) {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s texture: %w", label, err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("create %s view: %w", label, err)
	}
	return &texture{tex: tex, view: view}, nil
}

// uploadFrame creates a sampled RGBA8 texture holding f. Frames are
// premultiplied, as the pipelines' blending expects.
func uploadFrame(d *Device, label string, f *image.Frame) (*texture, error) {
	w, h := uint32(f.Width()), uint32(f.Height())
	t, err := createTexture(d.device, label, w, h, 1, TargetFormat,
		gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopyDst)
	if err != nil {
		return nil, err
	}
	img := f.ToImage()
	err = d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.tex, Aspect: gputypes.TextureAspectAll},
		img.Pix,
		&hal.ImageDataLayout{BytesPerRow: uint32(img.Stride), RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	if err != nil {
		t.destroy(d.device)
		return nil, fmt.Errorf("upload %s: %w", label, err)
	}
	return t, nil
}

// uploadIndex creates the 64x64 cell index texture of a tile block.
func uploadIndex(d *Device, idx *shade.TileIndex) (*texture, error) {
	const n = geom.BlockSize
	t, err := createTexture(d.device, "tile_index", n, n, 1, gputypes.TextureFormatR8Uint,
		gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopyDst)
	if err != nil {
		return nil, err
	}
	err = d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.tex, Aspect: gputypes.TextureAspectAll},
		idx[:],
		&hal.ImageDataLayout{BytesPerRow: n, RowsPerImage: n},
		&hal.Extent3D{Width: n, Height: n, DepthOrArrayLayers: 1},
	)
	if err != nil {
		t.destroy(d.device)
		return nil, fmt.Errorf("upload tile index: %w", err)
	}
	return t, nil
}

// packLUT lays out tile rectangles as the shader's TileLUT uniform: a
// header whose first word is the entry count, then two vec4 per rectangle.
// Indices at or past the count are discarded by the shader.
func packLUT(lut []geom.UVMap, page geom.Vec2) []uint32 {
	n := min(len(lut), lutEntries)
	out := make([]uint32, lutHeader+lutEntries*8)
	out[0] = uint32(n)
	for i, m := range lut[:n] {
		o := out[lutHeader+i*8 : lutHeader+i*8+8]
		for j, v := range [8]float32{
			m.Origin.X, m.Origin.Y,
			m.Across.X, m.Across.Y,
			m.Down.X, m.Down.Y,
			page.X, page.Y,
		} {
			o[j] = math.Float32bits(v)
		}
	}
	return out
}

// createBuffer creates a buffer and fills it with data.
func createBuffer(d *Device, label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	if err := d.queue.WriteBuffer(buf, 0, data); err != nil {
		d.device.DestroyBuffer(buf)
		return nil, fmt.Errorf("write %s: %w", label, err)
	}
	return buf, nil
}

// vertexBytes reinterprets vertices as their packed byte layout.
func vertexBytes(v []geom.Vertex) []byte {
	return safeish.SliceCast[[]byte](v)
}

// wordBytes reinterprets 32-bit words as bytes.
func wordBytes(v []uint32) []byte {
	return safeish.SliceCast[[]byte](v)
}
