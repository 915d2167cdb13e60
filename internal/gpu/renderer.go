// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"context"
	"errors"
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/g2d/internal/geom"
	"github.com/gogpu/g2d/internal/image"
	"github.com/gogpu/g2d/internal/shade"
)

// copyPitchAlignment is the row alignment of texture to buffer copies.
const copyPitchAlignment = 256

// Renderer draws shade.Calls into an offscreen, optionally multisampled
// target and reads the resolved pixels back into a Frame.
type Renderer struct {
	dev           *Device
	width, height uint32
	samples       uint32

	msaa    *texture // nil when samples == 1
	resolve *texture
	staging hal.Buffer
	pitch   uint32

	nearest   hal.Sampler
	linear    hal.Sampler
	pipelines map[shade.Kind]*pipeline
}

// NewRenderer creates the targets for a width x height frame with the
// given multisample count.
func NewRenderer(dev *Device, width, height, samples int) (*Renderer, error) {
	if dev == nil || dev.device == nil {
		return nil, ErrNoDevice
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("gpu: %dx%d: %w", width, height, image.ErrInvalidDimensions)
	}
	switch samples {
	case 1, 4:
	default:
		return nil, fmt.Errorf("gpu: sample count %d unsupported, want 1 or 4", samples)
	}
	r := &Renderer{
		dev:       dev,
		width:     uint32(width),
		height:    uint32(height),
		samples:   uint32(samples),
		pipelines: make(map[shade.Kind]*pipeline),
	}
	if err := r.createTargets(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (r *Renderer) createTargets() error {
	var err error
	device := r.dev.device
	r.resolve, err = createTexture(device, "resolve", r.width, r.height, 1, TargetFormat,
		gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageCopySrc)
	if err != nil {
		return err
	}
	if r.samples > 1 {
		r.msaa, err = createTexture(device, "msaa", r.width, r.height, r.samples, TargetFormat,
			gputypes.TextureUsageRenderAttachment)
		if err != nil {
			return err
		}
	}

	r.pitch = (r.width*4 + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	r.staging, err = device.CreateBuffer(&hal.BufferDescriptor{
		Label: "readback_staging",
		Size:  uint64(r.pitch) * uint64(r.height),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create staging buffer: %w", err)
	}

	for _, s := range []struct {
		dst    *hal.Sampler
		filter gputypes.FilterMode
	}{{&r.nearest, gputypes.FilterModeNearest}, {&r.linear, gputypes.FilterModeLinear}} {
		*s.dst, err = device.CreateSampler(&hal.SamplerDescriptor{
			Label:        "page_sampler",
			AddressModeU: gputypes.AddressModeClampToEdge,
			AddressModeV: gputypes.AddressModeClampToEdge,
			AddressModeW: gputypes.AddressModeClampToEdge,
			MagFilter:    s.filter,
			MinFilter:    s.filter,
			MipmapFilter: gputypes.FilterModeNearest,
			LodMaxClamp:  32,
			Anisotropy:   1,
		})
		if err != nil {
			return fmt.Errorf("create sampler: %w", err)
		}
	}
	return nil
}

// Size returns the target size in pixels.
func (r *Renderer) Size() (int, int) { return int(r.width), int(r.height) }

// Samples returns the multisample count.
func (r *Renderer) Samples() int { return int(r.samples) }

func (r *Renderer) pipeline(k shade.Kind) (*pipeline, error) {
	if p, ok := r.pipelines[k]; ok {
		return p, nil
	}
	p, err := newPipeline(r.dev.device, k, r.samples)
	if err != nil {
		return nil, err
	}
	r.pipelines[k] = p
	return p, nil
}

// frameResources holds what one Render call uploads.
type frameResources struct {
	device   hal.Device
	textures map[*image.Frame]*texture
	owned    []*texture
	buffers  []hal.Buffer
	groups   []hal.BindGroup
}

func (f *frameResources) destroy() {
	for _, g := range f.groups {
		f.device.DestroyBindGroup(g)
	}
	for _, b := range f.buffers {
		f.device.DestroyBuffer(b)
	}
	for _, t := range f.owned {
		t.destroy(f.device)
	}
}

func (f *frameResources) page(d *Device, p *image.Frame) (*texture, error) {
	if t, ok := f.textures[p]; ok {
		return t, nil
	}
	t, err := uploadFrame(d, "atlas_page", p)
	if err != nil {
		return nil, err
	}
	f.textures[p] = t
	f.owned = append(f.owned, t)
	return t, nil
}

// draw is one recorded draw: pipeline, optional bind group and vertices.
type draw struct {
	pipe   *pipeline
	group  hal.BindGroup
	verts  hal.Buffer
	nverts uint32
}

func (r *Renderer) prepare(res *frameResources, c *shade.Call) (draw, error) {
	p, err := r.pipeline(c.Kind)
	if err != nil {
		return draw{}, err
	}
	vb, err := createBuffer(r.dev, c.Kind.String()+"_vertices", vertexBytes(c.Vertices), gputypes.BufferUsageVertex)
	if err != nil {
		return draw{}, err
	}
	res.buffers = append(res.buffers, vb)
	d := draw{pipe: p, verts: vb, nverts: uint32(len(c.Vertices))}
	if p.layout == nil {
		return d, nil
	}

	page := c.Page
	if c.Kind == shade.KindTile {
		page = c.TilePage()
	}
	if page == nil {
		return draw{}, fmt.Errorf("gpu: %s call without a texture", c.Kind)
	}
	pt, err := res.page(r.dev, page)
	if err != nil {
		return draw{}, err
	}
	sampler := r.nearest
	if c.Filter == image.InterpBilinear {
		sampler = r.linear
	}
	entries := []gputypes.BindGroupEntry{
		{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: pt.view.NativeHandle()}},
		{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: sampler.NativeHandle()}},
	}
	if c.Kind == shade.KindTile {
		if c.Index == nil {
			return draw{}, errors.New("gpu: tile call without an index")
		}
		it, err := uploadIndex(r.dev, c.Index)
		if err != nil {
			return draw{}, err
		}
		res.owned = append(res.owned, it)
		pageSize := geom.Vec2{X: float32(page.Width()), Y: float32(page.Height())}
		lut, err := createBuffer(r.dev, "tile_lut", wordBytes(packLUT(c.LUT, pageSize)), gputypes.BufferUsageUniform)
		if err != nil {
			return draw{}, err
		}
		res.buffers = append(res.buffers, lut)
		entries = append(entries,
			gputypes.BindGroupEntry{Binding: 2, Resource: gputypes.TextureViewBinding{TextureView: it.view.NativeHandle()}},
			gputypes.BindGroupEntry{Binding: 3, Resource: gputypes.BufferBinding{Buffer: lut.NativeHandle(), Size: lutSize}},
		)
	}
	d.group, err = r.dev.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   c.Kind.String() + "_bind_group",
		Layout:  p.layout,
		Entries: entries,
	})
	if err != nil {
		return draw{}, fmt.Errorf("create %s bind group: %w", c.Kind, err)
	}
	res.groups = append(res.groups, d.group)
	return d, nil
}

// Render clears the target to clear, draws calls in order with
// premultiplied source-over blending, resolves and copies the result into
// dst, which must match the renderer's size.
func (r *Renderer) Render(ctx context.Context, calls []shade.Call, clear image.RGBA, dst *image.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dst.Width() != int(r.width) || dst.Height() != int(r.height) {
		return fmt.Errorf("gpu: destination %dx%d, want %dx%d: %w",
			dst.Width(), dst.Height(), r.width, r.height, image.ErrSizeMismatch)
	}
	device := r.dev.device

	res := &frameResources{device: device, textures: make(map[*image.Frame]*texture)}
	defer res.destroy()
	draws := make([]draw, 0, len(calls))
	for i := range calls {
		if len(calls[i].Vertices) < 3 {
			continue
		}
		d, err := r.prepare(res, &calls[i])
		if err != nil {
			return err
		}
		draws = append(draws, d)
	}

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "frame_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	attach := hal.RenderPassColorAttachment{
		View:       r.resolve.view,
		LoadOp:     gputypes.LoadOpClear,
		StoreOp:    gputypes.StoreOpStore,
		ClearValue: gputypes.Color{R: float64(clear.R), G: float64(clear.G), B: float64(clear.B), A: float64(clear.A)},
	}
	if r.msaa != nil {
		attach.View = r.msaa.view
		attach.ResolveTarget = r.resolve.view
	}
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label:            "frame_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{attach},
	})
	for _, d := range draws {
		rp.SetPipeline(d.pipe.pipeline)
		if d.group != nil {
			rp.SetBindGroup(0, d.group, nil)
		}
		rp.SetVertexBuffer(0, d.verts, 0)
		rp.Draw(d.nverts, 1, 0, 0)
	}
	rp.End()

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.resolve.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(r.resolve.tex, r.staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{BytesPerRow: r.pitch, RowsPerImage: r.height},
		TextureBase:  hal.ImageCopyTexture{Texture: r.resolve.tex},
		Size:         hal.Extent3D{Width: r.width, Height: r.height, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.resolve.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmd, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer device.FreeCommandBuffer(cmd)

	if _, err := r.dev.queue.Submit([]hal.CommandBuffer{cmd}); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	if err := device.WaitIdle(); err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	slogger().Debug("gpu frame", "draws", len(draws), "width", r.width, "height", r.height)
	return r.readback(dst)
}

// readback copies the staging buffer into dst, dropping row padding.
func (r *Renderer) readback(dst *image.Frame) error {
	size := uint64(r.pitch) * uint64(r.height)
	m, err := r.dev.device.MapBuffer(r.staging, 0, size)
	if err != nil {
		return fmt.Errorf("map staging buffer: %w", err)
	}
	defer func() { _ = r.dev.device.UnmapBuffer(r.staging) }()
	data := unsafe.Slice((*byte)(m.Ptr), size)
	for y := range int(r.height) {
		src := data[y*int(r.pitch):]
		row := dst.Row(y)
		for x := range row {
			o := x * 4
			row[x] = image.RGBA{
				R: float32(src[o]) / 255,
				G: float32(src[o+1]) / 255,
				B: float32(src[o+2]) / 255,
				A: float32(src[o+3]) / 255,
			}
		}
	}
	return nil
}

// Close releases the renderer's GPU resources. The device stays open.
func (r *Renderer) Close() {
	if r.dev == nil || r.dev.device == nil {
		return
	}
	device := r.dev.device
	for k, p := range r.pipelines {
		p.destroy(device)
		delete(r.pipelines, k)
	}
	for _, s := range []*hal.Sampler{&r.nearest, &r.linear} {
		if *s != nil {
			device.DestroySampler(*s)
			*s = nil
		}
	}
	if r.staging != nil {
		device.DestroyBuffer(r.staging)
		r.staging = nil
	}
	for _, t := range []**texture{&r.msaa, &r.resolve} {
		if *t != nil {
			(*t).destroy(device)
			*t = nil
		}
	}
}
