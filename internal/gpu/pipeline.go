package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/g2d/internal/geom"
	"github.com/gogpu/g2d/internal/shade"
)

// TargetFormat is the colour format of every render target.
const TargetFormat = gputypes.TextureFormatRGBA8Unorm

// lutEntries is the number of tile rectangles in the LUT uniform.
const lutEntries = 256

// lutHeader is the number of words before the first rectangle.
const lutHeader = 4

// lutSize is the byte size of the LUT uniform: the header and two vec4
// per rectangle.
const lutSize = (lutHeader + lutEntries*8) * 4

// pipeline is one compiled program.
type pipeline struct {
	kind     shade.Kind
	shader   hal.ShaderModule
	layout   hal.BindGroupLayout // nil for solid
	pipeLay  hal.PipelineLayout
	pipeline hal.RenderPipeline
}

// vertexLayout describes geom.Vertex: position, uv, premultiplied colour.
func vertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: geom.VertexSize,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},  // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},  // uv
				{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2}, // color
			},
		},
	}
}

func bindingEntries(k shade.Kind) []gputypes.BindGroupLayoutEntry {
	if k == shade.KindSolid {
		return nil
	}
	entries := []gputypes.BindGroupLayoutEntry{
		{
			Binding:    0,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		},
		{
			Binding:    1,
			Visibility: gputypes.ShaderStageFragment,
			Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
		},
	}
	if k == shade.KindTile {
		entries = append(entries,
			gputypes.BindGroupLayoutEntry{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeUint,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			gputypes.BindGroupLayoutEntry{
				Binding:    3,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		)
	}
	return entries
}

// newPipeline validates and compiles the program k for the given sample
// count, with premultiplied source-over blending.
func newPipeline(device hal.Device, k shade.Kind, samples uint32) (*pipeline, error) {
	if err := ValidateShader(k); err != nil {
		return nil, err
	}
	src, err := ShaderSource(k)
	if err != nil {
		return nil, err
	}
	p := &pipeline{kind: k}
	ok := false
	defer func() {
		if !ok {
			p.destroy(device)
		}
	}()

	p.shader, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  k.String() + "_shader",
		Source: hal.ShaderSource{WGSL: src},
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s shader: %w", k, err)
	}

	var layouts []hal.BindGroupLayout
	if entries := bindingEntries(k); entries != nil {
		p.layout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label:   k.String() + "_bind_layout",
			Entries: entries,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s bind layout: %w", k, err)
		}
		layouts = append(layouts, p.layout)
	}

	p.pipeLay, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            k.String() + "_pipe_layout",
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s pipeline layout: %w", k, err)
	}

	premulBlend := gputypes.BlendStatePremultiplied()
	p.pipeline, err = device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  k.String() + "_pipeline",
		Layout: p.pipeLay,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    vertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    TargetFormat,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: samples,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s pipeline: %w", k, err)
	}
	ok = true
	slogger().Info("gpu pipeline created", "program", k.String(), "samples", samples)
	return p, nil
}

// destroy releases the pipeline's resources in reverse creation order.
func (p *pipeline) destroy(device hal.Device) {
	if p.pipeline != nil {
		device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLay != nil {
		device.DestroyPipelineLayout(p.pipeLay)
		p.pipeLay = nil
	}
	if p.layout != nil {
		device.DestroyBindGroupLayout(p.layout)
		p.layout = nil
	}
	if p.shader != nil {
		device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}
