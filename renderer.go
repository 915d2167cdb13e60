package g2d

import (
	"context"
	"fmt"

	"github.com/gogpu/g2d/internal/blend"
	"github.com/gogpu/g2d/internal/gpu"
	"github.com/gogpu/g2d/internal/image"
	"github.com/gogpu/g2d/internal/raster"
	"github.com/gogpu/g2d/internal/shade"
)

// rasterizer turns draw calls into a frame. draw replaces dst with the
// resolved result of drawing calls, in order, over transparent black.
type rasterizer interface {
	draw(ctx context.Context, calls []shade.Call, samples int, dst *image.Frame) error
	name() string
	close()
}

// softwareRasterizer runs the fragment programs on the CPU, one target
// per sample count.
type softwareRasterizer struct {
	width, height int
	targets       map[int]*raster.Target
}

func newSoftwareRasterizer(width, height int) *softwareRasterizer {
	return &softwareRasterizer{width: width, height: height, targets: make(map[int]*raster.Target)}
}

func (r *softwareRasterizer) name() string { return "software" }

func (r *softwareRasterizer) draw(ctx context.Context, calls []shade.Call, samples int, dst *image.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t, ok := r.targets[samples]
	if !ok {
		var err error
		t, err = raster.NewTarget(r.width, r.height, samples)
		if err != nil {
			return err
		}
		r.targets[samples] = t
	}
	t.Clear(image.Transparent)
	t.DrawCalls(calls, blend.ModeSourceOver)
	dst.Clear()
	return t.Resolve(dst)
}

func (r *softwareRasterizer) close() { clear(r.targets) }

// gpuRasterizer renders through the HAL. The GPU backend supports single
// sampling and 4x MSAA; other counts above one use 4x.
type gpuRasterizer struct {
	dev           *gpu.Device
	width, height int
	renderers     map[int]*gpu.Renderer
}

func (r *gpuRasterizer) name() string { return "gpu:" + r.dev.Name() }

func (r *gpuRasterizer) draw(ctx context.Context, calls []shade.Call, samples int, dst *image.Frame) error {
	if samples > 1 {
		samples = 4
	}
	rr, ok := r.renderers[samples]
	if !ok {
		var err error
		rr, err = gpu.NewRenderer(r.dev, r.width, r.height, samples)
		if err != nil {
			return err
		}
		r.renderers[samples] = rr
	}
	return rr.Render(ctx, calls, image.Transparent, dst)
}

func (r *gpuRasterizer) close() {
	for _, rr := range r.renderers {
		rr.Close()
	}
	clear(r.renderers)
	r.dev.Close()
}

// newRasterizer picks the rasterizer for the configured backend.
func newRasterizer(o *sceneOptions, width, height int) (rasterizer, error) {
	if o.backend == BackendCPU {
		return newSoftwareRasterizer(width, height), nil
	}
	r, err := openGPU(o, width, height)
	if err == nil {
		Logger().Info("g2d: using GPU rasterizer", "adapter", r.dev.Name(), "software", r.dev.Software())
		return r, nil
	}
	if o.backend == BackendGPU {
		return nil, err
	}
	Logger().Warn("g2d: GPU unavailable, falling back to software rasterizer", "err", err)
	return newSoftwareRasterizer(width, height), nil
}

func openGPU(o *sceneOptions, width, height int) (*gpuRasterizer, error) {
	var (
		dev *gpu.Device
		err error
	)
	if o.provider != nil {
		dev, err = gpu.FromProvider(o.provider)
	} else {
		dev, err = gpu.Open()
	}
	if err != nil {
		return nil, fmt.Errorf("g2d: open gpu: %w", err)
	}
	r := &gpuRasterizer{dev: dev, width: width, height: height, renderers: make(map[int]*gpu.Renderer)}
	samples := min(o.samples, 4)
	if samples > 1 {
		samples = 4
	}
	rr, err := gpu.NewRenderer(dev, width, height, samples)
	if err != nil {
		dev.Close()
		return nil, fmt.Errorf("g2d: create gpu renderer: %w", err)
	}
	r.renderers[samples] = rr
	return r, nil
}
