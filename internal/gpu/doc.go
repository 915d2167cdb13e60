// Package gpu is the hardware backend: it runs the fragment programs of
// package shade as WGSL render pipelines on a gogpu/wgpu HAL device.
//
// Geometry expansion happens host-side in package geom, so every pipeline
// shares one vertex layout and a passthrough vertex stage. A frame is
// rendered into an offscreen, optionally multisampled RGBA8 target,
// resolved, copied to a staging buffer and read back into an image.Frame.
//
//	dev, err := gpu.Open()
//	r, err := gpu.NewRenderer(dev, 640, 480, 4)
//	err = r.Render(ctx, calls, image.Transparent, frame)
//
// Backends register themselves when imported, for example
// github.com/gogpu/wgpu/hal/vulkan. Open tries every registered backend.
package gpu
