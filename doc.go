// Package g2d is a batched 2D game renderer.
//
// # Overview
//
// A Scene holds numbered layers. Each layer keeps its primitives in
// per-kind batches of fixed-layout instance records: sprites, nine-patches,
// filled and stroked shapes, text labels, particle groups and tile maps.
// Every frame the records are expanded into triangles through the camera
// projection, shaded (atlas sampling, glyph coverage, tile lookup) and
// composited layer by layer, lowest id first, through a post-processing
// chain.
//
// # Quick Start
//
//	s, err := g2d.NewScene(640, 480, g2d.WithLoader(atlas.DirLoader("images")))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	ship, _ := s.Layer(1).AddSprite("ship", 320, 240)
//	ship.SetAngle(math.Pi / 4)
//	s.Layer(0).AddCircle(320, 240, 50, g2d.Filled(g2d.Blue))
//	s.Layer(1).SetEffect("dropshadow", g2d.Params{"radius": {4}})
//
//	s.Update(1.0 / 60)
//	if err := s.Render(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//	s.SavePNG("frame.png")
//
// # Rendering Backends
//
// The software rasterizer is the default and needs no GPU. WithBackend
// selects the WebGPU HAL instead; the HAL backends available are those
// whose packages are imported, for example
// github.com/gogpu/wgpu/hal/vulkan. WithDeviceProvider renders on a
// device owned by the host application.
//
// # Post-Processing
//
// Layers accept a single effect with Layer.SetEffect. Whole-frame graphs
// are built with package chain and installed with Scene.SetChain; chain
// nodes draw layer sets, apply effects, mask one node by another and
// resolve multisampled layers.
//
// # Logging
//
// g2d is silent by default. SetLogger enables structured logging through
// log/slog for the scene and its GPU backend.
package g2d
