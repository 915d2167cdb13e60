// Command g2ddemo renders a scene with every primitive kind and writes it
// to a PNG file.
package main

import (
	"context"
	"flag"
	"fmt"
	stdimage "image"
	"image/color"
	"log/slog"
	"math"
	"os"

	"github.com/gogpu/g2d"
	"github.com/gogpu/g2d/atlas"
	"github.com/gogpu/g2d/chain"
	"github.com/gogpu/g2d/particles"
	"github.com/gogpu/g2d/text"
)

func main() {
	var (
		width   = flag.Int("width", 800, "image width")
		height  = flag.Int("height", 600, "image height")
		output  = flag.String("output", "demo.png", "output file")
		backend = flag.String("backend", "cpu", "rasterizer: cpu, gpu or auto")
		samples = flag.Int("samples", 4, "multisample count")
		images  = flag.String("images", "", "directory to load images from; built-in images when empty")
		bloom   = flag.Bool("bloom", false, "apply bloom to the particle layer")
		frames  = flag.Int("frames", 30, "frames to simulate before the snapshot")
		verbose = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	g2d.SetLogger(logger)

	b, err := parseBackend(*backend)
	if err != nil {
		logger.Error("bad flag", "err", err)
		os.Exit(2)
	}
	loader := atlas.MapLoader(builtinImages())
	if *images != "" {
		loader = atlas.DirLoader(*images)
	}

	s, err := g2d.NewScene(*width, *height,
		g2d.WithBackend(b),
		g2d.WithSampleCount(*samples),
		g2d.WithLoader(loader),
		g2d.WithBackground(g2d.Hex("#1d2330")),
	)
	if err != nil {
		logger.Error("create scene", "err", err)
		os.Exit(1)
	}
	defer s.Close()

	if err := populate(s, *samples, *bloom); err != nil {
		logger.Error("build scene", "err", err)
		os.Exit(1)
	}
	for range *frames {
		s.Update(1.0 / 60)
	}
	if err := s.Render(context.Background()); err != nil {
		logger.Error("render", "err", err)
		os.Exit(1)
	}
	if err := s.SavePNG(*output); err != nil {
		logger.Error("save", "err", err)
		os.Exit(1)
	}
	w, h := s.Size()
	logger.Info("demo saved", "file", *output, "width", w, "height", h, "rasterizer", s.Rasterizer())
}

func parseBackend(s string) (g2d.Backend, error) {
	for _, b := range []g2d.Backend{g2d.BackendCPU, g2d.BackendGPU, g2d.BackendAuto} {
		if b.String() == s {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unknown backend %q", s)
}

// populate fills the scene: a tiled floor on layer 0, shapes and sprites
// on layer 1, particles on layer 2 and labels on layer 3.
func populate(s *g2d.Scene, samples int, bloom bool) error {
	w, h := s.Size()

	floor, err := s.Layer(0).AddTileMap([]string{"grass", "stone"}, 0, float32(h)-128)
	if err != nil {
		return err
	}
	cols := int(math.Ceil(float64(w) / 16))
	if err := floor.FillRect([]string{"grass", "stone"}, 0, cols, 0, 8); err != nil {
		return err
	}
	if err := floor.Line("stone", 0, 0, cols, 0); err != nil {
		return err
	}

	shapes := s.Layer(1)
	if _, err := shapes.AddCircle(150, 150, 60, g2d.Filled(g2d.RGBA2(1, 0.3, 0.3, 0.8))); err != nil {
		return err
	}
	if _, err := shapes.AddCircle(200, 150, 60, g2d.Filled(g2d.RGBA2(0.3, 1, 0.3, 0.8))); err != nil {
		return err
	}
	if _, err := shapes.AddCircle(175, 200, 60, g2d.Filled(g2d.RGBA2(0.3, 0.3, 1, 0.8))); err != nil {
		return err
	}
	if _, err := shapes.AddRect(410, 140, 120, 80, g2d.Stroked(g2d.White, 4)); err != nil {
		return err
	}
	if _, err := shapes.AddStar(620, 160, 5, 25, 60, g2d.Filled(g2d.Hex("#ffcc00"))); err != nil {
		return err
	}
	wave := make([]g2d.Vec2, 0, 64)
	for i := range 64 {
		x := float32(40 + i*11)
		wave = append(wave, g2d.V(x, 330+30*float32(math.Sin(float64(i)/5))))
	}
	if _, err := shapes.AddLine(wave, 3, g2d.Cyan); err != nil {
		return err
	}

	// A tilted row of crates.
	var crates []g2d.Transformable
	for i := range 4 {
		c, err := shapes.AddSprite("crate", float32(i*40)-60, 0)
		if err != nil {
			return err
		}
		crates = append(crates, c)
	}
	group, err := g2d.NewGroup(400, 260, crates...)
	if err != nil {
		return err
	}
	group.SetAngle(-0.2)
	if _, err := shapes.AddNinePatch("panel", 660, 300, 180, 90, g2d.UniformCuts(6)); err != nil {
		return err
	}

	sparks := s.Layer(2)
	p := particles.DefaultParams()
	p.MaxAge = 2
	p.Gravity = g2d.V(0, 120)
	p.Drag = 0.8
	pg, err := sparks.AddParticleGroup("spark", p)
	if err != nil {
		return err
	}
	if err := pg.AddColorStop(0, [4]float32{1, 0.9, 0.5, 1}); err != nil {
		return err
	}
	if err := pg.AddColorStop(2, [4]float32{1, 0.2, 0, 0}); err != nil {
		return err
	}
	o := particles.DefaultEmitOptions()
	o.Pos = g2d.V(float32(w)/2, float32(h)/2)
	o.Vel = g2d.V(0, -150)
	o.VelSpread = 80
	o.Size = 4
	o.SizeSpread = 1
	if err := pg.Emit(300, o); err != nil {
		return err
	}
	if bloom {
		if err := sparks.SetEffect("bloom", g2d.Params{"radius": {8}, "intensity": {0.8}}); err != nil {
			return err
		}
	}

	opts := text.DefaultOptions()
	opts.Size = 28
	opts.Align = text.AlignCenter
	title, err := s.Layer(3).AddLabel("g2d demo", float32(w)/2, 48, opts)
	if err != nil {
		return err
	}
	title.SetColor(g2d.White)

	// The title is drawn without multisampling, on top of everything else.
	spec := []chain.NodeSpec{
		{ID: "world", Kind: "range", Range: [2]int{0, 3}},
		{ID: "aa", Kind: "multisample", Samples: samples, Inputs: []string{"world"}},
		{ID: "title", Kind: "layers", Layers: []int{3}},
	}
	c, err := chain.FromSpecs(spec, "aa", "title")
	if err != nil {
		return err
	}
	s.SetChain(c)
	return nil
}

// builtinImages draws the demo's images so it runs without assets.
func builtinImages() map[string]stdimage.Image {
	return map[string]stdimage.Image{
		"grass": checker(16, color.NRGBA{60, 140, 60, 255}, color.NRGBA{70, 160, 70, 255}),
		"stone": checker(16, color.NRGBA{110, 110, 120, 255}, color.NRGBA{130, 130, 140, 255}),
		"crate": checker(32, color.NRGBA{150, 100, 50, 255}, color.NRGBA{170, 120, 60, 255}),
		"panel": framed(24, color.NRGBA{230, 230, 240, 255}, color.NRGBA{60, 70, 90, 230}),
		"spark": disc(8),
	}
}

func checker(n int, a, b color.NRGBA) stdimage.Image {
	img := stdimage.NewNRGBA(stdimage.Rect(0, 0, n, n))
	for y := range n {
		for x := range n {
			c := a
			if (x/4+y/4)%2 == 1 {
				c = b
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func framed(n int, border, fill color.NRGBA) stdimage.Image {
	img := stdimage.NewNRGBA(stdimage.Rect(0, 0, n, n))
	for y := range n {
		for x := range n {
			c := fill
			if x < 3 || y < 3 || x >= n-3 || y >= n-3 {
				c = border
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func disc(n int) stdimage.Image {
	img := stdimage.NewNRGBA(stdimage.Rect(0, 0, n, n))
	r := float64(n) / 2
	for y := range n {
		for x := range n {
			d := math.Hypot(float64(x)+0.5-r, float64(y)+0.5-r) / r
			a := uint8(255 * math.Max(0, 1-d))
			img.SetNRGBA(x, y, color.NRGBA{255, 255, 255, a})
		}
	}
	return img
}
