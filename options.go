package g2d

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/g2d/atlas"
	"github.com/gogpu/g2d/chain"
	"github.com/gogpu/g2d/text"
)

// Backend selects where a scene rasterises.
type Backend uint8

const (
	// BackendCPU renders with the software rasteriser.
	BackendCPU Backend = iota

	// BackendGPU renders through the WebGPU HAL. NewScene fails when no
	// device can be opened.
	BackendGPU

	// BackendAuto tries the GPU and falls back to the CPU.
	BackendAuto
)

var backendNames = [...]string{"cpu", "gpu", "auto"}

func (b Backend) String() string {
	if int(b) < len(backendNames) {
		return backendNames[b]
	}
	return "unknown"
}

// SceneOption configures a Scene during creation.
//
// Example:
//
//	// Software rendering with 4x multisampling
//	s, err := g2d.NewScene(800, 600, g2d.WithSampleCount(4))
//
//	// Images loaded from a directory, rendered on the GPU when available
//	s, err := g2d.NewScene(800, 600,
//	    g2d.WithLoader(atlas.DirLoader("images")),
//	    g2d.WithBackend(g2d.BackendAuto))
type SceneOption func(*sceneOptions)

type sceneOptions struct {
	background RGBA
	samples    int
	backend    Backend
	atlas      *atlas.Atlas
	loader     atlas.Loader
	provider   gpucontext.DeviceProvider
	chain      *chain.Chain
	font       *text.Font
}

func defaultOptions() sceneOptions {
	return sceneOptions{
		background: Black,
		samples:    1,
		backend:    BackendCPU,
	}
}

// WithBackground sets the colour the frame is cleared to.
func WithBackground(c RGBA) SceneOption {
	return func(o *sceneOptions) {
		o.background = c
	}
}

// WithSampleCount sets the multisample count of the default chain.
// The software backend supports 1, 2, 4 and 8 samples, the GPU backend 1
// and 4.
func WithSampleCount(n int) SceneOption {
	return func(o *sceneOptions) {
		o.samples = n
	}
}

// WithBackend selects the rasteriser.
func WithBackend(b Backend) SceneOption {
	return func(o *sceneOptions) {
		o.backend = b
	}
}

// WithAtlas shares an existing atlas with the scene.
func WithAtlas(a *atlas.Atlas) SceneOption {
	return func(o *sceneOptions) {
		o.atlas = a
	}
}

// WithLoader sets how the scene's atlas loads images by name. Ignored when
// WithAtlas is given.
func WithLoader(l atlas.Loader) SceneOption {
	return func(o *sceneOptions) {
		o.loader = l
	}
}

// WithDeviceProvider renders on a device owned by the host application,
// such as a gogpu window. Implies BackendGPU unless a backend is set
// afterwards.
func WithDeviceProvider(p gpucontext.DeviceProvider) SceneOption {
	return func(o *sceneOptions) {
		o.provider = p
		o.backend = BackendGPU
	}
}

// WithChain sets the initial post-processing chain. See Scene.SetChain.
func WithChain(c *chain.Chain) SceneOption {
	return func(o *sceneOptions) {
		o.chain = c
	}
}

// WithFont sets the font of labels. The default is Go Regular.
func WithFont(f *text.Font) SceneOption {
	return func(o *sceneOptions) {
		o.font = f
	}
}
