package gpu

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/naga"

	"github.com/gogpu/g2d/internal/shade"
)

// Embedded WGSL sources. Every program is the passthrough vertex stage
// followed by one fragment stage.

//go:embed shaders/passthrough.wgsl
var passthroughShaderSource string

//go:embed shaders/solid.wgsl
var solidShaderSource string

//go:embed shaders/textured.wgsl
var texturedShaderSource string

//go:embed shaders/glyph.wgsl
var glyphShaderSource string

//go:embed shaders/tile.wgsl
var tileShaderSource string

// ErrShader is returned when an embedded shader fails validation.
var ErrShader = errors.New("gpu: invalid shader")

var fragmentSources = map[shade.Kind]string{
	shade.KindSolid:    solidShaderSource,
	shade.KindTextured: texturedShaderSource,
	shade.KindGlyph:    glyphShaderSource,
	shade.KindTile:     tileShaderSource,
}

// ShaderSource returns the complete WGSL module of a program.
func ShaderSource(k shade.Kind) (string, error) {
	frag, ok := fragmentSources[k]
	if !ok {
		return "", fmt.Errorf("%w: no program %s", ErrShader, k)
	}
	return passthroughShaderSource + "\n" + frag, nil
}

var (
	validateMu sync.Mutex
	validated  = map[shade.Kind]error{}
)

// ValidateShader parses, lowers and validates a program's WGSL with naga.
// Results are cached.
func ValidateShader(k shade.Kind) error {
	validateMu.Lock()
	defer validateMu.Unlock()
	if err, ok := validated[k]; ok {
		return err
	}
	err := validateSource(k)
	validated[k] = err
	return err
}

func validateSource(k shade.Kind) error {
	src, err := ShaderSource(k)
	if err != nil {
		return err
	}
	ast, err := naga.Parse(src)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrShader, k, err)
	}
	module, err := naga.LowerWithSource(ast, src)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrShader, k, err)
	}
	issues, err := naga.Validate(module)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrShader, k, err)
	}
	if len(issues) > 0 {
		return fmt.Errorf("%w: %s: %s", ErrShader, k, issues[0].Message)
	}
	return nil
}
