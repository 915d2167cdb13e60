package filter

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/gogpu/g2d/internal/blend"
	"github.com/gogpu/g2d/internal/image"
)

// Configuration errors.
var (
	// ErrUnknownEffect is returned for effect names with no definition.
	ErrUnknownEffect = errors.New("filter: unknown effect")

	// ErrBadParam is returned for unknown, malformed or out-of-range parameters.
	ErrBadParam = errors.New("filter: bad parameter")
)

// Params holds named numeric parameters. Scalars are one-element slices.
type Params map[string][]float32

// Scalar returns the first component of the named parameter, or 0.
func (p Params) Scalar(name string) float32 {
	if v := p[name]; len(v) > 0 {
		return v[0]
	}
	return 0
}

// Clone returns a deep copy of p.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = slices.Clone(v)
	}
	return out
}

// Env carries per-frame state to effects.
type Env struct {
	// DT is the time in seconds since the previous frame.
	DT float32
}

// Effect transforms one frame into another. src and dst have the same size
// and never alias.
type Effect interface {
	Apply(src, dst *image.Frame, env Env) error
}

// Compositor is implemented by effects whose output must be composited onto
// its consumer with a mode other than source-over.
type Compositor interface {
	Mode() blend.Mode
}

// Param describes one effect parameter.
type Param struct {
	Name    string
	Default []float32
	Min     float32
	Max     float32
	// Open makes Min exclusive.
	Open bool
}

func (d Param) check(v []float32) error {
	if len(v) != len(d.Default) {
		return fmt.Errorf("%w: %s wants %d values, got %d", ErrBadParam, d.Name, len(d.Default), len(v))
	}
	for _, x := range v {
		f := float64(x)
		switch {
		case math.IsNaN(f) || math.IsInf(f, 0):
			return fmt.Errorf("%w: %s = %v", ErrBadParam, d.Name, x)
		case x < d.Min || (d.Open && x == d.Min) || x > d.Max:
			return fmt.Errorf("%w: %s = %v out of range", ErrBadParam, d.Name, x)
		}
	}
	return nil
}

// Definition describes a named effect.
type Definition struct {
	Name   string
	Params []Param
	build  func(p Params) Effect
}

// Defaults returns the default parameter set.
func (d Definition) Defaults() Params {
	p := make(Params, len(d.Params))
	for _, par := range d.Params {
		p[par.Name] = slices.Clone(par.Default)
	}
	return p
}

// Resolve merges p over the defaults and validates the result.
func (d Definition) Resolve(p Params) (Params, error) {
	out := d.Defaults()
	for name, v := range p {
		i := slices.IndexFunc(d.Params, func(par Param) bool { return par.Name == name })
		if i < 0 {
			return nil, fmt.Errorf("%w: %s has no parameter %q", ErrBadParam, d.Name, name)
		}
		if err := d.Params[i].check(v); err != nil {
			return nil, fmt.Errorf("%s: %w", d.Name, err)
		}
		out[name] = slices.Clone(v)
	}
	return out, nil
}

const inf = float32(math.MaxFloat32)

var registry = map[string]Definition{}

func register(d Definition) { registry[d.Name] = d }

// Lookup returns the definition of a named effect.
func Lookup(name string) (Definition, bool) {
	d, ok := registry[name]
	return d, ok
}

// Names returns the registered effect names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Validate checks a configuration without building the effect.
func Validate(name string, p Params) error {
	d, ok := registry[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEffect, name)
	}
	_, err := d.Resolve(p)
	return err
}

// New builds the named effect. Unspecified parameters take their defaults.
func New(name string, p Params) (Effect, error) {
	d, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEffect, name)
	}
	resolved, err := d.Resolve(p)
	if err != nil {
		return nil, err
	}
	return d.build(resolved), nil
}

func init() {
	register(Definition{
		Name:   "blur",
		Params: []Param{{Name: "radius", Default: []float32{10}, Min: 0, Max: inf}},
		build:  func(p Params) Effect { return NewBlurFilter(p.Scalar("radius")) },
	})
	register(Definition{
		Name: "bloom",
		Params: []Param{
			{Name: "radius", Default: []float32{10}, Min: 0, Max: inf},
			{Name: "gamma", Default: []float32{1}, Min: 0, Max: inf, Open: true},
			{Name: "intensity", Default: []float32{0.5}, Min: 0, Max: inf},
		},
		build: func(p Params) Effect {
			return &BloomFilter{Radius: p.Scalar("radius"), Gamma: p.Scalar("gamma"), Intensity: p.Scalar("intensity")}
		},
	})
	register(Definition{
		Name: "pixellate",
		Params: []Param{
			{Name: "pxsize", Default: []float32{10}, Min: 1, Max: 4096},
			{Name: "antialias", Default: []float32{1}, Min: 0, Max: 1},
		},
		build: func(p Params) Effect {
			return &PixellateFilter{Size: int(math.Round(float64(p.Scalar("pxsize")))), Antialias: p.Scalar("antialias")}
		},
	})
	register(Definition{
		Name: "dropshadow",
		Params: []Param{
			{Name: "radius", Default: []float32{10}, Min: 0, Max: inf},
			{Name: "offset", Default: []float32{1, 1}, Min: -inf, Max: inf},
			{Name: "opacity", Default: []float32{1}, Min: 0, Max: 1},
		},
		build: func(p Params) Effect {
			off := p["offset"]
			return &DropShadowFilter{Radius: p.Scalar("radius"), OffsetX: off[0], OffsetY: off[1], Opacity: p.Scalar("opacity")}
		},
	})
	register(Definition{
		Name: "posterize",
		Params: []Param{
			{Name: "levels", Default: []float32{2}, Min: 2, Max: 256},
			{Name: "gamma", Default: []float32{0.7}, Min: 0, Max: inf, Open: true},
		},
		build: func(p Params) Effect {
			return &PosterizeFilter{Levels: p.Scalar("levels"), Gamma: p.Scalar("gamma")}
		},
	})
	register(Definition{
		Name: "colormatrix",
		Params: []Param{{Name: "matrix", Default: []float32{
			1, 0, 0, 0,
			0, 1, 0, 0,
			0, 0, 1, 0,
			0, 0, 0, 1,
		}, Min: -inf, Max: inf}},
		build: func(p Params) Effect {
			var m [16]float32
			copy(m[:], p["matrix"])
			return NewColorMatrixFilter(m)
		},
	})
	register(Definition{
		Name:   "greyscale",
		Params: []Param{{Name: "amount", Default: []float32{1}, Min: 0, Max: 1}},
		build:  func(p Params) Effect { return NewGreyscaleFilter(p.Scalar("amount")) },
	})
	register(Definition{
		Name:   "sepia",
		Params: []Param{{Name: "amount", Default: []float32{1}, Min: 0, Max: 1}},
		build:  func(p Params) Effect { return NewSepiaFilter(p.Scalar("amount")) },
	})
	register(Definition{
		Name:   "outline",
		Params: []Param{{Name: "color", Default: []float32{0, 0, 0, 1}, Min: 0, Max: 1}},
		build: func(p Params) Effect {
			return &OutlineFilter{Color: image.FromArray([4]float32(p["color"]))}
		},
	})
	register(Definition{
		Name:   "punch",
		Params: []Param{{Name: "factor", Default: []float32{0.9}, Min: 0, Max: inf, Open: true}},
		build:  func(p Params) Effect { return &PunchFilter{Factor: p.Scalar("factor")} },
	})
	register(Definition{
		Name: "trails",
		Params: []Param{
			{Name: "fade", Default: []float32{0.9}, Min: 0, Max: 1},
			{Name: "alpha", Default: []float32{1}, Min: 0, Max: 1},
		},
		build: func(p Params) Effect { return &TrailsFilter{Fade: p.Scalar("fade"), Alpha: p.Scalar("alpha")} },
	})
	register(Definition{
		Name:  "additive",
		build: func(Params) Effect { return AdditiveFilter{} },
	})
}
