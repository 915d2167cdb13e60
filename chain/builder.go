// Package chain builds and evaluates post-processing graphs.
//
// A graph is an arena of nodes addressed by NodeID. Leaf nodes render
// scene layers or fill a colour; inner nodes apply a named effect, mask one
// node by another, or render their subtree multisampled. Graphs are
// validated once by Build and are immutable afterwards: reconfiguring means
// building a new Chain.
//
//	b := chain.NewBuilder()
//	world := b.LayerRange(0, 10)
//	glow := b.Effect("bloom", chain.Params{"radius": {6}}, world)
//	ui := b.Layers(10)
//	c, err := b.Build(glow, ui)
package chain

import (
	"errors"
	"math"

	"github.com/gogpu/g2d/internal/filter"
)

// Configuration errors. All of them are reported by Build, before any frame
// is rendered.
var (
	// ErrCycle is returned when a node depends on itself.
	ErrCycle = errors.New("chain: dependency cycle")

	// ErrMissingNode is returned when a node refers to a node that does not exist.
	ErrMissingNode = errors.New("chain: missing node")

	// ErrUnknownEffect is returned for effect names with no definition.
	ErrUnknownEffect = filter.ErrUnknownEffect

	// ErrBadParam is returned for unknown, malformed or out-of-range parameters.
	ErrBadParam = filter.ErrBadParam

	// ErrNoOutput is returned when Build is called without output nodes.
	ErrNoOutput = errors.New("chain: no output nodes")
)

// NodeID addresses a node inside a Builder.
type NodeID int

// Params holds named numeric parameters of an effect.
type Params = filter.Params

// MaskMode selects how a mask node combines its inputs.
type MaskMode uint8

const (
	// MaskInside keeps paint where the mask is opaque: paint * mask.a.
	MaskInside MaskMode = iota
	// MaskOutside keeps paint where the mask is transparent: paint * (1 - mask.a).
	MaskOutside
	// MaskLuminance weights paint by the mask's premultiplied luminance.
	MaskLuminance
)

var maskModeNames = [...]string{
	MaskInside:    "inside",
	MaskOutside:   "outside",
	MaskLuminance: "luminance",
}

func (m MaskMode) String() string {
	if int(m) < len(maskModeNames) {
		return maskModeNames[m]
	}
	return "unknown"
}

type kind uint8

const (
	kindLayers kind = iota
	kindRange
	kindFill
	kindEffect
	kindMask
	kindMultisample
)

type node struct {
	kind    kind
	layers  []int
	lo, hi  int
	color   [4]float32
	effect  string
	params  Params
	inputs  []NodeID
	mode    MaskMode
	samples int
}

// Builder accumulates nodes. Node methods never fail; every check runs in
// Build so a whole graph can be described before it is validated.
type Builder struct {
	nodes []node
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) add(n node) NodeID {
	b.nodes = append(b.nodes, n)
	return NodeID(len(b.nodes) - 1)
}

// Layers renders the listed layers in ascending id order. Ids with no
// layer are skipped at render time.
func (b *Builder) Layers(ids ...int) NodeID {
	return b.add(node{kind: kindLayers, layers: append([]int(nil), ids...)})
}

// LayerRange renders every existing layer with start <= id < stop.
func (b *Builder) LayerRange(start, stop int) NodeID {
	return b.add(node{kind: kindRange, lo: start, hi: stop})
}

// AllLayers renders every existing layer.
func (b *Builder) AllLayers() NodeID {
	return b.LayerRange(math.MinInt, math.MaxInt)
}

// Fill produces a frame of one straight-alpha colour.
func (b *Builder) Fill(c [4]float32) NodeID {
	return b.add(node{kind: kindFill, color: c})
}

// Effect applies the named effect to input. Parameters not given take
// their defaults.
func (b *Builder) Effect(name string, params Params, input NodeID) NodeID {
	return b.add(node{kind: kindEffect, effect: name, params: params.Clone(), inputs: []NodeID{input}})
}

// Mask multiplies paint by the alpha (or luminance) of mask.
func (b *Builder) Mask(paint, mask NodeID, mode MaskMode) NodeID {
	return b.add(node{kind: kindMask, inputs: []NodeID{paint, mask}, mode: mode})
}

// Multisample renders the layers under input with the given sample count
// and resolves them before they reach input. Resolution averages the
// samples of each pixel and leaves pixels whose average alpha is zero
// untouched.
func (b *Builder) Multisample(samples int, input NodeID) NodeID {
	return b.add(node{kind: kindMultisample, samples: samples, inputs: []NodeID{input}})
}

// Len returns the number of nodes added so far.
func (b *Builder) Len() int { return len(b.nodes) }
