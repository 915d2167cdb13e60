package chain

import (
	"errors"
	"fmt"
)

// ErrDuplicateNode is returned when two node specs share an id.
var ErrDuplicateNode = errors.New("chain: duplicate node id")

// NodeSpec is the declarative form of one node. Nodes refer to each other
// by ID, so specs may be listed in any order.
//
// Kind is one of "layers", "range", "fill", "effect", "mask" or
// "multisample". Fields not used by a kind are ignored.
type NodeSpec struct {
	ID      string
	Kind    string
	Layers  []int      // layers
	Range   [2]int     // range: start, stop
	Color   [4]float32 // fill
	Effect  string     // effect
	Params  Params     // effect
	Inputs  []string   // effect, multisample: one; mask: paint, mask
	Mode    string     // mask: "inside", "outside" or "luminance"
	Samples int        // multisample
}

// FromSpecs builds a Chain from declarative node specs. outputs names the
// nodes composited onto the final frame, in order.
func FromSpecs(specs []NodeSpec, outputs ...string) (*Chain, error) {
	b := NewBuilder()
	ids := make(map[string]NodeID, len(specs))
	for i, s := range specs {
		if _, dup := ids[s.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateNode, s.ID)
		}
		ids[s.ID] = NodeID(i)
	}
	resolve := func(from, name string) (NodeID, error) {
		id, ok := ids[name]
		if !ok {
			return 0, fmt.Errorf("%w: %q refers to %q", ErrMissingNode, from, name)
		}
		return id, nil
	}
	inputs := func(s NodeSpec, want int) ([]NodeID, error) {
		if len(s.Inputs) != want {
			return nil, fmt.Errorf("%w: %q wants %d inputs, got %d", ErrBadParam, s.ID, want, len(s.Inputs))
		}
		out := make([]NodeID, want)
		for i, name := range s.Inputs {
			id, err := resolve(s.ID, name)
			if err != nil {
				return nil, err
			}
			out[i] = id
		}
		return out, nil
	}

	for _, s := range specs {
		switch s.Kind {
		case "layers":
			b.Layers(s.Layers...)
		case "range":
			b.LayerRange(s.Range[0], s.Range[1])
		case "fill":
			b.Fill(s.Color)
		case "effect":
			in, err := inputs(s, 1)
			if err != nil {
				return nil, err
			}
			b.Effect(s.Effect, s.Params, in[0])
		case "mask":
			in, err := inputs(s, 2)
			if err != nil {
				return nil, err
			}
			mode, err := parseMaskMode(s.Mode)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", s.ID, err)
			}
			b.Mask(in[0], in[1], mode)
		case "multisample":
			in, err := inputs(s, 1)
			if err != nil {
				return nil, err
			}
			b.Multisample(s.Samples, in[0])
		default:
			return nil, fmt.Errorf("%w: %q has kind %q", ErrBadParam, s.ID, s.Kind)
		}
	}

	outs := make([]NodeID, len(outputs))
	for i, name := range outputs {
		id, err := resolve("output", name)
		if err != nil {
			return nil, err
		}
		outs[i] = id
	}
	return b.Build(outs...)
}

func parseMaskMode(s string) (MaskMode, error) {
	switch s {
	case "", "inside":
		return MaskInside, nil
	case "outside":
		return MaskOutside, nil
	case "luminance":
		return MaskLuminance, nil
	}
	return 0, fmt.Errorf("%w: mask mode %q", ErrBadParam, s)
}
