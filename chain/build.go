package chain

import (
	"fmt"
	"slices"

	"github.com/gogpu/g2d/internal/filter"
	"github.com/gogpu/g2d/internal/raster"
)

// Build validates the graph reachable from outputs and returns an
// immutable Chain. Outputs are composited onto the final frame in the
// order given.
//
// Build reports unknown effects, bad parameters, missing nodes, cycles and
// unsupported sample counts. Nodes not reachable from any output are
// ignored.
func (b *Builder) Build(outputs ...NodeID) (*Chain, error) {
	if len(outputs) == 0 {
		return nil, ErrNoOutput
	}
	nodes := slices.Clone(b.nodes)

	order, err := topoSort(nodes, outputs)
	if err != nil {
		return nil, err
	}

	c := &Chain{
		nodes:   nodes,
		order:   order,
		outputs: slices.Clone(outputs),
		effects: make(map[NodeID]filter.Effect),
		samples: make([]int, len(nodes)),
		uses:    make([]int, len(nodes)),
	}
	for _, id := range order {
		if err := c.prepare(id); err != nil {
			return nil, err
		}
	}
	for _, id := range order {
		for _, in := range nodes[id].inputs {
			c.uses[in]++
		}
	}
	for _, id := range outputs {
		c.uses[id]++
	}
	c.propagateSamples()
	return c, nil
}

// prepare validates one node and instantiates its effect.
func (c *Chain) prepare(id NodeID) error {
	n := &c.nodes[id]
	switch n.kind {
	case kindRange:
		if n.hi < n.lo {
			return fmt.Errorf("%w: node %d: layer range [%d, %d)", ErrBadParam, id, n.lo, n.hi)
		}
	case kindEffect:
		e, err := filter.New(n.effect, n.params)
		if err != nil {
			return fmt.Errorf("chain: node %d: %w", id, err)
		}
		c.effects[id] = e
	case kindMask:
		if n.mode > MaskLuminance {
			return fmt.Errorf("%w: node %d: mask mode %d", ErrBadParam, id, n.mode)
		}
	case kindMultisample:
		if !raster.ValidSampleCount(n.samples) {
			return fmt.Errorf("%w: node %d: %d samples", ErrBadParam, id, n.samples)
		}
	}
	return nil
}

// propagateSamples pushes each multisample request down to the layer
// nodes beneath it. A layer node shared by consumers asking for different
// counts renders with the largest.
func (c *Chain) propagateSamples() {
	for i := range c.samples {
		c.samples[i] = 1
	}
	// Reverse topological order visits consumers before their inputs.
	for _, id := range slices.Backward(c.order) {
		n := c.nodes[id]
		s := c.samples[id]
		if n.kind == kindMultisample {
			s = max(s, n.samples)
		}
		for _, in := range n.inputs {
			c.samples[in] = max(c.samples[in], s)
		}
	}
}

const (
	unvisited = iota
	visiting
	done
)

// topoSort orders the nodes reachable from outputs so every node follows
// its inputs. Siblings keep the order in which they were added.
func topoSort(nodes []node, outputs []NodeID) ([]NodeID, error) {
	state := make([]uint8, len(nodes))
	var order []NodeID

	var visit func(id NodeID, from NodeID) error
	visit = func(id, from NodeID) error {
		if id < 0 || int(id) >= len(nodes) {
			if from < 0 {
				return fmt.Errorf("%w: output %d", ErrMissingNode, id)
			}
			return fmt.Errorf("%w: node %d refers to %d", ErrMissingNode, from, id)
		}
		switch state[id] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: through node %d", ErrCycle, id)
		}
		state[id] = visiting
		for _, in := range nodes[id].inputs {
			if err := visit(in, id); err != nil {
				return err
			}
		}
		state[id] = done
		order = append(order, id)
		return nil
	}

	for _, out := range outputs {
		if err := visit(out, -1); err != nil {
			return nil, err
		}
	}
	return order, nil
}
