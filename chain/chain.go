package chain

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/gogpu/g2d/internal/blend"
	"github.com/gogpu/g2d/internal/color"
	"github.com/gogpu/g2d/internal/filter"
	"github.com/gogpu/g2d/internal/image"
)

// Renderer draws scene layers into a frame.
type Renderer interface {
	// LayerIDs returns the ids of the existing layers in ascending order.
	LayerIDs() []int

	// DrawLayers renders the given layers, lowest id first, over dst.
	// samples is 1 for single-sampled rendering; higher counts render
	// multisampled and resolve into dst.
	DrawLayers(ctx context.Context, dst *image.Frame, ids []int, samples int) error
}

// Chain is a validated post-processing graph.
//
// A Chain keeps per-node effect state (trails), so one Chain must not be
// rendered from several goroutines at once.
type Chain struct {
	nodes   []node
	order   []NodeID
	outputs []NodeID
	effects map[NodeID]filter.Effect
	samples []int
	uses    []int
	log     *slog.Logger
}

// SetLogger sets the logger for per-frame diagnostics. Nil disables logging.
func (c *Chain) SetLogger(l *slog.Logger) {
	c.log = l
}

func (c *Chain) logger() *slog.Logger {
	if c.log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.log
}

// Order returns the evaluation order of the reachable nodes.
func (c *Chain) Order() []NodeID { return slices.Clone(c.order) }

// Outputs returns the output nodes in compositing order.
func (c *Chain) Outputs() []NodeID { return slices.Clone(c.outputs) }

// Mode returns the blend mode used to composite node id onto its consumer.
func (c *Chain) Mode(id NodeID) blend.Mode {
	if cm, ok := c.effects[id].(filter.Compositor); ok {
		return cm.Mode()
	}
	return blend.ModeSourceOver
}

// framePool recycles node targets between frames.
var framePool = image.NewPool(8)

// Render evaluates the graph and composites every output over dst in order.
//
// Each node renders into its own frame and only reads the frames of its
// inputs, so the result does not depend on the order in which independent
// nodes are evaluated. Frames are returned to the pool as soon as their last
// consumer has run. Render checks ctx between nodes.
func (c *Chain) Render(ctx context.Context, r Renderer, dst *image.Frame, env filter.Env) error {
	w, h := dst.Width(), dst.Height()
	frames := make(map[NodeID]*image.Frame, len(c.order))
	remaining := slices.Clone(c.uses)
	release := func(id NodeID) {
		remaining[id]--
		if remaining[id] == 0 {
			framePool.Put(frames[id])
			delete(frames, id)
		}
	}
	defer func() {
		for _, f := range frames {
			framePool.Put(f)
		}
	}()

	log := c.logger()
	for _, id := range c.order {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := framePool.Get(w, h)
		if err != nil {
			return err
		}
		frames[id] = out
		if err := c.eval(ctx, id, r, frames, out, env); err != nil {
			return fmt.Errorf("chain: node %d: %w", id, err)
		}
		log.Debug("chain node evaluated", "node", int(id), "kind", int(c.nodes[id].kind))
		for _, in := range c.nodes[id].inputs {
			release(in)
		}
	}

	for _, id := range c.outputs {
		if err := blend.BlendFrame(dst, frames[id], c.Mode(id)); err != nil {
			return err
		}
		release(id)
	}
	return nil
}

func (c *Chain) eval(ctx context.Context, id NodeID, r Renderer, frames map[NodeID]*image.Frame, out *image.Frame, env filter.Env) error {
	n := c.nodes[id]
	switch n.kind {
	case kindLayers:
		ids := slices.Clone(n.layers)
		slices.Sort(ids)
		return r.DrawLayers(ctx, out, slices.Compact(ids), c.samples[id])

	case kindRange:
		var ids []int
		for _, l := range r.LayerIDs() {
			if l >= n.lo && l < n.hi {
				ids = append(ids, l)
			}
		}
		return r.DrawLayers(ctx, out, ids, c.samples[id])

	case kindFill:
		out.Fill(image.FromArray(n.color).Clamp().Premultiply())
		return nil

	case kindEffect:
		return c.effects[id].Apply(frames[n.inputs[0]], out, env)

	case kindMask:
		return applyMask(frames[n.inputs[0]], frames[n.inputs[1]], out, n.mode)

	case kindMultisample:
		return out.CopyFrom(frames[n.inputs[0]])
	}
	return nil
}

// applyMask writes paint scaled by the mask's coverage into out.
func applyMask(paint, mask, out *image.Frame, mode MaskMode) error {
	if !paint.SameSize(mask) || !paint.SameSize(out) {
		return image.ErrSizeMismatch
	}
	p, m, o := paint.Pix(), mask.Pix(), out.Pix()
	for i := range o {
		var k float32
		switch mode {
		case MaskInside:
			o[i] = blend.Mask(p[i], m[i])
			continue
		case MaskOutside:
			k = 1 - m[i].A
		case MaskLuminance:
			k = float32(math.Min(float64(color.Luminance(m[i].R, m[i].G, m[i].B)), 1))
		}
		o[i] = p[i].Scale(k)
	}
	return nil
}
