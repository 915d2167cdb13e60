package g2d

import (
	"errors"
	"slices"
)

// Group moves a set of primitives as one. Members keep their own
// transform, which becomes relative to the group.
type Group struct {
	Transform
	members []Transformable
}

// NewGroup creates a group at (x, y) holding items.
func NewGroup(x, y float32, items ...Transformable) (*Group, error) {
	g := &Group{}
	g.init(x, y, g.syncMembers)
	if err := g.Add(items...); err != nil {
		return nil, err
	}
	return g, nil
}

// Add moves items into the group, taking them out of any group they were
// in. Adding a group to itself or to one of its descendants fails with
// ErrGroupCycle.
func (g *Group) Add(items ...Transformable) error {
	for _, it := range items {
		t := it.transform()
		for a := g; a != nil; a = a.group {
			if t == &a.Transform {
				return ErrGroupCycle
			}
		}
		if t.group == g {
			continue
		}
		if t.group != nil {
			t.group.detach(t)
		}
		t.group = g
		g.members = append(g.members, it)
		t.changed()
	}
	return nil
}

// Remove takes it out of the group. Its transform becomes relative to
// the world again.
func (g *Group) Remove(it Transformable) {
	t := it.transform()
	if t.group != g {
		return
	}
	g.detach(t)
	t.changed()
}

func (g *Group) detach(t *Transform) {
	g.members = slices.DeleteFunc(g.members, func(m Transformable) bool {
		return m.transform() == t
	})
	t.group = nil
}

// Members returns the group's members in insertion order.
func (g *Group) Members() []Transformable { return slices.Clone(g.members) }

// Len returns the number of members.
func (g *Group) Len() int { return len(g.members) }

func (g *Group) syncMembers() {
	for _, m := range g.members {
		m.transform().changed()
	}
}

// LocalToWorld maps a point in group space to world space.
func (g *Group) LocalToWorld(p Vec2) Vec2 {
	return g.World().Point(p)
}

// WorldToLocal maps a world point into group space. ok is false when the
// group is scaled to zero.
func (g *Group) WorldToLocal(p Vec2) (Vec2, bool) {
	inv, ok := g.World().Invert()
	if !ok {
		return Vec2{}, false
	}
	return inv.Point(p), true
}

// Delete deletes every member that can be deleted and empties the group.
func (g *Group) Delete() error {
	var errs []error
	for _, m := range g.members {
		m.transform().group = nil
		if d, ok := m.(interface{ Delete() error }); ok {
			if err := d.Delete(); err != nil && !errors.Is(err, ErrDeleted) {
				errs = append(errs, err)
			}
		}
	}
	g.members = nil
	return errors.Join(errs...)
}
