package g2d

import "github.com/gogpu/g2d/internal/batch"

// record ties a primitive to its slot in a layer batch. Once freed it
// never writes again, so a handle kept after Delete cannot overwrite the
// primitive that reuses its slot.
type record[T any] struct {
	buf   *batch.Buffer[T]
	slot  batch.Slot
	freed bool
}

func newRecord[T any](buf *batch.Buffer[T]) record[T] {
	return record[T]{buf: buf, slot: buf.Allocate()}
}

func (r *record[T]) write(rec T) {
	if r.freed {
		return
	}
	_ = r.buf.Write(r.slot, rec)
}

func (r *record[T]) free() error {
	if r.freed {
		return ErrDeleted
	}
	r.freed = true
	return r.buf.Free(r.slot)
}

// deleted reports whether the record has been freed.
func (r *record[T]) deleted() bool { return r.freed }

// detach removes t from its group, if any.
func detach(t *Transform) {
	if t.group != nil {
		t.group.detach(t)
	}
}
