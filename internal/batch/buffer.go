// Package batch implements the per-kind attribute buffers that hold one
// fixed-layout record per live primitive.
//
// Records live in one contiguous slice. Slots are handed out to callers and
// stay valid until freed, across any number of capacity doublings. A freed
// slot is zeroed immediately and never reaches a snapshot, so deleting a
// primitive removes its geometry from the very next frame.
package batch

import (
	"errors"
	"slices"
	"sync"
)

// ErrInvalidSlot is returned for slots that were never allocated or were freed.
var ErrInvalidSlot = errors.New("batch: invalid slot")

// Slot addresses one record in a Buffer.
type Slot int32

// minCapacity is the capacity a buffer starts with.
const minCapacity = 16

// Buffer stores records of type T in contiguous memory.
//
// All methods are safe for concurrent use. Writes become visible to the
// next Snapshot as a whole record; a snapshot never observes a partially
// written record.
type Buffer[T any] struct {
	mu      sync.Mutex
	records []T
	live    []bool
	seq     []uint64 // allocation order of each live slot
	free    []Slot   // sorted ascending, lowest reused first
	next    uint64
	count   int
	version uint64
	grows   int
}

// New creates a buffer with room for at least capacity records.
func New[T any](capacity int) *Buffer[T] {
	capacity = max(capacity, minCapacity)
	return &Buffer[T]{
		records: make([]T, 0, capacity),
		live:    make([]bool, 0, capacity),
		seq:     make([]uint64, 0, capacity),
	}
}

// Allocate reserves a slot holding the zero record. When the backing store
// is full its capacity doubles; existing slots keep their ids.
func (b *Buffer[T]) Allocate() Slot {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.version++
	b.count++
	b.next++

	if len(b.free) > 0 {
		s := b.free[0]
		b.free = b.free[1:]
		b.live[s] = true
		b.seq[s] = b.next
		return s
	}

	if len(b.records) == cap(b.records) {
		b.grow()
	}
	var zero T
	b.records = append(b.records, zero)
	b.live = append(b.live, true)
	b.seq = append(b.seq, b.next)
	return Slot(len(b.records) - 1)
}

// grow doubles capacity: copy the old contents, then keep addressing by the
// same slot indices.
func (b *Buffer[T]) grow() {
	newCap := max(cap(b.records)*2, minCapacity)

	records := make([]T, len(b.records), newCap)
	copy(records, b.records)
	live := make([]bool, len(b.live), newCap)
	copy(live, b.live)
	seq := make([]uint64, len(b.seq), newCap)
	copy(seq, b.seq)

	b.records, b.live, b.seq = records, live, seq
	b.grows++
}

// Write overwrites the record in slot s.
func (b *Buffer[T]) Write(s Slot, rec T) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.valid(s) {
		return ErrInvalidSlot
	}
	b.records[s] = rec
	b.version++
	return nil
}

// Update applies fn to the record in slot s in place.
func (b *Buffer[T]) Update(s Slot, fn func(*T)) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.valid(s) {
		return ErrInvalidSlot
	}
	fn(&b.records[s])
	b.version++
	return nil
}

// Read returns the record in slot s.
func (b *Buffer[T]) Read(s Slot) (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.valid(s) {
		var zero T
		return zero, false
	}
	return b.records[s], true
}

// Free releases slot s. The record is zeroed so nothing stale can be drawn
// from it, and the slot becomes available to the next Allocate.
func (b *Buffer[T]) Free(s Slot) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.valid(s) {
		return ErrInvalidSlot
	}
	var zero T
	b.records[s] = zero
	b.live[s] = false
	b.seq[s] = 0
	i, _ := slices.BinarySearch(b.free, s)
	b.free = slices.Insert(b.free, i, s)
	b.count--
	b.version++
	return nil
}

// Snapshot appends the live records to dst in allocation order and returns
// the extended slice. A slot that was freed and allocated again counts as
// newly allocated.
func (b *Buffer[T]) Snapshot(dst []T) []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	order := b.order()
	for _, s := range order {
		dst = append(dst, b.records[s])
	}
	return dst
}

// Slots returns the live slots in allocation order.
func (b *Buffer[T]) Slots() []Slot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.order()
}

func (b *Buffer[T]) order() []Slot {
	out := make([]Slot, 0, b.count)
	for i, ok := range b.live {
		if ok {
			out = append(out, Slot(i))
		}
	}
	slices.SortFunc(out, func(x, y Slot) int {
		switch {
		case b.seq[x] < b.seq[y]:
			return -1
		case b.seq[x] > b.seq[y]:
			return 1
		}
		return 0
	})
	return out
}

// Len returns the number of live records.
func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Cap returns the current capacity of the backing store.
func (b *Buffer[T]) Cap() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cap(b.records)
}

// Version increases on every mutation. Uploaders compare it against the
// version they last sent to skip unchanged buffers.
func (b *Buffer[T]) Version() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.version
}

// Grows returns how many times the buffer has doubled.
func (b *Buffer[T]) Grows() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.grows
}

// Reset frees every slot.
func (b *Buffer[T]) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.records)
	b.records = b.records[:0]
	b.live = b.live[:0]
	b.seq = b.seq[:0]
	b.free = b.free[:0]
	b.count = 0
	b.version++
}

func (b *Buffer[T]) valid(s Slot) bool {
	return s >= 0 && int(s) < len(b.live) && b.live[s]
}
