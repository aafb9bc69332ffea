package ir

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// BufferID addresses a Buffer inside an Arena. NoBufferID means "no buffer".
type BufferID uint32

const NoBufferID BufferID = 0

// IsValid reports whether id refers to an allocated buffer.
func (id BufferID) IsValid() bool { return id != NoBufferID }

// MemoryClass is the storage tier a buffer lives in.
type MemoryClass uint8

const (
	MemHeap MemoryClass = iota
	// MemShared is accelerator memory shared by a thread block.
	MemShared
	// MemLocal is accelerator per-thread scratch memory.
	MemLocal
	MemOther
)

func (m MemoryClass) String() string {
	switch m {
	case MemHeap:
		return "heap"
	case MemShared:
		return "shared"
	case MemLocal:
		return "local"
	default:
		return "other"
	}
}

// ParseMemoryClass maps a manifest spelling to a MemoryClass.
func ParseMemoryClass(s string) (MemoryClass, error) {
	switch s {
	case "", "heap", "global":
		return MemHeap, nil
	case "shared":
		return MemShared, nil
	case "local":
		return MemLocal, nil
	case "other":
		return MemOther, nil
	default:
		return MemHeap, fmt.Errorf("unknown memory class %q (expected: heap|shared|local|other)", s)
	}
}

// IsAcceleratorScratch reports whether m is shared or local accelerator memory.
func (m MemoryClass) IsAcceleratorScratch() bool {
	return m == MemShared || m == MemLocal
}

// Buffer is a named storage region. Several tensors may alias one buffer.
type Buffer struct {
	ID     BufferID
	Name   string
	Memory MemoryClass
	DType  ScalarType
	Shape  []int
}

// Arena owns every Buffer of a tensor group. Slot 0 is reserved so the zero
// BufferID stays invalid.
type Arena struct {
	bufs   []Buffer
	byName map[string]BufferID
}

func NewArena() *Arena {
	return &Arena{
		bufs:   make([]Buffer, 1, 16),
		byName: make(map[string]BufferID),
	}
}

// New allocates a buffer. Names must be unique within the arena.
func (a *Arena) New(name string, mem MemoryClass, dtype ScalarType, shape []int) (BufferID, error) {
	if _, dup := a.byName[name]; dup {
		return NoBufferID, fmt.Errorf("buffer %q already allocated", name)
	}
	id, err := safecast.Conv[BufferID](len(a.bufs))
	if err != nil {
		return NoBufferID, fmt.Errorf("buffer id overflow: %w", err)
	}
	a.bufs = append(a.bufs, Buffer{
		ID:     id,
		Name:   name,
		Memory: mem,
		DType:  dtype,
		Shape:  slices.Clone(shape),
	})
	a.byName[name] = id
	return id, nil
}

// Get returns the buffer for id, or nil when id is not allocated here.
func (a *Arena) Get(id BufferID) *Buffer {
	if a == nil || !id.IsValid() || int(id) >= len(a.bufs) {
		return nil
	}
	return &a.bufs[id]
}

// Lookup finds a buffer by name.
func (a *Arena) Lookup(name string) (BufferID, bool) {
	if a == nil {
		return NoBufferID, false
	}
	id, ok := a.byName[name]
	return id, ok
}

// Len returns the number of allocated buffers.
func (a *Arena) Len() int {
	if a == nil {
		return 0
	}
	return len(a.bufs) - 1
}

// Snapshot returns a detached copy of the buffer, safe to keep after the
// arena is mutated or dropped.
func (a *Arena) Snapshot(id BufferID) (Buffer, bool) {
	b := a.Get(id)
	if b == nil {
		return Buffer{}, false
	}
	out := *b
	out.Shape = slices.Clone(b.Shape)
	return out, true
}
