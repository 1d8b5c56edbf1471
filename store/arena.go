// Package store provides generational arenas: typed slot tables that hand out
// handles on insert and refuse to resolve a handle once its slot has been freed
// or reused. Every resource kind the renderer owns lives in its own Arena.
package store

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// package errors
var (
	ErrStaleHandle = errors.New("stale handle")
)

var arenaCounter uint32

// Handle identifies a value inside one specific Arena. The zero Handle
// resolves in no arena and stands for "no resource".
type Handle struct {
	arena      uint32
	index      uint32
	generation uint32
}

// IsNil reports whether h is the zero Handle.
func (h Handle) IsNil() bool {
	return h.arena == 0
}

// Index returns the slot index of the handle.
func (h Handle) Index() uint32 {
	return h.index
}

// Generation returns the slot generation the handle was issued for.
func (h Handle) Generation() uint32 {
	return h.generation
}

func (h Handle) String() string {
	if h.IsNil() {
		return "handle(nil)"
	}
	return fmt.Sprintf("handle(%d:%d.%d)", h.arena, h.index, h.generation)
}

type slot[T any] struct {
	value      T
	generation uint32
	occupied   bool
}

// Arena owns values of one kind. Removing a value never moves or
// invalidates the handles of other values. Not safe for concurrent use.
type Arena[T any] struct {
	id    uint32
	slots []slot[T]
	free  []uint32
	len   int
}

// NewArena creates an empty arena with a process-unique id, so handles
// issued by one arena never resolve in another.
func NewArena[T any]() *Arena[T] {
	return &Arena[T]{
		id: atomic.AddUint32(&arenaCounter, 1),
	}
}

// Insert stores v and returns its handle.
func (a *Arena[T]) Insert(v T) Handle {
	var index uint32
	if n := len(a.free); n > 0 {
		index = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		index = uint32(len(a.slots))
		a.slots = append(a.slots, slot[T]{})
	}
	s := &a.slots[index]
	s.value = v
	s.occupied = true
	a.len++
	return Handle{
		arena:      a.id,
		index:      index,
		generation: s.generation,
	}
}

func (a *Arena[T]) lookup(h Handle) (*slot[T], error) {
	if h.IsNil() {
		return nil, fmt.Errorf("%w: nil handle", ErrStaleHandle)
	}
	if h.arena != a.id {
		return nil, fmt.Errorf("%w: %s belongs to another arena", ErrStaleHandle, h)
	}
	if int(h.index) >= len(a.slots) {
		return nil, fmt.Errorf("%w: %s out of range", ErrStaleHandle, h)
	}
	s := &a.slots[h.index]
	if !s.occupied || s.generation != h.generation {
		return nil, fmt.Errorf("%w: %s", ErrStaleHandle, h)
	}
	return s, nil
}

// Get returns a copy of the value h refers to.
func (a *Arena[T]) Get(h Handle) (T, error) {
	s, err := a.lookup(h)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.value, nil
}

// GetMut returns a pointer to the stored value. The pointer is valid
// until the next Insert into the arena.
func (a *Arena[T]) GetMut(h Handle) (*T, error) {
	s, err := a.lookup(h)
	if err != nil {
		return nil, err
	}
	return &s.value, nil
}

// Contains reports whether h currently resolves.
func (a *Arena[T]) Contains(h Handle) bool {
	_, err := a.lookup(h)
	return err == nil
}

// Remove frees the slot of h and returns the value it held. The slot
// generation is bumped so h, and every copy of it, goes stale.
func (a *Arena[T]) Remove(h Handle) (T, error) {
	var zero T
	s, err := a.lookup(h)
	if err != nil {
		return zero, err
	}
	v := s.value
	s.value = zero
	s.occupied = false
	s.generation++
	a.free = append(a.free, h.index)
	a.len--
	return v, nil
}

// Len returns the number of live values.
func (a *Arena[T]) Len() int {
	return a.len
}

// Handles returns the handles of all live values in slot order.
func (a *Arena[T]) Handles() []Handle {
	handles := make([]Handle, 0, a.len)
	for idx := range a.slots {
		if a.slots[idx].occupied {
			handles = append(handles, Handle{
				arena:      a.id,
				index:      uint32(idx),
				generation: a.slots[idx].generation,
			})
		}
	}
	return handles
}
