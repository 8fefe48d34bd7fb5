package workspace

import (
	"fmt"
	"slices"
)

// handle addresses a slot in an arena. gen is never zero for a live slot,
// so the zero handle is always invalid.
type handle struct {
	idx int32
	gen uint32
}

func (h handle) valid() bool { return h.gen != 0 }

func (h handle) format(prefix string) string {
	if !h.valid() {
		return prefix + "-"
	}
	if h.gen == 1 {
		return fmt.Sprintf("%s%d", prefix, h.idx)
	}
	return fmt.Sprintf("%s%d#%d", prefix, h.idx, h.gen)
}

type slot[T any] struct {
	gen  uint32
	live bool
	val  T
}

// arena stores values in reusable slots. Removing a value bumps the slot's
// generation so outstanding handles go stale instead of aliasing the next
// occupant. order keeps live slots in insertion order.
type arena[T any] struct {
	slots []slot[T]
	free  []int32
	order []int32
}

func (a *arena[T]) insert(v T) handle {
	var idx int32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.slots = append(a.slots, slot[T]{})
		idx = int32(len(a.slots) - 1)
	}
	s := &a.slots[idx]
	s.gen++
	s.live = true
	s.val = v
	a.order = append(a.order, idx)
	return handle{idx: idx, gen: s.gen}
}

func (a *arena[T]) get(h handle) (*T, bool) {
	if !h.valid() || int(h.idx) >= len(a.slots) || h.idx < 0 {
		return nil, false
	}
	s := &a.slots[h.idx]
	if !s.live || s.gen != h.gen {
		return nil, false
	}
	return &s.val, true
}

func (a *arena[T]) remove(h handle) bool {
	if _, ok := a.get(h); !ok {
		return false
	}
	s := &a.slots[h.idx]
	var zero T
	s.val = zero
	s.live = false
	a.free = append(a.free, h.idx)
	if i := slices.Index(a.order, h.idx); i >= 0 {
		a.order = slices.Delete(a.order, i, i+1)
	}
	return true
}

// handles returns the live handles in insertion order.
func (a *arena[T]) handles() []handle {
	out := make([]handle, len(a.order))
	for i, idx := range a.order {
		out[i] = handle{idx: idx, gen: a.slots[idx].gen}
	}
	return out
}

func (a *arena[T]) len() int { return len(a.order) }
