package freelist

import (
	"fmt"
	"iter"
)

// slot is one sparse-array entry. id holds the full handle value most
// recently issued for this slot, dense is the occupant's position in the
// dense arrays (tombstone when free), and next threads the intrusive free
// list through the sparse array.
type slot struct {
	id    Handle
	dense uint16
	next  uint16
}

// Pool is a fixed-capacity object pool with generation-checked handles.
// Values live tightly packed in a dense array for cache-friendly iteration;
// each value is addressed externally through a Handle that stays valid (or
// becomes detectably stale) across inserts and erases.
//
// Erase keeps the dense array packed by moving the last value into the hole,
// so dense positions are not stable across erases; handles are. Pointers
// returned by Lookup and Get are invalidated by any subsequent Insert,
// Alloc, or Erase.
//
// A Pool is not safe for concurrent use; callers synchronize externally.
// The zero value is an empty pool with zero capacity.
type Pool[T any] struct {
	values []T      // dense storage; positions < n are live
	ids    []Handle // ids[i] = handle occupying dense position i
	slots  []slot   // sparse array indexed by handle slot index
	n      int      // occupancy
	max    int      // logical capacity; can be below len(slots) after CopyFrom
	free   uint16   // free-list head
}

// New creates a pool holding up to capacity values. The capacity is fixed
// for the pool's lifetime and must fit the 16-bit slot index, so New panics
// if capacity is negative or 65536 or more.
func New[T any](capacity int) *Pool[T] {
	if capacity < 0 || capacity >= 0x10000 {
		panic(fmt.Sprintf("freelist: capacity %d out of range [0, 65536)", capacity))
	}
	p := &Pool[T]{}
	p.init(capacity)
	return p
}

// init allocates fresh backing arrays and rebuilds the initial free list
// 0 -> 1 -> ... -> capacity-1.
func (p *Pool[T]) init(capacity int) {
	p.values = make([]T, capacity)
	p.ids = make([]Handle, capacity)
	p.slots = make([]slot, capacity)
	for i := range p.slots {
		p.slots[i] = slot{id: Handle(i), dense: tombstone, next: uint16(i + 1)}
	}
	p.n = 0
	p.max = capacity
	p.free = 0
}

// Len returns the number of live values.
func (p *Pool[T]) Len() int { return p.n }

// Cap returns the pool's capacity.
func (p *Pool[T]) Cap() int { return p.max }

// Insert stores v and returns its handle. Panics if the pool is full;
// Len() < Cap() is the caller's contract.
func (p *Pool[T]) Insert(v T) Handle {
	h, ptr := p.Alloc()
	*ptr = v
	return h
}

// Alloc claims a slot and returns its handle together with a pointer to the
// zeroed value, for callers that construct in place rather than copy in.
// Same contract as Insert: panics when the pool is full. The pointer is
// invalidated by any subsequent Insert, Alloc, or Erase.
func (p *Pool[T]) Alloc() (Handle, *T) {
	if p.n == p.max {
		panic(fmt.Sprintf("freelist: pool is full (capacity %d)", p.max))
	}
	s := &p.slots[p.free]
	p.free = s.next
	s.id += generationUnit // invalidates every handle previously issued for this slot
	s.dense = uint16(p.n)
	p.ids[p.n] = s.id
	ptr := &p.values[p.n]
	var zero T
	*ptr = zero
	p.n++
	return s.id, ptr
}

// Contains reports whether h refers to a live value. It is total: any
// handle, including a forged or out-of-range one, yields false rather than
// a panic.
func (p *Pool[T]) Contains(h Handle) bool {
	i := int(h & indexMask)
	if i >= p.max {
		return false
	}
	s := &p.slots[i]
	return s.id == h && s.dense != tombstone
}

// Lookup returns a pointer to the value h refers to, with no generation or
// occupancy check. Contract: Contains(h) must hold. Presenting a stale or
// forged handle may panic on a bounds check or silently return some other
// live value; callers wanting a checked path use Get. The pointer is
// invalidated by any subsequent Insert, Alloc, or Erase.
func (p *Pool[T]) Lookup(h Handle) *T {
	return &p.values[p.slots[h&indexMask].dense]
}

// Get is the checked variant of Lookup: it returns the value pointer and
// true when h is live, nil and false otherwise.
func (p *Pool[T]) Get(h Handle) (*T, bool) {
	if !p.Contains(h) {
		return nil, false
	}
	return &p.values[p.slots[h&indexMask].dense], true
}

// Erase removes the value h refers to. Panics unless Contains(h).
//
// The hole in the dense array is filled by moving the current last value
// down, so one surviving occupant changes dense position (its handle does
// not). The freed slot's dense position becomes the tombstone and the slot
// is pushed onto the free-list head for reuse.
func (p *Pool[T]) Erase(h Handle) {
	if !p.Contains(h) {
		panic("freelist: erase of invalid " + h.String())
	}
	i := h.index()
	s := &p.slots[i]
	pos := s.dense

	p.n--
	last := uint16(p.n)
	p.values[pos] = p.values[last]
	var zero T
	p.values[last] = zero // release references held by the vacated tail
	p.ids[pos] = p.ids[last]
	p.slots[p.ids[pos].index()].dense = pos

	s.dense = tombstone
	s.next = p.free
	p.free = i
}

// All returns an iterator over the handles of every live value, in dense
// order. The order is deterministic for a given history of operations but
// is not insertion order, since Erase reorders the dense array. The
// sequence is restartable; values are obtained from the handles via Get or
// Lookup. Mutating the pool during iteration is not supported.
func (p *Pool[T]) All() iter.Seq[Handle] {
	return func(yield func(Handle) bool) {
		for i := 0; i < p.n; i++ {
			if !yield(p.ids[i]) {
				return
			}
		}
	}
}

// Clone returns a deep copy of the pool: all live values, handle
// assignments, and free-list state are duplicated, so handles issued by the
// original resolve identically in the copy while mutations stay independent.
func (p *Pool[T]) Clone() *Pool[T] {
	c := &Pool[T]{}
	c.CopyFrom(p)
	return c
}

// CopyFrom makes p a deep copy of src. Backing storage is reused when it is
// large enough, otherwise reallocated to src's capacity; backing storage
// never shrinks. After the call p.Cap() == src.Cap() and every handle live
// in src is live in p with an equal value.
func (p *Pool[T]) CopyFrom(src *Pool[T]) {
	if p == src {
		return
	}
	if len(p.slots) < src.max {
		p.values = make([]T, src.max)
		p.ids = make([]Handle, src.max)
		p.slots = make([]slot, src.max)
	} else {
		var zero T
		for i := src.n; i < p.n; i++ {
			p.values[i] = zero // release values the copy will not keep
		}
	}
	copy(p.values[:src.n], src.values[:src.n])
	copy(p.ids[:src.n], src.ids[:src.n])
	copy(p.slots[:src.max], src.slots[:src.max])
	p.n = src.n
	p.max = src.max
	p.free = src.free
}

// MoveFrom transfers src's entire state into p in O(1). src is left as an
// empty zero-capacity pool; p's previous contents are dropped.
func (p *Pool[T]) MoveFrom(src *Pool[T]) {
	if p == src {
		return
	}
	*p = *src
	*src = Pool[T]{}
}

// Swap exchanges the full state of the two pools in O(1).
func (p *Pool[T]) Swap(other *Pool[T]) {
	*p, *other = *other, *p
}
