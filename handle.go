package freelist

import "fmt"

// Handle is an opaque reference to a value stored in a Pool. The low 16 bits
// encode the sparse slot index, the high 16 bits encode the slot's generation
// at the time the value was inserted. Callers should treat a Handle as a
// value to store and present back to the pool; beyond equality comparison,
// its layout is not part of the public contract.
type Handle uint32

const (
	// indexMask extracts the slot index from a handle.
	indexMask = 0xFFFF

	// tombstone is the dense-position sentinel marking a free slot.
	tombstone uint16 = 0xFFFF

	// generationUnit is added to a slot's id each time the slot is handed
	// out, incrementing the 16-bit generation field. The generation wraps
	// after 65536 reuses of a single slot, at which point a handle that old
	// becomes indistinguishable from the current occupant. Accepted
	// limitation, not silently fixed.
	generationUnit = 0x10000
)

// index returns the sparse slot this handle refers to.
func (h Handle) index() uint16 { return uint16(h) }

// generation returns the generation the handle was issued with.
func (h Handle) generation() uint16 { return uint16(h >> 16) }

func (h Handle) String() string {
	return fmt.Sprintf("Handle(slot=%d gen=%d)", h.index(), h.generation())
}
