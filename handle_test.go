package freelist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleFields(t *testing.T) {
	h := Handle(5 | 3*generationUnit)
	assert.Equal(t, uint16(5), h.index())
	assert.Equal(t, uint16(3), h.generation())
	assert.Equal(t, "Handle(slot=5 gen=3)", h.String())
}

func TestHandleEquality(t *testing.T) {
	p := New[int](4)
	h := p.Insert(1)
	again := h
	assert.Equal(t, h, again)

	// Same slot, later generation: distinct handles.
	p.Erase(h)
	h2 := p.Insert(2)
	assert.Equal(t, h.index(), h2.index())
	assert.NotEqual(t, h, h2)

	// Handles are comparable map keys.
	m := map[Handle]bool{h: true}
	assert.False(t, m[h2])
}

func TestGenerationWraparound(t *testing.T) {
	// After 65536 reuses of one slot the generation wraps and the original
	// handle aliases the current occupant. Documented limitation; this test
	// pins the behavior so a change is noticed.
	p := New[int](1)
	first := p.Insert(0)
	p.Erase(first)
	for i := 0; i < (1<<16)-1; i++ {
		h := p.Insert(i)
		p.Erase(h)
	}
	wrapped := p.Insert(42)
	assert.Equal(t, first, wrapped)
	assert.True(t, p.Contains(first))
}
