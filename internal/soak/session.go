package soak

import (
	"fmt"

	"github.com/l1jgo/freelist"
)

// retiredKeep bounds how many dead handles a session remembers for
// stale-detection checks.
const retiredKeep = 1024

// session pairs a pool with a shadow model and an ordered live-handle list.
// The random runner and trace replay share this type so a recorded
// "erase nth" resolves to the same handle on both sides.
type session struct {
	pool    *freelist.Pool[uint64]
	model   map[freelist.Handle]uint64
	live    []freelist.Handle
	retired []freelist.Handle
}

func newSession(capacity int) *session {
	return &session{
		pool:  freelist.New[uint64](capacity),
		model: make(map[freelist.Handle]uint64, capacity),
	}
}

// insert stores v in pool and model and verifies the immediate round-trip.
func (s *session) insert(v uint64) error {
	if s.pool.Len() == s.pool.Cap() {
		return fmt.Errorf("insert into full pool (capacity %d)", s.pool.Cap())
	}
	h := s.pool.Insert(v)
	if old, dup := s.model[h]; dup {
		return fmt.Errorf("handle %v reissued while live (old value %d)", h, old)
	}
	got, ok := s.pool.Get(h)
	if !ok {
		return fmt.Errorf("fresh handle %v not contained", h)
	}
	if *got != v {
		return fmt.Errorf("round-trip mismatch for %v: inserted %d, read %d", h, v, *got)
	}
	s.model[h] = v
	s.live = append(s.live, h)
	return nil
}

// eraseNth erases the nth live handle (swap-removing it from the live list,
// mirroring the pool's own dense-array discipline) and verifies it is dead.
func (s *session) eraseNth(n int) error {
	if n < 0 || n >= len(s.live) {
		return fmt.Errorf("erase index %d out of range (%d live)", n, len(s.live))
	}
	h := s.live[n]
	s.pool.Erase(h)
	delete(s.model, h)
	s.live[n] = s.live[len(s.live)-1]
	s.live = s.live[:len(s.live)-1]

	if s.pool.Contains(h) {
		return fmt.Errorf("erased handle %v still contained", h)
	}
	if len(s.retired) == retiredKeep {
		s.retired = s.retired[1:]
	}
	s.retired = append(s.retired, h)
	return nil
}

// check verifies the full set of observable properties: occupancy, packing
// (iteration yields each live handle exactly once), value round-trips, and
// stale-handle detection for recently retired handles.
func (s *session) check() error {
	if s.pool.Len() != len(s.model) {
		return fmt.Errorf("occupancy %d, model has %d", s.pool.Len(), len(s.model))
	}

	seen := make(map[freelist.Handle]bool, len(s.model))
	for h := range s.pool.All() {
		if seen[h] {
			return fmt.Errorf("iteration yielded %v twice", h)
		}
		seen[h] = true
		if _, ok := s.model[h]; !ok {
			return fmt.Errorf("iteration yielded unknown handle %v", h)
		}
	}
	if len(seen) != len(s.model) {
		return fmt.Errorf("iteration yielded %d handles, want %d", len(seen), len(s.model))
	}

	for h, want := range s.model {
		got, ok := s.pool.Get(h)
		if !ok {
			return fmt.Errorf("live handle %v not contained", h)
		}
		if *got != want {
			return fmt.Errorf("value mismatch for %v: pool %d, model %d", h, *got, want)
		}
	}

	for _, h := range s.retired {
		if s.pool.Contains(h) {
			return fmt.Errorf("retired handle %v resurrected", h)
		}
	}
	return nil
}
