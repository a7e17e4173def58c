// Package freelist implements a fixed-capacity object pool addressed through
// generation-checked handles, after the id-lookup table described in the
// bitsquid "Managing Decoupling" series.
//
// Values are stored contiguously and stay packed under removal via
// swap-remove, while every value keeps a stable 32-bit Handle combining a
// 16-bit slot index with a 16-bit generation counter. A handle whose slot
// has since been freed or reused stops matching its slot's generation, so
// stale references are detected instead of resolving to the new occupant.
//
// Insert, Erase, Contains, and lookups are O(1); iteration is O(Len).
// The pool is single-threaded by design.
package freelist
