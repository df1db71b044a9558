package core

import "unsafe"

// Array is the `{ptr, len, cap}` triple that every collection crosses the
// boundary as. A null Ptr with Len and Cap both zero is the canonical
// encoding of "no collection" and the only sanctioned absent encoding; any
// other combination supplied by a caller is outside the contract.
type Array struct {
	Ptr unsafe.Pointer
	Len int
	Cap int
}

// IsNull reports whether a is the sanctioned absent encoding.
func (a Array) IsNull() bool {
	return a.Ptr == nil && a.Len == 0 && a.Cap == 0
}

// pins holds the backing storage of every boundary-allocated buffer, keyed
// by its base pointer. An entry exists from allocation until the matching
// free (or until from-boundary reconstruction re-takes the buffer), so the
// garbage collector cannot reclaim payloads the foreign side still holds.
var pins = make(map[unsafe.Pointer]any)

// PinnedAllocs reports the number of live boundary allocations. Intended
// for symmetry assertions in tests: every to-boundary allocation must be
// balanced by exactly one release or one from-boundary reconstruction.
func PinnedAllocs() int {
	return len(pins)
}

// NewArray copies v into a boundary-allocated buffer and returns its triple.
// A nil slice produces the null encoding. An empty non-nil slice produces a
// non-null buffer so that "present but empty" stays distinguishable from
// "absent".
func NewArray[T any](v []T) Array {
	if v == nil {
		return Array{}
	}
	buf := make([]T, len(v), max(len(v), 1))
	copy(buf, v)
	ptr := unsafe.Pointer(unsafe.SliceData(buf))
	pins[ptr] = buf
	return Array{Ptr: ptr, Len: len(buf), Cap: cap(buf)}
}

// TakeArray reconstitutes a native slice from a, re-taking ownership of the
// backing buffer without copying, so allocation counts stay symmetric with
// the to-boundary conversion that produced it. The triple must not be used
// (and must not be freed) afterward. The null encoding yields nil. A triple
// that was never boundary-allocated, or was already consumed, is a caller
// error and panics.
func TakeArray[T any](a Array) []T {
	if a.IsNull() {
		return nil
	}
	pinned, ok := pins[a.Ptr]
	if !ok {
		panic("core: take of unowned boundary buffer")
	}
	buf, ok := pinned.([]T)
	if !ok {
		panic("core: boundary buffer element type mismatch")
	}
	delete(pins, a.Ptr)
	return buf[:a.Len]
}

// FreeArray releases the buffer behind a without materializing its
// contents. No-op on the null encoding. Generated free functions for
// collections whose elements own memory release every element before
// calling this. Freeing the same live triple twice panics.
func FreeArray(a Array) {
	if a.IsNull() {
		return
	}
	if _, ok := pins[a.Ptr]; !ok {
		panic("core: double free of boundary buffer")
	}
	delete(pins, a.Ptr)
}
