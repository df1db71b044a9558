package core

import "unsafe"

// NewBox moves v into a boundary-allocated cell and returns its pointer.
// Optionals of by-value shapes cross this way: null means absent, non-null
// points at the raw value.
func NewBox[T any](v T) unsafe.Pointer {
	cell := new(T)
	*cell = v
	ptr := unsafe.Pointer(cell)
	pins[ptr] = cell
	return ptr
}

// TakeBox reconstitutes the boxed value, re-taking ownership of the cell.
// A nil pointer yields the zero value with ok false.
func TakeBox[T any](ptr unsafe.Pointer) (T, bool) {
	if ptr == nil {
		var zero T
		return zero, false
	}
	pinned, ok := pins[ptr]
	if !ok {
		panic("core: take of unowned boundary box")
	}
	cell, ok := pinned.(*T)
	if !ok {
		panic("core: boundary box type mismatch")
	}
	delete(pins, ptr)
	return *cell, true
}

// FreeBox releases a boxed optional. No-op on nil; a second free of the
// same live pointer panics.
func FreeBox(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	if _, ok := pins[ptr]; !ok {
		panic("core: double free of boundary box")
	}
	delete(pins, ptr)
}
