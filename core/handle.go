package core

// Handle is the pointer-sized opaque value that reference types cross the
// boundary as. Consumers never dereference a Handle; they pass it back to
// generated accessor functions and, exactly once, to the matching free
// function. The zero Handle is the null encoding.
type Handle uintptr

// handles maps live handles to the native values they own. Entries are
// created by to-boundary conversion and removed by FreeHandle or by
// TakeHandle when from-boundary conversion reconstitutes ownership.
var (
	handles    = make(map[Handle]any)
	nextHandle Handle = 1
)

// NewHandle boxes value behind a fresh boundary-owned handle. The caller of
// the generated function that produced the handle is responsible for
// releasing it exactly once.
func NewHandle(value any) Handle {
	h := nextHandle
	nextHandle++
	handles[h] = value
	return h
}

// ResolveHandle returns the value behind h without transferring ownership.
// This is the borrow path: the handle remains live and must still be freed
// by its owner. Resolving a stale or zero handle is a caller error and
// panics; the boundary contract makes no attempt to survive it.
func ResolveHandle(h Handle) any {
	v, ok := handles[h]
	if !ok {
		panic("core: resolve of invalid boundary handle")
	}
	return v
}

// TakeHandle returns the value behind h and releases the handle in the same
// step. From-boundary conversion uses this to re-take ownership of a value
// the consumer is passing back; the handle must not be used afterward.
func TakeHandle(h Handle) any {
	v, ok := handles[h]
	if !ok {
		panic("core: take of invalid boundary handle")
	}
	delete(handles, h)
	return v
}

// FreeHandle releases the value behind h. Freeing the zero handle is a
// no-op, matching the null-pointer contract of every generated free
// function. Freeing a live handle twice panics: the double free is the
// caller's bug, and guarding it would only mask that bug.
func FreeHandle(h Handle) {
	if h == 0 {
		return
	}
	if _, ok := handles[h]; !ok {
		panic("core: double free of boundary handle")
	}
	delete(handles, h)
}

// LiveHandles reports the number of currently live handles. Intended for
// leak assertions in tests.
func LiveHandles() int {
	return len(handles)
}
