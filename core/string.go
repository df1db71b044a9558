package core

import "unsafe"

// Strings cross the boundary as null-terminated byte buffers owned by the
// boundary side. The consumer copies the text into its own representation
// and then asks for a release; the buffer must not be touched afterward.

// NewCString allocates a boundary-owned null-terminated copy of s and
// returns a pointer to its first byte.
func NewCString(s string) *byte {
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	ptr := unsafe.Pointer(unsafe.SliceData(buf))
	pins[ptr] = buf
	return (*byte)(ptr)
}

// GoString copies the null-terminated text at p into a native string
// without transferring ownership. A nil pointer yields the empty string.
func GoString(p *byte) string {
	if p == nil {
		return ""
	}
	var n int
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}

// TakeCString copies the text at p into a native string and releases the
// boundary allocation in the same step. Used by from-boundary conversion
// when the consumer hands a boundary-owned string back.
func TakeCString(p *byte) string {
	s := GoString(p)
	FreeCString(p)
	return s
}

// FreeCString releases a string buffer produced by NewCString. No-op on
// nil. The pointer must not be used after this call; freeing it twice
// panics.
func FreeCString(p *byte) {
	if p == nil {
		return
	}
	ptr := unsafe.Pointer(p)
	if _, ok := pins[ptr]; !ok {
		panic("core: double free of boundary string")
	}
	delete(pins, ptr)
}

// NewStringArray converts a native string slice into an array of
// boundary-owned C strings. Each element is allocated with NewCString; the
// buffer and every element belong to the consumer until the matching
// release. A nil slice produces the null encoding.
func NewStringArray(v []string) Array {
	if v == nil {
		return Array{}
	}
	elems := make([]*byte, len(v))
	for i, s := range v {
		elems[i] = NewCString(s)
	}
	return NewArray(elems)
}

// TakeStringArray reconstitutes a native string slice from a, consuming
// the element strings and the backing buffer exactly once. The null
// encoding yields nil.
func TakeStringArray(a Array) []string {
	elems := TakeArray[*byte](a)
	if elems == nil {
		return nil
	}
	out := make([]string, len(elems))
	for i, p := range elems {
		out[i] = TakeCString(p)
	}
	return out
}

// FreeStringArray releases every element string and then the backing
// buffer. No-op on the null encoding.
func FreeStringArray(a Array) {
	if a.IsNull() {
		return
	}
	for _, p := range TakeArray[*byte](a) {
		FreeCString(p)
	}
}
