// Package repr derives the boundary-safe representation for every
// classified shape: its memory layout class, its type spellings on each
// side of the boundary, and the deterministic symbol names of its generated
// conversion functions. Synthesis is idempotent: the same shape always
// yields the same representation, and a representation is synthesized at
// most once per distinct shape key.
package repr

import "github.com/telus-agcg/platform-ffi-common/internal/shape"

// Layout is the memory-layout class of a boundary representation. Every
// layout is stable and unambiguous across the boundary; nothing native-only
// is ever embedded.
type Layout uint8

const (
	// LayoutRawValue crosses by value with no conversion: primitives and
	// raw-declared scalars.
	LayoutRawValue Layout = iota
	// LayoutHandle crosses as a pointer-sized opaque handle: reference
	// types and boxed timestamps.
	LayoutHandle
	// LayoutText crosses as a boundary-owned null-terminated buffer:
	// strings and textual identifiers.
	LayoutText
	// LayoutRecord crosses as a flat C struct mirroring the native fields
	// with boundary-safe substitutions: value types.
	LayoutRecord
	// LayoutOptionRecord crosses as {has_value, value} behind a nullable
	// pointer: optionals of by-value layouts.
	LayoutOptionRecord
	// LayoutPointer reuses the element's own pointer representation with
	// null encoding absence: optionals of handles, text and records.
	LayoutPointer
	// LayoutArray crosses as the {ptr, len, cap} triple: collections and
	// optional collections.
	LayoutArray
)

var layoutNames = [...]string{
	LayoutRawValue:     "raw_value",
	LayoutHandle:       "handle",
	LayoutText:         "text",
	LayoutRecord:       "record",
	LayoutOptionRecord: "option_record",
	LayoutPointer:      "pointer",
	LayoutArray:        "array",
}

func (l Layout) String() string {
	if int(l) < len(layoutNames) {
		return layoutNames[l]
	}
	return "unknown"
}

// Symbols holds the generated function names bound to a representation.
// Empty entries mean the representation has no function of that role (a
// primitive needs no free function; only reference types have a clone).
type Symbols struct {
	// TypeName is the exported boundary type: the C typedef for handles
	// and records, FFIArrayT for collections, OptionT for option records.
	TypeName string
	Init     string
	Free     string
	Clone    string
}

// Field is one substituted field of a record representation.
type Field struct {
	Name string
	Repr *Representation
}

// Representation is the boundary-layout descriptor tied 1:1 to a shape.
type Representation struct {
	Shape  *shape.Shape
	Layout Layout

	// CType is the boundary-side C spelling ("uint32_t", "plot_t",
	// "char *", "ffi_array_string_t").
	CType string
	// GoType is the spelling used in the generated cgo source
	// ("uint32", "core.Handle", "*byte", "core.Array").
	GoType string
	// ConsumerType is the client-language native type ("UInt32", "Plot",
	// "String", "Date").
	ConsumerType string

	// Elem is the element representation for wrapper layouts.
	Elem *Representation
	// Fields are the substituted fields of a record layout.
	Fields []Field

	Symbols Symbols
}

// NullEncodesAbsence reports whether the representation encodes absence
// with a null pointer rather than a presence flag.
func (r *Representation) NullEncodesAbsence() bool {
	switch r.Layout {
	case LayoutPointer, LayoutArray, LayoutText, LayoutHandle:
		return true
	default:
		return false
	}
}
