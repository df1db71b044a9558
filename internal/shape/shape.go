package shape

import "fmt"

// Shape is the classification result for one native type: a closed tagged
// variant over Kind. Wrapper shapes hold the shape of the wrapped element;
// composite shapes hold the classified fields. Shapes are interned by the
// Registry, so two references to the same declared type share one *Shape.
type Shape struct {
	Kind Kind
	// Name is the declared native type name. Empty for anonymous builtin
	// spellings ("uint32", "[]string"); set for declared types and for
	// aliases, which classify as their underlying type but keep their own
	// name for generated symbols.
	Name string
	// Elem is the wrapped element for Optional, Collection and
	// OptionalCollection shapes.
	Elem *Shape
	// Fields holds the classified fields of Value and Reference shapes,
	// in declaration order.
	Fields []Field
	// Under is the primitive kind beneath a Raw shape; the header emitter
	// needs it for the typedef width.
	Under Kind
}

// Field is one classified field of a composite shape.
type Field struct {
	Name  string
	Shape *Shape
}

// Key returns the canonical identity of s. Representations and conversion
// sets are generated once per distinct key; later references reuse the same
// generated set. Named shapes keep their own key even when structurally
// equal to a builtin, so an alias gets its own symbols; unnamed shapes
// collapse structurally, so every []int32 in the type graph shares one
// generated array type.
func (s *Shape) Key() string {
	base := s.Kind.String()
	if s.Name != "" {
		base = base + ":" + s.Name
	}
	if s.Elem != nil {
		return base + "<" + s.Elem.Key() + ">"
	}
	return base
}

func (s *Shape) String() string {
	if s.Elem != nil {
		return fmt.Sprintf("%s<%s>", s.Kind, s.Elem)
	}
	if s.Name != "" {
		return fmt.Sprintf("%s(%s)", s.Kind, s.Name)
	}
	return s.Kind.String()
}

// UnsupportedTypeError is the generation-time failure for a declaration the
// classifier cannot map onto a known pattern. It aborts generation; there
// is no runtime counterpart.
type UnsupportedTypeError struct {
	GoType string
	Reason string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported type %s: %s", e.GoType, e.Reason)
}
