package shape

import (
	"fmt"
	"strings"

	"github.com/telus-agcg/platform-ffi-common/internal/parser"
)

// Registry tracks declared types and aliases across input files and interns
// every classified shape. Interning is what guarantees the reuse invariant:
// classification is pure over the registered declarations, and repeated
// classification of the same spelling returns the same *Shape.
type Registry struct {
	decls     map[string]*parser.TypeDecl
	declOrder []string
	aliases   map[string]string
	shapes    map[string]*Shape
}

func NewRegistry() *Registry {
	return &Registry{
		decls:   make(map[string]*parser.TypeDecl),
		aliases: make(map[string]string),
		shapes:  make(map[string]*Shape),
	}
}

// AddFile registers every declaration and alias from a parsed file.
// Classification happens later; registration must complete first so that
// forward references between files resolve.
func (r *Registry) AddFile(f *parser.File) error {
	for _, decl := range f.Types {
		if _, dup := r.decls[decl.Name]; dup {
			return fmt.Errorf("duplicate declaration of %s", decl.Name)
		}
		r.decls[decl.Name] = decl
		r.declOrder = append(r.declOrder, decl.Name)
	}
	for _, alias := range f.Aliases {
		if _, dup := r.aliases[alias.Name]; dup {
			return fmt.Errorf("duplicate alias %s", alias.Name)
		}
		r.aliases[alias.Name] = alias.Underlying
	}
	return nil
}

// ResolveAlias resolves name transitively to its underlying type spelling,
// returning name unchanged if it is not an alias.
func (r *Registry) ResolveAlias(name string) string {
	for {
		underlying, ok := r.aliases[name]
		if !ok {
			return name
		}
		name = underlying
	}
}

// DeclNames returns the registered declaration names in registration order.
// Generation walks this list so output is deterministic across runs.
func (r *Registry) DeclNames() []string {
	return r.declOrder
}

// Classify maps a textual Go type onto exactly one Shape, or fails with
// UnsupportedTypeError. Resolution order: wrapper spellings one level deep,
// literal primitives, known textual and timestamp types, aliases
// (transitively), then declared composite types.
func (r *Registry) Classify(goType string) (*Shape, error) {
	goType = strings.TrimSpace(goType)
	if s, ok := r.shapes[goType]; ok {
		return s, nil
	}

	s, err := r.classify(goType)
	if err != nil {
		return nil, err
	}
	r.shapes[goType] = s
	return s, nil
}

// ClassifyField classifies one struct field, honoring the raw attribute
// override: `ffi:"raw"` bypasses structural classification and exposes the
// field's (alias-resolved) type as a raw passthrough value.
func (r *Registry) ClassifyField(f parser.Field) (*Shape, error) {
	if f.Attrs != nil && f.Attrs.Raw {
		underlying := r.ResolveAlias(f.GoType)
		if decl, ok := r.decls[underlying]; ok && decl.Anno.Kind == parser.Raw {
			// Already a raw declaration; the override is redundant.
			return r.Classify(f.GoType)
		}
		under, ok := primitiveKinds[underlying]
		if !ok {
			return nil, &UnsupportedTypeError{GoType: f.GoType, Reason: "raw override requires a fixed-width scalar type"}
		}
		key := "raw!" + f.GoType
		if s, ok := r.shapes[key]; ok {
			return s, nil
		}
		s := &Shape{Kind: KindRaw, Name: f.GoType, Under: under}
		r.shapes[key] = s
		return s, nil
	}
	return r.Classify(f.GoType)
}

func (r *Registry) classify(goType string) (*Shape, error) {
	// Optional: *T or *[]T. One level only; OptionalCollection is the
	// single sanctioned double wrap.
	if inner, ok := strings.CutPrefix(goType, "*"); ok {
		if strings.HasPrefix(inner, "*") {
			return nil, &UnsupportedTypeError{GoType: goType, Reason: "nested optionals are not supported"}
		}
		if elem, ok := strings.CutPrefix(inner, "[]"); ok {
			elemShape, err := r.classifyElement(goType, elem)
			if err != nil {
				return nil, err
			}
			return &Shape{Kind: KindOptionalCollection, Elem: elemShape}, nil
		}
		elemShape, err := r.classifyElement(goType, inner)
		if err != nil {
			return nil, err
		}
		return &Shape{Kind: KindOptional, Elem: elemShape}, nil
	}

	// Collection: []T.
	if elem, ok := strings.CutPrefix(goType, "[]"); ok {
		elemShape, err := r.classifyElement(goType, elem)
		if err != nil {
			return nil, err
		}
		return &Shape{Kind: KindCollection, Elem: elemShape}, nil
	}

	return r.classifyBase(goType)
}

// classifyElement classifies the element of a wrapper spelling and rejects
// any further nesting.
func (r *Registry) classifyElement(outer, elem string) (*Shape, error) {
	if strings.HasPrefix(elem, "*") || strings.HasPrefix(elem, "[]") {
		return nil, &UnsupportedTypeError{GoType: outer, Reason: "nesting beyond one optional/collection level is not supported"}
	}
	return r.Classify(elem)
}

func (r *Registry) classifyBase(goType string) (*Shape, error) {
	if kind, ok := primitiveKinds[goType]; ok {
		return &Shape{Kind: kind}, nil
	}

	switch goType {
	case "string":
		return &Shape{Kind: KindString}, nil
	case "UUID", "uuid.UUID", "core.UUID":
		return &Shape{Kind: KindIdentifier}, nil
	case "time.Time":
		return &Shape{Kind: KindTimestamp}, nil
	case "int", "uint", "uintptr":
		return nil, &UnsupportedTypeError{GoType: goType, Reason: "platform-dependent width; use a fixed-width type"}
	}

	// Alias: classify as the underlying type, keep the alias's own name
	// for generated symbols.
	if underlying, ok := r.aliases[goType]; ok {
		base, err := r.classifyBase(r.ResolveAlias(underlying))
		if err != nil {
			return nil, err
		}
		if base.Kind == KindValue || base.Kind == KindReference {
			return base, nil
		}
		aliased := *base
		aliased.Name = goType
		return &aliased, nil
	}

	decl, ok := r.decls[goType]
	if !ok {
		return nil, &UnsupportedTypeError{GoType: goType, Reason: "no declaration or derivable layout"}
	}
	return r.classifyDecl(decl)
}

func (r *Registry) classifyDecl(decl *parser.TypeDecl) (*Shape, error) {
	var kind Kind
	switch decl.Anno.Kind {
	case parser.Raw:
		kind = KindRaw
	case parser.Value:
		kind = KindValue
	case parser.Reference:
		kind = KindReference
	}

	s := &Shape{Kind: kind, Name: decl.Name}
	if kind == KindRaw {
		under, ok := primitiveKinds[r.ResolveAlias(decl.Underlying)]
		if !ok {
			return nil, &UnsupportedTypeError{GoType: decl.Name, Reason: "raw declarations require a fixed-width scalar underlying type"}
		}
		s.Under = under
	}
	// Intern before descending so self references through an optional or
	// collection resolve to this same shape.
	r.shapes[decl.Name] = s

	for _, f := range decl.Fields {
		fs, err := r.ClassifyField(f)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", decl.Name, f.Name, err)
		}
		s.Fields = append(s.Fields, Field{Name: f.Name, Shape: fs})
	}
	return s, nil
}
