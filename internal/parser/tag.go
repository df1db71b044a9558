package parser

import (
	"fmt"
	"strings"
)

// FieldAttrs holds parsed `ffi` struct tag options for one field.
type FieldAttrs struct {
	// Raw forces raw passthrough for the field, bypassing structural
	// classification (for named scalar types the classifier would
	// otherwise treat as opaque).
	Raw bool
	// Skip excludes the field from the generated surface entirely: no
	// accessor, no initializer argument.
	Skip bool
}

// ParseTag parses an `ffi` struct tag value.
//
// Semantics:
//   - `ffi:"-"`   : skip this field
//   - `ffi:"raw"` : expose the field as a raw value
//
// Options are comma-separated; "-" must stand alone.
func ParseTag(tag string) (*FieldAttrs, error) {
	attrs := &FieldAttrs{}
	if tag == "" {
		return attrs, nil
	}

	if tag == "-" {
		attrs.Skip = true
		return attrs, nil
	}

	for _, opt := range strings.Split(tag, ",") {
		switch strings.TrimSpace(opt) {
		case "raw":
			attrs.Raw = true
		case "-":
			return nil, fmt.Errorf(`"-" must be the only ffi tag option`)
		case "":
		default:
			return nil, fmt.Errorf("unknown ffi tag option: %q", opt)
		}
	}

	return attrs, nil
}
