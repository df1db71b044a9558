package parser

import (
	"fmt"
	"strings"
)

// TypeKind is the declared disposition of an annotated type.
type TypeKind int

const (
	// Reference types cross the boundary as opaque handles.
	Reference TypeKind = iota
	// Value types cross as flat records, copied field by field.
	Value
	// Raw types pass through the boundary unchanged (C-enum analog).
	Raw
)

func (k TypeKind) String() string {
	switch k {
	case Reference:
		return "reference"
	case Value:
		return "value"
	case Raw:
		return "raw"
	default:
		return "unknown"
	}
}

// TypeAnnotation holds a parsed @ffi annotation.
type TypeAnnotation struct {
	Kind TypeKind
}

// ParseAnnotation parses an @ffi annotation from a cleaned comment line.
//
// Expected format:
//
//	// @ffi
//	// @ffi value
//	// @ffi raw
//
// A bare @ffi declares a reference type.
func ParseAnnotation(comment string) (*TypeAnnotation, error) {
	rest, ok := strings.CutPrefix(comment, "@ffi")
	if !ok {
		return nil, fmt.Errorf("no @ffi annotation found")
	}
	rest = strings.TrimSpace(rest)

	switch rest {
	case "":
		return &TypeAnnotation{Kind: Reference}, nil
	case "value":
		return &TypeAnnotation{Kind: Value}, nil
	case "raw":
		return &TypeAnnotation{Kind: Raw}, nil
	default:
		return nil, fmt.Errorf("unknown @ffi parameter: %s", rest)
	}
}

// FindAnnotation searches comment lines for an @ffi annotation. A malformed
// annotation is an error rather than a silent skip, so a typo can't quietly
// drop a type from the generated surface.
func FindAnnotation(comments []string) (*TypeAnnotation, bool, error) {
	for _, comment := range comments {
		if !strings.HasPrefix(comment, "@ffi") {
			continue
		}
		anno, err := ParseAnnotation(comment)
		if err != nil {
			return nil, false, err
		}
		return anno, true, nil
	}
	return nil, false, nil
}

// CleanComment removes comment markers from a line.
// "// @ffi value" → "@ffi value"
// "/* @ffi */" → "@ffi"
func CleanComment(line string) string {
	line = strings.TrimSpace(line)

	if strings.HasPrefix(line, "//") {
		return strings.TrimSpace(strings.TrimPrefix(line, "//"))
	}

	if strings.HasPrefix(line, "/*") && strings.HasSuffix(line, "*/") {
		line = strings.TrimPrefix(line, "/*")
		line = strings.TrimSuffix(line, "*/")
		return strings.TrimSpace(line)
	}

	return line
}
