package parser

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"strings"
)

// TypeDecl represents a parsed type with an @ffi annotation.
type TypeDecl struct {
	Name       string
	Anno       *TypeAnnotation
	Fields     []Field // nil for raw scalar declarations
	Underlying string  // underlying scalar type of a raw declaration
}

// Field represents one struct field of an annotated type.
type Field struct {
	Name   string
	GoType string // textual type: "uint32", "*string", "[]Crop", "*[]string"
	Attrs  *FieldAttrs
}

// AliasDecl records a named type whose underlying type is another named or
// scalar type, e.g. `type FieldID = string` or `type Acres uint64`. Aliases
// classify as their underlying type but keep their own name for symbols.
type AliasDecl struct {
	Name       string
	Underlying string
}

// File is everything the front end extracts from one source file.
type File struct {
	Package string
	Types   []*TypeDecl
	Aliases []AliasDecl
}

// ParseFile parses a Go source file and extracts @ffi-annotated types and
// alias declarations.
func ParseFile(filename string) (*File, error) {
	return ParseSource(filename, nil)
}

// ParseSource is ParseFile over in-memory source. src follows the contract
// of go/parser.ParseFile (nil means read filename from disk).
func ParseSource(filename string, src any) (*File, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	return extract(file)
}

func extract(file *ast.File) (*File, error) {
	out := &File{Package: file.Name.Name}

	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}

		for _, spec := range genDecl.Specs {
			typeSpec := spec.(*ast.TypeSpec)
			anno, found, err := extractAnnotation(genDecl.Doc)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", typeSpec.Name.Name, err)
			}

			switch t := typeSpec.Type.(type) {
			case *ast.StructType:
				if !found {
					continue // not part of the generated surface
				}
				if anno.Kind == Raw {
					return nil, fmt.Errorf("%s: @ffi raw is only valid on scalar type declarations", typeSpec.Name.Name)
				}
				fields, err := extractFields(typeSpec.Name.Name, t)
				if err != nil {
					return nil, err
				}
				out.Types = append(out.Types, &TypeDecl{
					Name:   typeSpec.Name.Name,
					Anno:   anno,
					Fields: fields,
				})

			case *ast.Ident, *ast.SelectorExpr:
				if found {
					if anno.Kind != Raw {
						return nil, fmt.Errorf("%s: scalar declarations only support @ffi raw", typeSpec.Name.Name)
					}
					out.Types = append(out.Types, &TypeDecl{
						Name:       typeSpec.Name.Name,
						Anno:       anno,
						Underlying: typeToString(typeSpec.Type),
					})
					continue
				}
				// Unannotated named scalar: record as an alias so that
				// fields typed with it classify as the underlying type.
				out.Aliases = append(out.Aliases, AliasDecl{
					Name:       typeSpec.Name.Name,
					Underlying: typeToString(typeSpec.Type),
				})

			default:
				if found {
					return nil, fmt.Errorf("%s: @ffi is not supported on this declaration", typeSpec.Name.Name)
				}
			}
		}
	}

	return out, nil
}

func extractAnnotation(doc *ast.CommentGroup) (*TypeAnnotation, bool, error) {
	if doc == nil {
		return nil, false, nil
	}

	var lines []string
	for _, comment := range doc.List {
		lines = append(lines, CleanComment(comment.Text))
	}

	return FindAnnotation(lines)
}

func extractFields(typeName string, structType *ast.StructType) ([]Field, error) {
	var fields []Field

	for _, field := range structType.Fields.List {
		if len(field.Names) == 0 {
			return nil, fmt.Errorf("%s: embedded fields are not supported", typeName)
		}

		attrs := &FieldAttrs{}
		if field.Tag != nil {
			tag := reflect.StructTag(strings.Trim(field.Tag.Value, "`"))
			parsed, err := ParseTag(tag.Get("ffi"))
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", typeName, field.Names[0].Name, err)
			}
			attrs = parsed
		}
		if attrs.Skip {
			continue
		}

		for _, name := range field.Names {
			fields = append(fields, Field{
				Name:   name.Name,
				GoType: typeToString(field.Type),
				Attrs:  attrs,
			})
		}
	}

	return fields, nil
}

// typeToString converts an AST type expression to its textual form. The
// classifier works over these strings; anything it can't recognize fails
// classification there, not here.
func typeToString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name

	case *ast.SelectorExpr:
		// Qualified type: time.Time, uuid.UUID
		return typeToString(t.X) + "." + t.Sel.Name

	case *ast.StarExpr:
		return "*" + typeToString(t.X)

	case *ast.ArrayType:
		if t.Len == nil {
			return "[]" + typeToString(t.Elt)
		}
		return fmt.Sprintf("[%s]%s", exprToString(t.Len), typeToString(t.Elt))

	case *ast.MapType:
		return "map[" + typeToString(t.Key) + "]" + typeToString(t.Value)

	default:
		return "unsupported"
	}
}

func exprToString(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.BasicLit:
		return e.Value
	case *ast.Ident:
		return e.Name
	default:
		return "?"
	}
}
