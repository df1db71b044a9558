package codegen

import (
	"fmt"
	"strings"

	"github.com/telus-agcg/platform-ffi-common/internal/ownership"
	"github.com/telus-agcg/platform-ffi-common/internal/repr"
	"github.com/telus-agcg/platform-ffi-common/internal/shape"
)

// fieldInfo bundles everything the emitters need about one struct field.
type fieldInfo struct {
	name     string // native field name
	param    string // parameter name in generated signatures
	fs       *shape.Shape
	r        *repr.Representation
	optional bool
}

func (g *Generator) fieldInfos(sh *shape.Shape) []fieldInfo {
	fields := make([]fieldInfo, 0, len(sh.Fields))
	for _, f := range sh.Fields {
		r := g.syn.Synthesize(f.Shape)
		fields = append(fields, fieldInfo{
			name:  f.Name,
			param: paramName(f.Name),
			fs:    f.Shape,
			r:     r,
			optional: f.Shape.Kind == shape.KindOptional ||
				f.Shape.Kind == shape.KindOptionalCollection,
		})
	}
	return fields
}

func shellParams(fields []fieldInfo) []shellParam {
	params := make([]shellParam, len(fields))
	for i, f := range fields {
		params[i] = shellParam{name: f.param, r: f.r}
	}
	return params
}

// zeroValue is the failure/absence sentinel for a boundary Go type.
func zeroValue(r *repr.Representation) string {
	switch r.GoType {
	case "core.Handle":
		return "0"
	case "core.Array":
		return "core.Array{}"
	case "*byte":
		return "nil"
	}
	if r.Layout == repr.LayoutOptionRecord || r.Layout == repr.LayoutRecord {
		return r.GoType + "{}"
	}
	return r.GoType + "(0)"
}

// generateReference emits the conversion set for an opaque handle type:
// constructor, release, clone and one accessor per field.
func (g *Generator) generateReference(d *repr.Representation) string {
	var code strings.Builder
	name := d.Shape.Name
	snake := repr.SnakeCase(name)
	fields := g.fieldInfos(d.Shape)

	var init strings.Builder
	init.WriteString("\tcore.ClearLastErrMsg()\n")
	init.WriteString(fmt.Sprintf("\tvar v %s\n", name))
	for i, f := range fields {
		// A failed conversion still owns the arguments not yet consumed;
		// release them before returning the sentinel.
		var cleanup []string
		for _, rest := range fields[i+1:] {
			if ownership.Resolve(rest.r).Releases == ownership.Neither {
				continue
			}
			if call := releaseCall(rest.r, rest.param); call != "" {
				cleanup = append(cleanup, call)
			}
		}
		init.WriteString(g.emitFrom(f, f.param, "v."+f.name, "0", cleanup))
	}
	init.WriteString("\treturn core.NewHandle(&v)\n")
	code.WriteString(exportFunc(d.Symbols.Init, shellParams(fields), d, init.String()))

	code.WriteString(exportFunc(d.Symbols.Free, []shellParam{{name: "h", r: d}}, nil,
		"\tcore.ClearLastErrMsg()\n\tcore.FreeHandle(h)\n"))

	var clone strings.Builder
	clone.WriteString("\tcore.ClearLastErrMsg()\n")
	clone.WriteString(fmt.Sprintf("\tv := core.ResolveHandle(h).(*%s)\n", name))
	clone.WriteString("\tdup := *v\n")
	clone.WriteString("\treturn core.NewHandle(&dup)\n")
	code.WriteString(exportFunc(d.Symbols.Clone, []shellParam{{name: "h", r: d}}, d, clone.String()))

	for _, f := range fields {
		symbol := "get_" + snake + "_" + repr.SnakeCase(f.name)
		if f.optional {
			symbol = "get_optional_" + snake + "_" + repr.SnakeCase(f.name)
		}
		var getter strings.Builder
		getter.WriteString("\tcore.ClearLastErrMsg()\n")
		getter.WriteString(fmt.Sprintf("\tv := core.ResolveHandle(h).(*%s)\n", name))
		getter.WriteString(g.emitGetterReturn(f, "v."+f.name))
		code.WriteString(exportFunc(symbol, []shellParam{{name: "h", r: d}}, f.r, getter.String()))
	}

	return code.String()
}

// generateValue emits the flat record for a value type, its cgo bridges,
// conversion helpers, constructor and release.
func (g *Generator) generateValue(d *repr.Representation) string {
	var code strings.Builder
	name := d.Shape.Name
	rec := d.GoType
	fields := g.fieldInfos(d.Shape)

	code.WriteString(fmt.Sprintf("// %s is the flat boundary record for %s.\n", rec, name))
	code.WriteString(fmt.Sprintf("type %s struct {\n", rec))
	for _, f := range fields {
		code.WriteString(fmt.Sprintf("\t%s %s\n", f.name, f.r.GoType))
	}
	code.WriteString("}\n\n")

	code.WriteString(g.recordBridges(d, fields))

	code.WriteString(fmt.Sprintf("func new%s(v %s) %s {\n", rec, name, rec))
	code.WriteString(fmt.Sprintf("\tvar out %s\n", rec))
	for _, f := range fields {
		code.WriteString(g.emitTo(f, "v."+f.name, "out."+f.name))
	}
	code.WriteString("\treturn out\n")
	code.WriteString("}\n\n")

	code.WriteString(fmt.Sprintf("func take%s(rec %s) (%s, error) {\n", rec, rec, name))
	code.WriteString(fmt.Sprintf("\tvar out %s\n", name))
	for _, f := range fields {
		code.WriteString(g.emitFrom(f, "rec."+f.name, "out."+f.name, "out, err", nil))
	}
	code.WriteString("\treturn out, nil\n")
	code.WriteString("}\n\n")

	var init strings.Builder
	init.WriteString("\tcore.ClearLastErrMsg()\n")
	init.WriteString(fmt.Sprintf("\tvar out %s\n", rec))
	for _, f := range fields {
		init.WriteString(fmt.Sprintf("\tout.%s = %s\n", f.name, f.param))
	}
	init.WriteString("\treturn out\n")
	code.WriteString(exportFunc(d.Symbols.Init, shellParams(fields), d, init.String()))

	var free strings.Builder
	free.WriteString("\tcore.ClearLastErrMsg()\n")
	for _, f := range ownership.NestedReleases(d) {
		if call := releaseCall(f.Repr, "rec."+f.Name); call != "" {
			free.WriteString("\t" + call + "\n")
		}
	}
	code.WriteString(exportFunc(d.Symbols.Free, []shellParam{{name: "rec", r: d}}, nil, free.String()))

	return code.String()
}

// recordBridges emits the converters between a value type's Go-side record
// mirror and its cgo struct type. The shells use them at the export edge;
// field order matches the typedef.
func (g *Generator) recordBridges(d *repr.Representation, fields []fieldInfo) string {
	var code strings.Builder

	code.WriteString(fmt.Sprintf("func c%s(v %s) C.%s {\n", d.GoType, d.GoType, d.CType))
	code.WriteString(fmt.Sprintf("\treturn C.%s{\n", d.CType))
	for _, f := range fields {
		code.WriteString(fmt.Sprintf("\t\t%s: %s,\n", repr.SnakeCase(f.name), cFieldExpr(f.r, "v."+f.name)))
	}
	code.WriteString("\t}\n")
	code.WriteString("}\n\n")

	code.WriteString(fmt.Sprintf("func go%s(v C.%s) %s {\n", d.GoType, d.CType, d.GoType))
	code.WriteString(fmt.Sprintf("\treturn %s{\n", d.GoType))
	for _, f := range fields {
		code.WriteString(fmt.Sprintf("\t\t%s: %s,\n", f.name, goFieldExpr(f.r, "v."+repr.SnakeCase(f.name))))
	}
	code.WriteString("\t}\n")
	code.WriteString("}\n\n")

	return code.String()
}

// emitTo emits statements converting a native field to its boundary value.
// To-boundary conversion never fails.
func (g *Generator) emitTo(f fieldInfo, src, dst string) string {
	switch f.fs.Kind {
	case shape.KindOptional:
		return g.emitOptionalTo(f, src, dst)
	case shape.KindOptionalCollection:
		var b strings.Builder
		b.WriteString(fmt.Sprintf("\tif %s != nil {\n", src))
		b.WriteString(fmt.Sprintf("\t\t%s = %s\n", dst, g.toArrayExpr(f.r.Elem, "*"+src)))
		b.WriteString("\t}\n")
		return b.String()
	case shape.KindReference:
		var b strings.Builder
		b.WriteString("\t{\n")
		b.WriteString(fmt.Sprintf("\t\tdup := %s\n", src))
		b.WriteString(fmt.Sprintf("\t\t%s = core.NewHandle(&dup)\n", dst))
		b.WriteString("\t}\n")
		return b.String()
	default:
		return fmt.Sprintf("\t%s = %s\n", dst, g.toValueExpr(f.fs, f.r, src))
	}
}

func (g *Generator) emitOptionalTo(f fieldInfo, src, dst string) string {
	var b strings.Builder
	elem := f.fs.Elem
	switch f.r.Layout {
	case repr.LayoutOptionRecord:
		b.WriteString(fmt.Sprintf("\tif %s != nil {\n", src))
		b.WriteString(fmt.Sprintf("\t\t%s = %s{HasValue: true, Value: %s}\n",
			dst, f.r.GoType, g.toValueExpr(elem, f.r.Elem, "*"+src)))
		b.WriteString("\t}\n")
	default: // pointer layout, absence stays the zero value
		b.WriteString(fmt.Sprintf("\tif %s != nil {\n", src))
		if elem.Kind == shape.KindReference {
			b.WriteString(fmt.Sprintf("\t\tdup := *%s\n", src))
			b.WriteString(fmt.Sprintf("\t\t%s = core.NewHandle(&dup)\n", dst))
		} else {
			b.WriteString(fmt.Sprintf("\t\t%s = %s\n", dst, g.toValueExpr(elem, f.r.Elem, "*"+src)))
		}
		b.WriteString("\t}\n")
	}
	return b.String()
}

// toValueExpr is the single-expression to-boundary conversion for
// non-reference, non-optional shapes.
func (g *Generator) toValueExpr(fs *shape.Shape, r *repr.Representation, src string) string {
	switch fs.Kind {
	case shape.KindString:
		if fs.Name != "" {
			return fmt.Sprintf("core.NewCString(string(%s))", src)
		}
		return fmt.Sprintf("core.NewCString(%s)", src)
	case shape.KindIdentifier:
		return fmt.Sprintf("core.NewCString(%s.String())", src)
	case shape.KindTimestamp:
		g.needsTime = true
		return fmt.Sprintf("core.NewHandle(%s)", src)
	case shape.KindValue:
		return fmt.Sprintf("new%s(%s)", r.GoType, src)
	case shape.KindCollection:
		return g.toArrayExpr(r.Elem, src)
	case shape.KindRaw:
		return src
	default: // primitive, possibly aliased
		if fs.Name != "" {
			return fmt.Sprintf("%s(%s)", r.GoType, src)
		}
		return src
	}
}

// toArrayExpr converts a native slice to its boundary triple.
func (g *Generator) toArrayExpr(elem *repr.Representation, src string) string {
	switch elem.Shape.Kind {
	case shape.KindString:
		return fmt.Sprintf("core.NewStringArray(%s)", src)
	case shape.KindIdentifier:
		return fmt.Sprintf("new%sArray(%s)", token(elem), src)
	case shape.KindValue:
		return fmt.Sprintf("new%sFFIArray(%s)", token(elem), src)
	case shape.KindReference:
		return fmt.Sprintf("new%sHandleArray(%s)", token(elem), src)
	default:
		return fmt.Sprintf("core.NewArray(%s)", src)
	}
}

// emitGetterReturn emits the accessor body after the handle resolve.
func (g *Generator) emitGetterReturn(f fieldInfo, src string) string {
	var b strings.Builder
	switch f.fs.Kind {
	case shape.KindOptional:
		elem := f.fs.Elem
		if f.r.Layout == repr.LayoutOptionRecord {
			b.WriteString(fmt.Sprintf("\tif %s == nil {\n\t\treturn %s{}\n\t}\n", src, f.r.GoType))
			b.WriteString(fmt.Sprintf("\treturn %s{HasValue: true, Value: %s}\n",
				f.r.GoType, g.toValueExpr(elem, f.r.Elem, "*"+src)))
			return b.String()
		}
		b.WriteString(fmt.Sprintf("\tif %s == nil {\n\t\treturn %s\n\t}\n", src, zeroValue(f.r)))
		if elem.Kind == shape.KindReference {
			b.WriteString(fmt.Sprintf("\tdup := *%s\n", src))
			b.WriteString("\treturn core.NewHandle(&dup)\n")
			return b.String()
		}
		b.WriteString(fmt.Sprintf("\treturn %s\n", g.toValueExpr(elem, f.r.Elem, "*"+src)))
		return b.String()

	case shape.KindOptionalCollection:
		b.WriteString(fmt.Sprintf("\tif %s == nil {\n\t\treturn core.Array{}\n\t}\n", src))
		b.WriteString(fmt.Sprintf("\treturn %s\n", g.toArrayExpr(f.r.Elem, "*"+src)))
		return b.String()

	case shape.KindReference:
		b.WriteString(fmt.Sprintf("\tdup := %s\n", src))
		b.WriteString("\treturn core.NewHandle(&dup)\n")
		return b.String()

	default:
		b.WriteString(fmt.Sprintf("\treturn %s\n", g.toValueExpr(f.fs, f.r, src)))
		return b.String()
	}
}

// emitFrom emits statements reconstituting a native field from its boundary
// value, consuming it. onErr is the failure return expression; the
// last-error slot is set only at the exported-function level, so helpers
// propagate the error instead. cleanup lines release the still-owned
// sibling arguments on the constructor failure path; they run before the
// error message is set since the composite frees clear the slot on entry.
func (g *Generator) emitFrom(f fieldInfo, src, dst, onErr string, cleanup []string) string {
	setsSlot := onErr == "0"
	fail := func(indent string) string {
		var b strings.Builder
		b.WriteString(indent + "if err != nil {\n")
		if setsSlot {
			for _, call := range cleanup {
				b.WriteString(indent + "\t" + call + "\n")
			}
			b.WriteString(indent + "\tcore.SetLastErrMsg(err.Error())\n")
		}
		b.WriteString(indent + "\treturn " + onErr + "\n")
		b.WriteString(indent + "}\n")
		return b.String()
	}

	switch f.fs.Kind {
	case shape.KindOptional:
		return g.emitOptionalFrom(f, src, dst, fail)
	case shape.KindOptionalCollection:
		return g.emitOptionalCollectionFrom(f, src, dst, fail)
	case shape.KindCollection:
		return g.emitCollectionFrom(f.r.Elem, src, dst, "\t", fail)
	default:
		return g.emitScalarFrom(f.fs, f.r, src, dst, "\t", fail)
	}
}

func (g *Generator) emitScalarFrom(fs *shape.Shape, r *repr.Representation, src, dst, indent string, fail func(string) string) string {
	var b strings.Builder
	switch fs.Kind {
	case shape.KindString:
		if fs.Name != "" {
			b.WriteString(fmt.Sprintf("%s%s = %s(core.TakeCString(%s))\n", indent, dst, fs.Name, src))
		} else {
			b.WriteString(fmt.Sprintf("%s%s = core.TakeCString(%s)\n", indent, dst, src))
		}
	case shape.KindIdentifier:
		b.WriteString(indent + "{\n")
		b.WriteString(fmt.Sprintf("%s\tparsed, err := core.ParseUUID(core.TakeCString(%s))\n", indent, src))
		b.WriteString(fail(indent + "\t"))
		b.WriteString(fmt.Sprintf("%s\t%s = parsed\n", indent, dst))
		b.WriteString(indent + "}\n")
	case shape.KindTimestamp:
		g.needsTime = true
		b.WriteString(fmt.Sprintf("%s%s = core.TakeHandle(%s).(time.Time)\n", indent, dst, src))
	case shape.KindReference:
		b.WriteString(fmt.Sprintf("%s%s = *core.TakeHandle(%s).(*%s)\n", indent, dst, src, fs.Name))
	case shape.KindValue:
		b.WriteString(indent + "{\n")
		b.WriteString(fmt.Sprintf("%s\tvalue, err := take%s(%s)\n", indent, r.GoType, src))
		b.WriteString(fail(indent + "\t"))
		b.WriteString(fmt.Sprintf("%s\t%s = value\n", indent, dst))
		b.WriteString(indent + "}\n")
	case shape.KindRaw:
		b.WriteString(fmt.Sprintf("%s%s = %s\n", indent, dst, src))
	default: // primitive, possibly aliased
		if fs.Name != "" {
			b.WriteString(fmt.Sprintf("%s%s = %s(%s)\n", indent, dst, fs.Name, src))
		} else {
			b.WriteString(fmt.Sprintf("%s%s = %s\n", indent, dst, src))
		}
	}
	return b.String()
}

func (g *Generator) emitCollectionFrom(elem *repr.Representation, src, dst, indent string, fail func(string) string) string {
	var b strings.Builder
	switch elem.Shape.Kind {
	case shape.KindString:
		b.WriteString(fmt.Sprintf("%s%s = core.TakeStringArray(%s)\n", indent, dst, src))
	case shape.KindIdentifier, shape.KindValue, shape.KindReference:
		b.WriteString(indent + "{\n")
		b.WriteString(fmt.Sprintf("%s\tvalue, err := %s(%s)\n", indent, takeArrayHelper(elem), src))
		b.WriteString(fail(indent + "\t"))
		b.WriteString(fmt.Sprintf("%s\t%s = value\n", indent, dst))
		b.WriteString(indent + "}\n")
	default:
		b.WriteString(fmt.Sprintf("%s%s = core.TakeArray[%s](%s)\n", indent, dst, elemGoName(elem), src))
	}
	return b.String()
}

func (g *Generator) emitOptionalFrom(f fieldInfo, src, dst string, fail func(string) string) string {
	var b strings.Builder
	elem := f.fs.Elem
	elemRepr := f.r.Elem

	if f.r.Layout == repr.LayoutOptionRecord {
		b.WriteString(fmt.Sprintf("\tif %s.HasValue {\n", src))
		if elem.Kind == shape.KindValue {
			b.WriteString(fmt.Sprintf("\t\tvalue, err := take%s(%s.Value)\n", elemRepr.GoType, src))
			b.WriteString(fail("\t\t"))
		} else if elem.Name != "" && elem.Kind.IsPrimitive() {
			b.WriteString(fmt.Sprintf("\t\tvalue := %s(%s.Value)\n", elem.Name, src))
		} else {
			b.WriteString(fmt.Sprintf("\t\tvalue := %s.Value\n", src))
		}
		b.WriteString(fmt.Sprintf("\t\t%s = &value\n", dst))
		b.WriteString("\t}\n")
		return b.String()
	}

	guard := fmt.Sprintf("\tif %s != nil {\n", src)
	if elemRepr.GoType == "core.Handle" {
		guard = fmt.Sprintf("\tif %s != 0 {\n", src)
	}
	b.WriteString(guard)
	switch elem.Kind {
	case shape.KindString:
		if elem.Name != "" {
			b.WriteString(fmt.Sprintf("\t\tvalue := %s(core.TakeCString(%s))\n", elem.Name, src))
		} else {
			b.WriteString(fmt.Sprintf("\t\tvalue := core.TakeCString(%s)\n", src))
		}
	case shape.KindIdentifier:
		b.WriteString(fmt.Sprintf("\t\tvalue, err := core.ParseUUID(core.TakeCString(%s))\n", src))
		b.WriteString(fail("\t\t"))
	case shape.KindTimestamp:
		g.needsTime = true
		b.WriteString(fmt.Sprintf("\t\tvalue := core.TakeHandle(%s).(time.Time)\n", src))
	case shape.KindReference:
		b.WriteString(fmt.Sprintf("\t\tvalue := *core.TakeHandle(%s).(*%s)\n", src, elem.Name))
	}
	b.WriteString(fmt.Sprintf("\t\t%s = &value\n", dst))
	b.WriteString("\t}\n")
	return b.String()
}

func (g *Generator) emitOptionalCollectionFrom(f fieldInfo, src, dst string, fail func(string) string) string {
	var b strings.Builder
	elem := f.r.Elem
	b.WriteString(fmt.Sprintf("\tif !%s.IsNull() {\n", src))
	switch elem.Shape.Kind {
	case shape.KindString:
		b.WriteString(fmt.Sprintf("\t\tvalue := core.TakeStringArray(%s)\n", src))
	case shape.KindIdentifier, shape.KindValue, shape.KindReference:
		b.WriteString(fmt.Sprintf("\t\tvalue, err := %s(%s)\n", takeArrayHelper(elem), src))
		b.WriteString(fail("\t\t"))
	default:
		b.WriteString(fmt.Sprintf("\t\tvalue := core.TakeArray[%s](%s)\n", elemGoName(elem), src))
	}
	b.WriteString(fmt.Sprintf("\t\t%s = &value\n", dst))
	b.WriteString("\t}\n")
	return b.String()
}

// takeArrayHelper names the from-boundary helper for array elements that
// need per-element conversion.
func takeArrayHelper(elem *repr.Representation) string {
	switch elem.Shape.Kind {
	case shape.KindValue:
		return "take" + token(elem) + "FFIArray"
	case shape.KindReference:
		return "take" + token(elem) + "HandleArray"
	default:
		return "take" + token(elem) + "Array"
	}
}
