package codegen

import (
	"fmt"
	"strings"

	"github.com/telus-agcg/platform-ffi-common/internal/ownership"
	"github.com/telus-agcg/platform-ffi-common/internal/repr"
	"github.com/telus-agcg/platform-ffi-common/internal/shape"
)

// generateArraySupport emits the shared conversion set for one array shape:
// the boundary-side init/free exports plus, for elements that need
// per-element conversion, the file-local slice helpers. Emitted once per
// distinct element shape.
func (g *Generator) generateArraySupport(s *repr.Representation) string {
	var code strings.Builder
	elem := s.Elem

	initParams := []shellParam{{name: "ptr", typ: "unsafe.Pointer"}, {name: "n", typ: "int32"}}
	freeParams := []shellParam{{name: "a", r: s}}

	switch elem.Shape.Kind {
	case shape.KindString:
		code.WriteString(g.textArrayExports(s, initParams, freeParams))

	case shape.KindIdentifier:
		tok := token(s)
		code.WriteString(fmt.Sprintf("func new%sArray(v []%s) core.Array {\n", tok, elemGoName(elem)))
		code.WriteString("\tif v == nil {\n\t\treturn core.Array{}\n\t}\n")
		code.WriteString("\ttexts := make([]string, len(v))\n")
		code.WriteString("\tfor i := range v {\n\t\ttexts[i] = v[i].String()\n\t}\n")
		code.WriteString("\treturn core.NewStringArray(texts)\n")
		code.WriteString("}\n\n")

		code.WriteString(fmt.Sprintf("func take%sArray(a core.Array) ([]%s, error) {\n", tok, elemGoName(elem)))
		code.WriteString("\ttexts := core.TakeStringArray(a)\n")
		code.WriteString("\tif texts == nil {\n\t\treturn nil, nil\n\t}\n")
		code.WriteString(fmt.Sprintf("\tout := make([]%s, len(texts))\n", elemGoName(elem)))
		code.WriteString("\tfor i := range texts {\n")
		code.WriteString("\t\tparsed, err := core.ParseUUID(texts[i])\n")
		code.WriteString("\t\tif err != nil {\n\t\t\treturn nil, err\n\t\t}\n")
		code.WriteString("\t\tout[i] = parsed\n")
		code.WriteString("\t}\n")
		code.WriteString("\treturn out, nil\n")
		code.WriteString("}\n\n")

		code.WriteString(g.textArrayExports(s, initParams, freeParams))

	case shape.KindValue:
		tok := token(s)
		rec := elem.GoType
		code.WriteString(fmt.Sprintf("func new%sFFIArray(v []%s) core.Array {\n", tok, elem.Shape.Name))
		code.WriteString("\tif v == nil {\n\t\treturn core.Array{}\n\t}\n")
		code.WriteString(fmt.Sprintf("\tout := make([]%s, len(v))\n", rec))
		code.WriteString(fmt.Sprintf("\tfor i := range v {\n\t\tout[i] = new%s(v[i])\n\t}\n", rec))
		code.WriteString("\treturn core.NewArray(out)\n")
		code.WriteString("}\n\n")

		code.WriteString(fmt.Sprintf("func take%sFFIArray(a core.Array) ([]%s, error) {\n", tok, elem.Shape.Name))
		code.WriteString(fmt.Sprintf("\trecs := core.TakeArray[%s](a)\n", rec))
		code.WriteString("\tif recs == nil {\n\t\treturn nil, nil\n\t}\n")
		code.WriteString(fmt.Sprintf("\tout := make([]%s, len(recs))\n", elem.Shape.Name))
		code.WriteString("\tfor i := range recs {\n")
		code.WriteString(fmt.Sprintf("\t\tvalue, err := take%s(recs[i])\n", rec))
		code.WriteString("\t\tif err != nil {\n\t\t\treturn nil, err\n\t\t}\n")
		code.WriteString("\t\tout[i] = value\n")
		code.WriteString("\t}\n")
		code.WriteString("\treturn out, nil\n")
		code.WriteString("}\n\n")

		var init strings.Builder
		init.WriteString("\tcore.ClearLastErrMsg()\n")
		init.WriteString("\tif ptr == nil {\n\t\treturn core.Array{}\n\t}\n")
		init.WriteString(fmt.Sprintf("\trecs := unsafe.Slice((*%s)(ptr), int(n))\n", rec))
		init.WriteString(fmt.Sprintf("\treturn core.NewArray(append([]%s(nil), recs...))\n", rec))
		code.WriteString(exportFunc(s.Symbols.Init, initParams, s, init.String()))

		var free strings.Builder
		free.WriteString("\tcore.ClearLastErrMsg()\n")
		if len(ownership.NestedReleases(elem)) > 0 {
			free.WriteString("\tif a.IsNull() {\n\t\treturn\n\t}\n")
			free.WriteString(fmt.Sprintf("\tfor _, rec := range core.TakeArray[%s](a) {\n", rec))
			free.WriteString(fmt.Sprintf("\t\t%s(rec)\n", implName(elem.Symbols.Free)))
			free.WriteString("\t}\n")
		} else {
			free.WriteString("\tcore.FreeArray(a)\n")
		}
		code.WriteString(exportFunc(s.Symbols.Free, freeParams, nil, free.String()))

	case shape.KindReference:
		tok := token(s)
		native := elem.Shape.Name
		code.WriteString(fmt.Sprintf("func new%sHandleArray(v []%s) core.Array {\n", tok, native))
		code.WriteString("\tif v == nil {\n\t\treturn core.Array{}\n\t}\n")
		code.WriteString("\ths := make([]core.Handle, len(v))\n")
		code.WriteString("\tfor i := range v {\n")
		code.WriteString("\t\tdup := v[i]\n")
		code.WriteString("\t\ths[i] = core.NewHandle(&dup)\n")
		code.WriteString("\t}\n")
		code.WriteString("\treturn core.NewArray(hs)\n")
		code.WriteString("}\n\n")

		code.WriteString(fmt.Sprintf("func take%sHandleArray(a core.Array) ([]%s, error) {\n", tok, native))
		code.WriteString("\ths := core.TakeArray[core.Handle](a)\n")
		code.WriteString("\tif hs == nil {\n\t\treturn nil, nil\n\t}\n")
		code.WriteString(fmt.Sprintf("\tout := make([]%s, len(hs))\n", native))
		code.WriteString("\tfor i := range hs {\n")
		code.WriteString(fmt.Sprintf("\t\tout[i] = *core.TakeHandle(hs[i]).(*%s)\n", native))
		code.WriteString("\t}\n")
		code.WriteString("\treturn out, nil\n")
		code.WriteString("}\n\n")

		var init strings.Builder
		init.WriteString("\tcore.ClearLastErrMsg()\n")
		init.WriteString("\tif ptr == nil {\n\t\treturn core.Array{}\n\t}\n")
		init.WriteString("\ths := unsafe.Slice((*core.Handle)(ptr), int(n))\n")
		init.WriteString("\towned := make([]core.Handle, len(hs))\n")
		init.WriteString("\tfor i := range hs {\n")
		init.WriteString(fmt.Sprintf("\t\tdup := *core.ResolveHandle(hs[i]).(*%s)\n", native))
		init.WriteString("\t\towned[i] = core.NewHandle(&dup)\n")
		init.WriteString("\t}\n")
		init.WriteString("\treturn core.NewArray(owned)\n")
		code.WriteString(exportFunc(s.Symbols.Init, initParams, s, init.String()))

		var free strings.Builder
		free.WriteString("\tcore.ClearLastErrMsg()\n")
		free.WriteString("\tif a.IsNull() {\n\t\treturn\n\t}\n")
		free.WriteString("\tfor _, h := range core.TakeArray[core.Handle](a) {\n")
		free.WriteString("\t\tcore.FreeHandle(h)\n")
		free.WriteString("\t}\n")
		code.WriteString(exportFunc(s.Symbols.Free, freeParams, nil, free.String()))

	default: // primitives, aliases and raw scalars embed by value
		name := elemGoName(elem)
		var init strings.Builder
		init.WriteString("\tcore.ClearLastErrMsg()\n")
		init.WriteString("\tif ptr == nil {\n\t\treturn core.Array{}\n\t}\n")
		init.WriteString(fmt.Sprintf("\telems := unsafe.Slice((*%s)(ptr), int(n))\n", name))
		init.WriteString(fmt.Sprintf("\treturn core.NewArray(append([]%s(nil), elems...))\n", name))
		code.WriteString(exportFunc(s.Symbols.Init, initParams, s, init.String()))

		code.WriteString(exportFunc(s.Symbols.Free, freeParams, nil,
			"\tcore.ClearLastErrMsg()\n\tcore.FreeArray(a)\n"))
	}

	return code.String()
}

// textArrayExports emits the init/free exports for arrays whose elements
// cross as null-terminated text.
func (g *Generator) textArrayExports(s *repr.Representation, initParams, freeParams []shellParam) string {
	var init strings.Builder
	init.WriteString("\tcore.ClearLastErrMsg()\n")
	init.WriteString("\tif ptr == nil {\n\t\treturn core.Array{}\n\t}\n")
	init.WriteString("\telems := unsafe.Slice((**byte)(ptr), int(n))\n")
	init.WriteString("\ttexts := make([]string, len(elems))\n")
	init.WriteString("\tfor i := range elems {\n")
	init.WriteString("\t\ttexts[i] = core.GoString(elems[i])\n")
	init.WriteString("\t}\n")
	init.WriteString("\treturn core.NewStringArray(texts)\n")

	return exportFunc(s.Symbols.Init, initParams, s, init.String()) +
		exportFunc(s.Symbols.Free, freeParams, nil,
			"\tcore.ClearLastErrMsg()\n\tcore.FreeStringArray(a)\n")
}

// generateOptionSupport emits the {has_value, value} record for one
// by-value optional shape, with its cgo bridges.
func (g *Generator) generateOptionSupport(s *repr.Representation) string {
	var code strings.Builder
	name := s.GoType

	code.WriteString(fmt.Sprintf("// %s crosses an optional by-value shape with an explicit presence flag.\n", name))
	code.WriteString("// Value is garbage when HasValue is false and must not be read.\n")
	code.WriteString(fmt.Sprintf("type %s struct {\n", name))
	code.WriteString("\tHasValue bool\n")
	code.WriteString(fmt.Sprintf("\tValue    %s\n", s.Elem.GoType))
	code.WriteString("}\n\n")

	code.WriteString(fmt.Sprintf("func c%s(o %s) C.%s {\n", name, name, s.CType))
	code.WriteString(fmt.Sprintf("\treturn C.%s{\n", s.CType))
	code.WriteString("\t\thas_value: C.bool(o.HasValue),\n")
	code.WriteString(fmt.Sprintf("\t\tvalue:     %s,\n", cFieldExpr(s.Elem, "o.Value")))
	code.WriteString("\t}\n")
	code.WriteString("}\n\n")

	code.WriteString(fmt.Sprintf("func go%s(o C.%s) %s {\n", name, s.CType, name))
	code.WriteString(fmt.Sprintf("\treturn %s{\n", name))
	code.WriteString("\t\tHasValue: bool(o.has_value),\n")
	code.WriteString(fmt.Sprintf("\t\tValue:    %s,\n", goFieldExpr(s.Elem, "o.value")))
	code.WriteString("\t}\n")
	code.WriteString("}\n\n")

	var init strings.Builder
	init.WriteString("\tcore.ClearLastErrMsg()\n")
	init.WriteString(fmt.Sprintf("\tif !hasValue {\n\t\treturn %s{}\n\t}\n", name))
	init.WriteString(fmt.Sprintf("\treturn %s{HasValue: true, Value: value}\n", name))
	code.WriteString(exportFunc(s.Symbols.Init,
		[]shellParam{{name: "hasValue", typ: "bool"}, {name: "value", r: s.Elem}}, s, init.String()))

	var free strings.Builder
	free.WriteString("\tcore.ClearLastErrMsg()\n")
	if s.Elem.Layout == repr.LayoutRecord && len(ownership.NestedReleases(s.Elem)) > 0 {
		free.WriteString("\tif opt.HasValue {\n")
		free.WriteString(fmt.Sprintf("\t\t%s(opt.Value)\n", implName(s.Elem.Symbols.Free)))
		free.WriteString("\t}\n")
	}
	code.WriteString(exportFunc(s.Symbols.Free, []shellParam{{name: "opt", r: s}}, nil, free.String()))

	return code.String()
}

// generateTimestampSupport emits the boxed timestamp conversion set.
// Timestamps cross as opaque handles; the record form is epoch seconds
// plus subsecond nanoseconds.
func (g *Generator) generateTimestampSupport() string {
	ts := g.syn.Synthesize(&shape.Shape{Kind: shape.KindTimestamp})
	secs := g.syn.Synthesize(&shape.Shape{Kind: shape.KindS64})
	nanos := g.syn.Synthesize(&shape.Shape{Kind: shape.KindS32})

	var code strings.Builder
	code.WriteString(exportFunc("time_stamp_init",
		[]shellParam{{name: "secs", typ: "int64"}, {name: "nanos", typ: "int32"}}, ts,
		"\tcore.ClearLastErrMsg()\n\treturn core.NewHandle(time.Unix(secs, int64(nanos)).UTC())\n"))
	code.WriteString(exportFunc("time_stamp_free",
		[]shellParam{{name: "ts", r: ts}}, nil,
		"\tcore.ClearLastErrMsg()\n\tcore.FreeHandle(ts)\n"))
	code.WriteString(exportFunc("get_time_stamp_secs",
		[]shellParam{{name: "ts", r: ts}}, secs,
		"\tcore.ClearLastErrMsg()\n\treturn core.ResolveHandle(ts).(time.Time).Unix()\n"))
	code.WriteString(exportFunc("get_time_stamp_nanos",
		[]shellParam{{name: "ts", r: ts}}, nanos,
		"\tcore.ClearLastErrMsg()\n\treturn int32(core.ResolveHandle(ts).(time.Time).Nanosecond())\n"))
	return code.String()
}

// generateErrorChannel emits the process-wide last-error accessors and the
// shared string release. The getter reads the slot without clearing it.
func (g *Generator) generateErrorChannel() string {
	text := g.syn.Synthesize(&shape.Shape{Kind: shape.KindString})

	var code strings.Builder
	code.WriteString(exportFunc("get_last_err_msg", nil, text,
		"\tif msg := core.LastErrMsg(); msg != \"\" {\n\t\treturn core.NewCString(msg)\n\t}\n\treturn nil\n"))
	code.WriteString(exportFunc("clear_last_err_msg", nil, nil,
		"\tcore.ClearLastErrMsg()\n"))
	code.WriteString(exportFunc("ffi_string_free", []shellParam{{name: "s", r: text}}, nil,
		"\tcore.ClearLastErrMsg()\n\tcore.FreeCString(s)\n"))
	return code.String()
}
