package codegen

import (
	"fmt"
	"strings"

	"github.com/telus-agcg/platform-ffi-common/internal/repr"
	"github.com/telus-agcg/platform-ffi-common/internal/shape"
)

// cParam formats one C parameter, keeping pointer spellings tight.
func cParam(cType, name string) string {
	if strings.HasSuffix(cType, "*") {
		return cType + name
	}
	return cType + " " + name
}

// typedefBlock emits the C typedefs for every declared and support type.
// Shared between the published header and the cgo preamble so the two
// cannot drift.
func (g *Generator) typedefBlock(decls []*repr.Representation, usesTimestamp bool) string {
	var h strings.Builder

	h.WriteString("typedef struct ffi_array {\n")
	h.WriteString("\tconst void *ptr;\n")
	h.WriteString("\tsize_t len;\n")
	h.WriteString("\tsize_t cap;\n")
	h.WriteString("} ffi_array_t;\n\n")

	if usesTimestamp {
		h.WriteString("typedef uintptr_t time_stamp_t;\n\n")
	}

	for _, d := range decls {
		switch d.Layout {
		case repr.LayoutRawValue:
			h.WriteString(fmt.Sprintf("typedef %s %s;\n\n", repr.CSpelling(d.Shape.Under), d.CType))
		case repr.LayoutHandle:
			h.WriteString(fmt.Sprintf("typedef uintptr_t %s;\n\n", d.CType))
		}
	}

	for _, s := range g.syn.Support() {
		if s.Layout == repr.LayoutArray {
			h.WriteString(fmt.Sprintf("typedef ffi_array_t %s;\n\n", s.CType))
		}
	}

	// Record and option typedefs emit in dependency order: a record field
	// of option type needs the option typedef first, and an option needs
	// its wrapped record.
	emitted := make(map[string]bool)
	var emitRecord func(d *repr.Representation)
	var emitOption func(s *repr.Representation)
	emitRecord = func(d *repr.Representation) {
		if emitted[d.CType] {
			return
		}
		emitted[d.CType] = true
		for _, f := range d.Fields {
			switch f.Repr.Layout {
			case repr.LayoutRecord:
				emitRecord(f.Repr)
			case repr.LayoutOptionRecord:
				emitOption(f.Repr)
			}
		}
		h.WriteString(fmt.Sprintf("typedef struct %s {\n", strings.TrimSuffix(d.CType, "_t")))
		for _, f := range d.Fields {
			h.WriteString("\t" + cParam(f.Repr.CType, repr.SnakeCase(f.Name)) + ";\n")
		}
		h.WriteString(fmt.Sprintf("} %s;\n\n", d.CType))
	}
	emitOption = func(s *repr.Representation) {
		if emitted[s.CType] {
			return
		}
		emitted[s.CType] = true
		if s.Elem.Layout == repr.LayoutRecord {
			emitRecord(s.Elem)
		}
		h.WriteString(fmt.Sprintf("typedef struct %s {\n", strings.TrimSuffix(s.CType, "_t")))
		h.WriteString("\tbool has_value;\n")
		h.WriteString("\t" + cParam(s.Elem.CType, "value") + ";\n")
		h.WriteString(fmt.Sprintf("} %s;\n\n", s.CType))
	}
	for _, d := range decls {
		if d.Layout == repr.LayoutRecord {
			emitRecord(d)
		}
	}
	for _, s := range g.syn.Support() {
		if s.Layout == repr.LayoutOptionRecord {
			emitOption(s)
		}
	}

	return h.String()
}

// generateHeader emits the C declarations matching every exported
// function: typedefs for declared types, one typedef per support set, and
// the prototypes.
func (g *Generator) generateHeader(decls []*repr.Representation, usesTimestamp bool) string {
	var h strings.Builder
	guard := "FFIGEN_" + strings.ToUpper(g.pkg) + "_H"

	h.WriteString("/* Code generated by ffigen. DO NOT EDIT. */\n\n")
	h.WriteString(fmt.Sprintf("#ifndef %s\n#define %s\n\n", guard, guard))
	h.WriteString("#include <stdbool.h>\n")
	h.WriteString("#include <stddef.h>\n")
	h.WriteString("#include <stdint.h>\n\n")

	h.WriteString(g.typedefBlock(decls, usesTimestamp))

	for _, d := range decls {
		switch d.Layout {
		case repr.LayoutHandle:
			h.WriteString(g.referencePrototypes(d))
		case repr.LayoutRecord:
			h.WriteString(g.valuePrototypes(d))
		}
	}

	if usesTimestamp {
		h.WriteString("time_stamp_t time_stamp_init(int64_t secs, int32_t nanos);\n")
		h.WriteString("void time_stamp_free(time_stamp_t ts);\n")
		h.WriteString("int64_t get_time_stamp_secs(time_stamp_t ts);\n")
		h.WriteString("int32_t get_time_stamp_nanos(time_stamp_t ts);\n\n")
	}

	for _, s := range g.syn.Support() {
		switch s.Layout {
		case repr.LayoutArray:
			h.WriteString(fmt.Sprintf("%s %s(const void *ptr, int32_t len);\n", s.CType, s.Symbols.Init))
			h.WriteString(fmt.Sprintf("void %s(%s);\n\n", s.Symbols.Free, cParam(s.CType, "array")))
		case repr.LayoutOptionRecord:
			h.WriteString(fmt.Sprintf("%s %s(bool has_value, %s);\n",
				s.CType, s.Symbols.Init, cParam(s.Elem.CType, "value")))
			h.WriteString(fmt.Sprintf("void %s(%s);\n\n", s.Symbols.Free, cParam(s.CType, "option")))
		}
	}

	h.WriteString("char *get_last_err_msg(void);\n")
	h.WriteString("void clear_last_err_msg(void);\n")
	h.WriteString("void ffi_string_free(char *text);\n\n")

	h.WriteString(fmt.Sprintf("#endif /* %s */\n", guard))
	return h.String()
}

func (g *Generator) cParamList(sh *shape.Shape) string {
	parts := make([]string, 0, len(sh.Fields))
	for _, f := range sh.Fields {
		fr := g.syn.Synthesize(f.Shape)
		parts = append(parts, cParam(fr.CType, repr.SnakeCase(f.Name)))
	}
	return strings.Join(parts, ", ")
}

func (g *Generator) referencePrototypes(d *repr.Representation) string {
	var h strings.Builder
	snake := repr.SnakeCase(d.Shape.Name)

	h.WriteString(fmt.Sprintf("%s %s(%s);\n", d.CType, d.Symbols.Init, g.cParamList(d.Shape)))
	h.WriteString(fmt.Sprintf("void %s(%s);\n", d.Symbols.Free, cParam(d.CType, snake)))
	h.WriteString(fmt.Sprintf("%s %s(%s);\n", d.CType, d.Symbols.Clone, cParam(d.CType, snake)))
	for _, f := range d.Shape.Fields {
		fr := g.syn.Synthesize(f.Shape)
		symbol := "get_" + snake + "_" + repr.SnakeCase(f.Name)
		if f.Shape.Kind == shape.KindOptional || f.Shape.Kind == shape.KindOptionalCollection {
			symbol = "get_optional_" + snake + "_" + repr.SnakeCase(f.Name)
		}
		h.WriteString(fmt.Sprintf("%s(%s);\n", cParam(fr.CType, symbol), cParam(d.CType, snake)))
	}
	h.WriteString("\n")
	return h.String()
}

func (g *Generator) valuePrototypes(d *repr.Representation) string {
	var h strings.Builder
	h.WriteString(fmt.Sprintf("%s %s(%s);\n", d.CType, d.Symbols.Init, g.cParamList(d.Shape)))
	h.WriteString(fmt.Sprintf("void %s(%s);\n\n", d.Symbols.Free, cParam(d.CType, "record")))
	return h.String()
}
