// Package codegen emits the boundary surface for a set of classified
// declarations: a cgo source file exporting the conversion functions, and
// the matching C header. Output is deterministic: declarations emit in
// registration order, support sets in first-encounter order.
package codegen

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/telus-agcg/platform-ffi-common/internal/repr"
	"github.com/telus-agcg/platform-ffi-common/internal/shape"
)

const corePath = "github.com/telus-agcg/platform-ffi-common/core"

// Output holds the generated artifacts for one input package.
type Output struct {
	Source string // cgo boundary source, same package as the input types
	Header string // C declarations matching the exported functions
}

// Generator walks the registered declarations and emits their conversion
// functions. Every exported function clears the last-error slot on entry;
// fallible conversions set it and return a sentinel instead of panicking
// across the boundary.
//
// Exported signatures carry only C-representable types. Each export whose
// natural Go form is richer than that is emitted as a thin shell over a
// Go-typed implementation, with the bridge converting at the edge.
type Generator struct {
	registry *shape.Registry
	syn      *repr.Synthesizer
	pkg      string
	log      *zap.Logger

	needsTime bool
}

// NewGenerator creates a generator for the declarations registered in
// registry. pkg is the package the generated source belongs to (the input
// types' own package). A nil logger is replaced with a nop logger.
func NewGenerator(registry *shape.Registry, pkg string, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{
		registry: registry,
		syn:      repr.NewSynthesizer(),
		pkg:      pkg,
		log:      log,
	}
}

// Generate classifies every registered declaration, synthesizes its
// representation and emits the full boundary surface. Any classification
// failure aborts with no partial output.
func (g *Generator) Generate() (*Output, error) {
	var decls []*repr.Representation
	usesTimestamp := false
	for _, name := range g.registry.DeclNames() {
		sh, err := g.registry.Classify(name)
		if err != nil {
			return nil, fmt.Errorf("classify %s: %w", name, err)
		}
		if referencesTimestamp(sh) {
			usesTimestamp = true
		}
		decls = append(decls, g.syn.Synthesize(sh))
		g.log.Debug("synthesized declaration",
			zap.String("type", name),
			zap.String("layout", g.syn.Synthesize(sh).Layout.String()))
	}

	var body strings.Builder
	for _, d := range decls {
		switch d.Layout {
		case repr.LayoutRecord:
			body.WriteString(g.generateValue(d))
		case repr.LayoutHandle:
			body.WriteString(g.generateReference(d))
		case repr.LayoutRawValue:
			// Raw declarations pass through by value; only the header
			// carries a typedef for them.
		}
	}

	if usesTimestamp {
		body.WriteString(g.generateTimestampSupport())
	}
	hasArray := false
	for _, s := range g.syn.Support() {
		if s.Layout == repr.LayoutArray {
			hasArray = true
			break
		}
	}
	if hasArray {
		body.WriteString(arrayBridges)
	}
	for _, s := range g.syn.Support() {
		switch s.Layout {
		case repr.LayoutArray:
			body.WriteString(g.generateArraySupport(s))
		case repr.LayoutOptionRecord:
			body.WriteString(g.generateOptionSupport(s))
		}
	}
	body.WriteString(g.generateErrorChannel())

	var out strings.Builder
	out.WriteString("// Code generated by ffigen. DO NOT EDIT.\n\n")
	out.WriteString(fmt.Sprintf("package %s\n\n", g.pkg))
	out.WriteString("/*\n")
	out.WriteString("#include <stdbool.h>\n")
	out.WriteString("#include <stddef.h>\n")
	out.WriteString("#include <stdint.h>\n\n")
	out.WriteString(strings.TrimSuffix(g.typedefBlock(decls, usesTimestamp), "\n"))
	out.WriteString("*/\n")
	out.WriteString("import \"C\"\n\n")
	out.WriteString("import (\n")
	if g.needsTime || usesTimestamp {
		out.WriteString("\t\"time\"\n")
	}
	out.WriteString("\t\"unsafe\"\n\n")
	out.WriteString(fmt.Sprintf("\t\"%s\"\n", corePath))
	out.WriteString(")\n\n")
	out.WriteString(body.String())

	header := g.generateHeader(decls, usesTimestamp)

	g.log.Info("generated boundary surface",
		zap.String("package", g.pkg),
		zap.Int("declarations", len(decls)),
		zap.Int("support_sets", len(g.syn.Support())))

	return &Output{Source: out.String(), Header: header}, nil
}

// referencesTimestamp reports whether any field of sh (one level of
// wrapping deep, matching the supported nesting) is a timestamp.
func referencesTimestamp(sh *shape.Shape) bool {
	for _, f := range sh.Fields {
		fs := f.Shape
		if fs.Kind == shape.KindTimestamp {
			return true
		}
		if fs.Elem != nil && fs.Elem.Kind == shape.KindTimestamp {
			return true
		}
	}
	return false
}

// arrayBridges converts the runtime array triple to and from its cgo
// struct. Emitted once when any array support set exists.
const arrayBridges = `func cArray(a core.Array) C.ffi_array_t {
	return C.ffi_array_t{ptr: a.Ptr, len: C.size_t(a.Len), cap: C.size_t(a.Cap)}
}

func goArray(a C.ffi_array_t) core.Array {
	return core.Array{Ptr: a.ptr, Len: int(a.len), Cap: int(a.cap)}
}

`

// shellParam is one parameter of an exported boundary function. A nil
// representation means the parameter crosses as-is with the given Go type.
type shellParam struct {
	name string
	r    *repr.Representation
	typ  string
}

func (p shellParam) goType() string {
	if p.r == nil {
		return p.typ
	}
	return p.r.GoType
}

// cExportType is the cgo spelling a representation crosses with in an
// exported signature, or the plain Go spelling when no bridge is needed.
func cExportType(p shellParam) string {
	if p.r == nil {
		return p.typ
	}
	r := p.r
	switch {
	case r.GoType == "core.Handle":
		return "C." + r.CType
	case r.GoType == "*byte":
		return "*C.char"
	case r.GoType == "core.Array":
		return "C." + r.CType
	case r.Layout == repr.LayoutRecord || r.Layout == repr.LayoutOptionRecord:
		return "C." + r.CType
	case r.Shape.Kind == shape.KindRaw:
		return "C." + r.CType
	default:
		return r.GoType
	}
}

// bridgeToGo converts a C-typed shell parameter to its Go-typed form.
// Returns x unchanged when the types coincide.
func bridgeToGo(r *repr.Representation, x string) string {
	switch {
	case r.GoType == "core.Handle":
		return "core.Handle(" + x + ")"
	case r.GoType == "*byte":
		return "(*byte)(unsafe.Pointer(" + x + "))"
	case r.GoType == "core.Array":
		return "goArray(C.ffi_array_t(" + x + "))"
	case r.Layout == repr.LayoutRecord || r.Layout == repr.LayoutOptionRecord:
		return "go" + r.GoType + "(" + x + ")"
	case r.Shape.Kind == shape.KindRaw:
		return r.GoType + "(" + x + ")"
	default:
		return x
	}
}

// bridgeToC is the inverse of bridgeToGo.
func bridgeToC(r *repr.Representation, x string) string {
	switch {
	case r.GoType == "core.Handle":
		return "C." + r.CType + "(" + x + ")"
	case r.GoType == "*byte":
		return "(*C.char)(unsafe.Pointer(" + x + "))"
	case r.GoType == "core.Array":
		return "C." + r.CType + "(cArray(" + x + "))"
	case r.Layout == repr.LayoutRecord || r.Layout == repr.LayoutOptionRecord:
		return "c" + r.GoType + "(" + x + ")"
	case r.Shape.Kind == shape.KindRaw:
		return "C." + r.CType + "(" + x + ")"
	default:
		return x
	}
}

func bridged(r *repr.Representation) bool {
	if r == nil {
		return false
	}
	return bridgeToGo(r, "x") != "x"
}

// cFieldExpr converts one Go-typed record field into its cgo struct field.
// Primitives convert explicitly since the struct fields are C-typed.
func cFieldExpr(r *repr.Representation, x string) string {
	if b := bridgeToC(r, x); b != x {
		return b
	}
	return "C." + r.CType + "(" + x + ")"
}

// goFieldExpr is the inverse of cFieldExpr.
func goFieldExpr(r *repr.Representation, x string) string {
	if b := bridgeToGo(r, x); b != x {
		return b
	}
	return r.GoType + "(" + x + ")"
}

// exportFunc emits one exported boundary function. When a parameter or the
// result needs a cgo bridge, the //export shell converts at the edge and a
// Go-typed implementation keeps the conversion logic; otherwise the
// implementation is exported directly.
func exportFunc(symbol string, params []shellParam, result *repr.Representation, body string) string {
	var code strings.Builder

	bridgedAny := bridged(result)
	for _, p := range params {
		if bridged(p.r) {
			bridgedAny = true
		}
	}

	goSig := make([]string, len(params))
	for i, p := range params {
		goSig[i] = p.name + " " + p.goType()
	}
	goRet := ""
	if result != nil {
		goRet = " " + result.GoType
	}

	if !bridgedAny {
		code.WriteString(fmt.Sprintf("//export %s\n", symbol))
		code.WriteString(fmt.Sprintf("func %s(%s)%s {\n", symbol, strings.Join(goSig, ", "), goRet))
		code.WriteString(body)
		code.WriteString("}\n\n")
		return code.String()
	}

	cSig := make([]string, len(params))
	args := make([]string, len(params))
	for i, p := range params {
		cSig[i] = p.name + " " + cExportType(p)
		if p.r != nil {
			args[i] = bridgeToGo(p.r, p.name)
		} else {
			args[i] = p.name
		}
	}
	impl := implName(symbol)
	call := fmt.Sprintf("%s(%s)", impl, strings.Join(args, ", "))

	code.WriteString(fmt.Sprintf("//export %s\n", symbol))
	if result != nil {
		code.WriteString(fmt.Sprintf("func %s(%s) %s {\n",
			symbol, strings.Join(cSig, ", "), cExportType(shellParam{r: result})))
		code.WriteString(fmt.Sprintf("\treturn %s\n", bridgeToC(result, call)))
	} else {
		code.WriteString(fmt.Sprintf("func %s(%s) {\n", symbol, strings.Join(cSig, ", ")))
		code.WriteString(fmt.Sprintf("\t%s\n", call))
	}
	code.WriteString("}\n\n")

	code.WriteString(fmt.Sprintf("func %s(%s)%s {\n", impl, strings.Join(goSig, ", "), goRet))
	code.WriteString(body)
	code.WriteString("}\n\n")
	return code.String()
}

// implName is the Go-typed implementation name behind an exported symbol
// (plot_init -> plotInit).
func implName(symbol string) string {
	parts := strings.Split(symbol, "_")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// releaseCall returns the release statement for one boundary-owned value,
// or "" when the layout frees through the garbage collector. Composite
// layouts release through the Go-typed implementation of their generated
// free function.
func releaseCall(r *repr.Representation, expr string) string {
	switch r.Layout {
	case repr.LayoutText:
		return fmt.Sprintf("core.FreeCString(%s)", expr)
	case repr.LayoutHandle:
		return fmt.Sprintf("core.FreeHandle(%s)", expr)
	case repr.LayoutArray:
		return fmt.Sprintf("%s(%s)", implName(r.Symbols.Free), expr)
	case repr.LayoutRecord, repr.LayoutOptionRecord:
		return fmt.Sprintf("%s(%s)", implName(r.Symbols.Free), expr)
	case repr.LayoutPointer:
		switch r.Elem.Layout {
		case repr.LayoutText:
			return fmt.Sprintf("core.FreeCString(%s)", expr)
		case repr.LayoutHandle:
			return fmt.Sprintf("core.FreeHandle(%s)", expr)
		}
	}
	return ""
}

var goKeywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true,
	"continue": true, "default": true, "defer": true, "else": true,
	"fallthrough": true, "for": true, "func": true, "go": true,
	"goto": true, "if": true, "import": true, "interface": true,
	"map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true,
	"var": true,
}

// paramName converts an exported field name to a parameter name, steering
// clear of keywords and the locals the templates reserve.
func paramName(field string) string {
	name := repr.LowerCamel(field)
	if goKeywords[name] || name == "v" || name == "h" || name == "out" || name == "rec" {
		name += "Arg"
	}
	return name
}

// elemGoName is the native Go spelling of an array element, used for
// buffer element types and generic instantiations.
func elemGoName(r *repr.Representation) string {
	if r.Shape.Name != "" {
		return r.Shape.Name
	}
	if r.Shape.Kind == shape.KindIdentifier {
		return "core.UUID"
	}
	return r.GoType
}

// token recovers the element token from a derived support type name
// (FFIArrayS32 -> S32, OptionU8 -> U8).
func token(r *repr.Representation) string {
	name := r.Symbols.TypeName
	name = strings.TrimPrefix(name, "FFIArray")
	name = strings.TrimPrefix(name, "Option")
	return name
}
