// Package consumer emits the Swift side of the boundary: a support file
// with the three capability protocols and the error-result wrapper, plus
// one conformance section per generated boundary type. Every from-boundary
// failure sentinel routes through FFIResult and the last-error slot rather
// than a Swift fatalError.
package consumer

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/telus-agcg/platform-ffi-common/internal/repr"
	"github.com/telus-agcg/platform-ffi-common/internal/shape"
)

// Generator emits Swift bindings for the declarations in a registry. It
// runs its own synthesizer; representations are deterministic, so the
// symbols match the boundary generator's output exactly.
type Generator struct {
	registry *shape.Registry
	syn      *repr.Synthesizer
	log      *zap.Logger
}

func NewGenerator(registry *shape.Registry, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{
		registry: registry,
		syn:      repr.NewSynthesizer(),
		log:      log,
	}
}

// Generate returns the complete Swift binding file.
func (g *Generator) Generate() (string, error) {
	var decls []*repr.Representation
	usesTimestamp := false
	for _, name := range g.registry.DeclNames() {
		sh, err := g.registry.Classify(name)
		if err != nil {
			return "", fmt.Errorf("classify %s: %w", name, err)
		}
		for _, f := range sh.Fields {
			if f.Shape.Kind == shape.KindTimestamp ||
				(f.Shape.Elem != nil && f.Shape.Elem.Kind == shape.KindTimestamp) {
				usesTimestamp = true
			}
		}
		decls = append(decls, g.syn.Synthesize(sh))
	}

	var out strings.Builder
	out.WriteString(supportSource)
	out.WriteString(primitiveConformances)
	if usesTimestamp {
		out.WriteString(dateConformance)
	}

	for _, d := range decls {
		switch d.Layout {
		case repr.LayoutHandle:
			out.WriteString(g.referenceBinding(d))
		case repr.LayoutRecord:
			out.WriteString(g.valueBinding(d))
		}
	}

	for _, s := range g.syn.Support() {
		switch s.Layout {
		case repr.LayoutArray:
			out.WriteString(g.arrayConformance(s))
		case repr.LayoutOptionRecord:
			out.WriteString(g.optionConformance(s))
		}
	}

	g.log.Info("generated consumer bindings", zap.Int("declarations", len(decls)))
	return out.String(), nil
}

// referenceBinding emits a class owning the opaque handle. The deinit is
// the exactly-once release; borrow semantics never reach Swift, so every
// instance the consumer holds is an owned one.
func (g *Generator) referenceBinding(d *repr.Representation) string {
	var b strings.Builder
	name := d.Shape.Name

	b.WriteString(fmt.Sprintf("public final class %s {\n", name))
	b.WriteString(fmt.Sprintf("    let handle: %s\n\n", d.CType))
	b.WriteString(fmt.Sprintf("    init(handle: %s) {\n", d.CType))
	b.WriteString("        self.handle = handle\n")
	b.WriteString("    }\n\n")
	b.WriteString("    deinit {\n")
	b.WriteString(fmt.Sprintf("        %s(handle)\n", d.Symbols.Free))
	b.WriteString("    }\n\n")

	b.WriteString(fmt.Sprintf("    public static func create(%s) -> FFIResult<%s> {\n",
		g.createParams(d.Shape), name))
	b.WriteString(fmt.Sprintf("        let handle = %s(%s)\n", d.Symbols.Init, g.createArgs(d.Shape)))
	b.WriteString("        guard handle != 0 else {\n")
	b.WriteString("            return .failure(.lastError())\n")
	b.WriteString("        }\n")
	b.WriteString(fmt.Sprintf("        return .success(%s(handle: handle))\n", name))
	b.WriteString("    }\n\n")

	b.WriteString(fmt.Sprintf("    public func clone() -> %s {\n", name))
	b.WriteString(fmt.Sprintf("        %s(handle: %s(handle))\n", name, d.Symbols.Clone))
	b.WriteString("    }\n\n")

	// Hand-over duplicates the handle: deinit still owes the release of
	// this instance's own handle, and the receiving call consumes the copy.
	b.WriteString(fmt.Sprintf("    func toRust() -> %s {\n", d.CType))
	b.WriteString(fmt.Sprintf("        %s(handle)\n", d.Symbols.Clone))
	b.WriteString("    }\n")

	snake := repr.SnakeCase(name)
	for _, f := range d.Shape.Fields {
		b.WriteString(g.property(snake, f))
	}
	b.WriteString("}\n\n")
	return b.String()
}

func (g *Generator) createParams(sh *shape.Shape) string {
	parts := make([]string, 0, len(sh.Fields))
	for _, f := range sh.Fields {
		r := g.syn.Synthesize(f.Shape)
		consumerType := r.ConsumerType
		if f.Shape.Kind == shape.KindOptionalCollection {
			consumerType = "[" + r.Elem.ConsumerType + "]?"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", repr.LowerCamel(f.Name), consumerType))
	}
	return strings.Join(parts, ", ")
}

func (g *Generator) createArgs(sh *shape.Shape) string {
	parts := make([]string, 0, len(sh.Fields))
	for _, f := range sh.Fields {
		parts = append(parts, g.toRustExpr(f, repr.LowerCamel(f.Name)))
	}
	return strings.Join(parts, ", ")
}

// toRustExpr is the to-boundary conversion for one create argument.
func (g *Generator) toRustExpr(f shape.Field, src string) string {
	r := g.syn.Synthesize(f.Shape)
	switch f.Shape.Kind {
	case shape.KindString, shape.KindIdentifier, shape.KindTimestamp,
		shape.KindValue, shape.KindReference:
		return src + ".toRust()"
	case shape.KindCollection, shape.KindOptionalCollection:
		return fmt.Sprintf("%s.from(array: %s)", r.CType, src)
	case shape.KindOptional:
		if r.Layout == repr.LayoutOptionRecord {
			return fmt.Sprintf("%s.from(optional: %s)", r.CType, src)
		}
		// Null pointer (or the zero handle) encodes absent.
		if r.GoType == "core.Handle" {
			return fmt.Sprintf("%s?.toRust() ?? 0", src)
		}
		return fmt.Sprintf("%s?.toRust() ?? nil", src)
	default:
		return src
	}
}

// property emits the read accessor for one field, materializing the native
// Swift value and releasing any boundary allocation exactly once.
func (g *Generator) property(typeSnake string, f shape.Field) string {
	r := g.syn.Synthesize(f.Shape)
	name := repr.LowerCamel(f.Name)
	symbol := "get_" + typeSnake + "_" + repr.SnakeCase(f.Name)
	optional := f.Shape.Kind == shape.KindOptional || f.Shape.Kind == shape.KindOptionalCollection
	if optional {
		symbol = "get_optional_" + typeSnake + "_" + repr.SnakeCase(f.Name)
	}

	consumerType := r.ConsumerType
	if f.Shape.Kind == shape.KindOptionalCollection {
		consumerType = "[" + r.Elem.ConsumerType + "]?"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("\n    public var %s: %s {\n", name, consumerType))

	switch f.Shape.Kind {
	case shape.KindString, shape.KindIdentifier:
		b.WriteString(fmt.Sprintf("        String.fromRust(%s(handle))\n", symbol))
	case shape.KindTimestamp:
		b.WriteString(fmt.Sprintf("        Date.fromRust(%s(handle))\n", symbol))
	case shape.KindValue:
		b.WriteString(fmt.Sprintf("        %s.fromRust(%s(handle))\n", f.Shape.Name, symbol))
	case shape.KindReference:
		b.WriteString(fmt.Sprintf("        %s(handle: %s(handle))\n", f.Shape.Name, symbol))
	case shape.KindCollection:
		b.WriteString(fmt.Sprintf("        %s(handle).toArray()\n", symbol))
	case shape.KindOptionalCollection:
		b.WriteString(fmt.Sprintf("        let array = %s(handle)\n", symbol))
		b.WriteString("        guard array.ptr != nil else {\n")
		b.WriteString("            return nil\n")
		b.WriteString("        }\n")
		b.WriteString("        return array.toArray()\n")
	case shape.KindOptional:
		b.WriteString(g.optionalPropertyBody(f, symbol))
	default: // raw values cross untouched
		b.WriteString(fmt.Sprintf("        %s(handle)\n", symbol))
	}

	b.WriteString("    }\n")
	return b.String()
}

func (g *Generator) optionalPropertyBody(f shape.Field, symbol string) string {
	var b strings.Builder
	r := g.syn.Synthesize(f.Shape)
	elem := f.Shape.Elem

	if r.Layout == repr.LayoutOptionRecord {
		b.WriteString(fmt.Sprintf("        let option = %s(handle)\n", symbol))
		b.WriteString("        guard option.has_value else {\n")
		b.WriteString("            return nil\n")
		b.WriteString("        }\n")
		if elem.Kind == shape.KindValue {
			b.WriteString(fmt.Sprintf("        return %s.fromRust(option.value)\n", elem.Name))
		} else {
			b.WriteString("        return option.value\n")
		}
		return b.String()
	}

	switch elem.Kind {
	case shape.KindString, shape.KindIdentifier:
		b.WriteString(fmt.Sprintf("        guard let cString = %s(handle) else {\n", symbol))
		b.WriteString("            return nil\n")
		b.WriteString("        }\n")
		b.WriteString("        return String.fromRust(cString)\n")
	case shape.KindTimestamp:
		b.WriteString(fmt.Sprintf("        let ts = %s(handle)\n", symbol))
		b.WriteString("        guard ts != 0 else {\n")
		b.WriteString("            return nil\n")
		b.WriteString("        }\n")
		b.WriteString("        return Date.fromRust(ts)\n")
	case shape.KindReference:
		b.WriteString(fmt.Sprintf("        let h = %s(handle)\n", symbol))
		b.WriteString("        guard h != 0 else {\n")
		b.WriteString("            return nil\n")
		b.WriteString("        }\n")
		b.WriteString(fmt.Sprintf("        return %s(handle: h)\n", elem.Name))
	}
	return b.String()
}

// valueBinding emits the NativeData conformance for a flat record type.
func (g *Generator) valueBinding(d *repr.Representation) string {
	var b strings.Builder
	name := d.Shape.Name

	b.WriteString(fmt.Sprintf("public struct %s {\n", name))
	for _, f := range d.Shape.Fields {
		r := g.syn.Synthesize(f.Shape)
		b.WriteString(fmt.Sprintf("    public let %s: %s\n", repr.LowerCamel(f.Name), r.ConsumerType))
	}
	b.WriteString("}\n\n")

	b.WriteString(fmt.Sprintf("extension %s: NativeData {\n", name))
	b.WriteString(fmt.Sprintf("    public typealias ForeignType = %s\n\n", d.CType))
	b.WriteString(fmt.Sprintf("    public func toRust() -> %s {\n", d.CType))
	b.WriteString(fmt.Sprintf("        %s(%s)\n", d.Symbols.Init, g.createArgs(d.Shape)))
	b.WriteString("    }\n\n")
	b.WriteString(fmt.Sprintf("    public static func fromRust(_ foreignObject: %s) -> %s {\n", d.CType, name))
	b.WriteString(fmt.Sprintf("        defer { %s(foreignObject) }\n", d.Symbols.Free))
	b.WriteString(fmt.Sprintf("        return %s(\n", name))
	for i, f := range d.Shape.Fields {
		sep := ","
		if i == len(d.Shape.Fields)-1 {
			sep = ""
		}
		b.WriteString(fmt.Sprintf("            %s: %s%s\n",
			repr.LowerCamel(f.Name), g.recordFieldExpr(f), sep))
	}
	b.WriteString("        )\n")
	b.WriteString("    }\n")
	b.WriteString("}\n\n")
	return b.String()
}

func (g *Generator) recordFieldExpr(f shape.Field) string {
	field := "foreignObject." + repr.SnakeCase(f.Name)
	switch f.Shape.Kind {
	case shape.KindString, shape.KindIdentifier:
		return fmt.Sprintf("String.fromRust(%s)", field)
	case shape.KindTimestamp:
		return fmt.Sprintf("Date.fromRust(%s)", field)
	case shape.KindValue:
		return fmt.Sprintf("%s.fromRust(%s)", f.Shape.Name, field)
	case shape.KindCollection:
		return fmt.Sprintf("%s.toArray()", field)
	default:
		return field
	}
}

// arrayConformance emits the FFIArray conformance for one support set:
// bulk conversion against the triple with exactly one release after
// materialization.
func (g *Generator) arrayConformance(s *repr.Representation) string {
	var b strings.Builder
	elem := s.Elem

	b.WriteString(fmt.Sprintf("extension %s: FFIArray {\n", s.CType))
	b.WriteString(fmt.Sprintf("    public typealias Value = %s\n\n", elem.ConsumerType))
	b.WriteString(fmt.Sprintf("    public static func from(array: [%s]?) -> %s {\n", elem.ConsumerType, s.CType))
	b.WriteString("        guard let array = array else {\n")
	b.WriteString(fmt.Sprintf("            return %s(nil, 0)\n", s.Symbols.Init))
	b.WriteString("        }\n")
	switch elem.Shape.Kind {
	case shape.KindString, shape.KindIdentifier:
		b.WriteString("        let cStrings = array.map { strdup($0) }\n")
		b.WriteString("        defer { cStrings.forEach { free($0) } }\n")
		b.WriteString("        return cStrings.withUnsafeBufferPointer {\n")
		b.WriteString(fmt.Sprintf("            %s(UnsafeRawPointer($0.baseAddress), Int32(array.count))\n", s.Symbols.Init))
		b.WriteString("        }\n")
	case shape.KindReference:
		// Borrowed handles in; the boundary clones each element.
		b.WriteString("        return array.map { $0.handle }.withUnsafeBufferPointer {\n")
		b.WriteString(fmt.Sprintf("            %s(UnsafeRawPointer($0.baseAddress), Int32(array.count))\n", s.Symbols.Init))
		b.WriteString("        }\n")
	default:
		b.WriteString("        return array.map { $0.toRust() }.withUnsafeBufferPointer {\n")
		b.WriteString(fmt.Sprintf("            %s(UnsafeRawPointer($0.baseAddress), Int32(array.count))\n", s.Symbols.Init))
		b.WriteString("        }\n")
	}
	b.WriteString("    }\n\n")

	b.WriteString(fmt.Sprintf("    public func toArray() -> [%s] {\n", elem.ConsumerType))
	b.WriteString(fmt.Sprintf("        defer { %s(self) }\n", s.Symbols.Free))
	b.WriteString("        guard let ptr = ptr else {\n")
	b.WriteString("            return []\n")
	b.WriteString("        }\n")
	switch elem.Shape.Kind {
	case shape.KindString, shape.KindIdentifier:
		b.WriteString("        let buffer = ptr.bindMemory(to: UnsafeMutablePointer<CChar>?.self, capacity: len)\n")
		b.WriteString("        return UnsafeBufferPointer(start: buffer, count: len).map {\n")
		b.WriteString("            String(cString: $0!)\n")
		b.WriteString("        }\n")
	case shape.KindReference:
		// Each wrapper adopts a fresh clone; the deferred free releases the
		// triple's own handles.
		b.WriteString(fmt.Sprintf("        let buffer = ptr.bindMemory(to: %s.self, capacity: len)\n", elem.CType))
		b.WriteString("        return UnsafeBufferPointer(start: buffer, count: len).map {\n")
		b.WriteString(fmt.Sprintf("            %s(handle: %s($0))\n", elem.ConsumerType, elem.Symbols.Clone))
		b.WriteString("        }\n")
	default:
		b.WriteString(fmt.Sprintf("        let buffer = ptr.bindMemory(to: %s.self, capacity: len)\n", elem.ConsumerType))
		b.WriteString("        return Array(UnsafeBufferPointer(start: buffer, count: len))\n")
	}
	b.WriteString("    }\n")
	b.WriteString("}\n\n")
	return b.String()
}

// optionConformance emits the FFIOption conformance mapping the presence
// flag onto Swift Optional.
func (g *Generator) optionConformance(s *repr.Representation) string {
	var b strings.Builder
	elem := s.Elem

	b.WriteString(fmt.Sprintf("extension %s: FFIOption {\n", s.CType))
	b.WriteString(fmt.Sprintf("    public typealias Wrapped = %s\n\n", elem.ConsumerType))
	b.WriteString(fmt.Sprintf("    public static func from(optional: %s?) -> %s {\n", elem.ConsumerType, s.CType))
	b.WriteString("        guard let value = optional else {\n")
	b.WriteString(fmt.Sprintf("            return %s(false, %s)\n", s.Symbols.Init, swiftZero(elem)))
	b.WriteString("        }\n")
	if elem.Shape.Kind == shape.KindValue {
		b.WriteString(fmt.Sprintf("        return %s(true, value.toRust())\n", s.Symbols.Init))
	} else {
		b.WriteString(fmt.Sprintf("        return %s(true, value)\n", s.Symbols.Init))
	}
	b.WriteString("    }\n")
	b.WriteString("}\n\n")
	return b.String()
}

// swiftZero is the placeholder passed for the absent variant; the boundary
// ignores it when has_value is false.
func swiftZero(elem *repr.Representation) string {
	switch elem.Layout {
	case repr.LayoutRecord:
		return elem.CType + "()"
	default:
		if elem.Shape.Kind == shape.KindBool {
			return "false"
		}
		return "0"
	}
}
