package repr

import (
	"fmt"

	"github.com/telus-agcg/platform-ffi-common/internal/shape"
)

// primitiveSpelling holds the three type spellings for one primitive kind.
type primitiveSpelling struct {
	c        string
	goType   string
	consumer string
	token    string // CamelCase token used in derived type names
}

var primitiveSpellings = map[shape.Kind]primitiveSpelling{
	shape.KindBool: {"bool", "bool", "Bool", "Bool"},
	shape.KindU8:   {"uint8_t", "uint8", "UInt8", "U8"},
	shape.KindS8:   {"int8_t", "int8", "Int8", "S8"},
	shape.KindU16:  {"uint16_t", "uint16", "UInt16", "U16"},
	shape.KindS16:  {"int16_t", "int16", "Int16", "S16"},
	shape.KindU32:  {"uint32_t", "uint32", "UInt32", "U32"},
	shape.KindS32:  {"int32_t", "int32", "Int32", "S32"},
	shape.KindU64:  {"uint64_t", "uint64", "UInt64", "U64"},
	shape.KindS64:  {"int64_t", "int64", "Int64", "S64"},
	shape.KindF32:  {"float", "float32", "Float", "F32"},
	shape.KindF64:  {"double", "float64", "Double", "F64"},
}

// CSpelling returns the C spelling of a primitive kind, or "" for
// non-primitive kinds.
func CSpelling(k shape.Kind) string {
	if s, ok := primitiveSpellings[k]; ok {
		return s.c
	}
	return ""
}

// Synthesizer derives representations from shapes, caching per shape key so
// repeated synthesis is idempotent and every distinct shape gets exactly
// one representation. Support representations (arrays and option records)
// are additionally recorded in first-encounter order so the generator can
// emit each support set once, deterministically.
type Synthesizer struct {
	cache   map[string]*Representation
	support []*Representation
}

func NewSynthesizer() *Synthesizer {
	return &Synthesizer{cache: make(map[string]*Representation)}
}

// Support returns the array and option-record representations synthesized
// so far, in first-encounter order. Each appears exactly once regardless of
// how many declared types reference its shape.
func (s *Synthesizer) Support() []*Representation {
	return s.support
}

// Synthesize returns the unique representation for sh. Synthesis cannot
// fail: classification succeeding guarantees representability.
func (s *Synthesizer) Synthesize(sh *shape.Shape) *Representation {
	key := sh.Key()
	if r, ok := s.cache[key]; ok {
		return r
	}

	r := s.synthesize(sh)
	s.cache[key] = r
	return r
}

func (s *Synthesizer) synthesize(sh *shape.Shape) *Representation {
	if spelling, ok := primitiveSpellings[sh.Kind]; ok {
		r := &Representation{
			Shape:        sh,
			Layout:       LayoutRawValue,
			CType:        spelling.c,
			GoType:       spelling.goType,
			ConsumerType: spelling.consumer,
		}
		// An alias keeps the primitive's layout but its own name drives
		// derived symbols (FFIArrayAcres, not FFIArrayU64).
		return r
	}

	switch sh.Kind {
	case shape.KindString:
		return &Representation{
			Shape:        sh,
			Layout:       LayoutText,
			CType:        "char *",
			GoType:       "*byte",
			ConsumerType: "String",
			Symbols:      Symbols{Free: "ffi_string_free"},
		}

	case shape.KindIdentifier:
		return &Representation{
			Shape:        sh,
			Layout:       LayoutText,
			CType:        "char *",
			GoType:       "*byte",
			ConsumerType: "String",
			Symbols:      Symbols{Free: "ffi_string_free"},
		}

	case shape.KindTimestamp:
		return &Representation{
			Shape:        sh,
			Layout:       LayoutHandle,
			CType:        "time_stamp_t",
			GoType:       "core.Handle",
			ConsumerType: "Date",
			Symbols: Symbols{
				TypeName: "TimeStamp",
				Init:     "time_stamp_init",
				Free:     "time_stamp_free",
			},
		}

	case shape.KindRaw:
		return &Representation{
			Shape:        sh,
			Layout:       LayoutRawValue,
			CType:        SnakeCase(sh.Name) + "_t",
			GoType:       sh.Name,
			ConsumerType: sh.Name,
		}

	case shape.KindValue:
		snake := SnakeCase(sh.Name)
		r := &Representation{
			Shape:        sh,
			Layout:       LayoutRecord,
			CType:        snake + "_t",
			GoType:       sh.Name + "FFI",
			ConsumerType: sh.Name,
			Symbols: Symbols{
				TypeName: sh.Name + "FFI",
				Init:     snake + "_init",
				Free:     snake + "_free",
			},
		}
		// Cache before descending so self references resolve to this same
		// representation instead of recursing.
		s.cache[sh.Key()] = r
		for _, f := range sh.Fields {
			r.Fields = append(r.Fields, Field{Name: f.Name, Repr: s.Synthesize(f.Shape)})
		}
		return r

	case shape.KindReference:
		snake := SnakeCase(sh.Name)
		r := &Representation{
			Shape:        sh,
			Layout:       LayoutHandle,
			CType:        snake + "_t",
			GoType:       "core.Handle",
			ConsumerType: sh.Name,
			Symbols: Symbols{
				TypeName: sh.Name,
				Init:     snake + "_init",
				Free:     snake + "_free",
				Clone:    "clone_" + snake,
			},
		}
		s.cache[sh.Key()] = r
		for _, f := range sh.Fields {
			r.Fields = append(r.Fields, Field{Name: f.Name, Repr: s.Synthesize(f.Shape)})
		}
		return r

	case shape.KindOptional:
		elem := s.Synthesize(sh.Elem)
		if elem.Layout == LayoutRawValue || elem.Layout == LayoutRecord {
			// By-value elements cannot encode absence as null, so they
			// cross inside a {has_value, value} record.
			token := elem.token()
			r := &Representation{
				Shape:        sh,
				Layout:       LayoutOptionRecord,
				CType:        "option_" + SnakeCase(token) + "_t",
				GoType:       "Option" + token,
				ConsumerType: elem.ConsumerType + "?",
				Elem:         elem,
				Symbols: Symbols{
					TypeName: "Option" + token,
					Init:     "option_" + SnakeCase(token) + "_init",
					Free:     "option_" + SnakeCase(token) + "_free",
				},
			}
			s.support = append(s.support, r)
			return r
		}
		// Pointer-shaped elements (handles, text) encode absence as null;
		// the element's own representation and release function carry over.
		return &Representation{
			Shape:        sh,
			Layout:       LayoutPointer,
			CType:        elem.CType,
			GoType:       elem.GoType,
			ConsumerType: elem.ConsumerType + "?",
			Elem:         elem,
			Symbols:      elem.Symbols,
		}

	case shape.KindCollection, shape.KindOptionalCollection:
		// An optional collection shares the collection's entire generated
		// set: the null triple already expresses absence.
		collectionKey := (&shape.Shape{Kind: shape.KindCollection, Elem: sh.Elem}).Key()
		if r, ok := s.cache[collectionKey]; ok {
			return r
		}
		elem := s.Synthesize(sh.Elem)
		token := elem.token()
		r := &Representation{
			Shape:        sh,
			Layout:       LayoutArray,
			CType:        "ffi_array_" + SnakeCase(token) + "_t",
			GoType:       "core.Array",
			ConsumerType: "[" + elem.ConsumerType + "]",
			Elem:         elem,
			Symbols: Symbols{
				TypeName: "FFIArray" + token,
				Init:     "ffi_array_" + SnakeCase(token) + "_init",
				Free:     "ffi_array_" + SnakeCase(token) + "_free",
			},
		}
		s.cache[collectionKey] = r
		s.support = append(s.support, r)
		return r

	default:
		// Classification is the only producer of shapes; an unknown kind
		// here is a bug in this package, not caller input.
		panic(fmt.Sprintf("repr: no representation rule for kind %s", sh.Kind))
	}
}

// token returns the CamelCase token a representation contributes to derived
// type names (FFIArray<token>, Option<token>).
func (r *Representation) token() string {
	if r.Shape.Name != "" {
		return r.Shape.Name
	}
	switch r.Shape.Kind {
	case shape.KindString:
		return "String"
	case shape.KindIdentifier:
		return "UUID"
	case shape.KindTimestamp:
		return "TimeStamp"
	default:
		if spelling, ok := primitiveSpellings[r.Shape.Kind]; ok {
			return spelling.token
		}
		return r.Shape.Name
	}
}
