package shape

// Kind classifies a native type into its boundary disposition. The set is
// closed: every generated artifact is derived by exhaustive matching over
// Kind at generation time, never by runtime dispatch.
type Kind uint8

const (
	KindBool Kind = iota
	KindU8
	KindS8
	KindU16
	KindS16
	KindU32
	KindS32
	KindU64
	KindS64
	KindF32
	KindF64
	KindString
	KindIdentifier
	KindTimestamp
	KindRaw
	KindValue
	KindReference
	KindOptional
	KindCollection
	KindOptionalCollection
)

var kindNames = [...]string{
	KindBool:               "bool",
	KindU8:                 "u8",
	KindS8:                 "s8",
	KindU16:                "u16",
	KindS16:                "s16",
	KindU32:                "u32",
	KindS32:                "s32",
	KindU64:                "u64",
	KindS64:                "s64",
	KindF32:                "f32",
	KindF64:                "f64",
	KindString:             "string",
	KindIdentifier:         "identifier",
	KindTimestamp:          "timestamp",
	KindRaw:                "raw",
	KindValue:              "value",
	KindReference:          "reference",
	KindOptional:           "optional",
	KindCollection:         "collection",
	KindOptionalCollection: "optional_collection",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsPrimitive reports whether k is a fixed-width scalar that crosses the
// boundary by value with no conversion.
func (k Kind) IsPrimitive() bool {
	return k <= KindF64
}

// IsWrapper reports whether k wraps an element shape.
func (k Kind) IsWrapper() bool {
	switch k {
	case KindOptional, KindCollection, KindOptionalCollection:
		return true
	default:
		return false
	}
}

// IsTextual reports whether k crosses the boundary as a null-terminated
// text buffer.
func (k Kind) IsTextual() bool {
	return k == KindString || k == KindIdentifier
}

// primitiveKinds maps literal Go scalar spellings to their kind. Resolution
// order in Classify consults this first.
var primitiveKinds = map[string]Kind{
	"bool":    KindBool,
	"uint8":   KindU8,
	"byte":    KindU8,
	"int8":    KindS8,
	"uint16":  KindU16,
	"int16":   KindS16,
	"uint32":  KindU32,
	"int32":   KindS32,
	"uint64":  KindU64,
	"int64":   KindS64,
	"float32": KindF32,
	"float64": KindF64,
}
