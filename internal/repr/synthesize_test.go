package repr

import (
	"testing"

	"github.com/telus-agcg/platform-ffi-common/internal/parser"
	"github.com/telus-agcg/platform-ffi-common/internal/shape"
)

func classifyFromSource(t *testing.T, src, name string) *shape.Shape {
	t.Helper()
	file, err := parser.ParseSource("types.go", src)
	if err != nil {
		t.Fatalf("ParseSource() error: %v", err)
	}
	r := shape.NewRegistry()
	if err := r.AddFile(file); err != nil {
		t.Fatalf("AddFile() error: %v", err)
	}
	s, err := r.Classify(name)
	if err != nil {
		t.Fatalf("Classify(%s) error: %v", name, err)
	}
	return s
}

const plotSrc = `package types

type Acres uint64

// @ffi raw
type CropKind int32

// @ffi value
type GeoPoint struct {
	Lat float64
	Lng float64
}

// @ffi
type Plot struct {
	ID      UUID
	Name    string
	Area    Acres
	Kind    CropKind
	Tags    []string
	Sizes   []int32
	Planted *time.Time
	Note    *string
	Rating  *uint8
}
`

func TestSynthesizeReferenceType(t *testing.T) {
	sh := classifyFromSource(t, plotSrc, "Plot")
	syn := NewSynthesizer()
	r := syn.Synthesize(sh)

	if r.Layout != LayoutHandle {
		t.Fatalf("Plot layout = %s, want handle", r.Layout)
	}
	if r.CType != "plot_t" || r.GoType != "core.Handle" || r.ConsumerType != "Plot" {
		t.Errorf("Plot spellings = %q/%q/%q", r.CType, r.GoType, r.ConsumerType)
	}
	want := Symbols{TypeName: "Plot", Init: "plot_init", Free: "plot_free", Clone: "clone_plot"}
	if r.Symbols != want {
		t.Errorf("Plot symbols = %+v, want %+v", r.Symbols, want)
	}
	if len(r.Fields) != 9 {
		t.Fatalf("Plot fields = %d, want 9", len(r.Fields))
	}
}

func TestSynthesizeFieldLayouts(t *testing.T) {
	sh := classifyFromSource(t, plotSrc, "Plot")
	syn := NewSynthesizer()
	r := syn.Synthesize(sh)

	byName := make(map[string]*Representation, len(r.Fields))
	for _, f := range r.Fields {
		byName[f.Name] = f.Repr
	}

	tests := []struct {
		field    string
		layout   Layout
		cType    string
		consumer string
	}{
		{"ID", LayoutText, "char *", "String"},
		{"Name", LayoutText, "char *", "String"},
		{"Area", LayoutRawValue, "uint64_t", "UInt64"},
		{"Kind", LayoutRawValue, "crop_kind_t", "CropKind"},
		{"Tags", LayoutArray, "ffi_array_string_t", "[String]"},
		{"Sizes", LayoutArray, "ffi_array_s32_t", "[Int32]"},
		{"Planted", LayoutPointer, "time_stamp_t", "Date?"},
		{"Note", LayoutPointer, "char *", "String?"},
		{"Rating", LayoutOptionRecord, "option_u8_t", "UInt8?"},
	}
	for _, tt := range tests {
		fr, ok := byName[tt.field]
		if !ok {
			t.Errorf("field %s missing", tt.field)
			continue
		}
		if fr.Layout != tt.layout {
			t.Errorf("%s layout = %s, want %s", tt.field, fr.Layout, tt.layout)
		}
		if fr.CType != tt.cType {
			t.Errorf("%s CType = %q, want %q", tt.field, fr.CType, tt.cType)
		}
		if fr.ConsumerType != tt.consumer {
			t.Errorf("%s ConsumerType = %q, want %q", tt.field, fr.ConsumerType, tt.consumer)
		}
	}
}

func TestSynthesizeValueType(t *testing.T) {
	sh := classifyFromSource(t, plotSrc, "GeoPoint")
	syn := NewSynthesizer()
	r := syn.Synthesize(sh)

	if r.Layout != LayoutRecord {
		t.Fatalf("GeoPoint layout = %s, want record", r.Layout)
	}
	if r.CType != "geo_point_t" || r.GoType != "GeoPointFFI" {
		t.Errorf("GeoPoint spellings = %q/%q", r.CType, r.GoType)
	}
	if r.Symbols.Init != "geo_point_init" || r.Symbols.Clone != "" {
		t.Errorf("GeoPoint symbols = %+v; value types have no clone", r.Symbols)
	}
	for _, f := range r.Fields {
		if f.Repr.Layout != LayoutRawValue || f.Repr.CType != "double" {
			t.Errorf("GeoPoint.%s = %s %q, want raw_value double", f.Name, f.Repr.Layout, f.Repr.CType)
		}
	}
}

func TestSynthesizeIsIdempotent(t *testing.T) {
	sh := classifyFromSource(t, plotSrc, "Plot")
	syn := NewSynthesizer()
	if syn.Synthesize(sh) != syn.Synthesize(sh) {
		t.Error("repeated synthesis of one shape should return the same representation")
	}
}

func TestSynthesizeDeduplicatesSupport(t *testing.T) {
	src := `package types

// @ffi
type Plot struct {
	Sizes []int32
}

// @ffi
type Boundary struct {
	Vertices []int32
	Labels   []string
}
`
	file, err := parser.ParseSource("types.go", src)
	if err != nil {
		t.Fatalf("ParseSource() error: %v", err)
	}
	reg := shape.NewRegistry()
	if err := reg.AddFile(file); err != nil {
		t.Fatalf("AddFile() error: %v", err)
	}

	syn := NewSynthesizer()
	for _, name := range reg.DeclNames() {
		sh, err := reg.Classify(name)
		if err != nil {
			t.Fatalf("Classify(%s) error: %v", name, err)
		}
		syn.Synthesize(sh)
	}

	support := syn.Support()
	if len(support) != 2 {
		t.Fatalf("support sets = %d, want 2 (one s32 array, one string array)", len(support))
	}
	if support[0].Symbols.TypeName != "FFIArrayS32" || support[1].Symbols.TypeName != "FFIArrayString" {
		t.Errorf("support order = %s, %s; want first-encounter order",
			support[0].Symbols.TypeName, support[1].Symbols.TypeName)
	}
}

func TestSynthesizeOptionalCollectionSharesArraySet(t *testing.T) {
	src := `package types

// @ffi
type Plot struct {
	Sizes  []int32
	Extras *[]int32
}
`
	sh := classifyFromSource(t, src, "Plot")
	syn := NewSynthesizer()
	r := syn.Synthesize(sh)

	sizes := r.Fields[0].Repr
	extras := r.Fields[1].Repr
	if sizes != extras {
		t.Error("optional collection should reuse the collection's representation")
	}
	if !extras.NullEncodesAbsence() {
		t.Error("array layout should encode absence as the null triple")
	}
	if len(syn.Support()) != 1 {
		t.Errorf("support sets = %d, want 1", len(syn.Support()))
	}
}

func TestSynthesizeAliasedCollectionGetsOwnSymbols(t *testing.T) {
	src := `package types

type Acres = uint64

// @ffi
type Farm struct {
	Fields []Acres
	Raws   []uint64
}
`
	sh := classifyFromSource(t, src, "Farm")
	syn := NewSynthesizer()
	r := syn.Synthesize(sh)

	aliased := r.Fields[0].Repr
	raw := r.Fields[1].Repr
	if aliased == raw {
		t.Fatal("aliased element should produce a distinct array set")
	}
	if aliased.Symbols.TypeName != "FFIArrayAcres" {
		t.Errorf("aliased array = %s, want FFIArrayAcres", aliased.Symbols.TypeName)
	}
	if raw.Symbols.TypeName != "FFIArrayU64" {
		t.Errorf("plain array = %s, want FFIArrayU64", raw.Symbols.TypeName)
	}
}

func TestSynthesizeSelfReference(t *testing.T) {
	src := `package types

// @ffi
type Node struct {
	Name string
	Next *Node
}
`
	sh := classifyFromSource(t, src, "Node")
	r := NewSynthesizer().Synthesize(sh)

	next := r.Fields[1].Repr
	if next.Layout != LayoutPointer {
		t.Fatalf("Next layout = %s, want pointer", next.Layout)
	}
	if next.Elem != r {
		t.Error("self reference should resolve to the same representation")
	}
}

func TestSnakeCase(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Plot", "plot"},
		{"GeoPoint", "geo_point"},
		{"FieldID", "field_id"},
		{"FFIArrayS32", "ffi_array_s32"},
		{"CropKind", "crop_kind"},
		{"UUID", "uuid"},
	}
	for _, tt := range tests {
		if got := SnakeCase(tt.in); got != tt.want {
			t.Errorf("SnakeCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
