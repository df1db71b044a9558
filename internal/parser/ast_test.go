package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

const src = `package types

import "time"

// FieldID identifies a field boundary record.
type FieldID = string

type Acres uint64

// CropKind enumerates supported crop categories.
// @ffi raw
type CropKind int32

// GeoPoint is a WGS84 coordinate pair.
// @ffi value
type GeoPoint struct {
	Lat float64
	Lng float64
}

// Plot is a planted area within a field boundary.
// @ffi
type Plot struct {
	ID       UUID
	Name     string
	Area     Acres
	Kind     CropKind  ` + "`ffi:\"raw\"`" + `
	Centroid GeoPoint
	Tags     []string
	Planted  *time.Time
	scratch  []byte ` + "`ffi:\"-\"`" + `
}
`

func TestParseSource(t *testing.T) {
	file, err := ParseSource("types.go", src)
	if err != nil {
		t.Fatalf("ParseSource() error: %v", err)
	}

	wantAliases := []AliasDecl{
		{Name: "FieldID", Underlying: "string"},
		{Name: "Acres", Underlying: "uint64"},
	}
	if diff := cmp.Diff(wantAliases, file.Aliases); diff != "" {
		t.Errorf("aliases mismatch (-want +got):\n%s", diff)
	}

	if len(file.Types) != 3 {
		t.Fatalf("got %d types, want 3", len(file.Types))
	}

	kind := file.Types[0]
	if kind.Name != "CropKind" || kind.Anno.Kind != Raw || kind.Fields != nil {
		t.Errorf("CropKind parsed as %+v", kind)
	}

	point := file.Types[1]
	if point.Name != "GeoPoint" || point.Anno.Kind != Value {
		t.Errorf("GeoPoint parsed as %+v", point)
	}

	plot := file.Types[2]
	if plot.Anno.Kind != Reference {
		t.Errorf("Plot kind = %s, want reference", plot.Anno.Kind)
	}
	wantFields := []Field{
		{Name: "ID", GoType: "UUID", Attrs: &FieldAttrs{}},
		{Name: "Name", GoType: "string", Attrs: &FieldAttrs{}},
		{Name: "Area", GoType: "Acres", Attrs: &FieldAttrs{}},
		{Name: "Kind", GoType: "CropKind", Attrs: &FieldAttrs{Raw: true}},
		{Name: "Centroid", GoType: "GeoPoint", Attrs: &FieldAttrs{}},
		{Name: "Tags", GoType: "[]string", Attrs: &FieldAttrs{}},
		{Name: "Planted", GoType: "*time.Time", Attrs: &FieldAttrs{}},
	}
	if diff := cmp.Diff(wantFields, plot.Fields); diff != "" {
		t.Errorf("Plot fields mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSourceSkipsUnannotated(t *testing.T) {
	file, err := ParseSource("types.go", `package types

type Internal struct {
	X int
}
`)
	if err != nil {
		t.Fatalf("ParseSource() error: %v", err)
	}
	if len(file.Types) != 0 {
		t.Errorf("unannotated struct should be skipped, got %d types", len(file.Types))
	}
}

func TestParseSourceEmbeddedFieldIsError(t *testing.T) {
	_, err := ParseSource("types.go", `package types

// @ffi
type Bad struct {
	GeoPoint
}
`)
	if err == nil {
		t.Error("embedded field should be a parse error")
	}
}

func TestParseSourceRawStructIsError(t *testing.T) {
	_, err := ParseSource("types.go", `package types

// @ffi raw
type Bad struct {
	X int32
}
`)
	if err == nil {
		t.Error("@ffi raw on a struct should be an error")
	}
}

func TestParseTag(t *testing.T) {
	attrs, err := ParseTag("raw")
	if err != nil {
		t.Fatalf("ParseTag(raw) error: %v", err)
	}
	if !attrs.Raw {
		t.Error("ParseTag(raw).Raw = false")
	}

	attrs, err = ParseTag("-")
	if err != nil {
		t.Fatalf("ParseTag(-) error: %v", err)
	}
	if !attrs.Skip {
		t.Error("ParseTag(-).Skip = false")
	}

	if _, err := ParseTag("zerocopy"); err == nil {
		t.Error("unknown option should be an error")
	}
	if _, err := ParseTag("raw,-"); err == nil {
		t.Error(`"-" combined with options should be an error`)
	}
}
