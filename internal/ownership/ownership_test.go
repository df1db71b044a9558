package ownership

import (
	"testing"

	"github.com/telus-agcg/platform-ffi-common/internal/parser"
	"github.com/telus-agcg/platform-ffi-common/internal/repr"
	"github.com/telus-agcg/platform-ffi-common/internal/shape"
)

func reprFromSource(t *testing.T, src, name string) *repr.Representation {
	t.Helper()
	file, err := parser.ParseSource("types.go", src)
	if err != nil {
		t.Fatalf("ParseSource() error: %v", err)
	}
	reg := shape.NewRegistry()
	if err := reg.AddFile(file); err != nil {
		t.Fatalf("AddFile() error: %v", err)
	}
	sh, err := reg.Classify(name)
	if err != nil {
		t.Fatalf("Classify(%s) error: %v", name, err)
	}
	return repr.NewSynthesizer().Synthesize(sh)
}

const farmSrc = `package types

// @ffi value
type GeoPoint struct {
	Lat float64
	Lng float64
}

// @ffi
type Plot struct {
	Name     string
	Centroid GeoPoint
	Tags     []string
	Planted  *time.Time
	Rating   *uint8
}
`

func TestResolveByLayout(t *testing.T) {
	plot := reprFromSource(t, farmSrc, "Plot")

	byName := make(map[string]*repr.Representation)
	for _, f := range plot.Fields {
		byName[f.Name] = f.Repr
	}

	tests := []struct {
		name string
		r    *repr.Representation
		want Protocol
	}{
		{"reference handle", plot,
			Protocol{Allocates: Boundary, Releases: Consumer, Borrowable: true, NullAbsent: true}},
		{"text", byName["Name"],
			Protocol{Allocates: Boundary, Releases: Consumer, NullAbsent: true}},
		{"flat record", byName["Centroid"],
			Protocol{}},
		{"array", byName["Tags"],
			Protocol{Allocates: Boundary, Releases: Consumer, NullAbsent: true}},
		{"optional handle", byName["Planted"],
			Protocol{Allocates: Boundary, Releases: Consumer, Borrowable: true, NullAbsent: true}},
		{"option record", byName["Rating"],
			Protocol{}},
	}
	for _, tt := range tests {
		if got := Resolve(tt.r); got != tt.want {
			t.Errorf("%s: Resolve() = %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestCollectionsNeverBorrow(t *testing.T) {
	tags := reprFromSource(t, farmSrc, "Plot").Fields[2].Repr
	if tags.Layout != repr.LayoutArray {
		t.Fatalf("Tags layout = %s, want array", tags.Layout)
	}
	if Resolve(tags).Borrowable {
		t.Error("collection representations must be clone-only")
	}
}

func TestRawValuesHaveNoObligations(t *testing.T) {
	src := `package types

// @ffi raw
type CropKind int32
`
	r := reprFromSource(t, src, "CropKind")
	if got := Resolve(r); got != (Protocol{}) {
		t.Errorf("raw value protocol = %+v, want zero obligations", got)
	}
}

func TestRecordReleaseTracksOwnedFields(t *testing.T) {
	src := `package types

// @ffi value
type Label struct {
	Text string
	Code int32
}

// @ffi value
type Tag struct {
	Label Label
}
`
	want := Protocol{Allocates: Boundary, Releases: Consumer}
	if got := Resolve(reprFromSource(t, src, "Label")); got != want {
		t.Errorf("record with text field: Resolve() = %+v, want %+v", got, want)
	}
	if got := Resolve(reprFromSource(t, src, "Tag")); got != want {
		t.Errorf("record nesting an owning record: Resolve() = %+v, want %+v", got, want)
	}
}

func TestOptionOfOwningRecordRequiresRelease(t *testing.T) {
	src := `package types

// @ffi value
type Inner struct {
	Text string
}

// @ffi value
type Outer struct {
	Maybe *Inner
}
`
	outer := reprFromSource(t, src, "Outer")
	maybe := outer.Fields[0].Repr
	if maybe.Layout != repr.LayoutOptionRecord {
		t.Fatalf("Maybe layout = %s, want option record", maybe.Layout)
	}

	want := Protocol{Allocates: Boundary, Releases: Consumer}
	if got := Resolve(maybe); got != want {
		t.Errorf("option of owning record: Resolve() = %+v, want %+v", got, want)
	}

	owned := NestedReleases(outer)
	if len(owned) != 1 || owned[0].Name != "Maybe" {
		t.Errorf("NestedReleases(Outer) = %v, want the wrapped record", owned)
	}
}

func TestNestedReleases(t *testing.T) {
	plot := reprFromSource(t, farmSrc, "Plot")
	owned := NestedReleases(plot)

	want := []string{"Name", "Tags", "Planted"}
	if len(owned) != len(want) {
		t.Fatalf("NestedReleases() = %d fields, want %d", len(owned), len(want))
	}
	for i, f := range owned {
		if f.Name != want[i] {
			t.Errorf("owned[%d] = %s, want %s", i, f.Name, want[i])
		}
	}
}
