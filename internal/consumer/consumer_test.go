package consumer

import (
	"strings"
	"testing"

	"github.com/telus-agcg/platform-ffi-common/internal/parser"
	"github.com/telus-agcg/platform-ffi-common/internal/shape"
)

func generateFromSource(t *testing.T, src string) string {
	t.Helper()
	file, err := parser.ParseSource("types.go", src)
	if err != nil {
		t.Fatalf("ParseSource() error: %v", err)
	}
	reg := shape.NewRegistry()
	if err := reg.AddFile(file); err != nil {
		t.Fatalf("AddFile() error: %v", err)
	}
	out, err := NewGenerator(reg, nil).Generate()
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	return out
}

const farmSrc = `package farm

type Acres uint64

// @ffi value
type GeoPoint struct {
	Lat float64
	Lng float64
}

// @ffi
type Plot struct {
	ID       UUID
	Name     string
	Area     Acres
	Centroid GeoPoint
	Tags     []string
	Sizes    []int32
	Planted  *time.Time
	Rating   *uint8
	Extras   *[]int32
}
`

func TestGenerateSupportPrelude(t *testing.T) {
	out := generateFromSource(t, farmSrc)

	for _, decl := range []string{
		"public struct RustError: Error {",
		"public enum FFIResult<T> {",
		"public protocol NativeData {",
		"public protocol FFIArray {",
		"public protocol FFIOption {",
		"extension String: NativeData {",
	} {
		if !strings.Contains(out, decl) {
			t.Errorf("bindings missing %q", decl)
		}
	}
	if !strings.Contains(out, "defer { ffi_string_free(cString) }") {
		t.Error("error reader should release the boundary string")
	}
}

func TestGenerateReferenceClass(t *testing.T) {
	out := generateFromSource(t, farmSrc)

	if !strings.Contains(out, "public final class Plot {") {
		t.Fatalf("bindings missing Plot class:\n%s", out)
	}
	if !strings.Contains(out, "deinit {\n        plot_free(handle)\n    }") {
		t.Error("deinit should release the owned handle")
	}
	if !strings.Contains(out, "public func clone() -> Plot {\n        Plot(handle: clone_plot(handle))\n    }") {
		t.Error("clone should wrap the duplicated handle")
	}
	if !strings.Contains(out, ") -> FFIResult<Plot> {") {
		t.Error("create should return an FFIResult")
	}
	if !strings.Contains(out, "guard handle != 0 else {\n            return .failure(.lastError())\n        }") {
		t.Error("create should surface the last error on a zero handle")
	}
}

func TestGenerateCreateSignature(t *testing.T) {
	out := generateFromSource(t, farmSrc)

	want := "public static func create(id: String, name: String, area: UInt64, " +
		"centroid: GeoPoint, tags: [String], sizes: [Int32], planted: Date?, " +
		"rating: UInt8?, extras: [Int32]?) -> FFIResult<Plot> {"
	if !strings.Contains(out, want) {
		t.Errorf("create signature mismatch:\n%s", out)
	}
}

func TestGenerateProperties(t *testing.T) {
	out := generateFromSource(t, farmSrc)

	if !strings.Contains(out, "public var name: String {\n        String.fromRust(get_plot_name(handle))\n    }") {
		t.Error("string property should materialize through fromRust")
	}
	if !strings.Contains(out, "public var centroid: GeoPoint {\n        GeoPoint.fromRust(get_plot_centroid(handle))\n    }") {
		t.Error("value property should materialize through fromRust")
	}
	if !strings.Contains(out, "public var tags: [String] {\n        get_plot_tags(handle).toArray()\n    }") {
		t.Error("collection property should materialize through toArray")
	}
	if !strings.Contains(out, "public var planted: Date? {") {
		t.Error("optional timestamp property missing")
	}
	if !strings.Contains(out, "get_optional_plot_planted(handle)") {
		t.Error("optional property should call the optional accessor")
	}
}

func TestGenerateOptionalCollectionProperty(t *testing.T) {
	out := generateFromSource(t, farmSrc)

	if !strings.Contains(out, "public var extras: [Int32]? {") {
		t.Fatal("optional collection property missing")
	}
	if !strings.Contains(out, "guard array.ptr != nil else {\n            return nil\n        }") {
		t.Error("null triple should map to nil")
	}
}

func TestGenerateValueStruct(t *testing.T) {
	out := generateFromSource(t, farmSrc)

	if !strings.Contains(out, "public struct GeoPoint {\n    public let lat: Double\n    public let lng: Double\n}") {
		t.Errorf("value struct mismatch:\n%s", out)
	}
	if !strings.Contains(out, "extension GeoPoint: NativeData {") {
		t.Error("value type should conform to NativeData")
	}
	if !strings.Contains(out, "defer { geo_point_free(foreignObject) }") {
		t.Error("fromRust should release the foreign record")
	}
}

func TestGenerateArrayConformances(t *testing.T) {
	out := generateFromSource(t, farmSrc)

	if !strings.Contains(out, "extension ffi_array_string_t: FFIArray {") {
		t.Error("string array conformance missing")
	}
	if !strings.Contains(out, "extension ffi_array_s32_t: FFIArray {") {
		t.Error("int32 array conformance missing")
	}
	if !strings.Contains(out, "String(cString: $0!)") {
		t.Error("string array should materialize element strings")
	}
	if n := strings.Count(out, "extension ffi_array_s32_t: FFIArray {"); n != 1 {
		t.Errorf("s32 array conformance emitted %d times, want 1", n)
	}
}

func TestGenerateOptionConformance(t *testing.T) {
	out := generateFromSource(t, farmSrc)

	if !strings.Contains(out, "extension option_u8_t: FFIOption {") {
		t.Fatal("option conformance missing")
	}
	if !strings.Contains(out, "return option_u8_init(false, 0)") {
		t.Error("absent optional should pass the placeholder value")
	}
}

func TestGenerateDateConformanceOnlyWithTimestamps(t *testing.T) {
	out := generateFromSource(t, farmSrc)
	if !strings.Contains(out, "extension Date: NativeData {") {
		t.Error("Date conformance missing despite timestamp field")
	}

	noTime := generateFromSource(t, `package farm

// @ffi
type Plot struct {
	Name string
}
`)
	if strings.Contains(noTime, "extension Date: NativeData {") {
		t.Error("Date conformance emitted for input without timestamps")
	}
}

const orchardSrc = `package farm

// @ffi
type Crop struct {
	Name string
}

// @ffi
type Plot struct {
	Crop  Crop
	Crops []Crop
}
`

func TestGenerateReferenceHandOver(t *testing.T) {
	out := generateFromSource(t, orchardSrc)

	if !strings.Contains(out, "func toRust() -> crop_t {\n        clone_crop(handle)\n    }") {
		t.Fatalf("reference class missing the hand-over method:\n%s", out)
	}
	if !strings.Contains(out, "plot_init(crop.toRust(), ") {
		t.Error("create should hand over an owned duplicate of the reference argument")
	}
}

func TestGenerateReferenceArrayConformance(t *testing.T) {
	out := generateFromSource(t, orchardSrc)

	if !strings.Contains(out, "extension ffi_array_crop_t: FFIArray {") {
		t.Fatalf("reference array conformance missing:\n%s", out)
	}
	if !strings.Contains(out, "return array.map { $0.handle }.withUnsafeBufferPointer {\n            ffi_array_crop_init(UnsafeRawPointer($0.baseAddress), Int32(array.count))\n        }") {
		t.Error("from(array:) should pass borrowed handles for the boundary to clone")
	}
	if !strings.Contains(out, "let buffer = ptr.bindMemory(to: crop_t.self, capacity: len)") {
		t.Error("toArray should bind the buffer to the handle type")
	}
	if !strings.Contains(out, "Crop(handle: clone_crop($0))") {
		t.Error("toArray wrappers should each adopt a fresh clone")
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	a := generateFromSource(t, farmSrc)
	b := generateFromSource(t, farmSrc)
	if a != b {
		t.Error("repeated generation should produce byte-identical bindings")
	}
}
