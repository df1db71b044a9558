package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestArrayRoundTrip(t *testing.T) {
	before := PinnedAllocs()
	want := []int32{3, 1, 4, 1, 5}

	a := NewArray(want)
	if a.IsNull() {
		t.Fatal("present collection produced the null encoding")
	}
	if a.Len != 5 {
		t.Errorf("Len = %d, want 5", a.Len)
	}

	got := TakeArray[int32](a)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if PinnedAllocs() != before {
		t.Errorf("pinned allocs = %d, want %d (take must not leak)", PinnedAllocs(), before)
	}
}

func TestNilSliceIsNullEncoding(t *testing.T) {
	a := NewArray[int32](nil)
	if !a.IsNull() {
		t.Fatalf("nil slice: got %+v, want null encoding", a)
	}
	if got := TakeArray[int32](a); got != nil {
		t.Errorf("TakeArray(null) = %v, want nil", got)
	}
}

func TestEmptySliceStaysPresent(t *testing.T) {
	a := NewArray([]int32{})
	if a.IsNull() {
		t.Fatal("empty collection must not collapse to the absent encoding")
	}
	got := TakeArray[int32](a)
	if got == nil || len(got) != 0 {
		t.Errorf("TakeArray = %v, want empty non-nil slice", got)
	}
}

func TestFreeArrayNullIsNoOp(t *testing.T) {
	FreeArray(Array{}) // must not panic
}

func TestFreeArrayDoubleFreeIsFatal(t *testing.T) {
	a := NewArray([]int32{1})
	FreeArray(a)

	defer func() {
		if recover() == nil {
			t.Error("second free of a live buffer should panic")
		}
	}()
	FreeArray(a)
}

func TestTakeAfterFreeIsFatal(t *testing.T) {
	a := NewArray([]int32{1})
	FreeArray(a)

	defer func() {
		if recover() == nil {
			t.Error("take of a freed buffer should panic")
		}
	}()
	TakeArray[int32](a)
}

func TestAllocationSymmetry(t *testing.T) {
	before := PinnedAllocs()

	kept := NewArray([]uint8{1, 2, 3})
	dropped := NewArray([]uint8{4, 5})
	FreeArray(dropped)
	_ = TakeArray[uint8](kept)

	if PinnedAllocs() != before {
		t.Errorf("pinned allocs = %d, want %d", PinnedAllocs(), before)
	}
}
