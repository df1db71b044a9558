package core

import "testing"

type testValue struct {
	ID   uint32
	Name string
}

func TestHandleRoundTrip(t *testing.T) {
	v := testValue{ID: 7, Name: "plot"}
	h := NewHandle(v)
	if h == 0 {
		t.Fatal("NewHandle returned the null handle")
	}

	got, ok := ResolveHandle(h).(testValue)
	if !ok {
		t.Fatalf("ResolveHandle returned %T, want testValue", ResolveHandle(h))
	}
	if got != v {
		t.Errorf("ResolveHandle = %+v, want %+v", got, v)
	}

	FreeHandle(h)
}

func TestTakeHandleConsumesOwnership(t *testing.T) {
	before := LiveHandles()
	h := NewHandle(testValue{ID: 1})

	if _, ok := TakeHandle(h).(testValue); !ok {
		t.Fatal("TakeHandle returned wrong type")
	}
	if LiveHandles() != before {
		t.Errorf("live handles = %d, want %d", LiveHandles(), before)
	}
}

func TestFreeNullHandleIsNoOp(t *testing.T) {
	FreeHandle(0) // must not panic
}

func TestDoubleFreeIsFatal(t *testing.T) {
	h := NewHandle(testValue{})
	FreeHandle(h)

	defer func() {
		if recover() == nil {
			t.Error("second free of a live handle should panic")
		}
	}()
	FreeHandle(h)
}

func TestResolveAfterFreeIsFatal(t *testing.T) {
	h := NewHandle(testValue{})
	FreeHandle(h)

	defer func() {
		if recover() == nil {
			t.Error("resolve of a freed handle should panic")
		}
	}()
	ResolveHandle(h)
}
