package core

import "testing"

func TestBoxRoundTrip(t *testing.T) {
	before := PinnedAllocs()

	ptr := NewBox(uint8(3))
	if ptr == nil {
		t.Fatal("NewBox() returned nil")
	}
	if PinnedAllocs() != before+1 {
		t.Fatalf("PinnedAllocs() = %d, want %d", PinnedAllocs(), before+1)
	}

	got, ok := TakeBox[uint8](ptr)
	if !ok || got != 3 {
		t.Errorf("TakeBox() = %d, %v; want 3, true", got, ok)
	}
	if PinnedAllocs() != before {
		t.Errorf("PinnedAllocs() = %d after take, want %d", PinnedAllocs(), before)
	}
}

func TestTakeBoxNil(t *testing.T) {
	got, ok := TakeBox[uint64](nil)
	if ok || got != 0 {
		t.Errorf("TakeBox(nil) = %d, %v; want 0, false", got, ok)
	}
}

func TestFreeBoxNilIsNoOp(t *testing.T) {
	FreeBox(nil)
}

func TestFreeBoxTwicePanics(t *testing.T) {
	ptr := NewBox(int32(-7))
	FreeBox(ptr)

	defer func() {
		if recover() == nil {
			t.Error("second FreeBox of a live pointer should panic")
		}
	}()
	FreeBox(ptr)
}
