package core

import "testing"

func TestSetAndGetLastError(t *testing.T) {
	SetLastErrMsg("dummy error")
	if got := LastErrMsg(); got != "dummy error" {
		t.Errorf("LastErrMsg() = %q, want %q", got, "dummy error")
	}
}

func TestClearLastError(t *testing.T) {
	SetLastErrMsg("dummy error")
	ClearLastErrMsg()
	if got := LastErrMsg(); got != "" {
		t.Errorf("LastErrMsg() after clear = %q, want empty", got)
	}
}

func TestFailureThenSuccessLeavesSlotCleared(t *testing.T) {
	// A failing call sets the slot; the next call clears it on entry. The
	// consumer must never read a stale diagnostic after a successful call.
	SetLastErrMsg("first call failed")
	ClearLastErrMsg()
	if got := LastErrMsg(); got != "" {
		t.Errorf("slot not cleared on entry: %q", got)
	}
}
