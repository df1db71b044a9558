package core

import "testing"

func TestUUIDRoundTrip(t *testing.T) {
	const text = "67e55044-10b1-426f-9247-bb680e5fe0c8"
	u, err := ParseUUID(text)
	if err != nil {
		t.Fatalf("ParseUUID(%q) error: %v", text, err)
	}
	if got := u.String(); got != text {
		t.Errorf("String() = %q, want %q", got, text)
	}
}

func TestParseUUIDUppercase(t *testing.T) {
	u, err := ParseUUID("67E55044-10B1-426F-9247-BB680E5FE0C8")
	if err != nil {
		t.Fatalf("ParseUUID() error: %v", err)
	}
	// Canonical form is lowercase regardless of input case.
	if got := u.String(); got != "67e55044-10b1-426f-9247-bb680e5fe0c8" {
		t.Errorf("String() = %q", got)
	}
}

func TestParseUUIDMalformed(t *testing.T) {
	for _, bad := range []string{
		"",
		"not-an-identifier",
		"67e5504410b1426f9247bb680e5fe0c8",
		"67e55044-10b1-426f-9247-bb680e5fe0c",  // one short
		"67e5504410b1-426f-9247-bb680e5fe0c88", // misplaced dash
		"67e55044-10b1-426f-9247-bb680e5fe0cZ", // non-hex
	} {
		if _, err := ParseUUID(bad); err == nil {
			t.Errorf("ParseUUID(%q) succeeded, want error", bad)
		}
	}
}
