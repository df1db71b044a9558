package core

import (
	"encoding/hex"
	"fmt"
)

// UUID is the native form of a textual identifier field. Identifiers cross
// the boundary as text; reconstructing one from consumer-supplied bytes is
// the canonical fallible from-boundary conversion.
type UUID [16]byte

// ParseUUID reconstructs a UUID from its canonical 8-4-4-4-12 text form.
func ParseUUID(s string) (UUID, error) {
	var u UUID
	if len(s) != 36 || s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
		return u, fmt.Errorf("malformed identifier %q", s)
	}
	hexed := s[:8] + s[9:13] + s[14:18] + s[19:23] + s[24:]
	if _, err := hex.Decode(u[:], []byte(hexed)); err != nil {
		return u, fmt.Errorf("malformed identifier %q: %w", s, err)
	}
	return u, nil
}

// String renders u in canonical 8-4-4-4-12 form.
func (u UUID) String() string {
	h := hex.EncodeToString(u[:])
	return h[:8] + "-" + h[8:12] + "-" + h[12:16] + "-" + h[16:20] + "-" + h[20:]
}
