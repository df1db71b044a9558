// Package ownership assigns the allocation and release protocol for every
// boundary representation. Resolution is a pure policy table keyed by
// layout; it cannot fail.
package ownership

import "github.com/telus-agcg/platform-ffi-common/internal/repr"

// Side names which side of the boundary holds a responsibility.
type Side uint8

const (
	// Neither means the value crosses by copy and nobody owes a release.
	Neither Side = iota
	// Boundary is the generation-target side: it allocates handles,
	// text buffers, option records and collection buffers.
	Boundary
	// Consumer is the client side: it owes the matching release call,
	// exactly once per boundary-allocated value.
	Consumer
)

var sideNames = [...]string{
	Neither:  "neither",
	Boundary: "boundary",
	Consumer: "consumer",
}

func (s Side) String() string {
	if int(s) < len(sideNames) {
		return sideNames[s]
	}
	return "unknown"
}

// Protocol is the resolved ownership policy for one representation.
type Protocol struct {
	// Allocates is the side that allocates the boundary value.
	Allocates Side
	// Releases is the side that must call the release function. Neither
	// means no release function exists for this layout.
	Releases Side

	// Borrowable reports whether a non-owning to-boundary path exists in
	// addition to the cloning one. Only handle layouts support it;
	// collections and flat records always clone, since copying a flat
	// buffer is cheap and borrowing it would alias native memory.
	Borrowable bool

	// NullAbsent reports whether the null encoding is the sanctioned
	// stand-in for an absent value and release of it is a no-op.
	NullAbsent bool
}

// Resolve returns the ownership protocol for r.
func Resolve(r *repr.Representation) Protocol {
	switch r.Layout {
	case repr.LayoutRawValue:
		return Protocol{}

	case repr.LayoutHandle:
		return Protocol{
			Allocates:  Boundary,
			Releases:   Consumer,
			Borrowable: true,
			NullAbsent: true,
		}

	case repr.LayoutText:
		return Protocol{
			Allocates:  Boundary,
			Releases:   Consumer,
			NullAbsent: true,
		}

	case repr.LayoutRecord:
		// The record itself crosses by copy, but owned innards (text,
		// handles, buffers) keep a release obligation on the generated
		// record free.
		if recordOwns(r, make(map[*repr.Representation]bool)) {
			return Protocol{Allocates: Boundary, Releases: Consumer}
		}
		return Protocol{}

	case repr.LayoutOptionRecord:
		// Crosses by copy with an explicit presence flag. A wrapped record
		// with owned fields is released through the generated option free.
		if r.Elem.Layout == repr.LayoutRecord && recordOwns(r.Elem, make(map[*repr.Representation]bool)) {
			return Protocol{Allocates: Boundary, Releases: Consumer}
		}
		return Protocol{}

	case repr.LayoutPointer:
		elem := Resolve(r.Elem)
		elem.NullAbsent = true
		return elem

	case repr.LayoutArray:
		return Protocol{
			Allocates:  Boundary,
			Releases:   Consumer,
			NullAbsent: true,
		}

	default:
		return Protocol{}
	}
}

// recordOwns reports whether a record layout carries boundary-owned payloads
// anywhere in its field tree. The seen set keeps self-referential records
// from recursing.
func recordOwns(r *repr.Representation, seen map[*repr.Representation]bool) bool {
	if seen[r] {
		return false
	}
	seen[r] = true
	for _, f := range r.Fields {
		switch f.Repr.Layout {
		case repr.LayoutText, repr.LayoutHandle, repr.LayoutArray, repr.LayoutPointer:
			return true
		case repr.LayoutRecord:
			if recordOwns(f.Repr, seen) {
				return true
			}
		case repr.LayoutOptionRecord:
			if f.Repr.Elem.Layout == repr.LayoutRecord && recordOwns(f.Repr.Elem, seen) {
				return true
			}
		}
	}
	return false
}

// NestedReleases returns the field representations of r that carry their own
// release obligation, in field order. The generated release function for a
// composite must release these before reclaiming the outer allocation.
func NestedReleases(r *repr.Representation) []repr.Field {
	var owned []repr.Field
	for _, f := range r.Fields {
		if Resolve(f.Repr).Releases != Neither {
			owned = append(owned, f)
		}
	}
	return owned
}
