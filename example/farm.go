//go:generate go run github.com/telus-agcg/platform-ffi-common/cmd/ffigen -swift farm.go

package example

import (
	"sync"
	"time"

	"github.com/telus-agcg/platform-ffi-common/core"
)

// Acres is an unannotated alias: fields typed with it cross as uint64 but
// keep the Acres name in generated collection symbols.
type Acres uint64

// @ffi raw
type CropKind int32

// @ffi value
type GeoPoint struct {
	Lat float64
	Lng float64
}

// @ffi
type Plot struct {
	ID       core.UUID
	Name     string
	Area     Acres
	Kind     CropKind
	Centroid GeoPoint
	Tags     []string
	Sizes    []int32
	Planted  *time.Time
	Rating   *uint8
	Extras   *[]int32

	mu sync.Mutex `ffi:"-"`
}
