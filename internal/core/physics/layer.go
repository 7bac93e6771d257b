package physics

import (
	"fmt"
	"math/bits"

	"github.com/go-gl/mathgl/mgl64"
)

// Layer is a collision filter bitmask. A collider sits on one or more layers
// and a query only sees colliders whose layers intersect the query mask.
type Layer uint32

const (
	NoLayers  Layer = 0
	AllLayers Layer = ^Layer(0)
)

// LayerMask builds a mask from layer indices in [0, 31].
func LayerMask(indices ...int) (Layer, error) {
	var m Layer
	for _, i := range indices {
		if i < 0 || i > 31 {
			return 0, fmt.Errorf("layer index %d out of range [0,31]", i)
		}
		m |= 1 << uint(i)
	}
	return m, nil
}

func (l Layer) Has(other Layer) bool { return l&other != 0 }
func (l Layer) Count() int           { return bits.OnesCount32(uint32(l)) }

// Overlapper answers boolean sphere overlap queries against scene colliders.
type Overlapper interface {
	OverlapSphere(center mgl64.Vec3, radius float64, mask Layer) bool
}

// OverlapFunc adapts a plain function to Overlapper.
type OverlapFunc func(center mgl64.Vec3, radius float64, mask Layer) bool

func (f OverlapFunc) OverlapSphere(center mgl64.Vec3, radius float64, mask Layer) bool {
	return f(center, radius, mask)
}
