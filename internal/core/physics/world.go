package physics

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/dhconnelly/rtreego"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrColliderExists   = errors.New("collider already registered")
	ErrColliderNotFound = errors.New("collider not found")
)

var _ Overlapper = (*World)(nil)

// queryMargin widens broadphase query boxes.
const queryMargin = 1e-6

// World indexes colliders in an R-tree and answers overlap queries.
// The tree only narrows candidates; the exact shape test decides contact.
type World struct {
	mu        sync.RWMutex
	tree      *rtreego.Rtree
	colliders map[string]Collider
}

func NewWorld() *World {
	return &World{
		tree:      rtreego.NewTree(3, 2, 8),
		colliders: make(map[string]Collider),
	}
}

func (w *World) Add(c Collider) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.colliders[c.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrColliderExists, c.Name())
	}
	w.colliders[c.Name()] = c
	w.tree.Insert(c)
	return nil
}

func (w *World) Remove(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, ok := w.colliders[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrColliderNotFound, name)
	}
	w.tree.Delete(c)
	delete(w.colliders, name)
	return nil
}

// Move applies mutate to the named collider and reindexes it. The tree entry
// must be removed with the old bounds before the shape changes.
func (w *World) Move(name string, mutate func(Collider)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, ok := w.colliders[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrColliderNotFound, name)
	}
	w.tree.Delete(c)
	mutate(c)
	w.tree.Insert(c)
	return nil
}

func (w *World) Collider(name string) (Collider, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.colliders[name]
	return c, ok
}

func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.colliders)
}

func (w *World) OverlapSphere(center mgl64.Vec3, radius float64, mask Layer) bool {
	return len(w.query(center, radius, mask, true)) > 0
}

// OverlapSphereAll returns every collider touching the sphere.
func (w *World) OverlapSphereAll(center mgl64.Vec3, radius float64, mask Layer) []Collider {
	return w.query(center, radius, mask, false)
}

func (w *World) query(center mgl64.Vec3, radius float64, mask Layer, first bool) []Collider {
	if mask == NoLayers {
		return nil
	}
	radius = math.Max(radius, 0)
	// rtreego skips rects that only share a face; pad so touching shapes
	// still reach the exact test.
	pad := radius + queryMargin
	r := mgl64.Vec3{pad, pad, pad}
	bb := aabb(center.Sub(r), center.Add(r))

	w.mu.RLock()
	defer w.mu.RUnlock()

	var out []Collider
	w.tree.SearchIntersect(bb, func(_ []rtreego.Spatial, obj rtreego.Spatial) (refuse, abort bool) {
		c := obj.(Collider)
		if !c.Layer().Has(mask) || !c.IntersectsSphere(center, radius) {
			return true, false
		}
		out = append(out, c)
		return false, first
	})
	return out
}
