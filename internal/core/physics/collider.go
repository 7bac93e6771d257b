package physics

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/go-gl/mathgl/mgl64"
)

// minExtent keeps degenerate shapes indexable; rtreego rejects zero lengths.
const minExtent = 1e-9

// Collider is a static or kinematic shape the World can index and test.
type Collider interface {
	rtreego.Spatial

	Name() string
	Layer() Layer
	// IntersectsSphere reports contact with a sphere, touching included.
	IntersectsSphere(center mgl64.Vec3, radius float64) bool
}

type shape struct {
	name  string
	layer Layer
}

func (s shape) Name() string { return s.name }
func (s shape) Layer() Layer { return s.layer }

// Sphere collider.
type Sphere struct {
	shape
	Center mgl64.Vec3
	Radius float64
}

func NewSphere(name string, layer Layer, center mgl64.Vec3, radius float64) *Sphere {
	return &Sphere{shape: shape{name, layer}, Center: center, Radius: radius}
}

func (s *Sphere) Bounds() rtreego.Rect {
	r := mgl64.Vec3{s.Radius, s.Radius, s.Radius}
	return aabb(s.Center.Sub(r), s.Center.Add(r))
}

func (s *Sphere) IntersectsSphere(center mgl64.Vec3, radius float64) bool {
	rr := s.Radius + radius
	d := center.Sub(s.Center)
	return d.Dot(d) <= rr*rr
}

// Box is an oriented box collider.
type Box struct {
	shape
	Center      mgl64.Vec3
	HalfExtents mgl64.Vec3
	Rotation    mgl64.Quat
}

func NewBox(name string, layer Layer, center, halfExtents mgl64.Vec3, rotation mgl64.Quat) *Box {
	return &Box{shape: shape{name, layer}, Center: center, HalfExtents: halfExtents, Rotation: rotation.Normalize()}
}

func (b *Box) Bounds() rtreego.Rect {
	// project the rotated half extents onto world axes
	m := b.Rotation.Mat4()
	var ext mgl64.Vec3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			ext[i] += math.Abs(m.At(i, j)) * b.HalfExtents[j]
		}
	}
	return aabb(b.Center.Sub(ext), b.Center.Add(ext))
}

func (b *Box) IntersectsSphere(center mgl64.Vec3, radius float64) bool {
	local := b.Rotation.Inverse().Rotate(center.Sub(b.Center))
	var closest mgl64.Vec3
	for i := range local {
		closest[i] = mgl64.Clamp(local[i], -b.HalfExtents[i], b.HalfExtents[i])
	}
	d := local.Sub(closest)
	return d.Dot(d) <= radius*radius
}

// Capsule is a swept sphere between A and B.
type Capsule struct {
	shape
	A, B   mgl64.Vec3
	Radius float64
}

func NewCapsule(name string, layer Layer, a, b mgl64.Vec3, radius float64) *Capsule {
	return &Capsule{shape: shape{name, layer}, A: a, B: b, Radius: radius}
}

func (c *Capsule) Bounds() rtreego.Rect {
	r := mgl64.Vec3{c.Radius, c.Radius, c.Radius}
	lo, hi := c.A, c.A
	for i := 0; i < 3; i++ {
		lo[i] = math.Min(c.A[i], c.B[i])
		hi[i] = math.Max(c.A[i], c.B[i])
	}
	return aabb(lo.Sub(r), hi.Add(r))
}

func (c *Capsule) IntersectsSphere(center mgl64.Vec3, radius float64) bool {
	ab := c.B.Sub(c.A)
	t := 0.0
	if l2 := ab.Dot(ab); l2 > 0 {
		t = mgl64.Clamp(center.Sub(c.A).Dot(ab)/l2, 0, 1)
	}
	d := center.Sub(c.A.Add(ab.Mul(t)))
	rr := c.Radius + radius
	return d.Dot(d) <= rr*rr
}

func aabb(lo, hi mgl64.Vec3) rtreego.Rect {
	lengths := make([]float64, 3)
	for i := range lengths {
		lengths[i] = math.Max(hi[i]-lo[i], minExtent)
	}
	r, err := rtreego.NewRect(rtreego.Point{lo[0], lo[1], lo[2]}, lengths)
	if err != nil {
		// lengths are strictly positive, NewRect cannot fail here
		panic(err)
	}
	return r
}
