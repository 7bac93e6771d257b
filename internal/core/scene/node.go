package scene

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/xrig/internal/core/geom"
)

// TransformNode is the positioned, oriented object constraints read and write.
// Resolvers hold non-owning references and mutate nodes in place.
type TransformNode interface {
	Name() string

	// World space

	Position() mgl64.Vec3
	SetPosition(mgl64.Vec3)
	Rotation() mgl64.Quat
	SetRotation(mgl64.Quat)

	// Parent space

	LocalRotation() mgl64.Quat
	SetLocalRotation(mgl64.Quat)

	// TransformPoint maps a point from this node's local space to world space.
	TransformPoint(local mgl64.Vec3) mgl64.Vec3
}

var _ TransformNode = (*Node)(nil)

// Node is a hierarchical transform. World values are composed from the parent
// chain on every read, so there is no cached state to invalidate.
type Node struct {
	name     string
	parent   *Node
	children []*Node

	localPosition mgl64.Vec3
	localRotation mgl64.Quat
	localScale    mgl64.Vec3
}

// NewNode returns an identity node without a parent.
func NewNode(name string) *Node {
	return &Node{
		name:          name,
		localRotation: mgl64.QuatIdent(),
		localScale:    geom.One,
	}
}

func (n *Node) Name() string      { return n.name }
func (n *Node) Parent() *Node     { return n.parent }
func (n *Node) Children() []*Node { return n.children }

func (n *Node) LocalPosition() mgl64.Vec3 { return n.localPosition }
func (n *Node) LocalScale() mgl64.Vec3    { return n.localScale }
func (n *Node) LocalRotation() mgl64.Quat { return n.localRotation }

func (n *Node) SetLocalPosition(p mgl64.Vec3) { n.localPosition = p }
func (n *Node) SetLocalScale(s mgl64.Vec3)    { n.localScale = s }

func (n *Node) SetLocalRotation(q mgl64.Quat) {
	n.localRotation = q.Normalize()
}

func (n *Node) Position() mgl64.Vec3 {
	if n.parent == nil {
		return n.localPosition
	}
	return n.parent.TransformPoint(n.localPosition)
}

func (n *Node) SetPosition(p mgl64.Vec3) {
	if n.parent == nil {
		n.localPosition = p
		return
	}
	n.localPosition = n.parent.InverseTransformPoint(p)
}

func (n *Node) Rotation() mgl64.Quat {
	if n.parent == nil {
		return n.localRotation
	}
	return n.parent.Rotation().Mul(n.localRotation).Normalize()
}

func (n *Node) SetRotation(q mgl64.Quat) {
	if n.parent == nil {
		n.localRotation = q.Normalize()
		return
	}
	n.localRotation = geom.SafeInverse(n.parent.Rotation()).Mul(q).Normalize()
}

func (n *Node) TransformPoint(local mgl64.Vec3) mgl64.Vec3 {
	p := n.localPosition.Add(n.localRotation.Rotate(scale(local, n.localScale)))
	if n.parent == nil {
		return p
	}
	return n.parent.TransformPoint(p)
}

// InverseTransformPoint maps a world point into this node's local space.
// Zero scale axes collapse to 0.
func (n *Node) InverseTransformPoint(world mgl64.Vec3) mgl64.Vec3 {
	p := world
	if n.parent != nil {
		p = n.parent.InverseTransformPoint(world)
	}
	p = geom.SafeInverse(n.localRotation).Rotate(p.Sub(n.localPosition))
	return unscale(p, n.localScale)
}

func (n *Node) attach(parent *Node) {
	n.parent = parent
	if parent != nil {
		parent.children = append(parent.children, n)
	}
}

func scale(v, s mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v[0] * s[0], v[1] * s[1], v[2] * s[2]}
}

func unscale(v, s mgl64.Vec3) mgl64.Vec3 {
	var out mgl64.Vec3
	for i := range v {
		if s[i] != 0 {
			out[i] = v[i] / s[i]
		}
	}
	return out
}
