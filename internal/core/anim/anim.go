// Package anim drives nodes before constraints run, standing in for whatever
// animation system moves a rig in production.
package anim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/xrig/internal/core/geom"
	"github.com/zeusync/xrig/internal/core/scene"
)

// Track sets node state for absolute time t in seconds.
type Track interface {
	Node() string
	Apply(node scene.TransformNode, t float64)
}

// Linear moves a node's world position from From to To over Duration. With
// PingPong it travels back and forth, otherwise it holds at To.
type Linear struct {
	Target   string
	From, To mgl64.Vec3
	Duration float64
	PingPong bool
}

func (l Linear) Node() string { return l.Target }

func (l Linear) Apply(node scene.TransformNode, t float64) {
	node.SetPosition(geom.Lerp(l.From, l.To, l.phase(t)))
}

func (l Linear) phase(t float64) float64 {
	if l.Duration <= 0 {
		return 1
	}
	u := t / l.Duration
	if !l.PingPong {
		return geom.Clamp01(u)
	}
	// triangle wave over [0, 2)
	u = math.Mod(u, 2)
	if u > 1 {
		u = 2 - u
	}
	return u
}

// Spin rotates a node about Axis, in its parent's space, at a constant rate
// starting from Base.
type Spin struct {
	Target           string
	Axis             mgl64.Vec3
	DegreesPerSecond float64
	Base             mgl64.Quat
}

func (s Spin) Node() string { return s.Target }

func (s Spin) Apply(node scene.TransformNode, t float64) {
	axis := s.Axis
	if axis.Len() == 0 {
		axis = geom.Up
	}
	base := s.Base
	if base == (mgl64.Quat{}) {
		base = mgl64.QuatIdent()
	}
	angle := mgl64.DegToRad(math.Mod(s.DegreesPerSecond*t, 360))
	node.SetLocalRotation(base.Mul(mgl64.QuatRotate(angle, axis.Normalize())))
}
