// Package geom holds the small amount of vector and quaternion glue the
// constraint resolvers need on top of mgl64.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the tolerance used for approximate comparisons of positions and
// rotations.
const Epsilon = 1e-9

var (
	Zero  = mgl64.Vec3{}
	Right = mgl64.Vec3{1, 0, 0}
	Up    = mgl64.Vec3{0, 1, 0}
	Fwd   = mgl64.Vec3{0, 0, 1}
	One   = mgl64.Vec3{1, 1, 1}
)

// Clamp01 clamps t into [0, 1]. NaN clamps to 0.
func Clamp01(t float64) float64 {
	if !(t > 0) {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Lerp interpolates from a to b with t clamped to [0, 1].
// t == 0 returns a exactly and t == 1 returns b exactly.
func Lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	t = Clamp01(t)
	switch t {
	case 0:
		return a
	case 1:
		return b
	}
	return a.Add(b.Sub(a).Mul(t))
}

// Slerp is a shortest-arc spherical interpolation with t clamped to [0, 1].
// t == 0 returns a untouched.
func Slerp(a, b mgl64.Quat, t float64) mgl64.Quat {
	t = Clamp01(t)
	if t == 0 {
		return a
	}
	a, b = a.Normalize(), b.Normalize()
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	if t == 1 {
		return b
	}
	return mgl64.QuatSlerp(a, b, t).Normalize()
}

// Euler builds a rotation from angles in degrees, applied Z first, then X,
// then Y.
func Euler(x, y, z float64) mgl64.Quat {
	qx := mgl64.QuatRotate(mgl64.DegToRad(x), Right)
	qy := mgl64.QuatRotate(mgl64.DegToRad(y), Up)
	qz := mgl64.QuatRotate(mgl64.DegToRad(z), Fwd)
	return qy.Mul(qx).Mul(qz).Normalize()
}

// SafeInverse renormalizes q before inverting it so repeated ticks don't
// accumulate drift.
func SafeInverse(q mgl64.Quat) mgl64.Quat {
	return q.Normalize().Inverse()
}

// SameRotation reports whether a and b describe the same orientation within
// tol, treating q and -q as equal.
func SameRotation(a, b mgl64.Quat, tol float64) bool {
	d := math.Abs(a.Normalize().Dot(b.Normalize()))
	return 1-d <= tol
}

// Finite reports whether every component of v is a finite number.
func Finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
