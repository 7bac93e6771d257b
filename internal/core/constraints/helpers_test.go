package constraints

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/zeusync/xrig/internal/core/geom"
	"github.com/zeusync/xrig/internal/core/scene"
)

const tol = 1e-9

func assertVecNear(t *testing.T, want, got mgl64.Vec3) {
	t.Helper()
	assert.Truef(t, want.ApproxEqualThreshold(got, tol), "want %v, got %v", want, got)
}

func assertSameRotation(t *testing.T, want, got mgl64.Quat) {
	t.Helper()
	assert.Truef(t, geom.SameRotation(want, got, tol), "want %v, got %v", want, got)
}

func rootAt(name string, p mgl64.Vec3) *scene.Node {
	n := scene.NewNode(name)
	n.SetLocalPosition(p)
	return n
}

func yaw(deg float64) mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(deg), geom.Up)
}

func pitch(deg float64) mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(deg), geom.Right)
}
