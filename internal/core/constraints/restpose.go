package constraints

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/xrig/internal/core/scene"
)

// RestPose holds the local rotations of a constraint's nodes at attach time.
type RestPose struct {
	SourceRestRotation mgl64.Quat
	TargetRestRotation mgl64.Quat
	captured           bool
}

func (r *RestPose) Capture(source, target scene.TransformNode) {
	r.SourceRestRotation = source.LocalRotation().Normalize()
	r.TargetRestRotation = target.LocalRotation().Normalize()
	r.captured = true
}

func (r *RestPose) Captured() bool { return r != nil && r.captured }

func (r *RestPose) Reset() { *r = RestPose{} }
