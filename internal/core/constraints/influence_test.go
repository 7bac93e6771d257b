package constraints

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfluenceStack(t *testing.T) {
	s := NewInfluenceStack(0.8)
	assert.InDelta(t, 0.8, s.Effective(), 1e-12)

	s.Set("fade", 0.5)
	s.Set("blend", 0.5)
	assert.InDelta(t, 0.2, s.Effective(), 1e-12)

	s.Set("fade", 1)
	assert.InDelta(t, 0.4, s.Effective(), 1e-12)
	assert.Len(t, s.Layers(), 2)

	assert.True(t, s.Remove("blend"))
	assert.False(t, s.Remove("blend"))
	assert.InDelta(t, 0.8, s.Effective(), 1e-12)
}

func TestInfluenceStackClamps(t *testing.T) {
	s := NewInfluenceStack(3)
	assert.Equal(t, 1.0, s.Base())
	s.SetBase(-1)
	assert.Equal(t, 0.0, s.Effective())
	s.SetBase(1)
	s.Set("over", 7)
	assert.Equal(t, 1.0, s.Effective())
}

func TestBaseAttachCapturesRest(t *testing.T) {
	source := rootAt("a", [3]float64{})
	source.SetLocalRotation(yaw(15))
	c := NewCollision("c", source, CollisionConfig{}, always)
	assert.False(t, c.RestPose().Captured())
	assert.NoError(t, c.Attach())
	assert.True(t, c.RestPose().Captured())
	assertSameRotation(t, yaw(15), c.RestPose().SourceRestRotation)
	assertSameRotation(t, yaw(15), c.RestPose().TargetRestRotation)

	c.RestPose().Reset()
	assert.False(t, c.RestPose().Captured())
}
