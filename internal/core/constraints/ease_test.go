package constraints

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEaseFollow(t *testing.T) {
	tests := []struct {
		name      string
		speed     float64
		dt        float64
		influence float64
		want      mgl64.Vec3
	}{
		{"half way", 5, 0.1, 1, mgl64.Vec3{5, 0, 0}},
		{"scaled by influence", 5, 0.1, 0.5, mgl64.Vec3{2.5, 0, 0}},
		{"zero influence", 5, 0.1, 0, mgl64.Vec3{}},
		{"large step clamps", 5, 10, 1, mgl64.Vec3{10, 0, 0}},
		{"zero speed", 0, 0.1, 1, mgl64.Vec3{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := rootAt("cam", mgl64.Vec3{})
			target := rootAt("hand", mgl64.Vec3{10, 0, 0})
			c := NewEaseFollow("follow", source, target, tt.speed)
			c.SetInfluence(tt.influence)
			require.NoError(t, c.Resolve(Tick{DeltaTime: tt.dt}))
			assertVecNear(t, tt.want, source.Position())
			assert.Equal(t, mgl64.Vec3{10, 0, 0}, target.Position())
		})
	}
}

func TestEaseFollow_NegativeSpeedClamped(t *testing.T) {
	c := NewEaseFollow("f", rootAt("a", mgl64.Vec3{}), rootAt("b", mgl64.Vec3{1, 0, 0}), -3)
	assert.Zero(t, c.Speed())
}

func TestEaseFollow_MissingTarget(t *testing.T) {
	c := NewEaseFollow("f", rootAt("a", mgl64.Vec3{}), nil, 1)
	assert.ErrorIs(t, c.Resolve(Tick{DeltaTime: 0.1}), ErrMissingNode)
}
