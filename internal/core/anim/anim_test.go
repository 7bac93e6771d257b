package anim

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/zeusync/xrig/internal/core/geom"
	"github.com/zeusync/xrig/internal/core/scene"
)

func TestLinear(t *testing.T) {
	tests := []struct {
		name  string
		track Linear
		t     float64
		want  mgl64.Vec3
	}{
		{"start", Linear{To: mgl64.Vec3{4, 0, 0}, Duration: 2}, 0, mgl64.Vec3{}},
		{"middle", Linear{To: mgl64.Vec3{4, 0, 0}, Duration: 2}, 1, mgl64.Vec3{2, 0, 0}},
		{"holds", Linear{To: mgl64.Vec3{4, 0, 0}, Duration: 2}, 5, mgl64.Vec3{4, 0, 0}},
		{"ping pong back", Linear{To: mgl64.Vec3{4, 0, 0}, Duration: 2, PingPong: true}, 3, mgl64.Vec3{2, 0, 0}},
		{"ping pong loops", Linear{To: mgl64.Vec3{4, 0, 0}, Duration: 2, PingPong: true}, 4.5, mgl64.Vec3{1, 0, 0}},
		{"zero duration", Linear{To: mgl64.Vec3{4, 0, 0}}, 0, mgl64.Vec3{4, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := scene.NewNode("n")
			tt.track.Apply(n, tt.t)
			assert.True(t, tt.want.ApproxEqualThreshold(n.Position(), 1e-9), "got %v", n.Position())
		})
	}
}

func TestSpin(t *testing.T) {
	n := scene.NewNode("n")
	Spin{Target: "n", Axis: geom.Up, DegreesPerSecond: 90}.Apply(n, 0.5)
	want := mgl64.QuatRotate(mgl64.DegToRad(45), geom.Up)
	assert.True(t, geom.SameRotation(want, n.LocalRotation(), 1e-12))

	Spin{Target: "n", DegreesPerSecond: 90, Base: geom.Euler(10, 0, 0)}.Apply(n, 1)
	want = geom.Euler(10, 0, 0).Mul(mgl64.QuatRotate(mgl64.DegToRad(90), geom.Up))
	assert.True(t, geom.SameRotation(want, n.LocalRotation(), 1e-12))
	assert.Equal(t, "n", Spin{Target: "n"}.Node())
}
