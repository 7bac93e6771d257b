package constraints

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/xrig/internal/core/events/bus"
	"github.com/zeusync/xrig/internal/core/observability/log"
	"github.com/zeusync/xrig/internal/core/physics"
	"github.com/zeusync/xrig/internal/core/scene"
)

func testDeps(t *testing.T) Deps {
	t.Helper()
	g := scene.NewGraph()
	for _, name := range []string{"forearm", "hand", "cam"} {
		require.NoError(t, g.Add(scene.NewNode(name), ""))
	}
	return Deps{Graph: g, Overlap: physics.NewWorld(), Bus: bus.New()}
}

func TestDefaultRegistryKinds(t *testing.T) {
	assert.Equal(t, []Kind{KindCollision, KindEaseFollow, KindTwistCorrection}, DefaultRegistry().Kinds())
}

func TestRegistryBuildsCollision(t *testing.T) {
	c, err := DefaultRegistry().New(Spec{
		Name:      "hand-collision",
		Kind:      KindCollision,
		Source:    "hand",
		Influence: 0.75,
		Params: map[string]any{
			"radius":        0.2,
			"offset":        []any{0, 1, 0.5},
			"mask":          []any{1, 3},
			"forward_steps": 4,
		},
	}, testDeps(t))
	require.NoError(t, err)

	col, ok := c.(*Collision)
	require.True(t, ok)
	assert.Equal(t, "hand-collision", col.Name())
	assert.Equal(t, KindCollision, col.Kind())
	assert.InDelta(t, 0.75, col.Influence(), 1e-12)
	assert.Equal(t, CollisionConfig{
		Radius:       0.2,
		Offset:       mgl64.Vec3{0, 1, 0.5},
		Mask:         physics.Layer(0b1010),
		ForwardSteps: 4,
	}, col.Config())
}

func TestRegistryBuildsTwistAndEase(t *testing.T) {
	deps := testDeps(t)
	r := DefaultRegistry()

	c, err := r.New(Spec{Name: "twist", Kind: KindTwistCorrection, Source: "forearm", Target: "hand", Influence: 1,
		Params: map[string]any{"axis": "x", "space": "parent"}}, deps)
	require.NoError(t, err)
	assert.Equal(t, TwistCorrectionConfig{Axis: AxisX, Space: SpaceParent}, c.(*TwistCorrection).Config())

	c, err = r.New(Spec{Name: "follow", Kind: KindEaseFollow, Source: "cam", Target: "hand", Influence: 1,
		Params: map[string]any{"ease_speed": 2}}, deps)
	require.NoError(t, err)
	assert.Equal(t, 2.0, c.(*EaseFollow).Speed())

	c, err = r.New(Spec{Name: "follow2", Kind: KindEaseFollow, Source: "cam", Target: "hand", Influence: 1}, deps)
	require.NoError(t, err)
	assert.Equal(t, DefaultEaseSpeed, c.(*EaseFollow).Speed())
}

func TestRegistryErrors(t *testing.T) {
	deps := testDeps(t)
	r := DefaultRegistry()
	tests := []struct {
		name string
		spec Spec
		want error
	}{
		{"unknown kind", Spec{Name: "x", Kind: "ik", Source: "hand"}, ErrUnknownKind},
		{"missing source", Spec{Name: "x", Kind: KindCollision}, ErrMissingNode},
		{"unknown node", Spec{Name: "x", Kind: KindCollision, Source: "foot"}, scene.ErrNodeNotFound},
		{"bad radius", Spec{Name: "x", Kind: KindCollision, Source: "hand", Params: map[string]any{"radius": "big"}}, ErrInvalidParam},
		{"negative radius", Spec{Name: "x", Kind: KindCollision, Source: "hand", Params: map[string]any{"radius": -1}}, ErrInvalidParam},
		{"bad steps", Spec{Name: "x", Kind: KindCollision, Source: "hand", Params: map[string]any{"forward_steps": 1.5}}, ErrInvalidParam},
		{"bad mask", Spec{Name: "x", Kind: KindCollision, Source: "hand", Params: map[string]any{"mask": []any{40}}}, ErrInvalidParam},
		{"bad offset", Spec{Name: "x", Kind: KindCollision, Source: "hand", Params: map[string]any{"offset": []any{1, 2}}}, ErrInvalidParam},
		{"bad axis", Spec{Name: "x", Kind: KindTwistCorrection, Source: "forearm", Target: "hand", Params: map[string]any{"axis": "w"}}, ErrInvalidParam},
		{"missing target", Spec{Name: "x", Kind: KindEaseFollow, Source: "cam"}, ErrMissingNode},
		{"negative speed", Spec{Name: "x", Kind: KindEaseFollow, Source: "cam", Target: "hand", Params: map[string]any{"ease_speed": -1}}, ErrInvalidParam},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.New(tt.spec, deps)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRegistryCollisionNeedsOverlap(t *testing.T) {
	deps := testDeps(t)
	deps.Overlap = nil
	_, err := DefaultRegistry().New(Spec{Name: "x", Kind: KindCollision, Source: "hand"}, deps)
	assert.ErrorIs(t, err, ErrInvalidParam)
}

// fileLogger returns a debug logger and a func that flushes it and returns
// everything written so far.
func fileLogger(t *testing.T) (*log.Logger, func() string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.log")
	l := log.NewWithOptions(log.Options{Level: log.LevelDebug, OutputPaths: []string{path}})
	return l, func() string {
		require.NoError(t, l.Sync())
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		return string(data)
	}
}

func TestRegistryMaskForms(t *testing.T) {
	tests := []struct {
		name    string
		mask    any
		want    physics.Layer
		wantErr bool
	}{
		{"single index", 1, 1 << 1, false},
		{"single index from json", 1.0, 1 << 1, false},
		{"list", []any{1}, 1 << 1, false},
		{"several", []any{0, 2}, 0b101, false},
		{"fractional index", 1.5, 0, true},
		{"fractional list entry", []any{1, 1.5}, 0, true},
		{"out of range", 40, 0, true},
		{"negative", []any{-1}, 0, true},
		{"not a number", "wall", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := DefaultRegistry().New(Spec{
				Name: "x", Kind: KindCollision, Source: "hand", Influence: 1,
				Params: map[string]any{"mask": tt.mask},
			}, testDeps(t))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidParam)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.(*Collision).Config().Mask)
		})
	}
}

func TestRegistryWarnsOnNonPositiveForwardSteps(t *testing.T) {
	logger, output := fileLogger(t)
	deps := testDeps(t)
	deps.Logger = logger

	c, err := DefaultRegistry().New(Spec{
		Name: "hand-collision", Kind: KindCollision, Source: "hand", Influence: 1,
		Params: map[string]any{"forward_steps": 0},
	}, deps)
	require.NoError(t, err)

	assert.Equal(t, 1, c.(*Collision).Config().Steps())
	out := output()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, "forward_steps below 1")
	assert.Contains(t, out, `"forward_steps":0`)
}

func TestRegistryCollisionLogsPositions(t *testing.T) {
	logger, output := fileLogger(t)
	deps := testDeps(t)
	deps.Logger = logger
	w := physics.NewWorld()
	require.NoError(t, w.Add(physics.NewSphere("ball", physics.AllLayers, mgl64.Vec3{1.5, 0, 0}, 0.5)))
	deps.Overlap = w

	c, err := DefaultRegistry().New(Spec{
		Name: "hand-collision", Kind: KindCollision, Source: "hand", Influence: 1,
		Params: map[string]any{"radius": 0.1, "forward_steps": 3},
	}, deps)
	require.NoError(t, err)
	require.NoError(t, c.Attach())

	hand, _ := deps.Graph.Node("hand")
	require.NoError(t, c.Resolve(Tick{Frame: 1}))
	hand.SetPosition(mgl64.Vec3{3, 0, 0})
	require.NoError(t, c.Resolve(Tick{Frame: 2}))

	assert.Equal(t, mgl64.Vec3{}, hand.Position())
	out := output()
	assert.Contains(t, out, `"constraint":"hand-collision"`)
	assert.Contains(t, out, `"node":"hand"`)
	assert.Contains(t, out, `"frame":2`)
	assert.Contains(t, out, `"safe":[0,0,0]`)
	assert.Contains(t, out, `"target":[3,0,0]`)
}
