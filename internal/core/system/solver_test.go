package system

import (
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/xrig/internal/core/constraints"
	"github.com/zeusync/xrig/internal/core/physics"
	"github.com/zeusync/xrig/internal/core/scene"
)

type fakeConstraint struct {
	id       uuid.UUID
	name     string
	enabled  bool
	attached int
	err      error
	trace    *[]string
}

func newFake(name string, trace *[]string) *fakeConstraint {
	return &fakeConstraint{id: uuid.New(), name: name, enabled: true, trace: trace}
}

func (f *fakeConstraint) ID() uuid.UUID          { return f.id }
func (f *fakeConstraint) Name() string           { return f.name }
func (f *fakeConstraint) Kind() constraints.Kind { return "fake" }
func (f *fakeConstraint) Enabled() bool          { return f.enabled }
func (f *fakeConstraint) SetEnabled(v bool)      { f.enabled = v }
func (f *fakeConstraint) Influence() float64     { return 1 }
func (f *fakeConstraint) Attach() error          { f.attached++; return nil }
func (f *fakeConstraint) Resolve(constraints.Tick) error {
	*f.trace = append(*f.trace, f.name)
	return f.err
}

type fakeRecorder struct {
	resolves int
	errs     int
	ticks    int
}

func (r *fakeRecorder) ObserveResolve(_ constraints.Kind, _ string, _ time.Duration, err error) {
	r.resolves++
	if err != nil {
		r.errs++
	}
}

func (r *fakeRecorder) ObserveTick(time.Duration) { r.ticks++ }

func TestSolverOrder(t *testing.T) {
	var trace []string
	s := NewSolver()
	require.NoError(t, s.Add(newFake("a", &trace), PriorityNormal))
	require.NoError(t, s.Add(newFake("b", &trace), PriorityHigh))
	require.NoError(t, s.Add(newFake("c", &trace), PriorityNormal))
	require.NoError(t, s.Add(newFake("d", &trace), PriorityLow))

	assert.Equal(t, []string{"b", "a", "c", "d"}, s.ExecutionOrder())
	require.NoError(t, s.Update(constraints.Tick{Frame: 1}))
	assert.Equal(t, []string{"b", "a", "c", "d"}, trace)
}

func TestSolverDuplicateAndRemove(t *testing.T) {
	var trace []string
	s := NewSolver()
	require.NoError(t, s.Add(newFake("a", &trace), PriorityNormal))
	assert.ErrorIs(t, s.Add(newFake("a", &trace), PriorityNormal), ErrDuplicateConstraint)

	require.NoError(t, s.Remove("a"))
	assert.ErrorIs(t, s.Remove("a"), ErrConstraintNotFound)
	_, ok := s.Get("a")
	assert.False(t, ok)
	assert.Empty(t, s.List())
}

func TestSolverAttachOnce(t *testing.T) {
	var trace []string
	s := NewSolver()
	a := newFake("a", &trace)
	require.NoError(t, s.Add(a, PriorityNormal))
	require.NoError(t, s.Update(constraints.Tick{}))
	require.NoError(t, s.Update(constraints.Tick{}))
	assert.Equal(t, 1, a.attached)

	late := newFake("late", &trace)
	require.NoError(t, s.Add(late, PriorityNormal))
	assert.Equal(t, 1, late.attached)
	require.NoError(t, s.Attach())
	assert.Equal(t, 1, late.attached)
}

func TestSolverDisabledSkipped(t *testing.T) {
	var trace []string
	s := NewSolver()
	require.NoError(t, s.Add(newFake("a", &trace), PriorityNormal))
	require.NoError(t, s.Add(newFake("b", &trace), PriorityNormal))
	require.NoError(t, s.Disable("a"))
	assert.ErrorIs(t, s.Disable("zzz"), ErrConstraintNotFound)

	require.NoError(t, s.Update(constraints.Tick{}))
	assert.Equal(t, []string{"b"}, trace)
	assert.Equal(t, 1, s.Metrics().Enabled)

	require.NoError(t, s.Enable("a"))
	assert.Equal(t, 2, s.Metrics().Enabled)
}

func TestSolverErrorsDoNotStopTick(t *testing.T) {
	var trace []string
	rec := &fakeRecorder{}
	s := NewSolver(WithRecorder(rec))
	boom := errors.New("boom")
	bad := newFake("bad", &trace)
	bad.err = boom
	require.NoError(t, s.Add(bad, PriorityHigh))
	require.NoError(t, s.Add(newFake("good", &trace), PriorityNormal))

	err := s.Update(constraints.Tick{Frame: 7})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"bad", "good"}, trace)

	m, ok := s.ConstraintMetrics("bad")
	require.True(t, ok)
	assert.EqualValues(t, 1, m.ExecutionCount)
	assert.EqualValues(t, 1, m.ErrorCount)
	assert.ErrorIs(t, m.LastError, boom)

	sm := s.Metrics()
	assert.EqualValues(t, 1, sm.Ticks)
	assert.Equal(t, map[string]uint64{"bad": 1}, sm.ErrorCount)
	assert.Equal(t, 2, rec.resolves)
	assert.Equal(t, 1, rec.errs)
	assert.Equal(t, 1, rec.ticks)
}

// Two constraints on the same node: the later one sees the earlier write.
func TestSolverLastWriterWins(t *testing.T) {
	g := scene.NewGraph()
	hand := scene.NewNode("hand")
	anchor := scene.NewNode("anchor")
	anchor.SetLocalPosition(mgl64.Vec3{10, 0, 0})
	require.NoError(t, g.Add(hand, ""))
	require.NoError(t, g.Add(anchor, ""))

	never := physics.OverlapFunc(func(mgl64.Vec3, float64, physics.Layer) bool { return false })
	col := constraints.NewCollision("collide", hand, constraints.CollisionConfig{ForwardSteps: 2}, never)
	follow := constraints.NewEaseFollow("follow", hand, anchor, 5)

	s := NewSolver()
	require.NoError(t, s.Add(col, PriorityHigh))
	require.NoError(t, s.Add(follow, PriorityNormal))
	require.NoError(t, s.Update(constraints.Tick{Frame: 1, DeltaTime: 0.1}))

	assert.True(t, mgl64.Vec3{5, 0, 0}.ApproxEqualThreshold(hand.Position(), 1e-9))
	assert.True(t, col.State().Initialized)
	assert.Equal(t, mgl64.Vec3{}, col.State().PreviousSafePosition)
}
