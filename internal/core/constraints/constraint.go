// Package constraints implements per-tick transform post-processors: collision
// avoidance, twist correction and ease follow.
//
// Each constraint reads the current state of its nodes, computes a candidate
// state and writes it back blended by an influence weight in [0,1]. A Solver
// runs them one at a time, so a resolver never sees a node change under it,
// but it may read values an earlier constraint already wrote this tick.
package constraints

import (
	"errors"

	"github.com/google/uuid"
	"github.com/zeusync/xrig/internal/core/scene"
)

var (
	ErrRestPoseMissing = errors.New("rest pose not captured")
	ErrUnknownKind     = errors.New("unknown constraint kind")
	ErrMissingNode     = errors.New("constraint node is required")
	ErrInvalidParam    = errors.New("invalid constraint parameter")
)

// Kind names a constraint type in rig files and metrics.
type Kind string

const (
	KindCollision       Kind = "collision"
	KindTwistCorrection Kind = "twist_correction"
	KindEaseFollow      Kind = "ease_follow"
)

// Tick is the per-update input every resolver receives.
type Tick struct {
	Frame     int64
	DeltaTime float64
}

type Constraint interface {
	ID() uuid.UUID
	Name() string
	Kind() Kind

	Enabled() bool
	SetEnabled(bool)

	// Influence is the effective blend weight after the influence stack.
	Influence() float64

	// Attach captures the rest pose. It is called once before the first
	// Resolve.
	Attach() error
	Resolve(Tick) error
}

// Base carries the bookkeeping shared by every constraint.
type Base struct {
	id      uuid.UUID
	name    string
	kind    Kind
	enabled bool

	source scene.TransformNode
	target scene.TransformNode

	influence InfluenceStack
	rest      RestPose
}

func newBase(name string, kind Kind, source, target scene.TransformNode) Base {
	return Base{
		id:        uuid.New(),
		name:      name,
		kind:      kind,
		enabled:   true,
		source:    source,
		target:    target,
		influence: NewInfluenceStack(1),
	}
}

func (b *Base) ID() uuid.UUID     { return b.id }
func (b *Base) Name() string      { return b.name }
func (b *Base) Kind() Kind        { return b.kind }
func (b *Base) Enabled() bool     { return b.enabled }
func (b *Base) SetEnabled(v bool) { b.enabled = v }

func (b *Base) Source() scene.TransformNode { return b.source }
func (b *Base) Target() scene.TransformNode { return b.target }

func (b *Base) Influence() float64 { return b.influence.Effective() }

// InfluenceStack exposes the layered weights for callers that fade
// constraints in and out.
func (b *Base) InfluenceStack() *InfluenceStack { return &b.influence }

func (b *Base) SetInfluence(w float64) { b.influence.SetBase(w) }

func (b *Base) RestPose() *RestPose { return &b.rest }

// Attach snapshots the local rotations of source and target. Constraints
// without a target capture the source twice.
func (b *Base) Attach() error {
	if b.source == nil {
		return ErrMissingNode
	}
	target := b.target
	if target == nil {
		target = b.source
	}
	b.rest.Capture(b.source, target)
	return nil
}
