package constraints

import (
	"fmt"
	"sort"
	"sync"

	"github.com/zeusync/xrig/internal/core/events/bus"
	"github.com/zeusync/xrig/internal/core/observability/log"
	"github.com/zeusync/xrig/internal/core/physics"
	"github.com/zeusync/xrig/internal/core/scene"
)

// Spec is the declarative form of a constraint as it appears in a rig file.
type Spec struct {
	Name      string
	Kind      Kind
	Source    string
	Target    string
	Influence float64
	Params    map[string]any
}

// Deps are the collaborators a factory may wire into a constraint.
type Deps struct {
	Graph   *scene.Graph
	Overlap physics.Overlapper
	Bus     bus.EventBus
	Logger  log.Log
}

type Factory func(spec Spec, deps Deps) (Constraint, error)

type Registry interface {
	Register(kind Kind, factory Factory)
	New(spec Spec, deps Deps) (Constraint, error)
	Kinds() []Kind
}

type registry struct {
	mu        sync.RWMutex
	factories map[Kind]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() Registry {
	return &registry{factories: make(map[Kind]Factory)}
}

// DefaultRegistry knows every built-in constraint kind.
func DefaultRegistry() Registry {
	r := NewRegistry()
	r.Register(KindCollision, newCollisionFromSpec)
	r.Register(KindTwistCorrection, newTwistFromSpec)
	r.Register(KindEaseFollow, newEaseFromSpec)
	return r
}

func (r *registry) Register(kind Kind, factory Factory) {
	r.mu.Lock()
	r.factories[kind] = factory
	r.mu.Unlock()
}

func (r *registry) New(spec Spec, deps Deps) (Constraint, error) {
	r.mu.RLock()
	f := r.factories[spec.Kind]
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, spec.Kind)
	}
	c, err := f(spec, deps)
	if err != nil {
		return nil, fmt.Errorf("constraint %s: %w", spec.Name, err)
	}
	return c, nil
}

func (r *registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Kind, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func newCollisionFromSpec(spec Spec, deps Deps) (Constraint, error) {
	node, err := lookup(deps.Graph, spec.Source)
	if err != nil {
		return nil, err
	}
	if deps.Overlap == nil {
		return nil, fmt.Errorf("%w: collision needs an overlap provider", ErrInvalidParam)
	}
	p := params(spec.Params)
	cfg := CollisionConfig{
		Radius:       p.float("radius", 0.1),
		Offset:       p.vec3("offset"),
		Mask:         p.mask("mask"),
		ForwardSteps: p.int("forward_steps", 1),
	}
	if err = p.err(); err != nil {
		return nil, err
	}
	if cfg.Radius < 0 {
		return nil, fmt.Errorf("%w: radius %v < 0", ErrInvalidParam, cfg.Radius)
	}
	if cfg.ForwardSteps < 1 && deps.Logger != nil {
		deps.Logger.Warn("forward_steps below 1, sweeping in a single step",
			log.String("constraint", spec.Name),
			log.Int("forward_steps", cfg.ForwardSteps),
		)
	}
	c := NewCollision(spec.Name, node, cfg, deps.Overlap)
	c.SetInfluence(spec.Influence)
	if deps.Bus != nil {
		c.PublishTo(deps.Bus)
	}
	if deps.Logger != nil {
		c.SetLogger(deps.Logger.With(log.String("constraint", spec.Name), log.String("node", spec.Source)))
	}
	return c, nil
}

func newTwistFromSpec(spec Spec, deps Deps) (Constraint, error) {
	source, err := lookup(deps.Graph, spec.Source)
	if err != nil {
		return nil, err
	}
	target, err := lookup(deps.Graph, spec.Target)
	if err != nil {
		return nil, err
	}
	p := params(spec.Params)
	axis, err := ParseAxis(p.string("axis", "y"))
	if err != nil {
		return nil, err
	}
	space, err := ParseSpace(p.string("space", "local_rest"))
	if err != nil {
		return nil, err
	}
	if err = p.err(); err != nil {
		return nil, err
	}
	c := NewTwistCorrection(spec.Name, source, target, TwistCorrectionConfig{Axis: axis, Space: space})
	c.SetInfluence(spec.Influence)
	return c, nil
}

func newEaseFromSpec(spec Spec, deps Deps) (Constraint, error) {
	source, err := lookup(deps.Graph, spec.Source)
	if err != nil {
		return nil, err
	}
	target, err := lookup(deps.Graph, spec.Target)
	if err != nil {
		return nil, err
	}
	p := params(spec.Params)
	speed := p.float("ease_speed", DefaultEaseSpeed)
	if err = p.err(); err != nil {
		return nil, err
	}
	if speed < 0 {
		return nil, fmt.Errorf("%w: ease_speed %v < 0", ErrInvalidParam, speed)
	}
	c := NewEaseFollow(spec.Name, source, target, speed)
	c.SetInfluence(spec.Influence)
	return c, nil
}

func lookup(g *scene.Graph, name string) (*scene.Node, error) {
	if name == "" {
		return nil, ErrMissingNode
	}
	if g == nil {
		return nil, fmt.Errorf("%w: no graph to resolve %s", ErrMissingNode, name)
	}
	return g.Lookup(name)
}
