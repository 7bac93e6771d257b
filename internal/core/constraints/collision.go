package constraints

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/xrig/internal/core/events/bus"
	"github.com/zeusync/xrig/internal/core/geom"
	"github.com/zeusync/xrig/internal/core/observability/log"
	"github.com/zeusync/xrig/internal/core/physics"
	"github.com/zeusync/xrig/internal/core/scene"
)

// EventCollision is published on the bus once per tick in which a collision
// constraint's sweep hits something.
const EventCollision = "constraint.collision"

type CollisionConfig struct {
	Radius float64
	// Offset is in the node's local space.
	Offset       mgl64.Vec3
	Mask         physics.Layer
	ForwardSteps int
}

// Steps is ForwardSteps clamped to at least one sample.
func (c CollisionConfig) Steps() int {
	if c.ForwardSteps < 1 {
		return 1
	}
	return c.ForwardSteps
}

// CollisionState lives as long as its constraint. PreviousSafePosition only
// ever holds positions produced by the blend step.
type CollisionState struct {
	PreviousSafePosition mgl64.Vec3
	Initialized          bool
}

// CollisionEvent is the payload of EventCollision.
type CollisionEvent struct {
	Constraint   string     `json:"constraint"`
	Node         string     `json:"node"`
	Frame        int64      `json:"frame"`
	SafePosition [3]float64 `json:"safe_position"`
	Target       [3]float64 `json:"target"`
}

// ResolveCollision sweeps a sphere from the last safe position toward the
// node's current (target) position in equal sub-steps and stops before the
// first step that overlaps. The node is then blended from the target toward
// the last clear sample. onCollision, if set, runs at most once per call,
// before the blend. The returned position is the last clear sample.
func ResolveCollision(
	node scene.TransformNode,
	cfg CollisionConfig,
	state *CollisionState,
	overlap physics.Overlapper,
	influence float64,
	onCollision func(safe, target mgl64.Vec3),
) (mgl64.Vec3, bool) {
	if !state.Initialized {
		state.PreviousSafePosition = node.Position()
		state.Initialized = true
	}

	targetPos := node.Position()
	currentPos := state.PreviousSafePosition

	// the offset stays rigid with the node's orientation at the target pose
	targetCheckPos := node.TransformPoint(cfg.Offset)
	currentCheckPos := currentPos.Add(targetCheckPos.Sub(targetPos))

	steps := cfg.Steps()
	step := targetPos.Sub(currentPos).Mul(1 / float64(steps))

	collided := false
	for i := 0; i < steps; i++ {
		if overlap.OverlapSphere(currentCheckPos.Add(step), cfg.Radius, cfg.Mask) {
			collided = true
			break
		}
		currentPos = currentPos.Add(step)
		currentCheckPos = currentCheckPos.Add(step)
	}

	if collided && onCollision != nil {
		onCollision(currentPos, targetPos)
	}

	node.SetPosition(geom.Lerp(node.Position(), currentPos, influence))
	state.PreviousSafePosition = node.Position()
	return currentPos, collided
}

var _ Constraint = (*Collision)(nil)

// Collision keeps its source node out of colliders on the configured layers.
type Collision struct {
	Base
	cfg     CollisionConfig
	state   CollisionState
	overlap physics.Overlapper

	bus       bus.EventBus
	logger    log.Log
	listeners []func()
	hits      uint64
}

func NewCollision(name string, node scene.TransformNode, cfg CollisionConfig, overlap physics.Overlapper) *Collision {
	return &Collision{
		Base:    newBase(name, KindCollision, node, nil),
		cfg:     cfg,
		overlap: overlap,
	}
}

func (c *Collision) Config() CollisionConfig { return c.cfg }
func (c *Collision) State() CollisionState   { return c.state }

// Collisions counts ticks in which the sweep hit something.
func (c *Collision) Collisions() uint64 { return c.hits }

// OnCollision registers a zero-argument listener fired once per colliding tick.
func (c *Collision) OnCollision(fn func()) {
	c.listeners = append(c.listeners, fn)
}

// PublishTo makes the constraint publish EventCollision on b.
func (c *Collision) PublishTo(b bus.EventBus) { c.bus = b }

// SetLogger makes every colliding tick log the safe and target positions at
// debug level.
func (c *Collision) SetLogger(l log.Log) { c.logger = l }

func (c *Collision) Resolve(t Tick) error {
	if c.source == nil {
		return ErrMissingNode
	}
	var publishErr error
	_, _ = ResolveCollision(c.source, c.cfg, &c.state, c.overlap, c.Influence(), func(safe, target mgl64.Vec3) {
		c.hits++
		for _, fn := range c.listeners {
			fn()
		}
		if c.logger != nil {
			c.logger.Debug("collision",
				log.Int64("frame", t.Frame),
				log.Uint64("hits", c.hits),
				log.Vec("safe", safe[:]...),
				log.Vec("target", target[:]...),
			)
		}
		if c.bus == nil {
			return
		}
		ev := CollisionEvent{
			Constraint:   c.name,
			Node:         c.source.Name(),
			Frame:        t.Frame,
			SafePosition: safe,
			Target:       target,
		}
		if err := c.bus.Publish(bus.NewEvent(EventCollision, c.name, ev)); err != nil {
			publishErr = fmt.Errorf("publish collision of %s: %w", c.name, err)
		}
	})
	return publishErr
}
