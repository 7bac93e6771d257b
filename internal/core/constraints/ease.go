package constraints

import (
	"github.com/zeusync/xrig/internal/core/geom"
	"github.com/zeusync/xrig/internal/core/scene"
)

const DefaultEaseSpeed = 5.0

var _ Constraint = (*EaseFollow)(nil)

// EaseFollow pulls its source toward the target by a frame-rate scaled
// fraction of the remaining distance each tick.
type EaseFollow struct {
	Base
	speed float64
}

func NewEaseFollow(name string, source, target scene.TransformNode, speed float64) *EaseFollow {
	if speed < 0 {
		speed = 0
	}
	return &EaseFollow{
		Base:  newBase(name, KindEaseFollow, source, target),
		speed: speed,
	}
}

func (c *EaseFollow) Speed() float64 { return c.speed }

func (c *EaseFollow) Resolve(t Tick) error {
	if c.source == nil || c.target == nil {
		return ErrMissingNode
	}
	step := geom.Clamp01(c.speed * t.DeltaTime * c.Influence())
	c.source.SetPosition(geom.Lerp(c.source.Position(), c.target.Position(), step))
	return nil
}
