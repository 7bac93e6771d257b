package constraints

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/xrig/internal/core/geom"
	"github.com/zeusync/xrig/internal/core/scene"
)

type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("axis(%d)", uint8(a))
}

func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("%w: axis %q", ErrInvalidParam, s)
}

func (a Axis) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Axis) UnmarshalText(b []byte) error {
	v, err := ParseAxis(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Space selects which rotations the twist is measured between.
type Space uint8

const (
	// SpaceWorld compares world rotations of source and target.
	SpaceWorld Space = iota
	// SpaceParent compares parent-local rotations.
	SpaceParent
	// SpaceLocalRest measures the target against its captured rest rotation
	// and replays that twist on top of the source's rest rotation.
	SpaceLocalRest
)

func (s Space) String() string {
	switch s {
	case SpaceWorld:
		return "world"
	case SpaceParent:
		return "parent"
	case SpaceLocalRest:
		return "local_rest"
	}
	return fmt.Sprintf("space(%d)", uint8(s))
}

func ParseSpace(s string) (Space, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "world":
		return SpaceWorld, nil
	case "parent":
		return SpaceParent, nil
	case "local_rest", "localrest", "rest":
		return SpaceLocalRest, nil
	}
	return 0, fmt.Errorf("%w: space %q", ErrInvalidParam, s)
}

func (s Space) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Space) UnmarshalText(b []byte) error {
	v, err := ParseSpace(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MaskTwist keeps w and the component on axis and zeroes the other two.
// The result is not renormalized; it is only a pure rotation when q already
// is one about axis.
func MaskTwist(q mgl64.Quat, axis Axis) mgl64.Quat {
	out := mgl64.Quat{W: q.W}
	out.V[axis] = q.V[axis]
	return out
}

// ResolveTwist copies target's twist about axis onto source, blended by
// influence. Only source is written.
func ResolveTwist(source, target scene.TransformNode, axis Axis, space Space, rest *RestPose, influence float64) error {
	switch space {
	case SpaceLocalRest:
		if !rest.Captured() {
			return ErrRestPoseMissing
		}
		sourceRest := rest.SourceRestRotation.Normalize()
		twist := geom.SafeInverse(rest.TargetRestRotation).Mul(target.LocalRotation().Normalize())
		twist = MaskTwist(twist, axis).Normalize()
		source.SetLocalRotation(geom.Slerp(sourceRest, sourceRest.Mul(twist), influence))
	case SpaceParent:
		source.SetLocalRotation(twistDelta(source.LocalRotation(), target.LocalRotation(), axis, influence))
	case SpaceWorld:
		source.SetRotation(twistDelta(source.Rotation(), target.Rotation(), axis, influence))
	default:
		return fmt.Errorf("%w: space %d", ErrInvalidParam, space)
	}
	return nil
}

func twistDelta(current, target mgl64.Quat, axis Axis, influence float64) mgl64.Quat {
	current = current.Normalize()
	delta := geom.SafeInverse(current).Mul(target.Normalize())
	twist := MaskTwist(delta, axis).Normalize()
	return geom.Slerp(current, current.Mul(twist), influence)
}

var _ Constraint = (*TwistCorrection)(nil)

type TwistCorrectionConfig struct {
	Axis  Axis
	Space Space
}

// TwistCorrection makes a source node follow a target node's rotation about
// a single axis.
type TwistCorrection struct {
	Base
	cfg TwistCorrectionConfig
}

func NewTwistCorrection(name string, source, target scene.TransformNode, cfg TwistCorrectionConfig) *TwistCorrection {
	return &TwistCorrection{
		Base: newBase(name, KindTwistCorrection, source, target),
		cfg:  cfg,
	}
}

func (c *TwistCorrection) Config() TwistCorrectionConfig { return c.cfg }

func (c *TwistCorrection) Resolve(Tick) error {
	if c.source == nil || c.target == nil {
		return ErrMissingNode
	}
	if err := ResolveTwist(c.source, c.target, c.cfg.Axis, c.cfg.Space, &c.rest, c.Influence()); err != nil {
		return fmt.Errorf("twist correction %s: %w", c.name, err)
	}
	return nil
}
