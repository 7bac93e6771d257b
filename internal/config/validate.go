package config

import (
	"errors"
	"fmt"

	"github.com/zeusync/xrig/internal/core/constraints"
)

// Validate checks structure and cross references. Every problem found is
// reported, not just the first.
func (c *Rig) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	nodes := make(map[string]bool, len(c.Nodes))
	for i, n := range c.Nodes {
		switch {
		case n.Name == "":
			fail("node %d: name is required", i)
			continue
		case nodes[n.Name]:
			fail("node %s: duplicate name", n.Name)
		}
		// parents must be declared first so the graph can be built in one pass
		if n.Parent != "" && !nodes[n.Parent] {
			fail("node %s: parent %s is not declared before it", n.Name, n.Parent)
		}
		nodes[n.Name] = true
		checkVec(fail, "node "+n.Name+" position", n.Position)
		checkVec(fail, "node "+n.Name+" rotation", n.Rotation)
		checkVec(fail, "node "+n.Name+" scale", n.Scale)
	}

	colliders := make(map[string]bool, len(c.Colliders))
	for i, col := range c.Colliders {
		if col.Name == "" {
			fail("collider %d: name is required", i)
			continue
		}
		if colliders[col.Name] {
			fail("collider %s: duplicate name", col.Name)
		}
		colliders[col.Name] = true
		if col.Layer < 0 || col.Layer > 31 {
			fail("collider %s: layer %d out of range [0,31]", col.Name, col.Layer)
		}
		switch col.Type {
		case "sphere":
			checkVec(fail, "collider "+col.Name+" center", col.Center)
			if col.Radius < 0 {
				fail("collider %s: negative radius", col.Name)
			}
		case "box":
			checkVec(fail, "collider "+col.Name+" center", col.Center)
			checkVec(fail, "collider "+col.Name+" rotation", col.Rotation)
			if len(col.HalfExtents) != 3 {
				fail("collider %s: half_extents needs 3 values", col.Name)
			}
		case "capsule":
			if len(col.A) != 3 || len(col.B) != 3 {
				fail("collider %s: capsule needs a and b", col.Name)
			}
			if col.Radius < 0 {
				fail("collider %s: negative radius", col.Name)
			}
		default:
			fail("collider %s: unknown type %q", col.Name, col.Type)
		}
	}

	names := make(map[string]bool, len(c.Constraints))
	for i, cc := range c.Constraints {
		if cc.Name == "" {
			fail("constraint %d: name is required", i)
			continue
		}
		if names[cc.Name] {
			fail("constraint %s: duplicate name", cc.Name)
		}
		names[cc.Name] = true
		if cc.Source == "" || !nodes[cc.Source] {
			fail("constraint %s: unknown source %q", cc.Name, cc.Source)
		}
		if cc.Target != "" && !nodes[cc.Target] {
			fail("constraint %s: unknown target %q", cc.Name, cc.Target)
		}
		switch constraints.Kind(cc.Type) {
		case constraints.KindTwistCorrection, constraints.KindEaseFollow:
			if cc.Target == "" {
				fail("constraint %s: %s needs a target", cc.Name, cc.Type)
			}
		case constraints.KindCollision:
		default:
			// custom kinds may be registered by the caller; Build rejects
			// anything the registry does not know
		}
		if cc.Influence != nil && (*cc.Influence < 0 || *cc.Influence > 1) {
			fail("constraint %s: influence %v outside [0,1]", cc.Name, *cc.Influence)
		}
	}

	for i, a := range c.Animations {
		if !nodes[a.Node] {
			fail("animation %d: unknown node %q", i, a.Node)
		}
		switch a.Type {
		case "linear":
			if len(a.From) != 3 || len(a.To) != 3 {
				fail("animation %d: linear needs from and to", i)
			}
		case "spin":
			checkVec(fail, fmt.Sprintf("animation %d axis", i), a.Axis)
		default:
			fail("animation %d: unknown type %q", i, a.Type)
		}
	}

	return errors.Join(errs...)
}

func checkVec(fail func(string, ...any), what string, v []float64) {
	if len(v) != 0 && len(v) != 3 {
		fail("%s needs 3 values, got %d", what, len(v))
	}
}
