package config

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/xrig/internal/core/anim"
	"github.com/zeusync/xrig/internal/core/constraints"
	"github.com/zeusync/xrig/internal/core/events/bus"
	"github.com/zeusync/xrig/internal/core/geom"
	"github.com/zeusync/xrig/internal/core/observability/log"
	"github.com/zeusync/xrig/internal/core/physics"
	"github.com/zeusync/xrig/internal/core/scene"
	"github.com/zeusync/xrig/internal/core/system"
)

// BuildOptions supplies the runtime collaborators. Nil fields get defaults.
type BuildOptions struct {
	Registry constraints.Registry
	Bus      bus.EventBus
	Logger   log.Log
	Recorder system.Recorder
}

// Built is everything a rig file describes, ready to tick.
type Built struct {
	Graph  *scene.Graph
	World  *physics.World
	Solver *system.Solver
	Tracks []anim.Track
}

func (c *Rig) Build(opts BuildOptions) (*Built, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if opts.Registry == nil {
		opts.Registry = constraints.DefaultRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNop()
	}

	graph := scene.NewGraph()
	for _, nc := range c.Nodes {
		n := scene.NewNode(nc.Name)
		n.SetLocalPosition(vec(nc.Position, geom.Zero))
		n.SetLocalScale(vec(nc.Scale, geom.One))
		n.SetLocalRotation(euler(nc.Rotation))
		if err := graph.Add(n, nc.Parent); err != nil {
			return nil, err
		}
	}

	world := physics.NewWorld()
	for _, cc := range c.Colliders {
		layer := physics.Layer(1) << uint(cc.Layer)
		var col physics.Collider
		switch cc.Type {
		case "sphere":
			col = physics.NewSphere(cc.Name, layer, vec(cc.Center, geom.Zero), cc.Radius)
		case "box":
			col = physics.NewBox(cc.Name, layer, vec(cc.Center, geom.Zero), vec(cc.HalfExtents, geom.Zero), euler(cc.Rotation))
		case "capsule":
			col = physics.NewCapsule(cc.Name, layer, vec(cc.A, geom.Zero), vec(cc.B, geom.Zero), cc.Radius)
		}
		if err := world.Add(col); err != nil {
			return nil, err
		}
	}

	solver := system.NewSolver(system.WithLogger(opts.Logger), system.WithRecorder(opts.Recorder))
	deps := constraints.Deps{Graph: graph, Overlap: world, Bus: opts.Bus, Logger: opts.Logger}
	for _, cc := range c.Constraints {
		influence := 1.0
		if cc.Influence != nil {
			influence = *cc.Influence
		}
		con, err := opts.Registry.New(constraints.Spec{
			Name:      cc.Name,
			Kind:      constraints.Kind(cc.Type),
			Source:    cc.Source,
			Target:    cc.Target,
			Influence: influence,
			Params:    cc.Params,
		}, deps)
		if err != nil {
			return nil, err
		}
		if cc.Enabled != nil {
			con.SetEnabled(*cc.Enabled)
		}
		if err = solver.Add(con, system.Priority(cc.Priority)); err != nil {
			return nil, err
		}
	}

	tracks := make([]anim.Track, 0, len(c.Animations))
	for i, ac := range c.Animations {
		node, _ := graph.Node(ac.Node)
		switch ac.Type {
		case "linear":
			tracks = append(tracks, anim.Linear{
				Target:   ac.Node,
				From:     vec(ac.From, geom.Zero),
				To:       vec(ac.To, geom.Zero),
				Duration: ac.Duration,
				PingPong: ac.PingPong,
			})
		case "spin":
			tracks = append(tracks, anim.Spin{
				Target:           ac.Node,
				Axis:             vec(ac.Axis, geom.Up),
				DegreesPerSecond: ac.DegreesPerSecond,
				Base:             node.LocalRotation(),
			})
		default:
			return nil, fmt.Errorf("%w: animation %d: unknown type %q", ErrInvalidConfig, i, ac.Type)
		}
	}

	return &Built{Graph: graph, World: world, Solver: solver, Tracks: tracks}, nil
}

func vec(v []float64, def mgl64.Vec3) mgl64.Vec3 {
	if len(v) != 3 {
		return def
	}
	return mgl64.Vec3{v[0], v[1], v[2]}
}

func euler(v []float64) mgl64.Quat {
	if len(v) != 3 {
		return mgl64.QuatIdent()
	}
	return geom.Euler(v[0], v[1], v[2])
}
