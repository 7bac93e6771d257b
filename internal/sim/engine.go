// Package sim runs a rig at a fixed step: animation tracks move nodes, the
// solver resolves constraints, and each finished tick is published as a frame.
package sim

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/zeusync/xrig/internal/config"
	"github.com/zeusync/xrig/internal/core/anim"
	"github.com/zeusync/xrig/internal/core/constraints"
	"github.com/zeusync/xrig/internal/core/events/bus"
	"github.com/zeusync/xrig/internal/core/observability/log"
	"github.com/zeusync/xrig/internal/core/observability/metrics"
	"github.com/zeusync/xrig/internal/core/physics"
	"github.com/zeusync/xrig/internal/core/scene"
	"github.com/zeusync/xrig/internal/core/system"
)

const (
	// EventFrame is published once per tick with a Frame payload.
	EventFrame = "sim.frame"
	source     = "sim"
)

var ErrInvalidStep = errors.New("time step must be positive")

// Frame is an immutable picture of the rig after a tick.
type Frame struct {
	Index  int64             `json:"index"`
	Time   float64           `json:"time"`
	Digest uint64            `json:"digest"`
	Nodes  []scene.NodeState `json:"nodes"`
}

type Engine struct {
	graph   *scene.Graph
	world   *physics.World
	solver  *system.Solver
	tracks  []anim.Track
	bus     bus.EventBus
	logger  log.Log
	metrics *metrics.Metrics

	dt    float64
	ticks int

	index int64
	time  float64

	mu   sync.RWMutex
	last Frame
}

// New builds the rig and captures rest poses from its initial pose. A nil
// metrics gets a fresh private registry.
func New(cfg *config.Rig, logger log.Log, m *metrics.Metrics) (*Engine, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}
	b := bus.New()
	b.AddObserver(m)

	built, err := cfg.Build(config.BuildOptions{Bus: b, Logger: logger, Recorder: m})
	if err != nil {
		return nil, err
	}
	if err = built.Solver.Attach(); err != nil {
		return nil, err
	}

	e := &Engine{
		graph:   built.Graph,
		world:   built.World,
		solver:  built.Solver,
		tracks:  built.Tracks,
		bus:     b,
		logger:  logger.With(log.String("component", "sim")),
		metrics: m,
		dt:      cfg.Simulation.DeltaTime(),
		ticks:   cfg.Simulation.Ticks,
	}
	e.last = e.frame()

	e.logger.Info("engine ready",
		log.Int("nodes", built.Graph.Len()),
		log.Int("colliders", built.World.Len()),
		log.Int("constraints", len(built.Solver.List())),
		log.Int("tracks", len(built.Tracks)),
		log.Float64("dt", e.dt),
	)
	return e, nil
}

func (e *Engine) Graph() *scene.Graph       { return e.graph }
func (e *Engine) World() *physics.World     { return e.world }
func (e *Engine) Solver() *system.Solver    { return e.solver }
func (e *Engine) Bus() bus.EventBus         { return e.bus }
func (e *Engine) Metrics() *metrics.Metrics { return e.metrics }
func (e *Engine) DeltaTime() float64        { return e.dt }
func (e *Engine) Ticks() int                { return e.ticks }
func (e *Engine) Tracks() []anim.Track      { return e.tracks }
func (e *Engine) Logger() log.Log           { return e.logger }

// MetricsHandler serves the engine's private Prometheus registry.
func (e *Engine) MetricsHandler() http.Handler { return e.metrics.Handler() }

// Step advances one tick of dt seconds. Constraint failures do not abort the
// tick; they come back joined once the frame has been published.
func (e *Engine) Step(dt float64) error {
	if !(dt > 0) {
		return ErrInvalidStep
	}
	e.index++
	e.time += dt

	for _, tr := range e.tracks {
		node, ok := e.graph.Node(tr.Node())
		if !ok {
			continue
		}
		tr.Apply(node, e.time)
	}

	resolveErr := e.solver.Update(constraints.Tick{Frame: e.index, DeltaTime: dt})

	f := e.frame()
	e.mu.Lock()
	e.last = f
	e.mu.Unlock()

	pubErr := e.bus.Publish(bus.NewEvent(EventFrame, source, f))
	return errors.Join(resolveErr, pubErr)
}

// Run steps ticks times at the configured rate; ticks <= 0 runs until ctx is
// done. Realtime paces the loop with a ticker, otherwise it runs flat out.
// Step errors are logged by the solver and do not stop the loop.
func (e *Engine) Run(ctx context.Context, ticks int, realtime bool) error {
	var tick <-chan time.Time
	if realtime {
		t := time.NewTicker(time.Duration(e.dt * float64(time.Second)))
		defer t.Stop()
		tick = t.C
	}

	start := time.Now()
	for n := 0; ticks <= 0 || n < ticks; n++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.Step(e.dt); err != nil {
			e.logger.Debug("tick finished with errors", log.Int64("frame", e.index), log.Error(err))
		}
	}

	e.logger.Info("run finished",
		log.Int64("frames", e.index),
		log.Float64("sim_time", e.time),
		log.Duration("wall_time", time.Since(start)),
	)
	return nil
}

// Snapshot returns the latest published frame. Safe to call from any
// goroutine.
func (e *Engine) Snapshot() Frame {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.last
}

func (e *Engine) frame() Frame {
	return Frame{
		Index:  e.index,
		Time:   e.time,
		Digest: e.graph.Digest(),
		Nodes:  e.graph.Snapshot(),
	}
}
