// Package system runs constraints once per tick in a fixed order.
package system

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/zeusync/xrig/internal/core/constraints"
	"github.com/zeusync/xrig/internal/core/observability/log"
)

var (
	ErrDuplicateConstraint = errors.New("constraint already registered")
	ErrConstraintNotFound  = errors.New("constraint not found")
)

// Priority orders constraints within a tick; higher runs first.
type Priority int

const (
	PriorityLow    Priority = -100
	PriorityNormal Priority = 0
	PriorityHigh   Priority = 100
)

// Recorder receives per-resolve measurements. The metrics package provides a
// Prometheus implementation.
type Recorder interface {
	ObserveResolve(kind constraints.Kind, name string, took time.Duration, err error)
	ObserveTick(took time.Duration)
}

// Metrics describes one constraint's execution history.
type Metrics struct {
	ExecutionCount       uint64
	TotalExecutionTime   time.Duration
	AverageExecutionTime time.Duration
	MaxExecutionTime     time.Duration
	ErrorCount           uint64
	LastError            error
}

func (m *Metrics) observe(took time.Duration, err error) {
	m.ExecutionCount++
	m.TotalExecutionTime += took
	m.AverageExecutionTime = m.TotalExecutionTime / time.Duration(m.ExecutionCount)
	if took > m.MaxExecutionTime {
		m.MaxExecutionTime = took
	}
	if err != nil {
		m.ErrorCount++
		m.LastError = err
	}
}

// SolverMetrics aggregates a solver's tick history.
type SolverMetrics struct {
	Registered        int
	Enabled           int
	Ticks             uint64
	TotalUpdateTime   time.Duration
	AverageUpdateTime time.Duration
	ErrorCount        map[string]uint64
	// Collisions holds the hit count of every constraint that reports one.
	Collisions map[string]uint64
	LastUpdate time.Time
}

type entry struct {
	c        constraints.Constraint
	priority Priority
	seq      int
	attached bool
	metrics  Metrics
}

// Solver is a single-pass, single-threaded constraint scheduler. Every enabled
// constraint resolves to completion before the next one reads node state;
// when two constraints write the same node the later one wins.
type Solver struct {
	entries  []*entry
	byName   map[string]*entry
	seq      int
	attached bool

	logger   log.Log
	recorder Recorder

	ticks      uint64
	total      time.Duration
	lastUpdate time.Time
}

type Option func(*Solver)

func WithLogger(l log.Log) Option {
	return func(s *Solver) { s.logger = l }
}

func WithRecorder(r Recorder) Option {
	return func(s *Solver) { s.recorder = r }
}

func NewSolver(opts ...Option) *Solver {
	s := &Solver{byName: make(map[string]*entry)}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.NewNop()
	}
	return s
}

// Add registers c. Constraints added after Attach are attached immediately so
// their rest pose reflects the moment they joined.
func (s *Solver) Add(c constraints.Constraint, priority Priority) error {
	if _, ok := s.byName[c.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateConstraint, c.Name())
	}
	e := &entry{c: c, priority: priority, seq: s.seq}
	s.seq++
	if s.attached {
		if err := c.Attach(); err != nil {
			return fmt.Errorf("attach %s: %w", c.Name(), err)
		}
		e.attached = true
	}
	s.byName[c.Name()] = e
	s.entries = append(s.entries, e)
	sort.SliceStable(s.entries, func(i, j int) bool {
		if s.entries[i].priority != s.entries[j].priority {
			return s.entries[i].priority > s.entries[j].priority
		}
		return s.entries[i].seq < s.entries[j].seq
	})
	return nil
}

func (s *Solver) Remove(name string) error {
	e, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrConstraintNotFound, name)
	}
	delete(s.byName, name)
	for i, x := range s.entries {
		if x == e {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Solver) Get(name string) (constraints.Constraint, bool) {
	e, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return e.c, true
}

// List returns constraints in execution order.
func (s *Solver) List() []constraints.Constraint {
	out := make([]constraints.Constraint, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.c
	}
	return out
}

func (s *Solver) ExecutionOrder() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.c.Name()
	}
	return out
}

func (s *Solver) Enable(name string) error  { return s.setEnabled(name, true) }
func (s *Solver) Disable(name string) error { return s.setEnabled(name, false) }

func (s *Solver) setEnabled(name string, v bool) error {
	e, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrConstraintNotFound, name)
	}
	e.c.SetEnabled(v)
	return nil
}

// Attach captures rest poses for every constraint not yet attached.
func (s *Solver) Attach() error {
	var all error
	for _, e := range s.entries {
		if e.attached {
			continue
		}
		if err := e.c.Attach(); err != nil {
			all = errors.Join(all, fmt.Errorf("attach %s: %w", e.c.Name(), err))
			continue
		}
		e.attached = true
	}
	s.attached = true
	return all
}

// Update resolves every enabled constraint once. A failing constraint does not
// stop the tick; its error is logged and joined into the result.
func (s *Solver) Update(tick constraints.Tick) error {
	if !s.attached {
		if err := s.Attach(); err != nil {
			return err
		}
	}
	start := time.Now()
	var all error
	for _, e := range s.entries {
		if !e.c.Enabled() {
			continue
		}
		t0 := time.Now()
		err := e.c.Resolve(tick)
		took := time.Since(t0)
		e.metrics.observe(took, err)
		if s.recorder != nil {
			s.recorder.ObserveResolve(e.c.Kind(), e.c.Name(), took, err)
		}
		if err != nil {
			s.logger.Warn("constraint resolve failed",
				log.String("constraint", e.c.Name()),
				log.String("kind", string(e.c.Kind())),
				log.Int64("frame", tick.Frame),
				log.Error(err),
			)
			all = errors.Join(all, err)
		}
	}
	took := time.Since(start)
	s.ticks++
	s.total += took
	s.lastUpdate = time.Now()
	if s.recorder != nil {
		s.recorder.ObserveTick(took)
	}
	return all
}

func (s *Solver) ConstraintMetrics(name string) (Metrics, bool) {
	e, ok := s.byName[name]
	if !ok {
		return Metrics{}, false
	}
	return e.metrics, true
}

func (s *Solver) Metrics() SolverMetrics {
	m := SolverMetrics{
		Registered:      len(s.entries),
		Ticks:           s.ticks,
		TotalUpdateTime: s.total,
		ErrorCount:      make(map[string]uint64),
		Collisions:      make(map[string]uint64),
		LastUpdate:      s.lastUpdate,
	}
	if s.ticks > 0 {
		m.AverageUpdateTime = s.total / time.Duration(s.ticks)
	}
	for _, e := range s.entries {
		if e.c.Enabled() {
			m.Enabled++
		}
		if e.metrics.ErrorCount > 0 {
			m.ErrorCount[e.c.Name()] = e.metrics.ErrorCount
		}
		if hc, ok := e.c.(interface{ Collisions() uint64 }); ok {
			m.Collisions[e.c.Name()] = hc.Collisions()
		}
	}
	return m
}
