// Package config loads rig descriptions from YAML or JSON and turns them into
// a scene graph, a physics world, a solver and animation tracks.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid rig config")

const (
	DefaultTickRate = 60.0
	DefaultTicks    = 300
)

// Rig is the top-level rig file.
type Rig struct {
	Simulation  Simulation         `json:"simulation" yaml:"simulation"`
	Nodes       []NodeConfig       `json:"nodes" yaml:"nodes"`
	Colliders   []ColliderConfig   `json:"colliders,omitempty" yaml:"colliders,omitempty"`
	Constraints []ConstraintConfig `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	Animations  []AnimationConfig  `json:"animations,omitempty" yaml:"animations,omitempty"`
}

type Simulation struct {
	// TickRate is in ticks per second.
	TickRate float64 `json:"tick_rate,omitempty" yaml:"tick_rate,omitempty"`
	Ticks    int     `json:"ticks,omitempty" yaml:"ticks,omitempty"`
	LogLevel string  `json:"log_level,omitempty" yaml:"log_level,omitempty"`
}

// DeltaTime is the fixed step implied by TickRate.
func (s Simulation) DeltaTime() float64 {
	if s.TickRate <= 0 {
		return 1 / DefaultTickRate
	}
	return 1 / s.TickRate
}

// NodeConfig vectors are optional; when set they must have three entries.
// Rotation is Euler degrees.
type NodeConfig struct {
	Name     string    `json:"name" yaml:"name"`
	Parent   string    `json:"parent,omitempty" yaml:"parent,omitempty"`
	Position []float64 `json:"position,omitempty" yaml:"position,omitempty"`
	Rotation []float64 `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	Scale    []float64 `json:"scale,omitempty" yaml:"scale,omitempty"`
}

type ColliderConfig struct {
	Name        string    `json:"name" yaml:"name"`
	Type        string    `json:"type" yaml:"type"`
	Layer       int       `json:"layer,omitempty" yaml:"layer,omitempty"`
	Center      []float64 `json:"center,omitempty" yaml:"center,omitempty"`
	Radius      float64   `json:"radius,omitempty" yaml:"radius,omitempty"`
	HalfExtents []float64 `json:"half_extents,omitempty" yaml:"half_extents,omitempty"`
	Rotation    []float64 `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	A           []float64 `json:"a,omitempty" yaml:"a,omitempty"`
	B           []float64 `json:"b,omitempty" yaml:"b,omitempty"`
}

type ConstraintConfig struct {
	Name   string `json:"name" yaml:"name"`
	Type   string `json:"type" yaml:"type"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
	// Influence defaults to 1 when omitted.
	Influence *float64       `json:"influence,omitempty" yaml:"influence,omitempty"`
	Priority  int            `json:"priority,omitempty" yaml:"priority,omitempty"`
	Enabled   *bool          `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Params    map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

type AnimationConfig struct {
	Type             string    `json:"type" yaml:"type"`
	Node             string    `json:"node" yaml:"node"`
	From             []float64 `json:"from,omitempty" yaml:"from,omitempty"`
	To               []float64 `json:"to,omitempty" yaml:"to,omitempty"`
	Duration         float64   `json:"duration,omitempty" yaml:"duration,omitempty"`
	PingPong         bool      `json:"ping_pong,omitempty" yaml:"ping_pong,omitempty"`
	Axis             []float64 `json:"axis,omitempty" yaml:"axis,omitempty"`
	DegreesPerSecond float64   `json:"degrees_per_second,omitempty" yaml:"degrees_per_second,omitempty"`
}

// Load reads a rig file, picking the decoder from the extension.
func Load(path string) (*Rig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rig *Rig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		rig, err = LoadJSON(f)
	case ".yaml", ".yml":
		rig, err = LoadYAML(f)
	default:
		return nil, fmt.Errorf("%w: unsupported extension %q", ErrInvalidConfig, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return rig, nil
}

// LoadJSON loads a rig from a JSON reader.
func LoadJSON(r io.Reader) (*Rig, error) {
	var c Rig
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	return &c, nil
}

// LoadYAML loads a rig from a YAML reader.
func LoadYAML(r io.Reader) (*Rig, error) {
	var c Rig
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Rig) applyDefaults() {
	if c.Simulation.TickRate <= 0 {
		c.Simulation.TickRate = DefaultTickRate
	}
	if c.Simulation.Ticks <= 0 {
		c.Simulation.Ticks = DefaultTicks
	}
}
