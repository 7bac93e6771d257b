package scene

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrNodeNotFound  = errors.New("node not found")
	ErrDuplicateNode = errors.New("duplicate node name")
	ErrEmptyName     = errors.New("node name is required")
)

// Graph is the node registry handed to resolvers. Iteration follows insertion
// order, which keeps snapshots and digests stable between runs.
type Graph struct {
	nodes []*Node
	index map[string]*Node
}

func NewGraph() *Graph {
	return &Graph{index: make(map[string]*Node)}
}

// Add registers n under parent. An empty parent name makes n a root.
func (g *Graph) Add(n *Node, parent string) error {
	if n.name == "" {
		return ErrEmptyName
	}
	if _, exists := g.index[n.name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, n.name)
	}
	var p *Node
	if parent != "" {
		var ok bool
		if p, ok = g.index[parent]; !ok {
			return fmt.Errorf("parent of %s: %w: %s", n.name, ErrNodeNotFound, parent)
		}
	}
	n.attach(p)
	g.nodes = append(g.nodes, n)
	g.index[n.name] = n
	return nil
}

func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.index[name]
	return n, ok
}

// Lookup is Node with a wrapped error instead of a bool.
func (g *Graph) Lookup(name string) (*Node, error) {
	n, ok := g.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, name)
	}
	return n, nil
}

func (g *Graph) Nodes() []*Node { return g.nodes }
func (g *Graph) Len() int       { return len(g.nodes) }

// NodeState is a serializable view of one node at one instant.
type NodeState struct {
	Name          string     `json:"name"`
	Parent        string     `json:"parent,omitempty"`
	Position      [3]float64 `json:"position"`
	Rotation      [4]float64 `json:"rotation"`
	LocalRotation [4]float64 `json:"local_rotation"`
}

func (g *Graph) Snapshot() []NodeState {
	out := make([]NodeState, 0, len(g.nodes))
	for _, n := range g.nodes {
		st := NodeState{
			Name:          n.name,
			Position:      n.Position(),
			Rotation:      quatArray(n.Rotation()),
			LocalRotation: quatArray(n.localRotation),
		}
		if n.parent != nil {
			st.Parent = n.parent.name
		}
		out = append(out, st)
	}
	return out
}

// Digest hashes the local state of every node. Two graphs built from the same
// rig and stepped with the same ticks produce the same digest.
func (g *Graph) Digest() uint64 {
	h := xxhash.New()
	var buf [8]byte
	write := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = h.Write(buf[:])
	}
	for _, n := range g.nodes {
		_, _ = h.WriteString(n.name)
		for _, c := range n.localPosition {
			write(c)
		}
		for _, c := range quatArray(n.localRotation) {
			write(c)
		}
		for _, c := range n.localScale {
			write(c)
		}
	}
	return h.Sum64()
}

func quatArray(q mgl64.Quat) [4]float64 {
	return [4]float64{q.V[0], q.V[1], q.V[2], q.W}
}
