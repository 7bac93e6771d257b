package constraints

import "github.com/zeusync/xrig/internal/core/geom"

// InfluenceLayer is a named multiplier on top of a constraint's base weight,
// e.g. a gameplay fade or a blend driven by an animation curve.
type InfluenceLayer struct {
	Name   string
	Weight float64
}

// InfluenceStack composes a base weight with layered multipliers. The
// effective weight is the clamped product of all of them.
type InfluenceStack struct {
	base   float64
	layers []InfluenceLayer
}

func NewInfluenceStack(base float64) InfluenceStack {
	return InfluenceStack{base: geom.Clamp01(base)}
}

func (s *InfluenceStack) Base() float64 { return s.base }

func (s *InfluenceStack) SetBase(w float64) { s.base = geom.Clamp01(w) }

// Set adds or replaces a layer.
func (s *InfluenceStack) Set(name string, w float64) {
	w = geom.Clamp01(w)
	for i := range s.layers {
		if s.layers[i].Name == name {
			s.layers[i].Weight = w
			return
		}
	}
	s.layers = append(s.layers, InfluenceLayer{Name: name, Weight: w})
}

func (s *InfluenceStack) Remove(name string) bool {
	for i := range s.layers {
		if s.layers[i].Name == name {
			s.layers = append(s.layers[:i], s.layers[i+1:]...)
			return true
		}
	}
	return false
}

func (s *InfluenceStack) Layers() []InfluenceLayer {
	out := make([]InfluenceLayer, len(s.layers))
	copy(out, s.layers)
	return out
}

func (s *InfluenceStack) Effective() float64 {
	w := s.base
	for _, l := range s.layers {
		w *= l.Weight
	}
	return geom.Clamp01(w)
}
