package constraints

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/xrig/internal/core/physics"
)

// paramReader pulls typed values out of the loosely typed maps produced by
// YAML and JSON decoders and collects every conversion error.
type paramReader struct {
	m    map[string]any
	errs []error
}

func params(m map[string]any) *paramReader { return &paramReader{m: m} }

func (p *paramReader) err() error { return errors.Join(p.errs...) }

func (p *paramReader) fail(key string, v any, want string) {
	p.errs = append(p.errs, fmt.Errorf("%w: %s=%v is not %s", ErrInvalidParam, key, v, want))
}

func (p *paramReader) float(key string, def float64) float64 {
	v, ok := p.m[key]
	if !ok {
		return def
	}
	f, ok := toFloat(v)
	if !ok {
		p.fail(key, v, "a number")
		return def
	}
	return f
}

func (p *paramReader) int(key string, def int) int {
	v, ok := p.m[key]
	if !ok {
		return def
	}
	f, ok := toFloat(v)
	if !ok || f != float64(int(f)) {
		p.fail(key, v, "an integer")
		return def
	}
	return int(f)
}

func (p *paramReader) string(key, def string) string {
	v, ok := p.m[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		p.fail(key, v, "a string")
		return def
	}
	return s
}

func (p *paramReader) vec3(key string) mgl64.Vec3 {
	v, ok := p.m[key]
	if !ok {
		return mgl64.Vec3{}
	}
	list, ok := v.([]any)
	if !ok || len(list) != 3 {
		p.fail(key, v, "a 3-element list")
		return mgl64.Vec3{}
	}
	var out mgl64.Vec3
	for i, e := range list {
		f, ok := toFloat(e)
		if !ok {
			p.fail(key, v, "a 3-element list of numbers")
			return mgl64.Vec3{}
		}
		out[i] = f
	}
	return out
}

// mask accepts a single layer index or a list of them, the same indices a
// collider's layer uses. Missing means all layers.
func (p *paramReader) mask(key string) physics.Layer {
	v, ok := p.m[key]
	if !ok {
		return physics.AllLayers
	}
	list, ok := v.([]any)
	if !ok {
		if _, isNum := toFloat(v); !isNum {
			p.fail(key, v, "a layer index or a list of layer indices")
			return physics.AllLayers
		}
		list = []any{v}
	}
	indices := make([]int, 0, len(list))
	for _, e := range list {
		f, ok := toFloat(e)
		if !ok || f != math.Trunc(f) {
			p.fail(key, v, "a list of integer layer indices")
			return physics.AllLayers
		}
		if f < 0 || f > 31 {
			p.errs = append(p.errs, fmt.Errorf("%w: %s: layer index %v out of range [0,31]", ErrInvalidParam, key, f))
			return physics.AllLayers
		}
		indices = append(indices, int(f))
	}
	m, err := physics.LayerMask(indices...)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%w: %s: %v", ErrInvalidParam, key, err))
		return physics.AllLayers
	}
	return m
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	}
	return 0, false
}
