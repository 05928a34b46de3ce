package memo

import (
	"reflect"
	"sync"
	"time"
	"unsafe"
)

// Component gates a render function on its props. When every props field
// compares equal to the props of the previous render, the previous output is
// returned and render is not invoked.
//
// For struct props each field is compared on its own with the Equaler set
// with WithFieldEqual, exported or not. Exported fields without one use the
// comparator default (SameValue); unexported fields without one use
// SameValue. Non-struct props are compared as a single value. WithPropsEqual
// replaces all of this with a custom function.
type Component[P, O any] struct {
	cfg    config
	render func(P) O
	equal  func(prev, next P) bool

	mu      sync.Mutex
	props   P
	output  O
	valid   bool
	stats   Stats
	renders int
}

// NewComponent wraps render in a skip-render gate.
func NewComponent[P, O any](name string, render func(P) O, opts ...Option) *Component[P, O] {
	cfg := newConfig(name, opts)

	c := &Component[P, O]{
		cfg:    cfg,
		render: render,
	}

	switch fn := cfg.propsEqual.(type) {
	case nil:
		c.equal = ShallowEqual[P](cfg.comparator.def, cfg.fieldEqual)
	case func(prev, next P) bool:
		c.equal = fn
	default:
		panic("memolab: WithPropsEqual type does not match component props for " + name)
	}

	return c
}

// Render returns the previous output when props are shallowly equal to the
// last rendered props, and otherwise invokes render exactly once.
func (c *Component[P, O]) Render(props P) O {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.equal(c.props, props) {
		c.stats.Hits++
		if c.cfg.observer != nil {
			c.cfg.observer.OnHit(c.cfg.name)
		}
		return c.output
	}

	start := time.Now()
	out := c.render(props)
	took := time.Since(start)

	c.props = props
	c.output = out
	c.valid = true
	c.renders++
	c.stats.Misses++

	if c.cfg.observer != nil {
		c.cfg.observer.OnMiss(c.cfg.name, took)
	}
	return out
}

// Renders returns how many times render has been invoked.
func (c *Component[P, O]) Renders() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renders
}

// Stats returns hit and miss counts.
func (c *Component[P, O]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Name returns the component's name.
func (c *Component[P, O]) Name() string {
	return c.cfg.name
}

// ShallowEqual builds a props comparison for P. Struct fields use
// fields[name] when present. Otherwise exported fields use def and
// unexported fields use SameValue. Non-struct P is compared with def.
func ShallowEqual[P any](def Equaler, fields map[string]Equaler) func(prev, next P) bool {
	if def == nil {
		def = SameValue
	}

	t := reflect.TypeFor[P]()
	if t.Kind() != reflect.Struct {
		return func(prev, next P) bool {
			return def(prev, next)
		}
	}

	type fieldRule struct {
		index    int
		exported bool
		custom   bool
		eq       Equaler
	}
	rules := make([]fieldRule, t.NumField())
	for i := range rules {
		f := t.Field(i)
		r := fieldRule{index: i, exported: f.IsExported(), eq: def}
		if eq, ok := fields[f.Name]; ok && eq != nil {
			r.custom, r.eq = true, eq
		}
		rules[i] = r
	}

	return func(prev, next P) bool {
		// Both values are addressable, so unexported fields can be read.
		pv := reflect.ValueOf(&prev).Elem()
		nv := reflect.ValueOf(&next).Elem()
		for _, r := range rules {
			a, b := pv.Field(r.index), nv.Field(r.index)
			switch {
			case r.exported:
				if !r.eq(a.Interface(), b.Interface()) {
					return false
				}
			case r.custom:
				if !r.eq(unexported(a), unexported(b)) {
					return false
				}
			default:
				if !sameValue(a, b) {
					return false
				}
			}
		}
		return true
	}
}

// unexported returns the value of an addressable unexported struct field.
func unexported(v reflect.Value) any {
	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem().Interface()
}
