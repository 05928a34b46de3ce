package store

import "sync/atomic"

// Derived is a read-only view of another Readable. Every Get recomputes
// f(base.Get()); nothing is cached, so a derived value can never be stale.
// Compare memo.Cache, which trades that guarantee for fewer computations.
type Derived[T, U any] struct {
	name string
	base Readable[T]
	fn   func(T) U

	computations atomic.Uint64
}

// Derive defines a view of base.
//
//	var doubleCounterAtom = store.Derive("doubleCounterAtom", counterAtom,
//	    func(n int) int { return n * 2 })
func Derive[T, U any](name string, base Readable[T], fn func(T) U) *Derived[T, U] {
	return &Derived[T, U]{
		name: name,
		base: base,
		fn:   fn,
	}
}

// Name returns the view's name.
func (d *Derived[T, U]) Name() string {
	return d.name
}

// Get reads the base and applies the derivation.
func (d *Derived[T, U]) Get(s *Store) (U, error) {
	v, err := d.base.Get(s)
	if err != nil {
		var zero U
		return zero, err
	}
	d.computations.Add(1)
	return d.fn(v), nil
}

// Subscribe calls fn with the derived value whenever the base changes.
func (d *Derived[T, U]) Subscribe(s *Store, fn func(U)) (cancel func(), err error) {
	return d.base.Subscribe(s, func(v T) {
		d.computations.Add(1)
		fn(d.fn(v))
	})
}

// Computations returns how many times the derivation has run.
func (d *Derived[T, U]) Computations() uint64 {
	return d.computations.Load()
}
