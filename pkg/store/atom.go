package store

import (
	"sync"

	"github.com/vango-dev/memolab/pkg/memo"
)

// Readable is anything whose value can be read from a Store: atoms and
// derived views.
type Readable[T any] interface {
	Name() string
	Get(s *Store) (T, error)
	Subscribe(s *Store, fn func(T)) (cancel func(), err error)
}

// Atom is the definition of a shared, writable cell. Its value lives in
// whichever Store it is used with, starting at the initial value.
type Atom[T any] struct {
	id      uint64
	name    string
	initial T
	equal   func(x, y T) bool
}

// NewAtom defines an atom.
//
//	var counterAtom = store.NewAtom("counterAtom", 0)
func NewAtom[T any](name string, initial T) *Atom[T] {
	return &Atom[T]{
		id:      nextID(),
		name:    name,
		initial: initial,
	}
}

// WithEquals sets the equality used to decide whether a write changed the
// value. Subscribers are only notified of changes. The default is
// memo.SameValue.
func (a *Atom[T]) WithEquals(fn func(x, y T) bool) *Atom[T] {
	a.equal = fn
	return a
}

// Name returns the atom's name.
func (a *Atom[T]) Name() string {
	return a.name
}

// Initial returns the atom's initial value.
func (a *Atom[T]) Initial() T {
	return a.initial
}

// Get returns the atom's current value in s.
func (a *Atom[T]) Get(s *Store) (T, error) {
	e, err := a.entry(s)
	if err != nil {
		var zero T
		return zero, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.value, nil
}

// Set replaces the atom's value in s. The write is visible to every read
// that starts after Set returns.
func (a *Atom[T]) Set(s *Store, value T) error {
	_, err := a.update(s, func(T) T { return value })
	return err
}

// Update replaces the value with fn(current) as one atomic step.
func (a *Atom[T]) Update(s *Store, fn func(T) T) error {
	_, err := a.update(s, fn)
	return err
}

// Reset restores the initial value.
func (a *Atom[T]) Reset(s *Store) error {
	return a.Set(s, a.initial)
}

// Subscribe calls fn with the new value after every write that changes it.
func (a *Atom[T]) Subscribe(s *Store, fn func(T)) (cancel func(), err error) {
	e, err := a.entry(s)
	if err != nil {
		return nil, err
	}

	id := nextID()
	e.mu.Lock()
	e.subs = append(e.subs, subscription[T]{id: id, fn: fn})
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, sub := range e.subs {
			if sub.id == id {
				e.subs = append(e.subs[:i], e.subs[i+1:]...)
				return
			}
		}
	}, nil
}

func (a *Atom[T]) update(s *Store, fn func(T) T) (T, error) {
	e, err := a.entry(s)
	if err != nil {
		var zero T
		return zero, err
	}

	e.mu.Lock()
	old := e.value
	next := fn(old)
	changed := !a.equals(old, next)
	e.value = next
	subs := make([]subscription[T], len(e.subs))
	copy(subs, e.subs)
	e.mu.Unlock()

	s.committed(a.name, next)

	if changed {
		for _, sub := range subs {
			sub.fn(next)
		}
	}
	return next, nil
}

func (a *Atom[T]) equals(x, y T) bool {
	if a.equal != nil {
		return a.equal(x, y)
	}
	return memo.SameValue(x, y)
}

// entry retrieves or creates the atom's value slot in s.
func (a *Atom[T]) entry(s *Store) (*entry[T], error) {
	if err := s.check(a.name); err != nil {
		return nil, err
	}

	if val, ok := s.entries.Load(a.id); ok {
		return val.(*entry[T]), nil
	}

	fresh := &entry[T]{value: a.initial}
	actual, _ := s.entries.LoadOrStore(a.id, fresh)
	return actual.(*entry[T]), nil
}

type entry[T any] struct {
	mu    sync.RWMutex
	value T
	subs  []subscription[T]
}

type subscription[T any] struct {
	id uint64
	fn func(T)
}
