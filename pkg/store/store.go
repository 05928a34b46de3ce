package store

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/memolab/pkg/scope"
)

var (
	// ErrClosed is returned by every accessor once its Store is closed.
	ErrClosed = fmt.Errorf("%w: store is closed", scope.ErrScopeViolation)

	// ErrNoStore is returned when an accessor is given a nil Store.
	ErrNoStore = fmt.Errorf("%w: no store", scope.ErrScopeViolation)
)

var idCounter uint64

func nextID() uint64 {
	return atomic.AddUint64(&idCounter, 1)
}

// Change describes one completed write.
type Change struct {
	// Atom is the name of the atom that was written.
	Atom string

	// Value is the new value.
	Value any

	// Version increases by one with every write to the Store.
	Version uint64
}

// Store owns the values of every atom used with it. Atoms are only
// definitions; two Stores never share values.
//
// A Store is constructed explicitly and passed to every reader and writer.
// After Close, all accessors fail with ErrClosed.
type Store struct {
	name   string
	logger *slog.Logger

	entries sync.Map // map[uint64]any (*entry[T])

	closed  atomic.Bool
	version atomic.Uint64

	watchersMu sync.RWMutex
	watchers   map[uint64]func(Change)
}

// Option configures a Store.
type Option func(*Store)

// WithName sets the name used in errors and logs.
func WithName(name string) Option {
	return func(s *Store) {
		s.name = name
	}
}

// WithLogger sets the store's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		name:     "store",
		watchers: make(map[uint64]func(Change)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Name returns the store's name.
func (s *Store) Name() string {
	return s.name
}

// Closed reports whether Close has been called.
func (s *Store) Closed() bool {
	return s.closed.Load()
}

// Version returns the number of writes applied so far.
func (s *Store) Version() uint64 {
	return s.version.Load()
}

// Close ends the store's lifetime. Values and subscriptions are dropped and
// every later access fails with ErrClosed. Calling Close twice is a no-op.
func (s *Store) Close() {
	if s.closed.Swap(true) {
		return
	}

	s.entries.Range(func(key, _ any) bool {
		s.entries.Delete(key)
		return true
	})

	s.watchersMu.Lock()
	s.watchers = make(map[uint64]func(Change))
	s.watchersMu.Unlock()

	s.logger.Debug("store closed", "store", s.name)
}

// OnChange registers fn to be called after every write to any atom of this
// store. The returned function removes the watcher.
func (s *Store) OnChange(fn func(Change)) (cancel func(), err error) {
	if err := s.check("OnChange"); err != nil {
		return nil, err
	}

	id := nextID()
	s.watchersMu.Lock()
	s.watchers[id] = fn
	s.watchersMu.Unlock()

	return func() {
		s.watchersMu.Lock()
		delete(s.watchers, id)
		s.watchersMu.Unlock()
	}, nil
}

// check fails when s is nil or closed.
func (s *Store) check(accessor string) error {
	if s == nil {
		return fmt.Errorf("store: %s: %w", accessor, ErrNoStore)
	}
	if s.closed.Load() {
		return fmt.Errorf("store: %s used after %q closed: %w", accessor, s.name, ErrClosed)
	}
	return nil
}

// committed bumps the version and notifies watchers. Watchers are copied
// before notifying so none of the store's locks are held.
func (s *Store) committed(atom string, value any) {
	version := s.version.Add(1)

	s.watchersMu.RLock()
	watchers := make([]func(Change), 0, len(s.watchers))
	for _, w := range s.watchers {
		watchers = append(watchers, w)
	}
	s.watchersMu.RUnlock()

	change := Change{Atom: atom, Value: value, Version: version}
	for _, w := range watchers {
		w(change)
	}
}

// Context carries a Store through a scope tree, the way a provider makes
// atom values available to the components below it.
var Context = scope.Create[*Store]("StoreProvider")

// Provide makes s available to owner and its descendants and closes s when
// owner is disposed.
func Provide(owner *scope.Owner, s *Store) error {
	if err := Context.Provide(owner, s); err != nil {
		return err
	}
	owner.OnCleanup(s.Close)
	return nil
}

// From returns the Store provided at or above owner.
func From(owner *scope.Owner) (*Store, error) {
	return Context.Use(owner)
}
