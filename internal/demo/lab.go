// Package demo holds the tutorial pages of memolab as scripted, observable
// scenarios, and the Lab that mounts them.
//
// Every page is a small component tree built on pkg/memo, pkg/store and
// pkg/scope. A page re-renders after each state change and records what
// rendered and what was recomputed in its event log.
//
// Pages are not safe for concurrent use. The Lab serialises access to them.
package demo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vango-dev/memolab/internal/eventlog"
	"github.com/vango-dev/memolab/pkg/memo"
	"github.com/vango-dev/memolab/pkg/scope"
	"github.com/vango-dev/memolab/pkg/store"
)

// ErrClosed is returned by a Lab after Close.
var ErrClosed = fmt.Errorf("%w: lab closed", scope.ErrScopeViolation)

type factory func(e *env, m Meta) (Page, error)

var factories = map[string]factory{
	PagePath(SectionOptimisation, "memo"):        newMemoPage,
	PagePath(SectionOptimisation, "useCallback"): newUseCallbackPage,
	PagePath(SectionOptimisation, "useMemo"):     newUseMemoPage,
	PagePath(SectionState, "useState"):           newUseStatePage,
	PagePath(SectionState, "useReducer"):         newUseReducerPage,
	PagePath(SectionState, "context-api"):        newContextPage,
	PagePath(SectionState, "jotai"):              newJotaiPage,
}

// Option configures a Lab.
type Option func(*options)

type options struct {
	observer   memo.Observer
	logger     *slog.Logger
	iterations int
	capacity   int
}

// WithObserver adds an observer to every cache, callback and component
// the pages create, next to their event logs.
func WithObserver(obs memo.Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithIterations sets the size of the useMemo page's expensive
// computation.
func WithIterations(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.iterations = n
		}
	}
}

// WithLogCapacity bounds each page's event log.
func WithLogCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// Lab mounts every page of the catalog under one root owner, with one
// Store shared by all of them.
type Lab struct {
	mu     sync.Mutex
	root   *scope.Owner
	store  *store.Store
	pages  []Page
	byPath map[string]Page
	logger *slog.Logger
	closed bool
}

// New creates a Lab and renders every page once.
func New(opts ...Option) (*Lab, error) {
	o := options{
		iterations: DefaultIterations,
		capacity:   eventlog.DefaultCapacity,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	root := scope.NewOwner(nil, "Lab")
	s := store.New(store.WithName("lab"), store.WithLogger(o.logger))
	if err := store.Provide(root, s); err != nil {
		return nil, err
	}

	l := &Lab{
		root:   root,
		store:  s,
		byPath: make(map[string]Page),
		logger: o.logger,
	}

	e := &env{
		owner:      root,
		observer:   o.observer,
		logger:     o.logger,
		iterations: o.iterations,
		capacity:   o.capacity,
	}
	for _, section := range Catalog() {
		for _, m := range section.Pages {
			mount, ok := factories[m.Path]
			if !ok {
				root.Dispose()
				return nil, fmt.Errorf("%w: no implementation for %s", ErrUnknownPage, m.Path)
			}
			p, err := mount(e, m)
			if err != nil {
				root.Dispose()
				return nil, fmt.Errorf("mount %s: %w", m.Path, err)
			}
			l.pages = append(l.pages, p)
			l.byPath[m.Path] = p
		}
	}

	l.logger.Debug("lab mounted", "pages", len(l.pages))
	return l, nil
}

// Store returns the Store shared by the pages.
func (l *Lab) Store() *store.Store {
	return l.store
}

// Pages returns the mounted pages in catalog order.
func (l *Lab) Pages() []Page {
	return append([]Page(nil), l.pages...)
}

// Lookup returns the page mounted at path.
func (l *Lab) Lookup(path string) (Page, error) {
	p, ok := l.byPath[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPage, path)
	}
	return p, nil
}

// View returns the current view of the page at path.
func (l *Lab) View(path string) (View, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.lookup(path)
	if err != nil {
		return View{}, err
	}
	return p.View(), nil
}

// Dispatch applies one action to the page at path and returns the page's
// view afterwards. Actions run one at a time, each to completion.
//
// A failed action still returns the view, so callers can show the state
// the failure left behind.
func (l *Lab) Dispatch(path, action, arg string) (View, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.lookup(path)
	if err != nil {
		return View{}, err
	}
	if !p.Meta().HasAction(action) {
		return p.View(), fmt.Errorf("%w %q on %s", ErrUnknownAction, action, path)
	}

	if err := p.Do(action, arg); err != nil {
		level := slog.LevelWarn
		if errors.Is(err, scope.ErrScopeViolation) {
			level = slog.LevelInfo
		}
		l.logger.Log(context.Background(), level, "action failed", "page", path, "action", action, "error", err)
		return p.View(), err
	}

	l.logger.Debug("action", "page", path, "action", action, "arg", arg)
	return p.View(), nil
}

// Events returns the entries of the page's event log with a sequence
// number greater than since.
func (l *Lab) Events(path string, since uint64) ([]eventlog.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.lookup(path)
	if err != nil {
		return nil, err
	}
	return p.Events().Since(since), nil
}

func (l *Lab) lookup(path string) (Page, error) {
	if l.closed {
		return nil, ErrClosed
	}
	return l.Lookup(path)
}

// Close disposes every page and closes the Store. It is safe to call more
// than once.
func (l *Lab) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	l.root.Dispose()
	l.logger.Debug("lab closed")
}
