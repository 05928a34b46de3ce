package demo

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/vango-dev/memolab/internal/eventlog"
	"github.com/vango-dev/memolab/pkg/memo"
	"github.com/vango-dev/memolab/pkg/scope"
)

var (
	// ErrUnknownPage is returned when a path names no page in the catalog.
	ErrUnknownPage = errors.New("memolab: unknown page")

	// ErrUnknownAction is returned when a page does not accept an action.
	ErrUnknownAction = errors.New("memolab: unknown action")

	// ErrInvalidArgument is returned when an action argument is malformed.
	ErrInvalidArgument = errors.New("memolab: invalid action argument")
)

// Page is one tutorial page, mounted in a Lab.
type Page interface {
	// Meta returns the catalog entry of the page.
	Meta() Meta

	// View returns the current state and render counts.
	View() View

	// Do applies a user action. Every state change re-renders the page.
	Do(action, arg string) error

	// Events returns the page's event log.
	Events() *eventlog.Log
}

// View is a snapshot of a page after its latest render.
type View struct {
	Path    string         `json:"path"`
	State   map[string]any `json:"state"`
	Renders map[string]int `json:"renders"`
	Output  string         `json:"output,omitempty"`
}

// env is what the Lab hands to every page.
type env struct {
	owner      *scope.Owner
	observer   memo.Observer
	logger     *slog.Logger
	iterations int
	capacity   int
}

// page holds what every tutorial page shares: its owner, event log and
// per-component render counters.
type page struct {
	meta   Meta
	owner  *scope.Owner
	log    *eventlog.Log
	obs    memo.Observer
	logger *slog.Logger

	mu      sync.Mutex
	renders map[string]int
	output  string
}

func newPage(e *env, meta Meta, component string) *page {
	log := eventlog.New(e.capacity)
	return &page{
		meta:    meta,
		owner:   scope.NewOwner(e.owner, component),
		log:     log,
		obs:     memo.Observers(log, e.observer),
		logger:  e.logger.With("page", meta.Path),
		renders: make(map[string]int),
	}
}

func (p *page) Meta() Meta {
	return p.meta
}

func (p *page) Events() *eventlog.Log {
	return p.log
}

// render runs one render pass of the page component.
func (p *page) render(fn func()) {
	p.owner.Render(func() {
		p.rendered(p.owner.Name())
		fn()
	})
}

// rendered counts a component render and logs it.
func (p *page) rendered(component string) {
	p.mu.Lock()
	p.renders[component]++
	p.mu.Unlock()
	p.log.Record(eventlog.KindRender, component, component+" Rendered")
}

func (p *page) setOutput(out string) {
	p.mu.Lock()
	p.output = out
	p.mu.Unlock()
}

// snapshot builds a View from state and the render counters.
func (p *page) snapshot(state map[string]any) View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return View{
		Path:    p.meta.Path,
		State:   state,
		Renders: maps.Clone(p.renders),
		Output:  p.output,
	}
}

func (p *page) unknown(action string) error {
	return fmt.Errorf("%w %q on %s", ErrUnknownAction, action, p.meta.Path)
}

// stateChanged records a state transition.
func (p *page) stateChanged(name string, value any) {
	p.log.Recordf(eventlog.KindState, p.owner.Name(), "%s = %v", name, value)
	p.logger.Debug("state changed", "component", p.owner.Name(), "field", name, "value", value)
}
