package demo

import (
	"fmt"

	"github.com/vango-dev/memolab/internal/eventlog"
	"github.com/vango-dev/memolab/pkg/scope"
	"github.com/vango-dev/memolab/pkg/store"
)

// useStatePage is a plain local counter.
type useStatePage struct {
	*page
	count int
}

func newUseStatePage(e *env, m Meta) (Page, error) {
	p := &useStatePage{page: newPage(e, m, "Counter")}
	p.rerender()
	return p, nil
}

// setCount skips the re-render when the value does not change.
func (p *useStatePage) setCount(n int) {
	if n == p.count {
		return
	}
	p.count = n
	p.stateChanged("count", n)
	p.rerender()
}

func (p *useStatePage) rerender() {
	p.render(func() {
		p.setOutput(fmt.Sprintf("Count: %d", p.count))
	})
}

func (p *useStatePage) Do(action, _ string) error {
	switch action {
	case "increment":
		p.setCount(p.count + 1)
	case "decrement":
		p.setCount(p.count - 1)
	case "reset":
		p.setCount(0)
	default:
		return p.unknown(action)
	}
	return nil
}

func (p *useStatePage) View() View {
	return p.snapshot(map[string]any{"count": p.count})
}

// CounterState is the state of the useReducer page.
type CounterState struct {
	Count int `json:"count"`
}

// CounterReducer handles increment, decrement and reset. Any other action
// returns the state unchanged.
func CounterReducer(state CounterState, action string) CounterState {
	switch action {
	case "increment":
		return CounterState{Count: state.Count + 1}
	case "decrement":
		return CounterState{Count: state.Count - 1}
	case "reset":
		return CounterState{}
	default:
		return state
	}
}

// useReducerPage routes every update through CounterReducer. The state
// lives in an atom of the lab's Store; the page re-renders when it changes.
type useReducerPage struct {
	*page
	reducer *store.Reducer[CounterState, string]
	state   CounterState
}

func newUseReducerPage(e *env, m Meta) (Page, error) {
	p := &useReducerPage{page: newPage(e, m, "Counter")}
	p.reducer = store.NewReducer(store.NewAtom("useReducer.state", CounterState{}), CounterReducer)

	s, err := store.From(p.owner)
	if err != nil {
		return nil, err
	}
	cancel, err := p.reducer.Atom().Subscribe(s, func(next CounterState) {
		p.state = next
		p.stateChanged("state", next)
		p.rerender()
	})
	if err != nil {
		return nil, err
	}
	p.owner.OnCleanup(cancel)

	p.rerender()
	return p, nil
}

func (p *useReducerPage) dispatch(action string) error {
	s, err := store.From(p.owner)
	if err != nil {
		return err
	}
	p.log.Recordf(eventlog.KindState, "dispatch", "action %q", action)
	_, err = p.reducer.Dispatch(s, action)
	return err
}

func (p *useReducerPage) rerender() {
	p.render(func() {
		p.setOutput(fmt.Sprintf("Count: %d", p.state.Count))
	})
}

func (p *useReducerPage) Do(action, arg string) error {
	switch action {
	case "increment", "decrement", "reset":
		return p.dispatch(action)
	case "dispatch":
		return p.dispatch(arg)
	default:
		return p.unknown(action)
	}
}

func (p *useReducerPage) View() View {
	return p.snapshot(map[string]any{"count": p.state.Count})
}

// counterValue is what CounterProvider shares with its consumers.
type counterValue struct {
	count int
}

// counterContext is the context of the Context API page.
var counterContext = scope.Create[*counterValue]("CounterContext")

// contextPage mounts CounterDisplay and CounterControls under a
// CounterProvider. Unmounting the provider leaves the consumers without
// one, and every access then fails with a scope violation.
type contextPage struct {
	*page
	provider *scope.Owner
	display  *scope.Owner
	controls *scope.Owner
	count    int
	err      error
}

func newContextPage(e *env, m Meta) (Page, error) {
	p := &contextPage{page: newPage(e, m, "ContextAPI")}
	if err := p.mount(); err != nil {
		return nil, err
	}
	p.rerender()
	return p, nil
}

func (p *contextPage) mount() error {
	p.dropConsumers()

	provider := scope.NewOwner(p.owner, "CounterProvider")
	if err := counterContext.Provide(provider, &counterValue{}); err != nil {
		provider.Dispose()
		return err
	}
	p.provider = provider
	p.display = scope.NewOwner(provider, "CounterDisplay")
	p.controls = scope.NewOwner(provider, "CounterControls")
	p.stateChanged("mounted", true)
	return nil
}

func (p *contextPage) unmount() {
	p.provider.Dispose()
	p.provider = nil
	p.dropConsumers()

	// The consumers stay on screen, outside any provider.
	p.display = scope.NewOwner(p.owner, "CounterDisplay")
	p.controls = scope.NewOwner(p.owner, "CounterControls")
	p.stateChanged("mounted", false)
}

func (p *contextPage) dropConsumers() {
	if p.display != nil {
		p.display.Dispose()
	}
	if p.controls != nil {
		p.controls.Dispose()
	}
}

func (p *contextPage) rerender() {
	p.render(func() {
		p.rendered("CounterDisplay")
		value, err := counterContext.Use(p.display)
		if err != nil {
			p.err = err
			p.log.Record(eventlog.KindError, "CounterDisplay", err.Error())
			p.setOutput("")
			return
		}
		p.err = nil
		p.count = value.count
		p.setOutput(fmt.Sprintf("Count: %d", value.count))
	})
}

func (p *contextPage) update(delta int) error {
	value, err := counterContext.Use(p.controls)
	if err != nil {
		p.log.Record(eventlog.KindError, "CounterControls", err.Error())
		return err
	}
	value.count += delta
	p.stateChanged("count", value.count)
	p.rerender()
	return nil
}

func (p *contextPage) Do(action, _ string) error {
	switch action {
	case "increment":
		return p.update(1)
	case "decrement":
		return p.update(-1)
	case "unmount":
		if p.provider == nil {
			return nil
		}
		p.unmount()
	case "mount":
		if p.provider != nil {
			return nil
		}
		if err := p.mount(); err != nil {
			return err
		}
	default:
		return p.unknown(action)
	}
	p.rerender()
	return nil
}

func (p *contextPage) View() View {
	state := map[string]any{
		"mounted": p.provider != nil,
		"count":   p.count,
	}
	if p.err != nil {
		state["error"] = p.err.Error()
	}
	return p.snapshot(state)
}

// The atoms of the Jotai page. Definitions are package level; their values
// live in the lab's Store.
var (
	CounterAtom       = store.NewAtom("counterAtom", 0)
	DoubleCounterAtom = store.Derive("doubleCounterAtom", CounterAtom, func(n int) int { return n * 2 })
)

// jotaiPage reads and writes shared atoms. doubleCounterAtom is derived and
// recomputed on every read.
type jotaiPage struct {
	*page
	count  int
	double int
}

func newJotaiPage(e *env, m Meta) (Page, error) {
	p := &jotaiPage{page: newPage(e, m, "JotaiExample")}

	s, err := store.From(p.owner)
	if err != nil {
		return nil, err
	}
	cancel, err := CounterAtom.Subscribe(s, func(int) { p.rerender() })
	if err != nil {
		return nil, err
	}
	p.owner.OnCleanup(cancel)

	p.rerender()
	return p, nil
}

func (p *jotaiPage) rerender() {
	p.render(func() {
		s, err := store.From(p.owner)
		if err != nil {
			p.log.Record(eventlog.KindError, p.owner.Name(), err.Error())
			return
		}
		count, err := CounterAtom.Get(s)
		if err != nil {
			p.log.Record(eventlog.KindError, p.owner.Name(), err.Error())
			return
		}
		double, err := DoubleCounterAtom.Get(s)
		if err != nil {
			p.log.Record(eventlog.KindError, p.owner.Name(), err.Error())
			return
		}
		p.count, p.double = count, double
		p.setOutput(fmt.Sprintf("Counter: %d, Double: %d", p.count, p.double))
	})
}

func (p *jotaiPage) Do(action, _ string) error {
	s, err := store.From(p.owner)
	if err != nil {
		return err
	}

	switch action {
	case "increment":
		err = CounterAtom.Update(s, func(n int) int { return n + 1 })
	case "decrement":
		err = CounterAtom.Update(s, func(n int) int { return n - 1 })
	case "reset":
		err = CounterAtom.Reset(s)
	default:
		return p.unknown(action)
	}
	if err != nil {
		return err
	}
	p.stateChanged("counterAtom", p.count)
	return nil
}

func (p *jotaiPage) View() View {
	return p.snapshot(map[string]any{
		"counterAtom":       p.count,
		"doubleCounterAtom": p.double,
	})
}
