package demo

import (
	"fmt"

	"github.com/vango-dev/memolab/internal/eventlog"
	"github.com/vango-dev/memolab/pkg/memo"
)

// DefaultIterations is how many additions the expensive computation of the
// useMemo page performs.
const DefaultIterations = 10_000_000

// nameProps are the props of the memo page's child components.
type nameProps struct {
	Name string
}

// memoPage contrasts a plain child, which renders whenever its parent does,
// with a memoised one that renders only when its Name prop changes.
//
// Selecting "basic" unmounts the memoised child; selecting "memo" again
// mounts a fresh one, which renders once.
type memoPage struct {
	*page
	counter  int
	selected string
	memoised *memo.Component[nameProps, string]
}

func newMemoPage(e *env, m Meta) (Page, error) {
	p := &memoPage{page: newPage(e, m, "Memo"), selected: "basic"}
	p.rerender()
	return p, nil
}

func (p *memoPage) baseComponent(props nameProps) string {
	p.rendered("BaseComponent")
	return props.Name
}

func (p *memoPage) memoComponent(props nameProps) string {
	p.rendered("MemoComponent")
	return props.Name
}

func (p *memoPage) rerender() {
	p.render(func() {
		if p.selected == "basic" {
			p.memoised = nil
			p.setOutput(p.baseComponent(nameProps{Name: "Base"}))
			return
		}
		if p.memoised == nil {
			p.memoised = memo.NewComponent("MemoComponent", p.memoComponent, memo.WithObserver(p.obs))
		}
		p.setOutput(p.memoised.Render(nameProps{Name: "Memoised"}))
	})
}

func (p *memoPage) Do(action, arg string) error {
	switch action {
	case "increment":
		p.counter++
		p.stateChanged("counter", p.counter)
	case "select":
		if arg != "basic" && arg != "memo" {
			return fmt.Errorf("%w: select wants basic or memo, got %q", ErrInvalidArgument, arg)
		}
		if arg == p.selected {
			return nil
		}
		p.selected = arg
		p.stateChanged("selected", arg)
	default:
		return p.unknown(action)
	}
	p.rerender()
	return nil
}

func (p *memoPage) View() View {
	return p.snapshot(map[string]any{
		"counter":  p.counter,
		"selected": p.selected,
	})
}

// useMemoPage runs an expensive computation on every render, or only when
// count changes once memoisation is switched on. Typing text re-renders the
// page without touching count.
type useMemoPage struct {
	*page
	count      int
	text       string
	memoised   bool
	iterations int
	expensive  *memo.Cache[int]
	value      int
}

func newUseMemoPage(e *env, m Meta) (Page, error) {
	p := &useMemoPage{
		page:       newPage(e, m, "UseMemo"),
		iterations: e.iterations,
	}
	p.expensive = memo.NewCache[int](
		memo.WithName("expensiveValue"),
		memo.WithObserver(p.obs),
		memo.WithLogger(p.logger),
	)
	p.rerender()
	return p, nil
}

func (p *useMemoPage) computeExpensiveValue(num int) int {
	p.log.Record(eventlog.KindCompute, "computeExpensiveValue", "Computing expensive value...")
	total := 0
	for i := 0; i < p.iterations; i++ {
		total += num
	}
	return total
}

func (p *useMemoPage) rerender() {
	p.render(func() {
		if p.memoised {
			p.value = p.expensive.GetOrCompute(memo.Deps{p.count, p.memoised}, func() int {
				p.log.Record(eventlog.KindCompute, p.owner.Name(), "Using useMemo for computation")
				return p.computeExpensiveValue(p.count)
			})
		} else {
			p.log.Record(eventlog.KindCompute, p.owner.Name(), "Recomputing without useMemo")
			p.value = p.computeExpensiveValue(p.count)
		}
		p.setOutput(fmt.Sprintf("Expensive Value: %d", p.value))
	})
}

func (p *useMemoPage) Do(action, arg string) error {
	switch action {
	case "increment":
		p.count++
		p.stateChanged("count", p.count)
	case "type":
		if arg == p.text {
			return nil
		}
		p.text = arg
		p.stateChanged("text", arg)
	case "select":
		var memoised bool
		switch arg {
		case "regular":
		case "memoised":
			memoised = true
		default:
			return fmt.Errorf("%w: select wants regular or memoised, got %q", ErrInvalidArgument, arg)
		}
		if memoised == p.memoised {
			return nil
		}
		p.memoised = memoised
		p.stateChanged("memoised", memoised)
	default:
		return p.unknown(action)
	}
	p.rerender()
	return nil
}

func (p *useMemoPage) View() View {
	return p.snapshot(map[string]any{
		"count":          p.count,
		"text":           p.text,
		"memoised":       p.memoised,
		"expensiveValue": p.value,
	})
}

// counterProps are the props of the useCallback page's memoised Counter.
type counterProps struct {
	OnIncrement *memo.Handle[func()]
}

// useCallbackPage passes an increment callback to a memoised Counter. A
// fresh callback on every render defeats the memoisation; a stable one
// from UseCallback keeps Counter from re-rendering.
type useCallbackPage struct {
	*page
	count    int
	memoised bool
	current  *memo.Handle[func()]
}

func newUseCallbackPage(e *env, m Meta) (Page, error) {
	p := &useCallbackPage{page: newPage(e, m, "UseCallback")}
	p.rerender()
	return p, nil
}

func (p *useCallbackPage) counterComponent(props counterProps) string {
	p.rendered("Counter")
	return fmt.Sprintf("Increment (callback #%d)", props.OnIncrement.ID())
}

func (p *useCallbackPage) increment() {
	p.count++
	p.stateChanged("count", p.count)
	p.rerender()
}

func (p *useCallbackPage) rerender() {
	p.render(func() {
		counter := memo.UseComponent(p.owner, "Counter", p.counterComponent, memo.WithObserver(p.obs))
		stable := memo.UseCallback(p.owner, memo.Deps{}, p.increment,
			memo.WithName("increment"), memo.WithObserver(p.obs))

		selected := memo.NewHandle(p.increment)
		if p.memoised {
			selected = stable
		}
		p.current = selected
		p.setOutput(counter.Render(counterProps{OnIncrement: selected}))
	})
}

func (p *useCallbackPage) Do(action, arg string) error {
	switch action {
	case "click":
		p.current.Fn()()
		return nil
	case "select":
		var memoised bool
		switch arg {
		case "regular":
		case "memoised":
			memoised = true
		default:
			return fmt.Errorf("%w: select wants regular or memoised, got %q", ErrInvalidArgument, arg)
		}
		if memoised == p.memoised {
			return nil
		}
		p.memoised = memoised
		p.stateChanged("memoised", memoised)
	default:
		return p.unknown(action)
	}
	p.rerender()
	return nil
}

func (p *useCallbackPage) View() View {
	return p.snapshot(map[string]any{
		"count":      p.count,
		"memoised":   p.memoised,
		"callbackId": p.current.ID(),
	})
}
