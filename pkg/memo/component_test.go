package memo

import (
	"strings"
	"testing"
)

type titleProps struct {
	Name string
}

func TestComponentSkipsIdenticalProps(t *testing.T) {
	title := NewComponent("Title", func(p titleProps) string {
		return "<h5>" + p.Name + "</h5>"
	})

	out1 := title.Render(titleProps{Name: "Memoised"})
	out2 := title.Render(titleProps{Name: "Memoised"})

	if out1 != out2 {
		t.Errorf("expected identical output, got %q and %q", out1, out2)
	}
	if title.Renders() != 1 {
		t.Errorf("expected 1 render, got %d", title.Renders())
	}

	out3 := title.Render(titleProps{Name: "Base"})
	if out3 != "<h5>Base</h5>" {
		t.Errorf("unexpected output %q", out3)
	}
	if title.Renders() != 2 {
		t.Errorf("expected 2 renders, got %d", title.Renders())
	}

	stats := title.Stats()
	if stats.Hits != 1 || stats.Misses != 2 {
		t.Errorf("expected 1 hit / 2 misses, got %+v", stats)
	}
}

type counterProps struct {
	Label       string
	OnIncrement *Handle[func()]
}

func TestComponentComparesHandleIdentity(t *testing.T) {
	button := NewComponent("Counter", func(p counterProps) string {
		return "button:" + p.Label
	})

	stable := NewHandle(func() {})
	button.Render(counterProps{Label: "+", OnIncrement: stable})
	button.Render(counterProps{Label: "+", OnIncrement: stable})
	if button.Renders() != 1 {
		t.Errorf("same handle should skip render, got %d renders", button.Renders())
	}

	button.Render(counterProps{Label: "+", OnIncrement: NewHandle(func() {})})
	if button.Renders() != 2 {
		t.Errorf("fresh handle should re-render, got %d renders", button.Renders())
	}
}

func TestComponentFieldEqual(t *testing.T) {
	type listProps struct {
		Items []string
		Title string
	}

	list := NewComponent("List",
		func(p listProps) string { return p.Title + ":" + strings.Join(p.Items, ",") },
		WithFieldEqual("Items", DeepEqual),
	)

	list.Render(listProps{Items: []string{"a"}, Title: "t"})
	list.Render(listProps{Items: []string{"a"}, Title: "t"})
	if list.Renders() != 1 {
		t.Errorf("structurally equal Items should skip, got %d renders", list.Renders())
	}

	list.Render(listProps{Items: []string{"a"}, Title: "u"})
	if list.Renders() != 2 {
		t.Errorf("changed Title should re-render, got %d renders", list.Renders())
	}
}

func TestComponentPropsEqualOverride(t *testing.T) {
	caseInsensitive := func(prev, next titleProps) bool {
		return strings.EqualFold(prev.Name, next.Name)
	}
	title := NewComponent("Title",
		func(p titleProps) string { return p.Name },
		WithPropsEqual(caseInsensitive),
	)

	title.Render(titleProps{Name: "memo"})
	out := title.Render(titleProps{Name: "MEMO"})
	if out != "memo" || title.Renders() != 1 {
		t.Errorf("override should treat names as equal, got %q after %d renders", out, title.Renders())
	}
}

func TestComponentPropsEqualTypeMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for mismatched WithPropsEqual type")
		}
	}()
	NewComponent("Title",
		func(p titleProps) string { return p.Name },
		WithPropsEqual(func(prev, next int) bool { return true }),
	)
}

func TestComponentNonStructProps(t *testing.T) {
	label := NewComponent("Label", func(n int) int { return n * 10 })

	label.Render(1)
	label.Render(1)
	label.Render(2)
	if label.Renders() != 2 {
		t.Errorf("expected 2 renders, got %d", label.Renders())
	}
}

func TestComponentUnexportedFields(t *testing.T) {
	type hidden struct {
		Name  string
		count int
	}
	c := NewComponent("Hidden", func(p hidden) int { return p.count })

	c.Render(hidden{Name: "a", count: 1})
	c.Render(hidden{Name: "a", count: 1})
	c.Render(hidden{Name: "a", count: 2})
	if c.Renders() != 2 {
		t.Errorf("unexported field change should re-render, got %d renders", c.Renders())
	}
}

func TestComponentUnexportedFieldEqual(t *testing.T) {
	type tagged struct {
		Name string
		tags []string
	}
	c := NewComponent("Tagged", func(p tagged) int { return len(p.tags) },
		WithFieldEqual("tags", DeepEqual))

	c.Render(tagged{Name: "a", tags: []string{"x", "y"}})
	c.Render(tagged{Name: "a", tags: []string{"x", "y"}})
	if c.Renders() != 1 {
		t.Errorf("equal contents in a fresh slice should skip the render, got %d renders", c.Renders())
	}

	if got := c.Render(tagged{Name: "a", tags: []string{"x"}}); got != 1 {
		t.Errorf("Render() = %d, want 1", got)
	}
	if c.Renders() != 2 {
		t.Errorf("changed contents should re-render, got %d renders", c.Renders())
	}
}
