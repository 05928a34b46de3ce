package memo

import (
	"testing"

	"github.com/vango-dev/memolab/pkg/scope"
)

func TestUseMemoAcrossRenders(t *testing.T) {
	owner := scope.NewOwner(nil, "App")
	computations := 0

	render := func(count int, text string) int {
		var value int
		owner.Render(func() {
			value = UseMemo(owner, Deps{count}, func() int {
				computations++
				return count * 2
			})
			// text is unrelated to the memoised value
			_ = text
		})
		return value
	}

	if v := render(1, ""); v != 2 {
		t.Errorf("expected 2, got %d", v)
	}
	render(1, "h")
	render(1, "he")
	if computations != 1 {
		t.Errorf("typing should not recompute, got %d computations", computations)
	}

	if v := render(2, "he"); v != 4 {
		t.Errorf("expected 4, got %d", v)
	}
	if computations != 2 {
		t.Errorf("expected 2 computations, got %d", computations)
	}
}

func TestUseCallbackAcrossRenders(t *testing.T) {
	owner := scope.NewOwner(nil, "App")

	var handles []*Handle[func()]
	for i := 0; i < 3; i++ {
		owner.Render(func() {
			handles = append(handles, UseCallback(owner, Deps{}, func() {}))
		})
	}

	if handles[0] != handles[1] || handles[1] != handles[2] {
		t.Error("UseCallback with empty deps should keep one handle")
	}
}

func TestUseComponentAcrossRenders(t *testing.T) {
	owner := scope.NewOwner(nil, "App")
	var renders int

	for i := 0; i < 3; i++ {
		owner.Render(func() {
			c := UseComponent(owner, "Title", func(p titleProps) string {
				renders++
				return p.Name
			})
			c.Render(titleProps{Name: "same"})
		})
	}

	if renders != 1 {
		t.Errorf("expected 1 render of the memoised child, got %d", renders)
	}
}

func TestHooksKeepIndependentSlots(t *testing.T) {
	owner := scope.NewOwner(nil, "App")
	var a, b int

	for i := 0; i < 2; i++ {
		owner.Render(func() {
			UseMemo(owner, Deps{"x"}, func() int { a++; return 1 })
			UseMemo(owner, Deps{"y"}, func() int { b++; return 2 })
		})
	}

	if a != 1 || b != 1 {
		t.Errorf("each hook should compute once, got a=%d b=%d", a, b)
	}
}

func TestHookSlotTypeMismatchPanics(t *testing.T) {
	owner := scope.NewOwner(nil, "App")
	owner.Render(func() {
		UseMemo(owner, Deps{}, func() int { return 1 })
	})

	defer func() {
		if recover() == nil {
			t.Error("expected panic for slot type mismatch")
		}
	}()
	owner.Render(func() {
		UseMemo(owner, Deps{}, func() string { return "" })
	})
}
