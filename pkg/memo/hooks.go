package memo

import "github.com/vango-dev/memolab/pkg/scope"

// UseMemo is the hook form of Cache.GetOrCompute. The cache lives in the
// owner's next hook slot, so it must be called unconditionally and in the
// same order on every render pass of owner.
//
// Options are applied only when the slot is first created.
//
// Example:
//
//	owner.Render(func() {
//	    total := memo.UseMemo(owner, memo.Deps{count}, func() int {
//	        return expensive(count)
//	    })
//	})
func UseMemo[T any](owner *scope.Owner, deps Deps, producer func() T, opts ...Option) T {
	cache := useSlot(owner, func() *Cache[T] {
		return NewCache[T](opts...)
	})
	return cache.GetOrCompute(deps, producer)
}

// UseCallback is the hook form of Callback.Get.
func UseCallback[F any](owner *scope.Owner, deps Deps, fn F, opts ...Option) *Handle[F] {
	cb := useSlot(owner, func() *Callback[F] {
		return NewCallback[F](opts...)
	})
	return cb.Get(deps, fn)
}

// UseComponent returns the Component stored in the owner's next hook slot,
// creating it from render on the first pass. Later passes reuse the first
// render function, like a component declared once at package level.
func UseComponent[P, O any](owner *scope.Owner, name string, render func(P) O, opts ...Option) *Component[P, O] {
	return useSlot(owner, func() *Component[P, O] {
		return NewComponent(name, render, opts...)
	})
}

func useSlot[S any](owner *scope.Owner, create func() S) S {
	if slot := owner.UseSlot(); slot != nil {
		s, ok := slot.(S)
		if !ok {
			panic("memolab: hook slot type mismatch")
		}
		return s
	}
	s := create()
	owner.SetSlot(s)
	return s
}
