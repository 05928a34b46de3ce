// Package memo implements dependency-gated recomputation.
//
// Every type in this package follows the same pattern: keep the last result
// together with the key that produced it, and rerun the producer only when
// a new key fails to compare equal to the stored one.
//
// # Core Types
//
// Cache[T] memoises a derived value:
//
//	cache := memo.NewCache[int]()
//	v := cache.GetOrCompute(memo.Deps{n}, func() int { return n * 2 })
//
// Callback[F] keeps a callback's identity stable while its deps match:
//
//	cb := memo.NewCallback[func()]()
//	h := cb.Get(memo.Deps{}, increment) // same *Handle on every call
//
// Component[P, O] skips a render when its props are shallowly equal:
//
//	title := memo.NewComponent("Title", func(p TitleProps) string { return p.Name })
//	out := title.Render(TitleProps{Name: "Memoised"})
//
// # Equality
//
// Keys and props are compared element by element. SameValue, the default,
// compares primitives by value and composite values by reference. A
// Comparator can override the rule per key position, and WithFieldEqual per
// props field.
//
// # Observing evaluations
//
// An Observer sees every hit and miss. Stats exposes the same counts, which
// makes producer invocation directly testable.
//
// # Hooks
//
// UseMemo, UseCallback and UseComponent bind a cache to a scope.Owner hook
// slot so that a render function can declare them inline.
package memo
