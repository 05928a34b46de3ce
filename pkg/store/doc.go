// Package store provides shared state cells with derived views.
//
// An Atom is a definition; its value lives in a Store. Any number of
// readers and writers holding the same Store see the same value, and every
// write is visible to reads that start after it returns.
//
// Usage:
//
//	var counterAtom = store.NewAtom("counterAtom", 0)
//	var doubleCounterAtom = store.Derive("doubleCounterAtom", counterAtom,
//	    func(n int) int { return n * 2 })
//
//	s := store.New()
//	defer s.Close()
//
//	counterAtom.Update(s, func(n int) int { return n + 1 })
//	double, _ := doubleCounterAtom.Get(s) // 2
//
// Derived views are recomputed on every read and never cached; memo.Cache
// is the cached alternative.
//
// A Store has an explicit lifetime. Provide binds it to a scope.Owner so it
// closes with that owner; any access after Close returns an error wrapping
// scope.ErrScopeViolation.
package store
