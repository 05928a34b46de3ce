// Package scope provides explicit lifetimes for cached and shared state.
//
// An Owner is a node in a scope tree. It holds hook slots (one per call
// site, stable across render passes), context values provided to its
// descendants, and cleanups that run when it is disposed.
//
// # Render passes
//
// Hooks such as memo.UseMemo find their state by position:
//
//	owner.Render(func() {
//	    doubled := memo.UseMemo(owner, memo.Deps{count}, func() int { return count * 2 })
//	    _ = doubled
//	})
//
// Every pass must reach the same hooks in the same order.
//
// # Providers
//
// A Context is provided on one Owner and consumed from any descendant.
// Consuming it outside a live provider returns a *ScopeError that wraps
// ErrScopeViolation.
package scope
