package scope

import (
	"errors"
	"fmt"
)

// ErrScopeViolation is returned when a shared-state accessor is used outside
// the lifetime of the provider that owns it. It indicates a programming
// error, never a transient condition, so there is no retry path.
var ErrScopeViolation = errors.New("memolab: accessor used outside its provider scope")

// ScopeError describes a scope violation. It wraps ErrScopeViolation so
// callers can test with errors.Is.
type ScopeError struct {
	// Accessor names the context or cell that was accessed.
	Accessor string

	// Owner names the scope the access was attempted from, if any.
	Owner string

	// Reason is a short human-readable explanation.
	Reason string
}

// Error implements the error interface.
func (e *ScopeError) Error() string {
	if e.Owner != "" {
		return fmt.Sprintf("memolab: %s used in %q: %s", e.Accessor, e.Owner, e.Reason)
	}
	return fmt.Sprintf("memolab: %s: %s", e.Accessor, e.Reason)
}

// Unwrap returns ErrScopeViolation.
func (e *ScopeError) Unwrap() error {
	return ErrScopeViolation
}

// HookOrderError is the panic value raised when a render pass reaches a
// different number of hook slots than the first pass did.
type HookOrderError struct {
	Owner    string
	Expected int
	Got      int
}

func (e *HookOrderError) Error() string {
	return fmt.Sprintf("memolab: hook order changed in %q: expected %d hooks, got %d",
		e.Owner, e.Expected, e.Got)
}
