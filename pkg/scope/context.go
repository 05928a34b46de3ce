package scope

// Context shares a value with every descendant of the Owner that provides it,
// without threading it through each level by hand.
//
// Unlike a context with a default value, a Context here has no fallback:
// consuming it outside a provider is a scope violation.
//
// Example:
//
//	var CounterContext = scope.Create[*Counter]("CounterContext")
//
//	provider := scope.NewOwner(root, "CounterProvider")
//	CounterContext.Provide(provider, &Counter{})
//
//	display := scope.NewOwner(provider, "CounterDisplay")
//	counter, err := CounterContext.Use(display)
type Context[T any] struct {
	name string

	// key uniquely identifies this context in the owner value maps.
	key any
}

// contextKey wraps the Context pointer to create a unique key type.
type contextKey[T any] struct {
	ctx *Context[T]
}

// Create creates a new Context. The name appears in scope violation errors.
func Create[T any](name string) *Context[T] {
	ctx := &Context[T]{name: name}
	ctx.key = contextKey[T]{ctx: ctx}
	return ctx
}

// Name returns the context's descriptive name.
func (c *Context[T]) Name() string {
	return c.name
}

// Provide stores value on owner. Descendants of owner see it via Use until
// owner is disposed. Providing on a disposed owner is a scope violation.
func (c *Context[T]) Provide(owner *Owner, value T) error {
	if owner == nil {
		return &ScopeError{Accessor: c.name, Reason: "no owner to provide on"}
	}
	if owner.IsDisposed() {
		return &ScopeError{Accessor: c.name, Owner: owner.Name(), Reason: "owner is disposed"}
	}
	owner.SetValue(c.key, value)
	return nil
}

// Use retrieves the value from the nearest live provider at or above owner.
// It fails fast with a *ScopeError when owner is nil or disposed, or when no
// provider exists in the chain.
func (c *Context[T]) Use(owner *Owner) (T, error) {
	var zero T
	if owner == nil {
		return zero, &ScopeError{Accessor: c.name, Reason: "must be used within a provider"}
	}
	if owner.IsDisposed() {
		return zero, &ScopeError{Accessor: c.name, Owner: owner.Name(), Reason: "owner is disposed"}
	}

	value, ok := owner.GetValue(c.key)
	if !ok {
		return zero, &ScopeError{Accessor: c.name, Owner: owner.Name(), Reason: "must be used within a provider"}
	}
	typed, ok := value.(T)
	if !ok {
		panic("memolab: context value type mismatch for " + c.name)
	}
	return typed, nil
}

// MustUse is like Use but panics on a scope violation.
func (c *Context[T]) MustUse(owner *Owner) T {
	v, err := c.Use(owner)
	if err != nil {
		panic(err)
	}
	return v
}
