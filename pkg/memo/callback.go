package memo

import "sync/atomic"

var handleIDCounter uint64

// Handle is a reference-stable wrapper around a function value.
//
// Go func values cannot be compared, so callback identity is carried by the
// *Handle pointer instead: two handles are the same callback exactly when
// the pointers are equal. SameValue and Identical both compare handles that
// way.
type Handle[F any] struct {
	id uint64
	fn F
}

// NewHandle wraps fn in a fresh handle. Every call returns a new identity,
// which is what an un-memoised callback looks like to its consumers.
func NewHandle[F any](fn F) *Handle[F] {
	return &Handle[F]{
		id: atomic.AddUint64(&handleIDCounter, 1),
		fn: fn,
	}
}

// Fn returns the wrapped function.
func (h *Handle[F]) Fn() F {
	return h.fn
}

// ID returns a unique, monotonically increasing identifier.
func (h *Handle[F]) ID() uint64 {
	return h.id
}

// Callback preserves callback identity across evaluations: while the
// dependency key matches, Get returns the same *Handle.
type Callback[F any] struct {
	cache *Cache[*Handle[F]]
}

// NewCallback creates a Callback.
func NewCallback[F any](opts ...Option) *Callback[F] {
	opts = append([]Option{WithName("callback")}, opts...)
	return &Callback[F]{cache: NewCache[*Handle[F]](opts...)}
}

// Get returns the stored handle when deps match the previous key, and
// otherwise wraps fn in a new handle. On a match fn is discarded, so the
// returned handle keeps the function captured when deps last changed.
func (c *Callback[F]) Get(deps Deps, fn F) *Handle[F] {
	return c.cache.GetOrCompute(deps, func() *Handle[F] {
		return NewHandle(fn)
	})
}

// Stats returns hit and miss counts.
func (c *Callback[F]) Stats() Stats {
	return c.cache.Stats()
}
