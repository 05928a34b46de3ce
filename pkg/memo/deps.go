package memo

// Deps is a dependency key: the ordered inputs whose equality, not value
// computation, governs whether a cached result may be reused.
//
// A call site must pass the same number of elements every time.
type Deps []any

// Result is the outcome of comparing two dependency keys.
type Result uint8

const (
	// Mismatch means at least one element differs; the producer must run.
	Mismatch Result = iota
	// Match means every element compares equal; the cached result is fresh.
	Match
)

// String returns a human-readable name for the result.
func (r Result) String() string {
	switch r {
	case Match:
		return "match"
	case Mismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}

// Comparator compares dependency keys element by element. Each position
// uses its own Equaler if one was configured, otherwise the default.
type Comparator struct {
	def       Equaler
	positions map[int]Equaler
}

// ComparatorOption configures a Comparator.
type ComparatorOption func(*Comparator)

// WithDefault sets the Equaler used for positions without an override.
func WithDefault(eq Equaler) ComparatorOption {
	return func(c *Comparator) {
		c.def = eq
	}
}

// WithPosition sets the Equaler for one key position.
func WithPosition(i int, eq Equaler) ComparatorOption {
	return func(c *Comparator) {
		if c.positions == nil {
			c.positions = make(map[int]Equaler)
		}
		c.positions[i] = eq
	}
}

// NewComparator creates a Comparator. Without options every position uses
// SameValue.
func NewComparator(opts ...ComparatorOption) *Comparator {
	c := &Comparator{def: SameValue}
	for _, opt := range opts {
		opt(c)
	}
	if c.def == nil {
		c.def = SameValue
	}
	return c
}

// DefaultComparator compares every position with SameValue.
var DefaultComparator = NewComparator()

// Compare returns Match when prev and next have the same length and every
// position compares equal. A length change is reported as Mismatch.
func (c *Comparator) Compare(prev, next Deps) Result {
	if len(prev) != len(next) {
		return Mismatch
	}
	for i := range next {
		if !c.equalerFor(i)(prev[i], next[i]) {
			return Mismatch
		}
	}
	return Match
}

func (c *Comparator) equalerFor(i int) Equaler {
	if eq, ok := c.positions[i]; ok && eq != nil {
		return eq
	}
	return c.def
}
