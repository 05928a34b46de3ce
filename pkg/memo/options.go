package memo

import (
	"log/slog"
	"time"
)

// Observer is notified about every evaluation of a cache, callback or
// component. It replaces console logging as the way to see how often a
// producer actually runs.
type Observer interface {
	// OnHit is called when a cached result is reused.
	OnHit(name string)

	// OnMiss is called after the producer ran, with its duration.
	OnMiss(name string, took time.Duration)
}

// Observers fans out to several observers. Nil entries are skipped.
func Observers(obs ...Observer) Observer {
	filtered := make(multiObserver, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	return filtered
}

type multiObserver []Observer

func (m multiObserver) OnHit(name string) {
	for _, o := range m {
		o.OnHit(name)
	}
}

func (m multiObserver) OnMiss(name string, took time.Duration) {
	for _, o := range m {
		o.OnMiss(name, took)
	}
}

// Stats counts evaluations.
type Stats struct {
	Hits   uint64
	Misses uint64
}

// Option configures a Cache, Callback or Component.
type Option func(*config)

type config struct {
	name       string
	comparator *Comparator
	observer   Observer
	logger     *slog.Logger

	// Component only.
	fieldEqual map[string]Equaler
	propsEqual any
}

func newConfig(defaultName string, opts []Option) config {
	cfg := config{
		name:       defaultName,
		comparator: DefaultComparator,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return cfg
}

// WithName sets the name reported to observers and logs.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithComparator sets the dependency comparator.
func WithComparator(cmp *Comparator) Option {
	return func(c *config) {
		if cmp != nil {
			c.comparator = cmp
		}
	}
}

// WithObserver sets the evaluation observer.
func WithObserver(obs Observer) Option {
	return func(c *config) {
		c.observer = obs
	}
}

// WithLogger sets the logger used for misuse warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithFieldEqual sets the Equaler for one props field of a Component,
// exported or unexported. Other fields use the comparator's default rule.
func WithFieldEqual(field string, eq Equaler) Option {
	return func(c *config) {
		if c.fieldEqual == nil {
			c.fieldEqual = make(map[string]Equaler)
		}
		c.fieldEqual[field] = eq
	}
}

// WithPropsEqual replaces shallow props comparison for a Component with fn.
// P must match the component's props type.
func WithPropsEqual[P any](fn func(prev, next P) bool) Option {
	return func(c *config) {
		c.propsEqual = fn
	}
}
