package telemetry

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/memolab/internal/demo"
	"github.com/vango-dev/memolab/pkg/scope"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "memolab").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "memolab",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics collects cache, action, atom and WebSocket metrics. It is a
// memo.Observer, so it can be attached to every cache a Lab creates.
//
// Metrics collected:
//   - memolab_cache_hits_total: reused results by cache name
//   - memolab_cache_misses_total: producer runs by cache name
//   - memolab_compute_duration_seconds: producer duration by cache name
//   - memolab_actions_total: page actions by page, action and status
//   - memolab_action_duration_seconds: page action duration by page
//   - memolab_action_errors_total: failed actions by page and error type
//   - memolab_atom_writes_total: store writes by atom
//   - memolab_websocket_clients: connected atom stream clients
//   - memolab_websocket_errors_total: WebSocket errors by type
type Metrics struct {
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	computeDuration *prometheus.HistogramVec
	actionsTotal    *prometheus.CounterVec
	actionDuration  *prometheus.HistogramVec
	actionErrors    *prometheus.CounterVec
	atomWrites      *prometheus.CounterVec
	wsClients       prometheus.Gauge
	wsErrors        *prometheus.CounterVec
}

// NewMetrics registers the metrics with the configured registry.
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	metrics := telemetry.NewMetrics(telemetry.WithRegistry(reg))
//	lab, err := demo.New(demo.WithObserver(metrics))
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		cacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cache_hits_total",
			Help:        "Total number of evaluations that reused a cached result",
			ConstLabels: config.ConstLabels,
		}, []string{"name"}),

		cacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cache_misses_total",
			Help:        "Total number of evaluations that ran the producer",
			ConstLabels: config.ConstLabels,
		}, []string{"name"}),

		computeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "compute_duration_seconds",
			Help:        "Producer duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"name"}),

		actionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "actions_total",
			Help:        "Total number of page actions dispatched",
			ConstLabels: config.ConstLabels,
		}, []string{"page", "action", "status"}),

		actionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "action_duration_seconds",
			Help:        "Page action duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"page"}),

		actionErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "action_errors_total",
			Help:        "Total number of failed page actions",
			ConstLabels: config.ConstLabels,
		}, []string{"page", "error_type"}),

		atomWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "atom_writes_total",
			Help:        "Total number of atom writes",
			ConstLabels: config.ConstLabels,
		}, []string{"atom"}),

		wsClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_clients",
			Help:        "Number of connected atom stream clients",
			ConstLabels: config.ConstLabels,
		}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_errors_total",
			Help:        "Total WebSocket errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// OnHit implements memo.Observer.
func (m *Metrics) OnHit(name string) {
	m.cacheHits.WithLabelValues(name).Inc()
}

// OnMiss implements memo.Observer.
func (m *Metrics) OnMiss(name string, took time.Duration) {
	m.cacheMisses.WithLabelValues(name).Inc()
	m.computeDuration.WithLabelValues(name).Observe(took.Seconds())
}

// ObserveAction records one dispatched page action.
func (m *Metrics) ObserveAction(page, action string, took time.Duration, err error) {
	m.actionDuration.WithLabelValues(page).Observe(took.Seconds())

	status := "success"
	if err != nil {
		status = "error"
		m.actionErrors.WithLabelValues(page, categorizeError(err)).Inc()
	}
	m.actionsTotal.WithLabelValues(page, action, status).Inc()
}

// RecordAtomWrite records a write to an atom.
func (m *Metrics) RecordAtomWrite(atom string) {
	m.atomWrites.WithLabelValues(atom).Inc()
}

// ClientConnected records a new atom stream client.
func (m *Metrics) ClientConnected() {
	m.wsClients.Inc()
}

// ClientDisconnected records a closed atom stream client.
func (m *Metrics) ClientDisconnected() {
	m.wsClients.Dec()
}

// RecordWebSocketError records a WebSocket error.
func (m *Metrics) RecordWebSocketError(errorType string) {
	m.wsErrors.WithLabelValues(errorType).Inc()
}

// categorizeError keeps error labels low-cardinality.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, scope.ErrScopeViolation):
		return "scope_violation"
	case errors.Is(err, demo.ErrUnknownPage):
		return "unknown_page"
	case errors.Is(err, demo.ErrUnknownAction):
		return "unknown_action"
	case errors.Is(err, demo.ErrInvalidArgument):
		return "invalid_argument"
	default:
		return "internal"
	}
}
