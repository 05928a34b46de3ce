package telemetry

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vango-dev/memolab/internal/demo"
	"github.com/vango-dev/memolab/pkg/memo"
	"github.com/vango-dev/memolab/pkg/scope"
)

var _ memo.Observer = (*Metrics)(nil)

func TestMetricsObserveCache(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg))

	cache := memo.NewCache[int](memo.WithName("expensiveValue"), memo.WithObserver(m))
	cache.GetOrCompute(memo.Deps{1}, func() int { return 1 })
	cache.GetOrCompute(memo.Deps{1}, func() int { return 1 })
	cache.GetOrCompute(memo.Deps{2}, func() int { return 2 })

	if got := testutil.ToFloat64(m.cacheMisses.WithLabelValues("expensiveValue")); got != 2 {
		t.Fatalf("cache_misses_total=%v, want 2", got)
	}
	if got := testutil.ToFloat64(m.cacheHits.WithLabelValues("expensiveValue")); got != 1 {
		t.Fatalf("cache_hits_total=%v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.computeDuration); n != 1 {
		t.Fatalf("expected one compute_duration_seconds series, got %d", n)
	}
}

func TestMetricsObserveAction(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("lab"))

	m.ObserveAction("/state/useState", "increment", time.Millisecond, nil)
	m.ObserveAction("/state/context-api", "increment", time.Millisecond,
		fmt.Errorf("wrapped: %w", scope.ErrScopeViolation))
	m.ObserveAction("/state/useState", "explode", time.Millisecond, demo.ErrUnknownAction)

	if got := testutil.ToFloat64(m.actionsTotal.WithLabelValues("/state/useState", "increment", "success")); got != 1 {
		t.Fatalf("actions_total(success)=%v, want 1", got)
	}
	if got := testutil.ToFloat64(m.actionErrors.WithLabelValues("/state/context-api", "scope_violation")); got != 1 {
		t.Fatalf("action_errors_total(scope_violation)=%v, want 1", got)
	}
	if got := testutil.ToFloat64(m.actionErrors.WithLabelValues("/state/useState", "unknown_action")); got != 1 {
		t.Fatalf("action_errors_total(unknown_action)=%v, want 1", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "lab_actions_total" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected metrics under the configured namespace")
	}
}

func TestMetricsWebSocketAndAtoms(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))

	m.ClientConnected()
	m.ClientConnected()
	m.ClientDisconnected()
	m.RecordWebSocketError("write")
	m.RecordAtomWrite("counterAtom")
	m.RecordAtomWrite("counterAtom")

	if got := testutil.ToFloat64(m.wsClients); got != 1 {
		t.Fatalf("websocket_clients=%v, want 1", got)
	}
	if got := testutil.ToFloat64(m.wsErrors.WithLabelValues("write")); got != 1 {
		t.Fatalf("websocket_errors_total=%v, want 1", got)
	}
	if got := testutil.ToFloat64(m.atomWrites.WithLabelValues("counterAtom")); got != 2 {
		t.Fatalf("atom_writes_total=%v, want 2", got)
	}
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{demo.ErrClosed, "scope_violation"},
		{&scope.ScopeError{Accessor: "CounterContext"}, "scope_violation"},
		{demo.ErrUnknownPage, "unknown_page"},
		{demo.ErrInvalidArgument, "invalid_argument"},
		{errors.New("boom"), "internal"},
	}
	for _, tt := range tests {
		if got := categorizeError(tt.err); got != tt.want {
			t.Errorf("categorizeError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestMetricsWithLab(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))
	lab, err := demo.New(demo.WithObserver(m), demo.WithIterations(10))
	if err != nil {
		t.Fatal(err)
	}
	defer lab.Close()

	for _, step := range []struct{ action, arg string }{
		{"select", "memo"},
		{"increment", ""},
		{"increment", ""},
	} {
		if _, err := lab.Dispatch("/optimisation/memo", step.action, step.arg); err != nil {
			t.Fatal(err)
		}
	}

	if got := testutil.ToFloat64(m.cacheHits.WithLabelValues("MemoComponent")); got != 2 {
		t.Fatalf("cache_hits_total(MemoComponent)=%v, want 2", got)
	}
}
