package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/memolab/pkg/scope"
)

func newRecordingTracer(t *testing.T, opts ...TracingOption) (*Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return NewTracer(append([]TracingOption{WithTracerProvider(tp)}, opts...)...), sr
}

func hasAttr(attrs []attribute.KeyValue, key, value string) bool {
	for _, kv := range attrs {
		if string(kv.Key) == key && kv.Value.Emit() == value {
			return true
		}
	}
	return false
}

func TestTraceActionSuccess(t *testing.T) {
	tracer, sr := newRecordingTracer(t)

	called := false
	err := tracer.TraceAction(context.Background(), "/state/useState", "increment", "", func(ctx context.Context) error {
		called = true
		if !trace.SpanContextFromContext(ctx).IsValid() {
			t.Error("expected a valid span context inside the action")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("expected action to run")
	}

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name() != "memolab.action increment" {
		t.Errorf("unexpected span name %q", span.Name())
	}
	if span.Status().Code != codes.Ok {
		t.Errorf("expected Ok status, got %v", span.Status().Code)
	}
	if !hasAttr(span.Attributes(), "memolab.page", "/state/useState") {
		t.Errorf("missing page attribute: %v", span.Attributes())
	}
}

func TestTraceActionRecordsError(t *testing.T) {
	tracer, sr := newRecordingTracer(t)

	want := &scope.ScopeError{Accessor: "CounterContext", Owner: "CounterControls", Reason: "must be used within a provider"}
	err := tracer.TraceAction(context.Background(), "/state/context-api", "increment", "", func(context.Context) error {
		return want
	})
	if !errors.Is(err, scope.ErrScopeViolation) {
		t.Fatalf("expected the action error back, got %v", err)
	}

	span := sr.Ended()[0]
	if span.Status().Code != codes.Error {
		t.Errorf("expected Error status, got %v", span.Status().Code)
	}
	if !hasAttr(span.Attributes(), "memolab.error_type", "scope_violation") {
		t.Errorf("missing error type attribute: %v", span.Attributes())
	}
	if len(span.Events()) == 0 {
		t.Error("expected the error to be recorded as a span event")
	}
}

func TestMiddlewareStartsServerSpan(t *testing.T) {
	tracer, sr := newRecordingTracer(t, WithRequestFilter(func(r *http.Request) bool {
		return r.URL.Path != "/healthz"
	}))

	h := tracer.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	for _, path := range []string{"/api/pages", "/missing", "/healthz"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	spans := sr.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans (healthz filtered), got %d", len(spans))
	}
	if spans[0].Name() != "memolab GET /api/pages" {
		t.Errorf("unexpected span name %q", spans[0].Name())
	}
	if spans[0].SpanKind() != trace.SpanKindServer {
		t.Errorf("expected server span, got %v", spans[0].SpanKind())
	}

	found := false
	for _, kv := range spans[1].Attributes() {
		if kv.Key == "http.status_code" && kv.Value.AsInt64() == http.StatusNotFound {
			found = true
		}
	}
	if !found {
		t.Errorf("expected status code attribute 404: %v", spans[1].Attributes())
	}
}

func TestNewTracerDefaultsName(t *testing.T) {
	tracer := NewTracer(WithTracerName(""))
	if tracer.config.TracerName != defaultTracerName {
		t.Errorf("expected default tracer name, got %q", tracer.config.TracerName)
	}
}
