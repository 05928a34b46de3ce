// Package telemetry provides the Prometheus metrics and OpenTelemetry
// tracing of memolab.
//
// # Prometheus Metrics
//
// Metrics implements memo.Observer, so attaching it to a Lab counts every
// cache hit and miss alongside page actions and atom writes:
//
//	metrics := telemetry.NewMetrics(
//	    telemetry.WithNamespace("memolab"),
//	    telemetry.WithRegistry(reg),
//	)
//	lab, err := demo.New(demo.WithObserver(metrics))
//
// # OpenTelemetry Tracing
//
// Tracer wraps page actions in spans and provides an HTTP middleware that
// starts a server span per request:
//
//	tracer := telemetry.NewTracer(telemetry.WithTracerName("memolab"))
//	r.Use(tracer.Middleware)
//	err := tracer.TraceAction(ctx, path, "increment", "", run)
package telemetry
