package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/memolab/internal/config"
	"github.com/vango-dev/memolab/internal/demo"
	"github.com/vango-dev/memolab/internal/server"
	"github.com/vango-dev/memolab/internal/telemetry"
)

func serveCmd(a *app) *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the lab over HTTP",
		Long: `Serve the lab's pages over a JSON API, with a WebSocket stream of
atom writes and Prometheus metrics.

Examples:
  memolab serve
  memolab serve --port=8080
  memolab serve --host=0.0.0.0 --log-level=debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port > 0 {
				a.cfg.Server.Port = port
			}
			if host != "" {
				a.cfg.Server.Host = host
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")

	return cmd
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg

	var (
		metrics  *telemetry.Metrics
		registry *prometheus.Registry
	)
	labOpts := a.labOptions()
	if cfg.MetricsEnabled() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics = telemetry.NewMetrics(metricsOptions(cfg.Metrics, registry)...)
		labOpts = append(labOpts, demo.WithObserver(metrics))
	}

	lab, err := demo.New(labOpts...)
	if err != nil {
		return err
	}
	defer lab.Close()

	srvConfig := server.Config{
		Lab:            lab,
		Logger:         a.logger,
		Metrics:        metrics,
		Tracer:         telemetry.NewTracer(telemetry.WithTracerName(cfg.Tracing.TracerName)),
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}
	if registry != nil {
		srvConfig.Gatherer = registry
	}
	srv, err := server.New(srvConfig)
	if err != nil {
		return err
	}

	a.printBanner()
	a.success("Serving %d pages on %s", len(lab.Pages()), cfg.URL())
	a.info("API:     %s/api/pages", cfg.URL())
	a.info("Atoms:   ws://%s/ws/atoms", cfg.Address())
	if metrics != nil {
		a.info("Metrics: %s/metrics", cfg.URL())
	}

	return srv.Run(ctx, cfg.Address())
}

// labOptions builds the Lab options set by the demo section of the config.
func (a *app) labOptions() []demo.Option {
	return []demo.Option{
		demo.WithLogger(a.logger),
		demo.WithIterations(a.cfg.Demo.ExpensiveIterations),
		demo.WithLogCapacity(a.cfg.Demo.EventLogCapacity),
	}
}

// metricsOptions maps the metrics section of the config to telemetry
// options registering with registry.
func metricsOptions(cfg config.MetricsConfig, registry prometheus.Registerer) []telemetry.MetricsOption {
	opts := []telemetry.MetricsOption{
		telemetry.WithNamespace(cfg.Namespace),
		telemetry.WithSubsystem(cfg.Subsystem),
		telemetry.WithRegistry(registry),
	}
	if len(cfg.ConstLabels) > 0 {
		opts = append(opts, telemetry.WithConstLabels(prometheus.Labels(cfg.ConstLabels)))
	}
	if len(cfg.Buckets) > 0 {
		opts = append(opts, telemetry.WithBuckets(cfg.Buckets))
	}
	return opts
}
