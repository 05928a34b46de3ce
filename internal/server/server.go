package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/memolab/internal/demo"
	"github.com/vango-dev/memolab/internal/telemetry"
	"github.com/vango-dev/memolab/pkg/store"
)

// DefaultShutdownTimeout bounds a graceful shutdown.
const DefaultShutdownTimeout = 10 * time.Second

// Config configures a Server.
type Config struct {
	// Lab is the lab the API drives. Required.
	Lab *demo.Lab

	// Logger is used for access and error logs. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics records actions and stream clients. Nil disables metrics.
	Metrics *telemetry.Metrics

	// Gatherer is exposed at /metrics. Defaults to
	// prometheus.DefaultGatherer when Metrics is set.
	Gatherer prometheus.Gatherer

	// Tracer traces requests and page actions. Defaults to a tracer on
	// the global provider.
	Tracer *telemetry.Tracer

	// AllowedOrigins lists origins allowed to open the atom stream.
	AllowedOrigins []string

	// ShutdownTimeout bounds a graceful shutdown.
	ShutdownTimeout time.Duration
}

// Server is the HTTP surface of a Lab.
type Server struct {
	config  Config
	lab     *demo.Lab
	logger  *slog.Logger
	metrics *telemetry.Metrics
	tracer  *telemetry.Tracer
	hub     *Hub
	router  chi.Router

	unwatch func()
}

// New creates a Server and starts streaming the lab's atom writes.
func New(config Config) (*Server, error) {
	if config.Lab == nil {
		return nil, errors.New("memolab: server needs a lab")
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Tracer == nil {
		config.Tracer = telemetry.NewTracer()
	}
	if config.Metrics != nil && config.Gatherer == nil {
		config.Gatherer = prometheus.DefaultGatherer
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = DefaultShutdownTimeout
	}

	s := &Server{
		config:  config,
		lab:     config.Lab,
		logger:  config.Logger,
		metrics: config.Metrics,
		tracer:  config.Tracer,
		hub:     NewHub(config.AllowedOrigins, config.Metrics, config.Logger),
	}

	unwatch, err := s.lab.Store().OnChange(s.onChange)
	if err != nil {
		return nil, err
	}
	s.unwatch = unwatch
	s.router = s.routes()

	return s, nil
}

func (s *Server) onChange(change store.Change) {
	if s.metrics != nil {
		s.metrics.RecordAtomWrite(change.Atom)
	}
	s.hub.Notify(change)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(accessLog(s.logger))
	r.Use(s.tracer.Middleware)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/pages", func(r chi.Router) {
		r.Get("/", s.handleCatalog)
		r.Route("/{section}/{page}", func(r chi.Router) {
			r.Get("/", s.handleView)
			r.Post("/actions/{action}", s.handleAction)
			r.Get("/events", s.handleEvents)
		})
	})

	if s.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/ws/atoms", s.hub.HandleWebSocket)

	return r
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the atom stream hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Close stops streaming atom writes and disconnects stream clients.
func (s *Server) Close() {
	if s.unwatch != nil {
		s.unwatch()
	}
	s.hub.Close()
}

// Run listens on addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("serving", "addr", ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		// Stream connections are hijacked and not tracked by Shutdown.
		s.Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.logger.Info("server stopped")
		return nil
	})

	return g.Wait()
}

// accessLog logs one line per request.
func accessLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelDebug
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(r.Context(), level, "request",
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("took", time.Since(start)),
			)
		})
	}
}
