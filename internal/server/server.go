// Package server exposes the evaluator over HTTP: the evaluate endpoint,
// health and readiness probes, Prometheus metrics and the live result feed.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/prop-evaluator/internal/access"
	"github.com/yourusername/prop-evaluator/internal/logger"
	"github.com/yourusername/prop-evaluator/internal/metrics"
	"github.com/yourusername/prop-evaluator/internal/models"
	"github.com/yourusername/prop-evaluator/internal/tracing"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Evaluator is the core the server fronts.
type Evaluator interface {
	Evaluate(ctx context.Context, req models.EvaluationRequest) *models.EvaluationResult
}

// DatabasePinger defines the interface for checking database connectivity.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// Config holds the configuration for the HTTP server.
type Config struct {
	ServiceName    string
	Version        string
	Port           int
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MetricsPath    string
	RequestTimeout time.Duration
}

// Deps are the collaborators the server routes to. Stream, DB and Tracer
// are optional.
type Deps struct {
	Evaluator Evaluator
	Quota     access.QuotaChecker
	Stream    http.Handler
	DB        DatabasePinger
	Tracer    *tracing.Tracer
	Logger    *logrus.Logger
}

// Server is the HTTP entry point.
type Server struct {
	cfg    Config
	deps   Deps
	logger *logrus.Entry
	audit  *logger.AuditLogger
	server *http.Server

	mu    sync.RWMutex
	ready bool
}

// New creates a server. A nil quota checker allows every request.
func New(cfg Config, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = logger.Discard()
	}
	if deps.Quota == nil {
		deps.Quota = access.AllowAll{}
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	return &Server{
		cfg:    cfg,
		deps:   deps,
		logger: deps.Logger.WithField("component", "server"),
		audit:  logger.NewAuditLogger(deps.Logger),
	}
}

// SetReady marks the server as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady returns whether the server is ready.
func (s *Server) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(s.deps.Tracer.Middleware)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization", HeaderSubjectID, HeaderSubjectTier},
		ExposedHeaders: []string{HeaderQuotaRemaining},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Method(http.MethodGet, s.cfg.MetricsPath, metrics.Handler())
	if s.deps.Stream != nil {
		r.Method(http.MethodGet, "/ws/evaluations", s.deps.Stream)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(subjectContext)
		r.Use(s.quota)
		r.With(middleware.Timeout(s.cfg.RequestTimeout)).Post("/evaluate", s.handleEvaluate)
	})

	return r
}

// Start starts the server in the background and shuts it down when ctx ends.
func (s *Server) Start(ctx context.Context) error {
	if s.deps.Evaluator == nil {
		return errors.New("server requires an evaluator")
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.WithFields(logrus.Fields{
			"port":    s.cfg.Port,
			"service": s.cfg.ServiceName,
		}).Info("HTTP server starting")

		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("HTTP server error")
		}
	}()

	go func() {
		<-ctx.Done()
		if err := s.Shutdown(); err != nil {
			s.logger.WithError(err).Warn("HTTP server shutdown error")
		}
	}()

	s.SetReady(true)
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}
	s.SetReady(false)
	s.logger.Info("HTTP server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
