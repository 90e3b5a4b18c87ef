// Package httpapi implements KeywordScout's thin HTTP boundary
// (spec.md §6): health, optimizer trigger, pass-through experiment/feedback
// collaborators, cache stats, audit reports, and a websocket progress
// stream. Grounded on cryptorun/internal/interfaces/http/server.go's
// mux.Router + middleware-chain structure.
package httpapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/keywordscout/keywordscout/internal/logstore"
	"github.com/keywordscout/keywordscout/internal/niche"
	"github.com/keywordscout/keywordscout/internal/telemetry"
	"github.com/keywordscout/keywordscout/internal/tune"
)

// ServerConfig holds listener and timeout settings.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig mirrors the teacher's local-only-by-default posture,
// reading KEYWORDSCOUT_HTTP_PORT the way cryptorun reads HTTP_PORT.
func DefaultServerConfig() ServerConfig {
	port := 8088
	if portStr := os.Getenv("KEYWORDSCOUT_HTTP_PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}
	return ServerConfig{
		Host:         "127.0.0.1",
		Port:         port,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second, // websocket upgrades hold this open
		IdleTimeout:  60 * time.Second,
	}
}

// Server is KeywordScout's HTTP boundary.
type Server struct {
	router *mux.Router
	server *http.Server
	config ServerConfig

	optimizer   *tune.Optimizer
	logger      *logstore.Logger
	cache       *niche.Cache
	experiments ExperimentRunner
	feedback    FeedbackIntake
	auditor     AuditReporter
	hub         *Hub
	metrics     *telemetry.Registry
}

// Dependencies bundles every collaborator Server's handlers may call.
// Any field may be nil. A nil Optimizer, Logger, Experiments or Feedback
// makes the endpoints that use it answer 503; a nil Cache reports zero
// stats, a nil Hub is replaced by a fresh one, a nil Metrics skips
// instrumentation, and a nil Auditor leaves the report unannotated.
type Dependencies struct {
	Optimizer   *tune.Optimizer
	Logger      *logstore.Logger
	Cache       *niche.Cache
	Experiments ExperimentRunner
	Feedback    FeedbackIntake
	Auditor     AuditReporter
	Hub         *Hub
	Metrics     *telemetry.Registry
}

// NewServer constructs a Server bound to config, probing port
// availability up front the way the teacher's NewServer does.
func NewServer(config ServerConfig, deps Dependencies) (*Server, error) {
	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("port %d is busy or unavailable: %w", config.Port, err)
	}
	listener.Close()

	hub := deps.Hub
	if hub == nil {
		hub = NewHub()
	}

	s := &Server{
		router:      mux.NewRouter(),
		config:      config,
		optimizer:   deps.Optimizer,
		logger:      deps.Logger,
		cache:       deps.Cache,
		experiments: deps.Experiments,
		feedback:    deps.Feedback,
		auditor:     deps.Auditor,
		hub:         hub,
		metrics:     deps.Metrics,
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
	return s, nil
}

// Hub exposes the progress broadcaster so an Orchestrator's ProgressFunc
// can feed it directly.
func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.requestLoggingMiddleware)
	s.router.Use(s.timeoutMiddleware)
	s.router.Use(s.corsMiddleware)

	api := s.router.PathPrefix("/").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/optimize", s.handleOptimize).Methods(http.MethodPost)
	api.HandleFunc("/experiments", s.handleExperiments).Methods(http.MethodPost)
	api.HandleFunc("/monitoring/dashboard", s.handleMonitoringDashboard).Methods(http.MethodGet)
	api.HandleFunc("/monitoring/stream", s.handleMonitoringStream).Methods(http.MethodGet)
	api.HandleFunc("/cache/stats", s.handleCacheStats).Methods(http.MethodGet)
	api.HandleFunc("/feedback", s.handleFeedback).Methods(http.MethodPost)
	api.HandleFunc("/audit/report", s.handleAuditReport).Methods(http.MethodGet)

	s.router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
}

type requestIDKey struct{}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()[:8]
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		log.Info().
			Str("request_id", fmt.Sprint(r.Context().Value(requestIDKey{}))).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}

// timeoutMiddleware does not apply to the websocket stream route, which
// needs to stay open for the connection's lifetime.
func (s *Server) timeoutMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/monitoring/stream") {
			next.ServeHTTP(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1") {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start blocks serving HTTP until the server is shut down or fails.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("starting keywordscout http server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("shutting down keywordscout http server")
	return s.server.Shutdown(ctx)
}

// Address returns the bound host:port.
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
