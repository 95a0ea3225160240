// Package server exposes the roster over HTTP.
//
// Routes:
//
//	GET  /healthz
//	GET  /metrics
//	GET  /v1/graphs
//	GET  /v1/graphs/{id}/snapshot
//	GET  /v1/graphs/{id}/render.{format}
//	POST /v1/graphs/{id}/captures
//	GET  /v1/graphs/{id}/captures
//	GET  /v1/captures/{captureID}
//
// Every request inspects the live graph afresh; rendered artifacts are
// served through a [pipeline.Runner] so unchanged graphs render once.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/blendview/pkg/buildinfo"
	"github.com/matzehuels/blendview/pkg/errors"
	"github.com/matzehuels/blendview/pkg/inspect"
	"github.com/matzehuels/blendview/pkg/pipeline"
	"github.com/matzehuels/blendview/pkg/render"
	"github.com/matzehuels/blendview/pkg/store"
)

// Server serves one inspector.
type Server struct {
	inspector *inspect.Inspector
	runner    *pipeline.Runner
	store     store.Store
	defaults  render.Options
	metrics   http.Handler
	logger    *log.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics replaces the /metrics handler.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithRenderDefaults sets the overlay options used when a request does not
// override them.
func WithRenderDefaults(o render.Options) Option {
	return func(s *Server) { s.defaults = o }
}

// New creates a server. A nil runner renders without caching and a nil
// store keeps captures in memory.
func New(in *inspect.Inspector, runner *pipeline.Runner, st store.Store, opts ...Option) *Server {
	s := &Server{
		inspector: in,
		runner:    runner,
		store:     st,
		defaults:  render.DefaultOptions(),
		metrics:   promhttp.Handler(),
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, s.logger)
	}
	if s.store == nil {
		s.store = store.NewMemory()
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/healthz", s.health)
	r.Handle("/metrics", s.metrics)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/graphs", s.listGraphs)
		r.Route("/graphs/{id}", func(r chi.Router) {
			r.Get("/snapshot", s.snapshot)
			r.Get("/render.{format}", s.render)
			r.Post("/captures", s.capture)
			r.Get("/captures", s.listCaptures)
		})
		r.Get("/captures/{captureID}", s.getCapture)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdown)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
		"graphs": s.inspector.Roster().Len(),
	})
}

func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", chimiddleware.GetReqID(r.Context()))
		})
	}
}

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorBody{Code: code, Message: errors.UserMessage(err)})
}

func statusFor(code errors.Code) int {
	if code.Inspection() {
		return http.StatusConflict
	}
	switch code {
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidSettings,
		errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
