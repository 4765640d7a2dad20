// Package server exposes the pipeline, job queue and order store over HTTP, plus a
// gRPC health endpoint for orchestrators.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/joseph-ayodele/purchase-orders/internal/async"
	"github.com/joseph-ayodele/purchase-orders/internal/export"
	"github.com/joseph-ayodele/purchase-orders/internal/extract"
	"github.com/joseph-ayodele/purchase-orders/internal/orders"
	"github.com/joseph-ayodele/purchase-orders/internal/pipeline"
	"github.com/joseph-ayodele/purchase-orders/internal/repository"
)

// DocumentProcessor runs the pipeline on pages posted inline.
type DocumentProcessor interface {
	ProcessPages(ctx context.Context, name string, pages []extract.Page, persist bool) (*pipeline.Result, error)
}

// Deps are the collaborators the HTTP handlers call into.
type Deps struct {
	Processor DocumentProcessor
	Queue     async.Queue
	Orders    *orders.Service
	Export    *export.Service
	DB        *repository.DB
	// JobRoot, when set, confines queued job directories to this tree.
	JobRoot        string
	RequestTimeout time.Duration
}

type Server struct {
	deps   Deps
	logger *slog.Logger
}

func New(deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{deps: deps, logger: logger}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)
	if s.deps.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(s.deps.RequestTimeout))
	}

	r.Get("/healthz", s.Healthz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/documents", s.ProcessDocument)
		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", s.EnqueueJob)
			r.Get("/{id}", s.GetJob)
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", s.ListOrders)
			r.Get("/export", s.ExportOrders)
		})
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"request_id", chimiddleware.GetReqID(r.Context()),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
