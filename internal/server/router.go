package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/intentgraph/pkg/session"
)

// NewRouter creates a chi router with all API routes mounted. When gatherer
// is non-nil its metrics are served at GET /metrics.
func NewRouter(s *session.Session, gatherer prometheus.Gatherer, logger *log.Logger) chi.Router {
	if logger == nil {
		logger = log.Default()
	}
	h := NewHandler(s, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/graph", h.GetGraph)
		r.Get("/layout", h.GetLayout)
		r.Get("/tree", h.GetTree)

		r.Post("/drags", h.BeginDrag)
		r.Post("/drags/{id}/move", h.MoveDrag)
		r.Post("/drags/{id}/end", h.EndDrag)
		r.Delete("/drags/{id}", h.CancelDrag)

		r.Post("/operations", h.ApplyOperation)
		r.Post("/intents", h.AddIntent)
		r.Patch("/nodes/{id}", h.PatchNode)
		r.Delete("/nodes/{id}", h.DeleteNode)
		r.Post("/reextract", h.Reextract)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	})
	return r
}

// requestLogger logs one line per request at debug level, and at warn for
// server errors.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			fields := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			}
			if ww.Status() >= http.StatusInternalServerError {
				logger.Warn("request failed", fields...)
				return
			}
			logger.Debug("request", fields...)
		})
	}
}
