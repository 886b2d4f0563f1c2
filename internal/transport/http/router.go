// Package httptransport assembles the chi router: platform middleware, the
// per-module handlers, the metrics endpoint, and the catch-all response.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"biokey/internal/platform/middleware"
)

// Registrar is implemented by every module handler.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter wires all public endpoints.
func NewRouter(logger *slog.Logger, handlers ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))

	for _, h := range handlers {
		h.Register(r)
	}

	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	return r
}

// notFound answers every unmatched route or method with the same plain text.
func notFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte("Error: Not Found"))
}
