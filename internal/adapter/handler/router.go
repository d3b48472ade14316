package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/rl1809/order-lifecycle/internal/metrics"
)

// NewRouter mounts the order API under /api/v1 plus health and, when m is
// non-nil, the Prometheus endpoint.
func NewRouter(h *HTTPHandler, m *metrics.ServerMetrics, logger *zap.Logger, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	if requestTimeout > 0 {
		r.Use(middleware.Timeout(requestTimeout))
	}
	if m != nil {
		r.Use(m.Middleware)
		r.Handle("/metrics", m.Handler())
	}

	r.Get("/health", h.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.CreateOrder)
			r.Get("/{order_id}", h.GetOrder)
			r.Post("/{order_id}/confirm", h.ConfirmOrder)
			r.Post("/{order_id}/cancel", h.CancelOrder)
		})
	})

	return r
}
