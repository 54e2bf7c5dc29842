// Package api exposes the tracker over HTTP with a chi router
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rgehrsitz/aishcalc/internal/observability"
	"github.com/rgehrsitz/aishcalc/internal/tracker"
	"go.uber.org/zap"
)

// NewRouter creates the HTTP router with all routes and middleware
func NewRouter(svc *tracker.Service, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := NewHandler(svc, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(metrics.HTTPMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", h.Healthz)
	if metrics != nil {
		r.Handle("/metrics", metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/benefit", h.CalculateBenefit)
		r.Get("/periods/{year}/{month}", h.GetPeriod)
		r.Get("/thresholds", h.GetThresholds)
		r.Post("/compare", h.CompareIncomes)

		r.Route("/paydays", func(r chi.Router) {
			r.Get("/", h.ListPaydays)
			r.Post("/", h.AddPayday)
			r.Delete("/", h.ClearPaydays)
			r.Put("/{date}", h.UpdatePayday)
			r.Delete("/{date}", h.RemovePayday)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/", h.ListPayments)
			r.Post("/", h.RecordPayment)
			r.Delete("/", h.ClearPayments)
			r.Delete("/{date}", h.RemovePayment)
		})

		r.Route("/adjustment", func(r chi.Router) {
			r.Get("/", h.GetAdjustment)
			r.Put("/", h.SetAdjustment)
			r.Post("/recompute", h.Recompute)
			r.Get("/history", h.GetHistory)
		})

		r.Get("/export", h.Export)
		r.Post("/import", h.Import)
		r.Delete("/data", h.ClearAll)
	})

	return r
}
