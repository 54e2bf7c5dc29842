package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus metrics of the tracker and its HTTP API
type Metrics struct {
	// Registry owns these metrics; /metrics serves it
	Registry *prometheus.Registry

	httpDuration     *prometheus.HistogramVec
	operations       *prometheus.CounterVec
	adjustmentFactor prometheus.Gauge
	adjustmentCount  prometheus.Gauge
	excluded         prometheus.Counter
}

// NewMetrics creates a dedicated registry and registers all metrics in it.
// A private registry lets tests call NewMetrics repeatedly.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aishcalc_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route and status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aishcalc_tracker_operations_total",
				Help: "Tracker operations by name and result.",
			},
			[]string{"operation", "result"},
		),
		adjustmentFactor: factory.NewGauge(prometheus.GaugeOpts{
			Name: "aishcalc_adjustment_factor",
			Help: "Current adjustment factor in dollars.",
		}),
		adjustmentCount: factory.NewGauge(prometheus.GaugeOpts{
			Name: "aishcalc_adjustment_entries",
			Help: "Number of payments used to derive the adjustment factor.",
		}),
		excluded: factory.NewCounter(prometheus.CounterOpts{
			Name: "aishcalc_adjustment_outliers_total",
			Help: "Payments excluded from the adjustment factor as outliers.",
		}),
	}
}

// RecordOperation counts a tracker operation. A nil receiver is a no-op.
func (m *Metrics) RecordOperation(operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.operations.WithLabelValues(operation, result).Inc()
}

// SetAdjustment publishes the current factor and entry count
func (m *Metrics) SetAdjustment(factor float64, count int) {
	if m == nil {
		return
	}
	m.adjustmentFactor.Set(factor)
	m.adjustmentCount.Set(float64(count))
}

// AddExcluded counts outlier payments skipped by a recompute
func (m *Metrics) AddExcluded(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.excluded.Add(float64(n))
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// HTTPMiddleware observes request durations labelled by chi route pattern.
// A nil receiver passes requests through untouched.
func (m *Metrics) HTTPMiddleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		m.httpDuration.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Observe(time.Since(start).Seconds())
	})
}
