// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "spendlens"

// ─── HTTP ───────────────────────────────────────────────────────────────────

// HTTPRequests counts served requests by route pattern and status.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "Total HTTP requests by method, route and status code.",
}, []string{"method", "route", "status"})

// HTTPDuration tracks request latency by route pattern.
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency in seconds.",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
}, []string{"method", "route"})

// RateLimited counts write requests rejected by the per-client limiter.
var RateLimited = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "rate_limited_total",
	Help:      "Total write requests rejected by the rate limiter.",
})

// ─── Query engine ───────────────────────────────────────────────────────────

// Queries counts transaction queries by sort key and cache outcome.
var Queries = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "query",
	Name:      "executions_total",
	Help:      "Total transaction queries by sort key and whether the cache answered.",
}, []string{"sort", "cache"})

// QueryResults observes how many records a query returned.
var QueryResults = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "query",
	Name:      "result_records",
	Help:      "Number of records returned per transaction query.",
	Buckets:   []float64{0, 1, 5, 10, 50, 100, 500, 1000},
})

// CacheEntries reports the live entries per named cache after each sweep.
var CacheEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "cache",
	Name:      "entries",
	Help:      "Entries held per cache, sampled after each expiry sweep.",
}, []string{"cache"})

// ─── Budgets ────────────────────────────────────────────────────────────────

// AlertsRaised counts alerts that appeared after a budget change, by tier.
var AlertsRaised = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "budget",
	Name:      "alerts_raised_total",
	Help:      "Total budget alerts newly raised, by tier.",
}, []string{"tier"})

// AlertsDismissed counts dismissals.
var AlertsDismissed = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "budget",
	Name:      "alerts_dismissed_total",
	Help:      "Total budget alerts dismissed.",
})

// AlertsNotified counts alerts delivered by the worker, by notifier and outcome.
var AlertsNotified = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "worker",
	Name:      "alerts_notified_total",
	Help:      "Total alert notifications by notifier and result.",
}, []string{"notifier", "result"})

// Instrument records HTTPRequests and HTTPDuration. Routes are labelled by
// their chi pattern so path parameters do not explode cardinality.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
