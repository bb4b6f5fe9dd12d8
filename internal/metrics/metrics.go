// Package metrics exposes Prometheus collectors for HTTP traffic and
// composition lookups.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "nutrimenu",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nutrimenu",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nutrimenu",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	lookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nutrimenu",
			Subsystem: "lookup",
			Name:      "requests_total",
			Help:      "Entity lookups by entity, source and outcome.",
		},
		[]string{"entity", "source", "outcome"},
	)

	lookupDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nutrimenu",
			Subsystem: "lookup",
			Name:      "duration_seconds",
			Help:      "Duration of remote entity lookups.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"entity"},
	)

	placeholders = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "nutrimenu",
			Subsystem: "compose",
			Name:      "placeholder_dishes_total",
			Help:      "Missing dishes replaced by a placeholder during menu resolution.",
		},
	)

	danglingItems = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "nutrimenu",
			Subsystem: "compose",
			Name:      "dangling_items_total",
			Help:      "Item edges skipped because the item no longer exists.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		lookups,
		lookupDuration,
		placeholders,
		danglingItems,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

// RecordLookup counts one entity lookup. source is "local" or "remote";
// outcome is "ok", "not_found", "unavailable" or "error".
func RecordLookup(entity, source, outcome string) {
	lookups.WithLabelValues(entity, source, outcome).Inc()
}

// ObserveRemoteLookup records the latency of a remote lookup.
func ObserveRemoteLookup(entity string, d time.Duration) {
	lookupDuration.WithLabelValues(entity).Observe(d.Seconds())
}

func RecordPlaceholder() { placeholders.Inc() }

func RecordDanglingItem() { danglingItems.Inc() }

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// canonicalPath collapses numeric path segments so ids do not explode
// label cardinality: /api/menus/12/dishes/4 -> /api/menus/:id/dishes/:id.
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	for i, p := range parts {
		if _, err := strconv.ParseInt(p, 10, 64); err == nil {
			parts[i] = ":id"
		}
	}
	return "/" + strings.Join(parts, "/")
}
