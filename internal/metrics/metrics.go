// Package metrics exposes Prometheus instrumentation for the HTTP surface
// and the propagation pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satalt_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "satalt_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	propagationDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "satalt_propagation_duration_seconds",
			Help:    "Wall time spent propagating one request's sample grid.",
			Buckets: prometheus.DefBuckets,
		},
	)

	propagatedInstantsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "satalt_propagated_instants_total",
			Help: "Total number of sample instants propagated successfully.",
		},
	)

	propagationFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "satalt_propagation_failures_total",
			Help: "Total number of altitude series aborted by a propagation failure.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(propagationDurationSeconds)
	prometheus.MustRegister(propagatedInstantsTotal)
	prometheus.MustRegister(propagationFailuresTotal)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordPropagation records one successfully propagated grid.
func RecordPropagation(d time.Duration, instants int) {
	propagationDurationSeconds.Observe(d.Seconds())
	propagatedInstantsTotal.Add(float64(instants))
}

// RecordPropagationFailure counts an aborted altitude series.
func RecordPropagationFailure() {
	propagationFailuresTotal.Inc()
}

// knownRoutes are the only path labels ever emitted; everything else
// collapses to "other" to keep label cardinality bounded against scanners.
var knownRoutes = map[string]bool{
	"/altitude": true,
	"/health":   true,
	"/metrics":  true,
}

func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		route := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}
