package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// routeUnmatched labels requests chi could not route, so scanners probing
// random paths share one series.
const routeUnmatched = "unmatched"

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "route", "connector", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
			// Upper buckets cover the default 30s connector timeout.
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"service", "method", "route", "connector"},
	)

	httpResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response body size in bytes",
			Buckets: prometheus.ExponentialBuckets(64, 4, 6),
		},
		[]string{"service", "route"},
	)

	httpRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
		[]string{"service"},
	)
)

// PrometheusMetrics records request count, latency, response size and
// in-flight requests. Series are labelled by chi route pattern and by the
// {connector} URL parameter, never by raw path.
func PrometheusMetrics(serviceName string) func(next http.Handler) http.Handler {
	inFlight := httpRequestsInFlight.WithLabelValues(serviceName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			inFlight.Inc()
			defer inFlight.Dec()

			rw := newStatusRecorder(w)
			next.ServeHTTP(rw, r)

			route := routePattern(r)
			if route == "" {
				route = routeUnmatched
			}
			// Unknown connectors answer 404; leaving them unlabelled keeps the
			// series bounded by the registry.
			connector := chi.URLParam(r, "connector")
			if rw.statusCode == http.StatusNotFound {
				connector = ""
			}

			httpRequestsTotal.WithLabelValues(serviceName, r.Method, route, connector, strconv.Itoa(rw.statusCode)).Inc()
			httpRequestDuration.WithLabelValues(serviceName, r.Method, route, connector).Observe(time.Since(start).Seconds())
			httpResponseSize.WithLabelValues(serviceName, route).Observe(float64(rw.bytes))
		})
	}
}
