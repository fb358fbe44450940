package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const authorizeRoute = "/api/v1/connectors/{connector}/payments/authorize"

// metricsRouter mounts the authorize route for service and replies with status.
func metricsRouter(service string, status int, body string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics(service))
	r.Post(authorizeRoute, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
	return r
}

func post(t *testing.T, h http.Handler, path string) int {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
	return rec.Code
}

// histogram reads the histogram child of vec selected by labels.
func histogram(t *testing.T, vec *prometheus.HistogramVec, labels ...string) *dto.Histogram {
	t.Helper()
	m := &dto.Metric{}
	obs, err := vec.GetMetricWithLabelValues(labels...)
	require.NoError(t, err)
	require.NoError(t, obs.(prometheus.Metric).Write(m))
	return m.GetHistogram()
}

func TestPrometheusMetrics_CountsByRouteAndConnector(t *testing.T) {
	router := metricsRouter("metrics-count", http.StatusOK, `{"data":{}}`)

	for range 3 {
		require.Equal(t, http.StatusOK, post(t, router, "/api/v1/connectors/bluesnap/payments/authorize"))
	}

	assert.Equal(t, float64(3), testutil.ToFloat64(
		httpRequestsTotal.WithLabelValues("metrics-count", http.MethodPost, authorizeRoute, "bluesnap", "200")))
	assert.Equal(t, uint64(3), histogram(t, httpRequestDuration, "metrics-count", http.MethodPost, authorizeRoute, "bluesnap").GetSampleCount())

	size := histogram(t, httpResponseSize, "metrics-count", authorizeRoute)
	assert.Equal(t, uint64(3), size.GetSampleCount())
	assert.Equal(t, float64(3*len(`{"data":{}}`)), size.GetSampleSum())
}

func TestPrometheusMetrics_StatusLabel(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"charged", http.StatusOK},
		{"declined", http.StatusUnprocessableEntity},
		{"provider down", http.StatusServiceUnavailable},
		{"refund unsupported", http.StatusNotImplemented},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := "metrics-status-" + tt.name
			post(t, metricsRouter(service, tt.status, ""), "/api/v1/connectors/bluesnap/payments/authorize")

			assert.Equal(t, float64(1), testutil.ToFloat64(
				httpRequestsTotal.WithLabelValues(service, http.MethodPost, authorizeRoute, "bluesnap", strconv.Itoa(tt.status))))
		})
	}
}

func TestPrometheusMetrics_UnknownConnectorUnlabelled(t *testing.T) {
	router := metricsRouter("metrics-unknown", http.StatusNotFound, "")

	post(t, router, "/api/v1/connectors/no-such-psp/payments/authorize")

	assert.Equal(t, float64(1), testutil.ToFloat64(
		httpRequestsTotal.WithLabelValues("metrics-unknown", http.MethodPost, authorizeRoute, "", "404")))
}

func TestPrometheusMetrics_UnmatchedRoute(t *testing.T) {
	router := metricsRouter("metrics-unmatched", http.StatusOK, "")

	require.Equal(t, http.StatusNotFound, post(t, router, "/wp-login.php"))

	assert.Equal(t, float64(1), testutil.ToFloat64(
		httpRequestsTotal.WithLabelValues("metrics-unmatched", http.MethodPost, routeUnmatched, "", "404")))
}

func TestPrometheusMetrics_InFlight(t *testing.T) {
	var during float64
	r := chi.NewRouter()
	r.Use(PrometheusMetrics("metrics-inflight"))
	r.Get("/slow", func(w http.ResponseWriter, _ *http.Request) {
		during = testutil.ToFloat64(httpRequestsInFlight.WithLabelValues("metrics-inflight"))
		w.WriteHeader(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/slow", nil))

	assert.Equal(t, float64(1), during)
	assert.Equal(t, float64(0), testutil.ToFloat64(httpRequestsInFlight.WithLabelValues("metrics-inflight")))
}
