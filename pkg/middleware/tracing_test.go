package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTestTracer installs an in-memory exporter as the global provider for
// the duration of the test.
func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})

	return exporter
}

// tracedRouter mounts a single connector route that replies with status.
func tracedRouter(status int) http.Handler {
	r := chi.NewRouter()
	r.Use(Tracing("payment"))
	r.Post("/api/v1/connectors/{connector}/payments/authorize", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	})
	return r
}

func serveAuthorize(t *testing.T, router http.Handler, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/connectors/bluesnap/payments/authorize", nil)
	for k, v := range header {
		for _, vv := range v {
			req.Header.Add(k, vv)
		}
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func spanAttr(span tracetest.SpanStub, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracing_SpanNamedByRoutePattern(t *testing.T) {
	exporter := setupTestTracer(t)

	rec := serveAuthorize(t, tracedRouter(http.StatusOK), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "POST /api/v1/connectors/{connector}/payments/authorize", spans[0].Name)

	connector, ok := spanAttr(spans[0], "payment.connector")
	require.True(t, ok)
	assert.Equal(t, "bluesnap", connector.AsString())
}

func TestTracing_StatusCodeAndSpanStatus(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantStatus codes.Code
	}{
		{"success", http.StatusOK, codes.Unset},
		{"declined attempt", http.StatusUnprocessableEntity, codes.Unset},
		{"provider unavailable", http.StatusServiceUnavailable, codes.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter := setupTestTracer(t)

			serveAuthorize(t, tracedRouter(tt.status), nil)

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			code, ok := spanAttr(spans[0], "http.status_code")
			require.True(t, ok)
			assert.Equal(t, int64(tt.status), code.AsInt64())
			assert.Equal(t, tt.wantStatus, spans[0].Status.Code)
		})
	}
}

func TestTracing_ContinuesInboundTrace(t *testing.T) {
	exporter := setupTestTracer(t)

	rec := serveAuthorize(t, tracedRouter(http.StatusOK), http.Header{
		"Traceparent": {"00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"},
	})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", spans[0].SpanContext.TraceID().String())
	assert.NotEmpty(t, rec.Header().Get("traceparent"))
}

func TestTracing_TagsMerchantAndCorrelation(t *testing.T) {
	exporter := setupTestTracer(t)

	r := chi.NewRouter()
	r.Use(RequestLogging(discardLogger()))
	r.Use(Tracing("payment"))
	r.Post("/api/v1/connectors/{connector}/payments/authorize", func(w http.ResponseWriter, _ *http.Request) {})

	serveAuthorize(t, r, http.Header{
		CorrelationIDHeader: {"corr-span"},
		MerchantIDHeader:    {"merchant-7"},
	})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	corr, ok := spanAttr(spans[0], "correlation_id")
	require.True(t, ok)
	assert.Equal(t, "corr-span", corr.AsString())
	merchant, ok := spanAttr(spans[0], "payment.merchant_id")
	require.True(t, ok)
	assert.Equal(t, "merchant-7", merchant.AsString())
}

func TestScheme(t *testing.T) {
	plain := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "http", scheme(plain))

	proxied := httptest.NewRequest(http.MethodGet, "/", nil)
	proxied.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https", scheme(proxied))
}
