package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/EcommerceGo/pkg/logger"
)

// Tracing starts a server span per request, continuing any W3C trace context
// sent by the caller and echoing it on the response. Once routing is done the
// span is renamed to the chi route pattern and tagged with the connector,
// merchant and correlation ID.
func Tracing(serviceName string) func(http.Handler) http.Handler {
	tracer := otel.Tracer("github.com/utafrali/EcommerceGo/services/" + serviceName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			propagator := otel.GetTextMapPropagator()
			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPMethod(r.Method),
					semconv.HTTPTarget(r.URL.RequestURI()),
					semconv.HTTPScheme(scheme(r)),
					semconv.UserAgentOriginal(r.UserAgent()),
					attribute.String("http.client_ip", r.RemoteAddr),
				),
			)
			defer span.End()

			if id := logger.CorrelationIDFromContext(ctx); id != "" {
				span.SetAttributes(attribute.String("correlation_id", id))
			}
			if merchant := r.Header.Get(MerchantIDHeader); merchant != "" {
				span.SetAttributes(attribute.String("payment.merchant_id", merchant))
			}

			propagator.Inject(ctx, propagation.HeaderCarrier(w.Header()))

			rw := newStatusRecorder(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			if pattern := routePattern(r); pattern != "" {
				span.SetName(r.Method + " " + pattern)
				span.SetAttributes(attribute.String("http.route", pattern))
			}
			if connector := chi.URLParam(r, "connector"); connector != "" {
				span.SetAttributes(attribute.String("payment.connector", connector))
			}
			span.SetAttributes(semconv.HTTPStatusCode(rw.statusCode))
			if rw.statusCode >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(rw.statusCode))
			}
		})
	}
}

// routePattern returns the matched chi pattern, or "" before routing or when
// nothing matched.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

// scheme returns the request scheme, honouring X-Forwarded-Proto behind a proxy.
func scheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	return "http"
}
