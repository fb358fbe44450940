package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/EcommerceGo/pkg/health"
	"github.com/utafrali/EcommerceGo/pkg/middleware"
	"github.com/utafrali/EcommerceGo/services/payment/internal/service"
)

// NewRouter creates a chi router with all payment service routes registered.
func NewRouter(
	paymentService *service.PaymentService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	pprofCIDRs []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing("payment"))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics("payment"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	// Profiling endpoints, restricted to internal networks
	middleware.RegisterPprof(r, pprofCIDRs, logger)

	// Connector API endpoints
	paymentHandler := NewPaymentHandler(paymentService, logger)

	r.Route("/api/v1/connectors", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.NoStore)

		r.Get("/", paymentHandler.ListConnectors)
		r.Route("/{connector}", func(r chi.Router) {
			r.Post("/payments/authorize", paymentHandler.AuthorizePayment)
			r.Post("/refunds", paymentHandler.Refund)
			r.Get("/refunds/{refundId}", paymentHandler.GetRefund)
		})
	})

	return r
}
