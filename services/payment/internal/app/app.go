package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/utafrali/EcommerceGo/pkg/health"
	"github.com/utafrali/EcommerceGo/pkg/httpclient"
	pkgkafka "github.com/utafrali/EcommerceGo/pkg/kafka"
	"github.com/utafrali/EcommerceGo/pkg/tracing"
	"github.com/utafrali/EcommerceGo/services/payment/internal/config"
	"github.com/utafrali/EcommerceGo/services/payment/internal/connector"
	"github.com/utafrali/EcommerceGo/services/payment/internal/connector/bluesnap"
	"github.com/utafrali/EcommerceGo/services/payment/internal/domain"
	"github.com/utafrali/EcommerceGo/services/payment/internal/event"
	handler "github.com/utafrali/EcommerceGo/services/payment/internal/handler/http"
	"github.com/utafrali/EcommerceGo/services/payment/internal/service"
)

// App wires together all dependencies and runs the payment service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "payment",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Without Kafka, attempt events are logged and dropped.
	var (
		producer  *pkgkafka.Producer
		publisher event.Publisher
	)
	if cfg.KafkaEnabled {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = producer
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Warn("kafka disabled, attempt events will not be published")
	}
	eventProducer := event.NewProducer(publisher, logger)

	// Shared transport; each connector wraps it in its own breaker.
	baseClient := httpclient.New(httpclient.Config{
		Timeout:         time.Duration(cfg.ConnectorTimeoutSeconds) * time.Second,
		MaxRetries:      cfg.ConnectorMaxRetries,
		RetryWaitMin:    500 * time.Millisecond,
		RetryWaitMax:    5 * time.Second,
		MaxConnsPerHost: 100,
	})

	healthHandler := health.NewHandler()

	registry, err := buildConnectors(cfg, baseClient, healthHandler, logger)
	if err != nil {
		return nil, err
	}

	paymentService := service.NewPaymentService(registry, eventProducer, logger)

	healthHandler.RegisterCritical("connectors", func(context.Context) error {
		if len(registry.Names()) == 0 {
			return errors.New("no payment connectors configured")
		}
		return nil
	})
	if producer != nil {
		healthHandler.RegisterNonCritical("kafka", producer.Ping)
	}

	router := handler.NewRouter(paymentService, healthHandler, logger, cfg.PprofAllowedCIDRs)

	return &App{
		cfg:            cfg,
		logger:         logger,
		producer:       producer,
		httpServer:     newHTTPServer(cfg, router),
		tracerShutdown: tracerShutdown,
	}, nil
}

// newHTTPServer sizes WriteTimeout to outlast the slowest connector call.
func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           h,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      time.Duration(cfg.ConnectorTimeoutSeconds+15) * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    64 << 10,
	}
}

// buildConnectors creates every enabled connector, each behind its own
// circuit breaker, and registers a non-critical health check per breaker.
func buildConnectors(cfg *config.Config, baseClient *httpclient.Client, healthHandler *health.Handler, logger *slog.Logger) (*connector.Registry, error) {
	registry := connector.NewRegistry()

	if cfg.Bluesnap != nil && cfg.Bluesnap.Enabled {
		cb := newCircuitBreaker(cfg, baseClient, "bluesnap", logger)

		auth := domain.BodyKey{APIKey: cfg.Bluesnap.APIKey, Key1: cfg.Bluesnap.Key1}
		conn, err := bluesnap.New(bluesnap.Config{BaseURL: cfg.Bluesnap.BaseURL}, auth, cb, logger)
		if err != nil {
			return nil, fmt.Errorf("create bluesnap connector: %w", err)
		}
		registry.Register(conn)
		healthHandler.RegisterNonCritical("bluesnap_circuit", circuitCheck(cb))

		logger.Info("connector registered",
			slog.String("connector", conn.Name()),
			slog.String("base_url", cfg.Bluesnap.BaseURL),
		)
	}

	return registry, nil
}

func newCircuitBreaker(cfg *config.Config, baseClient *httpclient.Client, name string, logger *slog.Logger) *httpclient.CircuitBreakerClient {
	cbCfg := httpclient.CircuitBreakerConfig{
		Name:         "payment-" + name,
		MaxRequests:  cfg.CBMaxRequests,
		Interval:     time.Duration(cfg.CBInterval) * time.Second,
		Timeout:      time.Duration(cfg.CBTimeout) * time.Second,
		FailureRatio: cfg.CBFailureRatio,
		MinRequests:  cfg.CBMinRequests,
	}
	cb := httpclient.NewCircuitBreakerClient(baseClient, cbCfg, logger).
		WithFallback(service.CircuitOpenFallback)
	logger.Info("circuit breaker initialized",
		slog.String("name", cbCfg.Name),
		slog.Uint64("max_requests", uint64(cbCfg.MaxRequests)),
		slog.Int("timeout_seconds", cfg.CBTimeout),
		slog.Uint64("min_requests", uint64(cbCfg.MinRequests)),
	)
	return cb
}

// circuitCheck reports an open breaker as unhealthy.
func circuitCheck(cb *httpclient.CircuitBreakerClient) health.Checker {
	return func(_ context.Context) error {
		if state := cb.State(); state == gobreaker.StateOpen {
			return fmt.Errorf("circuit breaker is %s", state)
		}
		return nil
	}
}

// Handler returns the HTTP handler serving the payment API.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("payment service listening", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown requested", slog.String("cause", context.Cause(ctx).Error()))
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// shutdownStep is one component stopped by Shutdown, in slice order.
type shutdownStep struct {
	name    string
	timeout time.Duration
	stop    func(context.Context) error
}

// shutdownSteps drains HTTP first so spans and events emitted by in-flight
// requests are still flushed by the tracer and producer.
func (a *App) shutdownSteps() []shutdownStep {
	steps := []shutdownStep{{name: "http server", timeout: 5 * time.Second, stop: a.httpServer.Shutdown}}
	if a.tracerShutdown != nil {
		steps = append(steps, shutdownStep{name: "tracer", timeout: 3 * time.Second, stop: a.tracerShutdown})
	}
	if a.producer != nil {
		steps = append(steps, shutdownStep{name: "kafka producer", timeout: 5 * time.Second, stop: func(context.Context) error {
			return a.producer.Close()
		}})
	}
	return steps
}

// Shutdown stops every component, continuing past failures, and returns
// the joined errors.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down payment service")

	var errs []error
	for _, step := range a.shutdownSteps() {
		ctx, cancel := context.WithTimeout(context.Background(), step.timeout)
		err := step.stop(ctx)
		cancel()
		if err != nil {
			a.logger.Error("shutdown step failed",
				slog.String("component", step.name),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
		}
	}

	a.logger.Info("payment service shutdown complete")
	return errors.Join(errs...)
}
