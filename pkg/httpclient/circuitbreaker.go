package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"
)

// CircuitBreakerConfig holds configuration for one downstream breaker.
type CircuitBreakerConfig struct {
	// Name labels the breaker in logs and metrics. One breaker per downstream.
	Name string

	// MaxRequests is the number of trial requests let through while half-open.
	MaxRequests uint32

	// Interval clears the closed-state counts; 0 never clears them.
	Interval time.Duration

	// Timeout is how long the breaker stays open before going half-open.
	Timeout time.Duration

	// FailureRatio trips the breaker once failures/requests reaches it.
	FailureRatio float64

	// MinRequests is the sample size required before FailureRatio is evaluated.
	MinRequests uint32
}

// DefaultCircuitBreakerConfig returns the defaults used for payment connectors.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

// FallbackFunc replaces the rejection of a request the breaker refused to send.
// err is ErrCircuitOpen or ErrTooManyRequests.
type FallbackFunc func(ctx context.Context, err error) (*http.Response, error)

var (
	// ErrCircuitOpen is returned when the breaker is open.
	ErrCircuitOpen = gobreaker.ErrOpenState
	// ErrTooManyRequests is returned when the half-open trial budget is spent.
	ErrTooManyRequests = gobreaker.ErrTooManyRequests
)

var (
	circuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current state of the circuit breaker (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	circuitBreakerRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_rejected_total",
			Help: "Requests refused by the circuit breaker without reaching the downstream",
		},
		[]string{"name", "reason"},
	)

	circuitBreakerFallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_fallback_invoked_total",
			Help: "Total number of times the circuit breaker fallback was invoked",
		},
		[]string{"name"},
	)
)

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// CircuitBreakerClient sends requests through a Client guarded by a breaker.
// Transport errors and 5xx replies count as failures. 4xx replies and
// cancellations by the caller do not.
type CircuitBreakerClient struct {
	client   *Client
	breaker  *gobreaker.CircuitBreaker[*http.Response]
	logger   *slog.Logger
	fallback FallbackFunc
	name     string
}

// NewCircuitBreakerClient wraps client with a breaker built from cbCfg.
func NewCircuitBreakerClient(client *Client, cbCfg CircuitBreakerConfig, logger *slog.Logger) *CircuitBreakerClient {
	settings := gobreaker.Settings{
		Name:        cbCfg.Name,
		MaxRequests: cbCfg.MaxRequests,
		Interval:    cbCfg.Interval,
		Timeout:     cbCfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cbCfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cbCfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			circuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	}

	circuitBreakerState.WithLabelValues(cbCfg.Name).Set(stateToFloat(gobreaker.StateClosed))

	return &CircuitBreakerClient{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[*http.Response](settings),
		logger:  logger,
		name:    cbCfg.Name,
	}
}

// WithFallback returns a copy of c that calls fn instead of returning
// ErrCircuitOpen or ErrTooManyRequests. The breaker itself is shared.
func (c *CircuitBreakerClient) WithFallback(fn FallbackFunc) *CircuitBreakerClient {
	cpy := *c
	cpy.fallback = fn
	return &cpy
}

const maxErrorBodyBytes = 1 << 20

// Do sends req through the breaker. A 5xx reply is consumed and returned as
// *ServerError so the caller can still read the downstream's error body.
func (c *CircuitBreakerClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.client.Do(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return nil, drainServerError(resp)
		}
		return resp, nil
	})
	if err == nil {
		return resp, nil
	}

	reason := rejectionReason(err)
	if reason == "" {
		return nil, err
	}
	circuitBreakerRejectedTotal.WithLabelValues(c.name, reason).Inc()
	if c.fallback == nil {
		return nil, err
	}

	circuitBreakerFallbackTotal.WithLabelValues(c.name).Inc()
	c.logger.WarnContext(ctx, "circuit breaker rejected request, invoking fallback",
		slog.String("breaker", c.name),
		slog.String("reason", reason),
	)
	return c.fallback(ctx, err)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrCircuitOpen):
		return "open"
	case errors.Is(err, ErrTooManyRequests):
		return "half_open_limit"
	default:
		return ""
	}
}

func drainServerError(resp *http.Response) *ServerError {
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil {
		body = nil
	}
	return &ServerError{StatusCode: resp.StatusCode, Body: body}
}

// Get performs a GET through the breaker.
func (c *CircuitBreakerClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create GET request: %w", err)
	}
	return c.Do(ctx, req)
}

// Name returns the breaker's name.
func (c *CircuitBreakerClient) Name() string {
	return c.name
}

// State returns the current state of the circuit breaker.
func (c *CircuitBreakerClient) State() gobreaker.State {
	return c.breaker.State()
}
