package httpclient

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// IdempotencyKeyHeader marks a non-idempotent request as safe to retry.
const IdempotencyKeyHeader = "Idempotency-Key"

// Config holds HTTP client configuration.
type Config struct {
	Timeout         time.Duration
	MaxRetries      int
	RetryWaitMin    time.Duration
	RetryWaitMax    time.Duration
	MaxConnsPerHost int
}

var retriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_client_retries_total",
		Help: "Outbound HTTP requests sent again after a failed attempt",
	},
	[]string{"host", "reason"},
)

// Client is an http.Client with pooled connections and bounded retries.
type Client struct {
	httpClient *http.Client
	config     Config
}

// New creates a Client from cfg.
func New(cfg Config) *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   cfg.MaxConnsPerHost,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}

	return &Client{
		httpClient: &http.Client{Transport: transport, Timeout: cfg.Timeout},
		config:     cfg,
	}
}

// Do sends req, retrying network errors and retryable statuses.
//
// Only idempotent requests are retried: GET, HEAD, OPTIONS, PUT, DELETE, or
// any request carrying an Idempotency-Key header. A POST that moves money is
// sent exactly once.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)

	maxRetries := c.config.MaxRetries
	if !isIdempotent(req) {
		maxRetries = 0
	}

	for attempt := 0; ; attempt++ {
		resp, err := c.httpClient.Do(req)
		last := attempt >= maxRetries

		var wait time.Duration
		switch {
		case err != nil:
			if last || !isRetryableError(err) {
				return nil, fmt.Errorf("http request failed after %d attempts: %w", attempt+1, err)
			}
			wait = c.backoff(attempt)
			retriesTotal.WithLabelValues(req.URL.Host, "network").Inc()
		case retryableStatus(resp.StatusCode) && !last:
			wait = max(c.backoff(attempt), retryAfter(resp))
			resp.Body.Close()
			retriesTotal.WithLabelValues(req.URL.Host, strconv.Itoa(resp.StatusCode)).Inc()
		default:
			return resp, nil
		}

		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
		if err := rewindBody(req); err != nil {
			return nil, err
		}
	}
}

// Get performs a GET with retries.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create GET request: %w", err)
	}
	return c.Do(ctx, req)
}

// backoff doubles RetryWaitMin per attempt, capped at RetryWaitMax, with jitter.
func (c *Client) backoff(attempt int) time.Duration {
	wait := c.config.RetryWaitMin << uint(min(attempt, 30))
	if wait > c.config.RetryWaitMax {
		wait = c.config.RetryWaitMax
	}
	return addJitter(wait)
}

// retryableStatus reports 429 and every 5xx except 501.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || (code >= 500 && code != http.StatusNotImplemented)
}

// retryAfter reads a delay-seconds Retry-After header. HTTP-date values and
// anything above a minute are ignored.
func retryAfter(resp *http.Response) time.Duration {
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs <= 0 || secs > 60 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isIdempotent(req *http.Request) bool {
	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	}
	return req.Header.Get(IdempotencyKeyHeader) != ""
}

// rewindBody resets the request body before a retry. Requests built with
// http.NewRequest over a bytes or strings reader carry a GetBody func.
func rewindBody(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody {
		return nil
	}
	if req.GetBody == nil {
		return errors.New("request body cannot be replayed")
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Errorf("rewind request body: %w", err)
	}
	req.Body = body
	return nil
}

// addJitter spreads d by up to ±25%.
func addJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	delta := float64(d) * 0.25
	return time.Duration(float64(d) - delta + rand.Float64()*2*delta)
}

// isRetryableError reports network failures other than caller cancellation.
func isRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
