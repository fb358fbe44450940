package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Checker is a function that checks the health of a dependency.
type Checker func(ctx context.Context) error

// Status represents the health status of a component.
type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

const checkTimeout = 5 * time.Second

var checkUp = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "health_check_up",
		Help: "Result of the last readiness run per check (1=up, 0=down)",
	},
	[]string{"check"},
)

// Response is the JSON response returned by the health endpoint.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the result of a single health check.
type CheckResult struct {
	Status     Status `json:"status"`
	Critical   bool   `json:"critical"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

type check struct {
	fn       Checker
	critical bool
}

// Handler provides HTTP health check endpoints.
//
// A failing critical check makes the service not ready (503). A failing
// non-critical check only degrades it; readiness stays 200.
type Handler struct {
	mu     sync.RWMutex
	checks map[string]check
}

// NewHandler creates a new health check handler.
func NewHandler() *Handler {
	return &Handler{
		checks: make(map[string]check),
	}
}

// RegisterCritical adds a checker whose failure makes the service not ready.
func (h *Handler) RegisterCritical(name string, checker Checker) {
	h.register(name, checker, true)
}

// RegisterNonCritical adds a checker whose failure only degrades the service.
func (h *Handler) RegisterNonCritical(name string, checker Checker) {
	h.register(name, checker, false)
}

func (h *Handler) register(name string, checker Checker, critical bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check{fn: checker, critical: critical}
}

// Names returns the registered check names in sorted order.
func (h *Handler) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LivenessHandler returns a simple liveness check (always 200 if the process is running).
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, http.StatusOK, Response{
			Status:    StatusUp,
			Timestamp: time.Now().UTC(),
		})
	}
}

// ReadinessHandler runs all registered checks concurrently and returns 200 or 503.
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		defer cancel()

		resp := h.Check(ctx)

		status := http.StatusOK
		if resp.Status == StatusDown {
			status = http.StatusServiceUnavailable
		}
		writeResponse(w, status, resp)
	}
}

// Check runs every registered checker and aggregates the result.
func (h *Handler) Check(ctx context.Context) Response {
	h.mu.RLock()
	checks := make(map[string]check, len(h.checks))
	for k, v := range h.checks {
		checks[k] = v
	}
	h.mu.RUnlock()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]CheckResult, len(checks))
	)

	for name, c := range checks {
		wg.Add(1)
		go func(name string, c check) {
			defer wg.Done()

			start := time.Now()
			err := run(ctx, c.fn)
			result := CheckResult{
				Status:     StatusUp,
				Critical:   c.critical,
				DurationMS: time.Since(start).Milliseconds(),
			}
			if err != nil {
				result.Status = StatusDown
				result.Error = err.Error()
			}
			checkUp.WithLabelValues(name).Set(boolToFloat(err == nil))

			mu.Lock()
			results[name] = result
			mu.Unlock()
		}(name, c)
	}
	wg.Wait()

	overall := StatusUp
	for _, result := range results {
		if result.Status != StatusDown {
			continue
		}
		if result.Critical {
			overall = StatusDown
			break
		}
		overall = StatusDegraded
	}

	return Response{
		Status:    overall,
		Timestamp: time.Now().UTC(),
		Checks:    results,
	}
}

// run calls fn and reports a panic as an error.
func run(ctx context.Context, fn Checker) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("check panicked: %v", rec)
		}
	}()
	return fn(ctx)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func writeResponse(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
