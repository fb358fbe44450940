package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/EcommerceGo/pkg/logger"
)

// CorrelationIDHeader carries the request correlation ID in both directions.
const CorrelationIDHeader = "X-Correlation-ID"

// RequestLogging assigns every request a correlation ID and writes one access
// log line when it completes. An inbound X-Correlation-ID (or X-Request-ID) is
// reused so a payment can be followed from the router into this service.
func RequestLogging(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			correlationID := inboundCorrelationID(r)
			ctx := logger.WithCorrelationID(r.Context(), correlationID)
			r = r.WithContext(ctx)
			w.Header().Set(CorrelationIDHeader, correlationID)

			rw := newStatusRecorder(w)
			next.ServeHTTP(rw, r)

			l.LogAttrs(ctx, accessLevel(r.URL.Path, rw.statusCode), "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rw.statusCode),
				slog.Duration("duration", time.Since(start)),
				slog.Int("bytes", rw.bytes),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.UserAgent()),
				slog.String("correlation_id", correlationID),
			)
		})
	}
}

func inboundCorrelationID(r *http.Request) string {
	if id := r.Header.Get(CorrelationIDHeader); id != "" {
		return id
	}
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return uuid.NewString()
}

// accessLevel keeps probe and scrape traffic at debug. Declined payments and
// other client errors are warnings; anything 5xx is an error.
func accessLevel(path string, status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case strings.HasPrefix(path, "/health/"), path == "/metrics":
		return slog.LevelDebug
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
