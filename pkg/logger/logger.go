package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

type contextKey string

const (
	correlationIDKey contextKey = "correlation_id"
	merchantIDKey    contextKey = "merchant_id"
	loggerKey        contextKey = "logger"
)

// Redacted replaces the value of any attribute whose key names a credential or
// raw card field.
const Redacted = "[REDACTED]"

var sensitiveKeys = map[string]struct{}{
	"authorization":   {},
	"api_key":         {},
	"api_secret":      {},
	"key1":            {},
	"card_number":     {},
	"cvc":             {},
	"security_code":   {},
	"number":          {},
	"card_cvc":        {},
	"x-api-key":       {},
	"idempotency_key": {},
}

// New creates a new structured logger with the given service name and level.
func New(serviceName, level string) *slog.Logger {
	return NewWithWriter(serviceName, level, os.Stdout)
}

// NewWithWriter creates a new structured logger writing to the given writer.
func NewWithWriter(serviceName, level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   lvl == slog.LevelDebug,
		ReplaceAttr: redact,
	})

	return slog.New(handler).With(
		slog.String("service", serviceName),
	)
}

// ParseLevel maps a level name onto a slog level. Unknown names give info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if _, ok := sensitiveKeys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, Redacted)
	}
	return a
}

// WithCorrelationID returns a new context with the correlation ID set.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext extracts the correlation ID from the context.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// WithMerchantID returns a new context with the merchant ID set for logging.
func WithMerchantID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, merchantIDKey, id)
}

// MerchantIDFromContext extracts the merchant ID stored by the logger package.
func MerchantIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(merchantIDKey).(string); ok {
		return id
	}
	return ""
}

// NewContext returns a new context with the given logger stored in it.
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the request-scoped logger stored in context.
// Returns slog.Default() if no logger is stored.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// WithContext returns a logger with context-derived fields (correlation_id, merchant_id, trace_id, span_id).
func WithContext(ctx context.Context, l *slog.Logger) *slog.Logger {
	if id := CorrelationIDFromContext(ctx); id != "" {
		l = l.With(slog.String("correlation_id", id))
	}

	if id := MerchantIDFromContext(ctx); id != "" {
		l = l.With(slog.String("merchant_id", id))
	}

	// Inject OpenTelemetry trace context if a valid span is present.
	if spanCtx := trace.SpanFromContext(ctx).SpanContext(); spanCtx.IsValid() {
		l = l.With(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}

	return l
}
