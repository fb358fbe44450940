package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/utafrali/EcommerceGo/pkg/httputil"
	"github.com/utafrali/EcommerceGo/pkg/logger"
)

// Recovery turns a handler panic into a 500 error envelope and logs the stack.
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func Recovery(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				// Recovery sits outside RequestLogging, so the correlation ID is
				// only visible on the response headers.
				requestID := logger.CorrelationIDFromContext(r.Context())
				if requestID == "" {
					requestID = w.Header().Get(CorrelationIDHeader)
				}

				l.ErrorContext(r.Context(), "panic recovered",
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("correlation_id", requestID),
				)

				httputil.WriteJSON(w, http.StatusInternalServerError, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:      "INTERNAL_ERROR",
						Message:   "an internal error occurred",
						RequestID: requestID,
					},
				})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
