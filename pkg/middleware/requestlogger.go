package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/utafrali/EcommerceGo/pkg/logger"
)

// MerchantIDHeader identifies the merchant a request is made on behalf of.
const MerchantIDHeader = "X-Merchant-ID"

// maxMerchantIDLen bounds the header value copied into every log line.
const maxMerchantIDLen = 64

// RequestLogger stores a per-request logger in the context carrying the
// correlation, merchant and trace identifiers. Mount it after RequestLogging
// and Tracing so those identifiers are already present.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if logger.MerchantIDFromContext(ctx) == "" {
				if merchantID := merchantFromHeader(r); merchantID != "" {
					ctx = logger.WithMerchantID(ctx, merchantID)
				}
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// merchantFromHeader returns the trimmed merchant header, or "" when it is
// too long or contains anything outside printable ASCII.
func merchantFromHeader(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get(MerchantIDHeader))
	if len(v) > maxMerchantIDLen {
		return ""
	}
	for i := 0; i < len(v); i++ {
		if v[i] < 0x21 || v[i] > 0x7e {
			return ""
		}
	}
	return v
}
