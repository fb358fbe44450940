package http

import (
	"mime"
	"net/http"

	"github.com/utafrali/EcommerceGo/pkg/httputil"
	"github.com/utafrali/EcommerceGo/pkg/logger"
)

// ContentTypeJSON rejects request bodies that are not declared as JSON.
// Requests without a Content-Type header are let through.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hasBody(r) {
			if ct := r.Header.Get("Content-Type"); ct != "" {
				mediaType, _, err := mime.ParseMediaType(ct)
				if err != nil || mediaType != "application/json" {
					httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
						Error: &httputil.ErrorResponse{
							Code:      "UNSUPPORTED_MEDIA_TYPE",
							Message:   "Content-Type must be application/json",
							RequestID: logger.CorrelationIDFromContext(r.Context()),
						},
					})
					return
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

func hasBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	default:
		return r.ContentLength > 0
	}
}
