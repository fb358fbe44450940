package middleware

import "net/http"

// NoStore returns a middleware that marks every response as uncacheable.
// Payment responses carry per-attempt state and must never be served from a
// shared cache.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Pragma", "no-cache")
		next.ServeHTTP(w, r)
	})
}
