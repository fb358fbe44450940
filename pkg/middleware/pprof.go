package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"net/http/pprof"
	"net/netip"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/EcommerceGo/pkg/httputil"
	"github.com/utafrali/EcommerceGo/pkg/logger"
)

// RegisterPprof mounts the runtime profiling endpoints under /debug/pprof.
// Access is limited to callers inside allowedCIDRs.
func RegisterPprof(r chi.Router, allowedCIDRs []string, l *slog.Logger) {
	r.Group(func(r chi.Router) {
		r.Use(IPAllowlist(allowedCIDRs, l))
		r.HandleFunc("/debug/pprof/*", pprof.Index)
		r.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		r.HandleFunc("/debug/pprof/profile", pprof.Profile)
		r.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		r.HandleFunc("/debug/pprof/trace", pprof.Trace)
	})
}

// IPAllowlist rejects requests whose remote address is outside every prefix
// in cidrs. Unparseable prefixes are logged and ignored; an empty list denies
// everything.
func IPAllowlist(cidrs []string, l *slog.Logger) func(http.Handler) http.Handler {
	prefixes := make([]netip.Prefix, 0, len(cidrs))
	for _, cidr := range cidrs {
		p, err := netip.ParsePrefix(cidr)
		if err != nil {
			l.Warn("invalid allowlist CIDR, skipping",
				slog.String("cidr", cidr),
				slog.String("error", err.Error()),
			)
			continue
		}
		prefixes = append(prefixes, p.Masked())
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := remoteHost(r.RemoteAddr)
			if !allowed(prefixes, host) {
				l.Warn("access denied by IP allowlist",
					slog.String("ip", host),
					slog.String("path", r.URL.Path),
				)
				httputil.WriteJSON(w, http.StatusForbidden, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:      "FORBIDDEN",
						Message:   "access restricted by IP allowlist",
						RequestID: logger.CorrelationIDFromContext(r.Context()),
					},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func remoteHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

func allowed(prefixes []netip.Prefix, host string) bool {
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
