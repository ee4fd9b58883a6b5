package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"net/http/pprof"
	"net/netip"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/helloivanco/fanrc/pkg/httputil"
)

// RegisterPprof mounts the profiling endpoints under /debug/pprof behind an
// IP allowlist. With no allowed networks the endpoints are not mounted at all,
// so a disabled profiler answers 404 like any unknown path.
func RegisterPprof(r chi.Router, allowed []string, logger *slog.Logger) {
	prefixes := ParseAllowlist(allowed, logger)
	if len(prefixes) == 0 {
		return
	}
	logger.Info("pprof endpoints enabled", slog.Int("allowed_networks", len(prefixes)))

	r.Group(func(r chi.Router) {
		r.Use(allowlist(prefixes, logger))
		r.HandleFunc("/debug/pprof/*", pprof.Index)
		r.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		r.HandleFunc("/debug/pprof/profile", pprof.Profile)
		r.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		r.HandleFunc("/debug/pprof/trace", pprof.Trace)
	})
}

// ParseAllowlist parses CIDR prefixes and bare addresses, which count as a
// single host. Invalid entries are logged and skipped.
func ParseAllowlist(entries []string, logger *slog.Logger) []netip.Prefix {
	var out []netip.Prefix
	for _, raw := range entries {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			addr, err := netip.ParseAddr(entry)
			if err != nil {
				logger.Warn("invalid allowlist entry, skipping", slog.String("entry", entry), slog.String("error", err.Error()))
				continue
			}
			addr = addr.Unmap()
			out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		prefix, err := netip.ParsePrefix(entry)
		if err != nil {
			logger.Warn("invalid allowlist entry, skipping", slog.String("entry", entry), slog.String("error", err.Error()))
			continue
		}
		out = append(out, prefix.Masked())
	}
	return out
}

// allowlist restricts a handler to clients inside the given networks.
func allowlist(prefixes []netip.Prefix, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			addr, ok := remoteAddr(r.RemoteAddr)
			if ok && containsAddr(prefixes, addr) {
				next.ServeHTTP(w, r)
				return
			}

			logger.WarnContext(r.Context(), "access denied by IP allowlist",
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("path", r.URL.Path),
			)
			httputil.WriteJSON(w, http.StatusForbidden, httputil.Response{
				Error: &httputil.ErrorResponse{
					Code:      "FORBIDDEN",
					Message:   "access restricted by IP allowlist",
					RequestID: w.Header().Get(CorrelationIDHeader),
				},
			})
		})
	}
}

// remoteAddr parses "host:port" or a bare host. IPv4-mapped IPv6 addresses
// are reduced to IPv4 so they match IPv4 prefixes.
func remoteAddr(raw string) (netip.Addr, bool) {
	host, _, err := net.SplitHostPort(raw)
	if err != nil {
		host = raw
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

func containsAddr(prefixes []netip.Prefix, addr netip.Addr) bool {
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
