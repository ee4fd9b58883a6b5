package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helloivanco/fanrc/pkg/httputil"
	"github.com/helloivanco/fanrc/pkg/logger"
)

// pprofRouter mounts the profiler next to a public catalog route, the way the
// storefront router does.
func pprofRouter(allowed []string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(RequestLogging(logger.Discard()))
	RegisterPprof(r, allowed, logger.Discard())
	r.Get("/api/v1/products", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func serveFrom(h http.Handler, remote, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestParseAllowlist(t *testing.T) {
	got := ParseAllowlist([]string{
		"127.0.0.1/32", "::1/128", // PPROF_ALLOWED_CIDRS default
		" 10.0.0.5 ",
		"192.168.1.7/24",
		"office-vpn",
		"",
	}, logger.Discard())

	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("127.0.0.1/32"),
		netip.MustParsePrefix("::1/128"),
		netip.MustParsePrefix("10.0.0.5/32"),
		netip.MustParsePrefix("192.168.1.0/24"),
	}, got)
}

func TestRegisterPprof_Allowlist(t *testing.T) {
	r := pprofRouter([]string{"127.0.0.1/32", "::1/128", "10.20.0.0/16"})

	tests := []struct {
		name   string
		remote string
		want   int
	}{
		{"loopback v4", "127.0.0.1:5000", http.StatusOK},
		{"loopback v6", "[::1]:5000", http.StatusOK},
		{"v4-mapped loopback", "[::ffff:127.0.0.1]:5000", http.StatusOK},
		{"ops network without port", "10.20.3.4", http.StatusOK},
		{"outside network", "192.168.1.1:5000", http.StatusForbidden},
		{"unparseable remote", "@unix", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveFrom(r, tt.remote, "/debug/pprof/")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRegisterPprof_NamedProfilesServedByIndex(t *testing.T) {
	r := pprofRouter([]string{"127.0.0.1/32"})

	for _, path := range []string{"/debug/pprof/heap", "/debug/pprof/goroutine", "/debug/pprof/cmdline", "/debug/pprof/symbol"} {
		rec := serveFrom(r, "127.0.0.1:5000", path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRegisterPprof_DeniedUsesEnvelopeWithRequestID(t *testing.T) {
	r := pprofRouter([]string{"127.0.0.1/32"})

	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/heap", nil)
	req.RemoteAddr = "203.0.113.9:443"
	req.Header.Set(CorrelationIDHeader, "corr-pprof")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	var body httputil.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, "FORBIDDEN", body.Error.Code)
	assert.Equal(t, "corr-pprof", body.Error.RequestID)
}

func TestRegisterPprof_DisabledIsNotMounted(t *testing.T) {
	for name, allowed := range map[string][]string{
		"profiling disabled":   nil,
		"only invalid entries": {"not-a-network"},
	} {
		t.Run(name, func(t *testing.T) {
			rec := serveFrom(pprofRouter(allowed), "127.0.0.1:5000", "/debug/pprof/")
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}
}

func TestRegisterPprof_LeavesCatalogRoutesOpen(t *testing.T) {
	r := pprofRouter([]string{"127.0.0.1/32"})

	rec := serveFrom(r, "198.51.100.20:40000", "/api/v1/products")
	assert.Equal(t, http.StatusOK, rec.Code)
}
