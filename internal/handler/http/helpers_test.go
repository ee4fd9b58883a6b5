package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/helloivanco/fanrc/internal/catalog"
	"github.com/helloivanco/fanrc/internal/domain"
	"github.com/helloivanco/fanrc/internal/repository/memory"
	"github.com/helloivanco/fanrc/internal/service"
	"github.com/helloivanco/fanrc/internal/session"
	"github.com/helloivanco/fanrc/pkg/health"
	"github.com/helloivanco/fanrc/pkg/httputil"
	"github.com/helloivanco/fanrc/pkg/logger"
	"github.com/helloivanco/fanrc/pkg/middleware"
)

const testPageSize = 8

// ============================================================================
// Test environment
// ============================================================================

type testEnv struct {
	router    http.Handler
	store     *catalog.Store
	wishlists *service.WishlistService
	sessions  *session.Codec
	token     string
}

// testProducts returns Widget, Shock Set and 18 hardware parts.
func testProducts() []domain.Product {
	products := []domain.Product{
		{
			ID: 1, Title: "Widget", Handle: "widget", URL: "https://fanrc.example/products/widget",
			ProductType: "tools",
			Variants:    []domain.Variant{{ID: 10, Title: domain.DefaultVariantTitle, SKU: "W-1", Price: 500, Available: true}},
		},
		{
			ID: 2, Title: "Shock Set", Handle: "shock-set", ProductType: "Shock Parts",
			Variants: []domain.Variant{
				{ID: 20, Title: "Front", SKU: "SS-F", Price: 1999, Available: true},
				{ID: 21, Title: "Rear", SKU: "SS-R", Price: 2499},
			},
		},
	}
	for i := 3; i <= 20; i++ {
		products = append(products, domain.Product{
			ID: int64(i), Title: fmt.Sprintf("Spare Part %d", i), Handle: fmt.Sprintf("spare-part-%d", i),
			ProductType: "Hardware",
			Variants:    []domain.Variant{{ID: int64(i * 10), Title: domain.DefaultVariantTitle, SKU: fmt.Sprintf("SP-%d", i), Price: 100}},
		})
	}
	return products
}

func newTestEnv(t *testing.T, loadCatalog bool) *testEnv {
	t.Helper()
	log := logger.Discard()

	store := catalog.NewStore()
	if loadCatalog {
		_, err := store.Replace(testProducts(), "test")
		require.NoError(t, err)
	}

	notifier := memory.NewNotifier()
	wishlists := service.NewWishlistService(memory.NewWishlistRepository(), notifier, nil, log)
	catalogSvc := service.NewCatalogService(store, nil)
	sessions := session.NewCodec([]byte("test-secret-test-secret-test-secret"), time.Hour, false)

	router := NewRouter(RouterConfig{
		Catalog:   catalogSvc,
		Wishlists: wishlists,
		Watcher:   service.NewWishlistWatcher(wishlists, notifier, 20*time.Millisecond, log),
		Sessions:  sessions,
		Health:    health.NewHandler(),
		Wishlist:  WishlistHandlerConfig{MessengerURL: "https://m.me/fanrc"},
		PageSize:  testPageSize,
		CORS:      middleware.DefaultCORSConfig(),
		Logger:    log,
	})

	return &testEnv{
		router:    router,
		store:     store,
		wishlists: wishlists,
		sessions:  sessions,
		token:     sessions.Encode(session.NewID()),
	}
}

// do sends a request through the router. A non-empty token is sent in the
// session header.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(middleware.SessionHeader, token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) sessionID(t *testing.T) string {
	t.Helper()
	id, err := e.sessions.Decode(e.token)
	require.NoError(t, err)
	return id
}

type envelope struct {
	Data  json.RawMessage         `json:"data"`
	Error *httputil.ErrorResponse `json:"error"`
}

// decodeData decodes the data member of the response envelope into dst.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Nil(t, env.Error, "unexpected error response: %s", rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

// decodeError returns the error member of the response envelope.
func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *httputil.ErrorResponse {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Error, "expected error response: %s", rec.Body.String())
	return env.Error
}
