package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/helloivanco/fanrc/internal/service"
	"github.com/helloivanco/fanrc/internal/session"
	"github.com/helloivanco/fanrc/pkg/health"
	"github.com/helloivanco/fanrc/pkg/middleware"
)

const serviceName = "storefront"

// catalogMaxAge is how long clients may cache catalog reads, in seconds.
const catalogMaxAge = 60

// RouterConfig carries everything the router wires together.
type RouterConfig struct {
	Catalog    *service.CatalogService
	Wishlists  *service.WishlistService
	Watcher    *service.WishlistWatcher
	Sessions   *session.Codec
	Health     *health.Handler
	Wishlist   WishlistHandlerConfig
	PageSize   int
	CORS       middleware.CORSConfig
	PprofCIDRs []string
	Logger     *slog.Logger

	// StreamShutdown, when canceled, ends open wishlist streams.
	StreamShutdown context.Context
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	r := chi.NewRouter()

	// Global middleware. The request timeout is applied per group below so
	// the wishlist event stream can stay open.
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(chimw.Compress(5))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(logger))

	productHandler := NewProductHandler(cfg.Catalog, cfg.PageSize, logger)
	wishlistHandler := NewWishlistHandler(cfg.Wishlists, cfg.Catalog, cfg.Sessions, cfg.Wishlist, logger)
	streamHandler := NewStreamHandler(cfg.Watcher, wishlistHandler, cfg.StreamShutdown, logger)
	requireSession := middleware.RequireSession(cfg.Sessions.Resolve)

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(30 * time.Second))

		// Health check endpoints
		r.Get("/health/live", cfg.Health.LivenessHandler())
		r.Get("/health/ready", cfg.Health.ReadinessHandler())
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			promhttp.Handler().ServeHTTP(w, r)
		})

		// Pprof debug endpoints with IP allowlist.
		middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

		// Catalog API endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(catalogMaxAge))

			r.Get("/api/v1/products", productHandler.Browse)
			r.Get("/api/v1/products/id/{id}", productHandler.GetByID)
			r.Get("/api/v1/products/{handle}", productHandler.GetByHandle)
			r.Get("/api/v1/categories", productHandler.Categories)
		})

		// Wishlist API endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Use(ContentTypeJSON)

			r.Post("/api/v1/wishlist/session", wishlistHandler.CreateSession)

			r.Group(func(r chi.Router) {
				r.Use(requireSession)

				r.Get("/api/v1/wishlist", wishlistHandler.GetWishlist)
				r.Delete("/api/v1/wishlist", wishlistHandler.ClearWishlist)
				r.Get("/api/v1/wishlist/summary", wishlistHandler.Summary)
				r.Get("/api/v1/wishlist/share", wishlistHandler.Share)

				r.Post("/api/v1/wishlist/items", wishlistHandler.AddItem)
				r.Put("/api/v1/wishlist/items/{productId}", wishlistHandler.UpdateItemQuantity)
				r.Delete("/api/v1/wishlist/items/{productId}", wishlistHandler.RemoveItem)
				r.Get("/api/v1/wishlist/items/{productId}/contains", wishlistHandler.ContainsItem)
			})
		})
	})

	// Long-lived wishlist event stream, outside the request timeout.
	r.With(middleware.NoStore, requireSession).Get("/api/v1/wishlist/stream", streamHandler.Stream)

	return r
}
