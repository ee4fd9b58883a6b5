package app

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/helloivanco/fanrc/internal/catalog"
	"github.com/helloivanco/fanrc/internal/config"
	"github.com/helloivanco/fanrc/internal/event"
	handler "github.com/helloivanco/fanrc/internal/handler/http"
	"github.com/helloivanco/fanrc/internal/repository"
	"github.com/helloivanco/fanrc/internal/repository/memory"
	redisrepo "github.com/helloivanco/fanrc/internal/repository/redis"
	"github.com/helloivanco/fanrc/internal/service"
	"github.com/helloivanco/fanrc/internal/session"
	"github.com/helloivanco/fanrc/pkg/database"
	"github.com/helloivanco/fanrc/pkg/health"
	"github.com/helloivanco/fanrc/pkg/httpclient"
	pkgkafka "github.com/helloivanco/fanrc/pkg/kafka"
	"github.com/helloivanco/fanrc/pkg/middleware"
	"github.com/helloivanco/fanrc/pkg/tracing"
)

const serviceName = "fanrc-storefront"

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	reloader       *catalog.Reloader
	httpServer     *http.Server
	stopStreams    context.CancelFunc
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	// Initialize tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	// Wishlist storage.
	repo, notifier, err := a.initStorage(ctx)
	if err != nil {
		return nil, err
	}

	// Kafka producer. Without brokers, events are dropped.
	var publisher event.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = a.producer
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Info("kafka brokers not configured, wishlist events disabled")
	}
	eventProducer := event.NewProducer(publisher, logger)

	// Catalog.
	store := catalog.NewStore()
	a.reloader = a.newReloader(store)
	a.reloader.Subscribe(a.reportUngroupedTypes)
	if _, err := a.reloader.Reload(ctx); err != nil {
		if cfg.CatalogURL == "" {
			a.closeClients()
			return nil, fmt.Errorf("initial catalog load: %w", err)
		}
		// A remote catalog may come up later; readiness reports it until then.
		logger.Error("initial catalog load failed, retrying on refresh",
			slog.String("source", cfg.CatalogURL),
			slog.String("error", err.Error()),
		)
	}

	// Build the dependency graph.
	wishlistService := service.NewWishlistService(repo, notifier, eventProducer, logger)
	catalogService := service.NewCatalogService(store, nil)
	watcher := service.NewWishlistWatcher(wishlistService, notifier, cfg.WatchInterval, logger)

	secret, err := a.sessionSecret()
	if err != nil {
		a.closeClients()
		return nil, err
	}
	sessions := session.NewCodec(secret, cfg.SessionCookieTTL, cfg.SecureCookies)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("catalog", func(context.Context) error {
		_, err := catalogService.Snapshot()
		return err
	})
	healthHandler.RegisterCritical("wishlist_store", wishlistService.Ping)
	if a.producer != nil {
		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
	}

	var pprofCIDRs []string
	if cfg.PprofEnabled {
		pprofCIDRs = cfg.PprofCIDRs
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	corsCfg.AllowCredentials = true
	corsCfg.Environment = cfg.Environment

	streamCtx, stopStreams := context.WithCancel(context.Background())
	a.stopStreams = stopStreams

	// HTTP router.
	router := handler.NewRouter(handler.RouterConfig{
		Catalog:   catalogService,
		Wishlists: wishlistService,
		Watcher:   watcher,
		Sessions:  sessions,
		Health:    healthHandler,
		Wishlist: handler.WishlistHandlerConfig{
			Summary:      service.SummaryOptions{Greeting: cfg.SummaryGreeting, Closing: cfg.SummaryClosing},
			MessengerURL: cfg.MessengerURL,
		},
		PageSize:       cfg.PageSize,
		CORS:           corsCfg,
		PprofCIDRs:     pprofCIDRs,
		Logger:         logger,
		StreamShutdown: streamCtx,
	})

	// No WriteTimeout: the wishlist stream is long-lived. Other routes are
	// bounded by the router's request timeout.
	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	a.httpServer.RegisterOnShutdown(stopStreams)

	return a, nil
}

// initStorage connects the configured wishlist store.
func (a *App) initStorage(ctx context.Context) (repository.WishlistRepository, repository.ChangeNotifier, error) {
	cfg := a.cfg
	if cfg.StorageDriver == config.StorageMemory {
		a.logger.Warn("using in-memory wishlist storage; wishlists are lost on restart")
		return memory.NewWishlistRepository(), memory.NewNotifier(), nil
	}

	redisCfg := database.DefaultRedisConfig()
	redisCfg.Host = cfg.RedisHost
	redisCfg.Port = cfg.RedisPort
	redisCfg.Password = cfg.RedisPassword
	redisCfg.DB = cfg.RedisDB
	redisCfg.PoolSize = cfg.RedisPoolSize

	rdb, err := database.NewRedisClient(ctx, redisCfg, a.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.rdb = rdb
	a.logger.Info("connected to Redis",
		slog.String("addr", redisCfg.Addr()),
		slog.Int("db", redisCfg.DB),
	)

	database.SetSlowCommandLogging(cfg.SlowCommandThreshold, a.logger)
	if err := prometheus.Register(database.NewPoolStatsCollector(rdb, "storefront")); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, nil, fmt.Errorf("register redis pool metrics: %w", err)
		}
	}

	return redisrepo.NewWishlistRepository(rdb, cfg.WishlistTTL), redisrepo.NewNotifier(rdb), nil
}

// newReloader picks the catalog source. A remote catalog is fetched through
// the retrying circuit-breaker client and refreshed on an interval; a file
// catalog is watched for changes.
func (a *App) newReloader(store *catalog.Store) *catalog.Reloader {
	cfg := a.cfg
	if cfg.CatalogURL != "" {
		client := httpclient.NewCircuitBreakerClient(
			httpclient.New(httpclient.DefaultConfig()),
			httpclient.DefaultCircuitBreakerConfig("catalog", cfg.CatalogRefresh),
			a.logger,
		)
		return catalog.NewReloader(store, catalog.NewHTTPLoader(cfg.CatalogURL, client), a.logger,
			catalog.WithRefreshInterval(cfg.CatalogRefresh),
		)
	}
	return catalog.NewReloader(store, catalog.NewFileLoader(cfg.CatalogPath), a.logger,
		catalog.WithFileWatch(cfg.CatalogWatch),
	)
}

// reportUngroupedTypes warns about product types that no category group
// claims, so new catalog types get added to the group table.
func (a *App) reportUngroupedTypes(snap *catalog.Snapshot) {
	groups := catalog.GroupTypes(catalog.DefaultGroups, snap.Types())
	if len(groups) == 0 {
		return
	}
	last := groups[len(groups)-1]
	if last.Name != catalog.OtherGroupName {
		return
	}
	a.logger.Warn("catalog has ungrouped product types",
		slog.String("source", snap.Source),
		slog.Any("types", last.Types),
	)
}

// sessionSecret returns the configured HMAC key. Outside production an unset
// secret is replaced by a random one, which invalidates sessions on restart.
func (a *App) sessionSecret() ([]byte, error) {
	if a.cfg.SessionSecret != "" {
		return []byte(a.cfg.SessionSecret), nil
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate session secret: %w", err)
	}
	a.logger.Warn("SESSION_SECRET not set, using a random secret")
	return secret, nil
}

// Run starts the HTTP server and the catalog reloader and blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		if err := a.reloader.Run(ctx); err != nil {
			a.logger.Error("catalog reloader stopped", slog.String("error", err.Error()))
		}
	}()

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline. Open wishlist
	// streams are ended through RegisterOnShutdown.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		_ = a.httpServer.Close()
	}
	a.stopStreams()

	a.closeClients()

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}

// closeClients closes the Kafka producer and Redis client, if any.
func (a *App) closeClients() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
}
