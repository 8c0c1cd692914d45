package main

import (
	"context"
	"crypto/rand"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/catalog"
	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/config"
	h "github.com/fjod/go_storefront/internal/http"
	"github.com/fjod/go_storefront/internal/kv"
	"github.com/fjod/go_storefront/internal/publisher"
	"github.com/fjod/go_storefront/internal/session"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open session store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer closeStore()

	orders := publisher.NewOrderPublisher(publisher.NewWriter(cfg.OrdersTopic, cfg.KafkaBrokers...), logger)
	defer orders.Close()
	logger.Info("order publisher configured",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.OrdersTopic))

	cache := catalog.NewCache(catalog.NewClient(cfg.CatalogURL, cfg.CatalogTimeout), logger)
	if err := cache.Load(ctx); err != nil {
		// Sessions retry lazily; a cold catalog is not fatal.
		logger.Warn("initial catalog load failed", zap.String("url", cfg.CatalogURL), zap.Error(err))
	}

	manager := session.NewManager(session.Options{
		Store:        store,
		Catalog:      cache,
		Publisher:    orders,
		CartPolicy:   cart.Policy{TTL: cfg.CartTTL, SchemaVersion: cfg.CartSchemaVersion},
		DraftVersion: cfg.DraftVersion,
		DraftTTL:     cfg.DraftTTL,
		Rules:        checkout.NewCartRules(cfg.CourierMinOrder),
		IdleTimeout:  cfg.SessionIdleTimeout,
		Logger:       logger,
	})
	go manager.Run(ctx)

	sessionKey := cfg.SessionKey
	if len(sessionKey) == 0 {
		sessionKey = make([]byte, 32)
		if _, err := rand.Read(sessionKey); err != nil {
			logger.Fatal("failed to generate session key", zap.Error(err))
		}
		logger.Warn("SESSION_KEY not set, cookies will not survive a restart")
	}
	cookies := sessions.NewCookieStore(sessionKey)
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.StoreTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	requestTimeout := 30 * time.Second
	handler := h.NewSessionHandler(manager, cookies, requestTimeout, logger)
	router := h.NewStorefrontRouter(handler, requestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("storefront starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (kv.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreBackendMongo:
		db, err := kv.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		store := kv.NewMongoStore(db, cfg.StoreTTL)
		if err := store.CreateIndexes(ctx); err != nil {
			_ = db.Client().Disconnect(ctx)
			return nil, nil, err
		}
		logger.Info("connected to MongoDB", zap.String("uri", cfg.MongoURI), zap.String("db", cfg.MongoDBName))
		return store, func() { _ = db.Client().Disconnect(context.Background()) }, nil

	case config.StoreBackendMemory:
		logger.Warn("using in-memory session store, state is lost on restart")
		return kv.NewMemoryStore(), func() {}, nil

	default:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		logger.Info("redis ping succeeded", zap.String("addr", cfg.RedisAddr))
		return kv.NewRedisStore(client, cfg.StoreTTL), func() { _ = client.Close() }, nil
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}
