package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_storefront/internal/catalogdb"
	h "github.com/fjod/go_storefront/internal/http"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	port := getEnv("CATALOG_PORT", "8081")
	dbPath := getEnv("DB_PATH", "./catalog.db")
	migrationsPath := getEnv("MIGRATIONS_PATH", "./internal/catalogdb/migrations")

	repo, err := catalogdb.NewRepository(dbPath)
	if err != nil {
		logger.Fatal("failed to create repository", zap.String("path", dbPath), zap.Error(err))
	}
	defer repo.Close()

	if err := repo.RunMigrations(migrationsPath); err != nil {
		logger.Fatal("failed to run migrations", zap.String("path", migrationsPath), zap.Error(err))
	}
	logger.Info("migrations completed successfully")

	requestTimeout := 10 * time.Second
	router := h.NewCatalogRouter(h.NewCatalogHandler(repo, requestTimeout, logger), requestTimeout)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("catalog service starting", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down catalog service...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("catalog service stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
