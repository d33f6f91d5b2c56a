package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storebill/backend/internal/cache"
	"storebill/backend/internal/config"
	"storebill/backend/internal/httpapi"
	"storebill/backend/internal/kv"
	pgkv "storebill/backend/internal/kv/postgres"
	sqlitekv "storebill/backend/internal/kv/sqlite"
	"storebill/backend/internal/service"
	"storebill/backend/internal/store/blobstore"
	"storebill/backend/pkg/logging"
)

func main() {
	logging.Setup()

	cfg := config.Load()
	if err := validateSecurityConfig(cfg); err != nil {
		slog.Error("invalid security configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	closers := make([]func() error, 0, 2)

	kvStore, closeKV, err := openKV(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	if closeKV != nil {
		closers = append(closers, closeKV)
	}
	repo := blobstore.New(kvStore)

	receiptCache := cache.ReceiptCache(cache.NoopReceiptCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisReceiptCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			slog.Warn("redis unavailable, using noop receipt cache", "error", err)
		} else {
			receiptCache = redisCache
			closers = append(closers, redisCache.Close)
			slog.Info("receipt cache: redis")
		}
	} else {
		slog.Info("receipt cache: noop")
	}

	svc := service.New(repo, receiptCache, time.Duration(cfg.ReceiptCacheTTLSeconds)*time.Second)
	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, repo)
	api := httpapi.New(svc, auth, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("billing backend listening", "addr", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("shutdown error", "error", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			slog.Warn("close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

// openKV selects the persistence backend: PostgreSQL when DATABASE_URL is
// set, the in-memory store when SQLITE_PATH is the literal "memory", and the
// local SQLite file otherwise.
func openKV(ctx context.Context, cfg config.Config) (kv.Store, func() error, error) {
	if cfg.DatabaseURL != "" {
		pg, err := pgkv.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres unavailable and DATABASE_URL is set: %w", err)
		}
		slog.Info("store: postgres")
		return pg, pg.Close, nil
	}

	if cfg.SQLitePath == "memory" {
		slog.Info("store: in-memory")
		return kv.NewMemory(), nil, nil
	}

	sq, err := sqlitekv.New(cfg.SQLitePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite store at %s: %w", cfg.SQLitePath, err)
	}
	slog.Info("store: sqlite", "path", cfg.SQLitePath)
	return sq, sq.Close, nil
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	return nil
}
