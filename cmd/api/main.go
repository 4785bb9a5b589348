package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crucial707/postboard/internal/cache"
	"github.com/crucial707/postboard/internal/clock"
	"github.com/crucial707/postboard/internal/config"
	"github.com/crucial707/postboard/internal/db"
	"github.com/crucial707/postboard/internal/scheduler"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	// ── Database ─────────────────────────────────────────────
	database, err := db.Connect(ctx, db.Options{
		Driver:       cfg.DBDriver,
		Host:         cfg.DBHost,
		Port:         cfg.DBPort,
		Name:         cfg.DBName,
		User:         cfg.DBUser,
		Password:     cfg.DBPass,
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	slog.Info("connected to database", "driver", cfg.DBDriver, "host", cfg.DBHost, "name", cfg.DBName)

	if cfg.DBMigrate {
		if err := db.Migrate(cfg.DatabaseURL()); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		slog.Info("migrations applied")
	}

	// ── Cache ────────────────────────────────────────────────
	clk := clock.NewReal()
	store, stop, err := newCacheStore(ctx, cfg, clk)
	if err != nil {
		log.Fatalf("Failed to set up %s cache: %v", cfg.CacheBackend, err)
	}
	defer stop()

	handler, err := newRouter(database, cfg, store, clk)
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		var err error
		if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
			slog.Info("starting server (HTTPS)", "port", cfg.Port)
			err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			slog.Info("starting server", "port", cfg.Port, "env", cfg.Env)
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		slog.Error("graceful shutdown", "error", err)
	}
}

// newCacheStore builds the configured cache backend. The returned func
// releases it: it stops the memory sweeper or closes the redis client.
func newCacheStore(ctx context.Context, cfg config.Config, clk clock.Clock) (cache.Store, func(), error) {
	if cfg.CacheBackend == "redis" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("using redis cache", "addr", cfg.RedisAddr)
		return cache.NewRedis(rdb, "postboard:"), func() { rdb.Close() }, nil
	}

	mem := cache.NewMemory(clk)
	sweeper, err := scheduler.Start(cfg.CacheSweepSpec, mem)
	if err != nil {
		return nil, nil, err
	}
	return mem, func() { <-sweeper.Stop().Done() }, nil
}

func setupLogger(format string) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}
