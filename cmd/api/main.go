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

	"github.com/prometheus/client_golang/prometheus"

	"lifeboard/internal/cache"
	"lifeboard/internal/config"
	"lifeboard/internal/db"
	httpx "lifeboard/internal/http"
	"lifeboard/internal/observability"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	// tracing is optional; without an endpoint spans stay local no-ops
	if cfg.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracer(context.Background(), "lifeboard-api", cfg.OTLPEndpoint)
		if err != nil {
			log.Error("tracer init failed", "err", err)
		} else {
			defer func() {
				ctx, cancel := config.WithTimeout(5 * time.Second)
				defer cancel()
				_ = shutdown(ctx)
			}()
		}
	}

	pool, err := db.NewPool(cfg.DBURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	migrateCtx, cancelMigrate := config.WithTimeout(30 * time.Second)
	defer cancelMigrate()

	if err := db.Migrate(migrateCtx, pool); err != nil {
		log.Error("schema migration failed", "err", err)
		os.Exit(1)
	}

	if err := db.EnsureAdminUser(migrateCtx, pool, cfg); err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)

	reportCache := buildReportCache(cfg, log)

	router := httpx.NewRouter(httpx.RouterDeps{
		Cfg:         cfg,
		Log:         log,
		Pool:        pool,
		Prom:        prom,
		Registry:    registry,
		ReportCache: reportCache,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

// buildReportCache prefers redis so every api replica shares one report
// cache; a local TTL map is the fallback.
func buildReportCache(cfg config.Config, log *slog.Logger) cache.Store {
	if cfg.RedisAddr == "" {
		log.Info("report cache: in-process")
		return cache.NewMemory(cfg.ReportCacheTTL)
	}

	rc := cache.NewRedis(cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, cfg.ReportCacheTTL)

	pingCtx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	if err := rc.Ping(pingCtx); err != nil {
		log.Info("report cache: redis unreachable, using in-process", "err", err)
		_ = rc.Close()
		return cache.NewMemory(cfg.ReportCacheTTL)
	}

	log.Info("report cache: redis", "addr", cfg.RedisAddr)
	return rc
}
