package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"kitchenos/pkg/api"
	"kitchenos/pkg/config"
	"kitchenos/pkg/idempotency"
	"kitchenos/pkg/logger"
	"kitchenos/pkg/otel"
	"kitchenos/pkg/recipe"
	"kitchenos/pkg/recipe/memory"
)

// @title KitchenOS API
// @version 1.0
// @description Multi-tenant recipe catalog
// @BasePath /
func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.New(os.Stderr, logger.LevelError, "kitchenos", nil).Error(context.Background(), "load config", "error", err)
		return 1
	}

	lvl, _ := logger.ParseLevel(cfg.Log.Level)
	var log *logger.Logger
	if cfg.Log.File != "" {
		log = logger.NewFile(os.Stdout, lvl, "kitchenos", otel.GetTraceID, logger.FileConfig{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
		})
	} else {
		log = logger.New(os.Stdout, lvl, "kitchenos", otel.GetTraceID)
	}
	defer log.Sync()

	ctx := context.Background()
	tp, shutdownTracing, err := otel.InitTracing(log, otel.Config{ServiceName: "kitchenos", Host: cfg.Tracing.Host, Probability: cfg.Tracing.Probability})
	if err != nil {
		log.Error(ctx, "init tracing", "error", err)
		return 1
	}
	defer shutdownTracing(context.Background())

	fields, _ := cfg.Fields()
	repo := memory.New(memory.WithSearchFields(fields...))
	if cfg.Store.Seed {
		ids, err := recipe.Seed(ctx, repo, 1)
		if err != nil {
			log.Error(ctx, "seed recipes", "error", err)
			return 1
		}
		log.Info(ctx, "seeded demo recipes", "tenant", 1, "ids", ids)
	}

	var idem idempotency.Store
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Error(ctx, "redis ping", "addr", cfg.Redis.Addr, "error", err)
			return 1
		}
		idem = idempotency.NewRedisStore(rdb, cfg.API.IdempotencyTTL)
		log.Info(ctx, "idempotency backed by redis", "addr", cfg.Redis.Addr)
	} else {
		idem = idempotency.NewMemoryStore(cfg.API.IdempotencyTTL)
	}

	h := api.NewHandler(repo, log, api.Options{
		Idempotency:   idem,
		Tracer:        tp.Tracer("kitchenos"),
		DefaultTenant: cfg.API.DefaultTenant,
	})
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      h.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", cfg.Server.Addr, "search_fields", cfg.Store.SearchFields)
		errc <- srv.ListenAndServe()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "server closed", "error", err)
			return 1
		}
	case s := <-sig:
		log.Info(ctx, "shutting down", "signal", s.String())
		sctx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Error(ctx, "shutdown", "error", err)
			return 1
		}
	}
	log.Info(ctx, "stopped", "recipes", repo.Len(ctx))
	return 0
}
