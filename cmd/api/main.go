package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/e-ration/eration/internal/config"
	"github.com/e-ration/eration/internal/infra"
	"github.com/e-ration/eration/internal/logging"
	"github.com/e-ration/eration/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.AppEnv, cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	var db *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		db, err = infra.NewPostgresPool(ctx, cfg.DatabaseURL, cfg.AppName)
		if err != nil {
			logger.Fatal("connect postgres", zap.Error(err))
		}
		defer db.Close()

		if err := infra.EnsureSchema(ctx, db); err != nil {
			logger.Fatal("prepare schema", zap.Error(err))
		}
		if cfg.IsDev() {
			if err := infra.SeedDemoDirectory(ctx, db); err != nil {
				logger.Fatal("seed directory", zap.Error(err))
			}
		}
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory directory and storage")
	}

	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = infra.NewRedisClient(ctx, cfg.RedisURL, cfg.AppName)
		if err != nil {
			logger.Fatal("connect redis", zap.Error(err))
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", zap.Error(err))
			}
		}()
	} else {
		logger.Warn("REDIS_URL not set, OTP challenges are process-local")
	}

	srv, err := server.New(cfg, db, cache, logger)
	if err != nil {
		logger.Fatal("build server", zap.Error(err))
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-srvErrCh:
		if err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}
