package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/client-query-service/internal/api/http"
	"github.com/spec-kit/client-query-service/internal/config"
	"github.com/spec-kit/client-query-service/internal/events"
	"github.com/spec-kit/client-query-service/internal/observability"
	"github.com/spec-kit/client-query-service/internal/persistence"
	"github.com/spec-kit/client-query-service/internal/repository"
	"github.com/spec-kit/client-query-service/internal/service"
	"github.com/spec-kit/client-query-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to open storage", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer store.Close()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification), logger)

	app := httptransport.NewApp(httptransport.Dependencies{
		Config:     *cfg,
		Logger:     logger,
		Metrics:    observability.NewMetrics(),
		Store:      store,
		Redis:      redis,
		Dispatcher: dispatcher,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("driver", store.Driver))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
