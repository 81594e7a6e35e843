package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/comexsur/backoffice/internal/analytics"
	"github.com/comexsur/backoffice/internal/app"
	"github.com/comexsur/backoffice/internal/documents"
	"github.com/comexsur/backoffice/internal/platform/cache"
	"github.com/comexsur/backoffice/internal/platform/db"
	"github.com/comexsur/backoffice/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	documentsRepo := documents.NewRepository(pool)
	documentsService := documents.NewService(documentsRepo)

	sensitivity := analytics.CaseInsensitive
	if cfg.SearchCaseSensitive {
		sensitivity = analytics.CaseSensitive
	}
	analyticsRepo := analytics.NewRepository(pool)
	analyticsCache := analytics.NewCache(redisClient, cfg.AnalyticsCacheTTL)
	analyticsService := analytics.NewService(analyticsRepo, analyticsCache, sensitivity, logger)

	expiryJob := jobs.NewOfferExpiryJob(documentsService, analyticsService, logger)
	warmupJob := jobs.NewAnalyticsWarmupJob(analyticsService, logger)

	expiryTask, err := jobs.NewOfferExpiryTask(jobs.OfferExpiryPayload{})
	if err != nil {
		logger.Error("build expiry task", slog.Any("error", err))
		os.Exit(1)
	}
	warmupTask, err := jobs.NewAnalyticsWarmupTask(jobs.AnalyticsWarmupPayload{Reason: "nightly"})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskOfferExpiry, Handler: expiryJob.Handle},
			{Type: jobs.TaskAnalyticsWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.OfferExpiryCron, Task: expiryTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "15 2 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
