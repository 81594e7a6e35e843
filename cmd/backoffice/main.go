package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/comexsur/backoffice/internal/analytics"
	"github.com/comexsur/backoffice/internal/app"
	"github.com/comexsur/backoffice/internal/documents"
	"github.com/comexsur/backoffice/internal/masterdata/parties"
	"github.com/comexsur/backoffice/internal/masterdata/products"
	"github.com/comexsur/backoffice/internal/masterdata/units"
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
		logger.Warn("redis unavailable, analytics cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	documentsRepo := documents.NewRepository(pool)
	documentsService := documents.NewService(documentsRepo)
	documentsHandler := documents.NewHandler(logger, documentsService)

	productsRepo := products.NewRepository(pool)
	productsService := products.NewService(productsRepo)
	productsHandler := products.NewHandler(logger, productsService)

	unitsRepo := units.NewRepository(pool)
	unitsHandler := units.NewHandler(logger, unitsRepo)

	partiesRepo := parties.NewRepository(pool)
	partiesHandler := parties.NewHandler(logger, partiesRepo)

	sensitivity := analytics.CaseInsensitive
	if cfg.SearchCaseSensitive {
		sensitivity = analytics.CaseSensitive
	}
	analyticsRepo := analytics.NewRepository(pool)
	analyticsCache := analytics.NewCache(redisClient, cfg.AnalyticsCacheTTL)
	analyticsService := analytics.NewService(analyticsRepo, analyticsCache, sensitivity, logger)
	analyticsHandler := analytics.NewHandler(logger, analyticsService)

	if err := analyticsCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}

	var jobsHandler *jobs.Handler
	if redisClient != nil {
		inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		enqueueClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		if err != nil {
			logger.Error("init enqueue client", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := enqueueClient.Close(); err != nil {
				logger.Warn("enqueue client close", slog.Any("error", err))
			}
		}()
		jobsHandler = jobs.NewHandler(inspector, enqueueClient, logger)
	}

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		DocumentsHandler: documentsHandler,
		ProductsHandler:  productsHandler,
		UnitsHandler:     unitsHandler,
		PartiesHandler:   partiesHandler,
		AnalyticsHandler: analyticsHandler,
		JobsHandler:      jobsHandler,
	})

	srv := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server starting", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
