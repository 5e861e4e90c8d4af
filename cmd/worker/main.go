package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/palengke-app/palengke/internal/app"
	"github.com/palengke-app/palengke/internal/geo"
	"github.com/palengke-app/palengke/internal/notify"
	"github.com/palengke-app/palengke/internal/orders"
	"github.com/palengke-app/palengke/internal/platform/cache"
	"github.com/palengke-app/palengke/internal/platform/db"
	"github.com/palengke-app/palengke/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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

	pushClient := notify.NewClient("https://onesignal.com/api/v1", cfg.OneSignalAppID, cfg.OneSignalAPIKey)

	ordersRepo := orders.NewRepository(dbpool)
	addressSource := func(ctx context.Context) ([]string, error) {
		return ordersRepo.RecentShippingAddresses(ctx, time.Now().AddDate(0, 0, -7))
	}

	geoClient := geo.NewClient(cfg.NominatimBaseURL)
	geoService := geo.NewService(logger, geoClient, redisClient, cfg.NominatimInterval, cfg.GeocodeCacheTTL)

	// Nightly sweep over last week's order addresses; an empty payload tells
	// the handler to consult the address source.
	backfillTask, err := jobs.NewGeoBackfillTask(jobs.GeoBackfillPayload{})
	if err != nil {
		logger.Error("build backfill task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskPushNotify, Handler: notify.PushTaskHandler(logger, pushClient)},
			{Type: jobs.TaskGeoBackfill, Handler: geo.BackfillTaskHandler(logger, geoService, addressSource)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 3 * * *", Task: backfillTask, Options: []asynq.Option{asynq.Queue(jobs.QueueDefault)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
