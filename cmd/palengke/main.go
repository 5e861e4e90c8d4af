package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/palengke-app/palengke/internal/app"
	"github.com/palengke-app/palengke/internal/audit"
	"github.com/palengke-app/palengke/internal/chat"
	"github.com/palengke-app/palengke/internal/dashboard"
	"github.com/palengke-app/palengke/internal/geo"
	"github.com/palengke-app/palengke/internal/navigation"
	"github.com/palengke-app/palengke/internal/notify"
	"github.com/palengke-app/palengke/internal/observability"
	"github.com/palengke-app/palengke/internal/orders"
	"github.com/palengke-app/palengke/internal/payments"
	"github.com/palengke-app/palengke/internal/platform/cache"
	"github.com/palengke-app/palengke/internal/platform/db"
	"github.com/palengke-app/palengke/internal/products"
	"github.com/palengke-app/palengke/internal/users"
	"github.com/palengke-app/palengke/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	metrics := observability.NewMetrics()
	recorder := audit.NewRecorder(dbpool)

	queue, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init queue client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("queue close", slog.Any("error", err))
		}
	}()

	ordersRepo := orders.NewRepository(dbpool)
	ordersService := orders.NewService(ordersRepo, recorder)
	ordersHandler := orders.NewHandler(logger, ordersService, metrics)

	productsRepo := products.NewRepository(dbpool)
	productsService := products.NewService(productsRepo, recorder)
	productsHandler := products.NewHandler(logger, productsService, metrics)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo, recorder)
	usersHandler := users.NewHandler(logger, usersService, metrics)

	gateway := payments.NewGateway(cfg.PayMongoBaseURL, cfg.PayMongoSecretKey)
	paymentsRepo := payments.NewRepository(dbpool)
	paymentsService := payments.NewService(paymentsRepo, gateway, recorder)
	paymentsHandler := payments.NewHandler(logger, paymentsService, metrics)

	navigationRepo := navigation.NewRepository(dbpool)
	navigationService := navigation.NewService(navigationRepo, recorder)
	navigationHandler := navigation.NewHandler(logger, navigationService, metrics)

	chatRepo := chat.NewRepository(dbpool)
	hub := chat.NewHub(logger, chatRepo)
	go hub.Run(ctx)
	chatHandler := chat.NewHandler(logger, chatRepo, hub, metrics)

	geoClient := geo.NewClient(cfg.NominatimBaseURL)
	geoService := geo.NewService(logger, geoClient, redisClient, cfg.NominatimInterval, cfg.GeocodeCacheTTL)
	geoHandler := geo.NewHandler(logger, geoService, queue)

	notifyHandler := notify.NewHandler(logger, queue)

	dashboardService := dashboard.NewService(logger, dbpool, redisClient, cfg.DashboardCacheTTL)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService)

	auditHandler := audit.NewHandler(logger, recorder)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		OrdersHandler:     ordersHandler,
		ProductsHandler:   productsHandler,
		UsersHandler:      usersHandler,
		PaymentsHandler:   paymentsHandler,
		NavigationHandler: navigationHandler,
		ChatHandler:       chatHandler,
		GeoHandler:        geoHandler,
		NotifyHandler:     notifyHandler,
		DashboardHandler:  dashboardHandler,
		AuditHandler:      auditHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
