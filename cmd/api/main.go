package main

import (
	"context"
	"net/http"
	"os"

	"github.com/avolkov/pharmtrack-backend/api/routes"
	"github.com/avolkov/pharmtrack-backend/internal/availability"
	"github.com/avolkov/pharmtrack-backend/internal/catalog"
	"github.com/avolkov/pharmtrack-backend/internal/notify"
	"github.com/avolkov/pharmtrack-backend/internal/pharmacies"
	"github.com/avolkov/pharmtrack-backend/internal/subscriptions"
	"github.com/avolkov/pharmtrack-backend/internal/users"
	"github.com/avolkov/pharmtrack-backend/pkg/config"
	"github.com/avolkov/pharmtrack-backend/pkg/db"
	"github.com/avolkov/pharmtrack-backend/pkg/logger"
	"github.com/avolkov/pharmtrack-backend/pkg/mailer"
	"github.com/avolkov/pharmtrack-backend/pkg/metrics"
	"github.com/avolkov/pharmtrack-backend/pkg/migrate"
	"github.com/avolkov/pharmtrack-backend/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()

	catalogRepo := catalog.NewRepository(dbClient.DB())
	pharmacyRepo := pharmacies.NewRepository(dbClient.DB())
	availabilityRepo := availability.NewRepository(dbClient.DB())
	subscriptionRepo := subscriptions.NewRepository(dbClient.DB())
	userRepo := users.NewRepository(dbClient.DB())

	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}
	pharmacyService, err := pharmacies.NewService(pharmacyRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create pharmacy service", err)
		os.Exit(1)
	}
	availabilityService, err := availability.NewService(availabilityRepo, dbClient, catalogRepo, pharmacyRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create availability service", err)
		os.Exit(1)
	}

	sender := mailer.New(cfg.SMTP, logg)
	notifyService, err := notify.NewService(
		subscriptionRepo,
		availabilityRepo,
		userRepo,
		catalogRepo,
		sender,
		metrics.NewDispatchMetrics(registry),
		logg,
		cfg.Notify,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create notify service", err)
		os.Exit(1)
	}

	subscriptionService, err := subscriptions.NewService(subscriptionRepo, catalogRepo, notifyService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create subscription service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:        cfg,
			Logger:        logg,
			DB:            dbClient,
			Redis:         redisClient,
			Catalog:       catalogService,
			Pharmacies:    pharmacyService,
			Availability:  availabilityService,
			Subscriptions: subscriptionService,
			Notify:        notifyService,
			Metrics:       registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
