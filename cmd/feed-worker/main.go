package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/avolkov/pharmtrack-backend/internal/availability"
	"github.com/avolkov/pharmtrack-backend/internal/catalog"
	"github.com/avolkov/pharmtrack-backend/internal/feed"
	"github.com/avolkov/pharmtrack-backend/internal/pharmacies"
	"github.com/avolkov/pharmtrack-backend/pkg/config"
	"github.com/avolkov/pharmtrack-backend/pkg/db"
	"github.com/avolkov/pharmtrack-backend/pkg/logger"
	"github.com/avolkov/pharmtrack-backend/pkg/migrate"
	"github.com/avolkov/pharmtrack-backend/pkg/pubsub"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "feed-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = "feed-worker"

	logg = logger.New(logger.Options{
		ServiceName: "feed-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	requireResource(ctx, logg, "migrations", migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient))

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer pubsubClient.Close()

	availabilityRepo := availability.NewRepository(dbClient.DB())
	availabilityService, err := availability.NewService(
		availabilityRepo,
		dbClient,
		catalog.NewRepository(dbClient.DB()),
		pharmacies.NewRepository(dbClient.DB()),
	)
	requireResource(ctx, logg, "availability service", err)

	feedConsumer, err := feed.NewConsumer(availabilityService, pubsubClient.AvailabilitySubscription(), logg)
	requireResource(ctx, logg, "feed consumer", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"serviceKind": cfg.Service.Kind,
		"env":         cfg.App.Env,
	})
	logg.Info(runCtx, "feed worker ready")

	if err := feedConsumer.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "feed worker stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
