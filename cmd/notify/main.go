package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/avolkov/pharmtrack-backend/internal/availability"
	"github.com/avolkov/pharmtrack-backend/internal/catalog"
	"github.com/avolkov/pharmtrack-backend/internal/notify"
	"github.com/avolkov/pharmtrack-backend/internal/subscriptions"
	"github.com/avolkov/pharmtrack-backend/internal/users"
	"github.com/avolkov/pharmtrack-backend/pkg/config"
	"github.com/avolkov/pharmtrack-backend/pkg/db"
	"github.com/avolkov/pharmtrack-backend/pkg/logger"
	"github.com/avolkov/pharmtrack-backend/pkg/mailer"
	"github.com/avolkov/pharmtrack-backend/pkg/metrics"
)

// One-shot notification sweep. Scoped to a single drug with -drug-id,
// otherwise it checks every active subscription once and exits.
func main() {
	drugIDFlag := flag.String("drug-id", "", "restrict the sweep to one drug (uuid)")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "notify"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "notify",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	var drugID *uuid.UUID
	if *drugIDFlag != "" {
		parsed, err := uuid.Parse(*drugIDFlag)
		if err != nil {
			logg.Error(context.Background(), "invalid -drug-id value", err)
			os.Exit(2)
		}
		drugID = &parsed
	}

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

	notifyService, err := notify.NewService(
		subscriptions.NewRepository(dbClient.DB()),
		availability.NewRepository(dbClient.DB()),
		users.NewRepository(dbClient.DB()),
		catalog.NewRepository(dbClient.DB()),
		mailer.New(cfg.SMTP, logg),
		metrics.NewDispatchMetrics(nil),
		logg,
		cfg.Notify,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create notify service", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if drugID != nil {
		ctx = logg.WithDrugID(ctx, drugID.String())
	}

	sent, err := notifyService.Run(ctx, drugID)
	if err != nil {
		logg.Error(ctx, "notification sweep failed", err)
		os.Exit(1)
	}

	logg.Info(logg.WithField(ctx, "sent", sent), "notification sweep complete")
}
