package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/avolkov/pharmtrack-backend/internal/availability"
	"github.com/avolkov/pharmtrack-backend/internal/catalog"
	"github.com/avolkov/pharmtrack-backend/internal/notify"
	"github.com/avolkov/pharmtrack-backend/internal/subscriptions"
	"github.com/avolkov/pharmtrack-backend/internal/users"
	"github.com/avolkov/pharmtrack-backend/internal/worker"
	"github.com/avolkov/pharmtrack-backend/pkg/config"
	"github.com/avolkov/pharmtrack-backend/pkg/db"
	"github.com/avolkov/pharmtrack-backend/pkg/logger"
	"github.com/avolkov/pharmtrack-backend/pkg/mailer"
	"github.com/avolkov/pharmtrack-backend/pkg/metrics"
	"github.com/avolkov/pharmtrack-backend/pkg/migrate"
	"github.com/avolkov/pharmtrack-backend/pkg/redis"
)

const lockKeyFormat = "pt:notify-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "notify-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "notify-worker"

	logg = logger.New(logger.Options{
		ServiceName: "notify-worker",
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

	notifyService, err := buildNotifyService(cfg, logg, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create notify service", err)
		os.Exit(1)
	}

	notifyJob, err := worker.NewNotifyJob(worker.NotifyJobParams{
		Logger: logg,
		Runner: notifyService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notify job", err)
		os.Exit(1)
	}

	lock, err := worker.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.Notify.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create worker lock", err)
		os.Exit(1)
	}

	service, err := worker.NewService(worker.ServiceParams{
		Logger:   logg,
		Registry: worker.NewRegistry(notifyJob),
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Notify.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create worker service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting notify worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "notify worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "notify worker shutting down gracefully")
}

func buildNotifyService(cfg *config.Config, logg *logger.Logger, dbClient *db.Client) (notify.Service, error) {
	return notify.NewService(
		subscriptions.NewRepository(dbClient.DB()),
		availability.NewRepository(dbClient.DB()),
		users.NewRepository(dbClient.DB()),
		catalog.NewRepository(dbClient.DB()),
		mailer.New(cfg.SMTP, logg),
		metrics.NewDispatchMetrics(prometheus.DefaultRegisterer),
		logg,
		cfg.Notify,
	)
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
