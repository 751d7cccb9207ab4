package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/cron"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/inventory"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/config"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/metrics"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/migrate"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/outbox"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/redis"
)

const serviceName = "cron-worker"

func main() {
	bootLog := logger.New(logger.Options{ServiceName: serviceName})
	if err := godotenv.Load(); err != nil {
		bootLog.Warn(context.Background(), ".env file not found, relying on environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		bootLog.Error(context.Background(), "cron worker exited", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Service.Kind = serviceName

	logg := logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer closeQuietly(logg, "database", dbClient.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	// Every replica runs the loop; the redis lock keeps one cycle per interval.
	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer closeQuietly(logg, "redis", redisClient.Close)

	lock, err := cron.NewRedisLock(redisClient, cron.LockKey(cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		return err
	}

	jobs, err := buildJobs(cfg, logg, dbClient)
	if err != nil {
		return err
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Jobs:     jobs,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		return err
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"interval":    cfg.Cron.Interval.String(),
		"jobs":        len(jobs),
	})
	logg.Info(ctx, "cron.worker_started")

	err = service.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logg.Info(ctx, "cron.worker_stopped")
	return nil
}

func buildJobs(cfg *config.Config, logg *logger.Logger, dbClient *db.Client) ([]cron.Job, error) {
	retention, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:           logg,
		DB:               dbClient,
		Outbox:           outbox.NewRepository(dbClient.DB()),
		Retention:        cfg.Cron.OutboxRetention,
		TerminalAttempts: cfg.Outbox.MaxAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("outbox retention job: %w", err)
	}
	report, err := cron.NewLowStockReportJob(logg, inventory.NewRepository(dbClient.DB()))
	if err != nil {
		return nil, fmt.Errorf("low stock report job: %w", err)
	}
	return []cron.Job{retention, report}, nil
}

func closeQuietly(logg *logger.Logger, what string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logg.Error(context.Background(), "close "+what, err)
	}
}
