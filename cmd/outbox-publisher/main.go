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

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/config"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/metrics"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/migrate"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/outbox"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/outbox/registry"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/pubsub"
)

const serviceName = "outbox-publisher"

func main() {
	bootLog := logger.New(logger.Options{ServiceName: serviceName})
	if err := godotenv.Load(); err != nil {
		bootLog.Warn(context.Background(), ".env file not found, relying on environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		bootLog.Error(context.Background(), "outbox publisher exited", err)
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

	// Topics are resolved before any connection is opened so a bad topic
	// config fails fast.
	routes, err := registry.NewEventRegistry(cfg.PubSub)
	if err != nil {
		return fmt.Errorf("event registry: %w", err)
	}

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "close database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		return fmt.Errorf("pubsub: %w", err)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "close pubsub", err)
		}
	}()

	sender := newPubSubSender(pubsubClient)
	// Stop runs before the client closes so buffered messages still flush.
	defer sender.Stop()

	relay, err := NewRelay(RelayParams{
		Outbox:   cfg.Outbox,
		Logger:   logg,
		DB:       dbClient,
		Store:    outbox.NewRepository(dbClient.DB()),
		Registry: routes,
		Sender:   sender,
		Metrics:  metrics.NewOutboxMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		return err
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"topics":      routes.Topics(),
		"batchSize":   cfg.Outbox.BatchSize,
	})
	logg.Info(ctx, "outbox.publisher_started")

	if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logg.Info(ctx, "outbox.publisher_stopped")
	return nil
}
