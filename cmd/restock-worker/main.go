package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/inventory"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/inventory/consumer"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/config"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/outbox/dedupe"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/pubsub"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "restock-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = "restock-worker"

	logg = logger.New(logger.Options{
		ServiceName: "restock-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if cfg.PubSub.InventorySubscription == "" {
		requireResource(ctx, logg, "inventory subscription", errors.New(config.EnvPubSubInventorySubscription+" is required"))
	}

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer pubsubClient.Close()
	requireResource(ctx, logg, "inventory subscription", pubsubClient.CheckSubscription(ctx, cfg.PubSub.InventorySubscription))

	var claims consumer.EventClaims
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		requireResource(ctx, logg, "redis", err)
		defer redisClient.Close()

		guard, err := dedupe.NewGuard(redisClient, cfg.Outbox.ConsumerDedupeTTL)
		requireResource(ctx, logg, "event dedupe", err)
		claims = guard
	} else {
		logg.Warn(ctx, "redis not configured, redelivered events will alert again")
	}

	lowStock, err := consumer.NewLowStockConsumer(
		inventory.NewRepository(dbClient.DB()),
		pubsubClient.Subscription(cfg.PubSub.InventorySubscription),
		claims,
		logg,
	)
	requireResource(ctx, logg, "low stock consumer", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"serviceKind":  cfg.Service.Kind,
		"env":          cfg.App.Env,
		"subscription": cfg.PubSub.InventorySubscription,
	})
	logg.Info(runCtx, "restock worker ready")

	if err := lowStock.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "restock worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(runCtx, "restock worker shutting down gracefully")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
