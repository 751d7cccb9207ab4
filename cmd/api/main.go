package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/api"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/routes"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/auth"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/components"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/employees"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/inventory"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/ledger"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/menu"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/orders"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/sales"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/auth/session"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/config"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/metrics"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/migrate"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/outbox"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/redis"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/security"
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

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	bootCtx := context.Background()

	dbClient, err := db.New(bootCtx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(bootCtx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(bootCtx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, redisClient.Close())
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics(reg)
	orderMetrics := metrics.NewOrderMetrics(reg)

	svcs, err := buildServices(cfg, logg, dbClient, sessionManager, orderMetrics)
	if err != nil {
		return err
	}

	handler := routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, reg, httpMetrics, svcs)
	server := api.NewServer(cfg, handler)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":    cfg.App.Env,
		"addr":   server.Addr,
		"driver": dbClient.Driver(),
	})

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "api server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildServices(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	sessionManager *session.Manager,
	orderMetrics *metrics.OrderMetrics,
) (routes.Services, error) {
	gdb := dbClient.DB()
	hasher := security.NewHasher(cfg.Password)

	employeeRepo := employees.NewRepository(gdb)
	authService, err := auth.NewService(auth.ServiceParams{
		Employees:      employeeRepo,
		Passwords:      hasher,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		Logger:         logg,
	})
	if err != nil {
		return routes.Services{}, err
	}
	employeeService, err := employees.NewService(dbClient, employeeRepo, hasher)
	if err != nil {
		return routes.Services{}, err
	}

	ledgerService, err := ledger.NewService(ledger.NewRepository(gdb))
	if err != nil {
		return routes.Services{}, err
	}
	inventoryService, err := inventory.NewService(dbClient, inventory.NewRepository(gdb), ledgerService, logg)
	if err != nil {
		return routes.Services{}, err
	}

	menuService, err := menu.NewService(dbClient, menu.NewRepository(gdb))
	if err != nil {
		return routes.Services{}, err
	}
	componentService, err := components.NewService(dbClient, components.NewRepository(gdb))
	if err != nil {
		return routes.Services{}, err
	}

	orderService, err := orders.NewService(
		dbClient,
		orders.NewRepository(gdb),
		ledgerService,
		outbox.NewService(outbox.NewRepository(gdb), logg),
		orderMetrics,
		logg,
		orders.Options{EnforceComposition: cfg.Orders.EnforceComposition},
	)
	if err != nil {
		return routes.Services{}, err
	}

	salesService, err := sales.NewService(sales.NewRepository(gdb))
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:       authService,
		Orders:     orderService,
		Menu:       menuService,
		Components: componentService,
		Inventory:  inventoryService,
		Employees:  employeeService,
		Sales:      salesService,
	}, nil
}
