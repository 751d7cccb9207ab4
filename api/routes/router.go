package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/controllers"
	authcontrollers "github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/controllers/auth"
	componentcontrollers "github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/controllers/components"
	employeecontrollers "github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/controllers/employees"
	inventorycontrollers "github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/controllers/inventory"
	menucontrollers "github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/controllers/menu"
	ordercontrollers "github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/controllers/orders"
	salescontrollers "github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/controllers/sales"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/middleware"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/auth"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/components"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/employees"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/inventory"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/menu"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/orders"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/sales"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/auth/session"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/config"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/enums"
	pkgerrors "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/errors"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/metrics"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/redis"
)

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Cache is the redis surface the router needs for readiness, idempotency
// and login throttling.
type Cache interface {
	redis.IdempotencyStore
	rateLimiter
	Ping(ctx context.Context) error
}

// Services groups the domain services mounted by the router.
type Services struct {
	Auth       auth.Service
	Orders     orders.Service
	Menu       menu.Service
	Components components.Service
	Inventory  inventory.Service
	Employees  employees.Service
	Sales      sales.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	cache Cache,
	sessions session.AccessSessionChecker,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmployeeLimit,
	)

	readyChecks := []controllers.ReadyCheck{{Name: "db", Pinger: dbP}}
	if cache != nil {
		readyChecks = append(readyChecks, controllers.ReadyCheck{Name: "redis", Pinger: cache})
	} else {
		readyChecks = append(readyChecks, controllers.ReadyCheck{Name: "redis"})
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readyChecks...))
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	var (
		rateStore   rateLimiter
		idempotency redis.IdempotencyStore
	)
	if cache != nil {
		rateStore = cache
		idempotency = cache
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).Post("/login", authcontrollers.Login(svcs.Auth, logg))
		r.Post("/refresh", authcontrollers.Refresh(svcs.Auth, logg))
		r.Post("/logout", authcontrollers.Logout(svcs.Auth, logg))
	})

	r.Route("/api", func(r chi.Router) {
		// Kiosk and till reads plus order placement stay public.
		r.Group(func(r chi.Router) {
			r.Get("/menu-items", menucontrollers.List(svcs.Menu, logg))
			r.Get("/menu-items/{menuItemId}", menucontrollers.Get(svcs.Menu, logg))
			r.Get("/item-components", componentcontrollers.List(svcs.Components, logg))
			r.Get("/item-components/{componentId}", componentcontrollers.Get(svcs.Components, logg))
			r.Get("/item-components/{componentId}/ingredients", componentcontrollers.Ingredients(svcs.Components, logg))
			r.Get("/inventory", inventorycontrollers.List(svcs.Inventory, logg))
			r.With(middleware.Idempotency(idempotency, cfg.Orders.IdempotencyTTL, logg,
				middleware.WithBodyLimit(ordercontrollers.MaxBodyBytes, pkgerrors.CodeInvalidCart))).
				Post("/orders", ordercontrollers.Submit(svcs.Orders, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))
			r.Use(middleware.RequireRole(logg, enums.EmployeeRoleManager))

			r.Get("/orders", ordercontrollers.List(svcs.Orders, logg))
			r.Get("/orders/{orderId}", ordercontrollers.Detail(svcs.Orders, logg))

			r.Post("/menu-items", menucontrollers.Create(svcs.Menu, logg))
			r.Put("/menu-items/{menuItemId}", menucontrollers.Update(svcs.Menu, logg))
			r.Delete("/menu-items/{menuItemId}", menucontrollers.Delete(svcs.Menu, logg))

			r.Post("/item-components", componentcontrollers.Create(svcs.Components, logg))
			r.Put("/item-components/{componentId}", componentcontrollers.Update(svcs.Components, logg))
			r.Delete("/item-components/{componentId}", componentcontrollers.Delete(svcs.Components, logg))

			r.Get("/inventory/low-stock", inventorycontrollers.LowStock(svcs.Inventory, logg))
			r.Post("/inventory", inventorycontrollers.Create(svcs.Inventory, logg))
			r.Get("/inventory/{ingredientId}", inventorycontrollers.Get(svcs.Inventory, logg))
			r.Put("/inventory/{ingredientId}", inventorycontrollers.Update(svcs.Inventory, logg))
			r.Delete("/inventory/{ingredientId}", inventorycontrollers.Delete(svcs.Inventory, logg))
			r.Post("/inventory/{ingredientId}/adjust", inventorycontrollers.Adjust(svcs.Inventory, logg))
			r.Get("/inventory/{ingredientId}/movements", inventorycontrollers.Movements(svcs.Inventory, logg))

			r.Get("/employees", employeecontrollers.List(svcs.Employees, logg))
			r.Post("/employees", employeecontrollers.Create(svcs.Employees, logg))
			r.Get("/employees/{employeeId}", employeecontrollers.Get(svcs.Employees, logg))
			r.Put("/employees/{employeeId}", employeecontrollers.Update(svcs.Employees, logg))
			r.Delete("/employees/{employeeId}", employeecontrollers.Delete(svcs.Employees, logg))

			r.Get("/sales", salescontrollers.Daily(svcs.Sales, logg))
		})
	})

	return r
}
