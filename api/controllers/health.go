package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/responses"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/config"
	pkgerrors "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/errors"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
)

const readyTimeout = 2 * time.Second

// Pinger is a dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadyCheck names a dependency for the readiness response.
type ReadyCheck struct {
	Name   string
	Pinger Pinger
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-POS-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every configured dependency. Checks with a nil Pinger
// are reported as disabled.
func HealthReady(cfg *config.Config, logg *logger.Logger, checks ...ReadyCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-POS-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		status := map[string]string{}
		var failed []string
		for _, check := range checks {
			if check.Pinger == nil {
				status[check.Name] = "disabled"
				continue
			}
			if err := check.Pinger.Ping(ctx); err != nil {
				logg.Warn(logg.WithFields(r.Context(), map[string]any{"dependency": check.Name, "error": err.Error()}), "health.dependency_down")
				status[check.Name] = "down"
				failed = append(failed, check.Name)
				continue
			}
			status[check.Name] = "ok"
		}

		if len(failed) > 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(status))
			return
		}
		status["status"] = "ready"
		responses.WriteSuccess(w, status)
	}
}
