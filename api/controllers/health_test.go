package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/config"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthLive(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}
	rec := httptest.NewRecorder()
	HealthLive(cfg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "dev", rec.Header().Get("X-POS-Env"))
	require.JSONEq(t, `{"status":"live"}`, rec.Body.String())
}

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}
	logg := logger.New(logger.Options{ServiceName: "health-test", Output: io.Discard})
	ok := pingFunc(func(ctx context.Context) error { return nil })
	down := pingFunc(func(ctx context.Context) error { return errors.New("connection refused") })

	rec := httptest.NewRecorder()
	HealthReady(cfg, logg, ReadyCheck{Name: "db", Pinger: ok}, ReadyCheck{Name: "redis"}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ready","db":"ok","redis":"disabled"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	HealthReady(cfg, logg, ReadyCheck{Name: "db", Pinger: ok}, ReadyCheck{Name: "redis", Pinger: down}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), `"redis":"down"`)
}
