package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/metrics"
)

// Logging writes one request.complete line per request and feeds httpMetrics
// under the matched chi route pattern. httpMetrics may be nil.
func Logging(logg *logger.Logger, httpMetrics *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"method": r.Method,
					"path":   r.URL.Path,
				})
				logg.Debug(ctx, "request.start")
			}

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			started := time.Now()
			next.ServeHTTP(ww, r.WithContext(ctx))
			elapsed := time.Since(started)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			httpMetrics.Observe(r.Method, routeLabel(r), status, elapsed)

			if logg == nil {
				return
			}
			ctx = logg.WithFields(ctx, map[string]any{
				"status":      status,
				"bytes":       ww.BytesWritten(),
				"duration_ms": elapsed.Milliseconds(),
			})
			if status >= http.StatusInternalServerError {
				logg.Warn(ctx, "request.complete")
				return
			}
			logg.Info(ctx, "request.complete")
		})
	}
}

// routeLabel uses the route pattern so ids in the path do not become labels.
func routeLabel(r *http.Request) string {
	rc := chi.RouteContext(r.Context())
	if rc == nil || rc.RoutePattern() == "" {
		return "unmatched"
	}
	return rc.RoutePattern()
}
