package middleware

import (
	"fmt"
	"net/http"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/responses"
	pkgerrors "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/errors"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
)

// Recoverer answers a panicking handler with the standard 500 body.
// http.ErrAbortHandler keeps propagating so net/http drops the connection.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer recoverInto(logg, w, r)
			next.ServeHTTP(w, r)
		})
	}
}

func recoverInto(logg *logger.Logger, w http.ResponseWriter, r *http.Request) {
	rec := recover()
	switch rec {
	case nil:
		return
	case http.ErrAbortHandler:
		panic(rec)
	}

	cause, ok := rec.(error)
	if !ok {
		cause = fmt.Errorf("%v", rec)
	}
	ctx := r.Context()
	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{"panic": fmt.Sprint(rec), "route": routeLabel(r)})
	}
	responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, cause, "panic recovered"))
}
