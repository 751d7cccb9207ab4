package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/responses"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/enums"
	pkgerrors "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/errors"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
)

// RequireRole admits employees holding any of allowed. Mount it after Auth.
func RequireRole(logg *logger.Logger, allowed ...enums.EmployeeRole) func(http.Handler) http.Handler {
	names := make([]string, len(allowed))
	for i, role := range allowed {
		names[i] = role.String()
	}
	denied := pkgerrors.New(pkgerrors.CodeForbidden, strings.Join(names, " or ")+" role required")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if !slices.Contains(allowed, RoleFromContext(ctx)) {
				if logg != nil {
					ctx = logg.WithEmployeeID(ctx, EmployeeIDFromContext(ctx))
				}
				responses.WriteError(ctx, logg, w, denied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
