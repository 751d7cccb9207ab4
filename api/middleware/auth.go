package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/responses"
	pkgAuth "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/auth"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/auth/session"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/config"
	pkgerrors "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/errors"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
)

// BearerToken reads the Authorization header. The Bearer scheme is optional;
// a bare scheme yields "".
func BearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, rest, found := strings.Cut(raw, " ")
	if !strings.EqualFold(scheme, "bearer") {
		return raw
	}
	if !found {
		return ""
	}
	return strings.TrimSpace(rest)
}

// Auth admits requests carrying a valid access token whose session is still
// live, and puts the employee on the request context. A nil sessions checker
// skips the revocation lookup.
func Auth(cfg config.JWTConfig, sessions session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticate(r.Context(), cfg, sessions, BearerToken(r))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithEmployee(r.Context(), claims.EmployeeID, claims.Role)
			if logg != nil {
				ctx = logg.WithEmployeeID(ctx, claims.EmployeeID)
				ctx = logg.WithActorRole(ctx, string(claims.Role))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(ctx context.Context, cfg config.JWTConfig, sessions session.AccessSessionChecker, token string) (*pkgAuth.AccessTokenClaims, error) {
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	// Every token is minted with a jti that indexes its refresh session.
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	if sessions == nil {
		return claims, nil
	}
	live, err := sessions.HasSession(ctx, claims.ID)
	switch {
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
	case !live:
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session revoked")
	}
	return claims, nil
}
