package auth

import (
	"net/http"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/middleware"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/responses"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/validators"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/auth"
	pkgerrors "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/errors"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
)

// TokenHeader mirrors the issued access token for tills that read headers.
const TokenHeader = "X-POS-Token"

// outcome is a successful auth call: the JSON body plus the access token to
// mirror in TokenHeader, if any.
type outcome struct {
	body        any
	accessToken string
}

type authCall func(svc auth.Service, r *http.Request) (outcome, error)

func handle(svc auth.Service, logg *logger.Logger, call authCall) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}
		out, err := call(svc, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if out.accessToken != "" {
			w.Header().Set(TokenHeader, out.accessToken)
		}
		responses.WriteSuccess(w, out.body)
	}
}

func presentedToken(r *http.Request) (string, error) {
	if token := middleware.BearerToken(r); token != "" {
		return token, nil
	}
	return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
}

// Login exchanges an employee id and password for a token pair.
func Login(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return handle(svc, logg, func(svc auth.Service, r *http.Request) (outcome, error) {
		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return outcome{}, err
		}
		result, err := svc.Login(r.Context(), body)
		if err != nil {
			return outcome{}, err
		}
		return outcome{body: result, accessToken: result.AccessToken}, nil
	})
}

// Refresh rotates the refresh token tied to the presented access token.
func Refresh(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return handle(svc, logg, func(svc auth.Service, r *http.Request) (outcome, error) {
		var body auth.RefreshRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return outcome{}, err
		}
		token, err := presentedToken(r)
		if err != nil {
			return outcome{}, err
		}
		pair, err := svc.Refresh(r.Context(), token, body.RefreshToken)
		if err != nil {
			return outcome{}, err
		}
		return outcome{body: pair, accessToken: pair.AccessToken}, nil
	})
}

// Logout revokes the session of the presented access token.
func Logout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return handle(svc, logg, func(svc auth.Service, r *http.Request) (outcome, error) {
		token, err := presentedToken(r)
		if err != nil {
			return outcome{}, err
		}
		if err := svc.Logout(r.Context(), token); err != nil {
			return outcome{}, err
		}
		return outcome{body: map[string]string{"status": "logged_out"}}, nil
	})
}
