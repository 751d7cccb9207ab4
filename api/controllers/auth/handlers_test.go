package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/auth"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/enums"
	pkgerrors "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/errors"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
)

type stubAuthService struct {
	refreshAccess  string
	refreshToken   string
	loggedOutToken string
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	if req.Password != "pw" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	return &auth.LoginResponse{AccessToken: "access", RefreshToken: "refresh", Role: enums.EmployeeRoleManager}, nil
}

func (s *stubAuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*auth.TokenPair, error) {
	s.refreshAccess = accessToken
	s.refreshToken = refreshToken
	return &auth.TokenPair{AccessToken: "access-2", RefreshToken: "refresh-2"}, nil
}

func (s *stubAuthService) Logout(ctx context.Context, accessToken string) error {
	s.loggedOutToken = accessToken
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "auth-controller-test", Output: io.Discard})
}

func TestLoginSetsTokenHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"employee_id":1,"password":"pw"}`))
	Login(&stubAuthService{}, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "access", rec.Header().Get(TokenHeader))
	require.Contains(t, rec.Body.String(), `"refresh_token":"refresh"`)
	require.Contains(t, rec.Body.String(), `"role":"manager"`)
}

func TestLoginErrors(t *testing.T) {
	cases := map[string]struct {
		body   string
		status int
	}{
		"wrong password":   {`{"employee_id":1,"password":"nope"}`, http.StatusUnauthorized},
		"missing employee": {`{"password":"pw"}`, http.StatusBadRequest},
		"string id":        {`{"employee_id":"one","password":"pw"}`, http.StatusBadRequest},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Login(&stubAuthService{}, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tc.body)))
			require.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestRefreshRequiresBearer(t *testing.T) {
	svc := &stubAuthService{}

	rec := httptest.NewRecorder()
	Refresh(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/refresh", strings.NewReader(`{"refresh_token":"r"}`)))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", strings.NewReader(`{"refresh_token":"r"}`))
	req.Header.Set("Authorization", "Bearer old-access")
	rec = httptest.NewRecorder()
	Refresh(svc, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "old-access", svc.refreshAccess)
	require.Equal(t, "r", svc.refreshToken)
	require.Equal(t, "access-2", rec.Header().Get(TokenHeader))
}

func TestLogoutRevokesPresentedToken(t *testing.T) {
	svc := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer current")
	rec := httptest.NewRecorder()
	Logout(svc, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "current", svc.loggedOutToken)
	require.JSONEq(t, `{"status":"logged_out"}`, rec.Body.String())
}
