package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/employees"
	pkgAuth "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/auth"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/auth/session"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/config"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db/models"
	pkgerrors "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/errors"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
)

const invalidCredentialsMessage = "invalid credentials"

// Service signs employees in and out of the till.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
}

type employeeRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Employee, error)
}

type passwordVerifier interface {
	Verify(password, encoded string) (bool, error)
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Employees      employeeRepository
	Passwords      passwordVerifier
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	Logger         *logger.Logger
	Now            func() time.Time
}

type service struct {
	employees employeeRepository
	passwords passwordVerifier
	session   sessionManager
	jwtCfg    config.JWTConfig
	logg      *logger.Logger
	now       func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Employees == nil {
		return nil, fmt.Errorf("employee repository is required")
	}
	if params.Passwords == nil {
		return nil, fmt.Errorf("password verifier is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		employees: params.Employees,
		passwords: params.Passwords,
		session:   params.SessionManager,
		jwtCfg:    params.JWTConfig,
		logg:      params.Logger,
		now:       now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	employee, err := s.authenticate(ctx, req.EmployeeID, req.Password)
	if err != nil {
		return nil, err
	}

	accessID := session.NewAccessID()
	accessToken, err := s.mint(employee, accessID)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
	}

	s.logg.Info(s.logg.WithFields(s.logg.WithEmployeeID(ctx, employee.ID), map[string]any{
		"actor_role": string(employee.Role()),
	}), "auth.login")
	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Role:         employee.Role(),
		Employee:     employees.FromModel(employee),
	}, nil
}

// Refresh accepts an expired access token so long as its refresh token is
// still on file. The role is re-read so demotions take effect on refresh.
func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error) {
	claims, err := s.parseSessionToken(accessToken)
	if err != nil {
		return nil, err
	}

	newAccessID, newRefresh, err := s.session.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	employee, err := s.employees.FindByID(ctx, claims.EmployeeID)
	if err != nil {
		_ = s.session.Revoke(ctx, newAccessID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "employee no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup employee")
	}

	token, err := s.mint(employee, newAccessID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: token, RefreshToken: newRefresh}, nil
}

func (s *service) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.parseSessionToken(accessToken)
	if err != nil {
		return err
	}
	if err := s.session.Revoke(ctx, claims.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	s.logg.Info(s.logg.WithEmployeeID(ctx, claims.EmployeeID), "auth.logout")
	return nil
}

func (s *service) authenticate(ctx context.Context, employeeID int64, password string) (*models.Employee, error) {
	if employeeID <= 0 || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	employee, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup employee")
	}
	// Rows seeded without a password cannot sign in.
	if strings.TrimSpace(employee.PasswordHash) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	valid, err := s.passwords.Verify(password, employee.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		s.logg.Warn(s.logg.WithEmployeeID(ctx, employeeID), "auth.login_failed")
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return employee, nil
}

func (s *service) mint(employee *models.Employee, accessID string) (string, error) {
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now().UTC(), pkgAuth.AccessTokenPayload{
		EmployeeID: employee.ID,
		Role:       employee.Role(),
		JTI:        accessID,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return token, nil
}

func (s *service) parseSessionToken(accessToken string) (*pkgAuth.AccessTokenClaims, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	return claims, nil
}
