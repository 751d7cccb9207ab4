package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/config"
)

var (
	ErrNoSecret     = errors.New("jwt secret is required")
	ErrNoIssuer     = errors.New("jwt issuer is required")
	ErrBadLifetime  = errors.New("jwt expiration minutes must be positive")
	ErrNotEmployee  = errors.New("token carries no employee")
	signingMethod   = jwt.SigningMethodHS256
	clockSkewLeeway = 5 * time.Second
)

// AccessTokenTTL is the configured access token lifetime.
func AccessTokenTTL(cfg config.JWTConfig) time.Duration {
	return time.Duration(cfg.ExpirationMinutes) * time.Minute
}

func checkConfig(cfg config.JWTConfig) error {
	switch {
	case cfg.Secret == "":
		return ErrNoSecret
	case cfg.Issuer == "":
		return ErrNoIssuer
	case cfg.ExpirationMinutes <= 0:
		return ErrBadLifetime
	}
	return nil
}

// MintAccessToken signs an HS256 token for the employee. The subject is the
// employee id and the jti names the refresh session.
func MintAccessToken(cfg config.JWTConfig, now time.Time, payload AccessTokenPayload) (string, error) {
	if err := checkConfig(cfg); err != nil {
		return "", err
	}
	if payload.EmployeeID <= 0 || !payload.Role.IsValid() {
		return "", fmt.Errorf("%w: id %d role %q", ErrNotEmployee, payload.EmployeeID, payload.Role)
	}

	jti := strings.TrimSpace(payload.JTI)
	if jti == "" {
		jti = uuid.NewString()
	}
	claims := AccessTokenClaims{
		EmployeeID: payload.EmployeeID,
		Role:       payload.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    cfg.Issuer,
			Subject:   strconv.FormatInt(payload.EmployeeID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTTL(cfg))),
		},
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// ParseAccessToken validates signature, issuer and expiry.
func ParseAccessToken(cfg config.JWTConfig, raw string) (*AccessTokenClaims, error) {
	return parse(cfg, raw, jwt.WithIssuer(cfg.Issuer), jwt.WithLeeway(clockSkewLeeway))
}

// ParseAccessTokenAllowExpired checks only the signature so refresh can read
// the jti of an access token that has already lapsed.
func ParseAccessTokenAllowExpired(cfg config.JWTConfig, raw string) (*AccessTokenClaims, error) {
	return parse(cfg, raw, jwt.WithoutClaimsValidation())
}

func parse(cfg config.JWTConfig, raw string, opts ...jwt.ParserOption) (*AccessTokenClaims, error) {
	if cfg.Secret == "" {
		return nil, ErrNoSecret
	}
	parser := jwt.NewParser(append(opts, jwt.WithValidMethods([]string{signingMethod.Alg()}))...)

	claims := &AccessTokenClaims{}
	if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(cfg.Secret), nil
	}); err != nil {
		return nil, err
	}
	if claims.EmployeeID <= 0 || !claims.Role.IsValid() {
		return nil, ErrNotEmployee
	}
	if claims.Subject != "" && claims.Subject != strconv.FormatInt(claims.EmployeeID, 10) {
		return nil, fmt.Errorf("%w: subject %q does not match employee %d", ErrNotEmployee, claims.Subject, claims.EmployeeID)
	}
	return claims, nil
}
