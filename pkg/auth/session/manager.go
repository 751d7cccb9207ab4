// Package session tracks refresh tokens in redis, keyed by the jti of the
// access token they were issued with.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/config"
)

const refreshTokenBytes = 32

var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	errNoAccessID          = errors.New("access id is required")
)

type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	AccessSessionKey(accessID string) string
}

// AccessSessionChecker lets the auth middleware reject tokens whose session
// was revoked or rotated away.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// Manager stores only a SHA-256 digest of each refresh token.
type Manager struct {
	store Store
	ttl   time.Duration
}

func NewManager(store Store, cfg config.JWTConfig) (*Manager, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	refreshTTL := cfg.RefreshTokenTTL()
	accessTTL := time.Duration(cfg.ExpirationMinutes) * time.Minute
	switch {
	case refreshTTL <= 0:
		return nil, errors.New("refresh token ttl must be positive")
	case refreshTTL <= accessTTL:
		return nil, fmt.Errorf("refresh token ttl %s must be longer than access token ttl %s", refreshTTL, accessTTL)
	}
	return &Manager{store: store, ttl: refreshTTL}, nil
}

// NewAccessID mints the value used as both JWT jti and session key suffix.
func NewAccessID() string {
	return uuid.NewString()
}

// Generate opens a session for accessID and returns its refresh token.
func (m *Manager) Generate(ctx context.Context, accessID string) (string, error) {
	if strings.TrimSpace(accessID) == "" {
		return "", errNoAccessID
	}
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)
	if err := m.store.Set(ctx, m.store.AccessSessionKey(accessID), digest(token), m.ttl); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Rotate trades the refresh token of oldAccessID for a new session. The old
// session is closed before the new one opens, so a token can rotate once.
func (m *Manager) Rotate(ctx context.Context, oldAccessID, refreshToken string) (string, string, error) {
	if strings.TrimSpace(oldAccessID) == "" || strings.TrimSpace(refreshToken) == "" {
		return "", "", ErrInvalidRefreshToken
	}
	key := m.store.AccessSessionKey(oldAccessID)
	stored, err := m.lookup(ctx, key)
	if err != nil {
		return "", "", err
	}
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(digest(refreshToken))) != 1 {
		return "", "", ErrInvalidRefreshToken
	}
	if err := m.store.Del(ctx, key); err != nil {
		return "", "", fmt.Errorf("close session: %w", err)
	}

	accessID := NewAccessID()
	token, err := m.Generate(ctx, accessID)
	if err != nil {
		return "", "", err
	}
	return accessID, token, nil
}

func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return errNoAccessID
	}
	return m.store.Del(ctx, m.store.AccessSessionKey(accessID))
}

func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, nil
	}
	stored, err := m.lookup(ctx, m.store.AccessSessionKey(accessID))
	return stored != "", err
}

// lookup maps a missing key to "".
func (m *Manager) lookup(ctx context.Context, key string) (string, error) {
	v, err := m.store.Get(ctx, key)
	if errors.Is(err, redislib.Nil) {
		return "", nil
	}
	return v, err
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
