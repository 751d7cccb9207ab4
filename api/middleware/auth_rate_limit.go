package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/responses"
	pkgerrors "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/errors"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
)

type rateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// maxSignInBodyBytes bounds what the limiter buffers to find the employee id.
const maxSignInBodyBytes = 64 << 10

var errTooManySignIns = pkgerrors.New(pkgerrors.CodeRateLimit, "too many sign-in attempts, try again later")

// AuthRateLimitPolicy throttles a sign-in surface per client IP and per
// employee id found in the JSON body.
type AuthRateLimitPolicy struct {
	name          string
	window        time.Duration
	ipLimit       int
	employeeLimit int
}

func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, employeeLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{name: name, window: window, ipLimit: ipLimit, employeeLimit: employeeLimit}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.employeeLimit > 0)
}

type signInLimiter struct {
	policy AuthRateLimitPolicy
	store  rateLimiterStore
	logg   *logger.Logger
}

// AuthRateLimit counts attempts in fixed windows and answers 429 once either
// the IP or the employee budget is spent. The request body is restored for
// the next handler.
func AuthRateLimit(policy AuthRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	l := &signInLimiter{policy: policy, store: store, logg: logg}
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := l.admit(w, r); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (l *signInLimiter) admit(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	if ip := clientIP(r); l.policy.ipLimit > 0 && ip != "" {
		if err := l.spend(ctx, "ip", ip, l.policy.ipLimit); err != nil {
			return err
		}
	}
	if l.policy.employeeLimit <= 0 {
		return nil
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSignInBodyBytes))
	if err != nil {
		return bodyReadError(err, pkgerrors.CodeValidation)
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	if id := extractEmployeeID(body); id != "" {
		return l.spend(ctx, "employee", id, l.policy.employeeLimit)
	}
	return nil
}

func (l *signInLimiter) spend(ctx context.Context, kind, subject string, limit int) error {
	scope := l.policy.name + ":" + kind + ":" + subject
	allowed, attempts, err := l.store.FixedWindowAllow(ctx, scope, int64(limit), l.policy.window)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting")
	}
	if allowed {
		return nil
	}
	if l.logg != nil {
		l.logg.Warn(l.logg.WithFields(ctx, map[string]any{
			"scope":          kind,
			"policy":         l.policy.name,
			"attempts":       attempts,
			"limit":          limit,
			"window_seconds": int(l.policy.window.Seconds()),
		}), "auth.rate_limit.blocked")
	}
	return errTooManySignIns
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP.
func clientIP(r *http.Request) string {
	for _, hop := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if ip := strings.TrimSpace(hop); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

// extractEmployeeID accepts the id as a JSON number or string.
func extractEmployeeID(payload []byte) string {
	var body struct {
		EmployeeID json.RawMessage `json:"employee_id"`
	}
	if json.Unmarshal(payload, &body) != nil {
		return ""
	}
	raw := strings.Trim(strings.TrimSpace(string(body.EmployeeID)), `"`)
	if raw == "null" {
		return ""
	}
	return raw
}
