package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/responses"
	pkgerrors "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/errors"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
	pkgredis "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/redis"
)

const (
	IdempotencyKeyHeader   = "Idempotency-Key"
	idempotentReplayHeader = "Idempotent-Replayed"
	maxIdempotencyKeyLen   = 200
	defaultIdempotentBody  = 1 << 20
	// pendingMarker holds a key while its first request is still running.
	pendingMarker = "pending"
)

var errInFlight = pkgerrors.New(pkgerrors.CodeIdempotency, "a request with this Idempotency-Key is still in progress")

// storedResponse is what a settled key replays.
type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        string `json:"body"`
	RequestHash string `json:"request_hash"`
}

type idempotencyGuard struct {
	store        pkgredis.IdempotencyStore
	ttl          time.Duration
	logg         *logger.Logger
	maxBody      int64
	tooLargeCode pkgerrors.Code
}

// IdempotencyOption adjusts the guard built by Idempotency.
type IdempotencyOption func(*idempotencyGuard)

// WithBodyLimit caps the body the guard buffers for hashing. Larger bodies
// are refused with code before the route runs.
func WithBodyLimit(maxBytes int64, code pkgerrors.Code) IdempotencyOption {
	return func(g *idempotencyGuard) {
		if maxBytes > 0 {
			g.maxBody = maxBytes
		}
		if code != "" {
			g.tooLargeCode = code
		}
	}
}

// Idempotency makes a route safe to resubmit with the same Idempotency-Key.
// The first request claims the key and its response is stored for ttl. A
// repeat with the same body replays that response, and a different body is
// a 409. 5xx outcomes release the key so the till can retry. Requests
// without the header pass straight through. Bodies over 1 MiB are refused
// unless WithBodyLimit says otherwise.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration, logg *logger.Logger, opts ...IdempotencyOption) func(http.Handler) http.Handler {
	g := &idempotencyGuard{store: store, ttl: ttl, logg: logg, maxBody: defaultIdempotentBody, tooLargeCode: pkgerrors.CodeValidation}
	for _, opt := range opts {
		opt(g)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientKey := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
			if clientKey == "" || store == nil || ttl <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			g.serve(w, r, next, clientKey)
		})
	}
}

func (g *idempotencyGuard) serve(w http.ResponseWriter, r *http.Request, next http.Handler, clientKey string) {
	ctx := r.Context()
	if len(clientKey) > maxIdempotencyKeyLen {
		responses.WriteError(ctx, g.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key is too long"))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, g.maxBody))
	if err != nil {
		responses.WriteError(ctx, g.logg, w, bodyReadError(err, g.tooLargeCode))
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	fingerprint := sha256.Sum256(body)
	requestHash := hex.EncodeToString(fingerprint[:])
	key := g.store.IdempotencyKey(requestScope(r), clientKey)

	if handled := g.replay(ctx, w, key, requestHash); handled {
		return
	}

	claimed, err := g.store.SetNX(ctx, key, pendingMarker, g.ttl)
	switch {
	case err != nil:
		responses.WriteError(ctx, g.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim idempotency key"))
		return
	case !claimed:
		responses.WriteError(ctx, g.logg, w, errInFlight)
		return
	}

	var captured bytes.Buffer
	ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
	ww.Tee(&captured)
	next.ServeHTTP(ww, r)

	g.settle(context.WithoutCancel(ctx), key, storedResponse{
		Status:      ww.Status(),
		ContentType: ww.Header().Get("Content-Type"),
		Body:        base64.StdEncoding.EncodeToString(captured.Bytes()),
		RequestHash: requestHash,
	})
}

// replay answers from a stored key. It reports false when the key is free.
func (g *idempotencyGuard) replay(ctx context.Context, w http.ResponseWriter, key, requestHash string) bool {
	stored, err := g.store.Get(ctx, key)
	switch {
	case errors.Is(err, redis.Nil):
		return false
	case err != nil:
		responses.WriteError(ctx, g.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
		return true
	case stored == pendingMarker:
		responses.WriteError(ctx, g.logg, w, errInFlight)
		return true
	}

	var prior storedResponse
	if err := json.Unmarshal([]byte(stored), &prior); err != nil {
		responses.WriteError(ctx, g.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return true
	}
	if prior.RequestHash != requestHash {
		responses.WriteError(ctx, g.logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
		return true
	}

	if prior.ContentType != "" {
		w.Header().Set("Content-Type", prior.ContentType)
	}
	w.Header().Set(idempotentReplayHeader, "true")
	w.WriteHeader(prior.Status)
	if raw, err := base64.StdEncoding.DecodeString(prior.Body); err == nil {
		_, _ = w.Write(raw)
	}
	return true
}

func (g *idempotencyGuard) settle(ctx context.Context, key string, resp storedResponse) {
	if resp.Status == 0 {
		resp.Status = http.StatusOK
	}
	if resp.Status >= http.StatusInternalServerError {
		g.logFailure(ctx, "release idempotency key", g.store.Del(ctx, key))
		return
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		g.logFailure(ctx, "encode idempotency record", err)
		return
	}
	g.logFailure(ctx, "persist idempotency record", g.store.Set(ctx, key, string(payload), g.ttl))
}

func (g *idempotencyGuard) logFailure(ctx context.Context, msg string, err error) {
	if g.logg != nil && err != nil {
		g.logg.Error(ctx, msg, err)
	}
}

// requestScope keys by employee and route so one key reused on another route
// or by another employee does not collide.
func requestScope(r *http.Request) string {
	return strconv.FormatInt(EmployeeIDFromContext(r.Context()), 10) + "|" + r.Method + "|" + r.URL.Path
}

// bodyReadError turns an over-limit read into a 400 carrying code.
func bodyReadError(err error, tooLarge pkgerrors.Code) error {
	var limitErr *http.MaxBytesError
	if errors.As(err, &limitErr) {
		return pkgerrors.Wrap(tooLarge, err, "request body too large").
			WithDetails(map[string]any{"limit_bytes": limitErr.Limit})
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request")
}
