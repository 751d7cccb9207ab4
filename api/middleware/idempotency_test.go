package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/errors"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/types"
)

type fakeStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = fmt.Sprint(value)
	return true, nil
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = fmt.Sprint(value)
	return nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func orderRequest(key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	return req
}

func TestIdempotencyWithoutHeaderPassesThrough(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, orderRequest("", `{"price":1}`))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 got %d", rec.Code)
		}
	}
	if calls != 2 || len(store.data) != 0 {
		t.Fatalf("expected two untracked calls, calls=%d stored=%d", calls, len(store.data))
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"Order processed successfully","orderId":7}`))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, orderRequest("till-1-0001", `{"price":10.25}`))
	if first.Code != http.StatusCreated {
		t.Fatalf("expected first response 201 got %d", first.Code)
	}

	replay := httptest.NewRecorder()
	handler.ServeHTTP(replay, orderRequest("till-1-0001", `{"price":10.25}`))
	if replay.Code != http.StatusCreated {
		t.Fatalf("expected replay status 201 got %d", replay.Code)
	}
	if replay.Header().Get("Content-Type") != "application/json" {
		t.Fatal("expected content-type preserved")
	}
	if replay.Header().Get(idempotentReplayHeader) != "true" {
		t.Fatal("expected replay marker header")
	}
	if strings.TrimSpace(replay.Body.String()) != `{"message":"Order processed successfully","orderId":7}` {
		t.Fatalf("expected stored body got %s", replay.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler executed %d times, expected 1", calls)
	}
}

func TestIdempotencyDetectsBodyChange(t *testing.T) {
	store := newFakeStore()
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), orderRequest("xyz", `{"price":1}`))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, orderRequest("xyz", `{"price":2}`))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), string(pkgerrors.CodeIdempotency)) {
		t.Fatalf("expected idempotency code, got %s", rec.Body.String())
	}
}

func TestIdempotencyRejectsInFlightKey(t *testing.T) {
	store := newFakeStore()
	release := make(chan struct{})
	entered := make(chan struct{})
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		w.WriteHeader(http.StatusCreated)
	}))

	done := make(chan int)
	go func() {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, orderRequest("dup", `{"price":1}`))
		done <- rec.Code
	}()
	<-entered

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, orderRequest("dup", `{"price":1}`))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 while first request runs, got %d", rec.Code)
	}

	close(release)
	if code := <-done; code != http.StatusCreated {
		t.Fatalf("expected first request to finish with 201, got %d", code)
	}
}

func TestIdempotencyReleasesKeyOnServerError(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, orderRequest("retry-me", `{"price":1}`))
	if first.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", first.Code)
	}
	if len(store.data) != 0 {
		t.Fatalf("expected key released, got %v", store.data)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, orderRequest("retry-me", `{"price":1}`))
	if second.Code != http.StatusCreated || calls != 2 {
		t.Fatalf("expected retry to run, code=%d calls=%d", second.Code, calls)
	}
}

func TestIdempotencyScopesByEmployee(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for _, employee := range []int64{1, 2} {
		req := orderRequest("shared", `{"price":1}`)
		req = req.WithContext(WithEmployee(req.Context(), employee, ""))
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls != 2 {
		t.Fatalf("expected separate scopes per employee, calls=%d", calls)
	}
}

func TestIdempotencyRefusesOversizedBody(t *testing.T) {
	cases := []struct {
		name string
		opts []IdempotencyOption
		body string
		want pkgerrors.Code
	}{
		{
			name: "route limit",
			opts: []IdempotencyOption{WithBodyLimit(16, pkgerrors.CodeInvalidCart)},
			body: `{"cartItems":[],"price":"12.00"}`,
			want: pkgerrors.CodeInvalidCart,
		},
		{
			name: "default limit",
			body: `{"pad":"` + strings.Repeat("x", defaultIdempotentBody) + `"}`,
			want: pkgerrors.CodeValidation,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			reached := false
			handler := Idempotency(store, time.Hour, nil, tc.opts...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = true
				w.WriteHeader(http.StatusCreated)
			}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, orderRequest("big-order", tc.body))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d", rec.Code)
			}
			var payload types.APIError
			if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if payload.Code != string(tc.want) {
				t.Fatalf("expected %s got %s", tc.want, payload.Code)
			}
			if reached {
				t.Fatal("route ran for an oversized body")
			}
			if len(store.data) != 0 {
				t.Fatalf("oversized body must not claim the key, got %v", store.data)
			}
		})
	}
}

func TestIdempotencyBodyLimitAdmitsSmallBody(t *testing.T) {
	handler := Idempotency(newFakeStore(), time.Hour, nil, WithBodyLimit(64, pkgerrors.CodeInvalidCart))(okHandler())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, orderRequest("small-order", `{"price":"8.00"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}
