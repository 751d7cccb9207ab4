package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func serveWithRequestID(t *testing.T, header string) (string, string) {
	t.Helper()
	var seen string
	h := RequestID(nil)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("X-Request-Id", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return seen, rec.Header().Get("X-Request-Id")
}

func TestRequestIDEchoesCallerValue(t *testing.T) {
	seen, echoed := serveWithRequestID(t, "till-4-0001")
	require.Equal(t, "till-4-0001", seen)
	require.Equal(t, "till-4-0001", echoed)
}

func TestRequestIDReplacesUnusableValues(t *testing.T) {
	for _, header := range []string{"", "has space", strings.Repeat("a", maxRequestIDLength+1)} {
		seen, echoed := serveWithRequestID(t, header)
		_, err := uuid.Parse(seen)
		require.NoError(t, err, "header %q", header)
		require.Equal(t, seen, echoed)
	}
}
