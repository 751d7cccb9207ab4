package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/orders"
	pkgAuth "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/auth"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/config"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/enums"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/metrics"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubOrders struct {
	submitted int
}

func (s *stubOrders) SubmitOrder(ctx context.Context, input orders.SubmitOrderInput) (int64, error) {
	s.submitted++
	return 77, nil
}

func (s *stubOrders) GetOrder(ctx context.Context, id int64) (*orders.OrderDetail, error) {
	return &orders.OrderDetail{ID: id}, nil
}

func (s *stubOrders) ListOrders(ctx context.Context, params pagination.Params) (*orders.OrderList, error) {
	return &orders.OrderList{Orders: []orders.OrderSummary{}}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev"},
		JWT: config.JWTConfig{Secret: "router-secret", Issuer: "pos-backend", ExpirationMinutes: 30},
		Orders: config.OrdersConfig{
			IdempotencyTTL: time.Hour,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://till.local"}},
	}
}

func newTestRouter(t *testing.T, ordersSvc orders.Service) (http.Handler, *config.Config) {
	t.Helper()
	cfg := testConfig()
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	reg := prometheus.NewRegistry()
	router := NewRouter(cfg, logg, stubPinger{}, nil, nil, reg, metrics.NewHTTPMetrics(reg), Services{Orders: ordersSvc})
	return router, cfg
}

func bearer(t *testing.T, cfg *config.Config, id int64, role enums.EmployeeRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{EmployeeID: id, Role: role, JTI: "jti-test"})
	require.NoError(t, err)
	return "Bearer " + token
}

func TestHealthRoutes(t *testing.T) {
	router, _ := newTestRouter(t, &stubOrders{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ready","db":"ok","redis":"disabled"}`, rec.Body.String())
}

func TestOrderSubmissionIsPublic(t *testing.T) {
	svc := &stubOrders{}
	router, _ := newTestRouter(t, svc)

	body := `{"cartItems":[{"menuItem":{"id":1,"base_price":"8.00"},"quantity":1}],"price":8}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	req.Header.Set("Idempotency-Key", "ignored-without-redis")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.JSONEq(t, `{"message":"Order processed successfully","orderId":77}`, rec.Body.String())
	require.Equal(t, 1, svc.submitted)
}

func TestOrderHistoryRequiresManager(t *testing.T) {
	router, cfg := newTestRouter(t, &stubOrders{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", bearer(t, cfg, 2, enums.EmployeeRoleCashier))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/orders/5", nil)
	req.Header.Set("Authorization", bearer(t, cfg, 1, enums.EmployeeRoleManager))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"id":5`)
}

func TestMetricsEndpointExposesHTTPMetrics(t *testing.T) {
	router, _ := newTestRouter(t, &stubOrders{})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `route="/health/live"`)
}

func TestCORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t, &stubOrders{})

	req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
	req.Header.Set("Origin", "http://till.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, "http://till.local", rec.Header().Get("Access-Control-Allow-Origin"))
}
