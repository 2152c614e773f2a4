package routes

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/rentflow-backend/internal/alerts"
	pkgAuth "github.com/angelmondragon/rentflow-backend/pkg/auth"
	"github.com/angelmondragon/rentflow-backend/pkg/config"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	"github.com/angelmondragon/rentflow-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAlertService struct{}

func (stubAlertService) Alerts(ctx context.Context, tenantID uuid.UUID) (*alerts.Report, error) {
	return &alerts.Report{Alerts: []alerts.Alert{}, GeneratedAt: time.Now().UTC()}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App:  config.AppConfig{Env: "dev"},
		JWT:  config.JWTConfig{Secret: "secret", Issuer: "rentflow", ExpirationMinutes: 60},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	reg := metrics.NewRegistry()
	metrics.NewStockMetrics(reg)
	return NewRouter(cfg, nil, stubPinger{}, nil, metrics.Handler(reg), nil, nil, nil, nil, stubAlertService{})
}

func bearer(t *testing.T, cfg *config.Config, role enums.MemberRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:   uuid.New(),
		TenantID: uuid.New(),
		Role:     role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func TestHealthRoutesArePublic(t *testing.T) {
	router := newTestRouter(testConfig())

	for _, path := range []string{"/health/live", "/health/ready"} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
	}
}

func TestMetricsRouteExposed(t *testing.T) {
	router := newTestRouter(testConfig())

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestAPIRequiresToken(t *testing.T) {
	router := newTestRouter(testConfig())

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/stock/alerts", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestStockAlertsWithToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stock/alerts", nil)
	req.Header.Set("Authorization", bearer(t, cfg, enums.MemberRoleViewer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestViewerCannotRecordMovement(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/equipment/"+uuid.NewString()+"/movement", bytes.NewBufferString(`{"type":"PURCHASE","quantity":1}`))
	req.Header.Set("Authorization", bearer(t, cfg, enums.MemberRoleViewer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestStaffCannotAdjust(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/equipment/"+uuid.NewString()+"/adjust", bytes.NewBufferString(`{"newTotalStock":3,"reason":"count"}`))
	req.Header.Set("Authorization", bearer(t, cfg, enums.MemberRoleStaff))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestManagerReachesAdjustHandler(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/equipment/"+uuid.NewString()+"/adjust", bytes.NewBufferString(`{"newTotalStock":3,"reason":"count"}`))
	req.Header.Set("Authorization", bearer(t, cfg, enums.MemberRoleManager))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	// no ledger service is wired in this router, so the handler itself answers
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected handler response 500 got %d", resp.Code)
	}
}
