package patrol

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/config"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/jwt"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/metrics"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
	authservice "github.com/FSDTeam-SAA/lharris5324-backend/internal/services/auth"
	planservice "github.com/FSDTeam-SAA/lharris5324-backend/internal/services/plan"
	userservice "github.com/FSDTeam-SAA/lharris5324-backend/internal/services/user"
	visitservice "github.com/FSDTeam-SAA/lharris5324-backend/internal/services/visit"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type planRepo struct{}

func (planRepo) CreatePlan(_ context.Context, p *models.Plan) (*models.Plan, error) { return p, nil }
func (planRepo) GetPlan(_ context.Context, id string) (*models.Plan, error) {
	return &models.Plan{ID: id}, nil
}
func (planRepo) ListPlans(context.Context) ([]*models.Plan, error) {
	return []*models.Plan{{ID: "p1", Name: "Basic"}}, nil
}

type noCache struct{}

func (noCache) Get(context.Context, string, any) (bool, error)         { return false, nil }
func (noCache) Set(context.Context, string, any, time.Duration) error { return nil }
func (noCache) Invalidate(context.Context, ...string) error           { return nil }

func newRouter(t *testing.T) (http.Handler, *jwt.MakerImpl) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	// Репозитории пользователей и визитов не нужны: запросы к ним
	// в этих тестах отсекаются до обращения к сервису.
	services := Services{
		Auth:   authservice.NewService(nil, maker),
		Users:  userservice.NewService(nil, logger),
		Plans:  planservice.NewService(planRepo{}, noCache{}, logger),
		Visits: visitservice.NewService(nil, nil, nil, logger),
	}

	r := chi.NewRouter()
	RegisterRoutes(r, logger, config.HTTPServer{RateLimit: 1000, RateBurst: 1000}, okPinger{}, m, reg, services)
	return r, maker
}

func tokenFor(t *testing.T, maker *jwt.MakerImpl, role models.Role) string {
	t.Helper()
	token, err := maker.GenerateToken("u-"+string(role), string(role)+"@x.io", string(role))
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRoutes_Access(t *testing.T) {
	router, maker := newRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		role       models.Role
		wantStatus int
	}{
		{"health is public", http.MethodGet, "/api/v1/health", "", http.StatusOK},
		{"plans need a token", http.MethodGet, "/api/v1/plans", "", http.StatusUnauthorized},
		{"plans for any role", http.MethodGet, "/api/v1/plans", models.RoleClient, http.StatusOK},
		{"admin area denied to client", http.MethodGet, "/api/v1/admin/users", models.RoleClient, http.StatusForbidden},
		{"admin area denied to staff", http.MethodPost, "/api/v1/admin/plans", models.RoleStaff, http.StatusForbidden},
		{"visits denied to admin", http.MethodGet, "/api/v1/visits", models.RoleAdmin, http.StatusForbidden},
		{"visit status denied to client", http.MethodPatch, "/api/v1/admin/visits/x/status", models.RoleClient, http.StatusForbidden},
		{"visit status bad id for staff", http.MethodPatch, "/api/v1/admin/visits/x/status", models.RoleStaff, http.StatusBadRequest},
		{"unknown route", http.MethodGet, "/api/v1/nope", models.RoleClient, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.role != "" {
				req.Header.Set("Authorization", tokenFor(t, maker, tt.role))
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRoutes_MetricsAndDocs(t *testing.T) {
	router, _ := newRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `patrol_http_requests_total{code="200",method="GET",route="/api/v1/health"} 1`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/doc.json", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"/visits/{id}/cancel"`)
	assert.Contains(t, w.Body.String(), "Подстрока имени клиента или сотрудника, типа, статуса или номера визита")
	assert.NotContains(t, w.Body.String(), "Подстрока адреса")
}
