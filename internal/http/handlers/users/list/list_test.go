package list

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
)

type MockService struct{ mock.Mock }

func (m *MockService) List(ctx context.Context, f models.UserFilter, page models.Page) ([]models.UserSummary, models.Pagination, error) {
	args := m.Called(ctx, f, page)
	users, _ := args.Get(0).([]models.UserSummary)
	return users, args.Get(1).(models.Pagination), args.Error(2)
}

func TestListHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("passes filters and pagination", func(t *testing.T) {
		svc := new(MockService)
		f := models.UserFilter{Role: models.RoleStaff, Status: models.UserActive, Search: "ann"}
		svc.On("List", mock.Anything, f, models.Page{Page: 2, Limit: 5}).Return(
			[]models.UserSummary{{ID: "u1", Fullname: "Ann", Email: "ann@x.io", Role: models.RoleStaff, Status: models.UserActive}},
			models.Pagination{CurrentPage: 2, TotalPages: 2, TotalItems: 7, ItemsPerPage: 5},
			nil,
		).Once()

		w := httptest.NewRecorder()
		New(logger, svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet,
			"/admin/users?page=2&limit=5&role=staff&status=active&search=ann", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":true,"message":"Fetched all users",
			"data":[{"_id":"u1","fullname":"Ann","email":"ann@x.io","role":"staff","status":"active"}],
			"pagination":{"currentPage":2,"totalPages":2,"totalItems":7,"itemsPerPage":5}}`, w.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("service failure", func(t *testing.T) {
		svc := new(MockService)
		svc.On("List", mock.Anything, models.UserFilter{}, models.NewPage(0, 0)).
			Return(nil, models.Pagination{}, errors.New("db down")).Once()

		w := httptest.NewRecorder()
		New(logger, svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/users", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "db down")
	})
}
