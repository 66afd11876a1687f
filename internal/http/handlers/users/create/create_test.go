package create

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/apperr"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
)

type MockService struct{ mock.Mock }

func (m *MockService) Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	valid := models.CreateUserRequest{Fullname: "Ann", Email: "ann@x.io", Password: "secret1", Role: models.RoleStaff}

	tests := []struct {
		name       string
		body       string
		setup      func(m *MockService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "created",
			body: `{"fullname":"Ann","email":"ann@x.io","password":"secret1","role":"staff"}`,
			setup: func(m *MockService) {
				m.On("Create", mock.Anything, valid).Return(&models.User{
					ID: "u1", Fullname: "Ann", Email: "ann@x.io", PasswordHash: "$2a$hash", RefreshToken: "rt",
					Role: models.RoleStaff, Status: models.UserActive,
				}, nil).Once()
			},
			wantStatus: http.StatusCreated,
			wantBody:   `"message":"User created successfully"`,
		},
		{
			name:       "bad role",
			body:       `{"fullname":"Ann","email":"ann@x.io","password":"secret1","role":"root"}`,
			setup:      func(*MockService) {},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `field Role must be one of [admin staff client]`,
		},
		{
			name: "duplicate email",
			body: `{"fullname":"Ann","email":"ann@x.io","password":"secret1","role":"staff"}`,
			setup: func(m *MockService) {
				m.On("Create", mock.Anything, valid).Return(nil, apperr.Conflict("User already exists")).Once()
			},
			wantStatus: http.StatusConflict,
			wantBody:   `{"status":false,"message":"User already exists"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setup(svc)

			w := httptest.NewRecorder()
			New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).
				ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/users", bytes.NewBufferString(tt.body)))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			assert.NotContains(t, w.Body.String(), "$2a$hash")
			assert.NotContains(t, w.Body.String(), "password")
			svc.AssertExpectations(t)
		})
	}
}
