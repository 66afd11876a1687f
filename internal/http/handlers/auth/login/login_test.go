package login

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/apperr"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/services/auth"
)

type AuthServiceMock struct{ mock.Mock }

func (m *AuthServiceMock) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	args := m.Called(ctx, email, password)
	u, _ := args.Get(1).(*models.User)
	return args.String(0), u, args.Error(2)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	user := &models.User{ID: "u-1", Fullname: "Ann", Email: "ann@x.io", PasswordHash: "secret-hash", Role: models.RoleClient}

	tests := []struct {
		name       string
		body       string
		setup      func(m *AuthServiceMock)
		wantStatus int
		wantMsg    string
	}{
		{
			name: "valid login",
			body: `{"email":"ann@x.io","password":"pw"}`,
			setup: func(m *AuthServiceMock) {
				m.On("Login", mock.Anything, "ann@x.io", "pw").Return("tok", user, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantMsg:    "Login successful",
		},
		{
			name:       "invalid json body",
			body:       "not a json",
			setup:      func(*AuthServiceMock) {},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "failed to decode request",
		},
		{
			name:       "validation error",
			body:       `{"email":"ann"}`,
			setup:      func(*AuthServiceMock) {},
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "field Email must be a valid email, field Password is a required field",
		},
		{
			name: "wrong credentials",
			body: `{"email":"ann@x.io","password":"bad"}`,
			setup: func(m *AuthServiceMock) {
				m.On("Login", mock.Anything, "ann@x.io", "bad").Return("", nil, auth.ErrInvalidCredentials).Once()
			},
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Invalid email or password",
		},
		{
			name: "inactive account",
			body: `{"email":"ann@x.io","password":"pw"}`,
			setup: func(m *AuthServiceMock) {
				m.On("Login", mock.Anything, "ann@x.io", "pw").Return("", nil, apperr.Forbidden("Your account is suspended")).Once()
			},
			wantStatus: http.StatusForbidden,
			wantMsg:    "Your account is suspended",
		},
		{
			name: "service failure",
			body: `{"email":"ann@x.io","password":"pw"}`,
			setup: func(m *AuthServiceMock) {
				m.On("Login", mock.Anything, "ann@x.io", "pw").Return("", nil, errors.New("db down")).Once()
			},
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(AuthServiceMock)
			tt.setup(svc)

			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			New(newNoopLogger(), svc).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp struct {
				Status  bool   `json:"status"`
				Message string `json:"message"`
				Data    Result `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantMsg, resp.Message)
			if tt.wantStatus == http.StatusOK {
				assert.True(t, resp.Status)
				assert.Equal(t, "tok", resp.Data.Token)
				assert.Equal(t, "ann@x.io", resp.Data.User.Email)
				assert.NotContains(t, w.Body.String(), "secret-hash")
			}
			svc.AssertExpectations(t)
		})
	}
}
