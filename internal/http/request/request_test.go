package request

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/http/middlewarectx"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/http/response"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
)

var log = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestBind(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantOK     bool
		wantStatus int
	}{
		{"valid", `{"email":"a@x.io","password":"secret"}`, true, http.StatusOK},
		{"broken json", `{"email":`, false, http.StatusBadRequest},
		{"validation", `{"email":"not-an-email"}`, false, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var req models.LoginRequest
			ok := Bind(w, r, log, &req)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantStatus, w.Code)
			if !ok {
				var resp response.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.NotEmpty(t, resp.Message)
			}
		})
	}
}

func withParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestID(t *testing.T) {
	w := httptest.NewRecorder()
	r := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "8A3E4B10-7C2D-4F6A-B1E2-0A0B0C0D0E01")
	id, ok := ID(w, r, log, "id")
	require.True(t, ok)
	assert.Equal(t, "8a3e4b10-7c2d-4f6a-b1e2-0a0b0c0d0e01", id)

	w = httptest.NewRecorder()
	r = withParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "42")
	_, ok = ID(w, r, log, "id")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPage(t *testing.T) {
	tests := []struct {
		query string
		want  models.Page
	}{
		{"", models.Page{Page: 1, Limit: 10}},
		{"?page=3&limit=25", models.Page{Page: 3, Limit: 25}},
		{"?page=-1&limit=abc", models.Page{Page: 1, Limit: 10}},
		{"?page=9223372036854775807&limit=1000", models.Page{Page: models.MaxPage, Limit: models.MaxLimit}},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/visits"+tt.query, nil)
		assert.Equal(t, tt.want, Page(r), tt.query)
	}
}

func TestPrincipal(t *testing.T) {
	w := httptest.NewRecorder()
	_, ok := Principal(w, httptest.NewRequest(http.MethodGet, "/visits", nil), log)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"status":false,"message":"unauthorized"}`, w.Body.String())

	want := models.Principal{UserID: "u1", Email: "c@x.io", Role: models.RoleClient}
	r := httptest.NewRequest(http.MethodGet, "/visits", nil)
	r = r.WithContext(middlewarectx.WithPrincipal(r.Context(), want))
	got, ok := Principal(httptest.NewRecorder(), r, log)
	require.True(t, ok)
	assert.Equal(t, want, got)
}
