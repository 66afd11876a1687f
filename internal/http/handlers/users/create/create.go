// Package create реализует создание пользователя администратором.
package create

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/http/request"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/http/response"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
)

// Handler обрабатывает POST /admin/users.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает создание пользователя.
type Service interface {
	Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Создать пользователя
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateUserRequest true "Новый пользователь"
// @Success 201 {object} response.Response{data=models.User}
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Email уже занят"
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /admin/users [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.CreateUserRequest
	if !request.Bind(w, r, log, &req) {
		return
	}

	user, err := h.service.Create(r.Context(), req)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("user created", slog.String("id", user.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OK("User created successfully", user))
}
