// Package update реализует изменение пользователя администратором.
package update

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

// Handler обрабатывает PUT /admin/users/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает изменение пользователя.
type Service interface {
	Update(ctx context.Context, id string, req models.UpdateUserRequest) (*models.User, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Изменить пользователя
// @Description fullname и email обязательны, остальные поля меняются, только если переданы.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID пользователя"
// @Param request body models.UpdateUserRequest true "Изменения"
// @Success 200 {object} response.Response{data=models.User}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /admin/users/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, ok := request.ID(w, r, log, "id")
	if !ok {
		return
	}
	var req models.UpdateUserRequest
	if !request.Bind(w, r, log, &req) {
		return
	}

	user, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("user updated", slog.String("id", id))
	render.JSON(w, r, response.OK("User updated successfully", user))
}
