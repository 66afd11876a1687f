// Package rolestatus отдаёт всех пользователей с заданными ролью и статусом.
package rolestatus

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/http/response"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
)

// Handler обрабатывает GET /admin/users/{role}/{status}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает выборку по роли и статусу.
type Service interface {
	ListByRoleAndStatus(ctx context.Context, role models.Role, status models.UserStatus) ([]models.UserSummary, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Пользователи по роли и статусу
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param role path string true "Роль" Enums(admin, staff, client)
// @Param status path string true "Статус" Enums(active, inactive, suspended)
// @Success 200 {object} response.Response{data=[]models.UserSummary}
// @Failure 500 {object} response.ErrorResponse
// @Router /admin/users/{role}/{status} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.rolestatus"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	role := models.Role(chi.URLParam(r, "role"))
	status := models.UserStatus(chi.URLParam(r, "status"))

	users, err := h.service.ListByRoleAndStatus(r.Context(), role, status)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OK(fmt.Sprintf("Fetched %s users", role), users))
}
