// Package staff отдаёт список сотрудников.
package staff

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/http/response"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
)

// Handler обрабатывает GET /admin/staff.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает выборку сотрудников.
type Service interface {
	ListStaff(ctx context.Context) ([]models.UserPublic, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список сотрудников
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.UserPublic}
// @Failure 500 {object} response.ErrorResponse
// @Router /admin/staff [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.staff"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	staff, err := h.service.ListStaff(r.Context())
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OK("Staff fetched successfully", staff))
}
