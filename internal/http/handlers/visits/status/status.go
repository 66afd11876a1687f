// Package status реализует смену статуса визита администратором или сотрудником.
package status

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

// Handler обрабатывает PATCH /admin/visits/{id}/status.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает смену статуса визита.
type Service interface {
	ChangeStatus(ctx context.Context, id string, req models.ChangeVisitStatusRequest) (*models.Visit, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Сменить статус визита
// @Description Допустимые переходы: pending -> confirmed|cancelled, confirmed -> completed|cancelled. staffId назначает сотрудника.
// @Tags Visits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID визита"
// @Param request body models.ChangeVisitStatusRequest true "Новый статус"
// @Success 200 {object} response.Response{data=models.Visit}
// @Failure 400 {object} response.ErrorResponse "Недопустимый переход"
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Статус изменился параллельно"
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /admin/visits/{id}/status [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.visits.status"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, ok := request.ID(w, r, log, "id")
	if !ok {
		return
	}
	var req models.ChangeVisitStatusRequest
	if !request.Bind(w, r, log, &req) {
		return
	}

	v, err := h.service.ChangeStatus(r.Context(), id, req)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("visit status changed", slog.String("id", id), slog.String("status", string(v.Status)))
	render.JSON(w, r, response.OK("Visit status updated successfully", v))
}
