// Package read отдаёт тариф по идентификатору.
package read

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

// Handler обрабатывает GET /plans/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает чтение тарифа.
type Service interface {
	Get(ctx context.Context, id string) (*models.Plan, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Тариф по id
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID тарифа"
// @Success 200 {object} response.Response{data=models.Plan}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /plans/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plans.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, ok := request.ID(w, r, log, "id")
	if !ok {
		return
	}
	plan, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OK("Plan fetched successfully", plan))
}
