// Package create реализует добавление тарифа администратором.
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

// Handler обрабатывает POST /admin/plans.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает создание тарифа.
type Service interface {
	Create(ctx context.Context, req models.CreatePlanRequest) (*models.Plan, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Создать тариф
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreatePlanRequest true "Тариф"
// @Success 201 {object} response.Response{data=models.Plan}
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /admin/plans [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plans.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.CreatePlanRequest
	if !request.Bind(w, r, log, &req) {
		return
	}

	plan, err := h.service.Create(r.Context(), req)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OK("Plan created successfully", plan))
}
