// Package list отдаёт справочник тарифов.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/http/response"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
)

// Handler обрабатывает GET /plans.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает выборку тарифов.
type Service interface {
	List(ctx context.Context) ([]*models.Plan, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список тарифов
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.Plan}
// @Failure 500 {object} response.ErrorResponse
// @Router /plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plans.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	plans, err := h.service.List(r.Context())
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if plans == nil {
		plans = []*models.Plan{}
	}
	render.JSON(w, r, response.OK("Plans fetched successfully", plans))
}
