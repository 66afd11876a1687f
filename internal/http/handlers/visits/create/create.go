// Package create реализует запись клиента на визит патруля.
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

// Handler обрабатывает POST /visits.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает создание визита с проверкой оплаты.
type Service interface {
	Create(ctx context.Context, p models.Principal, req models.CreateVisitRequest) (*models.CreatedVisit, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Записаться на визит
// @Description Визит создаётся, только если у клиента нет активного визита, а последняя оплата завершена и не истекла.
// @Tags Visits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateVisitRequest true "Адрес, дата и тип визита"
// @Success 201 {object} response.Response{data=models.CreatedVisit}
// @Failure 400 {object} response.ErrorResponse "Не хватает полей, нет оплаты или оплата истекла"
// @Failure 401 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Уже есть активный визит"
// @Failure 500 {object} response.ErrorResponse
// @Router /visits [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.visits.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, ok := request.Principal(w, r, log)
	if !ok {
		return
	}
	var req models.CreateVisitRequest
	if !request.Bind(w, r, log, &req) {
		return
	}

	created, err := h.service.Create(r.Context(), p, req)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("visit created",
		slog.String("client", p.UserID),
		slog.String("visit_id", created.VisitData.VisitID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OK("Visit created successfully", created))
}
