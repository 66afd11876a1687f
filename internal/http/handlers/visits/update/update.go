// Package update реализует изменение адреса и даты визита клиентом.
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

// Handler обрабатывает PUT /visits/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает изменение визита владельцем.
type Service interface {
	Update(ctx context.Context, p models.Principal, id string, req models.UpdateVisitRequest) (*models.Visit, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Изменить визит
// @Description Менять можно только свой визит в статусе pending или confirmed. Пустые поля сохраняют текущие значения.
// @Tags Visits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID визита"
// @Param request body models.UpdateVisitRequest true "Новые адрес и дата"
// @Success 200 {object} response.Response{data=models.Visit}
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /visits/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.visits.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, ok := request.Principal(w, r, log)
	if !ok {
		return
	}
	id, ok := request.ID(w, r, log, "id")
	if !ok {
		return
	}
	var req models.UpdateVisitRequest
	if !request.Bind(w, r, log, &req) {
		return
	}

	v, err := h.service.Update(r.Context(), p, id, req)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("visit updated", slog.String("id", id))
	render.JSON(w, r, response.OK("Visit updated successfully", v))
}
