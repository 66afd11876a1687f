// Package cancel отменяет визит по просьбе клиента.
package cancel

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

// Handler обрабатывает POST /visits/{id}/cancel.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает отмену визита владельцем.
type Service interface {
	Cancel(ctx context.Context, p models.Principal, id string) (*models.Visit, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отменить визит
// @Tags Visits
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID визита"
// @Success 200 {object} response.Response{data=models.Visit}
// @Failure 400 {object} response.ErrorResponse "Визит уже завершён или отменён"
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /visits/{id}/cancel [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.visits.cancel"

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

	v, err := h.service.Cancel(r.Context(), p, id)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("visit cancelled", slog.String("id", id), slog.String("client", p.UserID))
	render.JSON(w, r, response.OK("Visit cancelled successfully", v))
}
