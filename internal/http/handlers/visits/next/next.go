// Package next отдаёт ближайший предстоящий визит клиента.
package next

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

// Handler обрабатывает GET /visits/next.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает поиск ближайшего визита.
type Service interface {
	Next(ctx context.Context, p models.Principal) (*models.Visit, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Ближайший визит
// @Tags Visits
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.Visit}
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Нет предстоящих визитов"
// @Failure 500 {object} response.ErrorResponse
// @Router /visits/next [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.visits.next"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, ok := request.Principal(w, r, log)
	if !ok {
		return
	}

	v, err := h.service.Next(r.Context(), p)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OK("Next visit fetched successfully", v))
}
