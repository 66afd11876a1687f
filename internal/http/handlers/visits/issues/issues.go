// Package issues считает визиты клиента с заведёнными проблемами.
package issues

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

// Handler обрабатывает GET /visits/issues/count.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает подсчёт визитов с проблемами.
type Service interface {
	CountWithIssues(ctx context.Context, p models.Principal) (*models.IssuesCount, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Число визитов с проблемами
// @Tags Visits
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.IssuesCount}
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "У клиента нет визитов"
// @Failure 500 {object} response.ErrorResponse
// @Router /visits/issues/count [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.visits.issues"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, ok := request.Principal(w, r, log)
	if !ok {
		return
	}

	count, err := h.service.CountWithIssues(r.Context(), p)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OK("Issues count fetched successfully", count))
}
