// Package bystatus отдаёт все визиты клиента в одном статусе.
package bystatus

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/http/request"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/http/response"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
)

// Handler обрабатывает GET /visits/{confirmed|pending|completed|cancelled}.
type Handler struct {
	log     *slog.Logger
	service Service
	status  models.VisitStatus
}

// Service описывает выборку визитов по статусу.
type Service interface {
	ListByStatus(ctx context.Context, p models.Principal, status models.VisitStatus) ([]*models.Visit, error)
}

// New создает Handler, привязанный к статусу.
func New(log *slog.Logger, service Service, status models.VisitStatus) *Handler {
	return &Handler{
		log:     log,
		service: service,
		status:  status,
	}
}

// ServeHTTP godoc
// @Summary Визиты клиента в статусе
// @Description Маршруты /visits/confirmed, /visits/pending, /visits/completed и /visits/cancelled. Новые визиты первыми.
// @Tags Visits
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.Visit}
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /visits/confirmed [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.visits.bystatus"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("status", string(h.status)),
	)

	p, ok := request.Principal(w, r, log)
	if !ok {
		return
	}

	visits, err := h.service.ListByStatus(r.Context(), p, h.status)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if visits == nil {
		visits = []*models.Visit{}
	}
	render.JSON(w, r, response.OK(fmt.Sprintf("Fetched %s visits", h.status), visits))
}
