// Package list отдаёт клиенту страницу визитов из именованной выборки:
// все, завершённые, завершённые с проблемами, прошедшие или предстоящие.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/http/request"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/http/response"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/services/visit"
)

// Handler обрабатывает GET /visits и производные выборки.
type Handler struct {
	log     *slog.Logger
	service Service
	bucket  visit.Bucket
	message string
}

// Service описывает постраничную выборку визитов клиента.
type Service interface {
	List(ctx context.Context, p models.Principal, b visit.Bucket, page models.Page) ([]*models.Visit, models.Pagination, error)
}

// New создает Handler для выборки bucket; message попадает в ответ.
func New(log *slog.Logger, service Service, bucket visit.Bucket, message string) *Handler {
	return &Handler{
		log:     log,
		service: service,
		bucket:  bucket,
		message: message,
	}
}

// ServeHTTP godoc
// @Summary Визиты клиента
// @Description Один обработчик обслуживает /visits, /visits/completed/paginated, /visits/completed/issues, /visits/past и /visits/upcoming.
// @Tags Visits
// @Produce json
// @Security BearerAuth
// @Param page query int false "Номер страницы" default(1)
// @Param limit query int false "Размер страницы" default(10)
// @Success 200 {object} response.Response{data=[]models.Visit}
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /visits [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.visits.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, ok := request.Principal(w, r, log)
	if !ok {
		return
	}

	visits, pagination, err := h.service.List(r.Context(), p, h.bucket, request.Page(r))
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if visits == nil {
		visits = []*models.Visit{}
	}
	render.JSON(w, r, response.Page(h.message, visits, pagination))
}
