// Package search ищет визиты клиента по именам клиента и сотрудника,
// типу, статусу и номеру визита.
package search

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

// Handler обрабатывает GET /visits/search.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает поиск визитов.
type Service interface {
	Search(ctx context.Context, p models.Principal, q visit.SearchQuery, page models.Page) ([]*models.Visit, models.Pagination, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Поиск визитов
// @Description Ответ приходит в конверте {success, data, meta}.
// @Tags Visits
// @Produce json
// @Security BearerAuth
// @Param search query string false "Подстрока имени клиента или сотрудника, типа, статуса или номера визита"
// @Param status query string false "Статус, без учёта регистра"
// @Param type query string false "Тип визита, без учёта регистра"
// @Param page query int false "Номер страницы" default(1)
// @Param limit query int false "Размер страницы" default(10)
// @Success 200 {object} response.SearchPage{data=[]models.Visit}
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /visits/search [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.visits.search"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, ok := request.Principal(w, r, log)
	if !ok {
		return
	}

	q := r.URL.Query()
	query := visit.SearchQuery{
		Search: q.Get("search"),
		Status: q.Get("status"),
		Type:   q.Get("type"),
	}

	visits, pagination, err := h.service.Search(r.Context(), p, query, request.Page(r))
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if visits == nil {
		visits = []*models.Visit{}
	}
	render.JSON(w, r, response.Search(visits, pagination))
}
