// Package list отдаёт администратору страницу пользователей с фильтрами.
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
)

// Handler обрабатывает GET /admin/users.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает выборку пользователей.
type Service interface {
	List(ctx context.Context, f models.UserFilter, page models.Page) ([]models.UserSummary, models.Pagination, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список пользователей
// @Description Фильтры role и status сравниваются точно, search ищется в имени и email без учёта регистра.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Номер страницы" default(1)
// @Param limit query int false "Размер страницы" default(10)
// @Param role query string false "Роль" Enums(admin, staff, client)
// @Param status query string false "Статус" Enums(active, inactive, suspended)
// @Param search query string false "Подстрока имени или email"
// @Success 200 {object} response.Response{data=[]models.UserSummary}
// @Failure 500 {object} response.ErrorResponse
// @Router /admin/users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	f := models.UserFilter{
		Role:   models.Role(q.Get("role")),
		Status: models.UserStatus(q.Get("status")),
		Search: q.Get("search"),
	}
	page := request.Page(r)

	users, p, err := h.service.List(r.Context(), f, page)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Debug("users listed", slog.Int("count", len(users)), slog.Int("total", p.TotalItems))
	render.JSON(w, r, response.Page("Fetched all users", users, p))
}
