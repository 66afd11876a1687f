// Package request разбирает тело, параметры пути и пагинацию HTTP-запросов.
package request

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/http/middlewarectx"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/http/response"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/sl"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
)

// Сообщения об ошибках разбора запроса.
const (
	MsgBadBody      = "failed to decode request"
	MsgBadID        = "invalid id"
	MsgUnauthorized = "unauthorized"
)

var validate = validator.New()

// Bind декодирует JSON-тело в v и валидирует его по тегам validate.
// При ошибке пишет ответ 400 или 422 и возвращает false.
func Bind(w http.ResponseWriter, r *http.Request, log *slog.Logger, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(MsgBadBody))
		return false
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			log.Error("validation failed", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(MsgBadBody))
			return false
		}
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(verrs))
		return false
	}
	return true
}

// ID возвращает параметр пути name, если это корректный uuid.
// Иначе пишет ответ 400 и возвращает false.
func ID(w http.ResponseWriter, r *http.Request, log *slog.Logger, name string) (string, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		log.Info("invalid id in url", slog.String("param", name), slog.String("value", raw))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(MsgBadID))
		return "", false
	}
	return id.String(), true
}

// Page читает page и limit из query. Нечисловые и неположительные
// значения заменяются значениями по умолчанию, большие обрезаются
// до models.MaxPage и models.MaxLimit.
func Page(r *http.Request) models.Page {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return models.NewPage(page, limit)
}

// Principal достаёт пользователя, положенного в контекст JWTMiddleware.
// Без него пишет ответ 401 и возвращает false.
func Principal(w http.ResponseWriter, r *http.Request, log *slog.Logger) (models.Principal, bool) {
	p, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		log.Info("no principal in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(MsgUnauthorized))
		return models.Principal{}, false
	}
	return p, true
}
