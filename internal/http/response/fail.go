package response

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/apperr"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/sl"
)

// MsgInternal — сообщение для непредвиденных ошибок. Детали хранилища наружу не уходят.
const MsgInternal = "Internal server error"

// StatusFor возвращает HTTP-статус для вида ожидаемой ошибки.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindValidation, apperr.KindBusinessRule:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Fail пишет ответ для ошибки сервиса. Ожидаемые ошибки отдаются со своим
// статусом и сообщением, остальные логируются и превращаются в 500.
func Fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	if appErr, ok := apperr.As(err); ok {
		log.Info("request rejected",
			slog.String("kind", appErr.Kind.String()),
			slog.String("reason", appErr.Message))
		render.Status(r, StatusFor(appErr.Kind))
		render.JSON(w, r, Error(appErr.Message))
		return
	}
	log.Error("request failed", sl.Err(err))
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, Error(MsgInternal))
}
