// Package login реализует HTTP-обработчик входа существующего пользователя.
//
// Обработчик декодирует и валидирует учётные данные, делегирует проверку
// сервису аутентификации и возвращает JWT вместе с публичной проекцией
// пользователя.
package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/http/request"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/http/response"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/services/auth"
)

// Handler обрабатывает HTTP-запросы на вход.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает вход пользователя по email и паролю.
type Service interface {
	Login(ctx context.Context, email, password string) (string, *models.User, error)
}

// Result — данные успешного входа.
type Result struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Вход пользователя
// @Description Проверяет email и пароль, открывает сессию и возвращает JWT.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Учетные данные"
// @Success 200 {object} response.Response{data=Result}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 403 {object} response.ErrorResponse "Учетная запись неактивна"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.LoginRequest
	if !request.Bind(w, r, log, &req) {
		return
	}

	token, user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		log.Info("login rejected", slog.String("email", req.Email))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("Invalid email or password"))
		return
	}
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("login success", slog.String("user", user.ID))
	render.JSON(w, r, response.OK("Login successful", Result{Token: token, User: user.Public()}))
}
