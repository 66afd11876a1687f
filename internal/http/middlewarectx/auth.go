// Package middlewarectx содержит HTTP middleware: проверку JWT,
// ограничение доступа по ролям и ограничение частоты запросов.
//
// JWTMiddleware проверяет токен из заголовка Authorization и кладёт
// в контекст запроса models.Principal, который обработчики передают сервисам.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/http/response"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/sl"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// PrincipalKey указывает на принципала в контексте.
const PrincipalKey Key = "principal"

// Service описывает проверку JWT.
type Service interface {
	ValidateToken(ctx context.Context, token string) (*models.Principal, error)
}

// WithPrincipal кладёт принципала в контекст.
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// PrincipalFrom достаёт принципала из контекста.
func PrincipalFrom(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(models.Principal)
	return p, ok && p.UserID != ""
}

// JWTMiddleware возвращает middleware, который проверяет Bearer-токен.
// Без валидного токена запрос завершается с 401.
func JWTMiddleware(auth Service, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Info("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}

			p, err := auth.ValidateToken(r.Context(), strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				log.Info("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), *p)))
		})
	}
}

// RequireRole пропускает только принципалов с одной из ролей roles.
func RequireRole(log *slog.Logger, roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}
			for _, role := range roles {
				if p.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			log.Info("access denied",
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("user", p.UserID),
				slog.String("role", string(p.Role)))
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("Access denied"))
		})
	}
}
