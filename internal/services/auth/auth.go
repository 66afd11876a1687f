// Package auth выдаёт JWT существующим пользователям и проверяет токены
// защищённых маршрутов.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/apperr"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/jwt"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/password"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/storage"
)

// ErrInvalidCredentials — неизвестный email или неверный пароль.
// Причина намеренно не уточняется.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrInvalidToken — токен не прошёл проверку.
var ErrInvalidToken = errors.New("invalid token")

// UserRepository описывает доступ к пользователям, нужный для входа.
type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	StartSession(ctx context.Context, userID string, at time.Time) error
}

// Service отвечает за вход и валидацию JWT.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
	now      func() time.Time
}

// NewService создает новый экземпляр Service.
func NewService(users UserRepository, jwtMaker jwt.Maker) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
		now:      time.Now,
	}
}

// Login проверяет пароль, отмечает новую сессию и возвращает токен.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (string, *models.User, error) {
	const op = "services.auth.Login"

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if user.Status != models.UserActive {
		return "", nil, apperr.Forbidden("Your account is " + string(user.Status))
	}

	token, err := s.jwtMaker.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now().UTC()
	if err := s.users.StartSession(ctx, user.ID, now); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	user.LastActive = &now
	user.Sessions = append(user.Sessions, models.Session{SessionStartTime: now})
	return token, user, nil
}

// ValidateToken разбирает токен и возвращает принципала запроса.
func (s *Service) ValidateToken(_ context.Context, token string) (*models.Principal, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	role := models.Role(claims.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}
	return &models.Principal{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   role,
	}, nil
}
