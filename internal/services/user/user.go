// Package user реализует управление учётными записями администратором.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/apperr"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/password"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/storage"
)

// Сообщения, которые видит клиент API.
const (
	MsgUserExists      = "User already exists"
	MsgRequiredFields  = "Fullname and email are required."
	MsgUserNotFound    = "User not found"
	MsgInvalidRole     = "Invalid role"
	MsgInvalidStatus   = "Invalid status"
	MsgPasswordTooWeak = "Password must be at least 6 characters"
)

// Repository описывает хранилище пользователей.
type Repository interface {
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, f models.UserFilter, page *models.Page) ([]*models.User, error)
	CountUsers(ctx context.Context, f models.UserFilter) (int, error)
	UpdateUser(ctx context.Context, u *models.User) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// Service — операции администратора над пользователями.
type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// List возвращает страницу пользователей по фильтру и метаданные пагинации.
func (s *Service) List(ctx context.Context, f models.UserFilter, page models.Page) ([]models.UserSummary, models.Pagination, error) {
	const op = "services.user.List"

	f.Search = strings.TrimSpace(f.Search)
	users, err := s.repo.ListUsers(ctx, f, &page)
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("%s: %w", op, err)
	}
	total, err := s.repo.CountUsers(ctx, f)
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("%s: %w", op, err)
	}
	return summaries(users), models.NewPagination(page, total), nil
}

// ListByRoleAndStatus возвращает всех пользователей с точной ролью и статусом.
func (s *Service) ListByRoleAndStatus(ctx context.Context, role models.Role, status models.UserStatus) ([]models.UserSummary, error) {
	const op = "services.user.ListByRoleAndStatus"

	users, err := s.repo.ListUsers(ctx, models.UserFilter{Role: role, Status: status}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return summaries(users), nil
}

// ListStaff возвращает сотрудников в публичной проекции.
func (s *Service) ListStaff(ctx context.Context) ([]models.UserPublic, error) {
	const op = "services.user.ListStaff"

	users, err := s.repo.ListUsers(ctx, models.UserFilter{Role: models.RoleStaff}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := make([]models.UserPublic, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

// Create заводит активного пользователя с одной открытой сессией.
func (s *Service) Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	const op = "services.user.Create"

	fullname := strings.TrimSpace(req.Fullname)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if fullname == "" || email == "" {
		return nil, apperr.Validation(MsgRequiredFields)
	}

	_, err := s.repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperr.Conflict(MsgUserExists)
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := password.GetHash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now().UTC()
	created, err := s.repo.CreateUser(ctx, &models.User{
		Fullname:     fullname,
		Email:        email,
		PasswordHash: hash,
		Role:         req.Role,
		Status:       models.UserActive,
		LastActive:   &now,
		Sessions:     []models.Session{{SessionStartTime: now}},
	})
	if errors.Is(err, storage.ErrConflict) {
		return nil, apperr.Conflict(MsgUserExists)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user created", slog.String("id", created.ID), slog.String("role", string(created.Role)))
	return created, nil
}

// Update применяет непустые поля запроса к пользователю id.
func (s *Service) Update(ctx context.Context, id string, req models.UpdateUserRequest) (*models.User, error) {
	const op = "services.user.Update"

	fullname := strings.TrimSpace(req.Fullname)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if fullname == "" || email == "" {
		return nil, apperr.Validation(MsgRequiredFields)
	}

	u, err := s.repo.GetUser(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound(MsgUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u.Fullname = fullname
	u.Email = email
	if req.Role != "" {
		if !req.Role.Valid() {
			return nil, apperr.Validation(MsgInvalidRole)
		}
		u.Role = req.Role
	}
	if req.Status != "" {
		if !req.Status.Valid() {
			return nil, apperr.Validation(MsgInvalidStatus)
		}
		u.Status = req.Status
	}
	if req.Password != "" {
		if len(req.Password) < 6 {
			return nil, apperr.Validation(MsgPasswordTooWeak)
		}
		hash, err := password.GetHash(req.Password)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		u.PasswordHash = hash
	}

	updated, err := s.repo.UpdateUser(ctx, u)
	switch {
	case errors.Is(err, storage.ErrConflict):
		return nil, apperr.Conflict(MsgUserExists)
	case errors.Is(err, storage.ErrNotFound):
		return nil, apperr.NotFound(MsgUserNotFound)
	case err != nil:
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// Delete удаляет пользователя без возможности восстановления.
func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "services.user.Delete"

	err := s.repo.DeleteUser(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound(MsgUserNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user deleted", slog.String("id", id))
	return nil
}

func summaries(users []*models.User) []models.UserSummary {
	out := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	return out
}
