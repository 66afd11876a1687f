// Package plan отдаёт справочник тарифов с кэшированием в Redis.
package plan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/apperr"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/sl"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/storage"
)

const (
	cacheTTL     = time.Hour
	listCacheKey = "plans:all"
)

// Сообщения, которые видит клиент API.
const (
	MsgPlanNotFound   = "Plan not found"
	MsgUnknownAddOn   = "Unknown add-on service"
	MsgRequiredFields = "Name, subTitle and description are required"
)

// Repository описывает хранилище тарифов.
type Repository interface {
	CreatePlan(ctx context.Context, p *models.Plan) (*models.Plan, error)
	GetPlan(ctx context.Context, id string) (*models.Plan, error)
	ListPlans(ctx context.Context) ([]*models.Plan, error)
}

// Cache описывает кэш справочных данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Service — чтение и создание тарифов.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

func planKey(id string) string {
	return "plan:" + id
}

// List возвращает все тарифы.
func (s *Service) List(ctx context.Context) ([]*models.Plan, error) {
	const op = "services.plan.List"

	var cached []*models.Plan
	if s.fromCache(ctx, listCacheKey, &cached) {
		return cached, nil
	}

	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.toCache(ctx, listCacheKey, plans)
	return plans, nil
}

// Get возвращает тариф по id.
func (s *Service) Get(ctx context.Context, id string) (*models.Plan, error) {
	const op = "services.plan.Get"

	var cached *models.Plan
	if s.fromCache(ctx, planKey(id), &cached) && cached != nil {
		return cached, nil
	}

	p, err := s.repo.GetPlan(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound(MsgPlanNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.toCache(ctx, planKey(id), p)
	return p, nil
}

// Create сохраняет тариф и сбрасывает кэш списка.
func (s *Service) Create(ctx context.Context, req models.CreatePlanRequest) (*models.Plan, error) {
	const op = "services.plan.Create"

	req.Normalize()
	if req.Name == "" || req.SubTitle == "" || req.Description == "" {
		return nil, apperr.Validation(MsgRequiredFields)
	}

	created, err := s.repo.CreatePlan(ctx, &models.Plan{
		Name:           req.Name,
		SubTitle:       req.SubTitle,
		Price:          req.Price,
		Pack:           req.Pack,
		Type:           req.Type,
		Description:    req.Description,
		AddsOnServices: req.AddsOnServices,
	})
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.Validation(MsgUnknownAddOn)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Invalidate(ctx, listCacheKey); err != nil {
		s.log.Warn("failed to invalidate plans cache", slog.String("key", listCacheKey), sl.Err(err))
	}
	s.log.Info("plan created", slog.String("id", created.ID), slog.String("pack", string(created.Pack)))
	return created, nil
}

// fromCache читает ключ; ошибка кэша не мешает обратиться к хранилищу.
func (s *Service) fromCache(ctx context.Context, key string, result any) bool {
	found, err := s.cache.Get(ctx, key, result)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", key), sl.Err(err))
		return false
	}
	return found
}

func (s *Service) toCache(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value, cacheTTL); err != nil {
		s.log.Warn("failed to cache plans", slog.String("key", key), sl.Err(err))
	}
}
