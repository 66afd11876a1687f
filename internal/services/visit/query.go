package visit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/apperr"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
)

// Bucket — именованная выборка визитов клиента.
type Bucket int

// Выборки визитов.
const (
	BucketAll Bucket = iota
	BucketCompleted
	BucketCompletedWithIssues
	BucketPast
	BucketUpcoming
)

// SearchQuery содержит параметры поиска визитов клиента.
type SearchQuery struct {
	Search string
	Status string
	Type   string
}

// filter строит фильтр выборки относительно текущего момента.
func (s *Service) filter(clientID string, b Bucket) models.VisitFilter {
	f := models.VisitFilter{ClientID: clientID, Sort: models.SortDateDesc}
	now := s.now().UTC()
	switch b {
	case BucketCompleted:
		f.Statuses = []models.VisitStatus{models.VisitCompleted}
	case BucketCompletedWithIssues:
		f.Statuses = []models.VisitStatus{models.VisitCompleted}
		f.HasIssues = true
	case BucketPast:
		f.DateBefore = &now
	case BucketUpcoming:
		f.DateFrom = &now
		f.Sort = models.SortDateAsc
	}
	return f
}

// List возвращает страницу визитов клиента из выборки b.
func (s *Service) List(ctx context.Context, p models.Principal, b Bucket, page models.Page) ([]*models.Visit, models.Pagination, error) {
	const op = "services.visit.List"
	return s.page(ctx, op, s.filter(p.UserID, b), page)
}

// ListByStatus возвращает все визиты клиента в статусе status, новые первыми.
func (s *Service) ListByStatus(ctx context.Context, p models.Principal, status models.VisitStatus) ([]*models.Visit, error) {
	const op = "services.visit.ListByStatus"

	visits, err := s.repo.ListVisits(ctx, models.VisitFilter{
		ClientID: p.UserID,
		Statuses: []models.VisitStatus{status},
		Sort:     models.SortCreatedDesc,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return visits, nil
}

// Search ищет визиты клиента. Status и Type сравниваются без учёта регистра,
// Search ищется подстрокой.
func (s *Service) Search(ctx context.Context, p models.Principal, q SearchQuery, page models.Page) ([]*models.Visit, models.Pagination, error) {
	const op = "services.visit.Search"

	f := models.VisitFilter{
		ClientID:   p.UserID,
		StatusFold: strings.TrimSpace(q.Status),
		TypeFold:   strings.TrimSpace(q.Type),
		Search:     strings.TrimSpace(q.Search),
		Sort:       models.SortCreatedDesc,
	}
	return s.page(ctx, op, f, page)
}

// Next возвращает ближайший визит клиента, начиная с текущего момента.
func (s *Service) Next(ctx context.Context, p models.Principal) (*models.Visit, error) {
	const op = "services.visit.Next"

	first := models.NewPage(1, 1)
	visits, err := s.repo.ListVisits(ctx, s.filter(p.UserID, BucketUpcoming), &first)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(visits) == 0 {
		return nil, apperr.NotFound(MsgNoUpcoming)
	}
	return visits[0], nil
}

// CountWithIssues считает визиты клиента, по которым заведены проблемы.
func (s *Service) CountWithIssues(ctx context.Context, p models.Principal) (*models.IssuesCount, error) {
	const op = "services.visit.CountWithIssues"

	total, err := s.repo.CountVisits(ctx, models.VisitFilter{ClientID: p.UserID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if total == 0 {
		return nil, apperr.NotFound(MsgNoVisits)
	}
	withIssues, err := s.repo.CountVisits(ctx, models.VisitFilter{ClientID: p.UserID, HasIssues: true})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.IssuesCount{IssuesCount: withIssues}, nil
}

// DueBetween возвращает активные визиты всех клиентов с датой в [from, to).
func (s *Service) DueBetween(ctx context.Context, from, to time.Time) ([]*models.Visit, error) {
	const op = "services.visit.DueBetween"

	visits, err := s.repo.ListVisits(ctx, models.VisitFilter{
		Statuses:   models.ActiveVisitStatuses,
		DateFrom:   &from,
		DateBefore: &to,
		Sort:       models.SortDateAsc,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return visits, nil
}

func (s *Service) page(ctx context.Context, op string, f models.VisitFilter, page models.Page) ([]*models.Visit, models.Pagination, error) {
	visits, err := s.repo.ListVisits(ctx, f, &page)
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("%s: %w", op, err)
	}
	total, err := s.repo.CountVisits(ctx, f)
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("%s: %w", op, err)
	}
	return visits, models.NewPagination(page, total), nil
}
