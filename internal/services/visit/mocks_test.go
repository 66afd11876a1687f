package visit

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) HasActiveVisit(ctx context.Context, clientID string) (bool, error) {
	args := m.Called(ctx, clientID)
	return args.Bool(0), args.Error(1)
}

func (m *RepoMock) LatestPayment(ctx context.Context, userID string) (*models.Payment, error) {
	args := m.Called(ctx, userID)
	if r, ok := args.Get(0).(*models.Payment); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) CurrentUserPlan(ctx context.Context, userID string) (*models.UserPlan, error) {
	args := m.Called(ctx, userID)
	if r, ok := args.Get(0).(*models.UserPlan); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) GetUser(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*models.User); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) CreateVisit(ctx context.Context, v *models.Visit) (*models.Visit, error) {
	args := m.Called(ctx, v)
	if r, ok := args.Get(0).(*models.Visit); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) GetVisit(ctx context.Context, id string) (*models.Visit, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*models.Visit); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) ListVisits(ctx context.Context, f models.VisitFilter, page *models.Page) ([]*models.Visit, error) {
	args := m.Called(ctx, f, page)
	if r, ok := args.Get(0).([]*models.Visit); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) CountVisits(ctx context.Context, f models.VisitFilter) (int, error) {
	args := m.Called(ctx, f)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) UpdateVisit(ctx context.Context, id, address string, date time.Time) error {
	return m.Called(ctx, id, address, date).Error(0)
}

func (m *RepoMock) UpdateVisitStatus(ctx context.Context, id string, from, to models.VisitStatus, staffID *string) error {
	return m.Called(ctx, id, from, to, staffID).Error(0)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	return m.Called(ctx, routingKey, event).Error(0)
}

type RecorderMock struct{ mock.Mock }

func (m *RecorderMock) VisitCreated()                   { m.Called() }
func (m *RecorderMock) VisitRejected(reason string)     { m.Called(reason) }
func (m *RecorderMock) VisitTransition(from, to string) { m.Called(from, to) }

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(repo *RepoMock, pub *PublisherMock, rec *RecorderMock) *Service {
	var events EventPublisher
	if pub != nil {
		events = pub
	}
	var metrics Recorder
	if rec != nil {
		metrics = rec
	}
	svc := NewService(repo, events, metrics, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return testNow }
	return svc
}

var client = models.Principal{UserID: "client-1", Email: "c@x.io", Role: models.RoleClient}
