package reminder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
)

type SourceMock struct{ mock.Mock }

func (m *SourceMock) DueBetween(ctx context.Context, from, to time.Time) ([]*models.Visit, error) {
	args := m.Called(ctx, from, to)
	if r, ok := args.Get(0).([]*models.Visit); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	return m.Called(ctx, routingKey, event).Error(0)
}

type RecorderMock struct{ mock.Mock }

func (m *RecorderMock) ReminderPublished() { m.Called() }

var now = time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)

func newTestService(src *SourceMock, pub *PublisherMock, rec *RecorderMock, interval time.Duration) *Service {
	var metrics Recorder
	if rec != nil {
		metrics = rec
	}
	s := NewService(src, pub, metrics, interval, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = func() time.Time { return now }
	return s
}

func TestService_RunOnce(t *testing.T) {
	src := new(SourceMock)
	pub := new(PublisherMock)
	rec := new(RecorderMock)

	from := now.Add(24 * time.Hour)
	to := from.Add(12 * time.Hour)
	src.On("DueBetween", mock.Anything, from, to).Return([]*models.Visit{
		{ID: "v1", VisitID: "VIS-1", Client: &models.UserPublic{Fullname: "Cara", Email: "cara@x.io"}},
		{ID: "v2", VisitID: "VIS-2"},
	}, nil).Once()
	pub.On("Publish", mock.Anything, "visit.reminder", mock.MatchedBy(func(e models.VisitEvent) bool {
		return e.ID == "v1" && e.ClientEmail == "cara@x.io"
	})).Return(nil).Once()
	pub.On("Publish", mock.Anything, "visit.reminder", mock.MatchedBy(func(e models.VisitEvent) bool {
		return e.ID == "v2"
	})).Return(errors.New("channel closed")).Once()
	rec.On("ReminderPublished").Once()

	n, err := newTestService(src, pub, rec, 12*time.Hour).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	src.AssertExpectations(t)
	pub.AssertExpectations(t)
	rec.AssertExpectations(t)
}

func TestService_RunOnce_NothingDue(t *testing.T) {
	src := new(SourceMock)
	pub := new(PublisherMock)
	src.On("DueBetween", mock.Anything, mock.Anything, mock.Anything).Return([]*models.Visit{}, nil).Once()

	n, err := newTestService(src, pub, nil, time.Hour).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_RunOnce_SourceError(t *testing.T) {
	src := new(SourceMock)
	src.On("DueBetween", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()

	_, err := newTestService(src, new(PublisherMock), nil, time.Hour).RunOnce(context.Background())
	assert.ErrorContains(t, err, "db down")
}

func TestService_RunStopsOnCancel(t *testing.T) {
	src := new(SourceMock)
	src.On("DueBetween", mock.Anything, mock.Anything, mock.Anything).Return([]*models.Visit{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		newTestService(src, new(PublisherMock), nil, 10*time.Millisecond).Run(ctx)
		close(done)
	}()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
	assert.GreaterOrEqual(t, len(src.Calls), 2)
}
