// Package reminder периодически находит визиты, до которых осталось
// около суток, и публикует по ним напоминания.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/rabbitmq"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/sl"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
)

// lead задаёт, за сколько до визита отправляется напоминание.
const lead = 24 * time.Hour

// VisitSource возвращает активные визиты с датой в [from, to).
type VisitSource interface {
	DueBetween(ctx context.Context, from, to time.Time) ([]*models.Visit, error)
}

// EventPublisher публикует события в брокер.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// Recorder учитывает отправленные напоминания.
type Recorder interface {
	ReminderPublished()
}

// Service — планировщик напоминаний.
type Service struct {
	visits   VisitSource
	events   EventPublisher
	metrics  Recorder
	interval time.Duration
	log      *slog.Logger
	now      func() time.Time
}

// NewService создает новый экземпляр Service.
func NewService(visits VisitSource, events EventPublisher, metrics Recorder, interval time.Duration, log *slog.Logger) *Service {
	return &Service{
		visits:   visits,
		events:   events,
		metrics:  metrics,
		interval: interval,
		log:      log,
		now:      time.Now,
	}
}

// Run проверяет визиты сразу и затем раз в interval, пока ctx не отменён.
// Окна соседних проверок не пересекаются, поэтому визит получает одно напоминание.
func (s *Service) Run(ctx context.Context) {
	const op = "services.reminder.Run"
	log := s.log.With(sl.Op(op))

	if _, err := s.RunOnce(ctx); err != nil {
		log.Error("reminder pass failed", sl.Err(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("reminder scheduler stopped")
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				log.Error("reminder pass failed", sl.Err(err))
			}
		}
	}
}

// RunOnce публикует напоминания по визитам с датой в
// [now+lead, now+lead+interval) и возвращает число опубликованных.
func (s *Service) RunOnce(ctx context.Context) (int, error) {
	const op = "services.reminder.RunOnce"

	now := s.now().UTC()
	from := now.Add(lead)
	to := from.Add(s.interval)

	visits, err := s.visits.DueBetween(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(visits) == 0 {
		s.log.Info("no visits due for reminder")
		return 0, nil
	}
	s.log.Info("found visits due for reminder", slog.Int("count", len(visits)))

	published := 0
	for _, v := range visits {
		event := models.VisitEvent{
			ID:         v.ID,
			VisitID:    v.VisitID,
			Address:    v.Address,
			Date:       v.Date,
			Status:     v.Status,
			OccurredAt: now,
		}
		if v.Client != nil {
			event.ClientName = v.Client.Fullname
			event.ClientEmail = v.Client.Email
		}
		if err := s.events.Publish(ctx, rabbitmq.RoutingVisitReminder, event); err != nil {
			s.log.Error("failed to publish reminder", slog.String("visit", v.VisitID), sl.Err(err))
			continue
		}
		published++
		if s.metrics != nil {
			s.metrics.ReminderPublished()
		}
	}
	return published, nil
}
