// Package sender превращает события визитов из брокера в письма клиентам.
package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/rabbitmq"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/sl"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
)

// Mailer отправляет одно письмо.
type Mailer interface {
	Send(to, subject, body string) error
}

// Service — обработчик уведомлений о визитах.
type Service struct {
	mailer Mailer
	log    *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(mailer Mailer, log *slog.Logger) *Service {
	return &Service{
		mailer: mailer,
		log:    log,
	}
}

// Handler возвращает обработчик очереди для ключа маршрутизации routingKey.
// Нечитаемые сообщения и события без адресата подтверждаются и отбрасываются,
// ошибка отправки письма возвращает сообщение в очередь.
func (s *Service) Handler(routingKey string) func(context.Context, []byte) error {
	return func(_ context.Context, body []byte) error {
		const op = "services.sender.Handle"
		log := s.log.With(sl.Op(op), slog.String("routing_key", routingKey))

		var event models.VisitEvent
		if err := json.Unmarshal(body, &event); err != nil {
			log.Error("failed to unmarshal visit event, dropping", sl.Err(err))
			return nil
		}
		if event.ClientEmail == "" {
			log.Warn("visit event without recipient, dropping", slog.String("visit", event.VisitID))
			return nil
		}

		subject, text := Compose(routingKey, event)
		if err := s.mailer.Send(event.ClientEmail, subject, text); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		log.Info("notification sent", slog.String("visit", event.VisitID))
		return nil
	}
}

// Compose формирует тему и текст письма для события.
func Compose(routingKey string, e models.VisitEvent) (subject, body string) {
	name := e.ClientName
	if name == "" {
		name = "there"
	}
	when := e.Date.UTC().Format(time.RFC1123)

	var b strings.Builder
	fmt.Fprintf(&b, "Hello, %s!\n\n", name)
	switch routingKey {
	case rabbitmq.RoutingVisitCreated:
		subject = fmt.Sprintf("Visit %s scheduled", e.VisitID)
		fmt.Fprintf(&b, "Your visit %s to %s is scheduled for %s.\nWe will confirm it shortly.", e.VisitID, e.Address, when)
	case rabbitmq.RoutingVisitReminder:
		subject = fmt.Sprintf("Reminder: visit %s tomorrow", e.VisitID)
		fmt.Fprintf(&b, "This is a reminder that your visit %s to %s takes place on %s.", e.VisitID, e.Address, when)
	default:
		subject = fmt.Sprintf("Visit %s is now %s", e.VisitID, e.Status)
		fmt.Fprintf(&b, "The status of your visit %s to %s on %s changed to %s.", e.VisitID, e.Address, when, e.Status)
	}
	return subject, b.String()
}
