package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/sl"
)

// prefetch ограничивает число неподтверждённых сообщений на канал
// и одновременно работающих обработчиков.
const prefetch = 10

// Consume запускает обработку сообщений из queue. Ошибка обработчика
// возвращает сообщение в очередь. Остановка — через отмену ctx.
func Consume(ctx context.Context, log *slog.Logger, ch *amqp.Channel, queue string, handler func(context.Context, []byte) error) error {
	const op = "rabbitmq.Consume"

	deliveries, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(sl.Op(op), slog.String("queue", queue))
	sem := make(chan struct{}, prefetch)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					log.Info("delivery channel closed")
					return
				}
				sem <- struct{}{}
				go func(d amqp.Delivery) {
					defer func() { <-sem }()
					if err := handler(ctx, d.Body); err != nil {
						log.Error("handler failed, requeue", sl.Err(err))
						if err := d.Nack(false, true); err != nil {
							log.Error("failed to nack message", sl.Err(err))
						}
						return
					}
					if err := d.Ack(false); err != nil {
						log.Error("failed to ack message", sl.Err(err))
					}
				}(d)
			}
		}
	}()
	return nil
}
