// Package notifier собирает сервис уведомлений: планировщик напоминаний
// о визитах и потребителей событий, отправляющих письма клиентам.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streadway/amqp"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/config"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/rabbitmq"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/sl"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/smtp"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/metrics"
	reminderservice "github.com/FSDTeam-SAA/lharris5324-backend/internal/services/reminder"
	senderservice "github.com/FSDTeam-SAA/lharris5324-backend/internal/services/sender"
	visitservice "github.com/FSDTeam-SAA/lharris5324-backend/internal/services/visit"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/storage/repository"
)

const (
	dbReadyAttempts = 10
	dbReadyDelay    = 3 * time.Second
)

// App представляет сервис уведомлений.
type App struct {
	reminders *reminderservice.Service
	sender    *senderservice.Service
	metrics   *http.Server
	db        *repository.Storage
	conn      *amqp.Connection
	consumeCh *amqp.Channel
	publishCh *amqp.Channel
	logger    *slog.Logger
}

func waitForDB(ctx context.Context, db *repository.Storage) error {
	for i := 0; i < dbReadyAttempts; i++ {
		if err := repository.CheckDatabaseReady(ctx, db); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dbReadyDelay):
		}
	}
	return fmt.Errorf("database not ready after %d attempts", dbReadyAttempts)
}

// New создает новый экземпляр приложения уведомлений.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (app *App, err error) {
	a := &App{logger: logger}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	a.db, err = repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	// Схему создаёт API, здесь только ждём её появления.
	if err = waitForDB(ctx, a.db); err != nil {
		return nil, err
	}

	a.conn, err = rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	a.consumeCh, err = rabbitmq.SetupChannel(a.conn, rabbitmq.VisitQueues())
	if err != nil {
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}
	a.publishCh, err = a.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open publish channel: %w", err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	a.metrics = &http.Server{
		Addr:              cfg.MetricsAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	visits := visitservice.NewService(a.db, nil, nil, logger)
	a.reminders = reminderservice.NewService(visits, rabbitmq.NewPublisher(a.publishCh), m, cfg.ReminderInterval, logger)
	a.sender = senderservice.NewService(smtp.NewMailer(smtp.NewTransport(cfg.SMTP, logger), logger), logger)

	return a, nil
}

// Run запускает потребителей и планировщик и ждёт отмены ctx.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	for _, q := range rabbitmq.VisitQueues() {
		if err := rabbitmq.Consume(ctx, a.logger, a.consumeCh, q.QueueName, a.sender.Handler(q.RoutingKey)); err != nil {
			a.logger.Error("failed to start consumer", slog.String("queue", q.QueueName), sl.Err(err))
			return err
		}
	}

	go func() {
		a.logger.Info("metrics server starting on", slog.String("address", a.metrics.Addr))
		if err := a.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", sl.Err(err))
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		a.reminders.Run(ctx)
	}()

	<-ctx.Done()
	a.logger.Info("notifier shutting down gracefully")
	<-done

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.metrics.Shutdown(shutdownCtx)
}

func (a *App) close() {
	for _, ch := range []*amqp.Channel{a.publishCh, a.consumeCh} {
		if ch == nil {
			continue
		}
		if err := ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("failed to close storage", sl.Err(err))
		}
	}
}
