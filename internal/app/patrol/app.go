package patrol

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/streadway/amqp"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/cache"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/config"
	grpchealth "github.com/FSDTeam-SAA/lharris5324-backend/internal/grpc/health"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/jwt"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/rabbitmq"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/sl"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/metrics"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/migrations"
	authservice "github.com/FSDTeam-SAA/lharris5324-backend/internal/services/auth"
	planservice "github.com/FSDTeam-SAA/lharris5324-backend/internal/services/plan"
	userservice "github.com/FSDTeam-SAA/lharris5324-backend/internal/services/user"
	visitservice "github.com/FSDTeam-SAA/lharris5324-backend/internal/services/visit"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/storage/repository"
)

const (
	shutdownTimeout = 15 * time.Second
	healthInterval  = 15 * time.Second
)

// App — HTTP API вместе с gRPC health-сервером.
type App struct {
	server *http.Server
	health *grpchealth.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New подключает зависимости, применяет миграции и собирает маршруты.
// При ошибке уже открытые ресурсы закрываются.
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
	if err = migrations.Run(a.db.DB, cfg.MigrationsPath); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	a.cache, err = cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	a.conn, err = rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	// Очереди объявляются и здесь, чтобы события не терялись до старта уведомлений.
	a.ch, err = rabbitmq.SetupChannel(a.conn, rabbitmq.VisitQueues())
	if err != nil {
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	publisher := rabbitmq.NewPublisher(a.ch)
	services := Services{
		Auth:   authservice.NewService(a.db, jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)),
		Users:  userservice.NewService(a.db, logger),
		Plans:  planservice.NewService(a.db, a.cache, logger),
		Visits: visitservice.NewService(a.db, publisher, m, logger),
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg.HTTPServer, a.db, m, reg, services)

	a.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	a.health, err = grpchealth.New(cfg.GRPCAddress, a.db, healthInterval, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to listen grpc: %w", err)
	}
	return a, nil
}

// Run обслуживает HTTP и gRPC до отмены ctx, затем корректно останавливается.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	healthCtx, stopHealth := context.WithCancel(ctx)
	defer stopHealth()
	go func() {
		if err := a.health.Run(healthCtx); err != nil {
			errCh <- fmt.Errorf("grpc health: %w", err)
		}
	}()

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.logger.Info("shutting down HTTP server gracefully")
	if err := a.server.Shutdown(timeoutCtx); err != nil && runErr == nil {
		runErr = err
	}
	stopHealth()
	a.close()
	return runErr
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close cache", sl.Err(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("failed to close storage", sl.Err(err))
		}
	}
}
