// Package health отдаёт состояние сервиса по стандартному протоколу
// grpc.health.v1, чтобы оркестратор мог проверять его без HTTP.
package health

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/sl"
)

// ServiceName — имя, под которым публикуется статус API.
const ServiceName = "patrol.api"

// Pinger проверяет доступность зависимости.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server обслуживает только сервис health.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	listener   net.Listener
	db         Pinger
	interval   time.Duration
	log        *slog.Logger
}

// New открывает listener на address. Статус ServiceName обновляется
// по результату db.Ping раз в interval.
func New(address string, db Pinger, interval time.Duration, log *slog.Logger) (*Server, error) {
	lis, err := net.Listen("tcp", address)
	if err != nil {
		return nil, err
	}

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)

	return &Server{
		grpcServer: grpcServer,
		health:     hs,
		listener:   lis,
		db:         db,
		interval:   interval,
		log:        log,
	}, nil
}

// Addr возвращает фактический адрес listener.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Check один раз пингует базу и выставляет статус.
func (s *Server) Check(ctx context.Context) {
	const op = "grpc.health.Check"

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.db.Ping(ctx); err != nil {
		s.log.Warn("database is unavailable", sl.Op(op), sl.Err(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus(ServiceName, status)
	s.health.SetServingStatus("", status)
}

// Run обслуживает запросы до отмены ctx.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("gRPC health server listening on", slog.String("address", s.Addr()))
		errCh <- s.grpcServer.Serve(s.listener)
	}()

	s.Check(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.health.Shutdown()
			s.grpcServer.GracefulStop()
			return nil
		case err := <-errCh:
			return err
		case <-ticker.C:
			s.Check(ctx)
		}
	}
}
