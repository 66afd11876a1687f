package health

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
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type MockPinger struct{ mock.Mock }

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func startServer(t *testing.T, db Pinger) healthpb.HealthClient {
	t.Helper()

	srv, err := New("127.0.0.1:0", db, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})

	conn, err := grpc.NewClient(srv.Addr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return healthpb.NewHealthClient(conn)
}

func TestHealth_Serving(t *testing.T) {
	db := new(MockPinger)
	db.On("Ping", mock.Anything).Return(nil)

	client := startServer(t, db)

	require.Eventually(t, func() bool {
		resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
		return err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
	}, 5*time.Second, 20*time.Millisecond)
}

func TestCheck_DatabaseDown(t *testing.T) {
	db := new(MockPinger)
	db.On("Ping", mock.Anything).Return(nil).Once()
	db.On("Ping", mock.Anything).Return(errors.New("connection refused")).Once()

	srv, err := New("127.0.0.1:0", db, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.listener.Close() })

	ctx := context.Background()
	req := &healthpb.HealthCheckRequest{Service: ServiceName}

	srv.Check(ctx)
	resp, err := srv.health.Check(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	srv.Check(ctx)
	resp, err = srv.health.Check(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())

	db.AssertExpectations(t)
}
