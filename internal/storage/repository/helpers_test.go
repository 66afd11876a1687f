package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/migrations"
)

// setupTestStorage поднимает PostgreSQL, накатывает миграции и возвращает Storage.
func setupTestStorage(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	dbURL := func(host string, port nat.Port) string {
		return fmt.Sprintf("postgres://test:test@%s:%s/patrol?sslmode=disable", host, port.Port())
	}

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("patrol"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForSQL(nat.Port("5432/tcp"), "pgx", dbURL).WithStartupTimeout(2*time.Minute),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := New(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	root, err := filepath.Abs("../../..")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(s.DB, filepath.Join(root, "migrations")))
	require.NoError(t, CheckDatabaseReady(ctx, s))
	return s
}

// Идентификаторы справочных данных из миграции 000002.
const (
	seedPlanPerPatrol = "8a3e4b10-7c2d-4f6a-b1e2-0a0b0c0d0e01"
	seedPlanWeekly    = "8a3e4b10-7c2d-4f6a-b1e2-0a0b0c0d0e03"
	seedPlanMonthly   = "8a3e4b10-7c2d-4f6a-b1e2-0a0b0c0d0e04"
	seedAddOnKeys     = "6f1c2a8e-0d55-4c57-9d1e-1a2b3c4d5e01"
	seedAddOnAlarm    = "6f1c2a8e-0d55-4c57-9d1e-1a2b3c4d5e02"
)

// fixtures создаёт тестовые записи напрямую через SQL.
type fixtures struct {
	t *testing.T
	s *Storage
}

func (f fixtures) user(fullname, email, role, status string) string {
	f.t.Helper()
	var id string
	err := f.s.DB.QueryRow(`INSERT INTO users (fullname, email, password_hash, role, status)
		VALUES ($1, $2, 'hash', $3, $4) RETURNING id`, fullname, email, role, status).Scan(&id)
	require.NoError(f.t, err)
	return id
}

func (f fixtures) userPlan(userID, planID string, addOns ...string) string {
	f.t.Helper()
	var id string
	err := f.s.DB.QueryRow(`INSERT INTO user_plans (user_id, plan_id) VALUES ($1, $2) RETURNING id`,
		userID, planID).Scan(&id)
	require.NoError(f.t, err)
	for _, a := range addOns {
		_, err := f.s.DB.Exec(`INSERT INTO user_plan_add_on_services (user_plan_id, add_on_service_id) VALUES ($1, $2)`, id, a)
		require.NoError(f.t, err)
	}
	return id
}

func (f fixtures) payment(userID, planID, status string, createdAt time.Time) {
	f.t.Helper()
	_, err := f.s.DB.Exec(`INSERT INTO payments (user_id, plan_id, amount, status, created_at)
		VALUES ($1, $2, 100, $3, $4)`, userID, planID, status, createdAt)
	require.NoError(f.t, err)
}

func (f fixtures) visit(clientID, visitID, status, typ string, date time.Time, staffID *string) string {
	f.t.Helper()
	var id string
	err := f.s.DB.QueryRow(`INSERT INTO visits (visit_id, client_id, staff_id, address, date, status, type)
		VALUES ($1, $2, $3, '221B Baker Street', $4, $5, $6) RETURNING id`,
		visitID, clientID, staffID, date, status, typ).Scan(&id)
	require.NoError(f.t, err)
	return id
}

func (f fixtures) issue(visitID string) {
	f.t.Helper()
	_, err := f.s.DB.Exec(`INSERT INTO issues (visit_id, title) VALUES ($1, 'Broken gate')`, visitID)
	require.NoError(f.t, err)
}
