package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/storage"
)

func TestStorage_Plans(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	t.Run("seeded plans", func(t *testing.T) {
		plans, err := s.ListPlans(ctx)
		require.NoError(t, err)
		require.Len(t, plans, 4)

		p, err := s.GetPlan(ctx, seedPlanMonthly)
		require.NoError(t, err)
		assert.Equal(t, models.PackMonthly, p.Pack)
		assert.Equal(t, []string{seedAddOnKeys, seedAddOnAlarm}, p.AddsOnServices)
	})

	t.Run("create with add-ons", func(t *testing.T) {
		p, err := s.CreatePlan(ctx, &models.Plan{
			Name: "Night Owl", SubTitle: "Nights only", Price: 59, Pack: models.PackWeekly,
			Type: models.PlanFlexible, Description: "Night patrols.",
			AddsOnServices: []string{seedAddOnAlarm},
		})
		require.NoError(t, err)
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, []string{seedAddOnAlarm}, p.AddsOnServices)
	})

	t.Run("unknown add-on rolls back", func(t *testing.T) {
		_, err := s.CreatePlan(ctx, &models.Plan{
			Name: "Broken", SubTitle: "x", Price: 1, Pack: models.PackDaily,
			Type: models.PlanFlexible, Description: "x",
			AddsOnServices: []string{uuid.NewString()},
		})
		require.ErrorIs(t, err, storage.ErrNotFound)

		plans, err := s.ListPlans(ctx)
		require.NoError(t, err)
		assert.Len(t, plans, 5)
	})

	t.Run("missing plan", func(t *testing.T) {
		_, err := s.GetPlan(ctx, uuid.NewString())
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestStorage_PaymentsAndUserPlans(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()
	f := fixtures{t: t, s: s}

	client := f.user("Pat Client", "pat@patrol.test", "client", "active")

	_, err := s.LatestPayment(ctx, client)
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.CurrentUserPlan(ctx, client)
	require.ErrorIs(t, err, storage.ErrNotFound)

	now := time.Now().UTC()
	f.payment(client, seedPlanPerPatrol, "completed", now.AddDate(0, 0, -10))
	f.payment(client, seedPlanWeekly, "pending", now.Add(-time.Hour))

	pm, err := s.LatestPayment(ctx, client)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, pm.Status)
	require.NotNil(t, pm.Plan)
	assert.Equal(t, models.PackWeekly, pm.Plan.Pack)

	f.userPlan(client, seedPlanPerPatrol)
	time.Sleep(10 * time.Millisecond)
	latest := f.userPlan(client, seedPlanMonthly, seedAddOnKeys, seedAddOnAlarm)

	up, err := s.CurrentUserPlan(ctx, client)
	require.NoError(t, err)
	assert.Equal(t, latest, up.ID)
	require.NotNil(t, up.Plan)
	assert.Equal(t, "Monthly Shield", up.Plan.Name)
	require.Len(t, up.AddOnServices, 2)
	assert.Equal(t, "Alarm response", up.AddOnServices[0].Name)
}
