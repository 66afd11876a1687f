package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
)

// LatestPayment возвращает последнюю по времени создания оплату клиента
// вместе с тарифом. Если оплат нет, возвращает storage.ErrNotFound.
func (s *Storage) LatestPayment(ctx context.Context, userID string) (*models.Payment, error) {
	const op = "storage.LatestPayment"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT pm.id, pm.user_id, pm.amount, pm.status, pm.created_at, ` + planColumns + `
			  FROM payments pm
			  JOIN plans p ON p.id = pm.plan_id
			  WHERE pm.user_id = $1
			  ORDER BY pm.created_at DESC
			  LIMIT 1`

	var (
		pm     models.Payment
		plan   models.Plan
		addOns []byte
	)
	err := s.DB.QueryRowContext(ctx, query, userID).Scan(
		&pm.ID, &pm.UserID, &pm.Amount, &pm.Status, &pm.CreatedAt,
		&plan.ID, &plan.Name, &plan.SubTitle, &plan.Price, &plan.Pack, &plan.Type, &plan.Description,
		&addOns, &plan.CreatedAt, &plan.UpdatedAt)
	if err != nil {
		return nil, wrap(op, err)
	}
	if err := json.Unmarshal(addOns, &plan.AddsOnServices); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	pm.Plan = &plan
	return &pm, nil
}

// CurrentUserPlan возвращает последний выбранный клиентом тариф с доп. услугами.
// Если тариф не выбран, возвращает storage.ErrNotFound.
func (s *Storage) CurrentUserPlan(ctx context.Context, userID string) (*models.UserPlan, error) {
	const op = "storage.CurrentUserPlan"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT up.id, up.user_id, ` + planColumns + `, ` + userPlanAddOns + `
			  FROM user_plans up
			  JOIN plans p ON p.id = up.plan_id
			  WHERE up.user_id = $1
			  ORDER BY up.created_at DESC
			  LIMIT 1`

	var (
		up        models.UserPlan
		plan      models.Plan
		planAddOn []byte
		addOns    []byte
	)
	err := s.DB.QueryRowContext(ctx, query, userID).Scan(
		&up.ID, &up.UserID,
		&plan.ID, &plan.Name, &plan.SubTitle, &plan.Price, &plan.Pack, &plan.Type, &plan.Description,
		&planAddOn, &plan.CreatedAt, &plan.UpdatedAt, &addOns)
	if err != nil {
		return nil, wrap(op, err)
	}
	if err := json.Unmarshal(planAddOn, &plan.AddsOnServices); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(addOns, &up.AddOnServices); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	up.Plan = &plan
	return &up, nil
}

// userPlanAddOns ожидает алиас up для user_plans.
const userPlanAddOns = `COALESCE((SELECT json_agg(json_build_object('_id', a.id, 'name', a.name, 'price', a.price) ORDER BY a.name)
	FROM user_plan_add_on_services ua
	JOIN add_on_services a ON a.id = ua.add_on_service_id
	WHERE ua.user_plan_id = up.id), '[]'::json)`
