package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
)

// planColumns ожидает алиас p для plans. Список доп. услуг собирается подзапросом.
const planColumns = `p.id, p.name, p.sub_title, p.price, p.pack, p.type, p.description,
	COALESCE((SELECT json_agg(pa.add_on_service_id ORDER BY pa.position)
	          FROM plan_add_on_services pa WHERE pa.plan_id = p.id), '[]'::json),
	p.created_at, p.updated_at`

func scanPlan(row rowScanner) (*models.Plan, error) {
	var (
		p      models.Plan
		addOns []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &p.SubTitle, &p.Price, &p.Pack, &p.Type, &p.Description,
		&addOns, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(addOns, &p.AddsOnServices); err != nil {
		return nil, fmt.Errorf("decode add-on ids: %w", err)
	}
	return &p, nil
}

// CreatePlan сохраняет тариф вместе со ссылками на доп. услуги.
// Неизвестная доп. услуга даёт storage.ErrNotFound.
func (s *Storage) CreatePlan(ctx context.Context, p *models.Plan) (*models.Plan, error) {
	const op = "storage.CreatePlan"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var id string
	err = tx.QueryRowContext(ctx, `INSERT INTO plans (name, sub_title, price, pack, type, description)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		p.Name, p.SubTitle, p.Price, p.Pack, p.Type, p.Description).Scan(&id)
	if err != nil {
		return nil, wrap(op, err)
	}

	for i, addOnID := range p.AddsOnServices {
		if _, err := tx.ExecContext(ctx, `INSERT INTO plan_add_on_services (plan_id, add_on_service_id, position)
			VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`, id, addOnID, i); err != nil {
			return nil, wrap(op, err)
		}
	}

	created, err := scanPlan(tx.QueryRowContext(ctx, `SELECT `+planColumns+` FROM plans p WHERE p.id = $1`, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}
	return created, nil
}

// GetPlan возвращает тариф по id.
func (s *Storage) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	const op = "storage.GetPlan"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	p, err := scanPlan(s.DB.QueryRowContext(ctx, `SELECT `+planColumns+` FROM plans p WHERE p.id = $1`, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return p, nil
}

// ListPlans возвращает все тарифы, дешёвые первыми.
func (s *Storage) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	const op = "storage.ListPlans"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+planColumns+` FROM plans p ORDER BY p.price, p.name`)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	plans := make([]*models.Plan, 0)
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plans, nil
}
