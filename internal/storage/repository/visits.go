package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/storage"
)

const visitNumberConstraint = "visits_visit_id_key"

// visitFrom подтягивает клиента, сотрудника и снимок тарифа.
const visitFrom = ` FROM visits v
	JOIN users c ON c.id = v.client_id
	LEFT JOIN users s ON s.id = v.staff_id
	LEFT JOIN user_plans up ON up.id = v.user_plan_id
	LEFT JOIN plans p ON p.id = up.plan_id`

const visitSelect = `SELECT v.id, v.visit_id, v.client_id, v.staff_id, v.address, v.date, v.status,
	v.type, v.is_paid, v.user_plan_id, v.created_at, v.updated_at,
	c.fullname, c.email, c.role, c.status, c.last_active, c.is_verified, c.created_at, c.updated_at,
	s.fullname, s.email, s.role, s.status, s.last_active, s.is_verified, s.created_at, s.updated_at,
	up.user_id, p.id, p.name, p.sub_title, p.price, p.pack, p.type, p.description,
	COALESCE((SELECT json_agg(pa.add_on_service_id ORDER BY pa.position)
	          FROM plan_add_on_services pa WHERE pa.plan_id = p.id), '[]'::json),
	p.created_at, p.updated_at,
	` + userPlanAddOns + `,
	COALESCE((SELECT json_agg(i.id ORDER BY i.created_at) FROM issues i WHERE i.visit_id = v.id), '[]'::json)` + visitFrom

type nullUser struct {
	fullname, email, role, status sql.NullString
	lastActive                    sql.NullTime
	isVerified                    sql.NullBool
	createdAt, updatedAt          sql.NullTime
}

func (n *nullUser) dest() []any {
	return []any{&n.fullname, &n.email, &n.role, &n.status, &n.lastActive, &n.isVerified, &n.createdAt, &n.updatedAt}
}

func (n *nullUser) public(id string) *models.UserPublic {
	u := &models.UserPublic{
		ID:         id,
		Fullname:   n.fullname.String,
		Email:      n.email.String,
		Role:       models.Role(n.role.String),
		Status:     models.UserStatus(n.status.String),
		IsVerified: n.isVerified.Bool,
	}
	if n.lastActive.Valid {
		u.LastActive = &n.lastActive.Time
	}
	if n.createdAt.Valid {
		u.CreatedAt = &n.createdAt.Time
	}
	if n.updatedAt.Valid {
		u.UpdatedAt = &n.updatedAt.Time
	}
	return u
}

type visitRow struct {
	v          models.Visit
	staffID    sql.NullString
	userPlanID sql.NullString
	client     nullUser
	staff      nullUser

	upUserID                                     sql.NullString
	planID, planName, planSub, planPack, planTyp sql.NullString
	planDesc                                     sql.NullString
	planPrice                                    sql.NullFloat64
	planAddOns                                   []byte
	planCreated, planUpdated                     sql.NullTime
	userPlanAddOns                               []byte
	issues                                       []byte
}

func (r *visitRow) dest() []any {
	d := []any{&r.v.ID, &r.v.VisitID, &r.v.ClientID, &r.staffID, &r.v.Address, &r.v.Date, &r.v.Status,
		&r.v.Type, &r.v.IsPaid, &r.userPlanID, &r.v.CreatedAt, &r.v.UpdatedAt}
	d = append(d, r.client.dest()...)
	d = append(d, r.staff.dest()...)
	return append(d, &r.upUserID, &r.planID, &r.planName, &r.planSub, &r.planPrice, &r.planPack, &r.planTyp,
		&r.planDesc, &r.planAddOns, &r.planCreated, &r.planUpdated, &r.userPlanAddOns, &r.issues)
}

func (r *visitRow) model() (*models.Visit, error) {
	v := r.v
	v.Date = v.Date.UTC()
	v.Client = r.client.public(v.ClientID)

	if r.staffID.Valid {
		id := r.staffID.String
		v.StaffID = &id
		v.Staff = r.staff.public(id)
	}

	if err := json.Unmarshal(r.issues, &v.Issues); err != nil {
		return nil, fmt.Errorf("decode issues: %w", err)
	}

	if r.userPlanID.Valid {
		id := r.userPlanID.String
		v.UserPlanID = &id
		up := &models.UserPlan{ID: id, UserID: r.upUserID.String}
		if err := json.Unmarshal(r.userPlanAddOns, &up.AddOnServices); err != nil {
			return nil, fmt.Errorf("decode user plan add-ons: %w", err)
		}
		if r.planID.Valid {
			plan := &models.Plan{
				ID:          r.planID.String,
				Name:        r.planName.String,
				SubTitle:    r.planSub.String,
				Price:       r.planPrice.Float64,
				Pack:        models.Pack(r.planPack.String),
				Type:        models.PlanType(r.planTyp.String),
				Description: r.planDesc.String,
				CreatedAt:   r.planCreated.Time,
				UpdatedAt:   r.planUpdated.Time,
			}
			if err := json.Unmarshal(r.planAddOns, &plan.AddsOnServices); err != nil {
				return nil, fmt.Errorf("decode plan add-ons: %w", err)
			}
			up.Plan = plan
		}
		v.UserPlan = up
	}
	return &v, nil
}

func scanVisit(row rowScanner) (*models.Visit, error) {
	var r visitRow
	if err := row.Scan(r.dest()...); err != nil {
		return nil, err
	}
	return r.model()
}

func visitWhere(f models.VisitFilter) *where {
	w := &where{}
	if f.ClientID != "" {
		w.add("v.client_id = ?", f.ClientID)
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			statuses[i] = string(st)
		}
		w.in("v.status", statuses)
	}
	if f.StatusFold != "" {
		w.add("LOWER(v.status) = LOWER(?)", f.StatusFold)
	}
	if f.TypeFold != "" {
		w.add("LOWER(v.type) = LOWER(?)", f.TypeFold)
	}
	if f.Search != "" {
		p := containsPattern(f.Search)
		w.add(`(c.fullname ILIKE ? OR s.fullname ILIKE ? OR v.type ILIKE ?
			OR v.status ILIKE ? OR v.visit_id ILIKE ?)`, p, p, p, p, p)
	}
	if f.HasIssues {
		w.add("EXISTS (SELECT 1 FROM issues i WHERE i.visit_id = v.id)")
	}
	if f.DateFrom != nil {
		w.add("v.date >= ?", *f.DateFrom)
	}
	if f.DateBefore != nil {
		w.add("v.date < ?", *f.DateBefore)
	}
	return w
}

func visitOrder(sort models.VisitSort) string {
	switch sort {
	case models.SortDateAsc:
		return " ORDER BY v.date ASC, v.id"
	case models.SortDateDesc:
		return " ORDER BY v.date DESC, v.id"
	default:
		return " ORDER BY v.created_at DESC, v.id"
	}
}

// HasActiveVisit сообщает, есть ли у клиента визит в статусе pending или confirmed.
func (s *Storage) HasActiveVisit(ctx context.Context, clientID string) (bool, error) {
	const op = "storage.HasActiveVisit"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (
		SELECT 1 FROM visits WHERE client_id = $1 AND status IN ('pending', 'confirmed')
	)`, clientID).Scan(&exists)
	if err != nil {
		return false, wrap(op, err)
	}
	return exists, nil
}

// CreateVisit сохраняет визит и возвращает его с подтянутыми связями.
// Второй активный визит клиента упирается в частичный уникальный индекс
// и возвращается как storage.ErrConflict, занятый номер визита как
// storage.ErrDuplicateVisitID.
func (s *Storage) CreateVisit(ctx context.Context, v *models.Visit) (*models.Visit, error) {
	const op = "storage.CreateVisit"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var id string
	err := s.DB.QueryRowContext(ctx, `INSERT INTO visits
			(visit_id, client_id, staff_id, address, date, status, type, is_paid, user_plan_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		v.VisitID, v.ClientID, v.StaffID, v.Address, v.Date, v.Status, v.Type, v.IsPaid, v.UserPlanID).Scan(&id)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation && pgErr.ConstraintName == visitNumberConstraint {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrDuplicateVisitID)
	}
	if err != nil {
		return nil, wrap(op, err)
	}

	created, err := s.GetVisit(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// GetVisit возвращает визит по id со всеми связями.
func (s *Storage) GetVisit(ctx context.Context, id string) (*models.Visit, error) {
	const op = "storage.GetVisit"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	v, err := scanVisit(s.DB.QueryRowContext(ctx, visitSelect+` WHERE v.id = $1`, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return v, nil
}

// ListVisits возвращает визиты по фильтру. При page == nil — все подходящие.
func (s *Storage) ListVisits(ctx context.Context, f models.VisitFilter, page *models.Page) ([]*models.Visit, error) {
	const op = "storage.ListVisits"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	w := visitWhere(f)
	query := visitSelect + w.String() + visitOrder(f.Sort)
	args := w.args
	if page != nil {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", w.next(), w.next()+1)
		args = append(args, page.Limit, page.Offset())
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	visits := make([]*models.Visit, 0)
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return visits, nil
}

// CountVisits считает визиты по фильтру.
func (s *Storage) CountVisits(ctx context.Context, f models.VisitFilter) (int, error) {
	const op = "storage.CountVisits"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	w := visitWhere(f)
	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*)`+visitFrom+w.String(), w.args...).Scan(&total); err != nil {
		return 0, wrap(op, err)
	}
	return total, nil
}

// UpdateVisit меняет адрес и дату визита.
func (s *Storage) UpdateVisit(ctx context.Context, id, address string, date time.Time) error {
	const op = "storage.UpdateVisit"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE visits
		SET address = $1, date = $2, updated_at = NOW()
		WHERE id = $3`, address, date, id)
	if err != nil {
		return wrap(op, err)
	}
	return affected(op, res)
}

// UpdateVisitStatus переводит визит из from в to. Если статус успел
// измениться, возвращает storage.ErrConflict. staffID == nil оставляет
// назначенного сотрудника без изменений.
func (s *Storage) UpdateVisitStatus(ctx context.Context, id string, from, to models.VisitStatus, staffID *string) error {
	const op = "storage.UpdateVisitStatus"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE visits
		SET status = $1, staff_id = COALESCE($2::uuid, staff_id), updated_at = NOW()
		WHERE id = $3 AND status = $4`, to, staffID, id, from)
	if err != nil {
		return wrap(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: status is no longer %s: %w", op, from, storage.ErrConflict)
	}
	return nil
}
