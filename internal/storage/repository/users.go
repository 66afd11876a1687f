package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
)

const userColumns = `u.id, u.fullname, u.email, u.password_hash, u.role, u.status,
	u.last_active, u.is_verified, u.sessions, COALESCE(u.refresh_token, ''),
	u.created_at, u.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u          models.User
		lastActive sql.NullTime
		sessions   []byte
	)
	if err := row.Scan(&u.ID, &u.Fullname, &u.Email, &u.PasswordHash, &u.Role, &u.Status,
		&lastActive, &u.IsVerified, &sessions, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if lastActive.Valid {
		u.LastActive = &lastActive.Time
	}
	if len(sessions) > 0 {
		if err := json.Unmarshal(sessions, &u.Sessions); err != nil {
			return nil, fmt.Errorf("decode sessions: %w", err)
		}
	}
	return &u, nil
}

func userWhere(f models.UserFilter) *where {
	w := &where{}
	if f.Role != "" {
		w.add("u.role = ?", string(f.Role))
	}
	if f.Status != "" {
		w.add("u.status = ?", string(f.Status))
	}
	if f.Search != "" {
		p := containsPattern(f.Search)
		w.add("(u.fullname ILIKE ? OR u.email ILIKE ?)", p, p)
	}
	return w
}

// CreateUser сохраняет пользователя. Повтор email даёт storage.ErrConflict.
func (s *Storage) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	const op = "storage.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	sessions, err := json.Marshal(u.Sessions)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO users AS u (fullname, email, password_hash, role, status,
			      last_active, is_verified, sessions)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING ` + userColumns
	created, err := scanUser(s.DB.QueryRowContext(ctx, query,
		u.Fullname, u.Email, u.PasswordHash, u.Role, u.Status,
		u.LastActive, u.IsVerified, sessions))
	if err != nil {
		return nil, wrap(op, err)
	}
	return created, nil
}

// GetUser возвращает пользователя по id.
func (s *Storage) GetUser(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	u, err := scanUser(s.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	u, err := scanUser(s.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.email = $1`, email))
	if err != nil {
		return nil, wrap(op, err)
	}
	return u, nil
}

// ListUsers возвращает пользователей по фильтру. При page == nil — все подходящие.
func (s *Storage) ListUsers(ctx context.Context, f models.UserFilter, page *models.Page) ([]*models.User, error) {
	const op = "storage.ListUsers"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	w := userWhere(f)
	query := `SELECT ` + userColumns + ` FROM users u` + w.String() + ` ORDER BY u.created_at DESC, u.id`
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

	users := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// CountUsers считает пользователей по фильтру.
func (s *Storage) CountUsers(ctx context.Context, f models.UserFilter) (int, error) {
	const op = "storage.CountUsers"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	w := userWhere(f)
	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users u`+w.String(), w.args...).Scan(&total); err != nil {
		return 0, wrap(op, err)
	}
	return total, nil
}

// UpdateUser перезаписывает изменяемые поля пользователя.
func (s *Storage) UpdateUser(ctx context.Context, u *models.User) (*models.User, error) {
	const op = "storage.UpdateUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `UPDATE users AS u
			  SET fullname = $1, email = $2, password_hash = $3, role = $4, status = $5,
			      updated_at = NOW()
			  WHERE u.id = $6
			  RETURNING ` + userColumns
	updated, err := scanUser(s.DB.QueryRowContext(ctx, query,
		u.Fullname, u.Email, u.PasswordHash, u.Role, u.Status, u.ID))
	if err != nil {
		return nil, wrap(op, err)
	}
	return updated, nil
}

// DeleteUser удаляет пользователя. Отсутствие записи даёт storage.ErrNotFound.
func (s *Storage) DeleteUser(ctx context.Context, id string) error {
	const op = "storage.DeleteUser"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return wrap(op, err)
	}
	return affected(op, res)
}

// StartSession отмечает вход: обновляет lastActive и добавляет запись сессии.
func (s *Storage) StartSession(ctx context.Context, userID string, at time.Time) error {
	const op = "storage.StartSession"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE users
		SET last_active = $2::timestamptz,
		    sessions = sessions || jsonb_build_array(jsonb_build_object('sessionStartTime', $2::timestamptz))
		WHERE id = $1`, userID, at)
	if err != nil {
		return wrap(op, err)
	}
	return affected(op, res)
}
