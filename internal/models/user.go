// Package models содержит доменные структуры сервиса патрулирования:
// пользователей, тарифные планы, оплаты и визиты, а также типизированные
// фильтры, по которым слой хранения строит запросы.
package models

import "time"

// Role определяет права пользователя.
type Role string

// Роли пользователей.
const (
	RoleAdmin  Role = "admin"
	RoleStaff  Role = "staff"
	RoleClient Role = "client"
)

// Valid сообщает, известна ли роль.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleClient:
		return true
	}
	return false
}

// UserStatus описывает состояние учётной записи.
type UserStatus string

// Статусы учётной записи.
const (
	UserActive    UserStatus = "active"
	UserInactive  UserStatus = "inactive"
	UserSuspended UserStatus = "suspended"
)

// Valid сообщает, известен ли статус.
func (s UserStatus) Valid() bool {
	switch s {
	case UserActive, UserInactive, UserSuspended:
		return true
	}
	return false
}

// Session хранит момент начала сессии пользователя.
type Session struct {
	SessionStartTime time.Time `json:"sessionStartTime"`
}

// User — учётная запись. Хэш пароля и refresh-токен никогда не сериализуются.
type User struct {
	ID           string     `json:"_id"`
	Fullname     string     `json:"fullname"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Status       UserStatus `json:"status"`
	LastActive   *time.Time `json:"lastActive,omitempty"`
	IsVerified   bool       `json:"isVerified"`
	Sessions     []Session  `json:"sessions"`
	RefreshToken string     `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// UserSummary используется в списках админки.
type UserSummary struct {
	ID         string     `json:"_id"`
	Fullname   string     `json:"fullname"`
	Email      string     `json:"email"`
	Role       Role       `json:"role"`
	Status     UserStatus `json:"status"`
	LastActive *time.Time `json:"lastActive,omitempty"`
}

// UserPublic содержит пользователя без сессий и учётных данных.
type UserPublic struct {
	ID         string     `json:"_id"`
	Fullname   string     `json:"fullname"`
	Email      string     `json:"email,omitempty"`
	Role       Role       `json:"role,omitempty"`
	Status     UserStatus `json:"status,omitempty"`
	LastActive *time.Time `json:"lastActive,omitempty"`
	IsVerified bool       `json:"isVerified"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// Summary возвращает проекцию для списков.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:         u.ID,
		Fullname:   u.Fullname,
		Email:      u.Email,
		Role:       u.Role,
		Status:     u.Status,
		LastActive: u.LastActive,
	}
}

// Public возвращает публичную проекцию.
func (u *User) Public() UserPublic {
	createdAt, updatedAt := u.CreatedAt, u.UpdatedAt
	return UserPublic{
		ID:         u.ID,
		Fullname:   u.Fullname,
		Email:      u.Email,
		Role:       u.Role,
		Status:     u.Status,
		LastActive: u.LastActive,
		IsVerified: u.IsVerified,
		CreatedAt:  &createdAt,
		UpdatedAt:  &updatedAt,
	}
}

// CreateUserRequest описывает тело запроса на создание пользователя администратором.
type CreateUserRequest struct {
	Fullname string `json:"fullname" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     Role   `json:"role" validate:"required,oneof=admin staff client"`
}

// UpdateUserRequest описывает тело запроса на изменение пользователя.
// Пустые поля сохраняют текущие значения.
type UpdateUserRequest struct {
	Fullname string     `json:"fullname"`
	Email    string     `json:"email" validate:"omitempty,email"`
	Password string     `json:"password,omitempty"`
	Role     Role       `json:"role,omitempty"`
	Status   UserStatus `json:"status,omitempty"`
}

// LoginRequest описывает тело запроса на вход.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Principal — аутентифицированный пользователь текущего запроса.
type Principal struct {
	UserID string
	Email  string
	Role   Role
}
