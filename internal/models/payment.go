package models

import "time"

// PaymentStatus описывает статус оплаты.
type PaymentStatus string

// Статусы оплаты.
const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Payment — оплата клиента. Сервис читает её, но не изменяет.
type Payment struct {
	ID        string        `json:"_id"`
	UserID    string        `json:"user"`
	Plan      *Plan         `json:"plan"`
	Amount    float64       `json:"amount"`
	Status    PaymentStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}

// UserPlan — выбранный клиентом тариф с дополнительными услугами.
type UserPlan struct {
	ID            string         `json:"_id"`
	UserID        string         `json:"user"`
	Plan          *Plan          `json:"plan"`
	AddOnServices []AddOnService `json:"addOnServices"`
}
