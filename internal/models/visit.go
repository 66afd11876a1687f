package models

import (
	"strings"
	"time"
)

// VisitStatus — состояние визита. Набор значений закрыт,
// переходы между ними описаны в visitTransitions.
type VisitStatus string

// Статусы визита.
const (
	VisitPending   VisitStatus = "pending"
	VisitConfirmed VisitStatus = "confirmed"
	VisitCompleted VisitStatus = "completed"
	VisitCancelled VisitStatus = "cancelled"
)

var visitTransitions = map[VisitStatus][]VisitStatus{
	VisitPending:   {VisitConfirmed, VisitCancelled},
	VisitConfirmed: {VisitCompleted, VisitCancelled},
}

// ActiveVisitStatuses перечисляет статусы, при которых у клиента не может быть второго визита.
var ActiveVisitStatuses = []VisitStatus{VisitPending, VisitConfirmed}

// ParseVisitStatus приводит строку к статусу без учёта регистра.
func ParseVisitStatus(s string) (VisitStatus, bool) {
	st := VisitStatus(strings.ToLower(strings.TrimSpace(s)))
	return st, st.Valid()
}

// Valid сообщает, известен ли статус.
func (s VisitStatus) Valid() bool {
	switch s {
	case VisitPending, VisitConfirmed, VisitCompleted, VisitCancelled:
		return true
	}
	return false
}

// Active сообщает, занимает ли визит в этом статусе слот клиента.
func (s VisitStatus) Active() bool {
	return s == VisitPending || s == VisitConfirmed
}

// CanTransition сообщает, допустим ли переход s -> to.
func (s VisitStatus) CanTransition(to VisitStatus) bool {
	for _, next := range visitTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// DefaultVisitType подставляется, если клиент не указал тип визита.
const DefaultVisitType = "routine"

// Visit — визит патруля к клиенту.
type Visit struct {
	ID         string      `json:"_id"`
	VisitID    string      `json:"visitId"`
	ClientID   string      `json:"-"`
	StaffID    *string     `json:"-"`
	Client     *UserPublic `json:"client,omitempty"`
	Staff      *UserPublic `json:"staff"`
	Address    string      `json:"address"`
	Date       time.Time   `json:"date"`
	Status     VisitStatus `json:"status"`
	Type       string      `json:"type"`
	IsPaid     bool        `json:"isPaid"`
	UserPlanID *string     `json:"-"`
	UserPlan   *UserPlan   `json:"userPlan"`
	Issues     []string    `json:"issues"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// CreateVisitRequest описывает тело запроса на создание визита.
type CreateVisitRequest struct {
	Address string `json:"address"`
	Date    string `json:"date"`
	Type    string `json:"type,omitempty"`
}

// UpdateVisitRequest описывает тело запроса на изменение визита.
// Пустые поля сохраняют текущие значения.
type UpdateVisitRequest struct {
	Address string `json:"address"`
	Date    string `json:"date"`
}

// ChangeVisitStatusRequest описывает смену статуса визита сотрудником.
type ChangeVisitStatusRequest struct {
	Status  VisitStatus `json:"status" validate:"required,oneof=pending confirmed completed cancelled"`
	StaffID string      `json:"staffId,omitempty" validate:"omitempty,uuid"`
}

// CreatedVisit — результат создания визита вместе со снимком тарифа клиента.
type CreatedVisit struct {
	VisitData *Visit    `json:"visitData"`
	UserPlan  *UserPlan `json:"userPlan"`
}

// IssuesCount содержит число визитов клиента, по которым есть хотя бы одна проблема.
type IssuesCount struct {
	IssuesCount int `json:"issuesCount"`
}

var visitDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.DateOnly,
}

// ParseVisitDate разбирает дату визита в одном из поддерживаемых форматов.
// Даты без зоны считаются UTC.
func ParseVisitDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range visitDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// VisitEvent публикуется в брокер при создании визита, смене статуса
// и накануне визита.
type VisitEvent struct {
	ID          string      `json:"id"`
	VisitID     string      `json:"visitId"`
	ClientName  string      `json:"clientName"`
	ClientEmail string      `json:"clientEmail"`
	Address     string      `json:"address"`
	Date        time.Time   `json:"date"`
	Status      VisitStatus `json:"status"`
	OccurredAt  time.Time   `json:"occurredAt"`
}
