package models

import (
	"strings"
	"time"
)

// Pack — тарифный пакет, определяет срок действия оплаты.
type Pack string

// Тарифные пакеты.
const (
	PackDaily     Pack = "daily"
	PackWeekly    Pack = "weekly"
	PackMonthly   Pack = "monthly"
	PackPerPatrol Pack = "per-patrol"
)

// PlanType задаёт вид тарифа.
type PlanType string

// Виды тарифов.
const (
	PlanFlexible PlanType = "flexible"
	PlanTiered   PlanType = "tiered"
)

// AddOnService — дополнительная услуга, подключаемая к тарифу.
type AddOnService struct {
	ID    string  `json:"_id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Plan — справочная запись тарифного плана.
type Plan struct {
	ID             string    `json:"_id"`
	Name           string    `json:"name"`
	SubTitle       string    `json:"subTitle"`
	Price          float64   `json:"price"`
	Pack           Pack      `json:"pack"`
	Type           PlanType  `json:"type"`
	Description    string    `json:"description"`
	AddsOnServices []string  `json:"addsOnServices"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// CreatePlanRequest описывает тело запроса на создание тарифа.
type CreatePlanRequest struct {
	Name           string   `json:"name" validate:"required"`
	SubTitle       string   `json:"subTitle" validate:"required"`
	Price          float64  `json:"price" validate:"gte=0"`
	Pack           Pack     `json:"pack" validate:"required,oneof=daily weekly monthly per-patrol"`
	Type           PlanType `json:"type" validate:"required,oneof=flexible tiered"`
	Description    string   `json:"description" validate:"required"`
	AddsOnServices []string `json:"addsOnServices" validate:"dive,uuid"`
}

// Normalize обрезает пробелы в строковых полях до валидации.
func (r *CreatePlanRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.SubTitle = strings.TrimSpace(r.SubTitle)
	r.Description = strings.TrimSpace(r.Description)
}
