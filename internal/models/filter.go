package models

import "time"

// Значения пагинации по умолчанию и верхние границы.
// При MaxPage и MaxLimit смещение не выходит за пределы int.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxPage      = 1_000_000
	MaxLimit     = 100
)

// Page задаёт номер страницы и её размер.
type Page struct {
	Page  int
	Limit int
}

// NewPage подставляет значения по умолчанию вместо неположительных
// и обрезает слишком большие.
func NewPage(page, limit int) Page {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Page: page, Limit: limit}
}

// Offset возвращает число пропускаемых записей.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination — метаданные страницы в ответе.
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// NewPagination считает totalPages = ceil(total/limit).
func NewPagination(p Page, total int) Pagination {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return Pagination{
		CurrentPage:  p.Page,
		TotalPages:   pages,
		TotalItems:   total,
		ItemsPerPage: p.Limit,
	}
}

// UserFilter — условия выборки пользователей, объединённые через AND.
// Role и Status сравниваются точно, Search — подстрока без учёта регистра
// в fullname или email.
type UserFilter struct {
	Role   Role
	Status UserStatus
	Search string
}

// VisitSort задаёт порядок выдачи визитов.
type VisitSort int

// Порядки выдачи.
const (
	SortCreatedDesc VisitSort = iota
	SortDateDesc
	SortDateAsc
)

// VisitFilter — условия выборки визитов, объединённые через AND.
//
//   - ClientID, Statuses, HasIssues — точное совпадение;
//   - StatusFold, TypeFold — точное совпадение без учёта регистра;
//   - Search — подстрока без учёта регистра в имени клиента, имени сотрудника,
//     типе, статусе или номере визита;
//   - DateFrom включительно, DateBefore исключительно.
type VisitFilter struct {
	ClientID   string
	Statuses   []VisitStatus
	StatusFold string
	TypeFold   string
	Search     string
	HasIssues  bool
	DateFrom   *time.Time
	DateBefore *time.Time
	Sort       VisitSort
}
