// Package apperr описывает ожидаемые ошибки бизнес-логики, которые
// HTTP-слой отдаёт клиенту с понятным сообщением и собственным статусом.
package apperr

import (
	"errors"
	"fmt"
)

// Kind классифицирует ожидаемую ошибку.
type Kind int

// Виды ожидаемых ошибок.
const (
	KindValidation Kind = iota + 1
	KindConflict
	KindNotFound
	KindBusinessRule
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindBusinessRule:
		return "business_rule"
	case KindForbidden:
		return "forbidden"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error — ошибка с видом и сообщением, безопасным для показа клиенту.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Message
}

// Validation сообщает, что не переданы обязательные поля.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Conflict сообщает, что запись уже существует.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// NotFound сообщает, что запись не найдена.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// BusinessRule сообщает о нарушении бизнес-правила, например о просроченной оплате.
func BusinessRule(msg string) *Error {
	return &Error{Kind: KindBusinessRule, Message: msg}
}

// Forbidden сообщает, что действие запрещено для текущего пользователя.
func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// As извлекает *Error из цепочки ошибок.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind сообщает, является ли err ожидаемой ошибкой вида kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
