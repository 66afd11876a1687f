// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON-ответов HTTP-обработчиков: успешных ответов,
// страниц с пагинацией, ошибок бизнес-логики и сообщений валидации.
package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
)

// Response описывает стандартную структуру успешного JSON-ответа.
type Response struct {
	Status     bool               `json:"status" example:"true"`
	Message    string             `json:"message" example:"Visit created successfully"`
	Data       any                `json:"data"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
}

// ErrorResponse — ответ с ошибкой. Используется и в аннотациях @Failure.
type ErrorResponse struct {
	Status  bool   `json:"status" example:"false"`
	Message string `json:"message" example:"Visit not found"`
}

// SearchPage — конверт поиска визитов {success, data, meta}.
// Отличается от Response, клиенты поиска ожидают именно его.
type SearchPage struct {
	Success bool              `json:"success" example:"true"`
	Data    any               `json:"data"`
	Meta    models.Pagination `json:"meta"`
}

// OK возвращает успешный Response.
func OK(message string, data any) Response {
	return Response{
		Status:  true,
		Message: message,
		Data:    data,
	}
}

// Page возвращает успешный Response с пагинацией.
func Page(message string, data any, p models.Pagination) Response {
	return Response{
		Status:     true,
		Message:    message,
		Data:       data,
		Pagination: &p,
	}
}

// Search возвращает конверт поиска.
func Search(data any, p models.Pagination) SearchPage {
	return SearchPage{
		Success: true,
		Data:    data,
		Meta:    p,
	}
}

// Error возвращает ErrorResponse с переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status:  false,
		Message: msg,
	}
}

// ValidationError формирует ответ на основе ошибок валидации.
// Каждое нарушение превращается в человеко-читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) ErrorResponse {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s characters", err.Field(), err.Param()))
		case "gte":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be greater than or equal to %s", err.Field(), err.Param()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be one of [%s]", err.Field(), err.Param()))
		case "uuid":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only uuid", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return Error(strings.Join(errsMsgs, ", "))
}
