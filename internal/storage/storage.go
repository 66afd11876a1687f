// Package storage объявляет ошибки, общие для всех реализаций хранилища.
package storage

import "errors"

var (
	// ErrNotFound — запись или связанная запись не найдена.
	ErrNotFound = errors.New("record not found")
	// ErrConflict — нарушено ограничение уникальности, либо запись
	// изменилась между чтением и записью.
	ErrConflict = errors.New("record conflict")

	// ErrDuplicateVisitID — сгенерированный номер визита уже занят.
	ErrDuplicateVisitID = errors.New("visit number already taken")
)
