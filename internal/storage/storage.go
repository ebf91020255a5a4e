// Package storage содержит ошибки слоя хранения, общие для всех реализаций.
package storage

import "errors"

var (
	// ErrUserNotFound пользователь с таким id или email отсутствует.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateEmail пользователь с таким email уже существует.
	ErrDuplicateEmail = errors.New("email already registered")
)
