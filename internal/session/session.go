// Package session связывает непрозрачный токен из cookie браузера
// с состоянием сессии на сервере: id пользователя, флаг администратора
// и одноразовое flash-сообщение.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound сессия отсутствует или истекла.
var ErrNotFound = errors.New("session not found")

// Flash одноразовое сообщение для пользователя, удаляется при первом чтении.
type Flash struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Типы flash-сообщений.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// State состояние сессии. Нулевое значение означает анонимного посетителя.
type State struct {
	UserID  int64
	IsAdmin bool
	Flash   *Flash
}

// Authenticated истинно, если в сессии есть пользователь.
func (s State) Authenticated() bool {
	return s.UserID > 0
}

// Patch набор полей для слияния с состоянием сессии, nil-поля не меняются.
type Patch struct {
	UserID  *int64
	IsAdmin *bool
	Flash   *Flash
}

// WithUser возвращает Patch с id пользователя.
func WithUser(id int64) Patch {
	return Patch{UserID: &id}
}

// WithAdmin возвращает Patch с флагом администратора.
func WithAdmin(isAdmin bool) Patch {
	return Patch{IsAdmin: &isAdmin}
}

// WithFlash возвращает Patch с flash-сообщением.
func WithFlash(typ, msg string) Patch {
	return Patch{Flash: &Flash{Type: typ, Message: msg}}
}

// Merge объединяет два Patch, поля other имеют приоритет.
func (p Patch) Merge(other Patch) Patch {
	if other.UserID != nil {
		p.UserID = other.UserID
	}
	if other.IsAdmin != nil {
		p.IsAdmin = other.IsAdmin
	}
	if other.Flash != nil {
		p.Flash = other.Flash
	}
	return p
}

func (p Patch) apply(s *State) {
	if p.UserID != nil {
		s.UserID = *p.UserID
	}
	if p.IsAdmin != nil {
		s.IsAdmin = *p.IsAdmin
	}
	if p.Flash != nil {
		f := *p.Flash
		s.Flash = &f
	}
}

// Store хранилище состояний сессий. Операции над одним id атомарны,
// сессии друг друга не видят.
type Store interface {
	// Create заводит пустую сессию и возвращает её id.
	Create(ctx context.Context, ttl time.Duration) (string, error)
	// Load возвращает состояние; ErrNotFound для неизвестных и истёкших id.
	Load(ctx context.Context, id string) (State, error)
	// Update сливает patch с состоянием и продлевает срок жизни.
	Update(ctx context.Context, id string, patch Patch, ttl time.Duration) error
	// TakeFlash читает и одновременно удаляет flash-сообщение.
	TakeFlash(ctx context.Context, id string) (*Flash, error)
	// Delete удаляет сессию.
	Delete(ctx context.Context, id string) error
}
