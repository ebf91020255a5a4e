// Package models содержит доменную модель пользователя системы:
// учётные данные и отметки времени, из которых вычисляется доступ.
// Сам доступ (trial/premium) никогда не хранится, только выводится.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID             int64      // Уникальный идентификатор пользователя
	Email          string     // Электронная почта в нижнем регистре (уникальная)
	PasswordHash   string     // bcrypt-хэш пароля
	CreatedAt      time.Time  // Время регистрации
	TrialStartedAt time.Time  // Начало пробного периода, совпадает с CreatedAt
	PremiumUntil   *time.Time // Окончание premium-доступа, nil если premium не выдавался или отозван
	LastPaymentAt  *time.Time // Время последнего подтверждения оплаты, только для информации
}
