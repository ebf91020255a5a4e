// Package entitlement вычисляет доступ пользователя к закрытому контенту.
//
// Доступ никогда не хранится: на каждый запрос он заново выводится из
// отметок времени пользователя и текущего времени. Все функции чистые,
// без побочных эффектов и ошибок, и принимают nil-пользователя.
package entitlement

import (
	"time"

	"github.com/magabrotheeeer/entitlement-gate/internal/models"
)

// TrialDuration длительность пробного периода.
const TrialDuration = 24 * time.Hour

// State выведенное состояние доступа пользователя.
type State string

const (
	// StateTrialActive пробный период ещё идёт, premium не выдан.
	StateTrialActive State = "trial_active"
	// StatePremiumActive действует premium, пробный период не важен.
	StatePremiumActive State = "premium_active"
	// StateBlocked нет ни пробного периода, ни premium.
	StateBlocked State = "blocked"
)

// Status снимок доступа пользователя на момент now.
type Status struct {
	TrialActive   bool       `json:"trialActive"`
	PremiumActive bool       `json:"premiumActive"`
	CanAccess     bool       `json:"canAccess"`
	TrialEndsAt   time.Time  `json:"trialEndsAt"`
	PremiumUntil  *time.Time `json:"premiumUntil"`
	State         State      `json:"state"`
}

// TrialEndsAt возвращает момент окончания пробного периода.
// Для записей без TrialStartedAt отсчёт идёт от CreatedAt.
func TrialEndsAt(u *models.User) time.Time {
	if u == nil {
		return time.Time{}
	}
	start := u.TrialStartedAt
	if start.IsZero() {
		start = u.CreatedAt
	}
	return start.Add(TrialDuration)
}

// IsTrialActive истинно, если now строго раньше конца пробного периода.
func IsTrialActive(u *models.User, now time.Time) bool {
	if u == nil {
		return false
	}
	return now.Before(TrialEndsAt(u))
}

// IsPremiumActive истинно, если premium выдан и now строго раньше PremiumUntil.
func IsPremiumActive(u *models.User, now time.Time) bool {
	if u == nil || u.PremiumUntil == nil {
		return false
	}
	return now.Before(*u.PremiumUntil)
}

// CanAccess истинно, если действует пробный период или premium.
func CanAccess(u *models.User, now time.Time) bool {
	return IsTrialActive(u, now) || IsPremiumActive(u, now)
}

// Evaluate собирает полный статус доступа пользователя.
func Evaluate(u *models.User, now time.Time) Status {
	st := Status{
		TrialActive:   IsTrialActive(u, now),
		PremiumActive: IsPremiumActive(u, now),
		TrialEndsAt:   TrialEndsAt(u),
	}
	if u != nil {
		st.PremiumUntil = u.PremiumUntil
	}
	st.CanAccess = st.TrialActive || st.PremiumActive

	switch {
	case st.PremiumActive:
		st.State = StatePremiumActive
	case st.TrialActive:
		st.State = StateTrialActive
	default:
		st.State = StateBlocked
	}
	return st
}
