// Package premium управляет премиум-доступом: разблокировка после оплаты,
// ручная выдача и отзыв администратором, обзор пользователей.
package premium

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/entitlement-gate/internal/entitlement"
	"github.com/magabrotheeeer/entitlement-gate/internal/lib/month"
	"github.com/magabrotheeeer/entitlement-gate/internal/lib/sl"
	"github.com/magabrotheeeer/entitlement-gate/internal/metrics"
	"github.com/magabrotheeeer/entitlement-gate/internal/models"
	"github.com/magabrotheeeer/entitlement-gate/internal/rabbitmq"
)

// Period срок одного премиум-периода в календарных месяцах.
const Period = 1

// UserRepository хранилище пользователей.
type UserRepository interface {
	GrantPremium(ctx context.Context, id int64, until time.Time, paidAt *time.Time) error
	RevokePremium(ctx context.Context, id int64) error
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// EventPublisher публикует доменные события.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// UserView пользователь в том виде, в каком его видит администратор.
type UserView struct {
	ID             int64      `json:"id"`
	Email          string     `json:"email"`
	CreatedAt      time.Time  `json:"createdAt"`
	TrialStartedAt time.Time  `json:"trialStartedAt"`
	TrialEndsAt    time.Time  `json:"trialEndsAt"`
	PremiumUntil   *time.Time `json:"premiumUntil,omitempty"`
	LastPaymentAt  *time.Time `json:"lastPaymentAt,omitempty"`
	TrialActive    bool       `json:"trialActive"`
	PremiumActive  bool       `json:"premiumActive"`
	State          string     `json:"state"`
}

// NewUserView строит UserView на момент now. Хэш пароля не попадает в представление.
func NewUserView(u *models.User, now time.Time) UserView {
	st := entitlement.Evaluate(u, now)
	return UserView{
		ID:             u.ID,
		Email:          u.Email,
		CreatedAt:      u.CreatedAt,
		TrialStartedAt: u.TrialStartedAt,
		TrialEndsAt:    st.TrialEndsAt,
		PremiumUntil:   u.PremiumUntil,
		LastPaymentAt:  u.LastPaymentAt,
		TrialActive:    st.TrialActive,
		PremiumActive:  st.PremiumActive,
		State:          string(st.State),
	}
}

// Service операции над премиум-доступом.
type Service struct {
	log    *slog.Logger
	users  UserRepository
	events EventPublisher
}

// NewService создаёт Service.
func NewService(log *slog.Logger, users UserRepository, events EventPublisher) *Service {
	return &Service{log: log, users: users, events: events}
}

// Unlock продлевает премиум на календарный месяц от now и отмечает оплату.
// Оплата не проверяется: вызов означает, что платёжная страница вернула пользователя.
func (s *Service) Unlock(ctx context.Context, userID int64, now time.Time) (time.Time, error) {
	const op = "services.premium.Unlock"
	until := month.AddMonths(now, Period)
	paidAt := now
	if err := s.users.GrantPremium(ctx, userID, until, &paidAt); err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	metrics.PremiumChangesTotal.WithLabelValues(metrics.SourceUnlock).Inc()
	s.log.Info("premium unlocked", sl.Op(op), sl.UserID(userID), slog.Time("premium_until", until))
	s.publish(ctx, rabbitmq.KeyPremiumGranted, metrics.SourceUnlock, userID, &until, now)
	return until, nil
}

// Grant выдаёт премиум на календарный месяц от now. last_payment_at не меняется.
func (s *Service) Grant(ctx context.Context, userID int64, now time.Time) (time.Time, error) {
	const op = "services.premium.Grant"
	until := month.AddMonths(now, Period)
	if err := s.users.GrantPremium(ctx, userID, until, nil); err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	metrics.PremiumChangesTotal.WithLabelValues(metrics.SourceAdminGrant).Inc()
	s.log.Info("premium granted", sl.Op(op), sl.UserID(userID), slog.Time("premium_until", until))
	s.publish(ctx, rabbitmq.KeyPremiumGranted, metrics.SourceAdminGrant, userID, &until, now)
	return until, nil
}

// Revoke снимает премиум. Пробный период не восстанавливается.
func (s *Service) Revoke(ctx context.Context, userID int64, now time.Time) error {
	const op = "services.premium.Revoke"
	if err := s.users.RevokePremium(ctx, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	metrics.PremiumChangesTotal.WithLabelValues(metrics.SourceAdminRevoke).Inc()
	s.log.Info("premium revoked", sl.Op(op), sl.UserID(userID))
	s.publish(ctx, rabbitmq.KeyPremiumRevoked, metrics.SourceAdminRevoke, userID, nil, now)
	return nil
}

// ListUsers возвращает всех пользователей и тех из них, у кого премиум активен на now.
// Порядок от новых к старым.
func (s *Service) ListUsers(ctx context.Context, now time.Time) (all, paid []UserView, err error) {
	const op = "services.premium.ListUsers"
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	all = make([]UserView, 0, len(users))
	paid = make([]UserView, 0)
	for _, u := range users {
		v := NewUserView(u, now)
		all = append(all, v)
		if v.PremiumActive {
			paid = append(paid, v)
		}
	}
	return all, paid, nil
}

func (s *Service) publish(ctx context.Context, key, source string, userID int64, until *time.Time, now time.Time) {
	err := s.events.Publish(ctx, key, rabbitmq.Event{
		Type:         key,
		UserID:       userID,
		Source:       source,
		PremiumUntil: until,
		At:           now.UTC(),
	})
	if err != nil {
		s.log.Warn("failed to publish event", slog.String("key", key), sl.Err(err))
	}
}
