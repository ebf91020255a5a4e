// Package auth содержит правила регистрации и входа пользователей.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/entitlement-gate/internal/lib/password"
	"github.com/magabrotheeeer/entitlement-gate/internal/lib/sl"
	"github.com/magabrotheeeer/entitlement-gate/internal/metrics"
	"github.com/magabrotheeeer/entitlement-gate/internal/models"
	"github.com/magabrotheeeer/entitlement-gate/internal/rabbitmq"
	"github.com/magabrotheeeer/entitlement-gate/internal/storage"
)

// Сообщения, которые показываются пользователю.
const (
	MsgMissingFields = "Please provide email and password."
	MsgInvalidEmail  = "Please provide a valid email address."
)

var (
	// ErrValidation входные данные не прошли проверку, текст для пользователя в ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateAccount аккаунт с таким email уже есть.
	ErrDuplicateAccount = errors.New("account already exists")
	// ErrAccountNotFound аккаунта с таким email нет.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidCredentials пароль не подошёл.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError ошибка валидации с сообщением для пользователя.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is позволяет проверять ошибку через errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// UserRepository хранилище пользователей.
type UserRepository interface {
	CreateUser(ctx context.Context, email, passwordHash string, now time.Time) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// EventPublisher публикует доменные события.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Credentials пара email и пароль из формы.
type Credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Service отвечает за регистрацию и вход.
type Service struct {
	log           *slog.Logger
	users         UserRepository
	events        EventPublisher
	validate      *validator.Validate
	allowedDomain string
	hashCost      int
}

// NewService создаёт Service. allowedDomain домен email, с которого разрешена
// регистрация, например "gmail.com".
func NewService(log *slog.Logger, users UserRepository, events EventPublisher, allowedDomain string) *Service {
	return &Service{
		log:           log,
		users:         users,
		events:        events,
		validate:      validator.New(),
		allowedDomain: strings.ToLower(strings.TrimPrefix(allowedDomain, "@")),
	}
}

// WithHashCost задаёт стоимость bcrypt. Нулевое значение означает стоимость по умолчанию.
func (s *Service) WithHashCost(cost int) *Service {
	s.hashCost = cost
	return s
}

// DomainMessage текст ошибки для email не из разрешённого домена.
func (s *Service) DomainMessage() string {
	return fmt.Sprintf("Only @%s emails are allowed.", s.allowedDomain)
}

func (s *Service) check(c Credentials, signup bool) error {
	if strings.TrimSpace(c.Email) == "" || c.Password == "" {
		return &ValidationError{Message: MsgMissingFields}
	}
	if err := s.validate.Struct(c); err != nil {
		return &ValidationError{Message: MsgInvalidEmail}
	}
	if signup && s.allowedDomain != "" && !strings.HasSuffix(c.Email, "@"+s.allowedDomain) {
		return &ValidationError{Message: s.DomainMessage()}
	}
	return nil
}

// Signup создаёт аккаунт и запускает пробный период с момента now.
func (s *Service) Signup(ctx context.Context, email, rawPassword string, now time.Time) (*models.User, error) {
	const op = "services.auth.Signup"
	log := s.log.With(slog.String("op", op))

	c := Credentials{Email: normalizeEmail(email), Password: rawPassword}
	if err := s.check(c, true); err != nil {
		return nil, err
	}

	hashed, err := s.hash(rawPassword)
	if err != nil {
		if errors.Is(err, password.ErrTooLong) {
			return nil, &ValidationError{Message: "Password is too long."}
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.CreateUser(ctx, c.Email, hashed, now)
	if errors.Is(err, storage.ErrDuplicateEmail) {
		return nil, fmt.Errorf("%w: %w", ErrDuplicateAccount, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.SignupsTotal.Inc()
	log.Info("user registered", sl.UserID(user.ID))

	err = s.events.Publish(ctx, rabbitmq.KeyUserRegistered, rabbitmq.Event{
		Type:   rabbitmq.KeyUserRegistered,
		UserID: user.ID,
		Email:  user.Email,
		At:     now.UTC(),
	})
	if err != nil {
		log.Warn("failed to publish event", sl.Err(err))
	}
	return user, nil
}

// Signin проверяет email и пароль и возвращает пользователя.
func (s *Service) Signin(ctx context.Context, email, rawPassword string) (*models.User, error) {
	const op = "services.auth.Signin"

	c := Credentials{Email: normalizeEmail(email), Password: rawPassword}
	if err := s.check(c, false); err != nil {
		metrics.SigninsTotal.WithLabelValues(metrics.SigninInvalidInput).Inc()
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, c.Email)
	if errors.Is(err, storage.ErrUserNotFound) {
		metrics.SigninsTotal.WithLabelValues(metrics.SigninNotFound).Inc()
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := password.Compare(user.PasswordHash, rawPassword); err != nil {
		metrics.SigninsTotal.WithLabelValues(metrics.SigninInvalidPassword).Inc()
		if errors.Is(err, password.ErrMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.SigninsTotal.WithLabelValues(metrics.SigninSuccess).Inc()
	return user, nil
}

func (s *Service) hash(raw string) (string, error) {
	if s.hashCost > 0 {
		return password.HashWithCost(raw, s.hashCost)
	}
	return password.Hash(raw)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
