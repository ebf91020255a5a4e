package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/magabrotheeeer/entitlement-gate/internal/models"
	"github.com/magabrotheeeer/entitlement-gate/internal/storage"
)

const userColumns = `id, email, password_hash, created_at, trial_started_at, premium_until, last_payment_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u                        models.User
		createdAt, trialStarted  int64
		premiumUntil, lastPaidAt sql.NullInt64
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &createdAt, &trialStarted, &premiumUntil, &lastPaidAt); err != nil {
		return nil, err
	}
	u.CreatedAt = time.UnixMilli(createdAt).UTC()
	u.TrialStartedAt = time.UnixMilli(trialStarted).UTC()
	if premiumUntil.Valid {
		t := time.UnixMilli(premiumUntil.Int64).UTC()
		u.PremiumUntil = &t
	}
	if lastPaidAt.Valid {
		t := time.UnixMilli(lastPaidAt.Int64).UTC()
		u.LastPaymentAt = &t
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

// NormalizeEmail приводит email к виду, в котором он хранится.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser сохраняет нового пользователя, пробный период начинается в момент now.
//
// Предварительная проверка отсекает очевидный дубликат, но источником истины
// остаётся ограничение UNIQUE: гонка между проверкой и вставкой тоже даёт
// storage.ErrDuplicateEmail.
func (s *Storage) CreateUser(ctx context.Context, email, passwordHash string, now time.Time) (*models.User, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	email = NormalizeEmail(email)
	if _, err := s.GetUserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrDuplicateEmail)
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ms := now.UnixMilli()
	query := `INSERT INTO users (email, password_hash, created_at, trial_started_at)
			  VALUES (?, ?, ?, ?)`
	res, err := s.DB.ExecContext(ctx, query, email, passwordHash, ms, ms)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrDuplicateEmail)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created := time.UnixMilli(ms).UTC()
	return &models.User{
		ID:             id,
		Email:          email,
		PasswordHash:   passwordHash,
		CreatedAt:      created,
		TrialStartedAt: created,
	}, nil
}

// GetUserByEmail возвращает пользователя по email без учёта регистра.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, NormalizeEmail(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по id.
func (s *Storage) GetUser(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GrantPremium выставляет premium_until. Если paidAt не nil, обновляется и last_payment_at.
func (s *Storage) GrantPremium(ctx context.Context, id int64, until time.Time, paidAt *time.Time) error {
	const op = "storage.GrantPremium"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var (
		res sql.Result
		err error
	)
	if paidAt != nil {
		query := `UPDATE users SET premium_until = ?, last_payment_at = ? WHERE id = ?`
		res, err = s.DB.ExecContext(ctx, query, until.UnixMilli(), paidAt.UnixMilli(), id)
	} else {
		query := `UPDATE users SET premium_until = ? WHERE id = ?`
		res, err = s.DB.ExecContext(ctx, query, until.UnixMilli(), id)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return checkAffected(op, res)
}

// RevokePremium сбрасывает premium_until в NULL.
func (s *Storage) RevokePremium(ctx context.Context, id int64) error {
	const op = "storage.RevokePremium"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE users SET premium_until = NULL WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return checkAffected(op, res)
}

// ListUsers возвращает всех пользователей, новые первыми.
func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func checkAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	return nil
}
