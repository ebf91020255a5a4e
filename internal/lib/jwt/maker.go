// Package jwt подписывает идентификатор сессии для cookie.
//
// В cookie уходит не сам идентификатор, а HS256-токен с claim "sid":
// подделать или подобрать значение без секрета нельзя.
package jwt

import (
	"time"
)

// Maker описывает интерфейс подписи и проверки токена сессии.
type Maker interface {
	// GenerateToken подписывает идентификатор сессии.
	GenerateToken(sessionID string) (string, error)
	// ParseToken проверяет подпись и срок действия, возвращает claims.
	ParseToken(tokenStr string) (*SessionClaims, error)
}

// MakerImpl реализует Maker с секретным ключом и временем жизни токена.
type MakerImpl struct {
	secretKey []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewJWTMaker создаёт MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: []byte(secretKey),
		tokenTTL:  ttl,
		now:       time.Now,
	}
}
