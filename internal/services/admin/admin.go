// Package admin проверяет учётные данные администратора, заданные в конфигурации.
package admin

import (
	"crypto/subtle"
	"log/slog"

	"github.com/magabrotheeeer/entitlement-gate/internal/config"
)

// Authenticator сверяет логин и пароль с настроенной парой.
type Authenticator struct {
	log      *slog.Logger
	username []byte
	password []byte
}

// NewAuthenticator создаёт Authenticator. Пустой пароль в cfg отключает вход.
func NewAuthenticator(log *slog.Logger, cfg config.Admin) *Authenticator {
	if cfg.AdminPassword == "" {
		log.Warn("admin password is not configured, admin login disabled")
	}
	return &Authenticator{
		log:      log,
		username: []byte(cfg.AdminUsername),
		password: []byte(cfg.AdminPassword),
	}
}

// Enabled истинно, если вход администратора настроен.
func (a *Authenticator) Enabled() bool {
	return len(a.password) > 0
}

// Check сравнивает логин и пароль за постоянное время.
func (a *Authenticator) Check(username, password string) bool {
	if !a.Enabled() {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), a.username) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), a.password) == 1
	return userOK && passOK
}
