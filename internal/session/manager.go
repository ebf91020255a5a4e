package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/magabrotheeeer/entitlement-gate/internal/lib/jwt"
)

// Options настройки cookie и времени жизни сессии.
type Options struct {
	CookieName string
	TTL        time.Duration
	// Secure принудительно выставляет флаг Secure. Без него флаг ставится,
	// только если запрос пришёл по TLS или через прокси с https.
	Secure bool
}

// Manager связывает cookie запроса с состоянием в Store.
type Manager struct {
	store  Store
	signer jwt.Maker
	opts   Options
}

// NewManager создаёт Manager. Подпись cookie делает signer.
func NewManager(store Store, signer jwt.Maker, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "gate.sid"
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &Manager{store: store, signer: signer, opts: opts}
}

// CookieName возвращает имя cookie сессии.
func (m *Manager) CookieName() string {
	return m.opts.CookieName
}

// sessionID извлекает id сессии из подписанной cookie.
func (m *Manager) sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(m.opts.CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	claims, err := m.signer.ParseToken(c.Value)
	if err != nil {
		return "", false
	}
	return claims.SessionID, true
}

// Load возвращает состояние сессии запроса. Отсутствующая, поддельная,
// неизвестная или истёкшая cookie дают пустое состояние без ошибки.
func (m *Manager) Load(r *http.Request) (State, error) {
	const op = "session.Load"
	id, ok := m.sessionID(r)
	if !ok {
		return State{}, nil
	}
	st, err := m.store.Load(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("%s: %w", op, err)
	}
	return st, nil
}

// Set сливает patch с состоянием сессии. Если сессии ещё нет,
// она создаётся и клиенту выдаётся новая cookie.
//
// За один запрос Set следует вызывать один раз: новая cookie
// появится у клиента только в ответе.
func (m *Manager) Set(w http.ResponseWriter, r *http.Request, patch Patch) error {
	const op = "session.Set"
	ctx := r.Context()

	if id, ok := m.sessionID(r); ok {
		err := m.store.Update(ctx, id, patch, m.opts.TTL)
		if err == nil {
			return m.writeCookie(w, r, id)
		}
		if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	id, err := m.store.Create(ctx, m.opts.TTL)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := m.store.Update(ctx, id, patch, m.opts.TTL); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return m.writeCookie(w, r, id)
}

// TakeFlash возвращает flash-сообщение и удаляет его из сессии.
func (m *Manager) TakeFlash(r *http.Request) (*Flash, error) {
	const op = "session.TakeFlash"
	id, ok := m.sessionID(r)
	if !ok {
		return nil, nil
	}
	f, err := m.store.TakeFlash(r.Context(), id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return f, nil
}

// Destroy удаляет сессию на сервере и стирает cookie у клиента.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) error {
	const op = "session.Destroy"
	if id, ok := m.sessionID(r); ok {
		if err := m.store.Delete(r.Context(), id); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.secure(r),
	})
	return nil
}

func (m *Manager) writeCookie(w http.ResponseWriter, r *http.Request, id string) error {
	token, err := m.signer.GenerateToken(id)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.opts.TTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.secure(r),
	})
	return nil
}

func (m *Manager) secure(r *http.Request) bool {
	return m.opts.Secure || r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
