// Package middlewarectx содержит HTTP middleware, которые загружают сессию,
// текущего пользователя и параметры отображения в контекст запроса,
// а также закрывают маршруты для анонимов и не-администраторов.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/entitlement-gate/internal/lib/sl"
	"github.com/magabrotheeeer/entitlement-gate/internal/models"
	"github.com/magabrotheeeer/entitlement-gate/internal/session"
	"github.com/magabrotheeeer/entitlement-gate/internal/storage"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// StateKey ключ для состояния сессии.
	StateKey Key = "session_state"
	// UserKey ключ для текущего пользователя.
	UserKey Key = "user"
	// FlashKey ключ для flash-сообщения текущего запроса.
	FlashKey Key = "flash"
	// DisplayKey ключ для параметров отображения.
	DisplayKey Key = "display"
)

// Display статические параметры, которые передаются в представления как есть.
type Display struct {
	Brand     string `json:"brand"`
	BaseURL   string `json:"baseUrl"`
	EmbedURL  string `json:"embedUrl"`
	CropTopPx int    `json:"cropTopPx"`
}

// SessionManager загрузка сессии и flash из запроса.
type SessionManager interface {
	Load(r *http.Request) (session.State, error)
	TakeFlash(r *http.Request) (*session.Flash, error)
}

// UserGetter поиск пользователя по id.
type UserGetter interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// Session загружает сессию, забирает flash и находит текущего пользователя.
// Пользователь, удалённый из базы, считается отсутствующим.
func Session(sessions SessionManager, users UserGetter, display Display, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Session"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			st, err := sessions.Load(r)
			if err != nil {
				log.Error("failed to load session", sl.Err(err))
				st = session.State{}
			}

			flash, err := sessions.TakeFlash(r)
			if err != nil {
				log.Error("failed to take flash", sl.Err(err))
			}

			ctx := context.WithValue(r.Context(), StateKey, st)
			ctx = context.WithValue(ctx, FlashKey, flash)
			ctx = context.WithValue(ctx, DisplayKey, display)

			if st.Authenticated() {
				user, err := users.GetUser(ctx, st.UserID)
				switch {
				case err == nil:
					ctx = context.WithValue(ctx, UserKey, user)
				case errors.Is(err, storage.ErrUserNotFound):
					log.Warn("session references missing user", sl.UserID(st.UserID))
				default:
					log.Error("failed to load user", sl.Err(err))
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth пропускает только запросы с пользователем, остальных отправляет на /signin.
func RequireAuth(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserFrom(r.Context()) == nil {
				log.Debug("anonymous request redirected",
					slog.String("path", r.URL.Path),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
				http.Redirect(w, r, "/signin", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin пропускает только сессии администратора, остальных отправляет на /admin/login.
func RequireAdmin(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !StateFrom(r.Context()).IsAdmin {
				log.Debug("non-admin request redirected",
					slog.String("path", r.URL.Path),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
				http.Redirect(w, r, "/admin/login", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFrom возвращает текущего пользователя или nil.
func UserFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(UserKey).(*models.User)
	return u
}

// StateFrom возвращает состояние сессии. Без middleware Session это пустое состояние.
func StateFrom(ctx context.Context) session.State {
	st, _ := ctx.Value(StateKey).(session.State)
	return st
}

// FlashFrom возвращает flash-сообщение, снятое с сессии в этом запросе.
func FlashFrom(ctx context.Context) *session.Flash {
	f, _ := ctx.Value(FlashKey).(*session.Flash)
	return f
}

// DisplayFrom возвращает параметры отображения.
func DisplayFrom(ctx context.Context) Display {
	d, _ := ctx.Value(DisplayKey).(Display)
	return d
}
