// Package unlock обрабатывает возврат пользователя со страницы оплаты.
//
// Платёж не проверяется: любой вошедший пользователь, открывший /payment/unlock,
// получает месяц premium.
package unlock

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/entitlement-gate/internal/http/middlewarectx"
	"github.com/magabrotheeeer/entitlement-gate/internal/http/response"
	"github.com/magabrotheeeer/entitlement-gate/internal/lib/sl"
	"github.com/magabrotheeeer/entitlement-gate/internal/session"
	"github.com/magabrotheeeer/entitlement-gate/internal/storage"
)

// MsgUnlocked сообщение после разблокировки.
const MsgUnlocked = "Premium unlocked for 1 month."

// Service продление premium после оплаты.
type Service interface {
	Unlock(ctx context.Context, userID int64, now time.Time) (time.Time, error)
}

// Handler обрабатывает GET /payment/unlock.
type Handler struct {
	log      *slog.Logger
	premium  Service
	sessions response.SessionSetter
}

// New создаёт Handler.
func New(log *slog.Logger, premium Service, sessions response.SessionSetter) *Handler {
	return &Handler{log: log, premium: premium, sessions: sessions}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.unlock"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user := middlewarectx.UserFrom(r.Context())
	if user == nil {
		http.Redirect(w, r, "/signin", http.StatusFound)
		return
	}

	_, err := h.premium.Unlock(r.Context(), user.ID, time.Now())
	switch {
	case errors.Is(err, storage.ErrUserNotFound):
		log.Warn("unlock for missing user", sl.UserID(user.ID))
		http.Redirect(w, r, "/signin", http.StatusFound)
	case err != nil:
		log.Error("unlock failed", sl.Err(err))
		response.FlashRedirect(w, r, h.sessions, log, "/app", session.FlashError, response.MsgInternal)
	default:
		response.FlashRedirect(w, r, h.sessions, log, "/app", session.FlashSuccess, MsgUnlocked)
	}
}
