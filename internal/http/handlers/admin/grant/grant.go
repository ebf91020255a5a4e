// Package grant выдаёт пользователю premium по решению администратора.
package grant

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/entitlement-gate/internal/http/response"
	"github.com/magabrotheeeer/entitlement-gate/internal/lib/sl"
	"github.com/magabrotheeeer/entitlement-gate/internal/session"
	"github.com/magabrotheeeer/entitlement-gate/internal/storage"
)

// Сообщения администратору.
const (
	MsgGranted   = "Premium granted."
	MsgNotFound  = "User not found."
	MsgInvalidID = "Invalid user id."
)

// Service выдача premium.
type Service interface {
	Grant(ctx context.Context, userID int64, now time.Time) (time.Time, error)
}

// Handler обрабатывает POST /admin/grant/{id}.
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
	const op = "handlers.admin.grant"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := ParseID(chi.URLParam(r, "id"))
	if err != nil {
		log.Info("invalid user id", slog.String("id", chi.URLParam(r, "id")))
		response.FlashRedirect(w, r, h.sessions, log, "/admin", session.FlashError, MsgInvalidID)
		return
	}

	_, err = h.premium.Grant(r.Context(), id, time.Now())
	switch {
	case errors.Is(err, storage.ErrUserNotFound):
		response.FlashRedirect(w, r, h.sessions, log, "/admin", session.FlashError, MsgNotFound)
	case err != nil:
		log.Error("grant failed", sl.Err(err))
		response.FlashRedirect(w, r, h.sessions, log, "/admin", session.FlashError, response.MsgInternal)
	default:
		response.FlashRedirect(w, r, h.sessions, log, "/admin", session.FlashSuccess, MsgGranted)
	}
}

// ParseID разбирает положительный id пользователя из пути.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, strconv.ErrRange
	}
	return id, nil
}
