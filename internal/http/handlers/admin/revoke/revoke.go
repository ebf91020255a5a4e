// Package revoke снимает premium по решению администратора.
package revoke

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/entitlement-gate/internal/http/handlers/admin/grant"
	"github.com/magabrotheeeer/entitlement-gate/internal/http/response"
	"github.com/magabrotheeeer/entitlement-gate/internal/lib/sl"
	"github.com/magabrotheeeer/entitlement-gate/internal/session"
	"github.com/magabrotheeeer/entitlement-gate/internal/storage"
)

// MsgRevoked сообщение после отзыва.
const MsgRevoked = "Premium revoked."

// Service отзыв premium.
type Service interface {
	Revoke(ctx context.Context, userID int64, now time.Time) error
}

// Handler обрабатывает POST /admin/revoke/{id}.
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
	const op = "handlers.admin.revoke"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := grant.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		log.Info("invalid user id", slog.String("id", chi.URLParam(r, "id")))
		response.FlashRedirect(w, r, h.sessions, log, "/admin", session.FlashError, grant.MsgInvalidID)
		return
	}

	err = h.premium.Revoke(r.Context(), id, time.Now())
	switch {
	case errors.Is(err, storage.ErrUserNotFound):
		response.FlashRedirect(w, r, h.sessions, log, "/admin", session.FlashError, grant.MsgNotFound)
	case err != nil:
		log.Error("revoke failed", sl.Err(err))
		response.FlashRedirect(w, r, h.sessions, log, "/admin", session.FlashError, response.MsgInternal)
	default:
		response.FlashRedirect(w, r, h.sessions, log, "/admin", session.FlashSuccess, MsgRevoked)
	}
}
