// Package logout снимает флаг администратора с сессии, не трогая вход пользователя.
package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/entitlement-gate/internal/http/response"
	"github.com/magabrotheeeer/entitlement-gate/internal/session"
)

// Handler обрабатывает POST /admin/logout.
type Handler struct {
	log      *slog.Logger
	sessions response.SessionSetter
}

// New создаёт Handler.
func New(log *slog.Logger, sessions response.SessionSetter) *Handler {
	return &Handler{log: log, sessions: sessions}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.logout"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	response.Redirect(w, r, h.sessions, log, "/admin/login", session.WithAdmin(false))
}
