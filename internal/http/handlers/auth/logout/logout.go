// Package logout завершает сессию пользователя.
package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/entitlement-gate/internal/lib/sl"
)

// SessionDestroyer удаление сессии.
type SessionDestroyer interface {
	Destroy(w http.ResponseWriter, r *http.Request) error
}

// Handler обрабатывает POST /logout.
type Handler struct {
	log      *slog.Logger
	sessions SessionDestroyer
}

// New создаёт Handler.
func New(log *slog.Logger, sessions SessionDestroyer) *Handler {
	return &Handler{log: log, sessions: sessions}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"
	if err := h.sessions.Destroy(w, r); err != nil {
		h.log.Error("failed to destroy session",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err),
		)
	}
	http.Redirect(w, r, "/signin", http.StatusFound)
}
