// Package login реализует вход администратора.
package login

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/entitlement-gate/internal/http/response"
	"github.com/magabrotheeeer/entitlement-gate/internal/lib/sl"
	"github.com/magabrotheeeer/entitlement-gate/internal/session"
)

// MsgInvalid сообщение при неверных учётных данных.
const MsgInvalid = "Invalid admin credentials."

// Request данные формы входа администратора.
type Request struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Authenticator проверка учётных данных администратора.
type Authenticator interface {
	Check(username, password string) bool
}

// Handler обрабатывает POST /admin/login.
type Handler struct {
	log      *slog.Logger
	admin    Authenticator
	sessions response.SessionSetter
}

// New создаёт Handler.
func New(log *slog.Logger, admin Authenticator, sessions response.SessionSetter) *Handler {
	return &Handler{log: log, admin: admin, sessions: sessions}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.login"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := render.Decode(r, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.FlashRedirect(w, r, h.sessions, log, "/admin/login", session.FlashError, MsgInvalid)
		return
	}

	if !h.admin.Check(req.Username, req.Password) {
		log.Warn("admin login failed")
		response.FlashRedirect(w, r, h.sessions, log, "/admin/login", session.FlashError, MsgInvalid)
		return
	}

	log.Info("admin signed in")
	response.Redirect(w, r, h.sessions, log, "/admin", session.WithAdmin(true))
}
