// Package signin реализует HTTP-обработчик входа по email и паролю.
package signin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/entitlement-gate/internal/http/response"
	"github.com/magabrotheeeer/entitlement-gate/internal/lib/sl"
	"github.com/magabrotheeeer/entitlement-gate/internal/models"
	"github.com/magabrotheeeer/entitlement-gate/internal/services/auth"
	"github.com/magabrotheeeer/entitlement-gate/internal/session"
)

// Сообщения пользователю. Неизвестный аккаунт и неверный пароль
// получают одно и то же сообщение.
const (
	MsgInvalidCredentials = "Invalid credentials."
	MsgSuccess            = "Signed in successfully."
)

// Request данные формы входа.
type Request struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Service проверка учётных данных.
type Service interface {
	Signin(ctx context.Context, email, password string) (*models.User, error)
}

// Handler обрабатывает POST /signin.
type Handler struct {
	log      *slog.Logger
	auth     Service
	sessions response.SessionSetter
}

// New создаёт Handler.
func New(log *slog.Logger, authService Service, sessions response.SessionSetter) *Handler {
	return &Handler{
		log:      log,
		auth:     authService,
		sessions: sessions,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.signin"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := render.Decode(r, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.FlashRedirect(w, r, h.sessions, log, "/signin", session.FlashError, auth.MsgMissingFields)
		return
	}

	user, err := h.auth.Signin(r.Context(), req.Email, req.Password)
	var verr *auth.ValidationError
	switch {
	case errors.As(err, &verr):
		response.FlashRedirect(w, r, h.sessions, log, "/signin", session.FlashError, verr.Message)
	case errors.Is(err, auth.ErrAccountNotFound):
		log.Info("signin for unknown account")
		response.FlashRedirect(w, r, h.sessions, log, "/signin", session.FlashError, MsgInvalidCredentials)
	case errors.Is(err, auth.ErrInvalidCredentials):
		log.Info("signin with wrong password")
		response.FlashRedirect(w, r, h.sessions, log, "/signin", session.FlashError, MsgInvalidCredentials)
	case err != nil:
		log.Error("signin failed", sl.Err(err))
		response.FlashRedirect(w, r, h.sessions, log, "/signin", session.FlashError, response.MsgInternal)
	default:
		log.Info("signin success", sl.UserID(user.ID))
		patch := session.WithUser(user.ID).Merge(session.WithFlash(session.FlashSuccess, MsgSuccess))
		response.Redirect(w, r, h.sessions, log, "/app", patch)
	}
}
