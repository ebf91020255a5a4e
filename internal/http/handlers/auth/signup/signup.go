// Package signup реализует HTTP-обработчик регистрации.
//
// При успехе создаётся аккаунт, в сессию записывается пользователь
// и приветственное сообщение, клиент перенаправляется в приложение.
package signup

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/entitlement-gate/internal/http/response"
	"github.com/magabrotheeeer/entitlement-gate/internal/lib/sl"
	"github.com/magabrotheeeer/entitlement-gate/internal/models"
	"github.com/magabrotheeeer/entitlement-gate/internal/services/auth"
	"github.com/magabrotheeeer/entitlement-gate/internal/session"
)

// Сообщения пользователю.
const (
	MsgWelcome   = "Welcome! Your 1-day free trial has started."
	MsgDuplicate = "Account already exists. Please sign in."
)

// Request данные формы регистрации.
type Request struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Service регистрация пользователя.
type Service interface {
	Signup(ctx context.Context, email, password string, now time.Time) (*models.User, error)
}

// Handler обрабатывает POST /signup.
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
	const op = "handlers.auth.signup"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := render.Decode(r, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.FlashRedirect(w, r, h.sessions, log, "/signup", session.FlashError, auth.MsgMissingFields)
		return
	}

	user, err := h.auth.Signup(r.Context(), req.Email, req.Password, time.Now())
	var verr *auth.ValidationError
	switch {
	case errors.As(err, &verr):
		log.Info("signup rejected", slog.String("reason", verr.Message))
		response.FlashRedirect(w, r, h.sessions, log, "/signup", session.FlashError, verr.Message)
	case errors.Is(err, auth.ErrDuplicateAccount):
		log.Info("signup for existing account")
		response.FlashRedirect(w, r, h.sessions, log, "/signin", session.FlashError, MsgDuplicate)
	case err != nil:
		log.Error("signup failed", sl.Err(err))
		response.FlashRedirect(w, r, h.sessions, log, "/signup", session.FlashError, response.MsgInternal)
	default:
		log.Info("signup success", sl.UserID(user.ID))
		patch := session.WithUser(user.ID).Merge(session.WithFlash(session.FlashSuccess, MsgWelcome))
		response.Redirect(w, r, h.sessions, log, "/app", patch)
	}
}
