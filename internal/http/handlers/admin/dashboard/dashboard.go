// Package dashboard отдаёт список пользователей для администратора.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/entitlement-gate/internal/http/middlewarectx"
	"github.com/magabrotheeeer/entitlement-gate/internal/http/response"
	"github.com/magabrotheeeer/entitlement-gate/internal/lib/sl"
	"github.com/magabrotheeeer/entitlement-gate/internal/services/premium"
	"github.com/magabrotheeeer/entitlement-gate/internal/session"
)

// View представление страницы /admin.
type View struct {
	Title     string             `json:"title"`
	Flash     *session.Flash     `json:"flash,omitempty"`
	Users     []premium.UserView `json:"users"`
	PaidUsers []premium.UserView `json:"paidUsers"`
}

// Service обзор пользователей.
type Service interface {
	ListUsers(ctx context.Context, now time.Time) (all, paid []premium.UserView, err error)
}

// Handler обрабатывает GET /admin.
type Handler struct {
	log     *slog.Logger
	premium Service
}

// New создаёт Handler.
func New(log *slog.Logger, premium Service) *Handler {
	return &Handler{log: log, premium: premium}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.dashboard"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	all, paid, err := h.premium.ListUsers(r.Context(), time.Now())
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, response.MsgInternal)
		return
	}

	response.View(w, r, View{
		Title:     "Admin Dashboard",
		Flash:     middlewarectx.FlashFrom(r.Context()),
		Users:     all,
		PaidUsers: paid,
	})
}
