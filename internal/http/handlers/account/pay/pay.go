// Package pay перенаправляет пользователя на внешнюю страницу оплаты.
package pay

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/entitlement-gate/internal/http/middlewarectx"
	"github.com/magabrotheeeer/entitlement-gate/internal/lib/sl"
)

// Handler обрабатывает GET /pay.
type Handler struct {
	log        *slog.Logger
	paymentURL string
}

// New создаёт Handler.
func New(log *slog.Logger, paymentURL string) *Handler {
	return &Handler{log: log, paymentURL: paymentURL}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.pay"
	attrs := []any{
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	}
	if u := middlewarectx.UserFrom(r.Context()); u != nil {
		attrs = append(attrs, sl.UserID(u.ID))
	}
	h.log.Info("payment intent", attrs...)
	http.Redirect(w, r, h.paymentURL, http.StatusFound)
}
