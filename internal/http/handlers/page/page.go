// Package page отдаёт простые страницы без бизнес-логики: формы входа,
// регистрации, входа администратора и страницу оплаты.
package page

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/entitlement-gate/internal/http/middlewarectx"
	"github.com/magabrotheeeer/entitlement-gate/internal/http/response"
)

// Options описание страницы.
type Options struct {
	Title string
	// RedirectSignedIn если задан, вошедший пользователь перенаправляется сюда.
	RedirectSignedIn string
	// Extra дополнительные поля представления.
	Extra map[string]any
}

// Handler отдаёт представление страницы.
type Handler struct {
	log  *slog.Logger
	opts Options
}

// New создаёт Handler.
func New(log *slog.Logger, opts Options) *Handler {
	return &Handler{log: log, opts: opts}
}

// ServeHTTP отдаёт JSON с заголовком, flash-сообщением и параметрами отображения.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.page"
	ctx := r.Context()

	if h.opts.RedirectSignedIn != "" && middlewarectx.UserFrom(ctx) != nil {
		http.Redirect(w, r, h.opts.RedirectSignedIn, http.StatusFound)
		return
	}

	h.log.Debug("render page",
		slog.String("op", op),
		slog.String("title", h.opts.Title),
		slog.String("request_id", middleware.GetReqID(ctx)),
	)

	view := map[string]any{
		"title":   h.opts.Title,
		"display": middlewarectx.DisplayFrom(ctx),
	}
	if f := middlewarectx.FlashFrom(ctx); f != nil {
		view["flash"] = f
	}
	for k, v := range h.opts.Extra {
		view[k] = v
	}
	response.View(w, r, view)
}
