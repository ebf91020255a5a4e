// Package dashboard отдаёт главную страницу приложения с правами доступа пользователя.
package dashboard

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/entitlement-gate/internal/entitlement"
	"github.com/magabrotheeeer/entitlement-gate/internal/http/middlewarectx"
	"github.com/magabrotheeeer/entitlement-gate/internal/http/response"
	"github.com/magabrotheeeer/entitlement-gate/internal/session"
)

// View представление страницы /app.
type View struct {
	Title string         `json:"title"`
	Email string         `json:"email"`
	Flash *session.Flash `json:"flash,omitempty"`
	entitlement.Status
	EmbedURL  string `json:"embedUrl"`
	CropTopPx int    `json:"cropTopPx"`
	Brand     string `json:"brand"`
}

// Handler обрабатывает GET /app. Ожидает пользователя в контексте (RequireAuth).
type Handler struct {
	log *slog.Logger
	now func() time.Time
}

// New создаёт Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log, now: time.Now}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.dashboard"
	ctx := r.Context()

	user := middlewarectx.UserFrom(ctx)
	if user == nil {
		http.Redirect(w, r, "/signin", http.StatusFound)
		return
	}

	status := entitlement.Evaluate(user, h.now())
	h.log.Debug("dashboard",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(ctx)),
		slog.String("state", string(status.State)),
	)

	display := middlewarectx.DisplayFrom(ctx)
	response.View(w, r, View{
		Title:     "App",
		Email:     user.Email,
		Flash:     middlewarectx.FlashFrom(ctx),
		Status:    status,
		EmbedURL:  display.EmbedURL,
		CropTopPx: display.CropTopPx,
		Brand:     display.Brand,
	})
}
