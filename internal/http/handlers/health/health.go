// Package health отдаёт признак живости сервиса.
package health

import (
	"net/http"

	"github.com/go-chi/render"
)

// Handler обработчик GET /healthz.
type Handler struct{}

// New создаёт Handler.
func New() *Handler {
	return &Handler{}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]bool{"ok": true})
}
