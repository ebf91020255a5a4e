// Package home перенаправляет с корня сайта в приложение или на вход.
package home

import (
	"net/http"

	"github.com/magabrotheeeer/entitlement-gate/internal/http/middlewarectx"
)

// Handler обработчик GET /.
type Handler struct{}

// New создаёт Handler.
func New() *Handler {
	return &Handler{}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if middlewarectx.StateFrom(r.Context()).Authenticated() {
		http.Redirect(w, r, "/app", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/signin", http.StatusFound)
}
