// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON-ответов HTTP-обработчиков и для перенаправлений
// с flash-сообщением.
package response

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/entitlement-gate/internal/lib/sl"
	"github.com/magabrotheeeer/entitlement-gate/internal/session"
)

// Response описывает стандартную структуру JSON-ответа сервера.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

const (
	// StatusOK значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// MsgInternal сообщение для непредвиденных ошибок.
const MsgInternal = "Something went wrong."

// OKWithData возвращает успешный Response с переданными данными.
func OKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// View отдаёт представление страницы со статусом 200.
func View(w http.ResponseWriter, r *http.Request, data any) {
	render.JSON(w, r, OKWithData(data))
}

// Fail отдаёт JSON-ошибку с кодом status.
func Fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, Error(msg))
}

// SessionSetter запись изменений в сессию.
type SessionSetter interface {
	Set(w http.ResponseWriter, r *http.Request, patch session.Patch) error
}

// Redirect сохраняет patch в сессии и перенаправляет на to с кодом 302.
// Ошибка записи сессии логируется, перенаправление выполняется в любом случае.
func Redirect(w http.ResponseWriter, r *http.Request, sessions SessionSetter, log *slog.Logger, to string, patch session.Patch) {
	if err := sessions.Set(w, r, patch); err != nil {
		log.Error("failed to save session", sl.Err(err))
	}
	http.Redirect(w, r, to, http.StatusFound)
}

// FlashRedirect перенаправляет на to с flash-сообщением.
func FlashRedirect(w http.ResponseWriter, r *http.Request, sessions SessionSetter, log *slog.Logger, to, typ, msg string) {
	Redirect(w, r, sessions, log, to, session.WithFlash(typ, msg))
}
