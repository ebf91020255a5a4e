package login

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/entitlement-gate/internal/session"
)

type AuthenticatorMock struct {
	mock.Mock
}

func (m *AuthenticatorMock) Check(username, password string) bool {
	return m.Called(username, password).Bool(0)
}

type SessionSetterMock struct {
	mock.Mock
}

func (m *SessionSetterMock) Set(w http.ResponseWriter, r *http.Request, patch session.Patch) error {
	args := m.Called(w, r, patch)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name         string
		ok           bool
		wantLocation string
		wantPatch    session.Patch
	}{
		{name: "valid", ok: true, wantLocation: "/admin", wantPatch: session.WithAdmin(true)},
		{name: "invalid", ok: false, wantLocation: "/admin/login", wantPatch: session.WithFlash(session.FlashError, MsgInvalid)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admin := new(AuthenticatorMock)
			admin.On("Check", "root", "pw").Return(tt.ok).Once()
			sessions := new(SessionSetterMock)
			sessions.On("Set", mock.Anything, mock.Anything, tt.wantPatch).Return(nil).Once()

			form := url.Values{"username": {"root"}, "password": {"pw"}}
			req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()
			New(newNoopLogger(), admin, sessions).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			admin.AssertExpectations(t)
			sessions.AssertExpectations(t)
		})
	}
}
