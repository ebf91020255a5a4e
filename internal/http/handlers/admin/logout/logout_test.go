package logout

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/entitlement-gate/internal/session"
)

type SessionSetterMock struct {
	mock.Mock
}

func (m *SessionSetterMock) Set(w http.ResponseWriter, r *http.Request, patch session.Patch) error {
	args := m.Called(w, r, patch)
	return args.Error(0)
}

func TestHandler_ServeHTTP(t *testing.T) {
	sessions := new(SessionSetterMock)
	sessions.On("Set", mock.Anything, mock.Anything, session.WithAdmin(false)).Return(nil).Once()

	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	rec := httptest.NewRecorder()
	New(log, sessions).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/logout", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
	sessions.AssertExpectations(t)
}
