package grant

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/entitlement-gate/internal/http/response"
	"github.com/magabrotheeeer/entitlement-gate/internal/session"
	"github.com/magabrotheeeer/entitlement-gate/internal/storage"
)

type PremiumServiceMock struct {
	mock.Mock
}

func (m *PremiumServiceMock) Grant(ctx context.Context, userID int64, now time.Time) (time.Time, error) {
	args := m.Called(ctx, userID, now)
	return args.Get(0).(time.Time), args.Error(1)
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
		name      string
		path      string
		callGrant bool
		mockErr   error
		wantFlash session.Patch
	}{
		{
			name:      "granted",
			path:      "/admin/grant/5",
			callGrant: true,
			wantFlash: session.WithFlash(session.FlashSuccess, MsgGranted),
		},
		{
			name:      "unknown user",
			path:      "/admin/grant/5",
			callGrant: true,
			mockErr:   storage.ErrUserNotFound,
			wantFlash: session.WithFlash(session.FlashError, MsgNotFound),
		},
		{
			name:      "storage error",
			path:      "/admin/grant/5",
			callGrant: true,
			mockErr:   errors.New("db error"),
			wantFlash: session.WithFlash(session.FlashError, response.MsgInternal),
		},
		{
			name:      "non-numeric id",
			path:      "/admin/grant/abc",
			wantFlash: session.WithFlash(session.FlashError, MsgInvalidID),
		},
		{
			name:      "zero id",
			path:      "/admin/grant/0",
			wantFlash: session.WithFlash(session.FlashError, MsgInvalidID),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(PremiumServiceMock)
			if tt.callGrant {
				svc.On("Grant", mock.Anything, int64(5), mock.AnythingOfType("time.Time")).
					Return(time.Time{}, tt.mockErr).Once()
			}
			sessions := new(SessionSetterMock)
			sessions.On("Set", mock.Anything, mock.Anything, tt.wantFlash).Return(nil).Once()

			r := chi.NewRouter()
			r.Post("/admin/grant/{id}", New(newNoopLogger(), svc, sessions).ServeHTTP)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tt.path, nil))

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/admin", rec.Header().Get("Location"))
			svc.AssertExpectations(t)
			sessions.AssertExpectations(t)
		})
	}
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"", "-1", "0", "1.5", "99999999999999999999"} {
		_, err := ParseID(raw)
		assert.Error(t, err, raw)
	}
}
