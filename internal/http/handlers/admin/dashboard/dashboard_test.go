package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/entitlement-gate/internal/http/response"
	"github.com/magabrotheeeer/entitlement-gate/internal/services/premium"
)

type PremiumServiceMock struct {
	mock.Mock
}

func (m *PremiumServiceMock) ListUsers(ctx context.Context, now time.Time) ([]premium.UserView, []premium.UserView, error) {
	args := m.Called(ctx, now)
	all, _ := args.Get(0).([]premium.UserView)
	paid, _ := args.Get(1).([]premium.UserView)
	return all, paid, args.Error(2)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestHandler_ServeHTTP(t *testing.T) {
	all := []premium.UserView{
		{ID: 2, Email: "paid@gmail.com", PremiumActive: true, State: "premium_active"},
		{ID: 1, Email: "trial@gmail.com", TrialActive: true, State: "trial_active"},
	}
	svc := new(PremiumServiceMock)
	svc.On("ListUsers", mock.Anything, mock.AnythingOfType("time.Time")).Return(all, all[:1], nil).Once()

	rec := httptest.NewRecorder()
	New(newNoopLogger(), svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Status string `json:"status"`
		Data   View   `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, response.StatusOK, resp.Status)
	assert.Equal(t, "Admin Dashboard", resp.Data.Title)
	require.Len(t, resp.Data.Users, 2)
	require.Len(t, resp.Data.PaidUsers, 1)
	assert.Equal(t, "paid@gmail.com", resp.Data.PaidUsers[0].Email)
	svc.AssertExpectations(t)
}

func TestHandler_Error(t *testing.T) {
	svc := new(PremiumServiceMock)
	svc.On("ListUsers", mock.Anything, mock.Anything).Return(nil, nil, errors.New("db error")).Once()

	rec := httptest.NewRecorder()
	New(newNoopLogger(), svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), response.MsgInternal)
}
