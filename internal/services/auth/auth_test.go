package auth_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/magabrotheeeer/entitlement-gate/internal/lib/password"
	"github.com/magabrotheeeer/entitlement-gate/internal/models"
	"github.com/magabrotheeeer/entitlement-gate/internal/rabbitmq"
	"github.com/magabrotheeeer/entitlement-gate/internal/services/auth"
	"github.com/magabrotheeeer/entitlement-gate/internal/storage"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) CreateUser(ctx context.Context, email, passwordHash string, now time.Time) (*models.User, error) {
	args := m.Called(ctx, email, passwordHash, now)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

// Мок для EventPublisher
type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, message any) error {
	args := m.Called(ctx, routingKey, message)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newService(repo *UserRepoMock, pub *PublisherMock) *auth.Service {
	return auth.NewService(newNoopLogger(), repo, pub, "gmail.com").WithHashCost(bcrypt.MinCost)
}

func TestService_Signup(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		email      string
		password   string
		setupMocks func(r *UserRepoMock, p *PublisherMock)
		wantErr    error
		wantMsg    string
	}{
		{
			name:     "successful signup",
			email:    "  Alice@Gmail.com ",
			password: "secret",
			setupMocks: func(r *UserRepoMock, p *PublisherMock) {
				r.On("CreateUser", mock.Anything, "alice@gmail.com", mock.MatchedBy(func(h string) bool {
					return password.Compare(h, "secret") == nil
				}), now).Return(&models.User{ID: 7, Email: "alice@gmail.com", CreatedAt: now, TrialStartedAt: now}, nil).Once()
				p.On("Publish", mock.Anything, rabbitmq.KeyUserRegistered, mock.MatchedBy(func(ev rabbitmq.Event) bool {
					return ev.UserID == 7 && ev.Email == "alice@gmail.com"
				})).Return(nil).Once()
			},
		},
		{
			name:       "missing password",
			email:      "alice@gmail.com",
			setupMocks: func(_ *UserRepoMock, _ *PublisherMock) {},
			wantErr:    auth.ErrValidation,
			wantMsg:    auth.MsgMissingFields,
		},
		{
			name:       "missing email",
			password:   "secret",
			setupMocks: func(_ *UserRepoMock, _ *PublisherMock) {},
			wantErr:    auth.ErrValidation,
			wantMsg:    auth.MsgMissingFields,
		},
		{
			name:       "not an email",
			email:      "@gmail.com",
			password:   "secret",
			setupMocks: func(_ *UserRepoMock, _ *PublisherMock) {},
			wantErr:    auth.ErrValidation,
			wantMsg:    auth.MsgInvalidEmail,
		},
		{
			name:       "foreign domain",
			email:      "bob@yahoo.com",
			password:   "secret",
			setupMocks: func(_ *UserRepoMock, _ *PublisherMock) {},
			wantErr:    auth.ErrValidation,
			wantMsg:    "Only @gmail.com emails are allowed.",
		},
		{
			name:       "lookalike domain",
			email:      "bob@notgmail.com",
			password:   "secret",
			setupMocks: func(_ *UserRepoMock, _ *PublisherMock) {},
			wantErr:    auth.ErrValidation,
			wantMsg:    "Only @gmail.com emails are allowed.",
		},
		{
			name:       "password too long",
			email:      "bob@gmail.com",
			password:   strings.Repeat("x", 80),
			setupMocks: func(_ *UserRepoMock, _ *PublisherMock) {},
			wantErr:    auth.ErrValidation,
		},
		{
			name:     "duplicate email",
			email:    "ALICE@gmail.com",
			password: "secret",
			setupMocks: func(r *UserRepoMock, _ *PublisherMock) {
				r.On("CreateUser", mock.Anything, "alice@gmail.com", mock.Anything, now).
					Return(nil, fmt.Errorf("storage.CreateUser: %w", storage.ErrDuplicateEmail)).Once()
			},
			wantErr: auth.ErrDuplicateAccount,
		},
		{
			name:     "repository error",
			email:    "alice@gmail.com",
			password: "secret",
			setupMocks: func(r *UserRepoMock, _ *PublisherMock) {
				r.On("CreateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(nil, errors.New("db error")).Once()
			},
		},
		{
			name:     "publish error does not fail signup",
			email:    "carol@gmail.com",
			password: "secret",
			setupMocks: func(r *UserRepoMock, p *PublisherMock) {
				r.On("CreateUser", mock.Anything, "carol@gmail.com", mock.Anything, now).
					Return(&models.User{ID: 8, Email: "carol@gmail.com"}, nil).Once()
				p.On("Publish", mock.Anything, rabbitmq.KeyUserRegistered, mock.Anything).
					Return(errors.New("broker down")).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			pub := new(PublisherMock)
			tt.setupMocks(repo, pub)
			svc := newService(repo, pub)

			user, err := svc.Signup(context.Background(), tt.email, tt.password, now)

			switch {
			case tt.wantErr != nil:
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				if tt.wantMsg != "" {
					var verr *auth.ValidationError
					require.ErrorAs(t, err, &verr)
					assert.Equal(t, tt.wantMsg, verr.Message)
				}
			case tt.name == "repository error":
				require.Error(t, err)
				assert.Contains(t, err.Error(), "db error")
			default:
				require.NoError(t, err)
				require.NotNil(t, user)
			}

			repo.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestService_Signup_ValidationSkipsRepository(t *testing.T) {
	repo := new(UserRepoMock)
	pub := new(PublisherMock)
	svc := newService(repo, pub)

	_, err := svc.Signup(context.Background(), "someone@yahoo.com", "secret", time.Now())
	require.ErrorIs(t, err, auth.ErrValidation)

	repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Signup_DuplicateWrapsStorageError(t *testing.T) {
	repo := new(UserRepoMock)
	pub := new(PublisherMock)
	repo.On("CreateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, storage.ErrDuplicateEmail).Once()
	svc := newService(repo, pub)

	_, err := svc.Signup(context.Background(), "dup@gmail.com", "secret", time.Now())
	assert.ErrorIs(t, err, auth.ErrDuplicateAccount)
	assert.ErrorIs(t, err, storage.ErrDuplicateEmail)
}

func TestService_Signin(t *testing.T) {
	hashed, err := password.HashWithCost("correctpassword", bcrypt.MinCost)
	require.NoError(t, err)
	stored := &models.User{ID: 3, Email: "alice@gmail.com", PasswordHash: hashed}

	tests := []struct {
		name       string
		email      string
		password   string
		setupMocks func(r *UserRepoMock)
		wantErr    error
		wantUserID int64
	}{
		{
			name:     "successful signin",
			email:    "Alice@GMAIL.com",
			password: "correctpassword",
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByEmail", mock.Anything, "alice@gmail.com").Return(stored, nil).Once()
			},
			wantUserID: 3,
		},
		{
			name:     "unknown account",
			email:    "nobody@gmail.com",
			password: "whatever",
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByEmail", mock.Anything, "nobody@gmail.com").
					Return(nil, fmt.Errorf("storage.GetUserByEmail: %w", storage.ErrUserNotFound)).Once()
			},
			wantErr: auth.ErrAccountNotFound,
		},
		{
			name:     "wrong password",
			email:    "alice@gmail.com",
			password: "wrongpassword",
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByEmail", mock.Anything, "alice@gmail.com").Return(stored, nil).Once()
			},
			wantErr: auth.ErrInvalidCredentials,
		},
		{
			name:       "missing fields",
			email:      "",
			password:   "",
			setupMocks: func(_ *UserRepoMock) {},
			wantErr:    auth.ErrValidation,
		},
		{
			name:     "signin does not check domain",
			email:    "legacy@example.com",
			password: "whatever",
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByEmail", mock.Anything, "legacy@example.com").Return(nil, storage.ErrUserNotFound).Once()
			},
			wantErr: auth.ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			pub := new(PublisherMock)
			tt.setupMocks(repo)
			svc := newService(repo, pub)

			user, err := svc.Signin(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantUserID, user.ID)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Signin_RepositoryError(t *testing.T) {
	repo := new(UserRepoMock)
	repo.On("GetUserByEmail", mock.Anything, mock.Anything).Return(nil, errors.New("disk I/O error")).Once()
	svc := newService(repo, new(PublisherMock))

	_, err := svc.Signin(context.Background(), "alice@gmail.com", "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, auth.ErrAccountNotFound)
	assert.Contains(t, err.Error(), "disk I/O error")
}

func TestService_DomainMessage(t *testing.T) {
	svc := auth.NewService(newNoopLogger(), new(UserRepoMock), new(PublisherMock), "@Example.org")
	assert.Equal(t, "Only @example.org emails are allowed.", svc.DomainMessage())
}
