package service

import (
	"context"
	"encoding/hex"
	"errors"
	"joban-api/logger"
	"joban-api/model"
	"joban-api/repository"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) FindByLogin(ctx context.Context, login string) (*model.User, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type mockTokenRepo struct{ mock.Mock }

func (m *mockTokenRepo) Create(ctx context.Context, token *model.Token) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockTokenRepo) FindByValue(ctx context.Context, value string) (*model.Token, error) {
	args := m.Called(ctx, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Token), args.Error(1)
}

func (m *mockTokenRepo) Delete(ctx context.Context, value string) error {
	args := m.Called(ctx, value)
	return args.Error(0)
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newAuthServiceForTest(users *mockUserRepo, tokens *mockTokenRepo, now *time.Time) *AuthService {
	return NewAuthService(users, tokens, SHA256Hasher{}, AuthOptions{
		Clock: func() time.Time { return *now },
	})
}

func storedUser(t *testing.T, login, password string) *model.User {
	t.Helper()
	salt, err := GenerateSalt(16)
	require.NoError(t, err)
	digest, err := SHA256Hasher{}.Hash(password, salt)
	require.NoError(t, err)
	return &model.User{ID: 1, Login: login, FirstName: "A", LastName: "B", Salt: salt, PasswordHash: digest}
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	now := fixedNow
	req := model.RegisterRequest{FirstName: "A", LastName: "B", Login: "alice", Password: "pw123"}

	t.Run("stores salted hash", func(t *testing.T) {
		users, tokens := new(mockUserRepo), new(mockTokenRepo)
		svc := newAuthServiceForTest(users, tokens, &now)

		users.On("FindByLogin", ctx, "alice").Return(nil, repository.ErrNotFound).Once()
		users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
			return len(u.Salt) == 16 && SHA256Hasher{}.Verify("pw123", u.Salt, u.PasswordHash) &&
				u.FirstName == "A" && u.LastName == "B"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*model.User).ID = 42
		}).Return(nil).Once()

		user, err := svc.Register(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, 42, user.ID)
		assert.NotEqual(t, "pw123", user.PasswordHash)
		users.AssertExpectations(t)
	})

	t.Run("existing login", func(t *testing.T) {
		users, tokens := new(mockUserRepo), new(mockTokenRepo)
		svc := newAuthServiceForTest(users, tokens, &now)

		users.On("FindByLogin", ctx, "alice").Return(&model.User{ID: 1, Login: "alice"}, nil).Once()

		_, err := svc.Register(ctx, req)
		assert.ErrorIs(t, err, ErrLoginTaken)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("race lost at insert", func(t *testing.T) {
		users, tokens := new(mockUserRepo), new(mockTokenRepo)
		svc := newAuthServiceForTest(users, tokens, &now)

		users.On("FindByLogin", ctx, "alice").Return(nil, repository.ErrNotFound).Once()
		users.On("Create", ctx, mock.Anything).Return(repository.ErrLoginTaken).Once()

		_, err := svc.Register(ctx, req)
		assert.ErrorIs(t, err, ErrLoginTaken)
	})

	t.Run("store failure", func(t *testing.T) {
		users, tokens := new(mockUserRepo), new(mockTokenRepo)
		svc := newAuthServiceForTest(users, tokens, &now)

		boom := errors.New("connection reset")
		users.On("FindByLogin", ctx, "alice").Return(nil, boom).Once()

		_, err := svc.Register(ctx, req)
		assert.ErrorIs(t, err, boom)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	now := fixedNow

	t.Run("unknown login", func(t *testing.T) {
		users, tokens := new(mockUserRepo), new(mockTokenRepo)
		svc := newAuthServiceForTest(users, tokens, &now)
		users.On("FindByLogin", ctx, "nobody").Return(nil, repository.ErrNotFound).Once()

		_, _, err := svc.Login(ctx, "nobody", "x")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		users, tokens := new(mockUserRepo), new(mockTokenRepo)
		svc := newAuthServiceForTest(users, tokens, &now)
		users.On("FindByLogin", ctx, "alice").Return(storedUser(t, "alice", "pw123"), nil).Once()

		_, _, err := svc.Login(ctx, "alice", "wrong")
		assert.ErrorIs(t, err, ErrWrongPassword)
		tokens.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("issues a one hour token", func(t *testing.T) {
		users, tokens := new(mockUserRepo), new(mockTokenRepo)
		svc := newAuthServiceForTest(users, tokens, &now)
		users.On("FindByLogin", ctx, "alice").Return(storedUser(t, "alice", "pw123"), nil).Once()
		tokens.On("Create", ctx, mock.AnythingOfType("*model.Token")).Return(nil).Once()

		user, token, err := svc.Login(ctx, "alice", "pw123")
		require.NoError(t, err)
		assert.Equal(t, "A B", user.DisplayName())
		assert.Len(t, token.Value, 64)
		_, err = hex.DecodeString(token.Value)
		assert.NoError(t, err)
		assert.Equal(t, fixedNow.Add(time.Hour), token.ExpiresAt)
		assert.Equal(t, "alice", token.Login)
		tokens.AssertExpectations(t)
	})

	t.Run("each login gets a new token", func(t *testing.T) {
		users, tokens := new(mockUserRepo), new(mockTokenRepo)
		svc := newAuthServiceForTest(users, tokens, &now)
		u := storedUser(t, "alice", "pw123")
		users.On("FindByLogin", ctx, "alice").Return(u, nil).Twice()
		tokens.On("Create", ctx, mock.Anything).Return(nil).Twice()

		_, first, err := svc.Login(ctx, "alice", "pw123")
		require.NoError(t, err)
		_, second, err := svc.Login(ctx, "alice", "pw123")
		require.NoError(t, err)
		assert.NotEqual(t, first.Value, second.Value)
		tokens.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()
	expiry := fixedNow.Add(time.Hour)
	live := func() *model.Token {
		return &model.Token{Login: "alice", UserID: 1, Value: "tok", ExpiresAt: expiry}
	}

	t.Run("empty token", func(t *testing.T) {
		now := fixedNow
		users, tokens := new(mockUserRepo), new(mockTokenRepo)
		svc := newAuthServiceForTest(users, tokens, &now)

		_, err := svc.Authenticate(ctx, "")
		assert.ErrorIs(t, err, ErrNotAuthorized)
		tokens.AssertNotCalled(t, "FindByValue", mock.Anything, mock.Anything)
	})

	t.Run("unknown token", func(t *testing.T) {
		now := fixedNow
		users, tokens := new(mockUserRepo), new(mockTokenRepo)
		svc := newAuthServiceForTest(users, tokens, &now)
		tokens.On("FindByValue", ctx, "tok").Return(nil, repository.ErrNotFound).Once()

		_, err := svc.Authenticate(ctx, "tok")
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("valid until just before expiry", func(t *testing.T) {
		now := expiry.Add(-time.Nanosecond)
		users, tokens := new(mockUserRepo), new(mockTokenRepo)
		svc := newAuthServiceForTest(users, tokens, &now)
		tokens.On("FindByValue", ctx, "tok").Return(live(), nil).Once()

		token, err := svc.Authenticate(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, "alice", token.Login)
		tokens.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("expired at expiry is reaped, then unknown", func(t *testing.T) {
		now := expiry
		users, tokens := new(mockUserRepo), new(mockTokenRepo)
		svc := newAuthServiceForTest(users, tokens, &now)
		tokens.On("FindByValue", ctx, "tok").Return(live(), nil).Once()
		tokens.On("Delete", ctx, "tok").Return(nil).Once()
		tokens.On("FindByValue", ctx, "tok").Return(nil, repository.ErrNotFound).Once()

		_, err := svc.Authenticate(ctx, "tok")
		assert.ErrorIs(t, err, ErrTokenExpired)

		_, err = svc.Authenticate(ctx, "tok")
		assert.ErrorIs(t, err, ErrNotAuthorized)
		tokens.AssertExpectations(t)
	})

	t.Run("failed reap is surfaced", func(t *testing.T) {
		now := expiry.Add(time.Minute)
		users, tokens := new(mockUserRepo), new(mockTokenRepo)
		svc := newAuthServiceForTest(users, tokens, &now)
		boom := errors.New("db down")
		tokens.On("FindByValue", ctx, "tok").Return(live(), nil).Once()
		tokens.On("Delete", ctx, "tok").Return(boom).Once()

		_, err := svc.Authenticate(ctx, "tok")
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrTokenExpired)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	now := fixedNow
	users, tokens := new(mockUserRepo), new(mockTokenRepo)
	svc := newAuthServiceForTest(users, tokens, &now)

	tokens.On("Delete", ctx, "tok").Return(nil).Twice()

	assert.NoError(t, svc.Logout(ctx, "tok"))
	assert.NoError(t, svc.Logout(ctx, "tok"))
	assert.NoError(t, svc.Logout(ctx, ""))
	tokens.AssertExpectations(t)
}

func TestAuthService_WhoAmI(t *testing.T) {
	ctx := context.Background()
	now := fixedNow
	users, tokens := new(mockUserRepo), new(mockTokenRepo)
	svc := newAuthServiceForTest(users, tokens, &now)

	users.On("FindByLogin", ctx, "alice").Return(&model.User{Login: "alice", FirstName: "Alice", LastName: "Smith"}, nil).Once()
	users.On("FindByLogin", ctx, "ghost").Return(nil, repository.ErrNotFound).Once()

	user, err := svc.WhoAmI(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", user.DisplayName())

	_, err = svc.WhoAmI(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestNewAuthService_Defaults(t *testing.T) {
	svc := NewAuthService(nil, nil, nil, AuthOptions{})
	assert.Equal(t, time.Hour, svc.TokenTTL())
	assert.Equal(t, DefaultSaltLength, svc.saltLength)
	assert.IsType(t, SHA256Hasher{}, svc.hasher)
}
