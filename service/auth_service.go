package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"joban-api/logger"
	"joban-api/model"
	"joban-api/repository"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	ErrLoginTaken    = errors.New("user already exists")
	ErrUserNotFound  = errors.New("user not found")
	ErrWrongPassword = errors.New("wrong password")
	ErrNotAuthorized = errors.New("not authorized")
	ErrTokenExpired  = errors.New("token expired")
)

const (
	DefaultTokenTTL   = time.Hour
	DefaultSaltLength = 16
	tokenBytes        = 32
)

type AuthOptions struct {
	TokenTTL   time.Duration
	SaltLength int
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// AuthService owns credentials and the session token lifecycle.
// It keeps no session state in memory.
type AuthService struct {
	users      repository.IUserRepository
	tokens     repository.ITokenRepository
	hasher     PasswordHasher
	ttl        time.Duration
	saltLength int
	now        func() time.Time
}

func NewAuthService(users repository.IUserRepository, tokens repository.ITokenRepository, hasher PasswordHasher, opts AuthOptions) *AuthService {
	s := &AuthService{
		users:      users,
		tokens:     tokens,
		hasher:     hasher,
		ttl:        opts.TokenTTL,
		saltLength: opts.SaltLength,
		now:        opts.Clock,
	}
	if s.hasher == nil {
		s.hasher = SHA256Hasher{}
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTokenTTL
	}
	if s.saltLength <= 0 {
		s.saltLength = DefaultSaltLength
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// TokenTTL is the lifetime given to new tokens.
func (s *AuthService) TokenTTL() time.Duration {
	return s.ttl
}

// Register stores a new user with a fresh salt. The lookup rejects the common
// duplicate case early; the unique constraint on login settles races.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	log := logger.Log.WithField("login", req.Login)

	_, err := s.users.FindByLogin(ctx, req.Login)
	if err == nil {
		return nil, ErrLoginTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	salt, err := s.hasher.GenerateSalt(s.saltLength)
	if err != nil {
		return nil, err
	}
	digest, err := s.hasher.Hash(req.Password, salt)
	if err != nil {
		log.WithError(err).Error("Failed to hash password")
		return nil, err
	}

	user := &model.User{
		Login:        req.Login,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Salt:         salt,
		PasswordHash: digest,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrLoginTaken) {
			return nil, ErrLoginTaken
		}
		return nil, err
	}

	log.WithField("user_id", user.ID).Info("User registered")
	return user, nil
}

// Login verifies the password and issues a new token. Existing sessions of
// the user stay valid.
func (s *AuthService) Login(ctx context.Context, login, password string) (*model.User, *model.Token, error) {
	user, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	if !s.hasher.Verify(password, user.Salt, user.PasswordHash) {
		logger.Log.WithField("login", login).Warn("Login attempt with wrong password")
		return nil, nil, ErrWrongPassword
	}

	value, err := newTokenValue()
	if err != nil {
		return nil, nil, err
	}
	now := s.now().UTC()
	token := &model.Token{
		Login:     user.Login,
		UserID:    user.ID,
		Value:     value,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return nil, nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"login":      user.Login,
		"expires_at": token.ExpiresAt,
	}).Info("Session token issued")
	return user, token, nil
}

// Authenticate resolves a presented token. An expired token is deleted
// before ErrTokenExpired is returned; a failed delete is reported instead.
func (s *AuthService) Authenticate(ctx context.Context, value string) (*model.Token, error) {
	if value == "" {
		return nil, ErrNotAuthorized
	}

	token, err := s.tokens.FindByValue(ctx, value)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotAuthorized
		}
		return nil, err
	}

	if token.ExpiredAt(s.now()) {
		if err := s.tokens.Delete(ctx, value); err != nil {
			return nil, fmt.Errorf("reaping expired token: %w", err)
		}
		logger.Log.WithField("login", token.Login).Info("Expired session token removed")
		return nil, ErrTokenExpired
	}
	return token, nil
}

// Logout deletes the token. A token that is already gone is not an error.
func (s *AuthService) Logout(ctx context.Context, value string) error {
	if value == "" {
		return nil
	}
	return s.tokens.Delete(ctx, value)
}

// WhoAmI resolves the user behind an authenticated login.
func (s *AuthService) WhoAmI(ctx context.Context, login string) (*model.User, error) {
	user, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func newTokenValue() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
