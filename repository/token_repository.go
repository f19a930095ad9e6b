package repository

import (
	"context"
	"database/sql"
	"errors"
	"joban-api/db"
	"joban-api/logger"
	"joban-api/model"

	"github.com/sirupsen/logrus"
)

// ITokenRepository defines the contract for session token storage.
type ITokenRepository interface {
	Create(ctx context.Context, token *model.Token) error
	FindByValue(ctx context.Context, value string) (*model.Token, error)
	Delete(ctx context.Context, value string) error
}

// TokenRepository implements ITokenRepository.
type TokenRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(conn *sql.DB, dialect db.Dialect) *TokenRepository {
	return &TokenRepository{DB: conn, Dialect: dialect}
}

// Create inserts a new token record.
func (r *TokenRepository) Create(ctx context.Context, token *model.Token) error {
	log := logger.Log.WithFields(logrus.Fields{
		"login":      token.Login,
		"expires_at": token.ExpiresAt,
	})
	log.Info("Executing query to create a new session token")

	query := r.Dialect.Rebind(`INSERT INTO tokens (login, token, expires_at, created_at) VALUES (?, ?, ?, ?) RETURNING id`)
	err := r.DB.QueryRowContext(ctx, query, token.Login, token.Value, token.ExpiresAt, token.CreatedAt).Scan(&token.ID)
	if err != nil {
		log.WithError(err).Error("Failed to execute create token query")
		return err
	}
	return nil
}

// FindByValue looks a token up by its value and resolves the owner's user id.
// Expiry is not checked here.
func (r *TokenRepository) FindByValue(ctx context.Context, value string) (*model.Token, error) {
	token := &model.Token{}
	query := r.Dialect.Rebind(`SELECT t.id, t.login, u.id, t.token, t.expires_at, t.created_at
		FROM tokens t JOIN users u ON u.login = t.login
		WHERE t.token = ?`)
	err := r.DB.QueryRowContext(ctx, query, value).Scan(
		&token.ID, &token.Login, &token.UserID, &token.Value, &token.ExpiresAt, &token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		logger.Log.WithError(err).Error("Failed to execute get token query")
		return nil, err
	}
	return token, nil
}

// Delete removes the token. Deleting a token that does not exist is not an error.
func (r *TokenRepository) Delete(ctx context.Context, value string) error {
	query := r.Dialect.Rebind(`DELETE FROM tokens WHERE token = ?`)
	res, err := r.DB.ExecContext(ctx, query, value)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute delete token query")
		return err
	}
	if n, err := res.RowsAffected(); err == nil {
		logger.Log.WithField("rows", n).Info("Session token deleted")
	}
	return nil
}
