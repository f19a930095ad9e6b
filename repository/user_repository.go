package repository

import (
	"context"
	"database/sql"
	"errors"
	"joban-api/db"
	"joban-api/logger"
	"joban-api/model"
	"time"

	"github.com/sirupsen/logrus"
)

// IUserRepository is the credential store.
type IUserRepository interface {
	FindByLogin(ctx context.Context, login string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}

type UserRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewUserRepository(conn *sql.DB, dialect db.Dialect) *UserRepository {
	return &UserRepository{DB: conn, Dialect: dialect}
}

// Create inserts user and fills in ID and CreatedAt. A duplicate login
// yields ErrLoginTaken.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	log := logger.Log.WithField("login", user.Login)
	log.Info("Executing query to create a new user")

	user.CreatedAt = time.Now().UTC()
	query := r.Dialect.Rebind(`INSERT INTO users (login, first_name, last_name, salt, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	err := r.DB.QueryRowContext(ctx, query,
		user.Login, user.FirstName, user.LastName, user.Salt, user.PasswordHash, user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		if r.Dialect.IsUniqueViolation(err) {
			log.Warn("Login already taken")
			return ErrLoginTaken
		}
		log.WithError(err).Error("Failed to execute create user query")
		return err
	}
	return nil
}

// FindByLogin returns ErrNotFound when no user has the login.
func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*model.User, error) {
	log := logger.Log.WithFields(logrus.Fields{"login": login})
	log.Info("Executing query to get user by login")

	user := &model.User{}
	query := r.Dialect.Rebind(`SELECT id, login, first_name, last_name, salt, password_hash, created_at
		FROM users WHERE login = ?`)
	err := r.DB.QueryRowContext(ctx, query, login).Scan(
		&user.ID, &user.Login, &user.FirstName, &user.LastName, &user.Salt, &user.PasswordHash, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		log.WithError(err).Error("Failed to execute get user by login query")
		return nil, err
	}
	return user, nil
}
