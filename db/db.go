package db

import (
	"database/sql"
	"fmt"
	"joban-api/config"
	"joban-api/logger"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// Connect opens the configured store and verifies it with a ping.
func Connect() (*sql.DB, Dialect, error) {
	cfg := config.AppConfig.Database

	dialect, err := ParseDialect(cfg.Driver)
	if err != nil {
		return nil, "", err
	}

	dsn, safeDSN := DSN(dialect)
	logger.Log.WithFields(logrus.Fields{
		"driver":     dialect,
		"connection": safeDSN,
	}).Info("Attempting to connect to the database")

	conn, err := Open(dialect, dsn)
	if err != nil {
		return nil, "", err
	}

	logger.Log.Info("Database connection established successfully")
	return conn, dialect, nil
}

// DSN builds the connection string for dialect from AppConfig. The second
// value has the password stripped and is safe to log.
func DSN(dialect Dialect) (string, string) {
	cfg := config.AppConfig.Database
	if dialect == SQLite {
		dsn := SQLiteDSN(cfg.SQLitePath)
		return dsn, dsn
	}

	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
	safeConnStr := fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Name, cfg.SSLMode)
	return connStr, safeConnStr
}

// Open connects to dsn with the driver registered for dialect.
func Open(dialect Dialect, dsn string) (*sql.DB, error) {
	conn, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to open database connection")
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if dialect == SQLite {
		// SQLite allows a single writer; one connection avoids SQLITE_BUSY under load.
		conn.SetMaxOpenConns(1)
	}

	if err = conn.Ping(); err != nil {
		conn.Close()
		logger.Log.WithError(err).Error("Failed to ping database")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return conn, nil
}

// SQLiteDSN returns a DSN for a SQLite file with foreign keys enabled.
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
}
