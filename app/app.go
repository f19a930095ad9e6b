package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"joban-api/config"
	"joban-api/db"
	"joban-api/handler"
	"joban-api/logger"
	"joban-api/repository"
	"joban-api/router"
	"joban-api/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
)

func Run() {
	logger.Init()
	config.LoadConfig(".")
	cfg := config.AppConfig
	logger.Configure(cfg.Log.Level, cfg.Log.Format)
	logger.Log.Info("Configuration loaded successfully")

	database, dialect, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	if cfg.Database.AutoMigrate {
		dsn, _ := db.DSN(dialect)
		if err := db.Migrate(dialect, dsn); err != nil {
			logger.Log.Fatalf("Error applying migrations: %v", err)
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = db.ConnectRedis()
		if err != nil {
			// Cache and shared rate limiting are optional.
			logger.Log.WithError(err).Warn("Redis unavailable, continuing without cache")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	r, err := NewHandler(database, dialect, redisClient, cfg)
	if err != nil {
		logger.Log.Fatalf("Error wiring application: %v", err)
	}

	port := cfg.Server.Port
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}

// NewHandler wires repositories, services and handlers into the HTTP router.
// A nil redisClient selects the no-op board cache and the in-process limiter.
func NewHandler(database *sql.DB, dialect db.Dialect, redisClient *redis.Client, cfg config.Config) (http.Handler, error) {
	hasher, err := service.NewPasswordHasher(cfg.Auth.HashAlgorithm)
	if err != nil {
		return nil, err
	}

	// Layers for auth
	userRepo := repository.NewUserRepository(database, dialect)
	tokenRepo := repository.NewTokenRepository(database, dialect)
	authService := service.NewAuthService(userRepo, tokenRepo, hasher, service.AuthOptions{
		TokenTTL:   cfg.Auth.TokenTTL,
		SaltLength: cfg.Auth.SaltLength,
	})
	authHandler := handler.NewAuthHandler(authService, handler.CookieConfig{
		Name:   cfg.Auth.CookieName,
		Secure: cfg.Auth.CookieSecure,
	})

	var cache service.BoardCache = service.NoopBoardCache{}
	var limiter service.RateLimiter
	if redisClient != nil {
		cache = service.NewRedisBoardCache(redisClient, cfg.Redis.CacheTTL)
	}
	trustedProxies, err := handler.ParseTrustedProxies(cfg.RateLimit.TrustedProxies)
	if err != nil {
		return nil, err
	}
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.RequestsPerMinute <= 0 {
			return nil, fmt.Errorf("rate_limit.requests_per_minute must be positive, got %d", cfg.RateLimit.RequestsPerMinute)
		}
		if redisClient != nil {
			limiter = service.NewRedisRateLimiter(redisClient, cfg.RateLimit.RequestsPerMinute)
		} else {
			limiter = service.NewLocalRateLimiter(cfg.RateLimit.RequestsPerMinute)
		}
	}

	// Layers for boards and tasks
	boardService := service.NewBoardService(repository.NewBoardRepository(database, dialect), cache)
	taskService := service.NewTaskService(repository.NewTaskRepository(database, dialect), cache)

	return router.NewRouter(router.Deps{
		AuthHandler:    authHandler,
		BoardHandler:   handler.NewBoardHandler(boardService),
		TaskHandler:    handler.NewTaskHandler(taskService),
		AuthService:    authService,
		CookieName:     cfg.Auth.CookieName,
		Limiter:        limiter,
		TrustedProxies: trustedProxies,
		DB:             database,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	}), nil
}

// TestApp holds the wired router and its store for end-to-end tests.
type TestApp struct {
	Router  http.Handler
	DB      *sql.DB
	Dialect db.Dialect
}

// NewTestApp wires the application against an already migrated store.
// Rate limiting is off so tests can issue requests freely.
func NewTestApp(database *sql.DB, dialect db.Dialect, redisClient *redis.Client, cfg config.Config) (*TestApp, error) {
	cfg.RateLimit.Enabled = false
	r, err := NewHandler(database, dialect, redisClient, cfg)
	if err != nil {
		return nil, err
	}
	return &TestApp{Router: r, DB: database, Dialect: dialect}, nil
}
