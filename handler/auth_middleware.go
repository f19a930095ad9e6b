package handler

import (
	"context"
	"errors"
	"joban-api/common"
	"joban-api/service"
	"net/http"
	"strings"
)

type contextKey string

const (
	UserIDKey contextKey = "userID"
	LoginKey  contextKey = "login"
	TokenKey  contextKey = "token"
)

// TokenFromRequest reads the session token from the cookie, falling back
// to an "Authorization: Bearer" header.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}

	authHeader := r.Header.Get("Authorization")
	headerParts := strings.SplitN(authHeader, " ", 2)
	if len(headerParts) == 2 && strings.EqualFold(headerParts[0], "bearer") {
		return strings.TrimSpace(headerParts[1])
	}
	return ""
}

// AuthMiddleware guards protected routes. It rejects requests without a
// live token and stores the caller's identity in the request context.
func AuthMiddleware(authService *service.AuthService, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			value := TokenFromRequest(r, cookieName)

			token, err := authService.Authenticate(r.Context(), value)
			if err != nil {
				var appErr *common.AppError
				switch {
				case errors.Is(err, service.ErrNotAuthorized):
					appErr = common.NewAppError(http.StatusUnauthorized, "Not authorized", nil)
				case errors.Is(err, service.ErrTokenExpired):
					appErr = common.NewAppError(http.StatusUnauthorized, "Token expired", nil)
				default:
					appErr = common.NewInternalError(err)
				}
				appErr.Send(w)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, token.UserID)
			ctx = context.WithValue(ctx, LoginKey, token.Login)
			ctx = context.WithValue(ctx, TokenKey, token.Value)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func userIDFrom(r *http.Request) (int, *common.AppError) {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return 0, common.NewAppError(http.StatusUnauthorized, "Not authorized", nil)
	}
	return userID, nil
}
