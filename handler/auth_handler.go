package handler

import (
	"errors"
	"joban-api/common"
	"joban-api/logger"
	"joban-api/model"
	"joban-api/service"
	"net/http"
	"time"
)

// CookieConfig controls the session cookie written at login.
type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	service *service.AuthService
	cookie  CookieConfig
}

func NewAuthHandler(service *service.AuthService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{service: service, cookie: cookie}
}

// Register godoc
// @Summary      Register a new user
// @Description  Creates a user with a salted password hash. The response never contains the hash or salt.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        user  body      model.RegisterRequest  true  "New user"
// @Success      201   {object}  model.UserResponse
// @Failure      400   {object}  common.AppError
// @Failure      409   {object}  common.AppError
// @Failure      429   {object}  common.AppError
// @Router       /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrLoginTaken) {
			return common.NewAppError(http.StatusConflict, "User already exists", nil)
		}
		return common.NewInternalError(err)
	}

	common.RespondJSON(w, http.StatusCreated, model.NewUserResponse(user))
	return nil
}

// Login godoc
// @Summary      Log in
// @Description  Verifies the password and sets an HttpOnly session cookie valid for one hour.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials  body      model.LoginRequest  true  "Credentials"
// @Success      200          {object}  model.DisplayNameResponse
// @Failure      401          {object}  common.AppError
// @Failure      404          {object}  common.AppError
// @Failure      429          {object}  common.AppError
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	user, token, err := h.service.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return common.NewAppError(http.StatusNotFound, "User not found", nil)
		case errors.Is(err, service.ErrWrongPassword):
			return common.NewAppError(http.StatusUnauthorized, "Wrong password", nil)
		default:
			return common.NewInternalError(err)
		}
	}

	http.SetCookie(w, h.sessionCookie(token.Value, token.ExpiresAt))
	common.RespondJSON(w, http.StatusOK, model.DisplayNameResponse{DisplayName: user.DisplayName()})
	return nil
}

func (h *AuthHandler) sessionCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(h.service.TokenTTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteNoneMode,
	}
}

// Logout godoc
// @Summary      Log out
// @Description  Deletes the session token and clears the cookie.
// @Tags         auth
// @Produce      json
// @Success      200  {string}  string  "logout"
// @Failure      401  {object}  common.AppError
// @Security     CookieAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	value, _ := r.Context().Value(TokenKey).(string)

	// The cookie is cleared even if the delete fails.
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteNoneMode,
	})

	if err := h.service.Logout(r.Context(), value); err != nil {
		return common.NewInternalError(err)
	}

	logger.Log.WithField("login", r.Context().Value(LoginKey)).Info("User logged out")
	common.RespondJSON(w, http.StatusOK, "logout")
	return nil
}

// Protected godoc
// @Summary      Session probe
// @Tags         auth
// @Produce      json
// @Success      200  {string}  string  "authorized"
// @Failure      401  {object}  common.AppError
// @Security     CookieAuth
// @Router       /auth/protected [get]
func (h *AuthHandler) Protected(w http.ResponseWriter, r *http.Request) *common.AppError {
	common.RespondJSON(w, http.StatusOK, "authorized")
	return nil
}

// WhoAmI godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  model.DisplayNameResponse
// @Failure      401  {object}  common.AppError
// @Security     CookieAuth
// @Router       /auth/whoami [get]
func (h *AuthHandler) WhoAmI(w http.ResponseWriter, r *http.Request) *common.AppError {
	login, _ := r.Context().Value(LoginKey).(string)

	user, err := h.service.WhoAmI(r.Context(), login)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return common.NewAppError(http.StatusUnauthorized, "Not authorized", nil)
		}
		return common.NewInternalError(err)
	}

	common.RespondJSON(w, http.StatusOK, model.DisplayNameResponse{DisplayName: user.DisplayName()})
	return nil
}
