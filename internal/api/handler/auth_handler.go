package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/authhub/identity-service/internal/api/metrics"
	"github.com/authhub/identity-service/internal/core/domain"
	"github.com/authhub/identity-service/internal/core/ports"
)

// AuthHandler exposes the authentication lifecycle over HTTP. The access
// token is carried in an HTTP-only cookie; the refresh token is returned
// in the response body and kept by the client.
type AuthHandler struct {
	authService ports.AuthService
	cookieName  string
}

func NewAuthHandler(authService ports.AuthService, cookieName string) *AuthHandler {
	return &AuthHandler{authService: authService, cookieName: cookieName}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	msg, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registerResult(err)).Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusCreated, messageResponse{Message: msg})
}

// Confirm handles the confirmation link from the registration email and
// redirects the browser on success.
//
// @Summary      Confirm a user's email address
// @Tags         auth
// @Param        token  query  string  true  "Confirmation token"
// @Success      302
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /auth/confirm [get]
func (h *AuthHandler) Confirm(c echo.Context) error {
	confirmToken := c.QueryParam("token")
	if confirmToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token is required")
	}

	redirect, err := h.authService.ConfirmEmail(c.Request().Context(), confirmToken)
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, redirect)
}

// Login authenticates a user and opens a session.
//
// @Summary      Login with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  tokenPairResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pair, err := h.authService.Authenticate(c.Request().Context(), ports.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	h.setAccessCookie(c, pair.AccessToken)
	return c.JSON(http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Refresh rotates the session's token pair. The access token is read from
// the cookie even when expired; only its signature has to hold.
//
// @Summary      Rotate access and refresh tokens
// @Tags         auth
// @Produce      json
// @Success      200  {object}  tokenPairResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(h.cookieName)
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "access token missing")
	}

	pair, err := h.authService.RefreshTokens(c.Request().Context(), cookie.Value)
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("rejected").Inc()
		return err
	}

	metrics.TokenRefreshesTotal.WithLabelValues("ok").Inc()
	h.setAccessCookie(c, pair.AccessToken)
	return c.JSON(http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Logout revokes the current user's session and clears the access cookie.
//
// @Summary      Logout the current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/logout [get]
func (h *AuthHandler) Logout(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	if err := h.authService.Logout(c.Request().Context(), user.ID); err != nil {
		return err
	}

	h.clearAccessCookie(c)
	return c.JSON(http.StatusOK, messageResponse{Message: "you have been signed out"})
}

func (h *AuthHandler) setAccessCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
}

func (h *AuthHandler) clearAccessCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func registerResult(err error) string {
	if errors.Is(err, domain.ErrUserExists) {
		return "duplicate"
	}
	return "error"
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrNotActivated):
		return "not_activated"
	default:
		return "error"
	}
}
