package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bloombouqet/bloom_shop/internal/logging"
	"github.com/bloombouqet/bloom_shop/internal/service"
)

type AuthHTTP struct {
	Svc   *service.AuthService
	Debug bool
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req service.RegisterInput
	if err := c.Bind(&req); err != nil {
		l.Warn("register_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, token, err := h.Svc.Register(ctx, req)
	if err != nil {
		return respondError(c, h.Debug, err)
	}

	return respondSuccess(c, http.StatusCreated, "User registered successfully", echo.Map{
		"user":  user,
		"token": token,
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, token, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		// the 401 body intentionally echoes the submitted username back
		// (source-compatible shape); the message never says whether the
		// username or the password was wrong
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{
				"success":      false,
				"message":      "Invalid login credentials",
				"request_data": echo.Map{"username": req.Username},
			})
		}
		return respondError(c, h.Debug, err)
	}

	return respondSuccess(c, http.StatusOK, "Login successful", echo.Map{
		"user":  user,
		"token": token,
	})
}

func (h *AuthHTTP) CurrentUser(c echo.Context) error {
	return respondSuccess(c, http.StatusOK, "", echo.Map{
		"user": currentUser(c),
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.Svc.Logout(ctx, currentUser(c), currentTokenID(c)); err != nil {
		return respondError(c, h.Debug, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Successfully logged out",
	})
}

func (h *AuthHTTP) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.update_profile")

	var req service.UpdateProfileInput
	if err := c.Bind(&req); err != nil {
		l.Warn("update_profile_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.UpdateProfile(ctx, currentUser(c), req)
	if err != nil {
		return respondError(c, h.Debug, err)
	}

	return respondSuccess(c, http.StatusOK, "Profile updated successfully", echo.Map{
		"user": user,
	})
}
