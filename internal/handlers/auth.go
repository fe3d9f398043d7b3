package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/product_catalog/internal/domain"
	"github.com/Skotchmaster/product_catalog/internal/service"
	"github.com/Skotchmaster/product_catalog/internal/transport"
	"github.com/Skotchmaster/product_catalog/pkg/logging"
	authmw "github.com/Skotchmaster/product_catalog/pkg/middleware/auth"
)

type AuthHandler struct {
	Auth *service.AuthService
}

func userNotFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return withMessage(err, "user not found")
	}
	return err
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "bind", "error", err)
		return bindError(err)
	}

	res, err := h.Auth.Register(ctx, &req)
	if err != nil {
		l.Warn("register_error", "error", err)
		return err
	}
	return success(c, http.StatusCreated, "user registered", transport.AuthResponse{User: res.User, Token: res.Token})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "bind", "error", err)
		return bindError(err)
	}

	res, err := h.Auth.Login(ctx, &req)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "login successful", transport.AuthResponse{User: res.User, Token: res.Token})
}

func (h *AuthHandler) Profile(c echo.Context) error {
	ctx := c.Request().Context()

	caller := authmw.CallerFrom(c)
	if caller == nil {
		return domain.ErrUnauthenticated
	}

	u, err := h.Auth.Profile(ctx, caller.ID)
	if err != nil {
		logging.FromContext(ctx).Warn("profile_error", "user_id", caller.ID, "error", err)
		return userNotFound(err)
	}
	return success(c, http.StatusOK, "profile retrieved", u)
}

func (h *AuthHandler) ListUsers(c echo.Context) error {
	users, err := h.Auth.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "users retrieved", users)
}

func (h *AuthHandler) GetUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	u, err := h.Auth.GetUser(c.Request().Context(), id)
	if err != nil {
		return userNotFound(err)
	}
	return success(c, http.StatusOK, "user retrieved", u)
}
