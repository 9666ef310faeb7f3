package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/feed_shop/internal/service"
	"github.com/Skotchmaster/feed_shop/internal/session"
	"github.com/Skotchmaster/feed_shop/internal/transport"
	"github.com/Skotchmaster/feed_shop/pkg/logging"
)

type AuthHTTP struct {
	Svc           *service.AuthService
	SecureCookies bool
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := bindAndValidate(c, l, "register_error", &req); err != nil {
		return err
	}

	res, err := h.Svc.Register(ctx, req)
	if err != nil {
		return respondError(l, "register_error", err, "")
	}

	c.SetCookie(session.CreateCookie(res.Token, res.ExpiresAt, h.SecureCookies))
	l.Info("register_success", "user_id", res.User.ID)
	return c.JSON(http.StatusCreated, res.User)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := bindAndValidate(c, l, "login_error", &req); err != nil {
		return err
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		return respondError(l, "login_failed", err, "")
	}

	c.SetCookie(session.CreateCookie(res.Token, res.ExpiresAt, h.SecureCookies))
	l.Info("login_successful", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, res.User)
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	if err := h.Svc.Logout(ctx, sessionToken(c)); err != nil {
		l.Error("logout_failed", "status", 500, "reason", "cannot revoke session", "error", err)
	}
	c.SetCookie(session.DeleteCookie(h.SecureCookies))

	l.Info("successful_logout")
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Logged out",
	})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.me")

	user, err := h.Svc.CurrentUser(ctx, sessionToken(c))
	if err != nil {
		return respondError(l, "me_error", err, "")
	}
	return c.JSON(http.StatusOK, user)
}
