package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/feed_shop/internal/models"
	"github.com/Skotchmaster/feed_shop/internal/service"
	"github.com/Skotchmaster/feed_shop/internal/session"
	"github.com/Skotchmaster/feed_shop/pkg/logging"
)

const userKey = "user"

// Gate resolves the session cookie and enforces authentication and role checks for a
// route group.
type Gate struct {
	Auth          *service.AuthService
	SecureCookies bool
}

func sessionToken(c echo.Context) string {
	ck, err := c.Cookie(session.CookieName)
	if err != nil {
		return ""
	}
	return ck.Value
}

func currentUser(c echo.Context) *models.User {
	u, _ := c.Get(userKey).(*models.User)
	return u
}

func (g *Gate) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "require_auth")

		token := sessionToken(c)
		user, err := g.Auth.CurrentUser(ctx, token)
		if err != nil {
			if token != "" {
				c.SetCookie(session.DeleteCookie(g.SecureCookies))
			}
			return respondError(l, "auth_required", err, "")
		}

		c.Set(userKey, user)
		return next(c)
	}
}

// RequireRole answers 403 for callers without the role, anonymous ones included, before
// the handler sees the payload.
func (g *Gate) RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("middleware", "require_role", "role", role)

			user, err := g.Auth.RequireRole(ctx, sessionToken(c), role)
			if err != nil {
				return respondError(l, "role_required", err, "")
			}

			c.Set(userKey, user)
			return next(c)
		}
	}
}
