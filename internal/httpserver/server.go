package httpserver

import (
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/feed_shop/internal/transport"
	"github.com/Skotchmaster/feed_shop/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/feed_shop/pkg/middleware/logging"
)

type Options struct {
	CSRF          bool
	SecureCookies bool
	// StaticDir, when set, is served as a single page app with index.html fallback.
	StaticDir string
}

// New builds the echo instance with the middleware chain and all routes registered.
func New(logger *slog.Logger, opts Options, d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = transport.NewValidator()

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	if opts.CSRF {
		cfg := csrf.DefaultConfig()
		cfg.Secure = opts.SecureCookies
		cfg.SkipPrefixes = []string{"/api/orders/verify", "/health"}
		e.Use(csrf.Middleware(cfg))
	}

	if opts.StaticDir != "" {
		e.Use(echomw.StaticWithConfig(echomw.StaticConfig{
			Root:  opts.StaticDir,
			HTML5: true,
			Skipper: func(c echo.Context) bool {
				p := c.Request().URL.Path
				return strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/health/")
			},
		}))
	}

	Register(e, d)
	return e
}
