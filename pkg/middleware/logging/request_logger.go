package loggingmw

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/feed_shop/pkg/logging"
)

// RequestLogger puts a request-scoped logger into the request context and writes one
// access line per request. Errors are rendered here so the logged status is the final one.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()

			attrs := []any{
				"method", req.Method,
				"path", c.Path(),
				"url", req.URL.Path,
				"remote_ip", c.RealIP(),
			}
			rid := res.Header().Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = req.Header.Get(echo.HeaderXRequestID)
			}
			if rid != "" {
				attrs = append(attrs, "request_id", rid)
				res.Header().Set(echo.HeaderXRequestID, rid)
			}
			l := base.With(attrs...)
			ctx := logging.IntoContext(req.Context(), l)
			c.SetRequest(req.WithContext(ctx))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Echo().HTTPErrorHandler(err, c)
			}

			status := res.Status
			fields := []any{"status", status, "duration_ms", time.Since(start).Milliseconds()}
			switch level := levelFor(status); level {
			case slog.LevelError:
				if err != nil {
					fields = append(fields, "error", err.Error())
				}
				l.Log(ctx, level, "request completed", fields...)
			case slog.LevelInfo:
				l.Log(ctx, level, "request completed", append(fields, "bytes", res.Size)...)
			default:
				l.Log(ctx, level, "request completed", fields...)
			}
			return nil
		}
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	}
	return slog.LevelInfo
}
