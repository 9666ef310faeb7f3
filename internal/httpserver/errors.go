package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/feed_shop/internal/service"
	"github.com/Skotchmaster/feed_shop/internal/transport"
)

// respondError maps a service error onto the HTTP error taxonomy and logs it. Only 4xx
// responses carry a specific message.
func respondError(l *slog.Logger, event string, err error, notFoundMsg string) error {
	var ve *service.ValidationError
	var fe *transport.FieldError

	switch {
	case errors.As(err, &ve):
		l.Warn(event, "status", 400, "reason", ve.Message, "field", ve.Field)
		return validationError(ve.Field, ve.Message)
	case errors.As(err, &fe):
		l.Warn(event, "status", 400, "reason", fe.Message, "field", fe.Field)
		return validationError(fe.Field, fe.Message)
	case errors.Is(err, service.ErrInvalidCredentials):
		l.Warn(event, "status", 401, "reason", "invalid credentials")
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, service.ErrUnauthorized):
		l.Warn(event, "status", 401, "reason", "not authenticated")
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	case errors.Is(err, service.ErrForbidden):
		l.Warn(event, "status", 403, "reason", "forbidden")
		return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
	case errors.Is(err, service.ErrNotFound):
		if notFoundMsg == "" {
			notFoundMsg = "Not found"
		}
		l.Warn(event, "status", 404, "reason", notFoundMsg, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, notFoundMsg)
	case errors.Is(err, service.ErrUpstream):
		l.Error(event, "status", 502, "reason", "payment gateway failure", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "Payment initialization failed")
	case errors.Is(err, service.ErrValidation):
		l.Warn(event, "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	default:
		l.Error(event, "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}
}

func validationError(field, msg string) error {
	body := echo.Map{"message": msg}
	if field != "" {
		body["field"] = field
	}
	return echo.NewHTTPError(http.StatusBadRequest, body)
}

// bindAndValidate decodes the JSON body into req and runs the struct validator.
func bindAndValidate(c echo.Context, l *slog.Logger, event string, req any) error {
	if err := c.Bind(req); err != nil {
		l.Warn(event, "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return respondError(l, event, err, "")
	}
	return nil
}

func parseID(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
