package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/feed_shop/internal/service"
	"github.com/Skotchmaster/feed_shop/internal/transport"
	"github.com/Skotchmaster/feed_shop/pkg/logging"
)

type ContactHTTP struct {
	Svc *service.ContactService
}

func (h *ContactHTTP) Submit(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "contact.submit")

	var req transport.ContactRequest
	if err := bindAndValidate(c, l, "contact_error", &req); err != nil {
		return err
	}

	msg, err := h.Svc.Submit(ctx, req)
	if err != nil {
		return respondError(l, "contact_error", err, "")
	}
	return c.JSON(http.StatusCreated, msg)
}

func (h *ContactHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "contact.list")

	msgs, err := h.Svc.List(ctx)
	if err != nil {
		return respondError(l, "contact_list_error", err, "")
	}
	return c.JSON(http.StatusOK, msgs)
}
