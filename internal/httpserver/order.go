package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/feed_shop/internal/service"
	"github.com/Skotchmaster/feed_shop/internal/transport"
	"github.com/Skotchmaster/feed_shop/pkg/logging"
)

const orderNotFound = "Order not found"

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	var req transport.CreateOrderRequest
	if err := bindAndValidate(c, l, "order_create_error", &req); err != nil {
		return err
	}

	res, err := h.Svc.CreateOrder(ctx, currentUser(c), req)
	if err != nil {
		return respondError(l, "order_create_error", err, productNotFound)
	}
	return c.JSON(http.StatusCreated, res)
}

// VerifyPayment is called without a session; the callback signature is the credential.
func (h *OrderHTTP) VerifyPayment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.verify")

	var req transport.VerifyPaymentRequest
	if err := bindAndValidate(c, l, "verify_error", &req); err != nil {
		return err
	}

	if err := h.Svc.VerifyPayment(ctx, req); err != nil {
		return respondError(l, "verify_error", err, orderNotFound)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	orders, err := h.Svc.ListOrdersForUser(ctx, currentUser(c))
	if err != nil {
		return respondError(l, "order_list_error", err, "")
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	id, ok := parseID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, orderNotFound)
	}

	order, err := h.Svc.GetOrder(ctx, currentUser(c), id)
	if err != nil {
		return respondError(l, "order_get_error", err, orderNotFound)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) UpdateDelivery(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_delivery")

	id, ok := parseID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, orderNotFound)
	}

	var req transport.UpdateDeliveryRequest
	if err := bindAndValidate(c, l, "delivery_update_error", &req); err != nil {
		return err
	}

	order, err := h.Svc.UpdateDelivery(ctx, id, req)
	if err != nil {
		return respondError(l, "delivery_update_error", err, orderNotFound)
	}

	l.Info("delivery_updated", "order_id", order.ID, "delivery_status", order.DeliveryStatus)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) ListAllOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_all")

	orders, err := h.Svc.ListAllOrders(ctx)
	if err != nil {
		return respondError(l, "order_list_all_error", err, "")
	}
	return c.JSON(http.StatusOK, orders)
}
