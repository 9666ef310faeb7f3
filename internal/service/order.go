package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/feed_shop/internal/events"
	"github.com/Skotchmaster/feed_shop/internal/models"
	"github.com/Skotchmaster/feed_shop/internal/payment"
	"github.com/Skotchmaster/feed_shop/internal/repo"
	"github.com/Skotchmaster/feed_shop/internal/transport"
	"github.com/Skotchmaster/feed_shop/pkg/logging"
)

const (
	DefaultCurrency       = "INR"
	DefaultGatewayTimeout = 10 * time.Second
	deliveryLeadDays      = 6
)

type OrderService struct {
	Repo           *repo.GormRepo
	Gateway        payment.Gateway
	Events         events.Publisher
	Currency       string
	GatewayTimeout time.Duration
	Now            func() time.Time
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *OrderService) currency() string {
	if s.Currency == "" {
		return DefaultCurrency
	}
	return s.Currency
}

func (s *OrderService) gatewayTimeout() time.Duration {
	if s.GatewayTimeout <= 0 {
		return DefaultGatewayTimeout
	}
	return s.GatewayTimeout
}

func (s *OrderService) keyID() string {
	if s.Gateway == nil {
		return payment.MockKeyID
	}
	return s.Gateway.KeyID()
}

// CreateOrder prices a single-product purchase and persists it with its line item. For
// gateway payments the gateway transaction is opened first, so a gateway failure leaves
// nothing behind. The product discount is not applied: checkout charges the list price.
func (s *OrderService) CreateOrder(ctx context.Context, user *models.User, req transport.CreateOrderRequest) (*transport.CheckoutResult, error) {
	l := logging.FromContext(ctx).With("svc", "order.create", "user_id", user.ID)

	if req.Quantity < 1 {
		return nil, invalid("quantity", "quantity must be at least 1")
	}

	product, err := s.Repo.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, req.ProductID)
		}
		return nil, err
	}

	amount := product.Price.Mul(req.Quantity)
	if amount.Overflows() {
		l.Warn("order_create_error", "status", 400, "reason", "order total too large", "amount", amount.String())
		return nil, invalid("quantity", "Order total must not exceed "+models.MaxMoney.String())
	}
	minor := amount.MinorUnits()
	currency := s.currency()

	order := &models.Order{
		UserID:          user.ID,
		TotalAmount:     amount,
		ShippingAddress: req.ShippingAddress,
		City:            req.City,
		State:           req.State,
		ZipCode:         req.ZipCode,
		Phone:           req.Phone,
		DeliveryStatus:  models.DeliveryPending,
		Items: []models.OrderItem{{
			ProductID: product.ID,
			Quantity:  req.Quantity,
			Price:     product.Price,
		}},
	}
	eta := s.now().AddDate(0, 0, deliveryLeadDays).Format(time.DateOnly)
	order.EstimatedDelivery = &eta

	if strings.EqualFold(req.PaymentMethod, models.PaymentMethodCOD) {
		order.PaymentMethod = models.PaymentMethodCOD
		order.GatewayOrderRef = "cod_" + uuid.NewString()
		order.PaymentStatus = models.PaymentStatusPaid
		order.Status = models.OrderStatusConfirmed
	} else {
		if s.Gateway == nil {
			return nil, errors.New("payment gateway is not configured")
		}
		gctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout())
		tx, err := s.Gateway.CreateTransaction(gctx, minor, currency, "rcpt_"+strings.ReplaceAll(uuid.NewString(), "-", ""))
		cancel()
		if err != nil {
			l.Error("gateway_error", "status", 502, "reason", "cannot open gateway transaction", "error", err)
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		order.PaymentMethod = models.PaymentMethodGateway
		order.GatewayOrderRef = tx.Ref
		order.PaymentStatus = models.PaymentStatusPending
		order.Status = models.OrderStatusPending
	}

	if err := s.Repo.CreateOrder(ctx, order); err != nil {
		l.Error("order_create_error", "status", 500, "reason", "cannot persist order", "error", err)
		return nil, err
	}

	events.Emit(ctx, s.Events, events.TopicOrder, orderKey(order.ID), "order_created", map[string]any{
		"orderID":       order.ID,
		"userID":        user.ID,
		"productID":     product.ID,
		"quantity":      req.Quantity,
		"totalAmount":   order.TotalAmount.String(),
		"paymentMethod": order.PaymentMethod,
	})
	l.Info("order_created", "order_id", order.ID, "payment_method", order.PaymentMethod)

	return &transport.CheckoutResult{
		OrderID:         order.ID,
		GatewayOrderRef: order.GatewayOrderRef,
		Amount:          minor,
		Currency:        currency,
		Key:             s.keyID(),
	}, nil
}

// VerifyPayment checks the callback signature before touching any order, then marks the
// referenced order paid. Verifying an already paid order succeeds without changes.
func (s *OrderService) VerifyPayment(ctx context.Context, req transport.VerifyPaymentRequest) error {
	l := logging.FromContext(ctx).With("svc", "order.verify", "gateway_order_ref", req.GatewayOrderRef)

	cb := payment.Callback{OrderRef: req.GatewayOrderRef, PaymentRef: req.GatewayPaymentRef, Signature: req.Signature}
	if s.Gateway == nil || !s.Gateway.VerifyCallback(cb) {
		l.Warn("verify_failed", "status", 400, "reason", "signature mismatch")
		return invalid("signature", "Invalid payment signature")
	}

	order, err := s.Repo.GetOrderByGatewayRef(ctx, req.GatewayOrderRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: order ref %s", ErrNotFound, req.GatewayOrderRef)
		}
		return err
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		return nil
	}

	if err := s.Repo.UpdateOrder(ctx, order.ID, map[string]any{
		"payment_status":      models.PaymentStatusPaid,
		"status":              models.OrderStatusConfirmed,
		"gateway_payment_ref": req.GatewayPaymentRef,
	}); err != nil {
		return err
	}

	events.Emit(ctx, s.Events, events.TopicOrder, orderKey(order.ID), "payment_confirmed", map[string]any{
		"orderID":    order.ID,
		"paymentRef": req.GatewayPaymentRef,
	})
	l.Info("payment_confirmed", "order_id", order.ID)
	return nil
}

func (s *OrderService) ListOrdersForUser(ctx context.Context, user *models.User) ([]models.Order, error) {
	return s.Repo.ListOrdersByUser(ctx, user.ID)
}

// GetOrder hides orders owned by someone else behind ErrNotFound.
func (s *OrderService) GetOrder(ctx context.Context, user *models.User, id uint) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
		}
		return nil, err
	}
	if order.UserID != user.ID {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
	}
	return order, nil
}

func (s *OrderService) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.Repo.ListOrders(ctx)
}

// UpdateDelivery applies the supplied delivery fields. Any status in the enumerated set
// may follow any other.
func (s *OrderService) UpdateDelivery(ctx context.Context, id uint, req transport.UpdateDeliveryRequest) (*models.Order, error) {
	fields := map[string]any{}
	if req.DeliveryStatus != nil {
		switch *req.DeliveryStatus {
		case models.DeliveryPending, models.DeliveryProcessing, models.DeliveryShipped, models.DeliveryDelivered:
			fields["delivery_status"] = *req.DeliveryStatus
		default:
			return nil, invalid("deliveryStatus", "unknown delivery status")
		}
	}
	if req.TrackingNumber != nil {
		fields["tracking_number"] = *req.TrackingNumber
	}
	if req.EstimatedDelivery != nil {
		if _, err := time.Parse(time.DateOnly, *req.EstimatedDelivery); err != nil {
			return nil, invalid("estimatedDelivery", "estimatedDelivery must be a date in YYYY-MM-DD format")
		}
		fields["estimated_delivery"] = *req.EstimatedDelivery
	}

	if len(fields) > 0 {
		if err := s.Repo.UpdateOrder(ctx, id, fields); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
			}
			return nil, err
		}
	}

	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
		}
		return nil, err
	}

	if len(fields) > 0 {
		events.Emit(ctx, s.Events, events.TopicOrder, orderKey(order.ID), "delivery_updated", map[string]any{
			"orderID":        order.ID,
			"deliveryStatus": order.DeliveryStatus,
		})
	}
	return order, nil
}

func orderKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
