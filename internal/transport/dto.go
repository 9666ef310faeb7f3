package transport

import (
	"github.com/shopspring/decimal"
)

type RegisterRequest struct {
	Username string  `json:"username" validate:"required,max=64"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	FullName *string `json:"fullName" validate:"omitempty,max=128"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Phone    *string `json:"phone"    validate:"omitempty,max=32"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CreateProductRequest struct {
	Name        string           `json:"name"        validate:"required,max=200"`
	Description string           `json:"description" validate:"required"`
	Price       *decimal.Decimal `json:"price"       validate:"required"`
	Discount    *int             `json:"discount"    validate:"omitempty,min=0,max=100"`
	ImageURL    string           `json:"imageUrl"    validate:"omitempty,max=512"`
	Category    *string          `json:"category"    validate:"omitempty,max=64"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name"        validate:"omitempty,max=200"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Discount    *int             `json:"discount"    validate:"omitempty,min=0,max=100"`
	ImageURL    *string          `json:"imageUrl"    validate:"omitempty,max=512"`
	Category    *string          `json:"category"    validate:"omitempty,max=64"`
}

type CreateOrderRequest struct {
	ProductID       uint    `json:"productId"       validate:"required,min=1"`
	Quantity        int     `json:"quantity"        validate:"required,min=1,max=10000"`
	ShippingAddress *string `json:"shippingAddress" validate:"omitempty,max=255"`
	City            *string `json:"city"            validate:"omitempty,max=100"`
	State           *string `json:"state"           validate:"omitempty,max=100"`
	ZipCode         *string `json:"zipCode"         validate:"omitempty,max=20"`
	Phone           *string `json:"phone"           validate:"omitempty,max=32"`
	PaymentMethod   string  `json:"paymentMethod"   validate:"omitempty,max=32"`
}

type CheckoutResult struct {
	OrderID         uint   `json:"orderId"`
	GatewayOrderRef string `json:"gatewayOrderRef"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Key             string `json:"key"`
}

type VerifyPaymentRequest struct {
	GatewayOrderRef   string `json:"gatewayOrderRef"   validate:"required"`
	GatewayPaymentRef string `json:"gatewayPaymentRef" validate:"required"`
	Signature         string `json:"signature"         validate:"required"`
}

type UpdateDeliveryRequest struct {
	DeliveryStatus    *string `json:"deliveryStatus"    validate:"omitempty,oneof=pending processing shipped delivered"`
	TrackingNumber    *string `json:"trackingNumber"    validate:"omitempty,max=64"`
	EstimatedDelivery *string `json:"estimatedDelivery" validate:"omitempty,datetime=2006-01-02"`
}

type ContactRequest struct {
	Name    string  `json:"name"    validate:"required,max=128"`
	Email   string  `json:"email"   validate:"required,email"`
	Phone   *string `json:"phone"   validate:"omitempty,max=32"`
	Message string  `json:"message" validate:"required,max=5000"`
}
