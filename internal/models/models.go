package models

import (
	"time"
)

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"

	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"

	PaymentMethodCOD     = "cod"
	PaymentMethodGateway = "gateway"
)

const (
	DeliveryPending    = "pending"
	DeliveryProcessing = "processing"
	DeliveryShipped    = "shipped"
	DeliveryDelivered  = "delivered"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"size:16;not null"         json:"role"`
	FullName     *string   `json:"fullName"`
	Email        *string   `json:"email"`
	Phone        *string   `json:"phone"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"   json:"id"`
	Name        string    `gorm:"not null"                   json:"name"`
	Description string    `gorm:"not null"                   json:"description"`
	Price       Money     `gorm:"type:decimal(10,2);not null" json:"price"`
	Discount    int       `gorm:"not null"                   json:"discount"`
	ImageURL    string    `gorm:"not null"                   json:"imageUrl"`
	Category    *string   `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Order struct {
	ID                uint        `gorm:"primaryKey;autoIncrement"    json:"id"`
	UserID            uint        `gorm:"index;not null"              json:"userId"`
	TotalAmount       Money       `gorm:"type:decimal(10,2);not null" json:"totalAmount"`
	Status            string      `gorm:"size:16;not null"            json:"status"`
	PaymentMethod     string      `gorm:"size:16;not null"            json:"paymentMethod"`
	GatewayOrderRef   string      `gorm:"uniqueIndex;not null"        json:"gatewayOrderRef"`
	GatewayPaymentRef *string     `json:"gatewayPaymentRef"`
	PaymentStatus     string      `gorm:"size:16;not null"            json:"paymentStatus"`
	ShippingAddress   *string     `json:"shippingAddress"`
	City              *string     `json:"city"`
	State             *string     `json:"state"`
	ZipCode           *string     `json:"zipCode"`
	Phone             *string     `json:"phone"`
	DeliveryStatus    string      `gorm:"size:16;not null"            json:"deliveryStatus"`
	EstimatedDelivery *string     `gorm:"size:10"                     json:"estimatedDelivery"`
	TrackingNumber    *string     `json:"trackingNumber"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
	Items             []OrderItem `gorm:"foreignKey:OrderID"          json:"items,omitempty"`
}

// OrderItem keeps the product id and unit price as they were at checkout. There is no
// foreign key to products, so items outlive a deleted product.
type OrderItem struct {
	ID        uint  `gorm:"primaryKey;autoIncrement"    json:"id"`
	OrderID   uint  `gorm:"index;not null"              json:"orderId"`
	ProductID uint  `gorm:"not null"                    json:"productId"`
	Quantity  int   `gorm:"not null"                    json:"quantity"`
	Price     Money `gorm:"type:decimal(10,2);not null" json:"price"`
}

type ContactMessage struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"not null"                 json:"name"`
	Email     string    `gorm:"not null"                 json:"email"`
	Phone     *string   `json:"phone"`
	Message   string    `gorm:"type:text;not null"       json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
