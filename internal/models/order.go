package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ShippingAddress is embedded into Order; one order keeps the address it was
// placed with even if the user later edits their address book.
type ShippingAddress struct {
	Name       string `gorm:"size:128" json:"name"`
	Phone      string `gorm:"size:20" json:"phone"`
	Line1      string `gorm:"size:255" json:"line1"`
	Line2      string `gorm:"size:255" json:"line2"`
	City       string `gorm:"size:64" json:"city"`
	State      string `gorm:"size:64" json:"state"`
	PostalCode string `gorm:"size:16" json:"postal_code"`
	Country    string `gorm:"size:64" json:"country"`
}

type Order struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderNumber string `gorm:"uniqueIndex;size:32;not null" json:"order_number"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"`

	Subtotal       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Discount       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discount"`
	ShippingCharge decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"shipping_charge"`
	Tax            decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"tax"`
	// TotalAmount is immutable once the order is created.
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`

	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:ship_" json:"shipping_address"`
	CouponCode      string          `gorm:"size:64" json:"coupon_code,omitempty"`
	Notes           string          `gorm:"size:512" json:"notes,omitempty"`

	PaymentStatus string `gorm:"size:20;not null;index" json:"payment_status"` // PENDING, PAID, FAILED, REFUNDED
	OrderStatus   string `gorm:"size:20;not null;index" json:"order_status"`   // CREATED, CONFIRMED, PROCESSING, SHIPPED, DELIVERED, CANCELLED

	// Set once the payment completes; weak reference for lookups only.
	PaymentID *uint    `gorm:"index" json:"payment_id,omitempty"`
	Payment   *Payment `gorm:"foreignKey:PaymentID" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	ProductID uint            `gorm:"not null" json:"product_id"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
