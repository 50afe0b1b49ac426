package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment tracks one payment attempt against the gateway. The unique index on
// MerchantTransactionID is the correctness backstop for id generation: a
// duplicate id fails the insert instead of silently sharing a row.
type Payment struct {
	ID                    uint   `gorm:"primaryKey" json:"id"`
	MerchantTransactionID string `gorm:"uniqueIndex;size:64;not null" json:"merchant_transaction_id"`
	UserID                uint   `gorm:"not null;index" json:"user_id"`
	OrderID               *uint  `gorm:"index" json:"order_id,omitempty"`

	Amount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"` // major units

	// Assigned by PhonePe once it accepts the attempt; required for refunds.
	ProviderTransactionID string `gorm:"size:128;index" json:"provider_transaction_id,omitempty"`

	Status          string `gorm:"size:20;not null;index" json:"status"` // PENDING, SUCCESS, FAILED, CANCELLED
	ResponseCode    string `gorm:"size:64" json:"response_code,omitempty"`
	ResponseMessage string `gorm:"size:255" json:"response_message,omitempty"`

	Instrument string `gorm:"type:text" json:"-"` // provider payment-instrument JSON as received
	Metadata   string `gorm:"type:text" json:"-"` // JSON; refund bookkeeping

	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}
