// Package gateway wraps the PhonePe payment-gateway HTTP API: initiate,
// status poll, refund, and callback signature verification.
package gateway

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// InitiateRequest starts one payment attempt. Amount is in major units
// (rupees); conversion to paise happens at the wire boundary only.
type InitiateRequest struct {
	MerchantTransactionID string
	UserID                uint
	Amount                decimal.Decimal
}

// RefundRequest refunds a previously accepted payment. TransactionID is the
// provider-assigned id of the original payment, MerchantRefundID is a fresh
// merchant-side id for the refund attempt.
type RefundRequest struct {
	MerchantRefundID string
	TransactionID    string
	Amount           decimal.Decimal
}

// Response is the normalized outcome of any gateway call. Transport errors,
// non-2xx statuses and malformed bodies all come back as Success=false with
// Code INTERNAL_ERROR; callers never see a raw error from the wire.
type Response struct {
	Success               bool
	Code                  string
	Message               string
	RedirectURL           string          // initiate: where to send the shopper
	ProviderTransactionID string          // status/refund: provider-assigned id
	State                 string          // COMPLETED, PENDING, FAILED
	ResponseCode          string          // provider detail code
	Instrument            json.RawMessage // paymentInstrument as received
}

// CallbackBody is the decoded JSON carried base64-encoded in the provider's
// callback notification.
type CallbackBody struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Data    CallbackData `json:"data"`
}

type CallbackData struct {
	MerchantID            string          `json:"merchantId"`
	MerchantTransactionID string          `json:"merchantTransactionId"`
	TransactionID         string          `json:"transactionId"`
	Amount                int64           `json:"amount"` // paise
	State                 string          `json:"state"`
	ResponseCode          string          `json:"responseCode"`
	PaymentInstrument     json.RawMessage `json:"paymentInstrument"`
}

type Client interface {
	InitiatePayment(ctx context.Context, req InitiateRequest) Response
	CheckStatus(ctx context.Context, merchantTransactionID string) Response
	InitiateRefund(ctx context.Context, req RefundRequest) Response
	VerifyCallback(signature, base64Body string) bool
}

// ToMinorUnits converts a major-unit amount to paise, rounding half away
// from zero (1234.5 rupees -> 123450 paise).
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
