package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"kartify/internal/domain"
	"kartify/internal/models"
	"kartify/pkg/checksum"
	"kartify/pkg/gateway"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStore and PaymentStore are implemented by the GORM repositories;
// tests substitute in-memory fakes.
type OrderStore interface {
	Create(*models.Order) error
	GetByID(uint) (*models.Order, error)
	ListByUser(uint) ([]models.Order, error)
	Update(*models.Order) error
	Delete(uint) error
}

type PaymentStore interface {
	Create(*models.Payment) error
	GetByID(uint) (*models.Payment, error)
	GetByMerchantTransactionID(string) (*models.Payment, error)
	Update(*models.Payment) error
	UpdateWithOrder(*models.Payment, *models.Order) error
}

// Notifier pushes terminal payment states to connected clients. May be nil.
type Notifier interface {
	NotifyPaymentStatus(userID uint, merchantTransactionID, status string)
}

// PaymentService drives one purchase through
// CREATED -> gateway initiate -> awaiting callback/poll -> PAID|FAILED -> optional REFUNDED.
type PaymentService struct {
	orders   OrderStore
	payments PaymentStore
	gw       gateway.Client
	notifier Notifier
}

func NewPaymentService(orders OrderStore, payments PaymentStore, gw gateway.Client, notifier Notifier) *PaymentService {
	return &PaymentService{orders: orders, payments: payments, gw: gw, notifier: notifier}
}

type OrderItemInput struct {
	ProductID uint            `json:"product_id" binding:"required"`
	Name      string          `json:"name" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
}

type CreateOrderInput struct {
	Items           []OrderItemInput       `json:"items" binding:"required"`
	ShippingAddress models.ShippingAddress `json:"shipping_address" binding:"required"`
	Discount        decimal.Decimal        `json:"discount"`
	ShippingCharge  decimal.Decimal        `json:"shipping_charge"`
	Tax             decimal.Decimal        `json:"tax"`
	CouponCode      string                 `json:"coupon_code"`
	Notes           string                 `json:"notes"`
}

type CreateOrderResult struct {
	OrderID               uint   `json:"orderId"`
	OrderNumber           string `json:"orderNumber"`
	PaymentURL            string `json:"paymentUrl"`
	MerchantTransactionID string `json:"merchantTransactionId"`
}

// minOrderAmount is one currency unit, the provider's floor.
var minOrderAmount = decimal.NewFromInt(1)

// CreateOrder validates the payload, persists Order + Payment and asks the
// gateway for a checkout redirect. A gateway rejection is compensated by
// cancelling the order and failing the payment, never retried here.
func (s *PaymentService) CreateOrder(ctx context.Context, userID uint, in CreateOrderInput) (*CreateOrderResult, error) {
	if len(in.Items) == 0 {
		return nil, validationErr("order must contain at least one item")
	}
	for _, item := range in.Items {
		if item.Quantity < 1 {
			return nil, validationErr(fmt.Sprintf("invalid quantity for product %d", item.ProductID))
		}
	}
	if in.ShippingAddress.Name == "" || in.ShippingAddress.Line1 == "" || in.ShippingAddress.City == "" || in.ShippingAddress.PostalCode == "" {
		return nil, validationErr("shipping address is incomplete")
	}

	subtotal := decimal.Zero
	for _, item := range in.Items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	total := subtotal.Sub(in.Discount).Add(in.ShippingCharge).Add(in.Tax)
	if total.LessThan(minOrderAmount) {
		return nil, validationErr("order total must be at least 1")
	}

	order := &models.Order{
		OrderNumber:     fmt.Sprintf("ORD-%d", time.Now().UnixNano()),
		UserID:          userID,
		Subtotal:        subtotal,
		Discount:        in.Discount,
		ShippingCharge:  in.ShippingCharge,
		Tax:             in.Tax,
		TotalAmount:     total,
		ShippingAddress: in.ShippingAddress,
		CouponCode:      in.CouponCode,
		Notes:           in.Notes,
		PaymentStatus:   domain.OrderPaymentPending,
		OrderStatus:     domain.OrderCreated,
	}
	for _, item := range in.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	if err := s.orders.Create(order); err != nil {
		return nil, internalErr("order create failed")
	}

	mtid := checksum.TransactionID("MT")
	payment := &models.Payment{
		MerchantTransactionID: mtid,
		UserID:                userID,
		OrderID:               &order.ID,
		Amount:                total,
		Status:                domain.PaymentPending,
	}
	if err := s.payments.Create(payment); err != nil {
		return nil, internalErr("payment create failed")
	}

	resp := s.gw.InitiatePayment(ctx, gateway.InitiateRequest{
		MerchantTransactionID: mtid,
		UserID:                userID,
		Amount:                total,
	})
	if !resp.Success {
		// compensating action, not a retry
		log.Printf("[PAYMENT] initiate failed mtid=%s code=%s: %s", mtid, resp.Code, resp.Message)
		order.OrderStatus = domain.OrderCancelled
		payment.Status = domain.PaymentFailed
		payment.ResponseCode = resp.Code
		payment.ResponseMessage = resp.Message
		if err := s.payments.UpdateWithOrder(payment, order); err != nil {
			log.Printf("[PAYMENT] compensation write failed mtid=%s: %v", mtid, err)
		}
		return nil, gatewayErr(resp.Code, "payment initiation failed")
	}

	log.Printf("[PAYMENT] initiated order=%s mtid=%s total=%s", order.OrderNumber, mtid, total.StringFixed(2))
	return &CreateOrderResult{
		OrderID:               order.ID,
		OrderNumber:           order.OrderNumber,
		PaymentURL:            resp.RedirectURL,
		MerchantTransactionID: mtid,
	}, nil
}

// HandleCallback processes the asynchronous provider notification. The
// X-VERIFY signature is the sole authentication boundary and is checked
// before the payload is decoded. Replays of a terminal payment are
// acknowledged without side effects.
func (s *PaymentService) HandleCallback(signature, base64Body string) (*models.Payment, error) {
	if base64Body == "" {
		return nil, validationErr("callback body is required")
	}
	if signature == "" {
		return nil, validationErr("X-VERIFY header is required")
	}
	if !s.gw.VerifyCallback(signature, base64Body) {
		log.Printf("[CALLBACK] signature mismatch")
		return nil, validationErr("invalid callback signature")
	}

	raw, err := base64.StdEncoding.DecodeString(base64Body)
	if err != nil {
		return nil, validationErr("callback body is not valid base64")
	}
	var body gateway.CallbackBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, validationErr("callback body is not valid JSON")
	}
	mtid := body.Data.MerchantTransactionID
	if mtid == "" {
		return nil, validationErr("callback carries no merchantTransactionId")
	}

	payment, err := s.payments.GetByMerchantTransactionID(mtid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("payment not found")
		}
		return nil, internalErr("payment lookup failed")
	}
	if isTerminal(payment.Status) {
		log.Printf("[CALLBACK] replay for mtid=%s in terminal state %s, ignoring", mtid, payment.Status)
		return payment, nil
	}

	status := mapProviderStatus(body.Code, body.Data.State)
	payment.Status = status
	payment.ResponseCode = body.Code
	payment.ResponseMessage = body.Message
	if body.Data.TransactionID != "" {
		payment.ProviderTransactionID = body.Data.TransactionID
	}
	if len(body.Data.PaymentInstrument) > 0 {
		payment.Instrument = string(body.Data.PaymentInstrument)
	}
	if status == domain.PaymentSuccess {
		now := time.Now()
		payment.CompletedAt = &now
	}

	if err := s.reconcile(payment); err != nil {
		return nil, internalErr("payment update failed")
	}
	log.Printf("[CALLBACK] mtid=%s code=%s state=%s -> %s", mtid, body.Code, body.Data.State, status)
	s.notifyTerminal(payment)
	return payment, nil
}

type StatusResult struct {
	Status        string          `json:"status"`
	TransactionID string          `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount"`
	OrderID       *uint           `json:"orderId"`
}

// CheckStatus polls the gateway for a payment owned by the caller and applies
// the same reconciliation as the callback path.
func (s *PaymentService) CheckStatus(ctx context.Context, merchantTransactionID string, userID uint) (*StatusResult, error) {
	payment, err := s.payments.GetByMerchantTransactionID(merchantTransactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("payment not found")
		}
		return nil, internalErr("payment lookup failed")
	}
	if payment.UserID != userID {
		return nil, forbiddenErr("payment does not belong to caller")
	}

	resp := s.gw.CheckStatus(ctx, merchantTransactionID)
	if !resp.Success && resp.Code == "INTERNAL_ERROR" {
		return nil, gatewayErr(resp.Code, "status check failed")
	}

	// SUCCESS and CANCELLED are final; a FAILED payment may still be
	// re-polled since the provider can settle late.
	if payment.Status != domain.PaymentSuccess && payment.Status != domain.PaymentCancelled {
		status := mapProviderStatus(resp.Code, resp.State)
		payment.Status = status
		payment.ResponseCode = resp.Code
		payment.ResponseMessage = resp.Message
		if resp.ProviderTransactionID != "" {
			payment.ProviderTransactionID = resp.ProviderTransactionID
		}
		if len(resp.Instrument) > 0 {
			payment.Instrument = string(resp.Instrument)
		}
		if status == domain.PaymentSuccess {
			now := time.Now()
			payment.CompletedAt = &now
		}
		if err := s.reconcile(payment); err != nil {
			return nil, internalErr("payment update failed")
		}
		s.notifyTerminal(payment)
	}

	return &StatusResult{
		Status:        payment.Status,
		TransactionID: payment.ProviderTransactionID,
		Amount:        payment.Amount,
		OrderID:       payment.OrderID,
	}, nil
}

type RefundResult struct {
	RefundTransactionID string `json:"refundTransactionId"`
	Status              string `json:"status"`
}

// refundMetadata is stored on the payment record for bookkeeping.
type refundMetadata struct {
	RefundTransactionID string `json:"refund_transaction_id"`
	ProviderCode        string `json:"provider_code"`
	RefundedAt          string `json:"refunded_at"`
}

// InitiateRefund refunds the full order total. A second attempt against an
// already refunded order fails before the gateway is contacted.
func (s *PaymentService) InitiateRefund(ctx context.Context, orderID, userID uint) (*RefundResult, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("order not found")
		}
		return nil, internalErr("order lookup failed")
	}
	if order.UserID != userID {
		return nil, forbiddenErr("order does not belong to caller")
	}
	if order.PaymentStatus == domain.OrderPaymentRefunded {
		return nil, validationErr("order already refunded")
	}
	if order.PaymentStatus != domain.OrderPaymentPaid {
		return nil, validationErr("order is not paid")
	}
	if order.PaymentID == nil {
		return nil, validationErr("order has no completed payment")
	}
	payment, err := s.payments.GetByID(*order.PaymentID)
	if err != nil {
		return nil, internalErr("payment lookup failed")
	}
	if payment.ProviderTransactionID == "" {
		return nil, validationErr("payment has no provider transaction id")
	}

	refundID := checksum.TransactionID("RF")
	resp := s.gw.InitiateRefund(ctx, gateway.RefundRequest{
		MerchantRefundID: refundID,
		TransactionID:    payment.ProviderTransactionID,
		Amount:           order.TotalAmount,
	})
	if !resp.Success {
		// nothing mutated; failure surfaced to caller
		log.Printf("[REFUND] gateway refused order=%d code=%s: %s", orderID, resp.Code, resp.Message)
		return nil, gatewayErr(resp.Code, "refund initiation failed")
	}

	meta, _ := json.Marshal(refundMetadata{
		RefundTransactionID: refundID,
		ProviderCode:        resp.Code,
		RefundedAt:          time.Now().UTC().Format(time.RFC3339),
	})
	payment.Status = domain.PaymentCancelled
	payment.Metadata = string(meta)
	order.PaymentStatus = domain.OrderPaymentRefunded
	order.OrderStatus = domain.OrderCancelled
	if err := s.payments.UpdateWithOrder(payment, order); err != nil {
		return nil, internalErr("refund bookkeeping failed")
	}
	log.Printf("[REFUND] order=%d refund_id=%s amount=%s", orderID, refundID, order.TotalAmount.StringFixed(2))
	s.notifyTerminal(payment)
	return &RefundResult{RefundTransactionID: refundID, Status: payment.Status}, nil
}

// DeleteOrder removes an order unless doing so would erase paid-order history.
func (s *PaymentService) DeleteOrder(orderID, userID uint) error {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundErr("order not found")
		}
		return internalErr("order lookup failed")
	}
	if order.UserID != userID {
		return forbiddenErr("order does not belong to caller")
	}
	if order.PaymentStatus == domain.OrderPaymentPaid && order.OrderStatus != domain.OrderCancelled {
		return validationErr("paid orders cannot be deleted")
	}
	if err := s.orders.Delete(orderID); err != nil {
		return internalErr("order delete failed")
	}
	return nil
}

func (s *PaymentService) GetOrder(orderID, userID uint) (*models.Order, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("order not found")
		}
		return nil, internalErr("order lookup failed")
	}
	if order.UserID != userID {
		return nil, forbiddenErr("order does not belong to caller")
	}
	return order, nil
}

func (s *PaymentService) ListOrders(userID uint) ([]models.Order, error) {
	orders, err := s.orders.ListByUser(userID)
	if err != nil {
		return nil, internalErr("order list failed")
	}
	return orders, nil
}

// reconcile persists the payment and mirrors its status onto the linked
// order. Both writes happen in one storage transaction.
func (s *PaymentService) reconcile(payment *models.Payment) error {
	if payment.OrderID == nil {
		return s.payments.Update(payment)
	}
	order, err := s.orders.GetByID(*payment.OrderID)
	if err != nil {
		return err
	}
	switch payment.Status {
	case domain.PaymentSuccess:
		if order.PaymentStatus != domain.OrderPaymentPaid {
			order.PaymentStatus = domain.OrderPaymentPaid
			order.OrderStatus = domain.OrderConfirmed
			order.PaymentID = &payment.ID
		}
	case domain.PaymentFailed:
		if order.PaymentStatus != domain.OrderPaymentPaid {
			order.PaymentStatus = domain.OrderPaymentFailed
			order.OrderStatus = domain.OrderCancelled
		}
	default:
		// PENDING: leave the order untouched
		return s.payments.Update(payment)
	}
	return s.payments.UpdateWithOrder(payment, order)
}

func (s *PaymentService) notifyTerminal(payment *models.Payment) {
	if s.notifier == nil || !isTerminal(payment.Status) {
		return
	}
	s.notifier.NotifyPaymentStatus(payment.UserID, payment.MerchantTransactionID, payment.Status)
}

// mapProviderStatus maps the provider's (code, state) pair to a local
// payment status. Anything not explicitly successful or pending is FAILED.
func mapProviderStatus(code, state string) string {
	switch {
	case code == domain.ProviderCodeSuccess || state == domain.ProviderStateCompleted:
		return domain.PaymentSuccess
	case code == domain.ProviderCodePending || state == domain.ProviderStatePending:
		return domain.PaymentPending
	default:
		return domain.PaymentFailed
	}
}

func isTerminal(status string) bool {
	return status == domain.PaymentSuccess || status == domain.PaymentFailed || status == domain.PaymentCancelled
}
