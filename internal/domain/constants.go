package domain

const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// Payment.Status values for one payment attempt.
const (
	PaymentPending   = "PENDING"
	PaymentSuccess   = "SUCCESS"
	PaymentFailed    = "FAILED"
	PaymentCancelled = "CANCELLED"
)

// Order.PaymentStatus values mirrored from the linked payment.
const (
	OrderPaymentPending  = "PENDING"
	OrderPaymentPaid     = "PAID"
	OrderPaymentFailed   = "FAILED"
	OrderPaymentRefunded = "REFUNDED"
)

// Order.OrderStatus fulfilment states.
const (
	OrderCreated    = "CREATED"
	OrderConfirmed  = "CONFIRMED"
	OrderProcessing = "PROCESSING"
	OrderShipped    = "SHIPPED"
	OrderDelivered  = "DELIVERED"
	OrderCancelled  = "CANCELLED"
)

// Provider response codes and transaction states as PhonePe reports them.
const (
	ProviderCodeSuccess = "PAYMENT_SUCCESS"
	ProviderCodePending = "PAYMENT_PENDING"
	ProviderCodeError   = "PAYMENT_ERROR"

	ProviderStateCompleted = "COMPLETED"
	ProviderStatePending   = "PENDING"
	ProviderStateFailed    = "FAILED"
)
