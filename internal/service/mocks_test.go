package service

import (
	"context"

	"kartify/internal/models"
	"kartify/pkg/checksum"
	"kartify/pkg/gateway"

	"gorm.io/gorm"
)

// MockOrderStore is an in-memory OrderStore.
type MockOrderStore struct {
	Orders map[uint]*models.Order
	nextID uint

	CreateErr error
	UpdateErr error
}

func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{Orders: make(map[uint]*models.Order), nextID: 1}
}

func (m *MockOrderStore) Create(o *models.Order) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	o.ID = m.nextID
	m.nextID++
	cp := *o
	m.Orders[o.ID] = &cp
	return nil
}

func (m *MockOrderStore) GetByID(id uint) (*models.Order, error) {
	o, ok := m.Orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *MockOrderStore) ListByUser(userID uint) ([]models.Order, error) {
	var out []models.Order
	for _, o := range m.Orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *MockOrderStore) Update(o *models.Order) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	cp := *o
	m.Orders[o.ID] = &cp
	return nil
}

func (m *MockOrderStore) Delete(id uint) error {
	delete(m.Orders, id)
	return nil
}

// MockPaymentStore is an in-memory PaymentStore. Dual writes through
// UpdateWithOrder land in the linked MockOrderStore, mirroring the GORM
// transaction.
type MockPaymentStore struct {
	Payments map[uint]*models.Payment
	ByMTID   map[string]uint
	OrderSt  *MockOrderStore
	nextID   uint

	DualWrites int
}

func NewMockPaymentStore(orders *MockOrderStore) *MockPaymentStore {
	return &MockPaymentStore{
		Payments: make(map[uint]*models.Payment),
		ByMTID:   make(map[string]uint),
		OrderSt:  orders,
		nextID:   1,
	}
}

func (m *MockPaymentStore) Create(p *models.Payment) error {
	p.ID = m.nextID
	m.nextID++
	cp := *p
	m.Payments[p.ID] = &cp
	m.ByMTID[p.MerchantTransactionID] = p.ID
	return nil
}

func (m *MockPaymentStore) GetByID(id uint) (*models.Payment, error) {
	p, ok := m.Payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPaymentStore) GetByMerchantTransactionID(mtid string) (*models.Payment, error) {
	id, ok := m.ByMTID[mtid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m.GetByID(id)
}

func (m *MockPaymentStore) Update(p *models.Payment) error {
	cp := *p
	m.Payments[p.ID] = &cp
	return nil
}

func (m *MockPaymentStore) UpdateWithOrder(p *models.Payment, o *models.Order) error {
	m.DualWrites++
	if err := m.Update(p); err != nil {
		return err
	}
	return m.OrderSt.Update(o)
}

// MockGateway returns scripted responses and counts calls. Callback
// verification uses the real checksum scheme with a fixed test salt.
type MockGateway struct {
	InitiateResp gateway.Response
	StatusResp   gateway.Response
	RefundResp   gateway.Response

	InitiateCalls int
	StatusCalls   int
	RefundCalls   int

	LastInitiate gateway.InitiateRequest
	LastRefund   gateway.RefundRequest
}

const (
	testSaltKey   = "salt-key"
	testSaltIndex = "1"
)

func NewMockGateway() *MockGateway {
	return &MockGateway{
		InitiateResp: gateway.Response{Success: true, Code: "PAYMENT_INITIATED", RedirectURL: "https://pay.example/checkout/abc"},
		StatusResp:   gateway.Response{Success: true, Code: "PAYMENT_SUCCESS", State: "COMPLETED", ProviderTransactionID: "T1000"},
		RefundResp:   gateway.Response{Success: true, Code: "PAYMENT_SUCCESS", State: "COMPLETED"},
	}
}

func (m *MockGateway) InitiatePayment(ctx context.Context, req gateway.InitiateRequest) gateway.Response {
	m.InitiateCalls++
	m.LastInitiate = req
	return m.InitiateResp
}

func (m *MockGateway) CheckStatus(ctx context.Context, mtid string) gateway.Response {
	m.StatusCalls++
	return m.StatusResp
}

func (m *MockGateway) InitiateRefund(ctx context.Context, req gateway.RefundRequest) gateway.Response {
	m.RefundCalls++
	m.LastRefund = req
	return m.RefundResp
}

func (m *MockGateway) VerifyCallback(signature, base64Body string) bool {
	return checksum.Verify(signature, base64Body, testSaltKey, testSaltIndex)
}

// MockNotifier records pushed payment events.
type MockNotifier struct {
	Events []string
}

func (m *MockNotifier) NotifyPaymentStatus(userID uint, mtid, status string) {
	m.Events = append(m.Events, status)
}
