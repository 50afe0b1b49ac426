package ws

import (
	"encoding/json"
	"sync"
)

// Client is one WebSocket connection with user context.
type Client struct {
	UserID uint
	Send   chan []byte
	hub    *PaymentHub
	mu     sync.Mutex
	closed bool
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
	if c.hub != nil {
		c.hub.unregister(c)
	}
}

// PaymentHub tracks connected clients by user id and pushes payment status
// events to them. One user can hold multiple connections.
type PaymentHub struct {
	mu     sync.RWMutex
	byUser map[uint]map[*Client]struct{}
}

func NewPaymentHub() *PaymentHub {
	return &PaymentHub{byUser: make(map[uint]map[*Client]struct{})}
}

func (h *PaymentHub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.hub = h
	if h.byUser[c.UserID] == nil {
		h.byUser[c.UserID] = make(map[*Client]struct{})
	}
	h.byUser[c.UserID][c] = struct{}{}
}

func (h *PaymentHub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m := h.byUser[c.UserID]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.byUser, c.UserID)
		}
	}
}

type paymentEvent struct {
	Type                  string `json:"type"`
	MerchantTransactionID string `json:"merchant_transaction_id"`
	Status                string `json:"status"`
}

// NotifyPaymentStatus pushes a terminal payment state to every connection the
// paying user holds. Slow consumers are skipped, never blocked on.
func (h *PaymentHub) NotifyPaymentStatus(userID uint, merchantTransactionID, status string) {
	data, _ := json.Marshal(paymentEvent{
		Type:                  "payment_status",
		MerchantTransactionID: merchantTransactionID,
		Status:                status,
	})
	h.mu.RLock()
	m := h.byUser[userID]
	clients := make([]*Client, 0, len(m))
	for c := range m {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		c.trySend(data)
	}
}

func (c *Client) trySend(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

func (h *PaymentHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, m := range h.byUser {
		n += len(m)
	}
	return n
}
