package handler

import (
	"net/http"
	"strconv"

	"kartify/internal/middleware"
	"kartify/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	payments *service.PaymentService
}

func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// CreateOrder handles POST /api/payments/create-order.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var in service.CreateOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	result, err := h.payments.CreateOrder(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// CheckStatus handles GET /api/payments/status/:merchantTransactionId.
func (h *PaymentHandler) CheckStatus(c *gin.Context) {
	userID := middleware.GetUserID(c)
	mtid := c.Param("merchantTransactionId")
	result, err := h.payments.CheckStatus(c.Request.Context(), mtid, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// ListOrders handles GET /api/payments/orders.
func (h *PaymentHandler) ListOrders(c *gin.Context) {
	userID := middleware.GetUserID(c)
	orders, err := h.payments.ListOrders(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": orders})
}

// GetOrder handles GET /api/payments/orders/:orderId.
func (h *PaymentHandler) GetOrder(c *gin.Context) {
	userID := middleware.GetUserID(c)
	orderID, err := parseID(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid order id"})
		return
	}
	order, err := h.payments.GetOrder(orderID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": order})
}

// DeleteOrder handles DELETE /api/payments/orders/:orderId.
func (h *PaymentHandler) DeleteOrder(c *gin.Context) {
	userID := middleware.GetUserID(c)
	orderID, err := parseID(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid order id"})
		return
	}
	if err := h.payments.DeleteOrder(orderID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "order deleted"})
}

// Refund handles POST /api/payments/refund/:orderId.
func (h *PaymentHandler) Refund(c *gin.Context) {
	userID := middleware.GetUserID(c)
	orderID, err := parseID(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid order id"})
		return
	}
	result, err := h.payments.InitiateRefund(c.Request.Context(), orderID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	return uint(id), err
}
