package handler

import (
	"net/http"

	"kartify/internal/service"

	"github.com/gin-gonic/gin"
)

// CallbackHandler receives the provider's asynchronous payment
// notifications. The route is unauthenticated; the X-VERIFY checksum is the
// trust boundary.
type CallbackHandler struct {
	payments *service.PaymentService
}

func NewCallbackHandler(payments *service.PaymentService) *CallbackHandler {
	return &CallbackHandler{payments: payments}
}

// Handle processes POST /api/payments/callback. Wire format: body
// {"response": "<base64>"}, header X-VERIFY: <sha256hex>###<saltIndex>.
func (h *CallbackHandler) Handle(c *gin.Context) {
	var body struct {
		Response string `json:"response"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid body"})
		return
	}
	signature := c.GetHeader("X-VERIFY")
	if _, err := h.payments.HandleCallback(signature, body.Response); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "callback processed"})
}
