package handler

import (
	"errors"
	"net/http"

	"kartify/internal/service"

	"github.com/gin-gonic/gin"
)

// respondError maps a service failure onto an HTTP status and the uniform
// {success:false, message} body. Provider detail codes stay in the logs.
func respondError(c *gin.Context, err error) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		status := http.StatusInternalServerError
		switch svcErr.Kind {
		case service.KindValidation:
			status = http.StatusBadRequest
		case service.KindForbidden:
			status = http.StatusForbidden
		case service.KindNotFound:
			status = http.StatusNotFound
		case service.KindGateway:
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"success": false, "message": svcErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal error"})
}
