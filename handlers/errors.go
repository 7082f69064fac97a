package handlers

import (
	"errors"
	"net/http"

	"museum-backend/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps service errors to HTTP statuses. Anything unexpected is
// logged and reported as a 500 without details.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, service.ErrVisitorNotFound):
		status, message = http.StatusNotFound, "Visitor not found"
	case errors.Is(err, service.ErrRegistrationNotFound):
		status, message = http.StatusNotFound, "Registration not found"
	case errors.Is(err, service.ErrEventNotFound):
		status, message = http.StatusNotFound, "Event not found"
	case errors.Is(err, service.ErrInvalidStatus), errors.Is(err, service.ErrInvalidQRData):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrEventNotOpen):
		status, message = http.StatusBadRequest, "Event is not open for registration"
	case errors.Is(err, service.ErrEventFull):
		status, message = http.StatusConflict, "Event is full"
	case errors.Is(err, service.ErrAlreadyRegistered):
		status, message = http.StatusConflict, "Already registered for this event"
	default:
		logger.Error("request failed",
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
		)
	}

	c.JSON(status, gin.H{"success": false, "error": message})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
}
