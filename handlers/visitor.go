package handlers

import (
	"net/http"

	"museum-backend/models"
	"museum-backend/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type VisitorHandler struct {
	checkins service.CheckinService
	visitors service.VisitorService
	logger   *zap.Logger
}

func NewVisitorHandler(checkins service.CheckinService, visitors service.VisitorService, logger *zap.Logger) *VisitorHandler {
	return &VisitorHandler{
		checkins: checkins,
		visitors: visitors,
		logger:   logger,
	}
}

func (h *VisitorHandler) GetVisitor(c *gin.Context) {
	v, err := h.checkins.GetVisitor(c, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.CheckinResponse{Success: true, Visitor: v})
}

func (h *VisitorHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	v, err := h.visitors.UpdateProfile(c, c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"visitor":       v,
		"missingFields": v.MissingFields(),
	})
}
