package handlers

import (
	"net/http"
	"strconv"

	"museum-backend/models"
	"museum-backend/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxPageSize = 100

type EventHandler struct {
	svc    service.EventService
	logger *zap.Logger
}

func NewEventHandler(svc service.EventService, logger *zap.Logger) *EventHandler {
	return &EventHandler{
		svc:    svc,
		logger: logger,
	}
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	event, err := h.svc.CreateEvent(c, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "event": event})
}

func (h *EventHandler) GetEvents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageSize {
		limit = 10
	}

	events, total, err := h.svc.ListEvents(c, models.EventFilter{
		Status: c.Query("status"),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"events":  events,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}

	event, err := h.svc.GetEvent(c, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "event": event})
}

func (h *EventHandler) UpdateEventStatus(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	event, err := h.svc.UpdateEventStatus(c, id, req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "event": event})
}

func (h *EventHandler) RegisterParticipant(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}

	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	reg, qrData, err := h.svc.Register(c, id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":         true,
		"registration_id": reg.ID,
		"status":          reg.Status,
		"qr_data":         qrData,
		"registration":    reg,
	})
}

func (h *EventHandler) GetCheckins(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}

	checkins, err := h.svc.ListCheckins(c, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "checkins": checkins, "total": len(checkins)})
}

func (h *EventHandler) UpdateRegistrationStatus(c *gin.Context) {
	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	reg, err := h.svc.UpdateRegistrationStatus(c, c.Param("id"), req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "registration": reg})
}

func eventID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid event ID"})
		return 0, false
	}
	return id, true
}
