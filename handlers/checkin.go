package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"museum-backend/models"
	"museum-backend/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CheckinHandler struct {
	svc    service.CheckinService
	logger *zap.Logger
}

func NewCheckinHandler(svc service.CheckinService, logger *zap.Logger) *CheckinHandler {
	return &CheckinHandler{
		svc:    svc,
		logger: logger,
	}
}

// CheckInByURL serves the link printed on older booking confirmations.
func (h *CheckinHandler) CheckInByURL(c *gin.Context) {
	result, err := h.svc.CheckInByURL(c, c.Param("id"))
	h.respond(c, result, err, false)
}

func (h *CheckinHandler) CheckInPrimaryQR(c *gin.Context) {
	var req models.QRScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.svc.CheckInPrimaryQR(c, req.QRData)
	h.respond(c, result, err, false)
}

func (h *CheckinHandler) CheckInAdditionalVisitor(c *gin.Context) {
	token := c.Param("token")

	var req models.AdditionalVisitorCheckinRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	if !qrMatchesToken(req.QRCodeData, token) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "QR code does not match this visitor"})
		return
	}

	result, err := h.svc.CheckInAdditional(c, token)
	h.respond(c, result, err, false)
}

// qrMatchesToken reports whether the scanned QR data, when sent and
// readable, names the same token as the URL.
func qrMatchesToken(qrData, token string) bool {
	if strings.TrimSpace(qrData) == "" {
		return true
	}
	var payload struct {
		TokenID models.FlexString `json:"tokenId"`
	}
	if err := json.Unmarshal([]byte(qrData), &payload); err != nil || payload.TokenID == "" {
		return true
	}
	return string(payload.TokenID) == token
}

func (h *CheckinHandler) CheckInGroupLeader(c *gin.Context) {
	result, err := h.svc.CheckInGroupLeader(c, c.Param("id"))
	h.respond(c, result, err, false)
}

func (h *CheckinHandler) CheckInGroupMember(c *gin.Context) {
	result, err := h.svc.CheckInGroupMember(c, c.Param("token"))
	h.respond(c, result, err, false)
}

func (h *CheckinHandler) CheckInWalkin(c *gin.Context) {
	result, err := h.svc.CheckInWalkin(c, c.Param("id"))
	h.respond(c, result, err, false)
}

func (h *CheckinHandler) ValidateBackupCode(c *gin.Context) {
	var req models.BackupCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.svc.CheckInBackupCode(c, req.Code)
	h.respond(c, result, err, false)
}

func (h *CheckinHandler) CheckInEventParticipant(c *gin.Context) {
	var req models.EventCheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.svc.CheckInRegistration(c, req)
	h.respond(c, result, err, true)
}

func (h *CheckinHandler) GetRegistration(c *gin.Context) {
	reg, err := h.svc.GetRegistration(c, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.CheckinResponse{Success: true, Participant: reg.AsVisitor()})
}

func (h *CheckinHandler) GetAdditionalVisitor(c *gin.Context) {
	h.lookupByToken(c, models.VisitorTypeAdditional)
}

func (h *CheckinHandler) GetGroupMember(c *gin.Context) {
	h.lookupByToken(c, models.VisitorTypeGroupMember)
}

func (h *CheckinHandler) lookupByToken(c *gin.Context, visitorType models.VisitorType) {
	v, err := h.svc.GetVisitorByToken(c, c.Param("token"), visitorType)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.CheckinResponse{Success: true, Visitor: v})
}

// respond writes the shared check-in envelope. Event endpoints carry the
// person under "participant", every other endpoint under "visitor".
func (h *CheckinHandler) respond(c *gin.Context, result *service.CheckinResult, err error, participant bool) {
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := models.CheckinResponse{Status: result.Status}
	var code int

	switch result.Status {
	case models.CheckinStatusCheckedIn:
		code = http.StatusOK
		resp.Success = true
		resp.Message = "Checked in successfully"
	case models.CheckinStatusAlreadyCheckedIn:
		code = http.StatusConflict
		resp.AlreadyCheckedIn = true
		resp.Error = "Visitor has already checked in"
	case models.CheckinStatusCancelled:
		code = http.StatusBadRequest
		resp.Error = "This booking has been cancelled"
		if participant {
			resp.Error = "This event has been cancelled"
		}
	case models.CheckinStatusPending:
		code = http.StatusBadRequest
		resp.Error = "Registration is awaiting approval"
	case models.CheckinStatusRejected:
		code = http.StatusBadRequest
		resp.Error = "Registration was not approved"
	case models.CheckinStatusIncomplete, models.CheckinStatusFormIncomplete:
		code = http.StatusUnprocessableEntity
		resp.Error = "Visitor details are incomplete"
		resp.MissingFields = result.MissingFields
		if result.Visitor != nil {
			resp.Email = result.Visitor.Email
		}
		// The profile itself is withheld until it is complete.
		c.JSON(code, resp)
		return
	default:
		h.logger.Error("unexpected check-in status", zap.String("status", result.Status))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
		return
	}

	if participant {
		resp.Participant = result.Visitor
	} else {
		resp.Visitor = result.Visitor
	}
	c.JSON(code, resp)
}
