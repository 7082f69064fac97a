package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"museum-backend/models"
	"museum-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, cs *mockCheckinService, es *mockEventService, vs *mockVisitorService, mw ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	if cs == nil {
		cs = &mockCheckinService{}
	}
	if es == nil {
		es = &mockEventService{}
	}
	if vs == nil {
		vs = &mockVisitorService{}
	}
	logger := zaptest.NewLogger(t)
	r := gin.New()
	RegisterRoutes(r,
		NewCheckinHandler(cs, logger),
		NewEventHandler(es, logger),
		NewVisitorHandler(cs, vs, logger),
		mw...,
	)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) models.CheckinResponse {
	t.Helper()
	var resp models.CheckinResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func walkinVisitor() *models.Visitor {
	return &models.Visitor{
		ID:          "w-1",
		VisitorType: models.VisitorTypeWalkin,
		FirstName:   "Ana",
		LastName:    "Reyes",
		Gender:      "female",
		Email:       "ana@example.com",
		Status:      models.VisitorStatusCheckedIn,
	}
}

func TestCheckInWalkin_StatusMapping(t *testing.T) {
	tests := []struct {
		name        string
		result      *service.CheckinResult
		err         error
		wantCode    int
		wantSuccess bool
		wantAlready bool
		wantVisitor bool
		wantError   string
	}{
		{
			name:        "checked_in",
			result:      &service.CheckinResult{Status: models.CheckinStatusCheckedIn, Visitor: walkinVisitor()},
			wantCode:    http.StatusOK,
			wantSuccess: true,
			wantVisitor: true,
		},
		{
			name:        "already_checked_in",
			result:      &service.CheckinResult{Status: models.CheckinStatusAlreadyCheckedIn, Visitor: walkinVisitor()},
			wantCode:    http.StatusConflict,
			wantAlready: true,
			wantVisitor: true,
			wantError:   "Visitor has already checked in",
		},
		{
			name:      "cancelled",
			result:    &service.CheckinResult{Status: models.CheckinStatusCancelled, Visitor: walkinVisitor()},
			wantCode:  http.StatusBadRequest,
			wantError: "This booking has been cancelled",
		},
		{
			name:      "not_found",
			err:       service.ErrVisitorNotFound,
			wantCode:  http.StatusNotFound,
			wantError: "Visitor not found",
		},
		{
			name:      "internal_error",
			err:       errors.New("failed to check in visitor: connection reset"),
			wantCode:  http.StatusInternalServerError,
			wantError: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID string
			cs := &mockCheckinService{checkInWalkinFunc: func(ctx context.Context, visitorID string) (*service.CheckinResult, error) {
				gotID = visitorID
				return tt.result, tt.err
			}}
			r := newTestRouter(t, cs, nil, nil)

			w := doJSON(t, r, http.MethodPost, "/api/walkin-visitors/w-1/checkin", nil)

			assert.Equal(t, "w-1", gotID)
			assert.Equal(t, tt.wantCode, w.Code)
			resp := decodeEnvelope(t, w)
			assert.Equal(t, tt.wantSuccess, resp.Success)
			assert.Equal(t, tt.wantAlready, resp.AlreadyCheckedIn)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Equal(t, tt.wantVisitor, resp.Visitor != nil)
			assert.Nil(t, resp.Participant)
			if tt.result != nil {
				assert.Equal(t, tt.result.Status, resp.Status)
			}
		})
	}
}

func TestCheckIn_IncompleteWithholdsVisitor(t *testing.T) {
	v := walkinVisitor()
	v.Gender = "unknown"
	cs := &mockCheckinService{checkInGroupMemberFunc: func(ctx context.Context, token string) (*service.CheckinResult, error) {
		assert.Equal(t, "abcde", token)
		return &service.CheckinResult{
			Status:        models.CheckinStatusIncomplete,
			Visitor:       v,
			MissingFields: []string{models.FieldGender},
		}, nil
	}}
	r := newTestRouter(t, cs, nil, nil)

	w := doJSON(t, r, http.MethodPost, "/api/group-walkin-members/abcde/checkin", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeEnvelope(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, models.CheckinStatusIncomplete, resp.Status)
	assert.Equal(t, []string{models.FieldGender}, resp.MissingFields)
	assert.Equal(t, "ana@example.com", resp.Email)
	assert.Nil(t, resp.Visitor)
}

func TestCheckInEventParticipant(t *testing.T) {
	reg := &models.EventRegistration{ID: "XYZ123", EventID: 7, FirstName: "Lee", LastName: "Park", CheckedIn: true}

	tests := []struct {
		name      string
		body      string
		status    string
		wantCode  int
		wantReq   models.EventCheckinRequest
		wantError string
	}{
		{
			name:     "qr_scan_with_numeric_event",
			body:     `{"registration_id":"XYZ123","event_id":7}`,
			status:   models.CheckinStatusCheckedIn,
			wantCode: http.StatusOK,
			wantReq:  models.EventCheckinRequest{RegistrationID: "XYZ123", EventID: "7"},
		},
		{
			name:     "manual",
			body:     `{"registration_id":"XYZ123","manual_checkin":true}`,
			status:   models.CheckinStatusCheckedIn,
			wantCode: http.StatusOK,
			wantReq:  models.EventCheckinRequest{RegistrationID: "XYZ123", ManualCheckin: true},
		},
		{
			name:      "pending",
			body:      `{"registration_id":"XYZ123"}`,
			status:    models.CheckinStatusPending,
			wantCode:  http.StatusBadRequest,
			wantReq:   models.EventCheckinRequest{RegistrationID: "XYZ123"},
			wantError: "Registration is awaiting approval",
		},
		{
			name:      "event_cancelled",
			body:      `{"registration_id":"XYZ123"}`,
			status:    models.CheckinStatusCancelled,
			wantCode:  http.StatusBadRequest,
			wantReq:   models.EventCheckinRequest{RegistrationID: "XYZ123"},
			wantError: "This event has been cancelled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotReq models.EventCheckinRequest
			cs := &mockCheckinService{checkInRegistrationFunc: func(ctx context.Context, req models.EventCheckinRequest) (*service.CheckinResult, error) {
				gotReq = req
				return &service.CheckinResult{Status: tt.status, Visitor: reg.AsVisitor()}, nil
			}}
			r := newTestRouter(t, cs, nil, nil)

			w := doJSON(t, r, http.MethodPost, "/api/event-registrations/checkin", tt.body)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantReq, gotReq)
			resp := decodeEnvelope(t, w)
			assert.Equal(t, tt.status, resp.Status)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Nil(t, resp.Visitor)
			if tt.wantCode == http.StatusOK {
				require.NotNil(t, resp.Participant)
				assert.Equal(t, "XYZ123", resp.Participant.ID)
			}
		})
	}
}

func TestCheckInEventParticipant_MissingRegistrationID(t *testing.T) {
	r := newTestRouter(t, nil, nil, nil)

	w := doJSON(t, r, http.MethodPost, "/api/event-registrations/checkin", `{"event_id":"7"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, decodeEnvelope(t, w).Success)
}

func TestCheckInAdditionalVisitor(t *testing.T) {
	tests := []struct {
		name     string
		body     any
		wantCode int
		wantCall bool
	}{
		{name: "no_body", body: nil, wantCode: http.StatusOK, wantCall: true},
		{name: "matching_qr", body: map[string]string{"qrCodeData": `{"type":"additional_visitor","tokenId":"tok-1"}`}, wantCode: http.StatusOK, wantCall: true},
		{name: "opaque_qr", body: map[string]string{"qrCodeData": "tok-1"}, wantCode: http.StatusOK, wantCall: true},
		{name: "other_token", body: map[string]string{"qrCodeData": `{"type":"additional_visitor","tokenId":"tok-2"}`}, wantCode: http.StatusBadRequest},
		{name: "malformed_body", body: `{`, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			cs := &mockCheckinService{checkInAdditionalFunc: func(ctx context.Context, token string) (*service.CheckinResult, error) {
				called = true
				assert.Equal(t, "tok-1", token)
				return &service.CheckinResult{Status: models.CheckinStatusCheckedIn, Visitor: walkinVisitor()}, nil
			}}
			r := newTestRouter(t, cs, nil, nil)

			w := doJSON(t, r, http.MethodPost, "/api/additional-visitors/tok-1/checkin", tt.body)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantCall, called)
		})
	}
}

func TestCheckInByURL(t *testing.T) {
	cs := &mockCheckinService{checkInByURLFunc: func(ctx context.Context, visitorID string) (*service.CheckinResult, error) {
		assert.Equal(t, "55", visitorID)
		return &service.CheckinResult{Status: models.CheckinStatusCancelled}, nil
	}}
	r := newTestRouter(t, cs, nil, nil)

	w := doJSON(t, r, http.MethodGet, "/api/visit/checkin/55", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, models.CheckinStatusCancelled, resp.Status)
}

func TestCheckInPrimaryQR(t *testing.T) {
	cs := &mockCheckinService{checkInPrimaryQRFunc: func(ctx context.Context, qrData string) (*service.CheckinResult, error) {
		if qrData == "garbage" {
			return nil, service.ErrInvalidQRData
		}
		return &service.CheckinResult{Status: models.CheckinStatusCheckedIn, Visitor: walkinVisitor()}, nil
	}}
	r := newTestRouter(t, cs, nil, nil)

	w := doJSON(t, r, http.MethodPost, "/api/slots/visit/qr-scan", map[string]string{"qrData": `{"visitorId":"p-1"}`})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/slots/visit/qr-scan", map[string]string{"qrData": "garbage"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.ErrInvalidQRData.Error(), decodeEnvelope(t, w).Error)

	w = doJSON(t, r, http.MethodPost, "/api/slots/visit/qr-scan", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidateBackupCode(t *testing.T) {
	cs := &mockCheckinService{checkInBackupCodeFunc: func(ctx context.Context, code string) (*service.CheckinResult, error) {
		assert.Equal(t, "ABC123", code)
		return &service.CheckinResult{Status: models.CheckinStatusCheckedIn, Visitor: walkinVisitor()}, nil
	}}
	r := newTestRouter(t, cs, nil, nil)

	w := doJSON(t, r, http.MethodPost, "/api/backup-codes/validate", map[string]string{"code": "ABC123"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeEnvelope(t, w).Success)

	w = doJSON(t, r, http.MethodPost, "/api/backup-codes/validate", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLookups(t *testing.T) {
	cs := &mockCheckinService{
		getVisitorFunc: func(ctx context.Context, id string) (*models.Visitor, error) {
			return walkinVisitor(), nil
		},
		getVisitorByTokenFunc: func(ctx context.Context, token string, visitorType models.VisitorType) (*models.Visitor, error) {
			v := walkinVisitor()
			v.VisitorType = visitorType
			return v, nil
		},
		getRegistrationFunc: func(ctx context.Context, id string) (*models.EventRegistration, error) {
			return &models.EventRegistration{ID: id, FirstName: "Lee"}, nil
		},
	}
	r := newTestRouter(t, cs, nil, nil)

	resp := decodeEnvelope(t, doJSON(t, r, http.MethodGet, "/api/visitors/w-1", nil))
	require.NotNil(t, resp.Visitor)
	assert.Equal(t, "w-1", resp.Visitor.ID)

	resp = decodeEnvelope(t, doJSON(t, r, http.MethodGet, "/api/additional-visitors/tok-1", nil))
	require.NotNil(t, resp.Visitor)
	assert.Equal(t, models.VisitorTypeAdditional, resp.Visitor.VisitorType)

	resp = decodeEnvelope(t, doJSON(t, r, http.MethodGet, "/api/group-walkin-members/abcde", nil))
	require.NotNil(t, resp.Visitor)
	assert.Equal(t, models.VisitorTypeGroupMember, resp.Visitor.VisitorType)

	resp = decodeEnvelope(t, doJSON(t, r, http.MethodGet, "/api/event-registrations/XYZ123", nil))
	require.NotNil(t, resp.Participant)
	assert.Equal(t, "XYZ123", resp.Participant.ID)
}

func TestCheckinMiddlewareOnlyOnCheckinRoutes(t *testing.T) {
	hits := 0
	mw := func(c *gin.Context) {
		hits++
		c.Next()
	}
	cs := &mockCheckinService{
		checkInWalkinFunc: func(ctx context.Context, visitorID string) (*service.CheckinResult, error) {
			return &service.CheckinResult{Status: models.CheckinStatusCheckedIn, Visitor: walkinVisitor()}, nil
		},
		getVisitorFunc: func(ctx context.Context, id string) (*models.Visitor, error) { return walkinVisitor(), nil },
	}
	r := newTestRouter(t, cs, nil, nil, mw)

	doJSON(t, r, http.MethodPost, "/api/walkin-visitors/w-1/checkin", nil)
	doJSON(t, r, http.MethodGet, "/api/visitors/w-1", nil)

	assert.Equal(t, 1, hits)
}

func TestQRMatchesToken(t *testing.T) {
	assert.True(t, qrMatchesToken("", "tok"))
	assert.True(t, qrMatchesToken("not json", "tok"))
	assert.True(t, qrMatchesToken(`{"type":"additional_visitor"}`, "tok"))
	assert.True(t, qrMatchesToken(`{"tokenId":"tok"}`, "tok"))
	assert.True(t, qrMatchesToken(`{"tokenId":42}`, "42"))
	assert.False(t, qrMatchesToken(`{"tokenId":"other"}`, "tok"))
}
