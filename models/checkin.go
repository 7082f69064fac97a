package models

import (
	"encoding/json"
	"fmt"
)

// Check-in status values shared by every check-in endpoint
const (
	CheckinStatusCheckedIn        = "checked-in"
	CheckinStatusAlreadyCheckedIn = "already-checked-in"
	CheckinStatusCancelled        = "cancelled"
	CheckinStatusIncomplete       = "incomplete"
	CheckinStatusFormIncomplete   = "form-incomplete"
	CheckinStatusPending          = "pending"
	CheckinStatusRejected         = "rejected"
)

// CheckinResponse is the envelope returned by all check-in and lookup
// endpoints. Event registration endpoints fill Participant, the rest Visitor.
type CheckinResponse struct {
	Success          bool     `json:"success"`
	Status           string   `json:"status,omitempty"`
	Error            string   `json:"error,omitempty"`
	Message          string   `json:"message,omitempty"`
	AlreadyCheckedIn bool     `json:"alreadyCheckedIn,omitempty"`
	MissingFields    []string `json:"missingFields,omitempty"`
	Email            string   `json:"email,omitempty"`
	Visitor          *Visitor `json:"visitor,omitempty"`
	Participant      *Visitor `json:"participant,omitempty"`
}

// Person returns whichever of Visitor or Participant was sent.
func (r *CheckinResponse) Person() *Visitor {
	if r.Visitor != nil {
		return r.Visitor
	}
	return r.Participant
}

type EventCheckinRequest struct {
	RegistrationID FlexString `json:"registration_id" binding:"required"`
	EventID        FlexString `json:"event_id"`
	Email          string     `json:"email"`
	ManualCheckin  bool       `json:"manual_checkin"`
}

type AdditionalVisitorCheckinRequest struct {
	QRCodeData string `json:"qrCodeData"`
}

type QRScanRequest struct {
	QRData string `json:"qrData" binding:"required"`
}

type BackupCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// FlexString accepts either a JSON string or a JSON number. QR codes printed
// by different generations of the booking site encode ids both ways.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(data))
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string {
	return string(f)
}
