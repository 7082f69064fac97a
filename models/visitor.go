package models

import (
	"strings"
	"time"
)

type VisitorType string

const (
	VisitorTypePrimary     VisitorType = "primary"
	VisitorTypeAdditional  VisitorType = "additional"
	VisitorTypeWalkin      VisitorType = "walkin"
	VisitorTypeGroupLeader VisitorType = "group_leader"
	VisitorTypeGroupMember VisitorType = "group_member"
)

// Visitor status constants
const (
	VisitorStatusPending   = "pending"
	VisitorStatusCheckedIn = "checked-in"
)

// Required identity fields, named as they appear in JSON
const (
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldGender    = "gender"
)

// Visitor is a single person expected at the museum, whatever way they booked.
type Visitor struct {
	ID               string      `json:"id" db:"id"`
	BookingID        *string     `json:"booking_id,omitempty" db:"booking_id"`
	Token            *string     `json:"token,omitempty" db:"token"`
	VisitorType      VisitorType `json:"visitor_type" db:"visitor_type"`
	FirstName        string      `json:"first_name" db:"first_name"`
	LastName         string      `json:"last_name" db:"last_name"`
	Gender           string      `json:"gender" db:"gender"`
	Email            string      `json:"email" db:"email"`
	Address          string      `json:"address" db:"address"`
	Institution      string      `json:"institution" db:"institution"`
	Purpose          string      `json:"purpose" db:"purpose"`
	DetailsCompleted bool        `json:"details_completed" db:"details_completed"`
	Status           string      `json:"status" db:"status"`
	BookingStatus    string      `json:"booking_status,omitempty" db:"booking_status"`
	CheckedInAt      *time.Time  `json:"checked_in_at,omitempty" db:"checked_in_at"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" db:"updated_at"`
}

// placeholderValues are answers visitors type into forms instead of leaving
// a field empty. They count as missing.
var placeholderValues = map[string]struct{}{
	"":          {},
	"n/a":       {},
	"none":      {},
	"unknown":   {},
	"null":      {},
	"undefined": {},
}

// IsBlankOrPlaceholder reports whether value is empty or one of the
// placeholder answers, ignoring case and surrounding whitespace.
func IsBlankOrPlaceholder(value string) bool {
	_, ok := placeholderValues[strings.ToLower(strings.TrimSpace(value))]
	return ok
}

// MissingFields lists the required identity fields that are blank or
// placeholders, in a stable order.
func (v *Visitor) MissingFields() []string {
	var missing []string
	if IsBlankOrPlaceholder(v.FirstName) {
		missing = append(missing, FieldFirstName)
	}
	if IsBlankOrPlaceholder(v.LastName) {
		missing = append(missing, FieldLastName)
	}
	if IsBlankOrPlaceholder(v.Gender) {
		missing = append(missing, FieldGender)
	}
	return missing
}

func (v *Visitor) IsComplete() bool {
	return len(v.MissingFields()) == 0
}

func (v *Visitor) IsCheckedIn() bool {
	return v.Status == VisitorStatusCheckedIn
}

func (v *Visitor) FullName() string {
	return strings.TrimSpace(v.FirstName + " " + v.LastName)
}

type UpdateProfileRequest struct {
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	Gender      string `json:"gender" binding:"required"`
	Email       string `json:"email" binding:"omitempty,email"`
	Address     string `json:"address"`
	Institution string `json:"institution"`
	Purpose     string `json:"purpose"`
}
