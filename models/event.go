package models

import (
	"time"
)

// Event status constants
const (
	EventStatusDraft     = "draft"
	EventStatusPublished = "published"
	EventStatusClosed    = "closed"
	EventStatusCancelled = "cancelled"
)

// Registration status constants
const (
	RegistrationStatusPending  = "pending"
	RegistrationStatusApproved = "approved"
	RegistrationStatusRejected = "rejected"
)

func IsValidEventStatus(status string) bool {
	switch status {
	case EventStatusDraft, EventStatusPublished, EventStatusClosed, EventStatusCancelled:
		return true
	}
	return false
}

type Event struct {
	ID              int64      `json:"id" db:"id"`
	Title           string     `json:"title" db:"title"`
	Description     *string    `json:"description,omitempty" db:"description"`
	Location        *string    `json:"location,omitempty" db:"location"`
	ImageURL        *string    `json:"image_url,omitempty" db:"image_url"`
	StartsAt        *time.Time `json:"starts_at,omitempty" db:"starts_at"`
	Capacity        int        `json:"capacity" db:"capacity"`
	RequireApproval bool       `json:"require_approval" db:"require_approval"`
	Status          string     `json:"status" db:"status"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

type CreateEventRequest struct {
	Title           string     `json:"title" binding:"required"`
	Description     string     `json:"description"`
	Location        string     `json:"location"`
	ImageURL        string     `json:"image_url"`
	StartsAt        *time.Time `json:"starts_at"`
	Capacity        int        `json:"capacity" binding:"gte=0"`
	RequireApproval bool       `json:"require_approval"`
}

type EventFilter struct {
	Status string
	Limit  int
	Offset int
}

// EventRegistration is one visitor's sign-up for an event. Its ID is short
// enough to be typed by staff as a backup code.
type EventRegistration struct {
	ID          string     `json:"id" db:"id"`
	EventID     int64      `json:"event_id" db:"event_id"`
	FirstName   string     `json:"first_name" db:"first_name"`
	LastName    string     `json:"last_name" db:"last_name"`
	Gender      string     `json:"gender" db:"gender"`
	Email       string     `json:"email" db:"email"`
	Status      string     `json:"status" db:"status"`
	CheckedIn   bool       `json:"checked_in" db:"checked_in"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty" db:"checked_in_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// AsVisitor presents a registration the same way as any other visitor so
// scanners can render one panel for every flow.
func (r *EventRegistration) AsVisitor() *Visitor {
	status := VisitorStatusPending
	if r.CheckedIn {
		status = VisitorStatusCheckedIn
	}
	return &Visitor{
		ID:          r.ID,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Gender:      r.Gender,
		Email:       r.Email,
		Status:      status,
		CheckedInAt: r.CheckedInAt,
		CreatedAt:   r.CreatedAt,
	}
}

type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Gender    string `json:"gender"`
	Email     string `json:"email" binding:"required,email"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
