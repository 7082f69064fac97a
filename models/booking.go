package models

// Booking status constants. A visitor's booking status travels with the
// visitor record as Visitor.BookingStatus.
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)
