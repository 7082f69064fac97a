package service

import "errors"

var (
	ErrVisitorNotFound      = errors.New("visitor not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrEventNotFound        = errors.New("event not found")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrEventNotOpen         = errors.New("event is not open for registration")
	ErrEventFull            = errors.New("event is full")
	ErrAlreadyRegistered    = errors.New("already registered for this event")
	ErrInvalidQRData        = errors.New("invalid QR data")
)
