package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"museum-backend/models"
	"museum-backend/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// registrationCodeLength keeps codes short enough to read out and type.
const registrationCodeLength = 8

// RegistrationQR is the payload encoded into an event participant's QR code.
type RegistrationQR struct {
	Type           string `json:"type"`
	RegistrationID string `json:"registrationId"`
	EventID        int64  `json:"eventId"`
}

type EventService interface {
	CreateEvent(ctx context.Context, req models.CreateEventRequest) (*models.Event, error)
	ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error)
	GetEvent(ctx context.Context, id int64) (*models.Event, error)
	UpdateEventStatus(ctx context.Context, id int64, status string) (*models.Event, error)
	// Register signs a participant up and returns the registration together
	// with the QR payload to show them.
	Register(ctx context.Context, eventID int64, req models.RegisterRequest) (*models.EventRegistration, string, error)
	ListCheckins(ctx context.Context, eventID int64) ([]models.EventRegistration, error)
	UpdateRegistrationStatus(ctx context.Context, id, status string) (*models.EventRegistration, error)
}

type eventService struct {
	events        repository.EventRepository
	registrations repository.RegistrationRepository
	logger        *zap.Logger
	newCode       func() string
}

func NewEventService(events repository.EventRepository, registrations repository.RegistrationRepository, logger *zap.Logger) EventService {
	return &eventService{
		events:        events,
		registrations: registrations,
		logger:        logger,
		newCode:       newRegistrationCode,
	}
}

func newRegistrationCode() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(id[:registrationCodeLength])
}

func (s *eventService) CreateEvent(ctx context.Context, req models.CreateEventRequest) (*models.Event, error) {
	event, err := s.events.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("event created", zap.Int64("event_id", event.ID), zap.String("title", event.Title))
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	if filter.Limit <= 0 {
		return nil, 0, fmt.Errorf("limit must be positive, got %d", filter.Limit)
	}
	if filter.Offset < 0 {
		return nil, 0, fmt.Errorf("offset must be non-negative, got %d", filter.Offset)
	}
	if filter.Status != "" && !models.IsValidEventStatus(filter.Status) {
		return nil, 0, fmt.Errorf("%w: %s", ErrInvalidStatus, filter.Status)
	}
	return s.events.List(ctx, filter)
}

func (s *eventService) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}

func (s *eventService) UpdateEventStatus(ctx context.Context, id int64, status string) (*models.Event, error) {
	if !models.IsValidEventStatus(status) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	event, err := s.events.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	s.logger.Info("event status updated", zap.Int64("event_id", id), zap.String("status", status))
	return event, nil
}

func (s *eventService) Register(ctx context.Context, eventID int64, req models.RegisterRequest) (*models.EventRegistration, string, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, "", err
	}
	if event.Status != models.EventStatusPublished {
		return nil, "", ErrEventNotOpen
	}

	status := models.RegistrationStatusApproved
	if event.RequireApproval {
		status = models.RegistrationStatusPending
	}

	reg, err := s.registrations.Create(ctx, &models.EventRegistration{
		ID:        s.newCode(),
		EventID:   eventID,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Gender:    strings.TrimSpace(req.Gender),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Status:    status,
	})
	switch {
	case errors.Is(err, repository.ErrCapacityReached):
		return nil, "", ErrEventFull
	case errors.Is(err, repository.ErrDuplicateRegistration):
		return nil, "", ErrAlreadyRegistered
	case err != nil:
		return nil, "", err
	}

	qr, err := json.Marshal(RegistrationQR{
		Type:           "event_participant",
		RegistrationID: reg.ID,
		EventID:        eventID,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode QR data: %w", err)
	}

	s.logger.Info("participant registered",
		zap.Int64("event_id", eventID),
		zap.String("registration_id", reg.ID),
		zap.String("status", status),
	)
	return reg, string(qr), nil
}

func (s *eventService) ListCheckins(ctx context.Context, eventID int64) ([]models.EventRegistration, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.registrations.ListCheckedIn(ctx, eventID)
}

func (s *eventService) UpdateRegistrationStatus(ctx context.Context, id, status string) (*models.EventRegistration, error) {
	switch status {
	case models.RegistrationStatusPending, models.RegistrationStatusApproved, models.RegistrationStatusRejected:
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	reg, err := s.registrations.UpdateStatus(ctx, strings.TrimSpace(id), status)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, ErrRegistrationNotFound
	}
	s.logger.Info("registration status updated", zap.String("registration_id", reg.ID), zap.String("status", status))
	return reg, nil
}
