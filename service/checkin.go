package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"museum-backend/messaging"
	"museum-backend/models"
	"museum-backend/repository"

	"go.uber.org/zap"
)

// CheckinResult is the business outcome of one check-in attempt. Status is
// one of the models.CheckinStatus values.
type CheckinResult struct {
	Status        string
	Visitor       *models.Visitor
	MissingFields []string
}

type CheckinService interface {
	CheckInByURL(ctx context.Context, visitorID string) (*CheckinResult, error)
	CheckInPrimaryQR(ctx context.Context, qrData string) (*CheckinResult, error)
	CheckInAdditional(ctx context.Context, token string) (*CheckinResult, error)
	CheckInGroupLeader(ctx context.Context, visitorID string) (*CheckinResult, error)
	CheckInGroupMember(ctx context.Context, token string) (*CheckinResult, error)
	CheckInWalkin(ctx context.Context, visitorID string) (*CheckinResult, error)
	CheckInBackupCode(ctx context.Context, code string) (*CheckinResult, error)
	CheckInRegistration(ctx context.Context, req models.EventCheckinRequest) (*CheckinResult, error)

	GetVisitor(ctx context.Context, id string) (*models.Visitor, error)
	GetVisitorByToken(ctx context.Context, token string, visitorType models.VisitorType) (*models.Visitor, error)
	GetRegistration(ctx context.Context, id string) (*models.EventRegistration, error)
}

type checkinService struct {
	visitors      repository.VisitorRepository
	registrations repository.RegistrationRepository
	events        repository.EventRepository
	publisher     messaging.Publisher
	logger        *zap.Logger
	now           func() time.Time
}

func NewCheckinService(
	visitors repository.VisitorRepository,
	registrations repository.RegistrationRepository,
	events repository.EventRepository,
	publisher messaging.Publisher,
	logger *zap.Logger,
) CheckinService {
	return &checkinService{
		visitors:      visitors,
		registrations: registrations,
		events:        events,
		publisher:     publisher,
		logger:        logger,
		now:           time.Now,
	}
}

// incompleteStatus is the status reported for a visitor of the given type
// whose profile is missing required fields. Empty means the type is checked
// in regardless, because its details come from the booking itself.
func incompleteStatus(t models.VisitorType) string {
	switch t {
	case models.VisitorTypeAdditional:
		return models.CheckinStatusFormIncomplete
	case models.VisitorTypeWalkin, models.VisitorTypeGroupMember:
		return models.CheckinStatusIncomplete
	default:
		return ""
	}
}

func (s *checkinService) CheckInByURL(ctx context.Context, visitorID string) (*CheckinResult, error) {
	v, err := s.findVisitor(ctx, visitorID, models.VisitorTypePrimary)
	if err != nil {
		return nil, err
	}
	return s.checkIn(ctx, v)
}

// CheckInPrimaryQR accepts the JSON printed on booking confirmations. It
// names the visitor directly or only the booking, in which case the
// booking's primary visitor is checked in.
func (s *checkinService) CheckInPrimaryQR(ctx context.Context, qrData string) (*CheckinResult, error) {
	var payload struct {
		VisitorID models.FlexString `json:"visitorId"`
		BookingID models.FlexString `json:"bookingId"`
	}
	if err := json.Unmarshal([]byte(qrData), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQRData, err)
	}

	var (
		v   *models.Visitor
		err error
	)
	switch {
	case payload.VisitorID != "":
		v, err = s.findVisitor(ctx, string(payload.VisitorID), models.VisitorTypePrimary)
	case payload.BookingID != "":
		v, err = s.visitors.GetPrimaryByBooking(ctx, string(payload.BookingID))
		if err == nil && v == nil {
			err = ErrVisitorNotFound
		}
	default:
		return nil, fmt.Errorf("%w: visitorId or bookingId required", ErrInvalidQRData)
	}
	if err != nil {
		return nil, err
	}
	return s.checkIn(ctx, v)
}

func (s *checkinService) CheckInAdditional(ctx context.Context, token string) (*CheckinResult, error) {
	v, err := s.GetVisitorByToken(ctx, token, models.VisitorTypeAdditional)
	if err != nil {
		return nil, err
	}
	return s.checkIn(ctx, v)
}

func (s *checkinService) CheckInGroupLeader(ctx context.Context, visitorID string) (*CheckinResult, error) {
	v, err := s.findVisitor(ctx, visitorID, models.VisitorTypeGroupLeader)
	if err != nil {
		return nil, err
	}
	return s.checkIn(ctx, v)
}

func (s *checkinService) CheckInGroupMember(ctx context.Context, token string) (*CheckinResult, error) {
	v, err := s.GetVisitorByToken(ctx, token, models.VisitorTypeGroupMember)
	if err != nil {
		return nil, err
	}
	return s.checkIn(ctx, v)
}

func (s *checkinService) CheckInWalkin(ctx context.Context, visitorID string) (*CheckinResult, error) {
	v, err := s.findVisitor(ctx, visitorID, models.VisitorTypeWalkin)
	if err != nil {
		return nil, err
	}
	return s.checkIn(ctx, v)
}

func (s *checkinService) CheckInBackupCode(ctx context.Context, code string) (*CheckinResult, error) {
	code = strings.TrimSpace(code)
	v, err := s.visitors.GetByBackupCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrVisitorNotFound
	}
	return s.checkIn(ctx, v)
}

func (s *checkinService) checkIn(ctx context.Context, v *models.Visitor) (*CheckinResult, error) {
	if v.BookingStatus == models.BookingStatusCancelled {
		return &CheckinResult{Status: models.CheckinStatusCancelled, Visitor: v}, nil
	}
	if v.IsCheckedIn() {
		return &CheckinResult{Status: models.CheckinStatusAlreadyCheckedIn, Visitor: v}, nil
	}
	if status := incompleteStatus(v.VisitorType); status != "" {
		if missing := v.MissingFields(); len(missing) > 0 {
			return &CheckinResult{Status: status, Visitor: v, MissingFields: missing}, nil
		}
	}

	at := s.now().UTC()
	updated, err := s.visitors.MarkCheckedIn(ctx, v.ID, at)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// Lost a race with another scanner.
		return &CheckinResult{Status: models.CheckinStatusAlreadyCheckedIn, Visitor: v}, nil
	}

	s.logger.Info("visitor checked in",
		zap.String("visitor_id", updated.ID),
		zap.String("visitor_type", string(updated.VisitorType)),
	)
	s.publish(ctx, messaging.CheckinMessage{
		VisitorID:   updated.ID,
		Kind:        string(updated.VisitorType),
		CheckedInAt: at,
	})
	return &CheckinResult{Status: models.CheckinStatusCheckedIn, Visitor: updated}, nil
}

func (s *checkinService) CheckInRegistration(ctx context.Context, req models.EventCheckinRequest) (*CheckinResult, error) {
	id := strings.TrimSpace(string(req.RegistrationID))
	reg, err := s.GetRegistration(ctx, id)
	if err != nil {
		return nil, err
	}

	if eventID := strings.TrimSpace(string(req.EventID)); eventID != "" && eventID != strconv.FormatInt(reg.EventID, 10) {
		return nil, fmt.Errorf("%w for this event", ErrRegistrationNotFound)
	}
	if req.Email != "" && !strings.EqualFold(strings.TrimSpace(req.Email), reg.Email) {
		return nil, fmt.Errorf("%w for this email", ErrRegistrationNotFound)
	}

	switch reg.Status {
	case models.RegistrationStatusPending:
		return &CheckinResult{Status: models.CheckinStatusPending, Visitor: reg.AsVisitor()}, nil
	case models.RegistrationStatusRejected:
		return &CheckinResult{Status: models.CheckinStatusRejected, Visitor: reg.AsVisitor()}, nil
	}

	event, err := s.events.GetByID(ctx, reg.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	if event.Status == models.EventStatusCancelled {
		return &CheckinResult{Status: models.CheckinStatusCancelled, Visitor: reg.AsVisitor()}, nil
	}

	if reg.CheckedIn {
		return &CheckinResult{Status: models.CheckinStatusAlreadyCheckedIn, Visitor: reg.AsVisitor()}, nil
	}

	at := s.now().UTC()
	updated, err := s.registrations.MarkCheckedIn(ctx, reg.ID, at)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return &CheckinResult{Status: models.CheckinStatusAlreadyCheckedIn, Visitor: reg.AsVisitor()}, nil
	}

	s.logger.Info("participant checked in",
		zap.String("registration_id", updated.ID),
		zap.Int64("event_id", updated.EventID),
		zap.Bool("manual", req.ManualCheckin),
	)
	s.publish(ctx, messaging.CheckinMessage{
		VisitorID:      updated.ID,
		RegistrationID: updated.ID,
		Kind:           messaging.KindEventParticipant,
		CheckedInAt:    at,
	})
	return &CheckinResult{Status: models.CheckinStatusCheckedIn, Visitor: updated.AsVisitor()}, nil
}

// publish never fails the check-in; the row is already updated.
func (s *checkinService) publish(ctx context.Context, msg messaging.CheckinMessage) {
	if err := s.publisher.PublishCheckin(ctx, msg); err != nil {
		s.logger.Warn("check-in notification not sent", zap.Error(err), zap.String("visitor_id", msg.VisitorID))
	}
}

func (s *checkinService) findVisitor(ctx context.Context, id string, visitorType models.VisitorType) (*models.Visitor, error) {
	v, err := s.GetVisitor(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.VisitorType != visitorType {
		return nil, ErrVisitorNotFound
	}
	return v, nil
}

func (s *checkinService) GetVisitor(ctx context.Context, id string) (*models.Visitor, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrVisitorNotFound
	}
	v, err := s.visitors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrVisitorNotFound
	}
	return v, nil
}

func (s *checkinService) GetVisitorByToken(ctx context.Context, token string, visitorType models.VisitorType) (*models.Visitor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrVisitorNotFound
	}
	v, err := s.visitors.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if v == nil || v.VisitorType != visitorType {
		return nil, ErrVisitorNotFound
	}
	return v, nil
}

func (s *checkinService) GetRegistration(ctx context.Context, id string) (*models.EventRegistration, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrRegistrationNotFound
	}
	reg, err := s.registrations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, ErrRegistrationNotFound
	}
	return reg, nil
}
