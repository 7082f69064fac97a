package handlers

import (
	"context"

	"museum-backend/models"
	"museum-backend/service"
)

type mockCheckinService struct {
	checkInByURLFunc        func(ctx context.Context, visitorID string) (*service.CheckinResult, error)
	checkInPrimaryQRFunc    func(ctx context.Context, qrData string) (*service.CheckinResult, error)
	checkInAdditionalFunc   func(ctx context.Context, token string) (*service.CheckinResult, error)
	checkInGroupLeaderFunc  func(ctx context.Context, visitorID string) (*service.CheckinResult, error)
	checkInGroupMemberFunc  func(ctx context.Context, token string) (*service.CheckinResult, error)
	checkInWalkinFunc       func(ctx context.Context, visitorID string) (*service.CheckinResult, error)
	checkInBackupCodeFunc   func(ctx context.Context, code string) (*service.CheckinResult, error)
	checkInRegistrationFunc func(ctx context.Context, req models.EventCheckinRequest) (*service.CheckinResult, error)
	getVisitorFunc          func(ctx context.Context, id string) (*models.Visitor, error)
	getVisitorByTokenFunc   func(ctx context.Context, token string, visitorType models.VisitorType) (*models.Visitor, error)
	getRegistrationFunc     func(ctx context.Context, id string) (*models.EventRegistration, error)
}

func (m *mockCheckinService) CheckInByURL(ctx context.Context, visitorID string) (*service.CheckinResult, error) {
	if m.checkInByURLFunc != nil {
		return m.checkInByURLFunc(ctx, visitorID)
	}
	return nil, service.ErrVisitorNotFound
}

func (m *mockCheckinService) CheckInPrimaryQR(ctx context.Context, qrData string) (*service.CheckinResult, error) {
	if m.checkInPrimaryQRFunc != nil {
		return m.checkInPrimaryQRFunc(ctx, qrData)
	}
	return nil, service.ErrVisitorNotFound
}

func (m *mockCheckinService) CheckInAdditional(ctx context.Context, token string) (*service.CheckinResult, error) {
	if m.checkInAdditionalFunc != nil {
		return m.checkInAdditionalFunc(ctx, token)
	}
	return nil, service.ErrVisitorNotFound
}

func (m *mockCheckinService) CheckInGroupLeader(ctx context.Context, visitorID string) (*service.CheckinResult, error) {
	if m.checkInGroupLeaderFunc != nil {
		return m.checkInGroupLeaderFunc(ctx, visitorID)
	}
	return nil, service.ErrVisitorNotFound
}

func (m *mockCheckinService) CheckInGroupMember(ctx context.Context, token string) (*service.CheckinResult, error) {
	if m.checkInGroupMemberFunc != nil {
		return m.checkInGroupMemberFunc(ctx, token)
	}
	return nil, service.ErrVisitorNotFound
}

func (m *mockCheckinService) CheckInWalkin(ctx context.Context, visitorID string) (*service.CheckinResult, error) {
	if m.checkInWalkinFunc != nil {
		return m.checkInWalkinFunc(ctx, visitorID)
	}
	return nil, service.ErrVisitorNotFound
}

func (m *mockCheckinService) CheckInBackupCode(ctx context.Context, code string) (*service.CheckinResult, error) {
	if m.checkInBackupCodeFunc != nil {
		return m.checkInBackupCodeFunc(ctx, code)
	}
	return nil, service.ErrVisitorNotFound
}

func (m *mockCheckinService) CheckInRegistration(ctx context.Context, req models.EventCheckinRequest) (*service.CheckinResult, error) {
	if m.checkInRegistrationFunc != nil {
		return m.checkInRegistrationFunc(ctx, req)
	}
	return nil, service.ErrRegistrationNotFound
}

func (m *mockCheckinService) GetVisitor(ctx context.Context, id string) (*models.Visitor, error) {
	if m.getVisitorFunc != nil {
		return m.getVisitorFunc(ctx, id)
	}
	return nil, service.ErrVisitorNotFound
}

func (m *mockCheckinService) GetVisitorByToken(ctx context.Context, token string, visitorType models.VisitorType) (*models.Visitor, error) {
	if m.getVisitorByTokenFunc != nil {
		return m.getVisitorByTokenFunc(ctx, token, visitorType)
	}
	return nil, service.ErrVisitorNotFound
}

func (m *mockCheckinService) GetRegistration(ctx context.Context, id string) (*models.EventRegistration, error) {
	if m.getRegistrationFunc != nil {
		return m.getRegistrationFunc(ctx, id)
	}
	return nil, service.ErrRegistrationNotFound
}

type mockEventService struct {
	createEventFunc              func(ctx context.Context, req models.CreateEventRequest) (*models.Event, error)
	listEventsFunc               func(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error)
	getEventFunc                 func(ctx context.Context, id int64) (*models.Event, error)
	updateEventStatusFunc        func(ctx context.Context, id int64, status string) (*models.Event, error)
	registerFunc                 func(ctx context.Context, eventID int64, req models.RegisterRequest) (*models.EventRegistration, string, error)
	listCheckinsFunc             func(ctx context.Context, eventID int64) ([]models.EventRegistration, error)
	updateRegistrationStatusFunc func(ctx context.Context, id, status string) (*models.EventRegistration, error)
}

func (m *mockEventService) CreateEvent(ctx context.Context, req models.CreateEventRequest) (*models.Event, error) {
	if m.createEventFunc != nil {
		return m.createEventFunc(ctx, req)
	}
	return &models.Event{ID: 1, Title: req.Title, Status: models.EventStatusDraft}, nil
}

func (m *mockEventService) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	if m.listEventsFunc != nil {
		return m.listEventsFunc(ctx, filter)
	}
	return []models.Event{}, 0, nil
}

func (m *mockEventService) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	if m.getEventFunc != nil {
		return m.getEventFunc(ctx, id)
	}
	return nil, service.ErrEventNotFound
}

func (m *mockEventService) UpdateEventStatus(ctx context.Context, id int64, status string) (*models.Event, error) {
	if m.updateEventStatusFunc != nil {
		return m.updateEventStatusFunc(ctx, id, status)
	}
	return nil, service.ErrEventNotFound
}

func (m *mockEventService) Register(ctx context.Context, eventID int64, req models.RegisterRequest) (*models.EventRegistration, string, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, eventID, req)
	}
	return nil, "", service.ErrEventNotFound
}

func (m *mockEventService) ListCheckins(ctx context.Context, eventID int64) ([]models.EventRegistration, error) {
	if m.listCheckinsFunc != nil {
		return m.listCheckinsFunc(ctx, eventID)
	}
	return nil, service.ErrEventNotFound
}

func (m *mockEventService) UpdateRegistrationStatus(ctx context.Context, id, status string) (*models.EventRegistration, error) {
	if m.updateRegistrationStatusFunc != nil {
		return m.updateRegistrationStatusFunc(ctx, id, status)
	}
	return nil, service.ErrRegistrationNotFound
}

type mockVisitorService struct {
	updateProfileFunc func(ctx context.Context, id string, req models.UpdateProfileRequest) (*models.Visitor, error)
}

func (m *mockVisitorService) UpdateProfile(ctx context.Context, id string, req models.UpdateProfileRequest) (*models.Visitor, error) {
	if m.updateProfileFunc != nil {
		return m.updateProfileFunc(ctx, id, req)
	}
	return nil, service.ErrVisitorNotFound
}
