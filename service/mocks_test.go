package service

import (
	"context"
	"time"

	"museum-backend/messaging"
	"museum-backend/models"
)

type mockVisitorRepository struct {
	getByIDFunc             func(ctx context.Context, id string) (*models.Visitor, error)
	getByTokenFunc          func(ctx context.Context, token string) (*models.Visitor, error)
	getByBackupCodeFunc     func(ctx context.Context, code string) (*models.Visitor, error)
	getPrimaryByBookingFunc func(ctx context.Context, bookingID string) (*models.Visitor, error)
	markCheckedInFunc       func(ctx context.Context, id string, at time.Time) (*models.Visitor, error)
	updateProfileFunc       func(ctx context.Context, id string, req models.UpdateProfileRequest, completed bool) (*models.Visitor, error)
	fillGroupDetailsFunc    func(ctx context.Context, bookingID, institution, purpose string) (int64, error)
}

func (m *mockVisitorRepository) GetByID(ctx context.Context, id string) (*models.Visitor, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockVisitorRepository) GetByToken(ctx context.Context, token string) (*models.Visitor, error) {
	if m.getByTokenFunc != nil {
		return m.getByTokenFunc(ctx, token)
	}
	return nil, nil
}

func (m *mockVisitorRepository) GetByBackupCode(ctx context.Context, code string) (*models.Visitor, error) {
	if m.getByBackupCodeFunc != nil {
		return m.getByBackupCodeFunc(ctx, code)
	}
	return nil, nil
}

func (m *mockVisitorRepository) GetPrimaryByBooking(ctx context.Context, bookingID string) (*models.Visitor, error) {
	if m.getPrimaryByBookingFunc != nil {
		return m.getPrimaryByBookingFunc(ctx, bookingID)
	}
	return nil, nil
}

func (m *mockVisitorRepository) MarkCheckedIn(ctx context.Context, id string, at time.Time) (*models.Visitor, error) {
	if m.markCheckedInFunc != nil {
		return m.markCheckedInFunc(ctx, id, at)
	}
	return nil, nil
}

func (m *mockVisitorRepository) UpdateProfile(ctx context.Context, id string, req models.UpdateProfileRequest, completed bool) (*models.Visitor, error) {
	if m.updateProfileFunc != nil {
		return m.updateProfileFunc(ctx, id, req, completed)
	}
	return nil, nil
}

func (m *mockVisitorRepository) FillGroupDetails(ctx context.Context, bookingID, institution, purpose string) (int64, error) {
	if m.fillGroupDetailsFunc != nil {
		return m.fillGroupDetailsFunc(ctx, bookingID, institution, purpose)
	}
	return 0, nil
}

type mockRegistrationRepository struct {
	getByIDFunc       func(ctx context.Context, id string) (*models.EventRegistration, error)
	createFunc        func(ctx context.Context, reg *models.EventRegistration) (*models.EventRegistration, error)
	markCheckedInFunc func(ctx context.Context, id string, at time.Time) (*models.EventRegistration, error)
	updateStatusFunc  func(ctx context.Context, id, status string) (*models.EventRegistration, error)
	listCheckedInFunc func(ctx context.Context, eventID int64) ([]models.EventRegistration, error)
}

func (m *mockRegistrationRepository) GetByID(ctx context.Context, id string) (*models.EventRegistration, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockRegistrationRepository) Create(ctx context.Context, reg *models.EventRegistration) (*models.EventRegistration, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, reg)
	}
	return reg, nil
}

func (m *mockRegistrationRepository) MarkCheckedIn(ctx context.Context, id string, at time.Time) (*models.EventRegistration, error) {
	if m.markCheckedInFunc != nil {
		return m.markCheckedInFunc(ctx, id, at)
	}
	return nil, nil
}

func (m *mockRegistrationRepository) UpdateStatus(ctx context.Context, id, status string) (*models.EventRegistration, error) {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil, nil
}

func (m *mockRegistrationRepository) ListCheckedIn(ctx context.Context, eventID int64) ([]models.EventRegistration, error) {
	if m.listCheckedInFunc != nil {
		return m.listCheckedInFunc(ctx, eventID)
	}
	return nil, nil
}

type mockEventRepository struct {
	createFunc       func(ctx context.Context, req models.CreateEventRequest) (*models.Event, error)
	getByIDFunc      func(ctx context.Context, id int64) (*models.Event, error)
	listFunc         func(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error)
	updateStatusFunc func(ctx context.Context, id int64, status string) (*models.Event, error)
}

func (m *mockEventRepository) Create(ctx context.Context, req models.CreateEventRequest) (*models.Event, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return nil, nil
}

func (m *mockEventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockEventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return nil, 0, nil
}

func (m *mockEventRepository) UpdateStatus(ctx context.Context, id int64, status string) (*models.Event, error) {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil, nil
}

type mockPublisher struct {
	publishFunc func(ctx context.Context, msg messaging.CheckinMessage) error
	published   []messaging.CheckinMessage
}

func (m *mockPublisher) PublishCheckin(ctx context.Context, msg messaging.CheckinMessage) error {
	m.published = append(m.published, msg)
	if m.publishFunc != nil {
		return m.publishFunc(ctx, msg)
	}
	return nil
}

func (m *mockPublisher) Close() {}
