package service

import (
	"context"
	"strings"

	"museum-backend/models"
	"museum-backend/repository"

	"go.uber.org/zap"
)

type VisitorService interface {
	UpdateProfile(ctx context.Context, id string, req models.UpdateProfileRequest) (*models.Visitor, error)
}

type visitorService struct {
	visitors repository.VisitorRepository
	logger   *zap.Logger
}

func NewVisitorService(visitors repository.VisitorRepository, logger *zap.Logger) VisitorService {
	return &visitorService{
		visitors: visitors,
		logger:   logger,
	}
}

// UpdateProfile stores the visitor's own details. When a group leader fills
// in institution or purpose, members of the same booking who left them
// empty take the leader's values.
func (s *visitorService) UpdateProfile(ctx context.Context, id string, req models.UpdateProfileRequest) (*models.Visitor, error) {
	existing, err := s.visitors.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrVisitorNotFound
	}

	req = trimProfile(req)
	candidate := models.Visitor{FirstName: req.FirstName, LastName: req.LastName, Gender: req.Gender}
	completed := candidate.IsComplete()

	updated, err := s.visitors.UpdateProfile(ctx, existing.ID, req, completed)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrVisitorNotFound
	}

	s.logger.Info("visitor profile updated",
		zap.String("visitor_id", updated.ID),
		zap.Bool("details_completed", completed),
	)

	if updated.VisitorType == models.VisitorTypeGroupLeader && updated.BookingID != nil &&
		(req.Institution != "" || req.Purpose != "") {
		n, err := s.visitors.FillGroupDetails(ctx, *updated.BookingID, req.Institution, req.Purpose)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("group members pre-filled", zap.String("booking_id", *updated.BookingID), zap.Int64("count", n))
	}

	return updated, nil
}

func trimProfile(req models.UpdateProfileRequest) models.UpdateProfileRequest {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Gender = strings.TrimSpace(req.Gender)
	req.Email = strings.TrimSpace(req.Email)
	req.Address = strings.TrimSpace(req.Address)
	req.Institution = strings.TrimSpace(req.Institution)
	req.Purpose = strings.TrimSpace(req.Purpose)
	return req
}
