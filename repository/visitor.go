package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"museum-backend/models"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type VisitorRepository interface {
	GetByID(ctx context.Context, id string) (*models.Visitor, error)
	GetByToken(ctx context.Context, token string) (*models.Visitor, error)
	GetByBackupCode(ctx context.Context, code string) (*models.Visitor, error)
	GetPrimaryByBooking(ctx context.Context, bookingID string) (*models.Visitor, error)
	// MarkCheckedIn returns nil without error when the visitor was already
	// checked in, so two scanners racing on one code cannot both succeed.
	MarkCheckedIn(ctx context.Context, id string, at time.Time) (*models.Visitor, error)
	UpdateProfile(ctx context.Context, id string, req models.UpdateProfileRequest, completed bool) (*models.Visitor, error)
	// FillGroupDetails copies institution and purpose onto members of the
	// booking that left them empty and returns how many rows changed.
	FillGroupDetails(ctx context.Context, bookingID, institution, purpose string) (int64, error)
}

type visitorRepository struct {
	db     DB
	logger *zap.Logger
}

func NewVisitorRepository(db DB, logger *zap.Logger) VisitorRepository {
	return &visitorRepository{
		db:     db,
		logger: logger,
	}
}

const visitorColumns = `
	v.id, v.booking_id, v.token, v.visitor_type, v.first_name, v.last_name, v.gender,
	v.email, v.address, v.institution, v.purpose, v.details_completed, v.status,
	COALESCE(b.status, ''), v.checked_in_at, v.created_at, v.updated_at`

const visitorSelect = `SELECT` + visitorColumns + `
	FROM visitors v
	LEFT JOIN bookings b ON b.id = v.booking_id`

func scanVisitor(row scanner) (*models.Visitor, error) {
	var v models.Visitor
	err := row.Scan(
		&v.ID,
		&v.BookingID,
		&v.Token,
		&v.VisitorType,
		&v.FirstName,
		&v.LastName,
		&v.Gender,
		&v.Email,
		&v.Address,
		&v.Institution,
		&v.Purpose,
		&v.DetailsCompleted,
		&v.Status,
		&v.BookingStatus,
		&v.CheckedInAt,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *visitorRepository) getOne(ctx context.Context, op, key, query string, args ...any) (*models.Visitor, error) {
	v, err := scanVisitor(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("failed to "+op, zap.Error(err), zap.String("key", key))
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	return v, nil
}

func (r *visitorRepository) GetByID(ctx context.Context, id string) (*models.Visitor, error) {
	return r.getOne(ctx, "get visitor", id, visitorSelect+` WHERE v.id = $1`, id)
}

func (r *visitorRepository) GetByToken(ctx context.Context, token string) (*models.Visitor, error) {
	return r.getOne(ctx, "get visitor by token", token, visitorSelect+` WHERE v.token = $1`, token)
}

func (r *visitorRepository) GetByBackupCode(ctx context.Context, code string) (*models.Visitor, error) {
	query := visitorSelect + `
		JOIN backup_codes c ON c.visitor_id = v.id
		WHERE UPPER(c.code) = UPPER($1)`
	return r.getOne(ctx, "get visitor by backup code", code, query, code)
}

func (r *visitorRepository) GetPrimaryByBooking(ctx context.Context, bookingID string) (*models.Visitor, error) {
	query := visitorSelect + `
		WHERE v.booking_id = $1 AND v.visitor_type = $2
		ORDER BY v.created_at
		LIMIT 1`
	return r.getOne(ctx, "get primary visitor", bookingID, query, bookingID, models.VisitorTypePrimary)
}

func (r *visitorRepository) MarkCheckedIn(ctx context.Context, id string, at time.Time) (*models.Visitor, error) {
	query := `
		WITH v AS (
			UPDATE visitors
			SET status = $2, checked_in_at = $3, updated_at = $3
			WHERE id = $1 AND status <> $2
			RETURNING *
		)
		SELECT` + visitorColumns + `
		FROM v
		LEFT JOIN bookings b ON b.id = v.booking_id`
	return r.getOne(ctx, "check in visitor", id, query, id, models.VisitorStatusCheckedIn, at)
}

func (r *visitorRepository) UpdateProfile(ctx context.Context, id string, req models.UpdateProfileRequest, completed bool) (*models.Visitor, error) {
	query := `
		WITH v AS (
			UPDATE visitors
			SET first_name = $2, last_name = $3, gender = $4, email = $5, address = $6,
				institution = $7, purpose = $8, details_completed = $9, updated_at = NOW()
			WHERE id = $1
			RETURNING *
		)
		SELECT` + visitorColumns + `
		FROM v
		LEFT JOIN bookings b ON b.id = v.booking_id`
	return r.getOne(ctx, "update visitor profile", id, query,
		id, req.FirstName, req.LastName, req.Gender, req.Email, req.Address,
		req.Institution, req.Purpose, completed,
	)
}

func (r *visitorRepository) FillGroupDetails(ctx context.Context, bookingID, institution, purpose string) (int64, error) {
	query := `
		UPDATE visitors
		SET institution = CASE WHEN institution = '' THEN $3 ELSE institution END,
			purpose = CASE WHEN purpose = '' THEN $4 ELSE purpose END,
			updated_at = NOW()
		WHERE booking_id = $1 AND visitor_type = $2
			AND (institution = '' OR purpose = '')`
	tag, err := r.db.Exec(ctx, query, bookingID, models.VisitorTypeGroupMember, institution, purpose)
	if err != nil {
		r.logger.Error("failed to fill group details", zap.Error(err), zap.String("booking_id", bookingID))
		return 0, fmt.Errorf("failed to fill group details: %w", err)
	}
	return tag.RowsAffected(), nil
}
