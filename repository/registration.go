package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"museum-backend/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint breach.
const uniqueViolation = "23505"

var (
	ErrDuplicateRegistration = errors.New("email already registered for this event")
	ErrCapacityReached       = errors.New("event capacity reached")
)

type RegistrationRepository interface {
	GetByID(ctx context.Context, id string) (*models.EventRegistration, error)
	// Create locks the event row, so concurrent registrations for the same
	// event are counted one at a time. It returns ErrCapacityReached when the
	// event has a capacity and its non-rejected registrations fill it, and
	// ErrDuplicateRegistration when the email is already registered.
	Create(ctx context.Context, reg *models.EventRegistration) (*models.EventRegistration, error)
	// MarkCheckedIn returns nil without error when the registration was
	// already checked in.
	MarkCheckedIn(ctx context.Context, id string, at time.Time) (*models.EventRegistration, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.EventRegistration, error)
	ListCheckedIn(ctx context.Context, eventID int64) ([]models.EventRegistration, error)
}

type registrationRepository struct {
	db     TxDB
	logger *zap.Logger
}

func NewRegistrationRepository(db TxDB, logger *zap.Logger) RegistrationRepository {
	return &registrationRepository{
		db:     db,
		logger: logger,
	}
}

const registrationColumns = `id, event_id, first_name, last_name, gender, email, status, checked_in, checked_in_at, created_at`

func scanRegistration(row scanner) (*models.EventRegistration, error) {
	var reg models.EventRegistration
	err := row.Scan(
		&reg.ID,
		&reg.EventID,
		&reg.FirstName,
		&reg.LastName,
		&reg.Gender,
		&reg.Email,
		&reg.Status,
		&reg.CheckedIn,
		&reg.CheckedInAt,
		&reg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registrationRepository) getOne(ctx context.Context, op, id, query string, args ...any) (*models.EventRegistration, error) {
	reg, err := scanRegistration(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("failed to "+op, zap.Error(err), zap.String("registration_id", id))
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	return reg, nil
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*models.EventRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM event_registrations WHERE UPPER(id) = UPPER($1)`
	return r.getOne(ctx, "get registration", id, query, id)
}

func (r *registrationRepository) Create(ctx context.Context, reg *models.EventRegistration) (created *models.EventRegistration, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.Error("failed to begin registration", zap.Error(err), zap.Int64("event_id", reg.EventID))
		return nil, fmt.Errorf("failed to begin registration: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var capacity int
	err = tx.QueryRow(ctx, `SELECT capacity FROM events WHERE id = $1 FOR UPDATE`, reg.EventID).Scan(&capacity)
	if err != nil {
		r.logger.Error("failed to lock event", zap.Error(err), zap.Int64("event_id", reg.EventID))
		return nil, fmt.Errorf("failed to lock event: %w", err)
	}

	if capacity > 0 {
		var active int
		err = tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM event_registrations WHERE event_id = $1 AND status <> $2`,
			reg.EventID, models.RegistrationStatusRejected,
		).Scan(&active)
		if err != nil {
			r.logger.Error("failed to count registrations", zap.Error(err), zap.Int64("event_id", reg.EventID))
			return nil, fmt.Errorf("failed to count registrations: %w", err)
		}
		if active >= capacity {
			return nil, ErrCapacityReached
		}
	}

	query := `
		INSERT INTO event_registrations (id, event_id, first_name, last_name, gender, email, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + registrationColumns
	created, err = scanRegistration(tx.QueryRow(ctx, query,
		reg.ID, reg.EventID, reg.FirstName, reg.LastName, reg.Gender, reg.Email, reg.Status,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateRegistration
		}
		r.logger.Error("failed to create registration", zap.Error(err), zap.Int64("event_id", reg.EventID))
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		r.logger.Error("failed to commit registration", zap.Error(err), zap.Int64("event_id", reg.EventID))
		return nil, fmt.Errorf("failed to commit registration: %w", err)
	}
	return created, nil
}

func (r *registrationRepository) MarkCheckedIn(ctx context.Context, id string, at time.Time) (*models.EventRegistration, error) {
	query := `
		UPDATE event_registrations
		SET checked_in = TRUE, checked_in_at = $2
		WHERE UPPER(id) = UPPER($1) AND NOT checked_in
		RETURNING ` + registrationColumns
	return r.getOne(ctx, "check in registration", id, query, id, at)
}

func (r *registrationRepository) UpdateStatus(ctx context.Context, id, status string) (*models.EventRegistration, error) {
	query := `
		UPDATE event_registrations
		SET status = $2
		WHERE UPPER(id) = UPPER($1)
		RETURNING ` + registrationColumns
	return r.getOne(ctx, "update registration status", id, query, id, status)
}

func (r *registrationRepository) ListCheckedIn(ctx context.Context, eventID int64) ([]models.EventRegistration, error) {
	query := `SELECT ` + registrationColumns + `
		FROM event_registrations
		WHERE event_id = $1 AND checked_in
		ORDER BY checked_in_at DESC`

	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		r.logger.Error("failed to list check-ins", zap.Error(err), zap.Int64("event_id", eventID))
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}
	defer rows.Close()

	regs := []models.EventRegistration{}
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		regs = append(regs, *reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}
	return regs, nil
}
