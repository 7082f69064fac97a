package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"museum-backend/models"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type EventRepository interface {
	Create(ctx context.Context, req models.CreateEventRequest) (*models.Event, error)
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	// List returns one page of events and the total number matching the filter.
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*models.Event, error)
}

type eventRepository struct {
	db     DB
	logger *zap.Logger
}

func NewEventRepository(db DB, logger *zap.Logger) EventRepository {
	return &eventRepository{
		db:     db,
		logger: logger,
	}
}

const eventColumns = `id, title, description, location, image_url, starts_at, capacity, require_approval, status, created_at, updated_at`

func scanEvent(row scanner) (*models.Event, error) {
	var e models.Event
	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Description,
		&e.Location,
		&e.ImageURL,
		&e.StartsAt,
		&e.Capacity,
		&e.RequireApproval,
		&e.Status,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *eventRepository) Create(ctx context.Context, req models.CreateEventRequest) (*models.Event, error) {
	query := `
		INSERT INTO events (title, description, location, image_url, starts_at, capacity, require_approval, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + eventColumns

	e, err := scanEvent(r.db.QueryRow(ctx, query,
		req.Title,
		optional(req.Description),
		optional(req.Location),
		optional(req.ImageURL),
		req.StartsAt,
		req.Capacity,
		req.RequireApproval,
		models.EventStatusDraft,
	))
	if err != nil {
		r.logger.Error("failed to create event", zap.Error(err), zap.String("title", req.Title))
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return e, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	e, err := scanEvent(r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("failed to get event", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += " AND status = $" + strconv.Itoa(len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM events`+where, args...).Scan(&total); err != nil {
		r.logger.Error("failed to count events", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	query := `SELECT ` + eventColumns + ` FROM events` + where +
		" ORDER BY starts_at DESC NULLS LAST, id DESC" +
		" LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list events", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	return events, total, nil
}

func (r *eventRepository) UpdateStatus(ctx context.Context, id int64, status string) (*models.Event, error) {
	query := `
		UPDATE events
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + eventColumns

	e, err := scanEvent(r.db.QueryRow(ctx, query, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("failed to update event status", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to update event status: %w", err)
	}
	return e, nil
}
