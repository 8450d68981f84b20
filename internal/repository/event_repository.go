package repository

import (
	"context"
	"errors"
	"fmt"

	"event-registry/internal/model"
	apperrors "event-registry/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &EventRepositoryImpl{
		pool: pool,
	}
}

// Create takes an exclusive table lock so ids stay gap-free; a sequence would
// burn a value on every rolled-back insert.
func (r *EventRepositoryImpl) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `LOCK TABLE events IN EXCLUSIVE MODE`); err != nil {
		return nil, fmt.Errorf("lock events: %w", err)
	}

	var nextID int64
	if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM events`).Scan(&nextID); err != nil {
		return nil, fmt.Errorf("next event id: %w", err)
	}

	speakers := event.Speakers
	if speakers == nil {
		speakers = []string{}
	}

	query := `
		INSERT INTO events (
			id, name, event_date, speakers, location_name, duration, end_date, attendees, is_completed
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, FALSE)
		RETURNING id, name, event_date, speakers, location_name, duration, end_date, attendees, is_completed
	`
	created, err := scanEvent(tx.QueryRow(ctx, query,
		nextID, event.EventName, event.EventDate, speakers,
		event.EventLocationName, event.Duration, event.EndDate,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *EventRepositoryImpl) FindByID(ctx context.Context, id uint64) (*model.Event, error) {
	query := `
		SELECT id, name, event_date, speakers, location_name, duration, end_date, attendees, is_completed
		FROM events
		WHERE id = $1
	`
	event, err := scanEvent(r.pool.QueryRow(ctx, query, int64(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (r *EventRepositoryImpl) Count(ctx context.Context) (uint64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		return 0, err
	}
	return uint64(count), nil
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var (
		event     model.Event
		id        int64
		attendees int64
	)
	err := row.Scan(
		&id,
		&event.EventName,
		&event.EventDate,
		&event.Speakers,
		&event.EventLocationName,
		&event.Duration,
		&event.EndDate,
		&attendees,
		&event.IsCompleted,
	)
	if err != nil {
		return nil, err
	}
	event.ID = uint64(id)
	event.Attendees = uint64(attendees)
	return &event, nil
}
