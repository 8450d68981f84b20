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

type RegistrationRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewRegistrationRepository(pool *pgxpool.Pool) RegistrationRepository {
	return &RegistrationRepositoryImpl{
		pool: pool,
	}
}

// Register locks the event row for the rest of the transaction, which
// serializes every registration attempt against the same event.
func (r *RegistrationRepositoryImpl) Register(ctx context.Context, eventID uint64, addr model.Address, now int64, holdsToken bool) error {
	if eventID == 0 {
		return apperrors.ErrInvalidEventID
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var endDate int64
	err = tx.QueryRow(ctx, `SELECT end_date FROM events WHERE id = $1 FOR UPDATE`, int64(eventID)).Scan(&endDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrInvalidEventID
		}
		return fmt.Errorf("lock event: %w", err)
	}

	if now >= endDate {
		return apperrors.ErrRegistrationClosed
	}

	registered, err := isRegistered(ctx, tx, eventID, addr)
	if err != nil {
		return err
	}
	if registered {
		return apperrors.ErrAlreadyRegistered
	}

	if !holdsToken {
		return apperrors.ErrMissingRequiredToken
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO event_registrations (event_id, address, registered_at)
		VALUES ($1, $2, $3)
	`, int64(eventID), addr.String(), now)
	if err != nil {
		return fmt.Errorf("failed to insert registration: %w", err)
	}

	result, err := tx.Exec(ctx, `UPDATE events SET attendees = attendees + 1 WHERE id = $1`, int64(eventID))
	if err != nil {
		return fmt.Errorf("failed to increment attendees: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrInvalidEventID
	}

	return tx.Commit(ctx)
}

func (r *RegistrationRepositoryImpl) IsRegistered(ctx context.Context, eventID uint64, addr model.Address) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, int64(eventID)).Scan(&exists)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, apperrors.ErrInvalidEventID
	}
	return isRegistered(ctx, r.pool, eventID, addr)
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func isRegistered(ctx context.Context, q querier, eventID uint64, addr model.Address) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM event_registrations
			WHERE event_id = $1 AND address = $2
		)
	`
	var registered bool
	if err := q.QueryRow(ctx, query, int64(eventID), addr.String()).Scan(&registered); err != nil {
		return false, err
	}
	return registered, nil
}

// PostgresStore pairs the two pgx repositories into a single backend.
type PostgresStore struct {
	EventRepository
	RegistrationRepository
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		EventRepository:        NewEventRepository(pool),
		RegistrationRepository: NewRegistrationRepository(pool),
	}
}
