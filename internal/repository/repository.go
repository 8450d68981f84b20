package repository

import (
	"context"

	"event-registry/internal/model"
)

// EventRepository owns the event record set. Ids are assigned by the repository,
// sequentially from 1, and never reused.
type EventRepository interface {
	// Create assigns the next id to event, stores it and returns the stored copy.
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	FindByID(ctx context.Context, id uint64) (*model.Event, error)
	Count(ctx context.Context) (uint64, error)
}

// RegistrationRepository owns the per-event registration sets and keeps each
// event's attendee counter equal to the size of its set.
type RegistrationRepository interface {
	// Register checks, in order, that the event exists, its window is open at now,
	// addr is not yet registered and holdsToken is set; then adds addr and bumps
	// the attendee counter. Check and mutation happen as one atomic step.
	Register(ctx context.Context, eventID uint64, addr model.Address, now int64, holdsToken bool) error
	IsRegistered(ctx context.Context, eventID uint64, addr model.Address) (bool, error)
}

// Store is a backend that holds both sets.
type Store interface {
	EventRepository
	RegistrationRepository
}
