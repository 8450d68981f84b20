package repository

import (
	"context"
	"sync"

	"event-registry/internal/model"
	apperrors "event-registry/pkg/app_errors"
)

// MemoryStore keeps the whole registry in one aggregate guarded by one lock.
type MemoryStore struct {
	mu            sync.RWMutex
	nextID        uint64
	events        map[uint64]*model.Event
	registrations map[uint64]map[model.Address]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:        1,
		events:        make(map[uint64]*model.Event),
		registrations: make(map[uint64]map[model.Address]int64),
	}
}

func (s *MemoryStore) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := event.Clone()
	stored.ID = s.nextID
	stored.Attendees = 0
	stored.IsCompleted = false
	if stored.Speakers == nil {
		stored.Speakers = []string{}
	}

	s.events[stored.ID] = stored
	s.registrations[stored.ID] = make(map[model.Address]int64)
	s.nextID++

	return stored.Clone(), nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id uint64) (*model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	return event.Clone(), nil
}

func (s *MemoryStore) Count(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.events)), nil
}

func (s *MemoryStore) Register(ctx context.Context, eventID uint64, addr model.Address, now int64, holdsToken bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[eventID]
	if !ok {
		return apperrors.ErrInvalidEventID
	}
	if event.WindowAt(now) == model.WindowElapsed {
		return apperrors.ErrRegistrationClosed
	}
	set := s.registrations[eventID]
	if _, dup := set[addr]; dup {
		return apperrors.ErrAlreadyRegistered
	}
	if !holdsToken {
		return apperrors.ErrMissingRequiredToken
	}

	set[addr] = now
	event.Attendees++
	return nil
}

func (s *MemoryStore) IsRegistered(ctx context.Context, eventID uint64, addr model.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.registrations[eventID]
	if !ok {
		return false, apperrors.ErrInvalidEventID
	}
	_, registered := set[addr]
	return registered, nil
}
