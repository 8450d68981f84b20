package service

import (
	"context"

	"event-registry/internal/model"
	"event-registry/internal/repository"
	"event-registry/internal/validation"
	apperrors "event-registry/pkg/app_errors"
)

type EventService interface {
	// Create is restricted to the owner; the record's EndDate is now + Duration.
	Create(ctx context.Context, caller model.Address, params model.CreateEventParams, now int64) (*model.Event, error)
	Get(ctx context.Context, id uint64) (*model.Event, error)
	Count(ctx context.Context) (uint64, error)
}

type EventServiceImpl struct {
	repo  repository.EventRepository
	owner model.Address
}

func NewEventService(repo repository.EventRepository, owner model.Address) EventService {
	return &EventServiceImpl{repo: repo, owner: owner}
}

func (s *EventServiceImpl) Create(ctx context.Context, caller model.Address, params model.CreateEventParams, now int64) (*model.Event, error) {
	if caller != s.owner {
		return nil, apperrors.ErrNotOwner
	}

	err := validation.ValidateCreation(params.EventName, params.EventDate, params.EventLocationName, params.Duration, now)
	if err != nil {
		return nil, err
	}

	event := &model.Event{
		EventName:         params.EventName,
		EventDate:         params.EventDate,
		Speakers:          params.Speakers,
		EventLocationName: params.EventLocationName,
		Duration:          params.Duration,
		EndDate:           now + params.Duration,
	}
	return s.repo.Create(ctx, event)
}

func (s *EventServiceImpl) Get(ctx context.Context, id uint64) (*model.Event, error) {
	if id == 0 {
		return nil, apperrors.ErrEventNotFound
	}
	return s.repo.FindByID(ctx, id)
}

func (s *EventServiceImpl) Count(ctx context.Context) (uint64, error) {
	return s.repo.Count(ctx)
}
