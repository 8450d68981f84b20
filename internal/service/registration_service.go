package service

import (
	"context"
	"errors"

	"event-registry/internal/model"
	"event-registry/internal/repository"
	apperrors "event-registry/pkg/app_errors"
)

type RegistrationService interface {
	// CheckEligible runs the id, window and duplicate checks without mutating anything.
	CheckEligible(ctx context.Context, eventID uint64, caller model.Address, now int64) error
	// Register adds caller to the event's registration set. Checks run in the
	// order id, window, duplicate, token; the first failure is returned.
	Register(ctx context.Context, eventID uint64, caller model.Address, now int64, heldMembership bool) error
	IsRegistered(ctx context.Context, eventID uint64, addr model.Address) (bool, error)
}

type RegistrationServiceImpl struct {
	events repository.EventRepository
	repo   repository.RegistrationRepository
}

func NewRegistrationService(events repository.EventRepository, repo repository.RegistrationRepository) RegistrationService {
	return &RegistrationServiceImpl{events: events, repo: repo}
}

func (s *RegistrationServiceImpl) CheckEligible(ctx context.Context, eventID uint64, caller model.Address, now int64) error {
	if eventID == 0 {
		return apperrors.ErrInvalidEventID
	}

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, apperrors.ErrEventNotFound) {
			return apperrors.ErrInvalidEventID
		}
		return err
	}

	if event.WindowAt(now) == model.WindowElapsed {
		return apperrors.ErrRegistrationClosed
	}

	registered, err := s.repo.IsRegistered(ctx, eventID, caller)
	if err != nil {
		return err
	}
	if registered {
		return apperrors.ErrAlreadyRegistered
	}
	return nil
}

func (s *RegistrationServiceImpl) Register(ctx context.Context, eventID uint64, caller model.Address, now int64, heldMembership bool) error {
	if eventID == 0 {
		return apperrors.ErrInvalidEventID
	}
	return s.repo.Register(ctx, eventID, caller, now, heldMembership)
}

func (s *RegistrationServiceImpl) IsRegistered(ctx context.Context, eventID uint64, addr model.Address) (bool, error) {
	if eventID == 0 {
		return false, apperrors.ErrInvalidEventID
	}
	return s.repo.IsRegistered(ctx, eventID, addr)
}
