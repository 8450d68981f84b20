package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"event-registry/internal/clock"
	"event-registry/internal/membership"
	"event-registry/internal/model"
	"event-registry/internal/queue"
	apperrors "event-registry/pkg/app_errors"
	"event-registry/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const publishTimeout = 2 * time.Second

// RegistryService is the single entry point of the registry.
type RegistryService interface {
	Owner() model.Address
	RequiredMembershipCollection() model.Address
	// CreateEvent returns the new event's id.
	CreateEvent(ctx context.Context, caller model.Address, params model.CreateEventParams) (uint64, error)
	// RegisterForEvent registers caller if the event exists, its window is
	// open, caller is not yet registered and caller holds a membership token.
	RegisterForEvent(ctx context.Context, caller model.Address, eventID uint64) error
	EventCount(ctx context.Context) (uint64, error)
	EventByID(ctx context.Context, eventID uint64) (*model.Event, error)
	WindowState(ctx context.Context, eventID uint64) (model.WindowState, error)
	IsRegistered(ctx context.Context, eventID uint64, addr model.Address) (bool, error)
}

type RegistryServiceImpl struct {
	owner         model.Address
	collection    model.Address
	events        EventService
	registrations RegistrationService
	membership    membership.Checker
	clock         clock.Clock
	notifications queue.NotificationQueue
}

// NewRegistryService wires the registry. collection is fixed for the lifetime
// of the returned service. notifications may be nil.
func NewRegistryService(
	owner model.Address,
	collection model.Address,
	events EventService,
	registrations RegistrationService,
	checker membership.Checker,
	clk clock.Clock,
	notifications queue.NotificationQueue,
) RegistryService {
	return &RegistryServiceImpl{
		owner:         owner,
		collection:    collection,
		events:        events,
		registrations: registrations,
		membership:    checker,
		clock:         clk,
		notifications: notifications,
	}
}

func (s *RegistryServiceImpl) Owner() model.Address {
	return s.owner
}

func (s *RegistryServiceImpl) RequiredMembershipCollection() model.Address {
	return s.collection
}

func (s *RegistryServiceImpl) CreateEvent(ctx context.Context, caller model.Address, params model.CreateEventParams) (uint64, error) {
	now := s.clock.Now()

	event, err := s.events.Create(ctx, caller, params, now)
	if err != nil {
		return 0, err
	}

	s.publish(ctx, model.NotificationEventCreated, event.ID, caller, now)
	return event.ID, nil
}

// RegisterForEvent pre-checks eligibility before asking the membership
// collaborator, so doomed attempts never reach it; the ledger then re-runs
// every check atomically with the membership answer.
func (s *RegistryServiceImpl) RegisterForEvent(ctx context.Context, caller model.Address, eventID uint64) error {
	now := s.clock.Now()

	if err := s.registrations.CheckEligible(ctx, eventID, caller, now); err != nil {
		return err
	}

	held, err := s.membership.HoldsToken(ctx, s.collection, caller)
	if err != nil {
		if errors.Is(err, apperrors.ErrCollaboratorUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", apperrors.ErrCollaboratorUnavailable, err)
	}

	if err := s.registrations.Register(ctx, eventID, caller, now, held); err != nil {
		return err
	}

	s.publish(ctx, model.NotificationRegistered, eventID, caller, now)
	return nil
}

func (s *RegistryServiceImpl) EventCount(ctx context.Context) (uint64, error) {
	return s.events.Count(ctx)
}

func (s *RegistryServiceImpl) EventByID(ctx context.Context, eventID uint64) (*model.Event, error) {
	return s.events.Get(ctx, eventID)
}

func (s *RegistryServiceImpl) WindowState(ctx context.Context, eventID uint64) (model.WindowState, error) {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return "", err
	}
	return event.WindowAt(s.clock.Now()), nil
}

func (s *RegistryServiceImpl) IsRegistered(ctx context.Context, eventID uint64, addr model.Address) (bool, error) {
	return s.registrations.IsRegistered(ctx, eventID, addr)
}

// publish is best effort: the mutation is already committed, so a failure is only logged.
func (s *RegistryServiceImpl) publish(ctx context.Context, kind model.NotificationKind, eventID uint64, addr model.Address, now int64) {
	if s.notifications == nil {
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	n := &model.Notification{
		ID:        uuid.New().String(),
		Kind:      kind,
		EventID:   eventID,
		Address:   addr,
		Timestamp: now,
	}
	if err := s.notifications.Publish(pubCtx, n); err != nil {
		logger.WithComponent("service").Warn("failed to publish notification",
			zap.String("kind", string(kind)),
			zap.Uint64("event_id", eventID),
			zap.Error(err),
		)
	}
}
