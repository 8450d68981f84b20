package service_test

import (
	"testing"

	"event-registry/internal/clock"
	"event-registry/internal/membership"
	"event-registry/internal/model"
	"event-registry/internal/queue"
	"event-registry/internal/repository"
	"event-registry/internal/service"
)

// startTime sits before the Comicon event date so creation passes the future-date check.
const startTime = int64(1726358400)

var (
	owner      = model.MustParseAddress("0x00000000000000000000000000000000000000aa")
	attendee   = model.MustParseAddress("0x00000000000000000000000000000000000000b1")
	other      = model.MustParseAddress("0x00000000000000000000000000000000000000c2")
	collection = model.MustParseAddress("0x2C0457F82B57148e8363b4589bb3294b23AE7625")
)

type registryFixture struct {
	registry service.RegistryService
	store    *repository.MemoryStore
	clock    *clock.ManualClock
	checker  *membership.StaticChecker
	queue    queue.NotificationQueue
}

func newRegistryFixture(t *testing.T) *registryFixture {
	t.Helper()

	store := repository.NewMemoryStore()
	clk := clock.NewManualClock(startTime)
	checker := membership.NewStaticChecker(attendee)
	q := queue.NewNotificationQueue(1024)

	registry := service.NewRegistryService(
		owner,
		collection,
		service.NewEventService(store, owner),
		service.NewRegistrationService(store, store),
		checker,
		clk,
		q,
	)

	return &registryFixture{
		registry: registry,
		store:    store,
		clock:    clk,
		checker:  checker,
		queue:    q,
	}
}

func comicon() model.CreateEventParams {
	return model.CreateEventParams{
		EventName:         "Comicon",
		EventDate:         1726780800,
		Speakers:          []string{"Kevin", "Jordan"},
		EventLocationName: "The zone",
		Duration:          259200,
	}
}
