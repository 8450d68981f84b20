package mocks

import (
	"context"

	"event-registry/internal/model"

	"github.com/stretchr/testify/mock"
)

type RegistryServiceMock struct {
	mock.Mock
}

func NewRegistryServiceMock() *RegistryServiceMock {
	return &RegistryServiceMock{}
}

func (m *RegistryServiceMock) Owner() model.Address {
	args := m.Called()
	return args.Get(0).(model.Address)
}

func (m *RegistryServiceMock) RequiredMembershipCollection() model.Address {
	args := m.Called()
	return args.Get(0).(model.Address)
}

func (m *RegistryServiceMock) CreateEvent(ctx context.Context, caller model.Address, params model.CreateEventParams) (uint64, error) {
	args := m.Called(ctx, caller, params)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *RegistryServiceMock) RegisterForEvent(ctx context.Context, caller model.Address, eventID uint64) error {
	args := m.Called(ctx, caller, eventID)
	return args.Error(0)
}

func (m *RegistryServiceMock) EventCount(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *RegistryServiceMock) EventByID(ctx context.Context, eventID uint64) (*model.Event, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *RegistryServiceMock) WindowState(ctx context.Context, eventID uint64) (model.WindowState, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(model.WindowState), args.Error(1)
}

func (m *RegistryServiceMock) IsRegistered(ctx context.Context, eventID uint64, addr model.Address) (bool, error) {
	args := m.Called(ctx, eventID, addr)
	return args.Bool(0), args.Error(1)
}
