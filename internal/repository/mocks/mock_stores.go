package mocks

import (
	"context"

	"pdfgate/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockConfigStore struct {
	mock.Mock
}

func (m *MockConfigStore) Get(ctx context.Context, formID, configID string) (*model.DocumentConfiguration, error) {
	args := m.Called(ctx, formID, configID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentConfiguration), args.Error(1)
}

func (m *MockConfigStore) GetAll(ctx context.Context, formID string) ([]model.DocumentConfiguration, error) {
	args := m.Called(ctx, formID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentConfiguration), args.Error(1)
}

func (m *MockConfigStore) Update(ctx context.Context, formID string, cfg *model.DocumentConfiguration) error {
	args := m.Called(ctx, formID, cfg)
	return args.Error(0)
}

func (m *MockConfigStore) Delete(ctx context.Context, formID, configID string) error {
	args := m.Called(ctx, formID, configID)
	return args.Error(0)
}

type MockEntryStore struct {
	mock.Mock
}

func (m *MockEntryStore) Get(ctx context.Context, entryID string) (*model.Entry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Entry), args.Error(1)
}

type MockCapabilityStore struct {
	mock.Mock
}

func (m *MockCapabilityStore) HasCapability(ctx context.Context, userID, capability string) (bool, error) {
	args := m.Called(ctx, userID, capability)
	return args.Bool(0), args.Error(1)
}
