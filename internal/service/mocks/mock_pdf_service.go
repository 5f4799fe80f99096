package mocks

import (
	"context"

	"pdfgate/internal/model"
	"pdfgate/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockPDFService struct {
	mock.Mock
}

func (m *MockPDFService) Serve(ctx context.Context, configID, entryID string, actx *model.AuthorizationContext) (*service.ServeResult, error) {
	args := m.Called(ctx, configID, entryID, actx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ServeResult), args.Error(1)
}

func (m *MockPDFService) ListForEntry(ctx context.Context, entryID string, actx *model.AuthorizationContext) ([]service.EntryDocument, error) {
	args := m.Called(ctx, entryID, actx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.EntryDocument), args.Error(1)
}

func (m *MockPDFService) ResolveLegacyLink(ctx context.Context, entryID, templateID string, positionalIndex int) (string, error) {
	args := m.Called(ctx, entryID, templateID, positionalIndex)
	return args.String(0), args.Error(1)
}

func (m *MockPDFService) NotificationAttachments(ctx context.Context, entry *model.Entry, notificationID string) ([]model.DocumentConfiguration, error) {
	args := m.Called(ctx, entry, notificationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentConfiguration), args.Error(1)
}
