package mocks

import (
	"context"
	"io"

	"pdfgate/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, cfg *model.DocumentConfiguration, entry *model.Entry) (io.ReadCloser, error) {
	args := m.Called(ctx, cfg, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}
