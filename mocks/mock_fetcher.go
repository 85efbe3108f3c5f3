package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"volumegen/internal/domain"
)

// MockFetcher is a mock implementation of port.Fetcher.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, source string) (*domain.RawDocument, error) {
	args := m.Called(ctx, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RawDocument), args.Error(1)
}
