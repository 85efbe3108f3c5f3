package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockOutputSink is a mock implementation of port.OutputSink.
type MockOutputSink struct {
	mock.Mock
}

func (m *MockOutputSink) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockOutputSink) Write(ctx context.Context, data []byte) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}
