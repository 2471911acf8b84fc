package mocks

import (
	"context"

	"github.com/amirasaad/atm/pkg/domain/events"
	"github.com/amirasaad/atm/pkg/eventbus"
	"github.com/stretchr/testify/mock"
)

// MockBus is a mock of eventbus.Bus.
type MockBus struct {
	mock.Mock
}

// NewMockBus creates a MockBus whose expectations are asserted on cleanup.
func NewMockBus(t cleanupT) *MockBus {
	m := &MockBus{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockBus) Emit(ctx context.Context, evt events.Event) error {
	return m.Called(ctx, evt).Error(0)
}

func (m *MockBus) Register(eventType events.EventType, handler eventbus.HandlerFunc) {
	m.Called(eventType, handler)
}

var _ eventbus.Bus = (*MockBus)(nil)
