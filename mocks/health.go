package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen11/crm-chat-relay/internal/ports"
)

// MockHealthChecker is a mock ports.HealthChecker.
type MockHealthChecker struct {
	mock.Mock
}

// NewMockHealthChecker creates a MockHealthChecker bound to t.
func NewMockHealthChecker(t mock.TestingT) *MockHealthChecker {
	m := &MockHealthChecker{}
	m.Test(t)
	if c, ok := t.(interface{ Cleanup(func()) }); ok {
		c.Cleanup(func() { m.AssertExpectations(t) })
	}
	return m
}

func (m *MockHealthChecker) Name() string {
	return m.Called().String(0)
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockHealthRegistry is a mock ports.HealthRegistry.
type MockHealthRegistry struct {
	mock.Mock
}

// NewMockHealthRegistry creates a MockHealthRegistry bound to t.
func NewMockHealthRegistry(t mock.TestingT) *MockHealthRegistry {
	m := &MockHealthRegistry{}
	m.Test(t)
	if c, ok := t.(interface{ Cleanup(func()) }); ok {
		c.Cleanup(func() { m.AssertExpectations(t) })
	}
	return m
}

func (m *MockHealthRegistry) Register(checker ports.HealthChecker) {
	m.Called(checker)
}

func (m *MockHealthRegistry) CheckAll(ctx context.Context) map[string]error {
	args := m.Called(ctx)
	results, _ := args.Get(0).(map[string]error)
	return results
}
