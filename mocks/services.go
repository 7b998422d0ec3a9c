package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen11/crm-chat-relay/internal/domain/chat"
	"github.com/jsamuelsen11/crm-chat-relay/internal/domain/crm"
)

// MockChatService is a mock ports.ChatService.
type MockChatService struct {
	mock.Mock
}

// NewMockChatService creates a MockChatService bound to t.
func NewMockChatService(t mock.TestingT) *MockChatService {
	m := &MockChatService{}
	m.Test(t)
	if c, ok := t.(interface{ Cleanup(func()) }); ok {
		c.Cleanup(func() { m.AssertExpectations(t) })
	}
	return m
}

func (m *MockChatService) Reply(ctx context.Context, msg chat.Message) string {
	return m.Called(ctx, msg).String(0)
}

// MockQueryService is a mock ports.QueryService.
type MockQueryService struct {
	mock.Mock
}

// NewMockQueryService creates a MockQueryService bound to t.
func NewMockQueryService(t mock.TestingT) *MockQueryService {
	m := &MockQueryService{}
	m.Test(t)
	if c, ok := t.(interface{ Cleanup(func()) }); ok {
		c.Cleanup(func() { m.AssertExpectations(t) })
	}
	return m
}

func (m *MockQueryService) TasksByAssignee(ctx context.Context, userID string, limit int, creds crm.Credentials) ([]string, error) {
	args := m.Called(ctx, userID, limit, creds)
	lines, _ := args.Get(0).([]string)
	return lines, args.Error(1)
}

func (m *MockQueryService) OpenLeadsByOwner(ctx context.Context, ownerID string, limit int, creds crm.Credentials) ([]string, error) {
	args := m.Called(ctx, ownerID, limit, creds)
	lines, _ := args.Get(0).([]string)
	return lines, args.Error(1)
}

func (m *MockQueryService) DealsByAssignee(ctx context.Context, userID string, limit int, creds crm.Credentials) ([]string, error) {
	args := m.Called(ctx, userID, limit, creds)
	lines, _ := args.Get(0).([]string)
	return lines, args.Error(1)
}

// MockDirectoryService is a mock ports.DirectoryService.
type MockDirectoryService struct {
	mock.Mock
}

// NewMockDirectoryService creates a MockDirectoryService bound to t.
func NewMockDirectoryService(t mock.TestingT) *MockDirectoryService {
	m := &MockDirectoryService{}
	m.Test(t)
	if c, ok := t.(interface{ Cleanup(func()) }); ok {
		c.Cleanup(func() { m.AssertExpectations(t) })
	}
	return m
}

func (m *MockDirectoryService) ListUsers(ctx context.Context, creds crm.Credentials) ([]crm.User, error) {
	args := m.Called(ctx, creds)
	users, _ := args.Get(0).([]crm.User)
	return users, args.Error(1)
}

func (m *MockDirectoryService) WhoAmI(ctx context.Context, creds crm.Credentials) (*crm.User, error) {
	args := m.Called(ctx, creds)
	user, _ := args.Get(0).(*crm.User)
	return user, args.Error(1)
}

func (m *MockDirectoryService) Identify(ctx context.Context, creds crm.Credentials) string {
	return m.Called(ctx, creds).String(0)
}
