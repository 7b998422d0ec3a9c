package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen11/crm-chat-relay/internal/domain/chat"
	"github.com/jsamuelsen11/crm-chat-relay/internal/domain/crm"
)

// MockCRMClient is a mock ports.CRMClient.
type MockCRMClient struct {
	mock.Mock
}

// NewMockCRMClient creates a MockCRMClient bound to t.
func NewMockCRMClient(t mock.TestingT) *MockCRMClient {
	m := &MockCRMClient{}
	m.Test(t)
	if c, ok := t.(interface{ Cleanup(func()) }); ok {
		c.Cleanup(func() { m.AssertExpectations(t) })
	}
	return m
}

func (m *MockCRMClient) ListTasks(ctx context.Context, filter crm.Filter, maxPages int, creds crm.Credentials) ([]crm.Task, error) {
	args := m.Called(ctx, filter, maxPages, creds)
	tasks, _ := args.Get(0).([]crm.Task)
	return tasks, args.Error(1)
}

func (m *MockCRMClient) ListLeads(ctx context.Context, filter crm.Filter, maxPages int, creds crm.Credentials) ([]crm.Lead, error) {
	args := m.Called(ctx, filter, maxPages, creds)
	leads, _ := args.Get(0).([]crm.Lead)
	return leads, args.Error(1)
}

func (m *MockCRMClient) ListDeals(ctx context.Context, filter crm.Filter, maxPages int, creds crm.Credentials) ([]crm.Deal, error) {
	args := m.Called(ctx, filter, maxPages, creds)
	deals, _ := args.Get(0).([]crm.Deal)
	return deals, args.Error(1)
}

func (m *MockCRMClient) CurrentUser(ctx context.Context, creds crm.Credentials) (*crm.User, error) {
	args := m.Called(ctx, creds)
	user, _ := args.Get(0).(*crm.User)
	return user, args.Error(1)
}

func (m *MockCRMClient) ListUsers(ctx context.Context, creds crm.Credentials) ([]crm.User, error) {
	args := m.Called(ctx, creds)
	users, _ := args.Get(0).([]crm.User)
	return users, args.Error(1)
}

// MockLanguageModel is a mock ports.LanguageModel.
type MockLanguageModel struct {
	mock.Mock
}

// NewMockLanguageModel creates a MockLanguageModel bound to t.
func NewMockLanguageModel(t mock.TestingT) *MockLanguageModel {
	m := &MockLanguageModel{}
	m.Test(t)
	if c, ok := t.(interface{ Cleanup(func()) }); ok {
		c.Cleanup(func() { m.AssertExpectations(t) })
	}
	return m
}

func (m *MockLanguageModel) Generate(ctx context.Context, prompt string) (*chat.Answer, error) {
	args := m.Called(ctx, prompt)
	answer, _ := args.Get(0).(*chat.Answer)
	return answer, args.Error(1)
}
