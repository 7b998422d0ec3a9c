package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen11/crm-chat-relay/internal/domain"
	"github.com/jsamuelsen11/crm-chat-relay/internal/domain/crm"
	"github.com/jsamuelsen11/crm-chat-relay/mocks"
)

func TestDirectoryService_ListUsers(t *testing.T) {
	t.Parallel()

	t.Run("returns users", func(t *testing.T) {
		t.Parallel()
		client := mocks.NewMockCRMClient(t)
		svc := NewDirectoryService(client, discardLogger())

		client.On("ListUsers", mock.Anything, noCreds).Return([]crm.User{{ID: "1", Name: "Ana"}}, nil)

		got, err := svc.ListUsers(context.Background(), noCreds)
		if err != nil {
			t.Fatalf("ListUsers() error = %v", err)
		}
		if len(got) != 1 || got[0].FullName() != "Ana" {
			t.Errorf("ListUsers() = %v", got)
		}
	})

	t.Run("propagates configuration error", func(t *testing.T) {
		t.Parallel()
		client := mocks.NewMockCRMClient(t)
		svc := NewDirectoryService(client, discardLogger())

		client.On("ListUsers", mock.Anything, noCreds).Return(nil, &domain.ConfigurationError{Reason: "no webhook"})

		_, err := svc.ListUsers(context.Background(), noCreds)
		if !errors.Is(err, domain.ErrConfiguration) {
			t.Errorf("ListUsers() error = %v, want ErrConfiguration", err)
		}
	})
}

func TestDirectoryService_WhoAmI(t *testing.T) {
	t.Parallel()
	client := mocks.NewMockCRMClient(t)
	svc := NewDirectoryService(client, nil)

	client.On("CurrentUser", mock.Anything, portalCtx).Return(&crm.User{ID: "42", Name: "Ana", LastName: "García"}, nil)

	got, err := svc.WhoAmI(context.Background(), portalCtx)
	if err != nil {
		t.Fatalf("WhoAmI() error = %v", err)
	}
	if got.ID != "42" || got.FullName() != "Ana García" {
		t.Errorf("WhoAmI() = %+v", got)
	}
}

func TestDirectoryService_Identify(t *testing.T) {
	t.Parallel()

	t.Run("incomplete credentials skip the lookup", func(t *testing.T) {
		t.Parallel()
		client := mocks.NewMockCRMClient(t)
		svc := NewDirectoryService(client, discardLogger())

		for _, creds := range []crm.Credentials{{}, {AuthToken: "tok"}, {Domain: "x.bitrix24.es"}} {
			if got := svc.Identify(context.Background(), creds); got != "" {
				t.Errorf("Identify(%+v) = %q, want empty", creds, got)
			}
		}
		client.AssertNotCalled(t, "CurrentUser", mock.Anything, mock.Anything)
	})

	t.Run("resolves id", func(t *testing.T) {
		t.Parallel()
		client := mocks.NewMockCRMClient(t)
		svc := NewDirectoryService(client, discardLogger())

		client.On("CurrentUser", mock.Anything, portalCtx).Return(&crm.User{ID: "42"}, nil)

		if got := svc.Identify(context.Background(), portalCtx); got != "42" {
			t.Errorf("Identify() = %q, want 42", got)
		}
	})

	t.Run("lookup failure is swallowed", func(t *testing.T) {
		t.Parallel()
		client := mocks.NewMockCRMClient(t)
		svc := NewDirectoryService(client, discardLogger())

		client.On("CurrentUser", mock.Anything, portalCtx).Return(nil, &domain.TransportError{Status: 401})

		if got := svc.Identify(context.Background(), portalCtx); got != "" {
			t.Errorf("Identify() = %q, want empty", got)
		}
	})
}
