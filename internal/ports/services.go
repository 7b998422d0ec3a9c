package ports

import (
	"context"

	"github.com/jsamuelsen11/crm-chat-relay/internal/domain/chat"
	"github.com/jsamuelsen11/crm-chat-relay/internal/domain/crm"
)

// ChatService turns one inbound chat message into one reply. It never
// fails: every error is rendered into the reply text.
type ChatService interface {
	Reply(ctx context.Context, msg chat.Message) string
}

// QueryService runs the CRM queries behind the chat intents and returns
// display lines, truncated to limit after collection.
type QueryService interface {
	// TasksByAssignee returns in-progress tasks of userID.
	// Returns *domain.MissingIdentityError when userID is empty.
	TasksByAssignee(ctx context.Context, userID string, limit int, creds crm.Credentials) ([]string, error)

	// OpenLeadsByOwner returns leads still in process, optionally restricted
	// to ownerID. Falls back to literal status codes when the semantic
	// status filter finds nothing.
	OpenLeadsByOwner(ctx context.Context, ownerID string, limit int, creds crm.Credentials) ([]string, error)

	// DealsByAssignee returns deals assigned to userID.
	// Returns *domain.MissingIdentityError when userID is empty.
	DealsByAssignee(ctx context.Context, userID string, limit int, creds crm.Credentials) ([]string, error)
}

// DirectoryService exposes portal user lookups.
type DirectoryService interface {
	ListUsers(ctx context.Context, creds crm.Credentials) ([]crm.User, error)
	WhoAmI(ctx context.Context, creds crm.Credentials) (*crm.User, error)

	// Identify resolves the caller's user id from per-request credentials.
	// It returns "" when credentials are incomplete or the lookup fails.
	Identify(ctx context.Context, creds crm.Credentials) string
}
