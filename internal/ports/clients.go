package ports

import (
	"context"

	"github.com/jsamuelsen11/crm-chat-relay/internal/domain/chat"
	"github.com/jsamuelsen11/crm-chat-relay/internal/domain/crm"
)

// CRMClient is the client port for the CRM REST API. Implemented by the
// Bitrix24 adapter, which owns method names, select lists and decoding of
// untyped result items. Filters and page caps are chosen by the caller.
//
// Every method fails with a typed domain error: *domain.ConfigurationError,
// *domain.TimeoutError, *domain.TransportError or *domain.RemoteAPIError.
type CRMClient interface {
	// ListTasks returns tasks matching filter, reading at most maxPages pages.
	ListTasks(ctx context.Context, filter crm.Filter, maxPages int, creds crm.Credentials) ([]crm.Task, error)

	// ListLeads returns leads matching filter, reading at most maxPages pages.
	ListLeads(ctx context.Context, filter crm.Filter, maxPages int, creds crm.Credentials) ([]crm.Lead, error)

	// ListDeals returns deals matching filter, reading at most maxPages pages.
	ListDeals(ctx context.Context, filter crm.Filter, maxPages int, creds crm.Credentials) ([]crm.Deal, error)

	// CurrentUser returns the user the credentials belong to.
	CurrentUser(ctx context.Context, creds crm.Credentials) (*crm.User, error)

	// ListUsers returns every portal user.
	ListUsers(ctx context.Context, creds crm.Credentials) ([]crm.User, error)
}

// LanguageModel answers free text in a single turn.
type LanguageModel interface {
	// Generate returns the model's answer. A policy block is reported in
	// Answer.BlockReason, not as an error. Expiry of the configured bound
	// is a *domain.TimeoutError.
	Generate(ctx context.Context, prompt string) (*chat.Answer, error)
}
