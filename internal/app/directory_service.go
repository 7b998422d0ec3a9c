package app

import (
	"context"
	"log/slog"

	"github.com/jsamuelsen11/crm-chat-relay/internal/domain/crm"
	"github.com/jsamuelsen11/crm-chat-relay/internal/ports"
)

// Compile-time check that DirectoryService implements ports.DirectoryService.
var _ ports.DirectoryService = (*DirectoryService)(nil)

// DirectoryService answers who-is-who questions against the portal's user
// directory.
type DirectoryService struct {
	crm    ports.CRMClient
	logger *slog.Logger
}

// NewDirectoryService creates a DirectoryService. A nil logger discards output.
func NewDirectoryService(client ports.CRMClient, logger *slog.Logger) *DirectoryService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DirectoryService{crm: client, logger: logger}
}

// ListUsers returns every portal user.
func (s *DirectoryService) ListUsers(ctx context.Context, creds crm.Credentials) ([]crm.User, error) {
	users, err := s.crm.ListUsers(ctx, creds)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list users",
			slog.String("operation", "ListUsers"),
			slog.Any("error", err),
		)
		return nil, err
	}
	return users, nil
}

// WhoAmI returns the user the credentials belong to.
func (s *DirectoryService) WhoAmI(ctx context.Context, creds crm.Credentials) (*crm.User, error) {
	user, err := s.crm.CurrentUser(ctx, creds)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to resolve current user",
			slog.String("operation", "WhoAmI"),
			slog.Any("error", err),
		)
		return nil, err
	}
	return user, nil
}

// Identify resolves the caller's id from per-request credentials. Lookup
// failures are logged and reported as "".
func (s *DirectoryService) Identify(ctx context.Context, creds crm.Credentials) string {
	if !creds.PerRequest() {
		return ""
	}

	user, err := s.crm.CurrentUser(ctx, creds)
	if err != nil {
		s.logger.WarnContext(ctx, "self-identification failed",
			slog.String("operation", "Identify"),
			slog.Any("error", err),
		)
		return ""
	}
	return user.ID
}
