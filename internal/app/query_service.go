// Package app provides application services that orchestrate use cases by
// coordinating between domain logic and infrastructure through port interfaces.
package app

import (
	"context"
	"log/slog"

	"github.com/jsamuelsen11/crm-chat-relay/internal/domain"
	"github.com/jsamuelsen11/crm-chat-relay/internal/domain/crm"
	"github.com/jsamuelsen11/crm-chat-relay/internal/ports"
)

// Compile-time check that QueryService implements ports.QueryService.
var _ ports.QueryService = (*QueryService)(nil)

const (
	// DefaultDisplayLimit is the number of lines shown when no limit is given.
	DefaultDisplayLimit = 15

	listMaxPages     = 5
	fallbackMaxPages = 2
)

// QueryService implements ports.QueryService. It builds the fixed filters
// for each query, reads typed records through the CRMClient port, and
// renders them as chat lines. Errors are returned typed and unchanged.
type QueryService struct {
	crm    ports.CRMClient
	logger *slog.Logger
}

// NewQueryService creates a QueryService over the CRM client port. A nil
// logger discards output.
func NewQueryService(client ports.CRMClient, logger *slog.Logger) *QueryService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &QueryService{crm: client, logger: logger}
}

// TasksByAssignee returns the in-progress tasks of userID, one line each.
func (s *QueryService) TasksByAssignee(ctx context.Context, userID string, limit int, creds crm.Credentials) ([]string, error) {
	if userID == "" {
		return nil, &domain.MissingIdentityError{Op: "TasksByAssignee"}
	}

	filter := crm.Filter{"RESPONSIBLE_ID": userID, "STATUS": crm.TaskStatusInProgress}
	tasks, err := s.crm.ListTasks(ctx, filter, listMaxPages, creds)
	if err != nil {
		s.logFailure(ctx, "TasksByAssignee", err)
		return nil, err
	}

	return labels(truncate(tasks, limit)), nil
}

// OpenLeadsByOwner returns leads still being worked. ownerID may be empty,
// in which case leads of every owner are listed. When the semantic status
// filter finds nothing, each literal fallback status is queried in turn and
// the results are concatenated in that order.
func (s *QueryService) OpenLeadsByOwner(ctx context.Context, ownerID string, limit int, creds crm.Credentials) ([]string, error) {
	filter := crm.Filter{"STATUS_SEMANTIC_ID": crm.LeadSemanticInProcess}
	if ownerID != "" {
		filter["ASSIGNED_BY_ID"] = ownerID
	}

	leads, err := s.crm.ListLeads(ctx, filter, listMaxPages, creds)
	if err != nil {
		s.logFailure(ctx, "OpenLeadsByOwner", err)
		return nil, err
	}

	if len(leads) == 0 {
		s.logger.DebugContext(ctx, "semantic lead filter empty, trying literal statuses")
		for _, status := range crm.LeadFallbackStatuses {
			fallback := crm.Filter{"STATUS_ID": status}
			if ownerID != "" {
				fallback["ASSIGNED_BY_ID"] = ownerID
			}
			more, err := s.crm.ListLeads(ctx, fallback, fallbackMaxPages, creds)
			if err != nil {
				s.logFailure(ctx, "OpenLeadsByOwner", err)
				return nil, err
			}
			leads = append(leads, more...)
		}
	}

	return labels(truncate(leads, limit)), nil
}

// DealsByAssignee returns the deals assigned to userID, one line each.
func (s *QueryService) DealsByAssignee(ctx context.Context, userID string, limit int, creds crm.Credentials) ([]string, error) {
	if userID == "" {
		return nil, &domain.MissingIdentityError{Op: "DealsByAssignee"}
	}

	deals, err := s.crm.ListDeals(ctx, crm.Filter{"ASSIGNED_BY_ID": userID}, listMaxPages, creds)
	if err != nil {
		s.logFailure(ctx, "DealsByAssignee", err)
		return nil, err
	}

	return labels(truncate(deals, limit)), nil
}

func (s *QueryService) logFailure(ctx context.Context, op string, err error) {
	s.logger.ErrorContext(ctx, "crm query failed",
		slog.String("operation", op),
		slog.Any("error", err),
	)
}

type labeler interface {
	Label() string
}

func labels[T labeler](records []T) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Label()
	}
	return out
}

// truncate keeps the first limit records; limit <= 0 means DefaultDisplayLimit.
func truncate[T any](records []T, limit int) []T {
	if limit <= 0 {
		limit = DefaultDisplayLimit
	}
	if len(records) > limit {
		return records[:limit]
	}
	return records
}
