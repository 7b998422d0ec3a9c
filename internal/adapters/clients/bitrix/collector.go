package bitrix

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/metric"

	"github.com/jsamuelsen11/crm-chat-relay/internal/domain"
	"github.com/jsamuelsen11/crm-chat-relay/internal/domain/crm"
	"github.com/jsamuelsen11/crm-chat-relay/internal/platform/telemetry"
)

// DefaultPageSize is the portal's fixed list page size.
const DefaultPageSize = 50

// caller is the part of Transport the collector needs.
type caller interface {
	Call(ctx context.Context, method string, payload any, verb string, creds crm.Credentials) (*Envelope, error)
}

// Collector walks a paginated list method and accumulates its items.
type Collector struct {
	transport caller
	metrics   *telemetry.Metrics
	logger    *slog.Logger
}

// NewCollector creates a Collector over transport. metrics may be nil.
func NewCollector(transport caller, metrics *telemetry.Metrics, logger *slog.Logger) *Collector {
	return &Collector{transport: transport, metrics: metrics, logger: logger}
}

type listPayload struct {
	Filter crm.Filter `json:"filter"`
	Select crm.Select `json:"select"`
	Start  int        `json:"start"`
}

// Collect fetches up to req.MaxPages pages of req.Method and returns the
// items in server order. Each page contributes at most req.PageSize items,
// so the result never exceeds PageSize*MaxPages. Reaching the page cap is
// not an error. Any failed page fails the whole collection with that
// page's error.
//
// PageSize <= 0 means DefaultPageSize; MaxPages <= 0 collects nothing.
func (c *Collector) Collect(ctx context.Context, req crm.ListRequest, creds crm.Credentials) ([]crm.Item, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	filter := req.Filter
	if filter == nil {
		filter = crm.Filter{}
	}
	sel := req.Select
	if sel == nil {
		sel = crm.Select{}
	}

	var (
		items  []crm.Item
		cursor int
	)
	for pages := 0; pages < req.MaxPages; pages++ {
		env, err := c.transport.Call(ctx, req.Method, listPayload{Filter: filter, Select: sel, Start: cursor}, http.MethodPost, creds)
		if err != nil {
			return nil, err
		}
		c.countPage(ctx, req.Method)

		batch, err := extractBatch(env)
		if err != nil {
			return nil, err
		}
		if len(batch) > pageSize {
			batch = batch[:pageSize]
		}
		items = append(items, batch...)

		if !env.HasNext() {
			break
		}
		cursor = *env.Next
	}

	c.logger.DebugContext(ctx, "crm list collected",
		slog.String("method", req.Method),
		slog.Int("items", len(items)),
	)
	return items, nil
}

func (c *Collector) countPage(ctx context.Context, method string) {
	if c.metrics == nil {
		return
	}
	c.metrics.CRMPagesTotal.Add(ctx, 1, metric.WithAttributes(telemetry.AttrCRMMethod.String(method)))
}

// extractBatch reads the page items from the result member. The result may
// be a list, or an object wrapping the list under "tasks" or "items";
// anything else is an empty page. Entries that are not objects are skipped.
func extractBatch(env *Envelope) ([]crm.Item, error) {
	var result any
	if err := env.decodeResult(&result); err != nil {
		return nil, &domain.TransportError{Err: fmt.Errorf("decoding result: %w", err)}
	}

	var list []any
	switch r := result.(type) {
	case []any:
		list = r
	case map[string]any:
		if tasks, ok := r["tasks"].([]any); ok {
			list = tasks
		} else if items, ok := r["items"].([]any); ok {
			list = items
		}
	}

	batch := make([]crm.Item, 0, len(list))
	for _, entry := range list {
		if obj, ok := entry.(map[string]any); ok {
			batch = append(batch, crm.Item(obj))
		}
	}
	return batch, nil
}
