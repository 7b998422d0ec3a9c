package bitrix

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/crm-chat-relay/internal/domain"
	"github.com/jsamuelsen11/crm-chat-relay/internal/domain/crm"
	"github.com/jsamuelsen11/crm-chat-relay/internal/platform/httpclient"
	"github.com/jsamuelsen11/crm-chat-relay/internal/ports"
)

var _ ports.CRMClient = (*Client)(nil)

// maxUserPages caps the user directory walk.
const maxUserPages = 100

// Client is the outbound adapter for the Bitrix24 REST API. It implements
// [ports.CRMClient]: list methods go through the [Collector], single calls
// straight through the [Transport], and result items are decoded into
// domain records by the lenient translators.
type Client struct {
	transport *Transport
	collector *Collector
	http      *httpclient.Client
	pageSize  int
	logger    *slog.Logger
}

// NewClient wires a Client over an instrumented HTTP client.
func NewClient(transport *Transport, collector *Collector, httpClient *httpclient.Client, pageSize int, logger *slog.Logger) *Client {
	return &Client{
		transport: transport,
		collector: collector,
		http:      httpClient,
		pageSize:  pageSize,
		logger:    logger,
	}
}

// ListTasks collects tasks.task.list.
func (c *Client) ListTasks(ctx context.Context, filter crm.Filter, maxPages int, creds crm.Credentials) ([]crm.Task, error) {
	items, err := c.collector.Collect(ctx, c.listRequest(crm.MethodTaskList, filter, taskSelect, maxPages), creds)
	if err != nil {
		return nil, err
	}
	return toTasks(items), nil
}

// ListLeads collects crm.lead.list.
func (c *Client) ListLeads(ctx context.Context, filter crm.Filter, maxPages int, creds crm.Credentials) ([]crm.Lead, error) {
	items, err := c.collector.Collect(ctx, c.listRequest(crm.MethodLeadList, filter, leadSelect, maxPages), creds)
	if err != nil {
		return nil, err
	}
	return toLeads(items), nil
}

// ListDeals collects crm.deal.list.
func (c *Client) ListDeals(ctx context.Context, filter crm.Filter, maxPages int, creds crm.Credentials) ([]crm.Deal, error) {
	items, err := c.collector.Collect(ctx, c.listRequest(crm.MethodDealList, filter, dealSelect, maxPages), creds)
	if err != nil {
		return nil, err
	}
	return toDeals(items), nil
}

// CurrentUser calls user.current with GET.
func (c *Client) CurrentUser(ctx context.Context, creds crm.Credentials) (*crm.User, error) {
	env, err := c.transport.Call(ctx, crm.MethodUserCurrent, nil, http.MethodGet, creds)
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := env.decodeResult(&result); err != nil {
		return nil, &domain.TransportError{Err: fmt.Errorf("%s: decoding result: %w", crm.MethodUserCurrent, err)}
	}
	user := toUser(result)
	return &user, nil
}

// ListUsers walks user.get with GET until a page comes back empty or no
// next cursor is announced.
func (c *Client) ListUsers(ctx context.Context, creds crm.Credentials) ([]crm.User, error) {
	var (
		users []crm.User
		start int
	)
	for range maxUserPages {
		env, err := c.transport.Call(ctx, crm.MethodUserGet, map[string]any{"start": start}, http.MethodGet, creds)
		if err != nil {
			return nil, err
		}

		batch, err := extractBatch(env)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		for _, item := range batch {
			users = append(users, toUser(item))
		}

		if !env.HasNext() {
			break
		}
		start = *env.Next
	}
	return users, nil
}

// Name identifies the client in readiness output.
func (c *Client) Name() string {
	return c.http.Name()
}

// HealthCheck reports the portal's availability from the circuit breaker
// state. No request is sent.
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.http.HealthCheck(ctx)
}

func (c *Client) listRequest(method string, filter crm.Filter, sel crm.Select, maxPages int) crm.ListRequest {
	return crm.ListRequest{
		Method:   method,
		Filter:   filter,
		Select:   sel,
		PageSize: c.pageSize,
		MaxPages: maxPages,
	}
}
