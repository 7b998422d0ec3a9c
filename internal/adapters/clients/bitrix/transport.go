package bitrix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/jsamuelsen11/crm-chat-relay/internal/domain"
	"github.com/jsamuelsen11/crm-chat-relay/internal/domain/crm"
	"github.com/jsamuelsen11/crm-chat-relay/internal/platform/httpclient"
)

// maxResponseSize bounds a decoded response body.
const maxResponseSize = 16 << 20

// Transport performs single REST calls against a portal. It never retries.
type Transport struct {
	client      *httpclient.Client
	webhookBase string
	scheme      string
	logger      *slog.Logger
}

// TransportOption customizes a Transport.
type TransportOption func(*Transport)

// WithPortalScheme sets the scheme used for per-request portal URLs.
// Portals are always https; tests point it at plain httptest servers.
func WithPortalScheme(scheme string) TransportOption {
	return func(t *Transport) {
		t.scheme = scheme
	}
}

// NewTransport creates a Transport. webhookBase is the static inbound
// webhook (may be empty when every caller supplies its own credentials).
func NewTransport(client *httpclient.Client, webhookBase string, logger *slog.Logger, opts ...TransportOption) *Transport {
	if webhookBase != "" && !strings.HasSuffix(webhookBase, "/") {
		webhookBase += "/"
	}
	t := &Transport{
		client:      client,
		webhookBase: webhookBase,
		scheme:      "https",
		logger:      logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Call invokes method with payload using verb (http.MethodPost sends JSON,
// http.MethodGet flattens payload into query parameters).
//
// Per-request credentials win over the static webhook. Failures are typed:
// *domain.ConfigurationError when neither is available, *domain.TimeoutError,
// *domain.TransportError for connection faults, non-2xx statuses and
// undecodable bodies, and *domain.RemoteAPIError when the envelope carries
// an error.
func (t *Transport) Call(ctx context.Context, method string, payload any, verb string, creds crm.Credentials) (*Envelope, error) {
	endpoint, err := t.endpoint(method, creds)
	if err != nil {
		return nil, err
	}

	req, err := t.newRequest(ctx, endpoint, payload, verb)
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", method, err)
	}

	resp, err := t.client.Do(ctx, req)
	if err != nil {
		callErr := translateCallError(method, err)
		t.logger.ErrorContext(ctx, "crm call failed",
			slog.String("method", method),
			slog.Any("error", callErr),
		)
		return nil, callErr
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			t.logger.WarnContext(ctx, "failed to close response body", slog.Any("error", cerr))
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		statusErr := translateStatus(method, resp)
		t.logger.ErrorContext(ctx, "crm call rejected",
			slog.String("method", method),
			slog.Int("status", resp.StatusCode),
			slog.Any("error", statusErr),
		)
		return nil, statusErr
	}

	var env Envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&env); err != nil {
		return nil, &domain.TransportError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%s: decoding response: %w", method, err),
		}
	}

	if err := remoteError(&env); err != nil {
		t.logger.WarnContext(ctx, "crm returned an error",
			slog.String("method", method),
			slog.Any("error", err),
		)
		return nil, err
	}

	return &env, nil
}

// endpoint builds the method URL from the credentials in effect.
func (t *Transport) endpoint(method string, creds crm.Credentials) (string, error) {
	if creds.PerRequest() {
		u := url.URL{
			Scheme:   t.scheme,
			Host:     strings.TrimSpace(creds.Domain),
			Path:     "/rest/" + method + ".json",
			RawQuery: url.Values{"auth": {strings.TrimSpace(creds.AuthToken)}}.Encode(),
		}
		return u.String(), nil
	}
	if t.webhookBase == "" {
		return "", &domain.ConfigurationError{
			Reason: "no static webhook configured and no AUTH_ID/DOMAIN received",
		}
	}
	return t.webhookBase + method + ".json", nil
}

func (t *Transport) newRequest(ctx context.Context, endpoint string, payload any, verb string) (*http.Request, error) {
	switch verb {
	case http.MethodGet:
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
		if err != nil {
			return nil, err
		}
		params, err := queryParams(payload)
		if err != nil {
			return nil, err
		}
		if len(params) > 0 {
			q := req.URL.Query()
			for k, vs := range params {
				for _, v := range vs {
					q.Add(k, v)
				}
			}
			req.URL.RawQuery = q.Encode()
		}
		return req, nil

	case http.MethodPost:
		if payload == nil {
			payload = map[string]any{}
		}
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshaling payload: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil

	default:
		return nil, fmt.Errorf("unsupported verb %q", verb)
	}
}

// queryParams flattens payload the way the REST API reads query strings:
// maps become key[sub]=v, lists become key[]=v.
func queryParams(payload any) (url.Values, error) {
	if payload == nil {
		return nil, nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling payload: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree map[string]any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("payload must be a JSON object: %w", err)
	}

	values := url.Values{}
	for _, k := range sortedKeys(tree) {
		flatten(values, k, tree[k])
	}
	return values, nil
}

func flatten(values url.Values, key string, v any) {
	switch val := v.(type) {
	case map[string]any:
		for _, k := range sortedKeys(val) {
			flatten(values, key+"["+k+"]", val[k])
		}
	case []any:
		for _, item := range val {
			flatten(values, key+"[]", item)
		}
	case nil:
		values.Add(key, "")
	case string:
		values.Add(key, val)
	case json.Number:
		values.Add(key, val.String())
	case bool:
		values.Add(key, strconv.FormatBool(val))
	default:
		values.Add(key, fmt.Sprint(val))
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
