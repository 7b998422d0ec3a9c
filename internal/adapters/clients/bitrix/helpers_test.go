package bitrix

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/jsamuelsen11/crm-chat-relay/internal/platform/config"
	"github.com/jsamuelsen11/crm-chat-relay/internal/platform/httpclient"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// newTestHTTPClient returns an httpclient.Client tuned for fast tests.
func newTestHTTPClient(t *testing.T, timeout time.Duration) *httpclient.Client {
	t.Helper()

	cfg := &config.CRMConfig{
		Timeout:  timeout,
		PageSize: DefaultPageSize,
		CircuitBreaker: config.CircuitBreakerConfig{
			MaxFailures:   5,
			Timeout:       30 * time.Second,
			HalfOpenLimit: 1,
		},
	}
	return httpclient.New(cfg, "bitrix-test", nil, testLogger())
}

// portalHost strips the scheme from an httptest server URL.
func portalHost(t *testing.T, rawURL string) string {
	t.Helper()

	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("parsing %q: %v", rawURL, err)
	}
	return u.Host
}

// writeJSON encodes v as JSON to the response writer, failing the test on error.
func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}
