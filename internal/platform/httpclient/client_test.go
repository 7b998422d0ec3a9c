package httpclient_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/jsamuelsen11/crm-chat-relay/internal/platform/config"
	"github.com/jsamuelsen11/crm-chat-relay/internal/platform/httpclient"
	"github.com/jsamuelsen11/crm-chat-relay/internal/platform/telemetry"
)

func testConfig() *config.CRMConfig {
	return &config.CRMConfig{
		Timeout:  5 * time.Second,
		PageSize: 50,
		CircuitBreaker: config.CircuitBreakerConfig{
			MaxFailures:   3,
			Timeout:       time.Second,
			HalfOpenLimit: 1,
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func get(t *testing.T, ctx context.Context, c *httpclient.Client, url string) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	resp, err := c.Do(ctx, req)
	if resp != nil {
		t.Cleanup(func() { _ = resp.Body.Close() })
	}
	return resp, err
}

func TestDo_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(srv.Close)

	metrics, err := telemetry.NewMetrics(noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	client := httpclient.New(testConfig(), "bitrix", metrics, testLogger())

	resp, err := get(t, context.Background(), client, srv.URL+"/rest/user.current.json")
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Errorf("body = %q, want %q", string(body), "ok")
	}
}

func TestDo_NoRetryOnServerError(t *testing.T) {
	t.Parallel()

	var count atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		count.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	client := httpclient.New(testConfig(), "bitrix", nil, testLogger())

	resp, err := get(t, context.Background(), client, srv.URL)
	if err != nil {
		t.Fatalf("Do() error = %v, want nil with a 503 response", err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
	if got := count.Load(); got != 1 {
		t.Errorf("server hit %d times, want exactly 1", got)
	}
}

func TestDo_RequestIDHeader(t *testing.T) {
	t.Parallel()

	var gotID atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID.Store(r.Header.Get("X-Request-ID"))
	}))
	t.Cleanup(srv.Close)

	client := httpclient.New(testConfig(), "bitrix", nil, testLogger())
	ctx := httpclient.WithRequestID(context.Background(), "req-123")

	if _, err := get(t, ctx, client, srv.URL); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got := gotID.Load(); got != "req-123" {
		t.Errorf("X-Request-ID = %v, want req-123", got)
	}
}

func TestDo_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	cfg := testConfig()
	cfg.Timeout = 50 * time.Millisecond
	client := httpclient.New(cfg, "bitrix", nil, testLogger())

	_, err := get(t, context.Background(), client, srv.URL)
	if err == nil {
		t.Fatal("Do() error = nil, want timeout")
	}
}

func TestDo_CircuitBreakerOpens(t *testing.T) {
	t.Parallel()

	var count atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		count.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig()
	cfg.CircuitBreaker.MaxFailures = 1
	client := httpclient.New(cfg, "bitrix", nil, testLogger())

	_, _ = get(t, context.Background(), client, srv.URL)

	before := count.Load()
	_, err := get(t, context.Background(), client, srv.URL)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("error = %v, want gobreaker.ErrOpenState", err)
	}
	if count.Load() != before {
		t.Error("server was hit while circuit breaker should be open")
	}
}

func TestDo_ClientErrorsDoNotTripBreaker(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig()
	cfg.CircuitBreaker.MaxFailures = 1
	client := httpclient.New(cfg, "bitrix", nil, testLogger())

	for range 3 {
		if _, err := get(t, context.Background(), client, srv.URL); err != nil {
			t.Fatalf("Do() error = %v, want nil for 401", err)
		}
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() = %v, want nil after 4xx responses", err)
	}
}

func TestDo_CircuitBreakerRecovery(t *testing.T) {
	t.Parallel()

	var shouldFail atomic.Bool
	shouldFail.Store(true)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if shouldFail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig()
	cfg.CircuitBreaker.MaxFailures = 1
	cfg.CircuitBreaker.Timeout = 100 * time.Millisecond
	client := httpclient.New(cfg, "bitrix", nil, testLogger())

	_, _ = get(t, context.Background(), client, srv.URL)

	err := client.HealthCheck(context.Background())
	if err == nil || !strings.Contains(err.Error(), "failing") {
		t.Fatalf("HealthCheck() = %v, want open breaker", err)
	}

	time.Sleep(150 * time.Millisecond)

	err = client.HealthCheck(context.Background())
	if err == nil || !strings.Contains(err.Error(), "degraded") {
		t.Fatalf("HealthCheck() = %v, want half-open breaker", err)
	}

	shouldFail.Store(false)

	resp, err := get(t, context.Background(), client, srv.URL)
	if err != nil {
		t.Fatalf("Do() error = %v, want nil (circuit should recover)", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d after recovery", resp.StatusCode, http.StatusOK)
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() = %v, want nil after recovery", err)
	}
}

func TestDo_CanceledContextDoesNotTripBreaker(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	t.Cleanup(srv.Close)

	cfg := testConfig()
	cfg.CircuitBreaker.MaxFailures = 1
	client := httpclient.New(cfg, "bitrix", nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := get(t, ctx, client, srv.URL); err == nil {
		t.Fatal("Do() error = nil, want context error")
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() = %v, want nil after caller cancellation", err)
	}
}

func TestDo_RateLimitWaitPastDeadline(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		hits.Add(1)
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig()
	cfg.CircuitBreaker.MaxFailures = 1
	// One token, then the next one is minutes away.
	cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1}
	client := httpclient.New(cfg, "bitrix", nil, testLogger())

	if _, err := get(t, context.Background(), client, srv.URL); err != nil {
		t.Fatalf("first Do() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	t.Cleanup(cancel)

	_, err := get(t, ctx, client, srv.URL)
	if !errors.Is(err, httpclient.ErrRateLimitWait) {
		t.Errorf("errors.Is(err, ErrRateLimitWait) = false, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("errors.Is(err, context.DeadlineExceeded) = false, got %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hits = %d, want 1", got)
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() = %v, want nil after a limiter refusal", err)
	}
}

func TestClient_Name(t *testing.T) {
	t.Parallel()

	client := httpclient.New(testConfig(), "bitrix", nil, testLogger())

	if got := client.Name(); got != "bitrix" {
		t.Errorf("Name() = %q, want %q", got, "bitrix")
	}
}
