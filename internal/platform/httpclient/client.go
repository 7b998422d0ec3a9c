// Package httpclient provides the instrumented HTTP client used for CRM
// calls: circuit breaker, rate limiter, request-ID propagation and
// OpenTelemetry client spans and metrics.
//
// Each call goes through
//
//	Circuit Breaker → Rate Limiter → Header Injection → OTEL Span → HTTP
//
// exactly once. The client never retries; a failed call is reported to the
// caller as is.
//
//	client := httpclient.New(&cfg.CRM, "bitrix", metrics, logger)
//	resp, err := client.Do(ctx, req)
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/jsamuelsen11/crm-chat-relay/internal/platform/config"
	"github.com/jsamuelsen11/crm-chat-relay/internal/platform/telemetry"
)

const headerRequestID = "X-Request-ID"

type requestIDKey struct{}

// WithRequestID stores the inbound request ID so outbound calls carry it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// errServerStatus marks 5xx and 429 responses so the breaker counts them as
// failures. It never reaches the caller: Do returns the response instead.
var errServerStatus = errors.New("server status")

// ErrRateLimitWait marks a call abandoned while waiting for the rate limiter.
// When the wait would outlast the context deadline the error also matches
// context.DeadlineExceeded.
var ErrRateLimitWait = errors.New("rate limit wait aborted")

// Client is an instrumented HTTP client for one downstream service.
type Client struct {
	httpClient  *http.Client
	serviceName string
	breaker     *gobreaker.CircuitBreaker[*http.Response]
	limiter     *rate.Limiter // nil when rate limiting is disabled
	metrics     *telemetry.Metrics
	logger      *slog.Logger
}

// New creates a client for the service named serviceName (used in spans,
// metrics and health output). metrics may be nil.
func New(cfg *config.CRMConfig, serviceName string, metrics *telemetry.Metrics, logger *slog.Logger) *Client {
	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        serviceName,
		MaxRequests: toUint32(cfg.CircuitBreaker.HalfOpenLimit),
		Timeout:     cfg.CircuitBreaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return int(counts.ConsecutiveFailures) >= cfg.CircuitBreaker.MaxFailures
		},
		// A caller giving up, or a call that never left the limiter, says
		// nothing about the downstream.
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled) || errors.Is(err, ErrRateLimitWait)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	var limiter *rate.Limiter
	if cfg.RateLimit.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
	}

	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		serviceName: serviceName,
		breaker:     cb,
		limiter:     limiter,
		metrics:     metrics,
		logger:      logger,
	}
}

// Do sends req once. On any HTTP response, including 4xx and 5xx, resp is
// non-nil with an open body the caller must close and err is nil. err is
// non-nil only when no response was obtained: network failure, timeout,
// cancellation, rate-limit wait aborted (ErrRateLimitWait), or an open
// breaker (gobreaker.ErrOpenState / gobreaker.ErrTooManyRequests).
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()
	method := req.Method

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		if err := c.waitForRateLimit(ctx); err != nil {
			return nil, err
		}

		c.injectHeaders(ctx, req)

		spanCtx, span := c.startSpan(ctx, req)
		defer span.End()

		resp, err := c.httpClient.Do(req.WithContext(spanCtx))
		c.finishSpan(span, resp, err)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return resp, fmt.Errorf("%s returned %d: %w", c.serviceName, resp.StatusCode, errServerStatus)
		}
		return resp, nil
	})
	if errors.Is(err, errServerStatus) {
		err = nil
	}

	c.recordMetrics(ctx, method, start, resp, err)

	if err != nil && resp != nil {
		_ = resp.Body.Close()
		resp = nil
	}
	return resp, err
}

// Name returns the downstream service identifier.
func (c *Client) Name() string {
	return c.serviceName
}

// HealthCheck reports downstream availability from the breaker state
// without making a network call.
func (c *Client) HealthCheck(_ context.Context) error {
	switch state := c.breaker.State(); state {
	case gobreaker.StateClosed:
		return nil
	case gobreaker.StateHalfOpen:
		return fmt.Errorf("%s: degraded (circuit breaker half-open)", c.serviceName)
	case gobreaker.StateOpen:
		return fmt.Errorf("%s: failing (circuit breaker open)", c.serviceName)
	default:
		return fmt.Errorf("%s: unknown circuit breaker state %v", c.serviceName, state)
	}
}

func (c *Client) waitForRateLimit(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	err := c.limiter.Wait(ctx)
	if err == nil {
		return nil
	}
	// rate.Limiter refuses up front a wait that would pass the deadline,
	// with an error that does not wrap context.DeadlineExceeded.
	if _, ok := ctx.Deadline(); ok && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		err = fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
	}
	return fmt.Errorf("%s: %w: %w", c.serviceName, ErrRateLimitWait, err)
}

func (c *Client) injectHeaders(ctx context.Context, req *http.Request) {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		req.Header.Set(headerRequestID, id)
	}
}

// startSpan opens a client span and injects W3C trace context into req.
// The URL path is recorded without its query string because CRM tokens
// travel there.
func (c *Client) startSpan(ctx context.Context, req *http.Request) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer("httpclient")

	ctx, span := tracer.Start(ctx, fmt.Sprintf("HTTP %s %s", req.Method, c.serviceName),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("url.path", req.URL.Path),
			attribute.String("peer.service", c.serviceName),
		),
	)

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	return ctx, span
}

func (c *Client) finishSpan(span trace.Span, resp *http.Response, err error) {
	if resp != nil {
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
		if resp.StatusCode >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, resp.Status)
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// recordMetrics runs outside the breaker so open-circuit rejections are
// counted too.
func (c *Client) recordMetrics(ctx context.Context, method string, start time.Time, resp *http.Response, err error) {
	if c.metrics == nil {
		return
	}

	statusCode := 0
	result := "error"
	if resp != nil {
		statusCode = resp.StatusCode
		if statusCode < http.StatusBadRequest {
			result = "success"
		}
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		result = "circuit_open"
	}

	attrs := metric.WithAttributes(
		telemetry.AttrHTTPMethod.String(method),
		telemetry.AttrHTTPStatus.Int(statusCode),
		telemetry.AttrPeerService.String(c.serviceName),
		telemetry.AttrResult.String(result),
	)

	c.metrics.ClientRequestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	c.metrics.ClientRequestTotal.Add(ctx, 1, attrs)
}

// toUint32 clamps v into the uint32 range; negatives become zero.
func toUint32(v int) uint32 {
	if v <= 0 {
		return 0
	}
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}
