package health_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen11/crm-chat-relay/internal/platform/health"
	"github.com/jsamuelsen11/crm-chat-relay/mocks"
)

func TestCheckAll_Empty(t *testing.T) {
	t.Parallel()

	results := health.New().CheckAll(context.Background())

	if results == nil {
		t.Fatal("expected non-nil map, got nil")
	}
	if len(results) != 0 {
		t.Errorf("expected empty map, got %d entries", len(results))
	}
}

func TestCheckAll_MixedHealth(t *testing.T) {
	t.Parallel()

	healthy := mocks.NewMockHealthChecker(t)
	healthy.On("Name").Return("gemini")
	healthy.On("HealthCheck", mock.Anything).Return(nil)

	unhealthy := mocks.NewMockHealthChecker(t)
	unhealthy.On("Name").Return("bitrix")
	unhealthy.On("HealthCheck", mock.Anything).Return(errors.New("circuit breaker is open"))

	r := health.New()
	r.Register(healthy)
	r.Register(unhealthy)

	results := r.CheckAll(context.Background())

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results["gemini"] != nil {
		t.Errorf("gemini check = %v, want nil", results["gemini"])
	}
	if results["bitrix"] == nil || results["bitrix"].Error() != "circuit breaker is open" {
		t.Errorf("bitrix check = %v, want circuit breaker error", results["bitrix"])
	}
}

func TestCheckAll_ContextPropagated(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	checker := mocks.NewMockHealthChecker(t)
	checker.On("Name").Return("bitrix")
	checker.On("HealthCheck", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() != nil
	})).Return(context.Canceled)

	r := health.New()
	r.Register(checker)

	if got := r.CheckAll(ctx)["bitrix"]; !errors.Is(got, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", got)
	}
}

func TestCheckAll_DuplicateNames_LastWriteWins(t *testing.T) {
	t.Parallel()

	first := mocks.NewMockHealthChecker(t)
	first.On("Name").Return("bitrix")
	first.On("HealthCheck", mock.Anything).Return(nil)

	secondErr := errors.New("second failure")
	second := mocks.NewMockHealthChecker(t)
	second.On("Name").Return("bitrix")
	second.On("HealthCheck", mock.Anything).Return(secondErr)

	r := health.New()
	r.Register(first)
	r.Register(second)

	results := r.CheckAll(context.Background())

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if !errors.Is(results["bitrix"], secondErr) {
		t.Errorf("bitrix check = %v, want %v (from last registered checker)", results["bitrix"], secondErr)
	}
}

// rendezvousChecker blocks until every peer has started, so CheckAll only
// returns if checks run concurrently.
type rendezvousChecker struct {
	name  string
	ready *sync.WaitGroup
}

func (c rendezvousChecker) Name() string { return c.name }

func (c rendezvousChecker) HealthCheck(ctx context.Context) error {
	c.ready.Done()
	done := make(chan struct{})
	go func() {
		c.ready.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestCheckAll_RunsConcurrently(t *testing.T) {
	t.Parallel()

	var ready sync.WaitGroup
	ready.Add(2)

	r := health.New()
	r.Register(rendezvousChecker{name: "a", ready: &ready})
	r.Register(rendezvousChecker{name: "b", ready: &ready})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for name, err := range r.CheckAll(ctx) {
		if err != nil {
			t.Errorf("%s check = %v, want nil (checks did not overlap)", name, err)
		}
	}
}

func TestCheckAll_ConcurrentSafety(t *testing.T) {
	t.Parallel()

	r := health.New()

	var wg sync.WaitGroup
	const goroutines = 50

	for i := range goroutines {
		wg.Add(1)
		if i%2 == 0 {
			go func() {
				defer wg.Done()
				c := mocks.NewMockHealthChecker(t)
				c.On("Name").Return("checker").Maybe()
				c.On("HealthCheck", mock.Anything).Return(nil).Maybe()
				r.Register(c)
			}()
		} else {
			go func() {
				defer wg.Done()
				r.CheckAll(context.Background())
			}()
		}
	}

	wg.Wait()
}
