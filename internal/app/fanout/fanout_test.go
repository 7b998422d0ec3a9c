package fanout_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jsamuelsen11/crm-chat-relay/internal/app/fanout"
)

var errPortal = errors.New("portal unavailable")

func TestRun(t *testing.T) {
	t.Parallel()

	upper := func(_ context.Context, s string) (string, error) {
		if s == "" {
			return "", errPortal
		}
		return strings.ToUpper(s), nil
	}

	tests := []struct {
		name       string
		workers    int
		items      []string
		wantValues []string
		wantErrAt  map[int]bool
	}{
		{name: "empty input", workers: 2, items: nil, wantValues: []string{}},
		{name: "all succeed", workers: 2, items: []string{"tasks", "leads", "deals"}, wantValues: []string{"TASKS", "LEADS", "DEALS"}},
		{name: "one branch fails", workers: 2, items: []string{"tasks", "", "deals"}, wantValues: []string{"TASKS", "", "DEALS"}, wantErrAt: map[int]bool{1: true}},
		{name: "more workers than items", workers: 100, items: []string{"a", "b"}, wantValues: []string{"A", "B"}},
		{name: "non-positive workers", workers: 0, items: []string{"a", "b"}, wantValues: []string{"A", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			results := fanout.Run(context.Background(), tt.workers, tt.items, upper)

			if results == nil {
				t.Fatal("Run returned nil, want non-nil slice")
			}
			if len(results) != len(tt.wantValues) {
				t.Fatalf("len(results) = %d, want %d", len(results), len(tt.wantValues))
			}
			for i, r := range results {
				if r.Value != tt.wantValues[i] {
					t.Errorf("results[%d].Value = %q, want %q", i, r.Value, tt.wantValues[i])
				}
				if gotErr := r.Err != nil; gotErr != tt.wantErrAt[i] {
					t.Errorf("results[%d].Err = %v, want error %v", i, r.Err, tt.wantErrAt[i])
				}
			}
		})
	}
}

func TestRun_OrderIndependentOfCompletion(t *testing.T) {
	t.Parallel()

	delays := []time.Duration{30 * time.Millisecond, 0, 15 * time.Millisecond}

	results := fanout.Run(context.Background(), len(delays), delays, func(_ context.Context, d time.Duration) (time.Duration, error) {
		time.Sleep(d)
		return d, nil
	})

	for i, r := range results {
		if r.Value != delays[i] {
			t.Errorf("results[%d].Value = %v, want %v", i, r.Value, delays[i])
		}
	}
}

func TestRun_BoundedConcurrency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		workers  int
		wantPeak int32
	}{
		{name: "three workers", workers: 3, wantPeak: 3},
		{name: "zero means one", workers: 0, wantPeak: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var active, peak atomic.Int32
			items := make([]int, 12)

			fanout.Run(context.Background(), tt.workers, items, func(_ context.Context, _ int) (int, error) {
				cur := active.Add(1)
				defer active.Add(-1)
				for {
					p := peak.Load()
					if cur <= p || peak.CompareAndSwap(p, cur) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				return 0, nil
			})

			if p := peak.Load(); p > tt.wantPeak {
				t.Errorf("peak concurrency = %d, want at most %d", p, tt.wantPeak)
			}
		})
	}
}

func TestRun_SkipsItemsAfterCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	results := fanout.Run(ctx, 1, []int{1, 2, 3}, func(_ context.Context, n int) (int, error) {
		calls.Add(1)
		if n == 1 {
			cancel()
		}
		return n, nil
	})

	if results[0].Err != nil || results[0].Value != 1 {
		t.Errorf("results[0] = %+v, want the first item to complete", results[0])
	}
	for i := 1; i < len(results); i++ {
		if !errors.Is(results[i].Err, context.Canceled) {
			t.Errorf("results[%d].Err = %v, want context.Canceled", i, results[i].Err)
		}
	}
	if c := calls.Load(); c != 1 {
		t.Errorf("fn called %d times, want 1", c)
	}
}

func TestRun_HeterogeneousBranches(t *testing.T) {
	t.Parallel()

	branches := []func(context.Context) ([]string, error){
		func(context.Context) ([]string, error) {
			time.Sleep(10 * time.Millisecond)
			return []string{"Llamar cliente (ID: 1)"}, nil
		},
		func(context.Context) ([]string, error) { return nil, errPortal },
	}

	results := fanout.Run(context.Background(), 2, branches, func(ctx context.Context, b func(context.Context) ([]string, error)) ([]string, error) {
		return b(ctx)
	})

	if len(results[0].Value) != 1 || results[0].Err != nil {
		t.Errorf("results[0] = %+v, want one line", results[0])
	}
	if !errors.Is(results[1].Err, errPortal) {
		t.Errorf("results[1].Err = %v, want errPortal", results[1].Err)
	}
}
