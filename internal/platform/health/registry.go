// Package health provides the registry behind the readiness probe. The
// relay registers its outbound clients here at startup.
package health

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen11/crm-chat-relay/internal/ports"
)

var _ ports.HealthRegistry = (*Registry)(nil)

// maxConcurrentChecks bounds how many checks run at once on a probe.
const maxConcurrentChecks = 4

// Registry is a concurrency-safe [ports.HealthRegistry]. Checks run in
// parallel on each probe.
type Registry struct {
	mu       sync.RWMutex
	checkers []ports.HealthChecker
}

// New creates an empty health check registry.
func New() *Registry {
	return &Registry{}
}

// Register adds a health checker. Safe for concurrent use.
func (r *Registry) Register(checker ports.HealthChecker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers = append(r.checkers, checker)
}

// CheckAll runs every registered check and returns results keyed by name.
// When two checkers share a name the later registration wins.
func (r *Registry) CheckAll(ctx context.Context) map[string]error {
	r.mu.RLock()
	checkers := make([]ports.HealthChecker, len(r.checkers))
	copy(checkers, r.checkers)
	r.mu.RUnlock()

	errs := make([]error, len(checkers))

	var g errgroup.Group
	g.SetLimit(maxConcurrentChecks)
	for i, c := range checkers {
		g.Go(func() error {
			errs[i] = c.HealthCheck(ctx)
			return nil
		})
	}
	_ = g.Wait()

	results := make(map[string]error, len(checkers))
	for i, c := range checkers {
		results[c.Name()] = errs[i]
	}
	return results
}
