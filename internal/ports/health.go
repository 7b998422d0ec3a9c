package ports

import "context"

// HealthChecker is implemented by any component that can report its health,
// such as the CRM client's circuit breaker.
type HealthChecker interface {
	// Name identifies the component in readiness output (e.g. "bitrix").
	Name() string

	// HealthCheck returns nil when healthy. It must respect ctx.
	HealthCheck(ctx context.Context) error
}

// HealthRegistry manages registration and execution of health checkers.
type HealthRegistry interface {
	Register(checker HealthChecker)

	// CheckAll runs every check and returns results keyed by name. Nil
	// values are healthy.
	CheckAll(ctx context.Context) map[string]error
}
