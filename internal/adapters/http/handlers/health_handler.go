package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jsamuelsen11/crm-chat-relay/internal/adapters/http/dto"
	"github.com/jsamuelsen11/crm-chat-relay/internal/ports"
)

const (
	statusAlive    = "ok"
	statusReady    = "ready"
	statusNotReady = "not_ready"

	// readinessTimeout keeps a probe from outliving the orchestrator's own.
	readinessTimeout = 2 * time.Second
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	registry ports.HealthRegistry
}

func NewHealthHandler(registry ports.HealthRegistry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

// Liveness answers 200 while the process is serving.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, dto.HealthResponse{Status: statusAlive})
}

// Readiness answers 503 while the portal circuit breaker is not closed, so
// traffic drains away from an instance that cannot reach the CRM.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	resp, healthy := dto.ToHealthResponse(h.registry.CheckAll(ctx), statusReady, statusNotReady)

	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, code, resp)
}
