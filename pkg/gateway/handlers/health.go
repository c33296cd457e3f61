package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/gateway"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/limits"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/providers"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	limiter  *limits.Limiter
	registry map[string]providers.Provider
}

// NewHealthHandler creates the probe handler.
func NewHealthHandler(limiter *limits.Limiter, registry map[string]providers.Provider) *HealthHandler {
	return &HealthHandler{
		limiter:  limiter,
		registry: registry,
	}
}

// healthStatus is the probe response body.
type healthStatus struct {
	Status    string            `json:"status"`
	Providers map[string]string `json:"providers,omitempty"`
}

// Liveness always reports ok while the process can serve requests.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	gateway.WriteJSON(w, http.StatusOK, healthStatus{Status: "ok"})
}

// Readiness reports ok only when the quota store is reachable. Provider
// health is reported but advisory: a single unhealthy upstream degrades
// that provider's requests, not the whole gateway.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := healthStatus{
		Status:    "ok",
		Providers: make(map[string]string, len(h.registry)),
	}
	for name, provider := range h.registry {
		if provider.IsHealthy() {
			status.Providers[name] = "healthy"
		} else {
			status.Providers[name] = "unhealthy"
		}
	}

	if err := h.limiter.Ping(ctx); err != nil {
		status.Status = "unavailable"
		gateway.WriteJSON(w, http.StatusServiceUnavailable, status)
		return
	}

	gateway.WriteJSON(w, http.StatusOK, status)
}
