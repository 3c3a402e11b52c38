package services

import (
	"context"
	"time"

	portssvc "github.com/SscSPs/payflow_backend/internal/core/ports/services"
)

type healthService struct {
	ping    func(ctx context.Context) error
	gate    portssvc.AuthorizationGate
	timeout time.Duration
}

// NewHealthService reports the store (required) and the authorization gate (informational).
// ping may be nil for stores without a connection.
func NewHealthService(ping func(ctx context.Context) error, gate portssvc.AuthorizationGate) portssvc.HealthSvc {
	return &healthService{ping: ping, gate: gate, timeout: 3 * time.Second}
}

func (h *healthService) Ready(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	status := map[string]string{"database": "up", "authorizer": "up"}
	ready := true
	if h.ping != nil {
		if err := h.ping(ctx); err != nil {
			status["database"] = "down"
			ready = false
		}
	}
	if h.gate == nil || !h.gate.IsAvailable(ctx) {
		status["authorizer"] = "down"
	}
	return status, ready
}
