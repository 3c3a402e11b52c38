package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/payflow_backend/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestHealthService_Ready(t *testing.T) {
	tests := []struct {
		name      string
		pingErr   error
		gateUp    bool
		wantReady bool
		want      map[string]string
	}{
		{"all up", nil, true, true, map[string]string{"database": "up", "authorizer": "up"}},
		{"gate down is informational", nil, false, true, map[string]string{"database": "up", "authorizer": "down"}},
		{"database down", errors.New("refused"), true, false, map[string]string{"database": "down", "authorizer": "up"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := new(MockAuthorizationGate)
			gate.On("IsAvailable", mock.Anything).Return(tt.gateUp)
			h := services.NewHealthService(func(context.Context) error { return tt.pingErr }, gate)

			status, ready := h.Ready(context.Background())

			assert.Equal(t, tt.wantReady, ready)
			assert.Equal(t, tt.want, status)
		})
	}
}
