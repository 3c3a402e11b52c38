package services

import (
	"context"

	"github.com/SscSPs/payflow_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AuthorizationRequest carries the participants and amount of a transfer attempt.
type AuthorizationRequest struct {
	TransactionID string
	Payer         domain.Account
	Payee         domain.Account
	Amount        decimal.Decimal
}

// AuthorizationGate is the external allow/deny check consulted before completing a transfer.
// Implementations must deny on timeout, transport failure or any unexpected response.
type AuthorizationGate interface {
	Authorize(ctx context.Context, req AuthorizationRequest) bool
	// IsAvailable is a liveness probe only; it never gates transfers.
	IsAvailable(ctx context.Context) bool
}

// Notification is one message addressed to one account holder.
type Notification struct {
	AccountID     string
	Email         string
	Message       string
	TransactionID string
}

// Notifier delivers a notification on a best-effort basis.
type Notifier interface {
	Notify(ctx context.Context, n Notification) bool
}

// NotificationDispatcher queues notifications for asynchronous delivery. Enqueue never blocks.
type NotificationDispatcher interface {
	Enqueue(n Notification) bool
}

// AuditSink receives structured events for every attempted, completed, failed or compensated operation.
type AuditSink interface {
	Emit(ctx context.Context, event domain.AuditEvent)
}
