// Package audit implements the audit event sinks.
package audit

import (
	"context"
	"log/slog"

	"github.com/SscSPs/payflow_backend/internal/core/domain"
	portssvc "github.com/SscSPs/payflow_backend/internal/core/ports/services"
)

// LogSink writes every audit event as one structured log line on its own logger.
type LogSink struct {
	logger *slog.Logger
}

var _ portssvc.AuditSink = (*LogSink)(nil)

// NewLogSink returns a sink logging through logger (slog.Default() when nil) under the "audit" channel.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With(slog.String("channel", "audit"))}
}

func (s *LogSink) Emit(ctx context.Context, ev domain.AuditEvent) {
	s.logger.InfoContext(ctx, string(ev.Type), eventAttrs(ev)...)
}

func eventAttrs(ev domain.AuditEvent) []any {
	attrs := []any{
		slog.String("event_type", string(ev.Type)),
		slog.String("transaction_id", ev.TransactionID),
		slog.String("kind", string(ev.Kind)),
		slog.String("amount", domain.FormatAmount(ev.Amount)),
		slog.Time("occurred_at", ev.OccurredAt),
	}
	if ev.Status != "" {
		attrs = append(attrs, slog.String("status", string(ev.Status)))
	}
	if ev.PayerID != "" {
		attrs = append(attrs, slog.String("payer_id", ev.PayerID))
	}
	if ev.PayeeID != "" {
		attrs = append(attrs, slog.String("payee_id", ev.PayeeID))
	}
	if ev.OriginalTransactionID != "" {
		attrs = append(attrs, slog.String("original_transaction_id", ev.OriginalTransactionID))
	}
	if ev.RequesterID != "" {
		attrs = append(attrs, slog.String("requester_id", ev.RequesterID))
	}
	if ev.Reason != "" {
		attrs = append(attrs, slog.String("reason", ev.Reason))
	}
	return attrs
}
