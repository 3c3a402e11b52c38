package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditEventType names an orchestrator event emitted to the audit sink.
type AuditEventType string

const (
	EventTransferAttempted   AuditEventType = "transfer.attempted"
	EventTransferCompleted   AuditEventType = "transfer.completed"
	EventTransferFailed      AuditEventType = "transfer.failed"
	EventDepositCompleted    AuditEventType = "deposit.completed"
	EventWithdrawalCompleted AuditEventType = "withdrawal.completed"
	EventRefundCompleted     AuditEventType = "refund.completed"
	EventReversalCompleted   AuditEventType = "reversal.completed"
	EventTransactionExpired  AuditEventType = "transaction.expired"

	EventTransferRejected   AuditEventType = "transfer.rejected"
	EventDepositRejected    AuditEventType = "deposit.rejected"
	EventWithdrawalRejected AuditEventType = "withdrawal.rejected"
	EventRefundRejected     AuditEventType = "refund.rejected"
	EventReversalRejected   AuditEventType = "reversal.rejected"
)

var rejectedEvents = map[TransactionKind]AuditEventType{
	KindTransfer:   EventTransferRejected,
	KindDeposit:    EventDepositRejected,
	KindWithdrawal: EventWithdrawalRejected,
	KindRefund:     EventRefundRejected,
	KindReversal:   EventReversalRejected,
}

// AuditEvent is the structured record of one operation. Rejected operations never stored a
// transaction, so their TransactionID and Status are empty.
type AuditEvent struct {
	Type                  AuditEventType    `json:"eventType"`
	TransactionID         string            `json:"transactionID"`
	Kind                  TransactionKind   `json:"kind"`
	Status                TransactionStatus `json:"status,omitempty"`
	PayerID               string            `json:"payerID,omitempty"`
	PayeeID               string            `json:"payeeID,omitempty"`
	Amount                decimal.Decimal   `json:"amount"`
	OriginalTransactionID string            `json:"originalTransactionID,omitempty"`
	RequesterID           string            `json:"requesterID,omitempty"`
	Reason                string            `json:"reason,omitempty"`
	OccurredAt            time.Time         `json:"occurredAt"`
}

// NewAuditEvent snapshots txn into an event of the given type.
func NewAuditEvent(eventType AuditEventType, txn Transaction, now time.Time) AuditEvent {
	ev := AuditEvent{
		Type:          eventType,
		TransactionID: txn.TransactionID,
		Kind:          txn.Kind,
		Status:        txn.Status,
		Amount:        txn.Amount,
		Reason:        txn.FailureReason(),
		OccurredAt:    now,
	}
	if txn.PayerID != nil {
		ev.PayerID = *txn.PayerID
	}
	if txn.PayeeID != nil {
		ev.PayeeID = *txn.PayeeID
	}
	if txn.OriginalTransactionID != nil {
		ev.OriginalTransactionID = *txn.OriginalTransactionID
	}
	return ev
}

// NewRejectedEvent records an operation refused before any transaction was stored.
// reason is the outcome label of the refusal, e.g. "insufficient_funds".
func NewRejectedEvent(kind TransactionKind, payerID, payeeID string, amount decimal.Decimal, reason string, now time.Time) AuditEvent {
	return AuditEvent{
		Type:       rejectedEvents[kind],
		Kind:       kind,
		PayerID:    payerID,
		PayeeID:    payeeID,
		Amount:     amount,
		Reason:     reason,
		OccurredAt: now,
	}
}

// PartitionKey groups the events of one transaction. Rejected events fall back to the
// original transaction or the first participant.
func (e AuditEvent) PartitionKey() string {
	for _, key := range []string{e.TransactionID, e.OriginalTransactionID, e.PayerID, e.PayeeID} {
		if key != "" {
			return key
		}
	}
	return e.RequesterID
}
