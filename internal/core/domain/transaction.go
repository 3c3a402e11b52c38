package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/payflow_backend/internal/apperrors"
	"github.com/shopspring/decimal"
)

// TransactionKind identifies the kind of balance movement.
type TransactionKind string

const (
	KindTransfer   TransactionKind = "transfer"
	KindDeposit    TransactionKind = "deposit"
	KindWithdrawal TransactionKind = "withdrawal"
	KindReversal   TransactionKind = "reversal"
	KindRefund     TransactionKind = "refund"
)

// TransactionStatus is the lifecycle state of a transaction.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
	StatusReversed  TransactionStatus = "reversed"
	StatusRefunded  TransactionStatus = "refunded"
)

// Metadata keys written by the orchestrator.
const (
	MetaFailureReason = "failure_reason"
	MetaCompensatedBy = "compensated_by"
)

// Failure reasons recorded under MetaFailureReason.
const (
	FailureAuthorizationDenied = "authorization_denied"
	FailureInsufficientFunds   = "insufficient_funds"
	FailureExpired             = "expired"
)

var (
	ErrInvalidTransition = fmt.Errorf("%w: invalid transaction status transition", apperrors.ErrValidation)
	ErrNotCompensable    = fmt.Errorf("%w: only completed transfers can be refunded or reversed", apperrors.ErrValidation)
	ErrSelfTransfer      = fmt.Errorf("%w: payer and payee must be different accounts", apperrors.ErrValidation)
)

// allowedTransitions is the one-directional status state machine.
var allowedTransitions = map[TransactionStatus][]TransactionStatus{
	StatusPending:   {StatusCompleted, StatusFailed},
	StatusCompleted: {StatusReversed, StatusRefunded},
}

// CompensationKind maps a compensated status to the kind of the inverse transaction.
func CompensationKind(status TransactionStatus) (TransactionKind, bool) {
	switch status {
	case StatusRefunded:
		return KindRefund, true
	case StatusReversed:
		return KindReversal, true
	default:
		return "", false
	}
}

// Transaction records one balance movement. Participants and lineage are held by ID only.
type Transaction struct {
	TransactionID         string            `json:"transactionID"`
	PayerID               *string           `json:"payerID,omitempty"`
	PayeeID               *string           `json:"payeeID,omitempty"`
	Amount                decimal.Decimal   `json:"amount"`
	Kind                  TransactionKind   `json:"kind"`
	Status                TransactionStatus `json:"status"`
	Description           string            `json:"description"`
	OriginalTransactionID *string           `json:"originalTransactionID,omitempty"`
	Metadata              map[string]string `json:"metadata,omitempty"`
	AuditFields
}

// Validate checks the structural invariants of a transaction before it is persisted.
func (t Transaction) Validate() error {
	if !t.Amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if t.PayerID == nil && t.PayeeID == nil {
		return fmt.Errorf("%w: transaction needs a payer or a payee", apperrors.ErrValidation)
	}
	switch t.Kind {
	case KindTransfer, KindRefund, KindReversal:
		if t.PayerID == nil || t.PayeeID == nil {
			return fmt.Errorf("%w: %s needs both payer and payee", apperrors.ErrValidation, t.Kind)
		}
		if *t.PayerID == *t.PayeeID {
			return ErrSelfTransfer
		}
	case KindDeposit:
		if t.PayerID != nil || t.PayeeID == nil {
			return fmt.Errorf("%w: deposit needs only a payee", apperrors.ErrValidation)
		}
	case KindWithdrawal:
		if t.PayeeID != nil || t.PayerID == nil {
			return fmt.Errorf("%w: withdrawal needs only a payer", apperrors.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown transaction kind %q", apperrors.ErrValidation, t.Kind)
	}
	isCompensation := t.Kind == KindRefund || t.Kind == KindReversal
	if isCompensation != (t.OriginalTransactionID != nil) {
		return fmt.Errorf("%w: original transaction reference is required only for compensations", apperrors.ErrValidation)
	}
	if t.OriginalTransactionID != nil && *t.OriginalTransactionID == t.TransactionID {
		return fmt.Errorf("%w: transaction cannot reference itself", apperrors.ErrValidation)
	}
	return nil
}

// Involves reports whether accountID is the payer or the payee.
func (t Transaction) Involves(accountID string) bool {
	return (t.PayerID != nil && *t.PayerID == accountID) || (t.PayeeID != nil && *t.PayeeID == accountID)
}

// IsCompensated reports whether the transaction already received a refund or reversal.
func (t Transaction) IsCompensated() bool {
	return t.Status == StatusRefunded || t.Status == StatusReversed
}

// CheckCompensable returns nil when a refund or reversal may be applied.
func (t Transaction) CheckCompensable() error {
	if t.IsCompensated() {
		return fmt.Errorf("%w: transaction %s is already %s", apperrors.ErrAlreadyCompensated, t.TransactionID, t.Status)
	}
	if t.Kind != KindTransfer || t.Status != StatusCompleted {
		return fmt.Errorf("%w (transaction %s is a %s %s)", ErrNotCompensable, t.TransactionID, t.Status, t.Kind)
	}
	return nil
}

func (t *Transaction) transition(to TransactionStatus, actorID string, now time.Time) error {
	for _, allowed := range allowedTransitions[t.Status] {
		if allowed == to {
			t.Status = to
			t.Touch(actorID, now)
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, to)
}

// Complete moves a pending transaction to completed.
func (t *Transaction) Complete(actorID string, now time.Time) error {
	return t.transition(StatusCompleted, actorID, now)
}

// Fail moves a pending transaction to failed and records why.
func (t *Transaction) Fail(reason string, actorID string, now time.Time) error {
	if err := t.transition(StatusFailed, actorID, now); err != nil {
		return err
	}
	t.SetMeta(MetaFailureReason, reason)
	return nil
}

// MarkCompensated flips a completed transfer to refunded or reversed, linking the inverse transaction.
func (t *Transaction) MarkCompensated(status TransactionStatus, compensationID string, actorID string, now time.Time) error {
	if err := t.CheckCompensable(); err != nil {
		return err
	}
	if _, ok := CompensationKind(status); !ok {
		return fmt.Errorf("%w: %s is not a compensation status", ErrInvalidTransition, status)
	}
	if err := t.transition(status, actorID, now); err != nil {
		return err
	}
	t.SetMeta(MetaCompensatedBy, compensationID)
	return nil
}

// SetMeta sets one metadata entry, allocating the map on first use.
func (t *Transaction) SetMeta(key, value string) {
	if t.Metadata == nil {
		t.Metadata = make(map[string]string)
	}
	t.Metadata[key] = value
}

// FailureReason returns the recorded failure reason, if any.
func (t Transaction) FailureReason() string {
	return t.Metadata[MetaFailureReason]
}
