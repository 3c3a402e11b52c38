package services

import (
	"context"

	"github.com/SscSPs/payflow_backend/internal/core/domain"
	"github.com/SscSPs/payflow_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// MoneyMovementSvc moves money between or into/out of balances.
type MoneyMovementSvc interface {
	// Transfer moves amount from payer to payee after external authorization.
	Transfer(ctx context.Context, payerID, payeeID string, amount decimal.Decimal, description string) (*domain.Transaction, error)

	// Deposit credits amount to the account.
	Deposit(ctx context.Context, accountID string, amount decimal.Decimal, description string) (*domain.Transaction, error)

	// Withdraw debits amount from the account.
	Withdraw(ctx context.Context, accountID string, amount decimal.Decimal, description string) (*domain.Transaction, error)
}

// CompensationSvc undoes completed transfers. A transfer is compensated at most once.
type CompensationSvc interface {
	// Refund returns the money of a completed transfer; only its payee may request it.
	Refund(ctx context.Context, transactionID, requesterID string) (*domain.Transaction, error)

	// Reverse reverts a completed transfer; only its payee may request it.
	Reverse(ctx context.Context, transactionID, requesterID string) (*domain.Transaction, error)
}

// TransactionQuerySvc reads transactions on behalf of a participant.
type TransactionQuerySvc interface {
	// GetTransaction returns a transaction the requester takes part in.
	GetTransaction(ctx context.Context, transactionID, requesterID string) (*domain.Transaction, error)

	// ListTransactions returns the requester's transactions, newest first.
	ListTransactions(ctx context.Context, accountID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// TransferSvcFacade combines all transfer-related service interfaces
type TransferSvcFacade interface {
	MoneyMovementSvc
	CompensationSvc
	TransactionQuerySvc
}

// PendingSweeperSvc fails pending transfers that outlived their authorization window.
type PendingSweeperSvc interface {
	// SweepOnce fails one batch of stale pending transfers and returns how many were failed.
	SweepOnce(ctx context.Context) (int, error)

	// Run sweeps periodically until ctx is cancelled.
	Run(ctx context.Context)
}
