package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/payflow_backend/internal/core/domain"
)

// TransactionReader defines read operations for transaction data. Reads never mutate state.
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction by its unique identifier.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindTransactionsByParticipant returns transactions where accountID is payer or payee, newest first.
	// It returns the page, a token for the next page (nil on the last page), and an error.
	FindTransactionsByParticipant(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// FindTransactionsByStatus returns up to limit transactions in the given status, newest first.
	FindTransactionsByStatus(ctx context.Context, status domain.TransactionStatus, limit int) ([]domain.Transaction, error)
}

// TransactionWriter defines write operations for transaction data. Nothing is ever deleted.
type TransactionWriter interface {
	// SaveTransaction inserts or updates a transaction.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}

// TransactionTxRepository is the transaction store bound to one open unit of work.
type TransactionTxRepository interface {
	// LockTransactionByID loads and row-locks a transaction.
	LockTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// LockStalePending locks up to limit pending transactions created before olderThan,
	// skipping rows already locked by another unit of work.
	LockStalePending(ctx context.Context, olderThan time.Time, limit int) ([]domain.Transaction, error)

	// SaveTransaction inserts or updates the transaction inside the unit of work.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error
}
