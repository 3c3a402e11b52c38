package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager defines methods for database transaction management
type TransactionManager interface {
	// Begin starts a new database transaction
	Begin(ctx context.Context) (pgx.Tx, error)

	// Commit commits a transaction
	Commit(ctx context.Context, tx pgx.Tx) error

	// Rollback rolls back a transaction
	Rollback(ctx context.Context, tx pgx.Tx) error
}

// TxRepositories groups the stores bound to one open unit of work.
type TxRepositories struct {
	Accounts     AccountTxRepository
	Transactions TransactionTxRepository
}

// UnitOfWork runs fn atomically. Every write made through repos commits together when fn
// returns nil and is rolled back when fn returns an error or panics.
type UnitOfWork interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}
