package pgsql

import (
	"context"
	"log/slog"

	portsrepo "github.com/SscSPs/payflow_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxUnitOfWork runs a function inside one database transaction.
type PgxUnitOfWork struct {
	BaseRepository
}

var _ portsrepo.UnitOfWork = (*PgxUnitOfWork)(nil)
var _ portsrepo.TransactionManager = (*PgxUnitOfWork)(nil)

func newPgxUnitOfWork(pool *pgxpool.Pool) *PgxUnitOfWork {
	return &PgxUnitOfWork{BaseRepository{Pool: pool}}
}

// WithinTransaction begins a transaction, hands fn repositories bound to it, and commits when fn
// returns nil. Any error or panic from fn rolls back every write made through those repositories.
func (u *PgxUnitOfWork) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos portsrepo.TxRepositories) error) (err error) {
	tx, err := u.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = u.Rollback(ctx, tx)
			panic(p)
		}
		if err != nil {
			if rbErr := u.Rollback(ctx, tx); rbErr != nil {
				slog.ErrorContext(ctx, "Failed to roll back unit of work", slog.String("error", rbErr.Error()))
			}
		}
	}()

	repos := portsrepo.TxRepositories{
		Accounts:     newPgxAccountTxRepository(tx),
		Transactions: newPgxTransactionTxRepository(tx),
	}
	if err = fn(ctx, repos); err != nil {
		return err
	}
	return u.Commit(ctx, tx)
}
