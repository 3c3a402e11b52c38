package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/payflow_backend/internal/apperrors"
	"github.com/SscSPs/payflow_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/payflow_backend/internal/core/ports/repositories"
	"github.com/SscSPs/payflow_backend/internal/models"
	"github.com/SscSPs/payflow_backend/internal/utils/mapping"
	"github.com/SscSPs/payflow_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const transactionColumns = `transaction_id, payer_id, payee_id, amount, kind, status, description, original_transaction_id, metadata, created_at, created_by, last_updated_at, last_updated_by`

// PgxTransactionRepository reads and writes transactions through a pool or an open transaction.
type PgxTransactionRepository struct {
	db querier
}

func newPgxTransactionRepository(pool *pgxpool.Pool) *PgxTransactionRepository {
	return &PgxTransactionRepository{db: pool}
}

var (
	_ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)
	_ portsrepo.TransactionTxRepository     = (*pgxTransactionTxRepository)(nil)
)

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.PayerID,
		&m.PayeeID,
		&m.Amount,
		&m.Kind,
		&m.Status,
		&m.Description,
		&m.OriginalTransactionID,
		&m.Metadata,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func collectTransactions(rows pgx.Rows) ([]models.Transaction, error) {
	defer rows.Close()
	results := []models.Transaction{}
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return results, nil
}

// FindTransactionByID retrieves a transaction by its ID.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	m, err := scanTransaction(r.db.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	txn := mapping.ToDomainTransaction(m)
	return &txn, nil
}

// FindTransactionsByParticipant lists the transactions where accountID is payer or payee,
// newest first, using (created_at, transaction_id) as the pagination cursor.
func (r *PgxTransactionRepository) FindTransactionsByParticipant(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	args := []any{accountID}
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE (payer_id = $1 OR payee_id = $1)
	`
	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeCursor(*nextToken)
		if decodeErr != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, decodeErr)
		}
		query += ` AND (created_at, transaction_id) < ($2, $3)`
		args = append(args, lastCreatedAt, lastID)
	}
	// Fetch one extra row to know whether another page exists.
	query += fmt.Sprintf(` ORDER BY created_at DESC, transaction_id DESC LIMIT $%d;`, len(args)+1)
	args = append(args, limit+1)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query transactions for account %s: %w", accountID, err)
	}
	results, err := collectTransactions(rows)
	if err != nil {
		return nil, nil, err
	}

	var nextTokenVal *string
	if len(results) > limit {
		results = results[:limit]
		last := results[len(results)-1]
		token := pagination.EncodeCursor(last.CreatedAt, last.TransactionID)
		nextTokenVal = &token
	}
	return mapping.ToDomainTransactionSlice(results), nextTokenVal, nil
}

// FindTransactionsByStatus returns up to limit transactions in the given status, newest first.
func (r *PgxTransactionRepository) FindTransactionsByStatus(ctx context.Context, status domain.TransactionStatus, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE status = $1
		ORDER BY created_at DESC, transaction_id DESC
		LIMIT $2;
	`
	rows, err := r.db.Query(ctx, query, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s transactions: %w", status, err)
	}
	results, err := collectTransactions(rows)
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainTransactionSlice(results), nil
}

// SaveTransaction inserts a transaction or updates its mutable fields (status and metadata).
// Amount, participants and lineage never change after the first insert.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	if m.Metadata == nil {
		m.Metadata = map[string]string{}
	}

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (transaction_id) DO UPDATE
		SET status = EXCLUDED.status,
			metadata = EXCLUDED.metadata,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.db.Exec(ctx, query,
		m.TransactionID,
		m.PayerID,
		m.PayeeID,
		m.Amount,
		m.Kind,
		m.Status,
		m.Description,
		m.OriginalTransactionID,
		m.Metadata,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return fmt.Errorf("%w: transaction %s conflicts with an existing row", apperrors.ErrDuplicate, m.TransactionID)
		}
		return fmt.Errorf("failed to save transaction %s: %w", m.TransactionID, err)
	}
	return nil
}

// pgxTransactionTxRepository is the transaction store bound to an open pgx transaction.
type pgxTransactionTxRepository struct {
	PgxTransactionRepository
}

func newPgxTransactionTxRepository(tx pgx.Tx) *pgxTransactionTxRepository {
	return &pgxTransactionTxRepository{PgxTransactionRepository{db: tx}}
}

// LockTransactionByID loads a transaction with SELECT ... FOR UPDATE.
func (r *pgxTransactionTxRepository) LockTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1 FOR UPDATE;`
	m, err := scanTransaction(r.db.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock transaction %s: %w", transactionID, err)
	}
	txn := mapping.ToDomainTransaction(m)
	return &txn, nil
}

// LockStalePending locks pending transactions created before olderThan. Rows held by an
// in-flight transfer are skipped and picked up by a later sweep.
func (r *pgxTransactionTxRepository) LockStalePending(ctx context.Context, olderThan time.Time, limit int) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at
		LIMIT $3
		FOR UPDATE SKIP LOCKED;
	`
	rows, err := r.db.Query(ctx, query, string(domain.StatusPending), olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to lock stale pending transactions: %w", err)
	}
	results, err := collectTransactions(rows)
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainTransactionSlice(results), nil
}
