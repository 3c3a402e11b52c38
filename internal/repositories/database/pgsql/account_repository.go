package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/SscSPs/payflow_backend/internal/apperrors"
	"github.com/SscSPs/payflow_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/payflow_backend/internal/core/ports/repositories"
	"github.com/SscSPs/payflow_backend/internal/models"
	"github.com/SscSPs/payflow_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `account_id, name, document, email, password_hash, role, balance, created_at, created_by, last_updated_at, last_updated_by`

const upsertAccountQuery = `
	INSERT INTO accounts (account_id, name, document, email, password_hash, role, balance, created_at, created_by, last_updated_at, last_updated_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (account_id) DO UPDATE
	SET name = EXCLUDED.name,
		email = EXCLUDED.email,
		password_hash = EXCLUDED.password_hash,
		balance = EXCLUDED.balance,
		last_updated_at = EXCLUDED.last_updated_at,
		last_updated_by = EXCLUDED.last_updated_by
	RETURNING ` + accountColumns

// PgxAccountRepository reads and writes accounts through a pool or an open transaction.
type PgxAccountRepository struct {
	db querier
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{db: pool}
}

var (
	_ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)
	_ portsrepo.AccountTxRepository     = (*pgxAccountTxRepository)(nil)
)

func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.Name,
		&m.Document,
		&m.Email,
		&m.PasswordHash,
		&m.Role,
		&m.Balance,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxAccountRepository) findOne(ctx context.Context, where string, arg any) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + where + ` = $1;`
	m, err := scanAccount(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by %s: %w", where, err)
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return r.findOne(ctx, "account_id", accountID)
}

// FindAccountByEmail retrieves an account by its lower-cased email.
func (r *PgxAccountRepository) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, "email", email)
}

// FindAccountByDocument retrieves an account by its digits-only document.
func (r *PgxAccountRepository) FindAccountByDocument(ctx context.Context, document string) (*domain.Account, error) {
	return r.findOne(ctx, "document", document)
}

func (r *PgxAccountRepository) exists(ctx context.Context, column string, value string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM accounts WHERE ` + column + ` = $1);`
	if err := r.db.QueryRow(ctx, query, value).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check account %s: %w", column, err)
	}
	return exists, nil
}

// ExistsByEmail reports whether an account already uses email.
func (r *PgxAccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email", email)
}

// ExistsByDocument reports whether an account already uses document.
func (r *PgxAccountRepository) ExistsByDocument(ctx context.Context, document string) (bool, error) {
	return r.exists(ctx, "document", document)
}

// ListAccounts retrieves a page of accounts ordered by name. An empty role lists every role.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, role domain.AccountRole, limit int, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE ($1 = '' OR role = $1)
		ORDER BY name, account_id
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.db.Query(ctx, query, string(role), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return mapping.ToDomainAccountSlice(accounts), nil
}

func upsertArgs(m models.Account) []any {
	return []any{
		m.AccountID,
		m.Name,
		m.Document,
		m.Email,
		m.PasswordHash,
		m.Role,
		m.Balance,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	}
}

func duplicateAccountError(err error, accountID string) error {
	if constraint, ok := isUniqueViolation(err); ok {
		switch constraint {
		case "accounts_email_key":
			return fmt.Errorf("%w: email is already registered", apperrors.ErrDuplicate)
		case "accounts_document_key":
			return fmt.Errorf("%w: document is already registered", apperrors.ErrDuplicate)
		default:
			return fmt.Errorf("%w: account %s conflicts with an existing account", apperrors.ErrDuplicate, accountID)
		}
	}
	return nil
}

// SaveAccount inserts or updates an account and returns the stored row.
// Unique violations on email or document surface as ErrDuplicate.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) (*domain.Account, error) {
	m := mapping.ToModelAccount(account)
	stored, err := scanAccount(r.db.QueryRow(ctx, upsertAccountQuery, upsertArgs(m)...))
	if err != nil {
		if dup := duplicateAccountError(err, m.AccountID); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	acc := mapping.ToDomainAccount(stored)
	return &acc, nil
}

// pgxAccountTxRepository is the account store bound to an open pgx transaction.
type pgxAccountTxRepository struct {
	PgxAccountRepository
}

func newPgxAccountTxRepository(tx pgx.Tx) *pgxAccountTxRepository {
	return &pgxAccountTxRepository{PgxAccountRepository{db: tx}}
}

// LockAccountsByIDs row-locks the accounts in ascending ID order, so two units of work touching
// the same pair always acquire the locks in the same sequence.
func (r *pgxAccountTxRepository) LockAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	ids := uniqueSorted(accountIDs)
	if len(ids) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_id = ANY($1)
		ORDER BY account_id
		FOR UPDATE;
	`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}
	defer rows.Close()

	locked := make(map[string]domain.Account, len(ids))
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked account row: %w", err)
		}
		locked[m.AccountID] = mapping.ToDomainAccount(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked account rows: %w", err)
	}

	for _, id := range ids {
		if _, ok := locked[id]; !ok {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
	}
	return locked, nil
}

// CreateAccount inserts a new account on the open transaction.
func (r *pgxAccountTxRepository) CreateAccount(ctx context.Context, account domain.Account) error {
	_, err := r.SaveAccount(ctx, account)
	return err
}

// SaveAccounts writes all accounts in one batch round trip.
func (r *pgxAccountTxRepository) SaveAccounts(ctx context.Context, accounts ...domain.Account) error {
	if len(accounts) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, acc := range accounts {
		batch.Queue(upsertAccountQuery, upsertArgs(mapping.ToModelAccount(acc))...)
	}

	br := r.db.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		if dup := duplicateAccountError(err, accounts[0].AccountID); dup != nil {
			return dup
		}
		return fmt.Errorf("failed to save account batch: %w", err)
	}
	return nil
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
