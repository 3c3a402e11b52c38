package repositories

import (
	"context"

	"github.com/SscSPs/payflow_backend/internal/core/domain"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByEmail retrieves an account by its (lower-cased) email.
	FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error)

	// FindAccountByDocument retrieves an account by its digits-only document number.
	FindAccountByDocument(ctx context.Context, document string) (*domain.Account, error)

	// ExistsByEmail reports whether an account already uses email.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByDocument reports whether an account already uses document.
	ExistsByDocument(ctx context.Context, document string) (bool, error)

	// ListAccounts retrieves a page of accounts, optionally filtered by role (empty role means all).
	ListAccounts(ctx context.Context, role domain.AccountRole, limit int, offset int) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount inserts or updates an account and returns the stored value.
	SaveAccount(ctx context.Context, account domain.Account) (*domain.Account, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}

// AccountTxRepository is the account store bound to one open unit of work.
type AccountTxRepository interface {
	// LockAccountsByIDs loads and row-locks the given accounts in ascending ID order.
	// It fails with ErrNotFound when any of them is missing.
	LockAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// CreateAccount inserts a new account inside the unit of work. Unique violations surface as
	// ErrDuplicate, at the latest when the unit of work commits.
	CreateAccount(ctx context.Context, account domain.Account) error

	// SaveAccounts persists the accounts inside the unit of work.
	SaveAccounts(ctx context.Context, accounts ...domain.Account) error
}
