package services

import (
	"context"

	"github.com/SscSPs/payflow_backend/internal/core/domain"
	"github.com/SscSPs/payflow_backend/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccounts retrieves a page of accounts, optionally filtered by role.
	ListAccounts(ctx context.Context, params dto.ListAccountsParams) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// RegisterAccount validates and persists a new account holder.
	RegisterAccount(ctx context.Context, req dto.RegisterAccountRequest) (*domain.Account, error)
}

// AccountAuthSvc defines operations for account authentication
type AccountAuthSvc interface {
	// Authenticate checks email and password and returns the account on success.
	Authenticate(ctx context.Context, email, password string) (*domain.Account, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountAuthSvc
}
