package repositories

import "context"

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	AccountRepo     AccountRepositoryFacade
	TransactionRepo TransactionRepositoryFacade
	UnitOfWork      UnitOfWork
	// Ping reports store health for the readiness probe.
	Ping func(ctx context.Context) error
}
