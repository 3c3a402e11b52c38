package services

import (
	portsrepo "github.com/SscSPs/payflow_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/payflow_backend/internal/core/ports/services"
	"github.com/SscSPs/payflow_backend/internal/platform/config"
)

// Dependencies are the adapters the services are built on.
type Dependencies struct {
	Gate       portssvc.AuthorizationGate
	Dispatcher portssvc.NotificationDispatcher
	Audit      portssvc.AuditSink
	Metrics    *Metrics
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, deps Dependencies) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Account: NewAccountService(repos.AccountRepo, repos.UnitOfWork),
		Transfer: NewTransferService(
			repos.UnitOfWork,
			repos.AccountRepo,
			repos.TransactionRepo,
			deps.Gate,
			deps.Dispatcher,
			deps.Audit,
			WithMetrics(deps.Metrics),
		),
		Token: NewTokenService(cfg),
		Sweeper: NewPendingSweeper(
			repos.UnitOfWork,
			deps.Audit,
			cfg.PendingTTL,
			cfg.PendingSweepInterval,
			WithSweeperMetrics(deps.Metrics),
		),
		Health: NewHealthService(repos.Ping, deps.Gate),
	}
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccountSvcFacade  = (*accountService)(nil)
	_ portssvc.TransferSvcFacade = (*transferService)(nil)
	_ portssvc.PendingSweeperSvc = (*pendingSweeper)(nil)
	_ portssvc.HealthSvc         = (*healthService)(nil)
	_ portssvc.TokenSvcFacade    = (*tokenService)(nil)
)
