package services

import "context"

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Account  AccountSvcFacade
	Transfer TransferSvcFacade
	Token    TokenSvcFacade
	Sweeper  PendingSweeperSvc
	Health   HealthSvc
}

// HealthSvc reports readiness of the service's dependencies.
type HealthSvc interface {
	// Ready returns a per-dependency status map and whether every required dependency is up.
	Ready(ctx context.Context) (map[string]string, bool)
}
