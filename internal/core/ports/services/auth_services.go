package services

import (
	"context"
	"time"

	"github.com/SscSPs/payflow_backend/internal/core/domain"
)

// TokenSvcFacade defines the interface for access token issuance.
type TokenSvcFacade interface {
	// GenerateAccessToken creates a signed JWT whose subject is the account ID.
	GenerateAccessToken(ctx context.Context, account *domain.Account) (string, time.Time, error)
}
