package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/payflow_backend/internal/core/domain"
	portssvc "github.com/SscSPs/payflow_backend/internal/core/ports/services"
	"github.com/SscSPs/payflow_backend/internal/platform/config"
	"github.com/SscSPs/payflow_backend/internal/utils"
)

// tokenService issues the bearer tokens checked by AuthMiddleware.
type tokenService struct {
	BaseService
	cfg *config.Config
	now func() time.Time
}

func NewTokenService(cfg *config.Config) portssvc.TokenSvcFacade {
	return &tokenService{cfg: cfg, now: time.Now}
}

// GenerateAccessToken creates a new JWT access token for the given account.
func (s *tokenService) GenerateAccessToken(ctx context.Context, account *domain.Account) (string, time.Time, error) {
	token, expiresAt, err := utils.GenerateJWT(account.AccountID, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer, s.now())
	if err != nil {
		s.LogError(ctx, err, "Failed to generate access token", slog.String("account_id", account.AccountID))
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}
