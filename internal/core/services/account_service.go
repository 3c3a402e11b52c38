package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/payflow_backend/internal/apperrors"
	"github.com/SscSPs/payflow_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/payflow_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/payflow_backend/internal/core/ports/services"
	"github.com/SscSPs/payflow_backend/internal/dto"
	"github.com/SscSPs/payflow_backend/internal/utils"
	"github.com/SscSPs/payflow_backend/internal/utils/document"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 72 // bcrypt input limit
)

var errInvalidCredentials = fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	uow         portsrepo.UnitOfWork
	validate    *validator.Validate
	now         func() time.Time
	newID       func() string
}

// AccountServiceOption is a functional option for configuring the account service
type AccountServiceOption func(*accountService)

func WithAccountClock(now func() time.Time) AccountServiceOption {
	return func(s *accountService) { s.now = now }
}

func WithAccountIDGenerator(newID func() string) AccountServiceOption {
	return func(s *accountService) { s.newID = newID }
}

// NewAccountService creates a new account service with the provided options.
// uow books the opening deposit of accounts registered with an initial balance.
func NewAccountService(repo portsrepo.AccountRepositoryFacade, uow portsrepo.UnitOfWork, options ...AccountServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		accountRepo: repo,
		uow:         uow,
		validate:    validator.New(),
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{apperrors.ErrValidation}, args...)...)
}

// RegisterAccount validates and persists a new account holder.
func (s *accountService) RegisterAccount(ctx context.Context, req dto.RegisterAccountRequest) (*domain.Account, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationf("name is required")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, validationf("invalid email %q", req.Email)
	}
	doc := document.Clean(req.Document)
	if !document.IsValid(doc) {
		return nil, validationf("invalid CPF/CNPJ")
	}
	if n := len(req.Password); n < minPasswordLength || n > maxPasswordLength {
		return nil, validationf("password must be between %d and %d characters", minPasswordLength, maxPasswordLength)
	}
	if !req.Role.IsValid() {
		return nil, validationf("role must be %q or %q", domain.RoleOrdinary, domain.RoleMerchant)
	}

	balance := decimal.Zero
	if req.InitialBalance != nil && !req.InitialBalance.IsZero() {
		if req.InitialBalance.IsNegative() {
			return nil, validationf("initial balance cannot be negative")
		}
		normalized, err := domain.NormalizeAmount(*req.InitialBalance)
		if err != nil {
			return nil, err
		}
		balance = normalized
	}

	exists, err := s.accountRepo.ExistsByEmail(ctx, email)
	if err != nil {
		s.LogError(ctx, err, "Failed to check email uniqueness")
		return nil, apperrors.Operational("check email", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: email already registered", apperrors.ErrDuplicate)
	}
	exists, err = s.accountRepo.ExistsByDocument(ctx, doc)
	if err != nil {
		s.LogError(ctx, err, "Failed to check document uniqueness")
		return nil, apperrors.Operational("check document", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: document already registered", apperrors.ErrDuplicate)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password")
		return nil, apperrors.Operational("hash password", err)
	}

	accountID := s.newID()
	now := s.now()
	account := domain.Account{
		AccountID:    accountID,
		Name:         name,
		Document:     doc,
		Email:        email,
		PasswordHash: hash,
		Role:         req.Role,
		Balance:      balance,
		AuditFields:  domain.NewAuditFields(accountID, now),
	}

	saved, err := s.saveAccount(ctx, account, now)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to save account", slog.String("account_id", accountID))
		return nil, apperrors.Operational("save account", err)
	}

	s.LogInfo(ctx, "Account registered",
		slog.String("account_id", saved.AccountID),
		slog.String("role", string(saved.Role)))
	return saved, nil
}

// saveAccount stores a new account. A positive opening balance is booked as a completed deposit
// in the same unit of work, so the balance always reconciles with the transaction history.
func (s *accountService) saveAccount(ctx context.Context, account domain.Account, now time.Time) (*domain.Account, error) {
	if account.Balance.IsZero() {
		return s.accountRepo.SaveAccount(ctx, account)
	}

	deposit := domain.Transaction{
		TransactionID: s.newID(),
		PayeeID:       &account.AccountID,
		Amount:        account.Balance,
		Kind:          domain.KindDeposit,
		Status:        domain.StatusCompleted,
		Description:   "Initial balance",
		AuditFields:   domain.NewAuditFields(account.AccountID, now),
	}
	if err := deposit.Validate(); err != nil {
		return nil, err
	}
	err := s.uow.WithinTransaction(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		if err := repos.Accounts.CreateAccount(ctx, account); err != nil {
			return err
		}
		return repos.Transactions.SaveTransaction(ctx, deposit)
	})
	if err != nil {
		return nil, err
	}
	s.LogDebug(ctx, "Opening deposit booked",
		slog.String("account_id", account.AccountID),
		slog.String("transaction_id", deposit.TransactionID))
	return &account, nil
}

// Authenticate checks email and password. Both an unknown email and a wrong password
// yield the same Unauthorized error.
func (s *accountService) Authenticate(ctx context.Context, email, password string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		s.LogError(ctx, err, "Failed to load account for login")
		return nil, apperrors.Operational("load account", err)
	}
	if !utils.CheckPasswordHash(password, account.PasswordHash) {
		s.LogDebug(ctx, "Password mismatch", slog.String("account_id", account.AccountID))
		return nil, errInvalidCredentials
	}
	return account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		s.LogError(ctx, err, "Failed to load account", slog.String("account_id", accountID))
		return nil, apperrors.Operational("load account", err)
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, params dto.ListAccountsParams) ([]domain.Account, error) {
	if params.Role != "" && !params.Role.IsValid() {
		return nil, validationf("unknown role %q", params.Role)
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, params.Role, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, apperrors.Operational("list accounts", err)
	}
	return accounts, nil
}
