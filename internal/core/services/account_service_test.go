package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/payflow_backend/internal/apperrors"
	"github.com/SscSPs/payflow_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/payflow_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/payflow_backend/internal/core/ports/services"
	"github.com/SscSPs/payflow_backend/internal/core/services"
	"github.com/SscSPs/payflow_backend/internal/dto"
	"github.com/SscSPs/payflow_backend/internal/repositories/memory"
	"github.com/SscSPs/payflow_backend/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type AccountServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	service portssvc.AccountSvcFacade
	repos   portsrepo.RepositoryProvider
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}

func (suite *AccountServiceTestSuite) SetupSuite() {
	utils.PasswordCost = bcrypt.MinCost
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.repos = memory.NewRepositoryProvider(memory.NewStore())
	suite.service = services.NewAccountService(suite.repos.AccountRepo, suite.repos.UnitOfWork,
		services.WithAccountClock(func() time.Time { return fixedNow }))
}

func validRegistration() dto.RegisterAccountRequest {
	return dto.RegisterAccountRequest{
		Name:     "  Alice Silva ",
		Email:    "Alice@Example.com",
		Document: "529.982.247-25",
		Password: "secret1",
		Role:     domain.RoleOrdinary,
	}
}

func (suite *AccountServiceTestSuite) TestRegisterAccount_Success() {
	acc, err := suite.service.RegisterAccount(suite.ctx, validRegistration())

	suite.Require().NoError(err)
	suite.NotEmpty(acc.AccountID)
	suite.Equal("Alice Silva", acc.Name)
	suite.Equal("alice@example.com", acc.Email)
	suite.Equal("52998224725", acc.Document)
	suite.True(acc.Balance.IsZero())
	suite.NotEqual("secret1", acc.PasswordHash)
	suite.Equal(fixedNow, acc.CreatedAt)
	suite.Equal(acc.AccountID, acc.CreatedBy)
}

func (suite *AccountServiceTestSuite) TestRegisterAccount_InitialBalance() {
	req := validRegistration()
	req.Document = "11.222.333/0001-81"
	req.Role = domain.RoleMerchant
	balance := decimal.RequireFromString("150.5")
	req.InitialBalance = &balance

	acc, err := suite.service.RegisterAccount(suite.ctx, req)

	suite.Require().NoError(err)
	suite.Equal("150.50", domain.FormatAmount(acc.Balance))
	suite.Equal(domain.RoleMerchant, acc.Role)

	stored, err := suite.service.GetAccountByID(suite.ctx, acc.AccountID)
	suite.Require().NoError(err)
	suite.Equal("150.50", domain.FormatAmount(stored.Balance))

	history, _, err := suite.repos.TransactionRepo.FindTransactionsByParticipant(suite.ctx, acc.AccountID, 10, nil)
	suite.Require().NoError(err)
	suite.Require().Len(history, 1)
	opening := history[0]
	suite.Equal(domain.KindDeposit, opening.Kind)
	suite.Equal(domain.StatusCompleted, opening.Status)
	suite.Equal("150.50", domain.FormatAmount(opening.Amount))
	suite.Require().NotNil(opening.PayeeID)
	suite.Equal(acc.AccountID, *opening.PayeeID)
	suite.Nil(opening.PayerID)
}

func (suite *AccountServiceTestSuite) TestRegisterAccount_ZeroBalanceHasNoHistory() {
	acc, err := suite.service.RegisterAccount(suite.ctx, validRegistration())
	suite.Require().NoError(err)

	history, _, err := suite.repos.TransactionRepo.FindTransactionsByParticipant(suite.ctx, acc.AccountID, 10, nil)
	suite.Require().NoError(err)
	suite.Empty(history)
}

func (suite *AccountServiceTestSuite) TestRegisterAccount_DuplicateWithInitialBalanceLeavesNoDeposit() {
	_, err := suite.service.RegisterAccount(suite.ctx, validRegistration())
	suite.Require().NoError(err)

	dup := validRegistration()
	dup.Document = "11222333000181"
	balance := decimal.RequireFromString("10")
	dup.InitialBalance = &balance
	_, err = suite.service.RegisterAccount(suite.ctx, dup)
	suite.ErrorIs(err, apperrors.ErrDuplicate)

	completed, err := suite.repos.TransactionRepo.FindTransactionsByStatus(suite.ctx, domain.StatusCompleted, 10)
	suite.Require().NoError(err)
	suite.Empty(completed)
}

func (suite *AccountServiceTestSuite) TestRegisterAccount_Validation() {
	neg := decimal.RequireFromString("-1")
	precise := decimal.RequireFromString("1.005")
	tests := []struct {
		name   string
		mutate func(*dto.RegisterAccountRequest)
	}{
		{"blank name", func(r *dto.RegisterAccountRequest) { r.Name = "  " }},
		{"bad email", func(r *dto.RegisterAccountRequest) { r.Email = "not-an-email" }},
		{"bad CPF checksum", func(r *dto.RegisterAccountRequest) { r.Document = "529.982.247-26" }},
		{"repeated digits", func(r *dto.RegisterAccountRequest) { r.Document = "111.111.111-11" }},
		{"short password", func(r *dto.RegisterAccountRequest) { r.Password = "12345" }},
		{"unknown role", func(r *dto.RegisterAccountRequest) { r.Role = "admin" }},
		{"negative balance", func(r *dto.RegisterAccountRequest) { r.InitialBalance = &neg }},
		{"sub-cent balance", func(r *dto.RegisterAccountRequest) { r.InitialBalance = &precise }},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			req := validRegistration()
			tt.mutate(&req)
			_, err := suite.service.RegisterAccount(suite.ctx, req)
			suite.ErrorIs(err, apperrors.ErrValidation)
		})
	}
}

func (suite *AccountServiceTestSuite) TestRegisterAccount_Duplicates() {
	_, err := suite.service.RegisterAccount(suite.ctx, validRegistration())
	suite.Require().NoError(err)

	sameEmail := validRegistration()
	sameEmail.Document = "11222333000181"
	sameEmail.Email = "ALICE@example.com"
	_, err = suite.service.RegisterAccount(suite.ctx, sameEmail)
	suite.ErrorIs(err, apperrors.ErrDuplicate)

	sameDoc := validRegistration()
	sameDoc.Email = "other@example.com"
	sameDoc.Document = "52998224725"
	_, err = suite.service.RegisterAccount(suite.ctx, sameDoc)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *AccountServiceTestSuite) TestAuthenticate() {
	registered, err := suite.service.RegisterAccount(suite.ctx, validRegistration())
	suite.Require().NoError(err)

	acc, err := suite.service.Authenticate(suite.ctx, " ALICE@example.com", "secret1")
	suite.Require().NoError(err)
	suite.Equal(registered.AccountID, acc.AccountID)

	_, err = suite.service.Authenticate(suite.ctx, "alice@example.com", "wrong-pass")
	suite.ErrorIs(err, apperrors.ErrUnauthorized)

	_, err = suite.service.Authenticate(suite.ctx, "nobody@example.com", "secret1")
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *AccountServiceTestSuite) TestGetAndListAccounts() {
	alice, err := suite.service.RegisterAccount(suite.ctx, validRegistration())
	suite.Require().NoError(err)
	shop := validRegistration()
	shop.Name = "Corner Shop"
	shop.Email = "shop@example.com"
	shop.Document = "11222333000181"
	shop.Role = domain.RoleMerchant
	_, err = suite.service.RegisterAccount(suite.ctx, shop)
	suite.Require().NoError(err)

	got, err := suite.service.GetAccountByID(suite.ctx, alice.AccountID)
	suite.Require().NoError(err)
	suite.Equal(alice.Email, got.Email)

	_, err = suite.service.GetAccountByID(suite.ctx, "missing")
	suite.ErrorIs(err, apperrors.ErrNotFound)

	merchants, err := suite.service.ListAccounts(suite.ctx, dto.ListAccountsParams{Role: domain.RoleMerchant})
	suite.Require().NoError(err)
	suite.Require().Len(merchants, 1)
	suite.Equal("Corner Shop", merchants[0].Name)

	all, err := suite.service.ListAccounts(suite.ctx, dto.ListAccountsParams{Limit: 10})
	suite.Require().NoError(err)
	suite.Len(all, 2)

	_, err = suite.service.ListAccounts(suite.ctx, dto.ListAccountsParams{Role: "root"})
	suite.ErrorIs(err, apperrors.ErrValidation)
}
