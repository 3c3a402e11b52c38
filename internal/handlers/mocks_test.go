package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/payflow_backend/internal/core/domain"
	"github.com/SscSPs/payflow_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, params dto.ListAccountsParams) ([]domain.Account, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) RegisterAccount(ctx context.Context, req dto.RegisterAccountRequest) (*domain.Account, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) Authenticate(ctx context.Context, email, password string) (*domain.Account, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateAccessToken(ctx context.Context, account *domain.Account) (string, time.Time, error) {
	args := m.Called(ctx, account)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

type MockTransferService struct {
	mock.Mock
}

func (m *MockTransferService) txn(args mock.Arguments) (*domain.Transaction, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransferService) Transfer(ctx context.Context, payerID, payeeID string, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	return m.txn(m.Called(ctx, payerID, payeeID, amount.String(), description))
}

func (m *MockTransferService) Deposit(ctx context.Context, accountID string, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	return m.txn(m.Called(ctx, accountID, amount.String(), description))
}

func (m *MockTransferService) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	return m.txn(m.Called(ctx, accountID, amount.String(), description))
}

func (m *MockTransferService) Refund(ctx context.Context, transactionID, requesterID string) (*domain.Transaction, error) {
	return m.txn(m.Called(ctx, transactionID, requesterID))
}

func (m *MockTransferService) Reverse(ctx context.Context, transactionID, requesterID string) (*domain.Transaction, error) {
	return m.txn(m.Called(ctx, transactionID, requesterID))
}

func (m *MockTransferService) GetTransaction(ctx context.Context, transactionID, requesterID string) (*domain.Transaction, error) {
	return m.txn(m.Called(ctx, transactionID, requesterID))
}

func (m *MockTransferService) ListTransactions(ctx context.Context, accountID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, accountID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}

type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) Ready(ctx context.Context) (map[string]string, bool) {
	args := m.Called(ctx)
	return args.Get(0).(map[string]string), args.Bool(1)
}
