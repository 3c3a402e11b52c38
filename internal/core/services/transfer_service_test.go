package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/payflow_backend/internal/apperrors"
	"github.com/SscSPs/payflow_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/payflow_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/payflow_backend/internal/core/ports/services"
	"github.com/SscSPs/payflow_backend/internal/core/services"
	"github.com/SscSPs/payflow_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const (
	testTxnID   = "txn-1"
	testPayerID = "aaaaaaaa-0000-0000-0000-000000000001"
	testPayeeID = "bbbbbbbb-0000-0000-0000-000000000002"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string { return &s }

type TransferServiceTestSuite struct {
	suite.Suite
	accounts     *MockAccountReader
	transactions *MockTransactionReader
	accountTx    *MockAccountTxRepository
	txnTx        *MockTransactionTxRepository
	gate         *MockAuthorizationGate
	dispatcher   *MockDispatcher
	audit        *recordingAudit
	uow          *fakeUnitOfWork
	service      portssvc.TransferSvcFacade
	ctx          context.Context
}

func (suite *TransferServiceTestSuite) SetupTest() {
	suite.accounts = new(MockAccountReader)
	suite.transactions = new(MockTransactionReader)
	suite.accountTx = new(MockAccountTxRepository)
	suite.txnTx = new(MockTransactionTxRepository)
	suite.gate = new(MockAuthorizationGate)
	suite.dispatcher = new(MockDispatcher)
	suite.audit = &recordingAudit{}
	suite.uow = &fakeUnitOfWork{repos: portsrepo.TxRepositories{Accounts: suite.accountTx, Transactions: suite.txnTx}}
	suite.ctx = context.Background()
	suite.service = services.NewTransferService(
		suite.uow, suite.accounts, suite.transactions, suite.gate, suite.dispatcher, suite.audit,
		services.WithClock(func() time.Time { return fixedNow }),
		services.WithIDGenerator(func() string { return testTxnID }),
	)
}

func TestTransferServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransferServiceTestSuite))
}

func account(id string, role domain.AccountRole, balance string) *domain.Account {
	return &domain.Account{
		AccountID: id,
		Name:      "holder " + id[:4],
		Email:     id[:4] + "@example.com",
		Role:      role,
		Balance:   dec(balance),
	}
}

func (suite *TransferServiceTestSuite) givenAccounts(payer, payee *domain.Account) {
	suite.accounts.On("FindAccountByID", mock.Anything, payer.AccountID).Return(payer, nil)
	if payee.AccountID != payer.AccountID {
		suite.accounts.On("FindAccountByID", mock.Anything, payee.AccountID).Return(payee, nil)
	}
}

func withStatus(status domain.TransactionStatus) any {
	return mock.MatchedBy(func(t domain.Transaction) bool { return t.Status == status })
}

func pendingTransfer(amount string) *domain.Transaction {
	return &domain.Transaction{
		TransactionID: testTxnID,
		PayerID:       strPtr(testPayerID),
		PayeeID:       strPtr(testPayeeID),
		Amount:        dec(amount),
		Kind:          domain.KindTransfer,
		Status:        domain.StatusPending,
		AuditFields:   domain.NewAuditFields(testPayerID, fixedNow),
	}
}

// --- Transfer ---

func (suite *TransferServiceTestSuite) TestTransfer_Success() {
	payer := account(testPayerID, domain.RoleOrdinary, "1000.00")
	payee := account(testPayeeID, domain.RoleMerchant, "500.00")
	suite.givenAccounts(payer, payee)

	suite.txnTx.On("SaveTransaction", mock.Anything, withStatus(domain.StatusPending)).Return(nil).Once()
	suite.gate.On("Authorize", mock.Anything, mock.MatchedBy(func(r portssvc.AuthorizationRequest) bool {
		return r.TransactionID == testTxnID && r.Amount.Equal(dec("200")) && r.Payer.AccountID == testPayerID
	})).Return(true).Once()
	suite.txnTx.On("LockTransactionByID", mock.Anything, testTxnID).Return(pendingTransfer("200.00"), nil).Once()
	suite.accountTx.On("LockAccountsByIDs", mock.Anything, []string{testPayerID, testPayeeID}).
		Return(map[string]domain.Account{testPayerID: *payer, testPayeeID: *payee}, nil).Once()
	suite.accountTx.On("SaveAccounts", mock.Anything, mock.MatchedBy(func(accs []domain.Account) bool {
		return len(accs) == 2 &&
			accs[0].AccountID == testPayerID && accs[0].Balance.Equal(dec("800")) &&
			accs[1].AccountID == testPayeeID && accs[1].Balance.Equal(dec("700"))
	})).Return(nil).Once()
	suite.txnTx.On("SaveTransaction", mock.Anything, withStatus(domain.StatusCompleted)).Return(nil).Once()
	suite.dispatcher.On("Enqueue", mock.MatchedBy(func(n portssvc.Notification) bool {
		return n.TransactionID == testTxnID
	})).Return(true).Twice()

	txn, err := suite.service.Transfer(suite.ctx, testPayerID, testPayeeID, dec("200"), "rent")

	suite.Require().NoError(err)
	suite.Equal(domain.StatusCompleted, txn.Status)
	suite.Equal("200.00", domain.FormatAmount(txn.Amount))
	suite.Equal(2, suite.uow.calls)
	suite.Equal([]domain.AuditEventType{domain.EventTransferAttempted, domain.EventTransferCompleted}, suite.audit.types())
	suite.accountTx.AssertExpectations(suite.T())
	suite.txnTx.AssertExpectations(suite.T())
	suite.dispatcher.AssertExpectations(suite.T())
}

func (suite *TransferServiceTestSuite) TestTransfer_PreconditionOrder() {
	tests := []struct {
		name    string
		payer   *domain.Account
		payee   *domain.Account
		amount  string
		wantErr error
	}{
		{"zero amount beats missing accounts", nil, nil, "0", apperrors.ErrValidation},
		{"negative amount", nil, nil, "-5", apperrors.ErrValidation},
		{"too many decimals", nil, nil, "1.001", apperrors.ErrValidation},
		{"missing payer", nil, account(testPayeeID, domain.RoleOrdinary, "0"), "10", apperrors.ErrNotFound},
		{"missing payee", account(testPayerID, domain.RoleOrdinary, "50"), nil, "10", apperrors.ErrNotFound},
		{"merchant payer beats insufficient funds", account(testPayerID, domain.RoleMerchant, "0"), account(testPayeeID, domain.RoleOrdinary, "0"), "10", domain.ErrMerchantCannotSend},
		{"insufficient funds", account(testPayerID, domain.RoleOrdinary, "100"), account(testPayeeID, domain.RoleOrdinary, "0"), "150", apperrors.ErrInsufficientFunds},
		{"insufficient funds beats self transfer", account(testPayerID, domain.RoleOrdinary, "1"), account(testPayerID, domain.RoleOrdinary, "1"), "5", apperrors.ErrInsufficientFunds},
		{"self transfer", account(testPayerID, domain.RoleOrdinary, "100"), account(testPayerID, domain.RoleOrdinary, "100"), "5", domain.ErrSelfTransfer},
	}

	wantReason := map[error]string{
		apperrors.ErrValidation:        "validation",
		apperrors.ErrNotFound:          "not_found",
		domain.ErrMerchantCannotSend:   "validation",
		apperrors.ErrInsufficientFunds: "insufficient_funds",
		domain.ErrSelfTransfer:         "validation",
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.SetupTest()
			payerID, payeeID := testPayerID, testPayeeID
			if tt.payer != nil && tt.payee != nil && tt.payer.AccountID == tt.payee.AccountID {
				payeeID = payerID
			}
			if tt.payer != nil {
				suite.accounts.On("FindAccountByID", mock.Anything, payerID).Return(tt.payer, nil)
			} else {
				suite.accounts.On("FindAccountByID", mock.Anything, payerID).Return(nil, apperrors.ErrNotFound)
			}
			if payeeID != payerID {
				if tt.payee != nil {
					suite.accounts.On("FindAccountByID", mock.Anything, payeeID).Return(tt.payee, nil)
				} else {
					suite.accounts.On("FindAccountByID", mock.Anything, payeeID).Return(nil, apperrors.ErrNotFound)
				}
			}

			txn, err := suite.service.Transfer(suite.ctx, payerID, payeeID, dec(tt.amount), "")

			suite.Nil(txn)
			suite.ErrorIs(err, tt.wantErr)
			suite.Zero(suite.uow.calls, "no unit of work may start")
			suite.gate.AssertNotCalled(suite.T(), "Authorize", mock.Anything, mock.Anything)

			events := suite.audit.all()
			suite.Require().Len(events, 1)
			suite.Equal(domain.EventTransferRejected, events[0].Type)
			suite.Empty(events[0].TransactionID)
			suite.Equal(payerID, events[0].PayerID)
			suite.Equal(payeeID, events[0].PayeeID)
			suite.True(dec(tt.amount).Equal(events[0].Amount))
			suite.Equal(wantReason[tt.wantErr], events[0].Reason)
		})
	}
}

func (suite *TransferServiceTestSuite) TestTransfer_DeniedIsPersistedAsFailed() {
	payer := account(testPayerID, domain.RoleOrdinary, "1000.00")
	payee := account(testPayeeID, domain.RoleOrdinary, "0.00")
	suite.givenAccounts(payer, payee)

	suite.txnTx.On("SaveTransaction", mock.Anything, withStatus(domain.StatusPending)).Return(nil).Once()
	suite.gate.On("Authorize", mock.Anything, mock.Anything).Return(false).Once()
	suite.txnTx.On("LockTransactionByID", mock.Anything, testTxnID).Return(pendingTransfer("200.00"), nil).Once()
	suite.txnTx.On("SaveTransaction", mock.Anything, mock.MatchedBy(func(t domain.Transaction) bool {
		return t.Status == domain.StatusFailed && t.FailureReason() == domain.FailureAuthorizationDenied
	})).Return(nil).Once()

	txn, err := suite.service.Transfer(suite.ctx, testPayerID, testPayeeID, dec("200"), "")

	suite.ErrorIs(err, apperrors.ErrAuthorizationDenied)
	var failed *apperrors.TransactionFailedError
	suite.Require().True(errors.As(err, &failed))
	suite.Equal(testTxnID, failed.TransactionID)
	suite.Require().NotNil(txn)
	suite.Equal(domain.StatusFailed, txn.Status)
	suite.accountTx.AssertNotCalled(suite.T(), "LockAccountsByIDs", mock.Anything, mock.Anything)
	suite.accountTx.AssertNotCalled(suite.T(), "SaveAccounts", mock.Anything, mock.Anything)
	suite.dispatcher.AssertNotCalled(suite.T(), "Enqueue", mock.Anything)
	suite.Equal([]domain.AuditEventType{domain.EventTransferAttempted, domain.EventTransferFailed}, suite.audit.types())
}

func (suite *TransferServiceTestSuite) TestTransfer_BalanceDrainedWhileAuthorizing() {
	payer := account(testPayerID, domain.RoleOrdinary, "1000.00")
	payee := account(testPayeeID, domain.RoleOrdinary, "0.00")
	suite.givenAccounts(payer, payee)
	drained := *payer
	drained.Balance = dec("100")

	suite.txnTx.On("SaveTransaction", mock.Anything, withStatus(domain.StatusPending)).Return(nil).Once()
	suite.gate.On("Authorize", mock.Anything, mock.Anything).Return(true).Once()
	suite.txnTx.On("LockTransactionByID", mock.Anything, testTxnID).Return(pendingTransfer("200.00"), nil).Once()
	suite.accountTx.On("LockAccountsByIDs", mock.Anything, mock.Anything).
		Return(map[string]domain.Account{testPayerID: drained, testPayeeID: *payee}, nil).Once()
	suite.txnTx.On("SaveTransaction", mock.Anything, mock.MatchedBy(func(t domain.Transaction) bool {
		return t.Status == domain.StatusFailed && t.FailureReason() == domain.FailureInsufficientFunds
	})).Return(nil).Once()

	_, err := suite.service.Transfer(suite.ctx, testPayerID, testPayeeID, dec("200"), "")

	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.accountTx.AssertNotCalled(suite.T(), "SaveAccounts", mock.Anything, mock.Anything)
	suite.txnTx.AssertExpectations(suite.T())
}

func (suite *TransferServiceTestSuite) TestTransfer_SweptBeforeSettleIsOperational() {
	payer := account(testPayerID, domain.RoleOrdinary, "1000.00")
	payee := account(testPayeeID, domain.RoleOrdinary, "0.00")
	suite.givenAccounts(payer, payee)
	swept := pendingTransfer("200.00")
	swept.Status = domain.StatusFailed

	suite.txnTx.On("SaveTransaction", mock.Anything, withStatus(domain.StatusPending)).Return(nil).Once()
	suite.gate.On("Authorize", mock.Anything, mock.Anything).Return(true).Once()
	suite.txnTx.On("LockTransactionByID", mock.Anything, testTxnID).Return(swept, nil).Once()

	txn, err := suite.service.Transfer(suite.ctx, testPayerID, testPayeeID, dec("200"), "")

	suite.Nil(txn)
	suite.ErrorIs(err, apperrors.ErrOperational)
	suite.False(apperrors.IsDomainError(err))
	suite.accountTx.AssertNotCalled(suite.T(), "SaveAccounts", mock.Anything, mock.Anything)
}

func (suite *TransferServiceTestSuite) TestTransfer_StoreFailureIsOperational() {
	payer := account(testPayerID, domain.RoleOrdinary, "1000.00")
	payee := account(testPayeeID, domain.RoleOrdinary, "0.00")
	suite.givenAccounts(payer, payee)
	suite.txnTx.On("SaveTransaction", mock.Anything, mock.Anything).Return(errors.New("connection reset")).Once()

	_, err := suite.service.Transfer(suite.ctx, testPayerID, testPayeeID, dec("200"), "")

	suite.ErrorIs(err, apperrors.ErrOperational)
	suite.gate.AssertNotCalled(suite.T(), "Authorize", mock.Anything, mock.Anything)
	suite.Empty(suite.audit.types())
}

func (suite *TransferServiceTestSuite) TestTransfer_DroppedNotificationDoesNotFail() {
	payer := account(testPayerID, domain.RoleOrdinary, "10.00")
	payee := account(testPayeeID, domain.RoleOrdinary, "0.00")
	suite.givenAccounts(payer, payee)
	suite.txnTx.On("SaveTransaction", mock.Anything, mock.Anything).Return(nil)
	suite.gate.On("Authorize", mock.Anything, mock.Anything).Return(true)
	suite.txnTx.On("LockTransactionByID", mock.Anything, testTxnID).Return(pendingTransfer("10.00"), nil)
	suite.accountTx.On("LockAccountsByIDs", mock.Anything, mock.Anything).
		Return(map[string]domain.Account{testPayerID: *payer, testPayeeID: *payee}, nil)
	suite.accountTx.On("SaveAccounts", mock.Anything, mock.Anything).Return(nil)
	suite.dispatcher.On("Enqueue", mock.Anything).Return(false)

	txn, err := suite.service.Transfer(suite.ctx, testPayerID, testPayeeID, dec("10"), "")

	suite.Require().NoError(err)
	suite.Equal(domain.StatusCompleted, txn.Status)
	suite.dispatcher.AssertNumberOfCalls(suite.T(), "Enqueue", 2)
}

// --- Deposit / Withdraw ---

func (suite *TransferServiceTestSuite) TestDeposit_Success() {
	acc := account(testPayeeID, domain.RoleMerchant, "5.00")
	suite.accounts.On("FindAccountByID", mock.Anything, testPayeeID).Return(acc, nil)
	suite.accountTx.On("LockAccountsByIDs", mock.Anything, []string{testPayeeID}).
		Return(map[string]domain.Account{testPayeeID: *acc}, nil)
	suite.accountTx.On("SaveAccounts", mock.Anything, mock.MatchedBy(func(accs []domain.Account) bool {
		return len(accs) == 1 && accs[0].Balance.Equal(dec("55.5"))
	})).Return(nil).Once()
	suite.txnTx.On("SaveTransaction", mock.Anything, mock.MatchedBy(func(t domain.Transaction) bool {
		return t.Kind == domain.KindDeposit && t.Status == domain.StatusCompleted && t.PayerID == nil && *t.PayeeID == testPayeeID
	})).Return(nil).Once()
	suite.dispatcher.On("Enqueue", mock.Anything).Return(true).Once()

	txn, err := suite.service.Deposit(suite.ctx, testPayeeID, dec("50.5"), "cash")

	suite.Require().NoError(err)
	suite.Equal(domain.KindDeposit, txn.Kind)
	suite.Equal([]domain.AuditEventType{domain.EventDepositCompleted}, suite.audit.types())
	suite.accountTx.AssertExpectations(suite.T())
	suite.gate.AssertNotCalled(suite.T(), "Authorize", mock.Anything, mock.Anything)
}

func (suite *TransferServiceTestSuite) TestWithdraw_InsufficientFunds() {
	acc := account(testPayerID, domain.RoleOrdinary, "5.00")
	suite.accounts.On("FindAccountByID", mock.Anything, testPayerID).Return(acc, nil)

	_, err := suite.service.Withdraw(suite.ctx, testPayerID, dec("5.01"), "")

	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.Zero(suite.uow.calls)
}

func (suite *TransferServiceTestSuite) TestWithdraw_UnknownAccount() {
	suite.accounts.On("FindAccountByID", mock.Anything, testPayerID).Return(nil, apperrors.ErrNotFound)

	_, err := suite.service.Withdraw(suite.ctx, testPayerID, dec("1"), "")

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

// --- Refund / Reverse ---

func completedTransfer(status domain.TransactionStatus) *domain.Transaction {
	t := pendingTransfer("200.00")
	t.Status = status
	return t
}

func (suite *TransferServiceTestSuite) TestRefund_Success() {
	payer := account(testPayerID, domain.RoleOrdinary, "800.00")
	payee := account(testPayeeID, domain.RoleMerchant, "700.00")
	suite.txnTx.On("LockTransactionByID", mock.Anything, testTxnID).Return(completedTransfer(domain.StatusCompleted), nil)
	suite.accountTx.On("LockAccountsByIDs", mock.Anything, []string{testPayerID, testPayeeID}).
		Return(map[string]domain.Account{testPayerID: *payer, testPayeeID: *payee}, nil)
	suite.accountTx.On("SaveAccounts", mock.Anything, mock.MatchedBy(func(accs []domain.Account) bool {
		return accs[0].AccountID == testPayeeID && accs[0].Balance.Equal(dec("500")) &&
			accs[1].AccountID == testPayerID && accs[1].Balance.Equal(dec("1000"))
	})).Return(nil).Once()
	suite.txnTx.On("SaveTransaction", mock.Anything, mock.MatchedBy(func(t domain.Transaction) bool {
		return t.Kind == domain.KindRefund && *t.PayerID == testPayeeID && *t.PayeeID == testPayerID &&
			*t.OriginalTransactionID == testTxnID
	})).Return(nil).Once()
	suite.txnTx.On("SaveTransaction", mock.Anything, withStatus(domain.StatusRefunded)).Return(nil).Once()
	suite.dispatcher.On("Enqueue", mock.Anything).Return(true).Twice()

	// The generator is fixed, so give the compensation a distinct ID.
	svc := services.NewTransferService(
		suite.uow, suite.accounts, suite.transactions, suite.gate, suite.dispatcher, suite.audit,
		services.WithClock(func() time.Time { return fixedNow }),
		services.WithIDGenerator(func() string { return "txn-refund" }),
	)
	comp, err := svc.Refund(suite.ctx, testTxnID, testPayeeID)

	suite.Require().NoError(err)
	suite.Equal("txn-refund", comp.TransactionID)
	suite.Equal(domain.StatusCompleted, comp.Status)
	suite.Equal([]domain.AuditEventType{domain.EventRefundCompleted}, suite.audit.types())
	suite.txnTx.AssertExpectations(suite.T())
}

func (suite *TransferServiceTestSuite) TestCompensate_Preconditions() {
	tests := []struct {
		name      string
		original  *domain.Transaction
		lockErr   error
		requester string
		reverse   bool
		wantErr   error
	}{
		{"unknown transaction", nil, apperrors.ErrNotFound, testPayeeID, false, apperrors.ErrNotFound},
		{"already refunded", completedTransfer(domain.StatusRefunded), nil, testPayeeID, false, apperrors.ErrAlreadyCompensated},
		{"already reversed beats requester check", completedTransfer(domain.StatusReversed), nil, testPayerID, true, apperrors.ErrAlreadyCompensated},
		{"pending transfer", completedTransfer(domain.StatusPending), nil, testPayeeID, true, apperrors.ErrValidation},
		{"failed transfer", completedTransfer(domain.StatusFailed), nil, testPayeeID, false, apperrors.ErrValidation},
		{"payer cannot refund", completedTransfer(domain.StatusCompleted), nil, testPayerID, false, apperrors.ErrForbidden},
		{"outsider cannot see a completed transfer", completedTransfer(domain.StatusCompleted), nil, "someone-else", false, apperrors.ErrNotFound},
		{"outsider cannot see a reversed transfer", completedTransfer(domain.StatusReversed), nil, "someone-else", true, apperrors.ErrNotFound},
		{"store failure", nil, errors.New("timeout"), testPayeeID, false, apperrors.ErrOperational},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.SetupTest()
			if tt.original != nil {
				suite.txnTx.On("LockTransactionByID", mock.Anything, testTxnID).Return(tt.original, nil)
			} else {
				suite.txnTx.On("LockTransactionByID", mock.Anything, testTxnID).Return(nil, tt.lockErr)
			}

			var err error
			if tt.reverse {
				_, err = suite.service.Reverse(suite.ctx, testTxnID, tt.requester)
			} else {
				_, err = suite.service.Refund(suite.ctx, testTxnID, tt.requester)
			}

			suite.ErrorIs(err, tt.wantErr)
			suite.accountTx.AssertNotCalled(suite.T(), "LockAccountsByIDs", mock.Anything, mock.Anything)
			suite.txnTx.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)

			events := suite.audit.all()
			if errors.Is(tt.wantErr, apperrors.ErrOperational) {
				suite.Empty(events)
				return
			}
			suite.Require().Len(events, 1)
			wantType := domain.EventRefundRejected
			if tt.reverse {
				wantType = domain.EventReversalRejected
			}
			suite.Equal(wantType, events[0].Type)
			suite.Equal(testTxnID, events[0].OriginalTransactionID)
			suite.Equal(tt.requester, events[0].RequesterID)
		})
	}
}

func (suite *TransferServiceTestSuite) TestReverse_PayeeSpentTheMoney() {
	payer := account(testPayerID, domain.RoleOrdinary, "800.00")
	payee := account(testPayeeID, domain.RoleOrdinary, "50.00")
	suite.txnTx.On("LockTransactionByID", mock.Anything, testTxnID).Return(completedTransfer(domain.StatusCompleted), nil)
	suite.accountTx.On("LockAccountsByIDs", mock.Anything, mock.Anything).
		Return(map[string]domain.Account{testPayerID: *payer, testPayeeID: *payee}, nil)

	_, err := suite.service.Reverse(suite.ctx, testTxnID, testPayeeID)

	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.accountTx.AssertNotCalled(suite.T(), "SaveAccounts", mock.Anything, mock.Anything)
	suite.txnTx.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

// --- Queries ---

func (suite *TransferServiceTestSuite) TestGetTransaction_OnlyParticipants() {
	suite.transactions.On("FindTransactionByID", mock.Anything, testTxnID).Return(completedTransfer(domain.StatusCompleted), nil)

	txn, err := suite.service.GetTransaction(suite.ctx, testTxnID, testPayerID)
	suite.Require().NoError(err)
	suite.Equal(testTxnID, txn.TransactionID)

	_, err = suite.service.GetTransaction(suite.ctx, testTxnID, "someone-else")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *TransferServiceTestSuite) TestListTransactions_DefaultsLimit() {
	next := strPtr("cursor")
	suite.transactions.On("FindTransactionsByParticipant", mock.Anything, testPayerID, 20, (*string)(nil)).
		Return([]domain.Transaction{*completedTransfer(domain.StatusCompleted)}, next, nil).Once()

	res, err := suite.service.ListTransactions(suite.ctx, testPayerID, dto.ListTransactionsParams{})

	suite.Require().NoError(err)
	suite.Len(res.Transactions, 1)
	suite.Equal("200.00", res.Transactions[0].Amount)
	suite.Equal(next, res.NextToken)
}

func (suite *TransferServiceTestSuite) TestListTransactions_BadTokenIsValidation() {
	bad := strPtr("???")
	suite.transactions.On("FindTransactionsByParticipant", mock.Anything, testPayerID, 5, bad).
		Return(nil, nil, apperrors.ErrValidation).Once()

	_, err := suite.service.ListTransactions(suite.ctx, testPayerID, dto.ListTransactionsParams{Limit: 5, NextToken: bad})

	suite.ErrorIs(err, apperrors.ErrValidation)
}
