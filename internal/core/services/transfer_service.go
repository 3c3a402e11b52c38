package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/payflow_backend/internal/apperrors"
	"github.com/SscSPs/payflow_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/payflow_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/payflow_backend/internal/core/ports/services"
	"github.com/SscSPs/payflow_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultPageSize = 20

// transferService orchestrates every balance movement.
type transferService struct {
	BaseService
	uow          portsrepo.UnitOfWork
	accounts     portsrepo.AccountReader
	transactions portsrepo.TransactionReader
	gate         portssvc.AuthorizationGate
	dispatcher   portssvc.NotificationDispatcher
	audit        portssvc.AuditSink
	metrics      *Metrics
	now          func() time.Time
	newID        func() string
}

// TransferOption is a functional option for configuring the transfer service
type TransferOption func(*transferService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) TransferOption {
	return func(s *transferService) {
		s.now = now
	}
}

// WithIDGenerator replaces uuid.NewString for new transaction IDs.
func WithIDGenerator(newID func() string) TransferOption {
	return func(s *transferService) {
		s.newID = newID
	}
}

// WithMetrics attaches business metrics.
func WithMetrics(m *Metrics) TransferOption {
	return func(s *transferService) {
		s.metrics = m
	}
}

// NewTransferService wires the orchestrator to its collaborators.
func NewTransferService(
	uow portsrepo.UnitOfWork,
	accounts portsrepo.AccountReader,
	transactions portsrepo.TransactionReader,
	gate portssvc.AuthorizationGate,
	dispatcher portssvc.NotificationDispatcher,
	audit portssvc.AuditSink,
	options ...TransferOption,
) portssvc.TransferSvcFacade {
	svc := &transferService{
		uow:          uow,
		accounts:     accounts,
		transactions: transactions,
		gate:         gate,
		dispatcher:   dispatcher,
		audit:        audit,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.TransferSvcFacade = (*transferService)(nil)

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, apperrors.ErrValidation):
		return "validation"
	case errors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, apperrors.ErrAuthorizationDenied):
		return "authorization_denied"
	case errors.Is(err, apperrors.ErrAlreadyCompensated):
		return "already_compensated"
	case errors.Is(err, apperrors.ErrForbidden):
		return "forbidden"
	default:
		return "operational"
	}
}

func (s *transferService) findAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	acc, err := s.accounts.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		return nil, apperrors.Operational("load account", err)
	}
	return acc, nil
}

func (s *transferService) emit(ctx context.Context, eventType domain.AuditEventType, txn domain.Transaction) {
	if s.audit == nil {
		return
	}
	s.audit.Emit(ctx, domain.NewAuditEvent(eventType, txn, s.now()))
}

// reject records a refused operation. Operational failures are not refusals and emit nothing.
func (s *transferService) reject(ctx context.Context, ev domain.AuditEvent, err error) {
	if s.audit == nil || !apperrors.IsDomainError(err) {
		return
	}
	ev.Reason = outcomeOf(err)
	s.audit.Emit(ctx, ev)
}

func (s *transferService) notify(ctx context.Context, notifications []portssvc.Notification) {
	if s.dispatcher == nil {
		return
	}
	for _, n := range notifications {
		if !s.dispatcher.Enqueue(n) {
			s.LogWarn(ctx, "Notification dropped",
				slog.String("account_id", n.AccountID),
				slog.String("transaction_id", n.TransactionID))
		}
	}
}

// Transfer moves amount from payer to payee. The pending record is committed before the
// gate is consulted, so denials remain visible as failed transactions.
func (s *transferService) Transfer(ctx context.Context, payerID, payeeID string, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	started := time.Now()
	txn, err := s.transfer(ctx, payerID, payeeID, amount, description)
	s.metrics.observeOperation("transfer", err, started)
	return txn, err
}

func (s *transferService) transfer(ctx context.Context, payerID, payeeID string, requested decimal.Decimal, description string) (*domain.Transaction, error) {
	refuse := func(err error) (*domain.Transaction, error) {
		s.reject(ctx, domain.NewRejectedEvent(domain.KindTransfer, payerID, payeeID, requested, "", s.now()), err)
		return nil, err
	}

	amount, err := domain.NormalizeAmount(requested)
	if err != nil {
		return refuse(err)
	}
	payer, err := s.findAccount(ctx, payerID)
	if err != nil {
		return refuse(err)
	}
	payee, err := s.findAccount(ctx, payeeID)
	if err != nil {
		return refuse(err)
	}
	if !payer.CanSend() {
		return refuse(domain.ErrMerchantCannotSend)
	}
	if !payer.HasFunds(amount) {
		return refuse(fmt.Errorf("%w: account %s has %s, needs %s",
			apperrors.ErrInsufficientFunds, payer.AccountID, domain.FormatAmount(payer.Balance), domain.FormatAmount(amount)))
	}
	if payer.AccountID == payee.AccountID {
		return refuse(domain.ErrSelfTransfer)
	}

	now := s.now()
	txn := domain.Transaction{
		TransactionID: s.newID(),
		PayerID:       &payer.AccountID,
		PayeeID:       &payee.AccountID,
		Amount:        amount,
		Kind:          domain.KindTransfer,
		Status:        domain.StatusPending,
		Description:   description,
		AuditFields:   domain.NewAuditFields(payer.AccountID, now),
	}
	if err := txn.Validate(); err != nil {
		return refuse(err)
	}

	logger := s.GetLogger(ctx).With(slog.String("transaction_id", txn.TransactionID))

	err = s.uow.WithinTransaction(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		return repos.Transactions.SaveTransaction(ctx, txn)
	})
	if err != nil {
		logger.Error("Failed to persist pending transfer", slog.String("error", err.Error()))
		return nil, classify("persist pending transfer", err)
	}
	s.emit(ctx, domain.EventTransferAttempted, txn)

	allowed := s.gate.Authorize(ctx, portssvc.AuthorizationRequest{
		TransactionID: txn.TransactionID,
		Payer:         *payer,
		Payee:         *payee,
		Amount:        amount,
	})
	logger.Debug("Authorization decision", slog.Bool("allowed", allowed))

	var (
		final         domain.Transaction
		lockedPayer   domain.Account
		lockedPayee   domain.Account
		failureReason string
		failureErr    error
	)
	err = s.uow.WithinTransaction(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		locked, err := repos.Transactions.LockTransactionByID(ctx, txn.TransactionID)
		if err != nil {
			return apperrors.Operational("lock pending transfer", err)
		}
		if locked.Status != domain.StatusPending {
			return apperrors.Operational("settle transfer",
				fmt.Errorf("transaction %s is %s, expected pending", locked.TransactionID, locked.Status))
		}
		now := s.now()

		if !allowed {
			failureReason = domain.FailureAuthorizationDenied
			failureErr = apperrors.ErrAuthorizationDenied
			if err := locked.Fail(failureReason, payer.AccountID, now); err != nil {
				return err
			}
			final = *locked
			return repos.Transactions.SaveTransaction(ctx, final)
		}

		accounts, err := repos.Accounts.LockAccountsByIDs(ctx, []string{payer.AccountID, payee.AccountID})
		if err != nil {
			return apperrors.Operational("lock transfer accounts", err)
		}
		lockedPayer, lockedPayee = accounts[payer.AccountID], accounts[payee.AccountID]

		if err := lockedPayer.Debit(amount); err != nil {
			if !errors.Is(err, apperrors.ErrInsufficientFunds) {
				return err
			}
			failureReason = domain.FailureInsufficientFunds
			failureErr = err
			if err := locked.Fail(failureReason, payer.AccountID, now); err != nil {
				return err
			}
			final = *locked
			return repos.Transactions.SaveTransaction(ctx, final)
		}
		if err := lockedPayee.Credit(amount); err != nil {
			return err
		}
		lockedPayer.Touch(payer.AccountID, now)
		lockedPayee.Touch(payer.AccountID, now)
		if err := repos.Accounts.SaveAccounts(ctx, lockedPayer, lockedPayee); err != nil {
			return err
		}
		if err := locked.Complete(payer.AccountID, now); err != nil {
			return err
		}
		final = *locked
		return repos.Transactions.SaveTransaction(ctx, final)
	})
	if err != nil {
		logger.Error("Failed to settle transfer", slog.String("error", err.Error()))
		return nil, classify("settle transfer", err)
	}

	if failureErr != nil {
		s.emit(ctx, domain.EventTransferFailed, final)
		logger.Info("Transfer failed", slog.String("reason", failureReason))
		return &final, &apperrors.TransactionFailedError{
			TransactionID: final.TransactionID,
			Reason:        failureReason,
			Err:           failureErr,
		}
	}

	s.emit(ctx, domain.EventTransferCompleted, final)
	logger.Info("Transfer completed",
		slog.String("payer_id", payer.AccountID),
		slog.String("payee_id", payee.AccountID),
		slog.String("amount", domain.FormatAmount(amount)))
	s.notify(ctx, transferNotifications(final, lockedPayer, lockedPayee))
	return &final, nil
}

// Deposit credits amount to the account.
func (s *transferService) Deposit(ctx context.Context, accountID string, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	started := time.Now()
	txn, err := s.move(ctx, domain.KindDeposit, accountID, amount, description)
	s.metrics.observeOperation("deposit", err, started)
	return txn, err
}

// Withdraw debits amount from the account.
func (s *transferService) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	started := time.Now()
	txn, err := s.move(ctx, domain.KindWithdrawal, accountID, amount, description)
	s.metrics.observeOperation("withdraw", err, started)
	return txn, err
}

// move applies a single-account deposit or withdrawal in one unit of work. Nothing is stored
// when it fails, so every domain error is reported as a rejection.
func (s *transferService) move(ctx context.Context, kind domain.TransactionKind, accountID string, requested decimal.Decimal, description string) (*domain.Transaction, error) {
	refuse := func(err error) (*domain.Transaction, error) {
		payerID, payeeID := accountID, ""
		if kind == domain.KindDeposit {
			payerID, payeeID = "", accountID
		}
		s.reject(ctx, domain.NewRejectedEvent(kind, payerID, payeeID, requested, "", s.now()), err)
		return nil, err
	}

	amount, err := domain.NormalizeAmount(requested)
	if err != nil {
		return refuse(err)
	}
	acc, err := s.findAccount(ctx, accountID)
	if err != nil {
		return refuse(err)
	}
	if kind == domain.KindWithdrawal && !acc.HasFunds(amount) {
		return refuse(fmt.Errorf("%w: account %s has %s, needs %s",
			apperrors.ErrInsufficientFunds, acc.AccountID, domain.FormatAmount(acc.Balance), domain.FormatAmount(amount)))
	}

	now := s.now()
	txn := domain.Transaction{
		TransactionID: s.newID(),
		Amount:        amount,
		Kind:          kind,
		Status:        domain.StatusCompleted,
		Description:   description,
		AuditFields:   domain.NewAuditFields(accountID, now),
	}
	eventType := domain.EventDepositCompleted
	if kind == domain.KindDeposit {
		txn.PayeeID = &acc.AccountID
	} else {
		txn.PayerID = &acc.AccountID
		eventType = domain.EventWithdrawalCompleted
	}
	if err := txn.Validate(); err != nil {
		return refuse(err)
	}

	var updated domain.Account
	err = s.uow.WithinTransaction(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		accounts, err := repos.Accounts.LockAccountsByIDs(ctx, []string{accountID})
		if err != nil {
			return apperrors.Operational("lock account", err)
		}
		updated = accounts[accountID]
		if kind == domain.KindDeposit {
			err = updated.Credit(amount)
		} else {
			err = updated.Debit(amount)
		}
		if err != nil {
			return err
		}
		updated.Touch(accountID, now)
		if err := repos.Accounts.SaveAccounts(ctx, updated); err != nil {
			return err
		}
		return repos.Transactions.SaveTransaction(ctx, txn)
	})
	if err != nil {
		if !apperrors.IsDomainError(err) {
			s.LogError(ctx, err, "Failed to apply balance movement",
				slog.String("kind", string(kind)), slog.String("account_id", accountID))
		}
		return refuse(classify("apply "+string(kind), err))
	}

	s.emit(ctx, eventType, txn)
	s.LogInfo(ctx, "Balance movement completed",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("kind", string(kind)),
		slog.String("amount", domain.FormatAmount(amount)))
	s.notify(ctx, movementNotifications(txn, updated))
	return &txn, nil
}

// Refund returns the money of a completed transfer to its payer.
func (s *transferService) Refund(ctx context.Context, transactionID, requesterID string) (*domain.Transaction, error) {
	started := time.Now()
	txn, err := s.compensate(ctx, transactionID, requesterID, domain.StatusRefunded)
	s.metrics.observeOperation("refund", err, started)
	return txn, err
}

// Reverse reverts a completed transfer.
func (s *transferService) Reverse(ctx context.Context, transactionID, requesterID string) (*domain.Transaction, error) {
	started := time.Now()
	txn, err := s.compensate(ctx, transactionID, requesterID, domain.StatusReversed)
	s.metrics.observeOperation("reverse", err, started)
	return txn, err
}

// compensate books the inverse of a completed transfer and flips the original to status.
// The original row is locked first, so a concurrent second compensation sees it already flipped.
// Requesters outside the transfer get NotFound before any state check, as in GetTransaction.
func (s *transferService) compensate(ctx context.Context, transactionID, requesterID string, status domain.TransactionStatus) (*domain.Transaction, error) {
	kind, ok := domain.CompensationKind(status)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a compensation status", apperrors.ErrValidation, status)
	}

	var (
		compensation domain.Transaction
		origPayer    domain.Account
		origPayee    domain.Account
	)
	rejected := domain.NewRejectedEvent(kind, "", "", decimal.Zero, "", s.now())
	rejected.OriginalTransactionID = transactionID
	rejected.RequesterID = requesterID

	err := s.uow.WithinTransaction(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		original, err := repos.Transactions.LockTransactionByID(ctx, transactionID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
			}
			return apperrors.Operational("lock original transaction", err)
		}
		if !original.Involves(requesterID) {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
		}
		if original.PayerID != nil {
			rejected.PayerID = *original.PayerID
		}
		if original.PayeeID != nil {
			rejected.PayeeID = *original.PayeeID
		}
		rejected.Amount = original.Amount

		if err := original.CheckCompensable(); err != nil {
			return err
		}
		if original.PayeeID == nil || *original.PayeeID != requesterID {
			return fmt.Errorf("%w: only the payee of transaction %s may %s it", apperrors.ErrForbidden, transactionID, kind)
		}

		accounts, err := repos.Accounts.LockAccountsByIDs(ctx, []string{*original.PayerID, *original.PayeeID})
		if err != nil {
			return apperrors.Operational("lock transfer accounts", err)
		}
		origPayer, origPayee = accounts[*original.PayerID], accounts[*original.PayeeID]

		if err := origPayee.Debit(original.Amount); err != nil {
			return err
		}
		if err := origPayer.Credit(original.Amount); err != nil {
			return err
		}

		now := s.now()
		compensation = domain.Transaction{
			TransactionID:         s.newID(),
			PayerID:               &origPayee.AccountID,
			PayeeID:               &origPayer.AccountID,
			Amount:                original.Amount,
			Kind:                  kind,
			Status:                domain.StatusCompleted,
			Description:           fmt.Sprintf("%s of transaction %s", kind, original.TransactionID),
			OriginalTransactionID: &original.TransactionID,
			AuditFields:           domain.NewAuditFields(requesterID, now),
		}
		if err := compensation.Validate(); err != nil {
			return err
		}
		if err := original.MarkCompensated(status, compensation.TransactionID, requesterID, now); err != nil {
			return err
		}
		origPayer.Touch(requesterID, now)
		origPayee.Touch(requesterID, now)

		if err := repos.Accounts.SaveAccounts(ctx, origPayee, origPayer); err != nil {
			return err
		}
		if err := repos.Transactions.SaveTransaction(ctx, compensation); err != nil {
			return err
		}
		return repos.Transactions.SaveTransaction(ctx, *original)
	})
	if err != nil {
		if !apperrors.IsDomainError(err) {
			s.LogError(ctx, err, "Failed to compensate transaction",
				slog.String("transaction_id", transactionID), slog.String("status", string(status)))
		}
		err = classify("compensate transaction", err)
		s.reject(ctx, rejected, err)
		return nil, err
	}

	eventType := domain.EventRefundCompleted
	if kind == domain.KindReversal {
		eventType = domain.EventReversalCompleted
	}
	s.emit(ctx, eventType, compensation)
	s.LogInfo(ctx, "Transaction compensated",
		slog.String("original_transaction_id", transactionID),
		slog.String("transaction_id", compensation.TransactionID),
		slog.String("kind", string(kind)))
	s.notify(ctx, compensationNotifications(compensation, origPayee, origPayer))
	return &compensation, nil
}

// GetTransaction returns the transaction when requesterID is one of its participants.
// Non-participants get NotFound rather than learning the ID exists.
func (s *transferService) GetTransaction(ctx context.Context, transactionID, requesterID string) (*domain.Transaction, error) {
	txn, err := s.transactions.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
		}
		s.LogError(ctx, err, "Failed to load transaction", slog.String("transaction_id", transactionID))
		return nil, apperrors.Operational("load transaction", err)
	}
	if !txn.Involves(requesterID) {
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}
	return txn, nil
}

func (s *transferService) ListTransactions(ctx context.Context, accountID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	txns, next, err := s.transactions.FindTransactionsByParticipant(ctx, accountID, limit, params.NextToken)
	if err != nil {
		if apperrors.IsDomainError(err) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to list transactions", slog.String("account_id", accountID))
		return nil, apperrors.Operational("list transactions", err)
	}
	return dto.ToListTransactionsResponse(txns, next), nil
}
