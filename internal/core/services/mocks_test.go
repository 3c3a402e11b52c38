package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/payflow_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/payflow_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/payflow_backend/internal/core/ports/services"
	"github.com/stretchr/testify/mock"
)

// fakeUnitOfWork runs fn directly against the mocked tx repositories.
type fakeUnitOfWork struct {
	repos portsrepo.TxRepositories
	calls int
}

func (u *fakeUnitOfWork) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos portsrepo.TxRepositories) error) error {
	u.calls++
	return fn(ctx, u.repos)
}

type MockAccountReader struct {
	mock.Mock
}

func (m *MockAccountReader) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountReader) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountReader) FindAccountByDocument(ctx context.Context, document string) (*domain.Account, error) {
	args := m.Called(ctx, document)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountReader) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountReader) ExistsByDocument(ctx context.Context, document string) (bool, error) {
	args := m.Called(ctx, document)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountReader) ListAccounts(ctx context.Context, role domain.AccountRole, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, role, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

type MockTransactionReader struct {
	mock.Mock
}

func (m *MockTransactionReader) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionReader) FindTransactionsByParticipant(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, accountID, limit, nextToken)
	var next *string
	if v := args.Get(1); v != nil {
		next = v.(*string)
	}
	if args.Get(0) == nil {
		return nil, next, args.Error(2)
	}
	return args.Get(0).([]domain.Transaction), next, args.Error(2)
}

func (m *MockTransactionReader) FindTransactionsByStatus(ctx context.Context, status domain.TransactionStatus, limit int) ([]domain.Transaction, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

type MockAccountTxRepository struct {
	mock.Mock
}

func (m *MockAccountTxRepository) LockAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountTxRepository) CreateAccount(ctx context.Context, account domain.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockAccountTxRepository) SaveAccounts(ctx context.Context, accounts ...domain.Account) error {
	args := m.Called(ctx, accounts)
	return args.Error(0)
}

type MockTransactionTxRepository struct {
	mock.Mock
}

func (m *MockTransactionTxRepository) LockTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionTxRepository) LockStalePending(ctx context.Context, olderThan time.Time, limit int) ([]domain.Transaction, error) {
	args := m.Called(ctx, olderThan, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionTxRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

type MockAuthorizationGate struct {
	mock.Mock
}

func (m *MockAuthorizationGate) Authorize(ctx context.Context, req portssvc.AuthorizationRequest) bool {
	return m.Called(ctx, req).Bool(0)
}

func (m *MockAuthorizationGate) IsAvailable(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Enqueue(n portssvc.Notification) bool {
	return m.Called(n).Bool(0)
}

// stubGate answers every authorization with allow.
type stubGate struct {
	mu    sync.Mutex
	allow bool
	calls int
}

func (g *stubGate) Authorize(context.Context, portssvc.AuthorizationRequest) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return g.allow
}

func (g *stubGate) IsAvailable(context.Context) bool { return true }

func (g *stubGate) set(allow bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.allow = allow
}

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []portssvc.Notification
}

func (d *recordingDispatcher) Enqueue(n portssvc.Notification) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, n)
	return true
}

func (d *recordingDispatcher) all() []portssvc.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]portssvc.Notification(nil), d.sent...)
}

type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (a *recordingAudit) Emit(_ context.Context, ev domain.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
}

func (a *recordingAudit) all() []domain.AuditEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.AuditEvent(nil), a.events...)
}

func (a *recordingAudit) types() []domain.AuditEventType {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AuditEventType, len(a.events))
	for i, ev := range a.events {
		out[i] = ev.Type
	}
	return out
}
